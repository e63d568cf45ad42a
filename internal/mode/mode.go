// Package mode decides, per call, whether the facade talks to the live
// backend or to the simulation.
//
// The mode is fixed when a Controller is built and never changes. In
// SIMULATED mode every call is simulated. In LIVE mode every call goes to
// the live backend; when that fails with a ConnectionError and fallback is
// allowed, that one call is answered by the simulation instead. The next
// call tries the live backend again, so a transient outage never pushes a
// whole run into simulation.
package mode

import (
	"context"

	"go.uber.org/zap"
)

// Mode is the execution mode of a Controller.
type Mode int

const (
	Live Mode = iota
	Simulated
)

func (m Mode) String() string {
	if m == Simulated {
		return "SIMULATED"
	}
	return "LIVE"
}

// Config is the startup configuration of one backend surface.
type Config struct {
	// Simulate selects SIMULATED mode.
	Simulate bool

	// AllowFallback lets a LIVE call degrade to simulation on a
	// ConnectionError. Ignored in SIMULATED mode.
	AllowFallback bool
}

// Mode returns the mode c selects.
func (c Config) Mode() Mode {
	if c.Simulate {
		return Simulated
	}
	return Live
}

// Route is the path a single call took.
type Route string

const (
	RouteLive      Route = "live"
	RouteSimulated Route = "simulated"
	RouteFallback  Route = "fallback"
)

// Controller routes calls for one surface. It is immutable after
// construction and safe for concurrent use.
type Controller struct {
	surface Surface
	cfg     Config
	logger  *zap.Logger
	observe func(op string, route Route)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers fn to be told the route of every completed call.
// fn must be safe for concurrent use.
func WithObserver(fn func(op string, route Route)) ControllerOption {
	return func(c *Controller) {
		c.observe = fn
	}
}

// NewController creates a Controller for surface with configuration cfg.
func NewController(surface Surface, cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		surface: surface,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("surface", string(surface)))
	return c
}

// Mode returns the controller's mode.
func (c *Controller) Mode() Mode {
	return c.cfg.Mode()
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Surface returns the surface the controller routes.
func (c *Controller) Surface() Surface {
	return c.surface
}

func (c *Controller) record(op string, route Route) {
	if c.observe != nil {
		c.observe(op, route)
	}
}

// Do runs one facade operation through c.
//
// In SIMULATED mode sim answers. In LIVE mode live is called; if it fails
// with a ConnectionError, fallback is allowed and ctx is still live, sim
// answers instead and the error is logged and dropped. Any other error from
// live is returned unchanged.
func Do[T any](ctx context.Context, c *Controller, op string, live func(context.Context) (T, error), sim func() T) (T, error) {
	if c.cfg.Simulate {
		c.logger.Debug("using simulation", zap.String("op", op))
		c.record(op, RouteSimulated)
		return sim(), nil
	}

	v, err := live(ctx)
	if err == nil {
		c.record(op, RouteLive)
		return v, nil
	}

	if c.cfg.AllowFallback && IsConnectionError(err) && ctx.Err() == nil {
		c.logger.Warn("live call failed, falling back to simulation",
			zap.String("op", op),
			zap.Error(err),
		)
		c.record(op, RouteFallback)
		return sim(), nil
	}

	var zero T
	return zero, err
}
