package mode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errRefused = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

func liveOK(v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return v, nil }
}

func liveFail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

func sim() string { return "simulated" }

func TestConfigMode(t *testing.T) {
	assert.Equal(t, Live, Config{}.Mode())
	assert.Equal(t, Simulated, Config{Simulate: true}.Mode())
	assert.Equal(t, "LIVE", Live.String())
	assert.Equal(t, "SIMULATED", Simulated.String())
}

func TestDo_Simulated(t *testing.T) {
	c := NewController(SurfaceAPI, Config{Simulate: true})

	var called bool
	got, err := Do(context.Background(), c, "hero.create", func(context.Context) (string, error) {
		called = true
		return "live", nil
	}, sim)

	require.NoError(t, err)
	assert.Equal(t, "simulated", got)
	assert.False(t, called, "live must not be called in simulated mode")
}

func TestDo_LiveSuccess(t *testing.T) {
	c := NewController(SurfaceAPI, Config{AllowFallback: true})

	got, err := Do(context.Background(), c, "hero.create", liveOK("live"), sim)
	require.NoError(t, err)
	assert.Equal(t, "live", got)
}

func TestDo_FallbackOnConnectionError(t *testing.T) {
	c := NewController(SurfaceAPI, Config{AllowFallback: true})

	got, err := Do(context.Background(), c, "hero.create",
		liveFail(NewConnectionError(SurfaceAPI, "hero.create", errRefused)), sim)
	require.NoError(t, err)
	assert.Equal(t, "simulated", got)
}

func TestDo_NoFallbackPropagates(t *testing.T) {
	c := NewController(SurfaceAPI, Config{})

	connErr := NewConnectionError(SurfaceAPI, "hero.create", errRefused)
	got, err := Do(context.Background(), c, "hero.create", liveFail(connErr), sim)
	assert.Empty(t, got)
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, errRefused)
}

func TestDo_OtherErrorsNeverFallBack(t *testing.T) {
	c := NewController(SurfaceDB, Config{AllowFallback: true})

	sqlErr := errors.New("syntax error near FROM")
	_, err := Do(context.Background(), c, "db.query", liveFail(sqlErr), sim)
	assert.ErrorIs(t, err, sqlErr)
}

func TestDo_CancelledContextDoesNotFallBack(t *testing.T) {
	c := NewController(SurfaceAPI, Config{AllowFallback: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	connErr := NewConnectionError(SurfaceAPI, "hero.create", context.Canceled)
	_, err := Do(ctx, c, "hero.create", liveFail(connErr), sim)
	assert.ErrorIs(t, err, context.Canceled)
}

// A fallback answers one call only; the controller keeps trying live.
func TestDo_FallbackIsPerCall(t *testing.T) {
	c := NewController(SurfaceAPI, Config{AllowFallback: true})

	var calls atomic.Int32
	live := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", NewConnectionError(SurfaceAPI, "op", errRefused)
		}
		return "live", nil
	}

	first, err := Do(context.Background(), c, "op", live, sim)
	require.NoError(t, err)
	second, err := Do(context.Background(), c, "op", live, sim)
	require.NoError(t, err)

	assert.Equal(t, "simulated", first)
	assert.Equal(t, "live", second)
	assert.Equal(t, Live, c.Mode())
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_ObserverRoutes(t *testing.T) {
	var mu sync.Mutex
	var routes []Route
	observe := WithObserver(func(op string, r Route) {
		mu.Lock()
		defer mu.Unlock()
		routes = append(routes, r)
	})

	ctx := context.Background()
	simulated := NewController(SurfaceDB, Config{Simulate: true}, observe)
	live := NewController(SurfaceDB, Config{AllowFallback: true}, observe)

	_, _ = Do(ctx, simulated, "db.query", liveOK("x"), sim)
	_, _ = Do(ctx, live, "db.query", liveOK("x"), sim)
	_, _ = Do(ctx, live, "db.query", liveFail(NewConnectionError(SurfaceDB, "db.query", errRefused)), sim)
	_, _ = Do(ctx, live, "db.query", liveFail(errors.New("boom")), sim)

	assert.Equal(t, []Route{RouteSimulated, RouteLive, RouteFallback}, routes)
}

func TestDo_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	simulated := NewController(SurfaceAPI, Config{Simulate: true}, WithLogger(logger))
	_, _ = Do(context.Background(), simulated, "voucher.statistics", liveOK("x"), sim)

	fallback := NewController(SurfaceDB, Config{AllowFallback: true}, WithLogger(logger))
	_, _ = Do(context.Background(), fallback, "db.query",
		liveFail(NewConnectionError(SurfaceDB, "db.query", errRefused)), sim)

	debug := logs.FilterMessage("using simulation").All()
	require.Len(t, debug, 1)
	assert.Equal(t, "voucher.statistics", debug[0].ContextMap()["op"])
	assert.Equal(t, "api", debug[0].ContextMap()["surface"])

	warn := logs.FilterMessage("live call failed, falling back to simulation").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
	assert.Equal(t, "db", warn[0].ContextMap()["surface"])
	assert.Contains(t, warn[0].ContextMap()["error"], "connection refused")
}

func TestController_Accessors(t *testing.T) {
	c := NewController(SurfaceDB, Config{Simulate: true, AllowFallback: true}, WithLogger(nil))
	assert.Equal(t, SurfaceDB, c.Surface())
	assert.Equal(t, Simulated, c.Mode())
	assert.Equal(t, Config{Simulate: true, AllowFallback: true}, c.Config())
}

func TestConnectionError(t *testing.T) {
	err := NewConnectionError(SurfaceDB, "db.get_hero", errRefused)
	assert.Equal(t, "db connection failed during db.get_hero: dial tcp: connection refused", err.Error())
	assert.Nil(t, NewConnectionError(SurfaceDB, "op", nil))

	wrapped := fmt.Errorf("get hero: %w", err)
	assert.True(t, IsConnectionError(wrapped))
	assert.False(t, IsConnectionError(errors.New("plain")))
	assert.False(t, IsConnectionError(nil))
}

func TestIsNetworkError(t *testing.T) {
	assert.True(t, IsNetworkError(errRefused))
	assert.True(t, IsNetworkError(fmt.Errorf("ping: %w", errRefused)))
	assert.False(t, IsNetworkError(context.Canceled))
	assert.False(t, IsNetworkError(errors.New("plain")))
	assert.False(t, IsNetworkError(nil))
}
