package harness

import (
	"context"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/herocheck/internal/apiclient"
	"github.com/roach88/herocheck/internal/database"
	"github.com/roach88/herocheck/internal/envelope"
	"github.com/roach88/herocheck/internal/fixtures"
	"github.com/roach88/herocheck/internal/hero"
	"github.com/roach88/herocheck/internal/heroapi"
	"github.com/roach88/herocheck/internal/logging"
	"github.com/roach88/herocheck/internal/mode"
	"github.com/roach88/herocheck/internal/simdb"
	"github.com/roach88/herocheck/internal/store"
)

// Deps are the collaborators a scenario runs against. The zero value runs
// fully simulated with the wall clock.
type Deps struct {
	// API and DB select the execution mode of each surface.
	API mode.Config
	DB  mode.Config

	// Live and Store serve LIVE mode. Either may be nil when its surface
	// is simulated.
	Live  *apiclient.Client
	Store *store.Store

	// Clock stamps simulated responses and dates generated fixtures.
	Clock envelope.Clock

	Logger *zap.Logger
}

// Simulated returns Deps for a fully simulated run.
func Simulated(clock envelope.Clock) Deps {
	return Deps{
		API:   mode.Config{Simulate: true},
		DB:    mode.Config{Simulate: true},
		Clock: clock,
	}
}

// Harness executes one scenario. It is not safe for concurrent use; Run
// builds a fresh one per scenario.
type Harness struct {
	api     *heroapi.Client
	db      *database.DB
	gen     *fixtures.Generator
	routes  *routeRecorder
	logger  *zap.Logger
	seq     int64
	lastNat string
}

// routeRecorder keeps the route of the most recent facade call.
type routeRecorder struct {
	mu   sync.Mutex
	last mode.Route
}

func (r *routeRecorder) record(_ string, route mode.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = route
}

func (r *routeRecorder) take() mode.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	route := r.last
	r.last = ""
	return route
}

// outcome is what a single call produced.
type outcome struct {
	status int
	body   any
	err    error
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build facades for deps, recording how each call is routed
// 2. Execute setup steps (any error aborts the run)
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions against the trace and the database
//
// The returned error is reserved for scenarios that could not be executed;
// a scenario that ran but failed yields a Result with Pass false.
func Run(ctx context.Context, scenario *Scenario, deps Deps) (*Result, error) {
	logger := logging.OrNop(deps.Logger).With(zap.String("scenario", scenario.Name))
	routes := &routeRecorder{}

	apiCtrl := mode.NewController(mode.SurfaceAPI, deps.API,
		mode.WithLogger(logger), mode.WithObserver(routes.record))
	dbCtrl := mode.NewController(mode.SurfaceDB, deps.DB,
		mode.WithLogger(logger), mode.WithObserver(routes.record))

	seed := scenario.Seed
	if seed == 0 {
		seed = DefaultSeed
	}

	h := &Harness{
		api:    heroapi.New(deps.Live, envelope.Builder{Clock: deps.Clock}, apiCtrl),
		db:     database.New(deps.Store, simdb.NewDispatcher(logger), dbCtrl),
		gen:    fixtures.NewSeeded(seed, deps.Clock),
		routes: routes,
		logger: logger,
	}

	result := NewResult(scenario.Name)

	for i, step := range scenario.Setup {
		out, err := h.execute(ctx, step, result)
		if err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Call, err)
		}
		if out.err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Call, out.err)
		}
	}

	for i, step := range scenario.Flow {
		out, err := h.execute(ctx, step, result)
		if err != nil {
			return nil, fmt.Errorf("flow step %d (%s): %w", i, step.Call, err)
		}
		for _, msg := range checkExpect(step, out) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Call, msg))
		}
		h.logger.Debug("flow step completed",
			zap.Int("step", i),
			zap.String("call", step.Call),
			zap.Int("status", out.status),
			zap.Error(out.err),
		)
	}

	actx := &AssertionContext{Ctx: ctx, DB: h.db, LastNatID: h.lastNat}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	logger.Info("scenario finished", zap.Bool("pass", result.Pass), zap.Int("errors", len(result.Errors)))
	return result, nil
}

// RunAll executes scenarios with up to workers running at once and returns
// their results in input order. The first scenario that cannot be executed
// cancels the rest.
//
// Scenarios running in parallel against a live database must not touch
// each other's heroes.
func RunAll(ctx context.Context, scenarios []*Scenario, deps Deps, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			r, err := Run(gctx, s, deps)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// execute performs one step, appending its call and result to the trace.
// Call failures are part of the outcome; the returned error means the step
// itself was malformed (e.g. an unknown fixture).
func (h *Harness) execute(ctx context.Context, step Step, result *Result) (outcome, error) {
	args, payload, err := h.arguments(step)
	if err != nil {
		return outcome{}, err
	}

	var traceArgs any
	if args != nil {
		traceArgs = args
	}
	h.seq++
	result.AddCallTrace(step.Call, traceArgs, h.seq)

	out := h.dispatch(ctx, step, payload)

	ev := TraceEvent{
		Route:  string(h.routes.take()),
		Status: out.status,
		Body:   out.body,
	}
	if out.err != nil {
		ev.Error = out.err.Error()
	}
	h.seq++
	ev.Seq = h.seq
	result.AddResultTrace(ev)

	return out, nil
}

// arguments resolves the step's inputs and renders them for the trace.
func (h *Harness) arguments(step Step) (map[string]any, hero.HeroPayload, error) {
	args := map[string]any{}
	var payload hero.HeroPayload

	switch step.Call {
	case CallCreateHero, CallCreateHeroWithVouchers:
		var err error
		if step.Fixture != "" {
			payload, err = h.gen.Payload(step.Fixture)
			args["fixture"] = step.Fixture
		} else {
			payload, err = literalPayload(step.Payload)
		}
		if err != nil {
			return nil, payload, err
		}
		if step.NatID != "" {
			payload.NatID = h.natid(step.NatID)
		}
		h.lastNat = payload.NatID
		args["payload"] = payload
	default:
		if step.NatID != "" {
			args["natid"] = h.natid(step.NatID)
		}
		if step.FileType != "" {
			args["file_type"] = step.FileType
		}
		if step.SQL != "" {
			args["sql"] = step.SQL
		}
		if len(step.Params) > 0 {
			args["params"] = h.params(step.Params)
		}
	}

	if len(args) == 0 {
		return nil, payload, nil
	}
	// The trace holds arguments in the same generic form as expectations.
	wire, err := normalize(args)
	if err != nil {
		return nil, payload, err
	}
	return wire.(map[string]any), payload, nil
}

// dispatch invokes the facade operation named by the step.
func (h *Harness) dispatch(ctx context.Context, step Step, payload hero.HeroPayload) outcome {
	natid := h.natid(step.NatID)

	switch step.Call {
	case CallCreateHero:
		return envelopeOutcome(ctx, func() (envelope.Envelope, error) { return h.api.CreateHero(ctx, payload) })
	case CallCreateHeroWithVouchers:
		return envelopeOutcome(ctx, func() (envelope.Envelope, error) { return h.api.CreateHeroWithVouchers(ctx, payload) })
	case CallHeroOwesMoney:
		raw := strings.TrimPrefix(natid, hero.NatIDPrefix)
		return envelopeOutcome(ctx, func() (envelope.Envelope, error) { return h.api.CheckHeroOwesMoney(ctx, raw) })
	case CallVoucherStatistics:
		return envelopeOutcome(ctx, func() (envelope.Envelope, error) { return h.api.GetVoucherStatistics(ctx) })
	case CallHeroExists:
		return valueOutcome(h.db.HeroExists(ctx, natid))
	case CallGetHero:
		return valueOutcome(h.db.GetHero(ctx, natid))
	case CallGetVouchers:
		return valueOutcome(h.db.GetVouchers(ctx, natid))
	case CallFileRecords:
		return valueOutcome(h.db.GetFileRecords(ctx, step.FileType))
	case CallQuery:
		return valueOutcome(h.db.Query(ctx, step.SQL, h.params(step.Params)))
	case CallCleanupHero:
		return outcome{err: h.db.CleanupHero(ctx, natid)}
	case CallCleanupAll:
		return outcome{err: h.db.CleanupAllTestData(ctx)}
	default:
		return outcome{err: fmt.Errorf("unknown call %q", step.Call)}
	}
}

// natid substitutes LastNatID.
func (h *Harness) natid(s string) string {
	if s == LastNatID {
		return h.lastNat
	}
	return s
}

// params substitutes LastNatID in query parameters.
func (h *Harness) params(in []any) []any {
	out := make([]any, len(in))
	for i, p := range in {
		if s, ok := p.(string); ok {
			p = h.natid(s)
		}
		out[i] = p
	}
	return out
}

func envelopeOutcome(ctx context.Context, call func() (envelope.Envelope, error)) outcome {
	env, err := call()
	if err != nil {
		return outcome{err: err}
	}
	var body any
	if err := env.Decode(ctx, &body); err != nil {
		return outcome{status: env.StatusCode(), err: err}
	}
	return outcome{status: env.StatusCode(), body: body}
}

func valueOutcome[T any](v T, err error) outcome {
	if err != nil {
		return outcome{err: err}
	}
	body, err := normalize(v)
	return outcome{body: body, err: err}
}

// literalPayload converts a scenario's payload map into a hero payload by
// way of its wire form.
func literalPayload(m map[string]any) (hero.HeroPayload, error) {
	var p hero.HeroPayload
	data, err := json.Marshal(m)
	if err != nil {
		return p, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// normalize converts v to its generic JSON form (maps, slices, float64,
// string, bool, nil), the form expectations are compared in.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize %T: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalize %T: %w", v, err)
	}
	return out, nil
}

// checkExpect compares an outcome with the step's expect clause.
func checkExpect(step Step, out outcome) []string {
	exp := step.Expect
	if exp == nil {
		if out.err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", out.err)}
		}
		return nil
	}

	if exp.Error != "" {
		if out.err == nil {
			return []string{fmt.Sprintf("expected error containing %q, call succeeded", exp.Error)}
		}
		if !strings.Contains(out.err.Error(), exp.Error) {
			return []string{fmt.Sprintf("expected error containing %q, got %v", exp.Error, out.err)}
		}
		return nil
	}
	if out.err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", out.err)}
	}

	var msgs []string
	if exp.Status != 0 && exp.Status != out.status {
		msgs = append(msgs, fmt.Sprintf("expected status %d, got %d", exp.Status, out.status))
	}
	if exp.Body != nil {
		want, err := normalize(exp.Body)
		if err != nil {
			return append(msgs, err.Error())
		}
		if mismatch, ok := matchSubset(out.body, want, "body"); !ok {
			msgs = append(msgs, mismatch)
		}
	}
	return msgs
}
