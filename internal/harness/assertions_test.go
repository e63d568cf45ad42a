package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/herocheck/internal/database"
	"github.com/roach88/herocheck/internal/mode"
)

func callEvent(name string, args map[string]any, seq int64) TraceEvent {
	ev := TraceEvent{Type: EventCall, Call: name, Seq: seq}
	if args != nil {
		ev.Args = args
	}
	return ev
}

func resultEvent(route string, seq int64) TraceEvent {
	return TraceEvent{Type: EventResult, Route: route, Seq: seq}
}

var sampleTrace = []TraceEvent{
	callEvent(CallCleanupAll, nil, 1),
	resultEvent("simulated", 2),
	callEvent(CallCreateHero, map[string]any{"payload": map[string]any{"natid": "natid-1", "gender": "MALE", "salary": 5000.0}}, 3),
	resultEvent("live", 4),
	callEvent(CallHeroExists, map[string]any{"natid": "natid-1"}, 5),
	resultEvent("fallback", 6),
	callEvent(CallCreateHero, map[string]any{"payload": map[string]any{"natid": "natid-2", "gender": "FEMALE"}}, 7),
	resultEvent("live", 8),
}

func TestAssertTraceContains(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   bool
	}{
		{"by name", Assertion{Call: CallCreateHero}, false},
		{"nested args", Assertion{Call: CallCreateHero, Args: map[string]any{"payload": map[string]any{"gender": "FEMALE"}}}, false},
		{"yaml int matches float", Assertion{Call: CallCreateHero, Args: map[string]any{"payload": map[string]any{"salary": 5000}}}, false},
		{"args and route", Assertion{Call: CallHeroExists, Args: map[string]any{"natid": "natid-1"}, Route: "fallback"}, false},
		{"wrong route", Assertion{Call: CallHeroExists, Route: "live"}, true},
		{"arg mismatch", Assertion{Call: CallCreateHero, Args: map[string]any{"payload": map[string]any{"natid": "natid-3"}}}, true},
		{"missing call", Assertion{Call: CallVoucherStatistics}, true},
		{"args on argless call", Assertion{Call: CallCleanupAll, Args: map[string]any{"natid": "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceContains(sampleTrace, tt.assertion)
			if tt.wantErr {
				var aerr *AssertionError
				require.ErrorAs(t, err, &aerr)
				assert.Equal(t, AssertTraceContains, aerr.Type)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{CallCleanupAll, CallHeroExists}}))
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{CallCreateHero, CallHeroExists, CallCreateHero}}))

	err := assertTraceOrder(sampleTrace, Assertion{Calls: []string{CallHeroExists, CallCleanupAll}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no db.cleanup_all after the preceding calls")

	err = assertTraceOrder(sampleTrace, Assertion{Calls: []string{CallHeroExists, CallHeroExists}})
	require.Error(t, err)
}

func TestAssertTraceCount(t *testing.T) {
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Call: CallCreateHero, Count: 2}))
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Call: CallVoucherStatistics, Count: 0}))

	err := assertTraceCount(sampleTrace, Assertion{Call: CallCreateHero, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 1 occurrences of hero.create")
	assert.Contains(t, err.Error(), "Actual: 2 occurrences")
}

func TestAssertionError_ListsCalls(t *testing.T) {
	err := &AssertionError{Type: AssertTraceCount, Expected: "a", Actual: "b", Trace: sampleTrace}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, "[1] db.cleanup_all")
	assert.Contains(t, msg, "[4] hero.create")
	assert.NotContains(t, msg, "[5]")

	bare := &AssertionError{Type: AssertHeroExists, Expected: "a", Actual: "b"}
	assert.NotContains(t, bare.Error(), "Full trace")
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"message": map[string]any{"data": "natid-2", "status": "OWE"},
		"list":    []any{map[string]any{"a": 1.0, "b": 2.0}},
		"none":    nil,
	}

	tests := []struct {
		name     string
		expected any
		ok       bool
		mismatch string
	}{
		{"empty object", map[string]any{}, true, ""},
		{"nested field", map[string]any{"message": map[string]any{"status": "OWE"}}, true, ""},
		{"list subset", map[string]any{"list": []any{map[string]any{"a": 1.0}}}, true, ""},
		{"explicit null", map[string]any{"none": nil}, true, ""},
		{"wrong value", map[string]any{"message": map[string]any{"status": "NIL"}}, false, "body.message.status: expected NIL, got OWE"},
		{"missing key", map[string]any{"other": 1.0}, false, "body.other: missing"},
		{"list length", map[string]any{"list": []any{}}, false, "body.list: expected 0 elements, got 1"},
		{"list element", map[string]any{"list": []any{map[string]any{"b": 3.0}}}, false, "body.list[0].b: expected 3, got 2"},
		{"object vs scalar", map[string]any{"message": "x"}, false, "body.message: expected x, got map[data:natid-2 status:OWE]"},
		{"scalar vs object", map[string]any{"none": map[string]any{}}, false, "body.none: expected an object, got <nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mismatch, ok := matchSubset(actual, tt.expected, "body")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mismatch, mismatch)
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	db := database.New(nil, nil, mode.NewController(mode.SurfaceDB, mode.Config{Simulate: true}))
	no := false
	actx := &AssertionContext{Ctx: context.Background(), DB: db, LastNatID: "natid-9"}

	res := &Result{Trace: sampleTrace}
	errs := EvaluateAssertions(res, []Assertion{
		{Type: AssertTraceCount, Call: CallCreateHero, Count: 2},
		{Type: AssertHeroExists, NatID: LastNatID},
		{Type: AssertHeroExists, NatID: "natid-invalid", Exists: &no},
	}, actx)
	assert.Empty(t, errs)

	errs = EvaluateAssertions(res, []Assertion{
		{Type: AssertHeroExists, NatID: "natid-invalid"},
		{Type: AssertHeroExists, NatID: "natid-1"},
		{Type: "final_state"},
	}, &AssertionContext{Ctx: context.Background()})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "hero_exists requires database context")
	assert.Contains(t, errs[2], `unknown assertion type "final_state"`)

	errs = EvaluateAssertions(res, []Assertion{{Type: AssertHeroExists, NatID: "natid-invalid"}}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "hero natid-invalid exists = true")
	assert.Contains(t, errs[0], "exists = false")
}
