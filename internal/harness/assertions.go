package harness

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/herocheck/internal/database"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		n := 0
		for _, event := range e.Trace {
			if event.Type == EventCall {
				n++
				fmt.Fprintf(&buf, "  [%d] %s %v\n", n, event.Call, event.Args)
			}
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains a call matching the
// specified name and args (subset match), served by the given route if one
// is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := normalize(assertion.Args)
	if err != nil {
		return err
	}
	wantArgs, _ := want.(map[string]any)

	for i, event := range trace {
		if event.Type != EventCall || event.Call != assertion.Call {
			continue
		}
		if len(wantArgs) > 0 {
			if _, ok := matchSubset(event.Args, wantArgs, "args"); !ok {
				continue
			}
		}
		if assertion.Route != "" && routeOf(trace, i) != assertion.Route {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("call %s with args %v", assertion.Call, assertion.Args)
	if assertion.Route != "" {
		expected += fmt.Sprintf(" via %s", assertion.Route)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// routeOf returns the route of the result following the call at index i.
func routeOf(trace []TraceEvent, i int) string {
	if i+1 < len(trace) && trace[i+1].Type == EventResult {
		return trace[i+1].Route
	}
	return ""
}

// assertTraceOrder checks if calls appear in the specified order.
// Calls don't need to be consecutive (intervening calls are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// Each expected call is matched at or after the previous match, so a
	// name may repeat in the expected order.
	pos := 0
	for _, want := range assertion.Calls {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if event.Type == EventCall && event.Call == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %v", assertion.Calls),
				Actual:   fmt.Sprintf("no %s after the preceding calls", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the call appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventCall && event.Call == assertion.Call {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Call),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertHeroExists checks the database for the hero named by the assertion.
func assertHeroExists(actx *AssertionContext, assertion Assertion) error {
	natid := assertion.NatID
	if natid == LastNatID {
		natid = actx.LastNatID
	}
	want := assertion.Exists == nil || *assertion.Exists

	got, err := actx.DB.HeroExists(actx.Ctx, natid)
	if err != nil {
		return &AssertionError{
			Type:     AssertHeroExists,
			Expected: fmt.Sprintf("look up hero %s", natid),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if got != want {
		return &AssertionError{
			Type:     AssertHeroExists,
			Expected: fmt.Sprintf("hero %s exists = %t", natid, want),
			Actual:   fmt.Sprintf("exists = %t", got),
		}
	}
	return nil
}

// matchSubset reports whether actual contains everything in expected.
// Maps match when every expected key matches, extra keys in actual are
// ignored. Slices match element-wise and must have the same length.
// Both sides must already be normalized. On mismatch the first differing
// path is described.
func matchSubset(actual, expected any, path string) (string, bool) {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return fmt.Sprintf("%s: expected an object, got %v", path, actual), false
		}
		keys := make([]string, 0, len(exp))
		for k := range exp {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			av, present := act[k]
			if !present {
				return fmt.Sprintf("%s.%s: missing", path, k), false
			}
			if msg, ok := matchSubset(av, exp[k], path+"."+k); !ok {
				return msg, false
			}
		}
		return "", true
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return fmt.Sprintf("%s: expected a list, got %v", path, actual), false
		}
		if len(act) != len(exp) {
			return fmt.Sprintf("%s: expected %d elements, got %d", path, len(exp), len(act)), false
		}
		for i := range exp {
			if msg, ok := matchSubset(act[i], exp[i], fmt.Sprintf("%s[%d]", path, i)); !ok {
				return msg, false
			}
		}
		return "", true
	default:
		if !reflect.DeepEqual(actual, expected) {
			return fmt.Sprintf("%s: expected %v, got %v", path, expected, actual), false
		}
		return "", true
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx context.Context
	DB  *database.DB

	// LastNatID resolves the $natid placeholder.
	LastNatID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for hero_exists assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertHeroExists:
			if actx == nil || actx.DB == nil {
				err = fmt.Errorf("assertion[%d]: hero_exists requires database context", i)
			} else {
				err = assertHeroExists(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
