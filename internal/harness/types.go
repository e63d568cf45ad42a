package harness

// Trace event types.
const (
	EventCall   = "call"
	EventResult = "result"
)

// TraceEvent records either a call or its result.
// This provides a concrete type for the trace slice.
type TraceEvent struct {
	Type string `json:"type"` // "call" or "result"
	Call string `json:"call,omitempty"`
	Args any    `json:"args,omitempty"`

	// Route is how the call was served: live, simulated or fallback.
	Route  string `json:"route,omitempty"`
	Status int    `json:"status,omitempty"`
	Body   any    `json:"body,omitempty"`
	Error  string `json:"error,omitempty"`
	Seq    int64  `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string `json:"scenario"`

	// Pass indicates overall success: every expect clause and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains all calls and results in order.
	// Used for trace assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCallTrace adds a call to the trace.
func (r *Result) AddCallTrace(call string, args any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventCall,
		Call: call,
		Args: args,
		Seq:  seq,
	})
}

// AddResultTrace adds the result of the preceding call to the trace.
func (r *Result) AddResultTrace(ev TraceEvent) {
	ev.Type = EventResult
	r.Trace = append(r.Trace, ev)
}
