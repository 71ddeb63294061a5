package harness

import "github.com/roach88/tenure/internal/ledger"

// TraceEvent records one executed step and its outcome.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Action string `json:"action"`

	// ID is the record the step addressed or created, zero if none.
	ID ledger.ID `json:"id,omitempty"`

	Input *ledger.Input `json:"input,omitempty"`

	// Outcome is "ok", "noop", "not_found", "validation" or "storage".
	Outcome string `json:"outcome"`

	Error string `json:"error,omitempty"`

	// Duration is the rendered duration of the affected record.
	Duration string `json:"duration,omitempty"`

	// Records is the list length after the step.
	Records int `json:"records"`
}

// Step outcomes recorded in the trace.
const (
	OutcomeOK       = "ok"
	OutcomeNoop     = "noop"
	OutcomeNotFound = "not_found"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the final record list.
	Records []ledger.Record `json:"records"`

	// Total is the final aggregate.
	Total ledger.Duration `json:"total"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Records: []ledger.Record{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends ev to the trace, numbering it.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
