package harness

import "github.com/roach88/querydoc/internal/ir"

// TraceEvent records what one step translated to and, when executed,
// what it returned.
type TraceEvent struct {
	Step         int           `json:"step"`
	Kind         string        `json:"kind"`
	StatementID  string        `json:"statement_id,omitempty"`
	SQL          string        `json:"sql,omitempty"`
	Params       ir.IRArray    `json:"params,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	Rows         []ir.IRObject `json:"rows,omitempty"`
	RowsAffected int64         `json:"rows_affected,omitempty"`
}

// Failed reports whether the step ended in a translation error.
func (e TraceEvent) Failed() bool {
	return e.ErrorCode != ""
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
