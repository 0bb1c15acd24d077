package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/store"
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
		for _, event := range e.Trace {
			if event.Failed() {
				fmt.Fprintf(&buf, "  [%d] %s error %s\n", event.Step, event.Kind, event.ErrorCode)
				continue
			}
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Step, event.Kind, event.SQL)
		}
	}

	return buf.String()
}

// assertTraceCount checks that exactly Count steps of Kind translated.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Failed() {
			continue
		}
		if assertion.Kind == "" || event.Kind == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d translated %s step(s)", assertion.Count, kindLabel(assertion.Kind)),
			Actual:   fmt.Sprintf("%d", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertLogCount checks the number of query log entries.
func assertLogCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	entries, err := st.ReadLog(ctx, 0)
	if err != nil {
		return fmt.Errorf("read query log: %w", err)
	}

	count := 0
	for _, e := range entries {
		if assertion.Kind == "" || string(e.Kind) == assertion.Kind {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertLogCount,
			Expected: fmt.Sprintf("%d %s log entr(ies)", assertion.Count, kindLabel(assertion.Kind)),
			Actual:   fmt.Sprintf("%d", count),
		}
	}
	return nil
}

func kindLabel(kind string) string {
	if kind == "" {
		return "any"
	}
	return kind
}

// assertFinalState checks that exactly one row of the table matches Where
// and carries the expected values (subset semantics).
//
// Table and column names pass the identifier guard before they are quoted
// into the query; values are always bound.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if _, err := ident.ReadPgID(assertion.Table); err != nil {
		return fmt.Errorf("final_state: %w", err)
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := "SELECT * FROM " + ident.Quote(assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	res, err := st.Execute(ctx, query, whereArgs, true)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	whereDesc := formatWhereClause(assertion.Where)
	switch len(res.Rows) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", len(res.Rows)),
		}
	}
	row := res.Rows[0]

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actual, exists := row[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, res.Columns),
			}
		}
		expected, err := ir.FromGo(assertion.Expect[key])
		if err != nil {
			return fmt.Errorf("final_state: expected %q: %w", key, err)
		}
		if !irEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %s", key, canonical(expected)),
				Actual:   fmt.Sprintf("field %q = %s", key, canonical(actual)),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are
// sorted for determinism; a nil value matches IS NULL.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if _, err := ident.ReadPgID(key); err != nil {
			return "", nil, fmt.Errorf("where clause: %w", err)
		}
		if where[key] == nil {
			clauses = append(clauses, ident.Quote(key)+" IS NULL")
			continue
		}
		clauses = append(clauses, ident.Quote(key)+" = ?")
		args = append(args, where[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state and
// log_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState, AssertLogCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
			} else if assertion.Type == AssertFinalState {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			} else {
				err = assertLogCount(actx.Ctx, actx.Store, assertion)
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
