package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
	"github.com/roach88/querydoc/internal/querysql"
	"github.com/roach88/querydoc/internal/store"
	"github.com/roach88/querydoc/internal/testutil"
	"github.com/roach88/querydoc/internal/translator"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario   *Scenario
	store      *store.Store // nil unless the scenario executes
	translator *translator.Translator
	dialect    queryir.Dialect
	logger     *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Executing scenarios get a fresh in-memory database each. Execution flow:
//  1. Build the catalog (static tables, or the store after setup SQL)
//  2. Translate and render every step, checking its expect clause
//  3. Run the statement and log it, when executing
//  4. Evaluate assertions
//
// The returned error reports harness failures (bad setup SQL, unreadable
// documents); expectation mismatches land in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	h := &Harness{
		scenario: scenario,
		dialect:  scenario.dialect(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	var cat catalog.SchemaCatalog
	if scenario.Execute {
		st, err := store.Open(ctx, store.DriverSQLite, ":memory:",
			store.WithIDGenerator(testutil.NewSequentialIDGenerator()))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		h.store = st

		if err := h.executeSetup(ctx); err != nil {
			return nil, fmt.Errorf("failed to execute setup: %w", err)
		}
		cat = st
	} else {
		cat = catalog.NewStaticCatalog(scenario.Tables...)
	}
	h.translator = translator.New(cat, translator.WithDefaultSchema(scenario.defaultSchema()))

	result := NewResult()
	if err := h.executeSteps(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Store: h.store,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup runs the setup statements in order.
func (h *Harness) executeSetup(ctx context.Context) error {
	for i, stmt := range h.scenario.Setup {
		if _, err := h.store.Execute(ctx, stmt, nil, false); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		h.logger.Info("setup statement applied", "step", i)
	}
	return nil
}

// executeSteps translates, checks and optionally runs every step.
func (h *Harness) executeSteps(ctx context.Context, result *Result) error {
	identity := translator.Identity{Anonymous: true}
	if h.scenario.User != "" {
		identity = translator.Identity{Name: h.scenario.User}
	}
	ctx = translator.ContextWithIdentity(ctx, identity)

	for i, step := range h.scenario.Steps {
		kind := ir.KindSelect
		if step.Kind != "" {
			k, err := ir.ParseStatementKind(step.Kind)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			kind = k
		}

		doc, err := ir.FromGo(step.Document)
		if err != nil {
			return fmt.Errorf("step %d: failed to convert document: %w", i, err)
		}

		event := TraceEvent{Step: i, Kind: string(kind)}
		if event.StatementID, err = ir.StatementID(kind, doc); err != nil {
			return fmt.Errorf("step %d: failed to compute statement ID: %w", i, err)
		}

		stmt, err := h.translator.Translate(ctx, kind, doc, translator.InsertOptions{
			Message: h.scenario.Message,
			Mapper:  step.Mapper,
		})
		if err != nil {
			var te *translator.Error
			if !errors.As(err, &te) {
				return fmt.Errorf("step %d: %w", i, err)
			}
			event.ErrorCode = string(te.Code)
			result.AddTrace(event)
			h.checkError(i, step.Expect, te, result)
			h.logger.Info("step failed", "step", i, "code", te.Code)
			continue
		}

		sql, args, err := querysql.NewCompiler(h.dialect).Compile(stmt)
		if err != nil {
			return fmt.Errorf("step %d: failed to render: %w", i, err)
		}
		params, err := store.ParamsToIR(args)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		event.SQL = sql
		event.Params = params

		if h.store != nil {
			res, err := h.store.Execute(ctx, sql, args, querysql.ReturnsRows(stmt))
			if err != nil {
				return fmt.Errorf("step %d: failed to execute %q: %w", i, sql, err)
			}
			event.Rows = res.Rows
			event.RowsAffected = res.RowsAffected

			if _, err := h.store.LogStatement(ctx, ir.LogEntry{
				StatementID: event.StatementID,
				Kind:        kind,
				SQL:         sql,
				Params:      params,
				UserName:    identity.UserName(),
				Message:     h.scenario.Message,
			}); err != nil {
				return fmt.Errorf("step %d: failed to log statement: %w", i, err)
			}
		}

		result.AddTrace(event)
		h.checkExpect(i, step.Expect, event, result)
		h.logger.Info("step completed", "step", i, "statement_id", event.StatementID)
	}
	return nil
}

// checkError validates a failed step against its expect clause.
func (h *Harness) checkError(i int, expect *ExpectClause, te *translator.Error, result *Result) {
	if expect == nil || expect.ErrorCode == "" {
		result.AddError(fmt.Sprintf("step %d: unexpected error: %v", i, te))
		return
	}
	if string(te.Code) != expect.ErrorCode {
		result.AddError(fmt.Sprintf("step %d: expected error %s, got %s (%s)", i, expect.ErrorCode, te.Code, te.Message))
	}
}

// checkExpect validates a translated step against its expect clause.
func (h *Harness) checkExpect(i int, expect *ExpectClause, event TraceEvent, result *Result) {
	if expect == nil {
		return
	}
	if expect.ErrorCode != "" {
		result.AddError(fmt.Sprintf("step %d: expected error %s, got %s", i, expect.ErrorCode, event.SQL))
		return
	}
	if expect.SQL != "" && expect.SQL != event.SQL {
		result.AddError(fmt.Sprintf("step %d: sql mismatch\n  Expected: %s\n  Actual: %s", i, expect.SQL, event.SQL))
	}
	if expect.Params != nil {
		want, err := ir.FromGo(expect.Params)
		if err != nil {
			result.AddError(fmt.Sprintf("step %d: expected params: %v", i, err))
			return
		}
		if !irEqual(want, event.Params) {
			result.AddError(fmt.Sprintf("step %d: params mismatch\n  Expected: %s\n  Actual: %s", i, canonical(want), canonical(event.Params)))
		}
	}
	if expect.Rows != nil && *expect.Rows != event.RowsAffected {
		result.AddError(fmt.Sprintf("step %d: expected %d row(s), got %d", i, *expect.Rows, event.RowsAffected))
	}
}

// irEqual compares two values by their canonical encoding, so 2 and 2.0
// decimals compare equal.
func irEqual(a, b ir.IRValue) bool {
	return canonical(a) == canonical(b)
}

func canonical(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
