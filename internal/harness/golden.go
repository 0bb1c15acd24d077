package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/querydoc/internal/ir"
)

// TraceSnapshot captures the rendered SQL of a scenario execution.
// Statement ids are left out: they change whenever a document does, and
// the SQL already shows the difference.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Dialect      string       `json:"dialect"`
	Trace        []TraceEvent `json:"trace"`
}

// toIR converts a TraceSnapshot to an IRObject for canonical JSON.
func (s *TraceSnapshot) toIR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.IRObject{
			"step": ir.IRInt(event.Step),
			"kind": ir.IRString(event.Kind),
		}
		if event.ErrorCode != "" {
			obj["error_code"] = ir.IRString(event.ErrorCode)
		} else {
			obj["sql"] = ir.IRString(event.SQL)
			params := event.Params
			if params == nil {
				params = ir.IRArray{}
			}
			obj["params"] = params
		}
		if event.Rows != nil {
			rows := make(ir.IRArray, len(event.Rows))
			for j, r := range event.Rows {
				rows[j] = r
			}
			obj["rows"] = rows
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"dialect":       ir.IRString(s.Dialect),
		"trace":         trace,
	}
}

// Snapshot renders the canonical JSON trace of a scenario run, the
// content of its golden file.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	return snapshotBytes(scenario.Name, string(scenario.dialect()), result)
}

func snapshotBytes(scenarioName, dialect string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Dialect:      dialect,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, string(scenario.dialect()), result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName, dialect string, result *Result) error {
	t.Helper()

	traceJSON, err := snapshotBytes(scenarioName, dialect, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
