package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"select_basic", "insert_audit", "sqlite_execute"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			// Golden files are compared by goldie:
			//   go test ./internal/harness -run TestRunWithGolden -update
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestSnapshot_Canonical(t *testing.T) {
	scenario := &Scenario{Name: "snap", Dialect: "sqlite"}
	result := &Result{Trace: []TraceEvent{
		{Step: 0, Kind: "select", SQL: `SELECT ?`, Params: ir.IRArray{ir.IRString("<a&b>")}, StatementID: "ignored"},
		{Step: 1, Kind: "insert", ErrorCode: "INVALID_VALUE"},
	}}

	data, err := Snapshot(scenario, result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"dialect":"sqlite","scenario_name":"snap","trace":[{"kind":"select","params":["<a&b>"],"sql":"SELECT ?","step":0},{"error_code":"INVALID_VALUE","kind":"insert","step":1}]}`,
		string(data))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "sqlite_execute.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
