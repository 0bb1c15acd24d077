package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect is the rendering target. Defaults to postgres, and must be
	// sqlite when Execute is set.
	Dialect string `yaml:"dialect,omitempty"`

	// Schema resolves bare table names. Defaults to "public", or "main"
	// when executing.
	Schema string `yaml:"schema,omitempty"`

	// User is the acting identity; empty means anonymous.
	User string `yaml:"user,omitempty"`

	// Message is recorded in the _message column of inserted rows.
	Message *string `yaml:"message,omitempty"`

	// Tables is the static catalog used when not executing.
	Tables []catalog.TableDescriptor `yaml:"tables,omitempty"`

	// Execute runs every step against a fresh in-memory SQLite store.
	Execute bool `yaml:"execute,omitempty"`

	// Setup holds SQL statements run before the steps. Requires Execute.
	Setup []string `yaml:"setup,omitempty"`

	// Steps are the documents to translate, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_count, final_state, log_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one query document.
type Step struct {
	// Kind is "select" or "insert". Defaults to select.
	Kind string `yaml:"kind,omitempty"`

	// Document is the query document, decoded from YAML.
	Document any `yaml:"document"`

	// Mapper renames table and schema names in column references.
	Mapper map[string]string `yaml:"mapper,omitempty"`

	// Expect specifies the expected translation.
	// If nil, the step only has to translate.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// SQL is the exact rendered statement.
	SQL string `yaml:"sql,omitempty"`

	// Params are the bound parameters, in placeholder order.
	// If nil, params are not checked.
	Params []any `yaml:"params,omitempty"`

	// ErrorCode is the translator error code the step must fail with.
	ErrorCode string `yaml:"error_code,omitempty"`

	// Rows is the number of rows an executed step returns or affects.
	Rows *int64 `yaml:"rows,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_count": Check that exactly Count steps of Kind succeeded
	// - "final_state": Query table and verify expected values
	// - "log_count": Check the query log holds exactly Count entries
	Type string `yaml:"type"`

	// Kind filters trace_count and log_count; empty counts every kind.
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number (used by trace_count and log_count).
	Count int `yaml:"count,omitempty"`

	// Table is the table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match: only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount = "trace_count"
	AssertFinalState = "final_state"
	AssertLogCount   = "log_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// dialect returns the scenario's rendering target.
func (s *Scenario) dialect() queryir.Dialect {
	if s.Execute {
		return queryir.SQLite
	}
	if d, ok := queryir.ParseDialect(s.Dialect); ok {
		return d
	}
	return queryir.Postgres
}

// defaultSchema returns the schema bare table names resolve in.
func (s *Scenario) defaultSchema() string {
	switch {
	case s.Schema != "":
		return s.Schema
	case s.Execute:
		return "main"
	default:
		return "public"
	}
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Dialect != "" {
		d, ok := queryir.ParseDialect(s.Dialect)
		if !ok {
			return fmt.Errorf("unknown dialect %q", s.Dialect)
		}
		if s.Execute && d != queryir.SQLite {
			return fmt.Errorf("execute requires the sqlite dialect, got %q", s.Dialect)
		}
	}

	if len(s.Setup) > 0 && !s.Execute {
		return fmt.Errorf("setup requires execute")
	}
	if len(s.Tables) > 0 && s.Execute {
		return fmt.Errorf("tables cannot be combined with execute; create them in setup")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Kind != "" {
			if _, err := ir.ParseStatementKind(step.Kind); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
		if step.Document == nil {
			return fmt.Errorf("steps[%d]: document is required", i)
		}
		if e := step.Expect; e != nil {
			if e.ErrorCode != "" && (e.SQL != "" || e.Params != nil || e.Rows != nil) {
				return fmt.Errorf("steps[%d].expect: error_code excludes sql, params and rows", i)
			}
			if e.Rows != nil && !s.Execute {
				return fmt.Errorf("steps[%d].expect: rows requires execute", i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s.Execute); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, execute bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if !execute {
			return fmt.Errorf("assertions[%d]: final_state requires execute", index)
		}
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertLogCount:
		if !execute {
			return fmt.Errorf("assertions[%d]: log_count requires execute", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
