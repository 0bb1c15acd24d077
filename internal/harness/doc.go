// Package harness runs conformance scenarios for query documents.
//
// A scenario lists query documents, the tables they resolve against and
// what each document must translate to. With execute set, the documents
// also run against a fresh in-memory SQLite store and the scenario can
// assert on the resulting rows and query log.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	dialect: postgres          # postgres (default) or sqlite
//	schema: public             # default schema for bare table names
//	user: alice                # acting user; anonymous when empty
//	tables:                    # static catalog, when not executing
//	  - schema: public
//	    name: users
//	    columns:
//	      - { name: id, data_type: integer }
//	execute: false             # run steps against in-memory sqlite
//	setup:                     # SQL run before the steps when executing
//	  - CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)
//	steps:
//	  - kind: select
//	    document: { from: users, fields: [] }
//	    expect:
//	      sql: 'SELECT * FROM "users"'
//	      params: []
//	assertions:
//	  - type: final_state
//	    table: users
//	    where: { id: 1 }
//	    expect: { name: "Ann" }
//
// An expect clause either names the SQL and params a step renders to, or
// the translator error_code it fails with.
//
// # Assertion Types
//
//   - trace_count: exactly N steps of a kind succeeded
//   - final_state: one row of a table matches the expected values
//   - log_count: the query log holds exactly N entries
//
// # Deterministic Testing
//
// Log entry ids come from testutil.SequentialIDGenerator and every run
// uses its own database, so the trace of a scenario is reproducible and
// can be compared against golden files with RunWithGolden.
package harness
