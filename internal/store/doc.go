// Package store is the database/sql backend for querydoc.
//
// Two drivers are supported:
//   - sqlite3 (github.com/mattn/go-sqlite3): a file path DSN, schema "main"
//   - postgres (github.com/lib/pq): a libpq connection string, schema "public"
//
// A Store does three jobs:
//   - Catalog: implements catalog.SchemaCatalog against sqlite_master and
//     pragma_table_info, or information_schema on postgres
//   - Execution: runs compiled statements and returns rows as ir.IRObject
//   - Query log: an append-only query_log table of executed statements
//
// # Query log ordering
//
// Log entries are ordered by seq, the table's auto-increment key, and then
// by id. Wall-clock time is recorded for humans but never used for ordering.
//
// # SQLite configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
