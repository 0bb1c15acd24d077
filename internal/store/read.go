package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/querydoc/internal/ir"
)

// Result is the outcome of an executed statement.
type Result struct {
	// Columns lists result columns in backend order; empty for Exec.
	Columns []string
	// Rows holds one object per returned row.
	Rows []ir.IRObject
	// RowsAffected is reported for statements without result rows.
	RowsAffected int64
}

// Execute runs a compiled statement. Statements that return rows (selects
// and inserts with RETURNING) are queried; everything else is executed.
//
// Returns an empty Rows slice (not nil) when the query yields no rows.
func (s *Store) Execute(ctx context.Context, query string, params []any, returnsRows bool) (*Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !returnsRows {
		res, err := s.db.ExecContext(ctx, query, params...)
		if err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("execute: rows affected: %w", err)
		}
		return &Result{Rows: []ir.IRObject{}, RowsAffected: n}, nil
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("execute: columns: %w", err)
	}

	result := &Result{Columns: cols, Rows: []ir.IRObject{}}
	for rows.Next() {
		obj, err := scanObject(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		result.Rows = append(result.Rows, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute: iterate rows: %w", err)
	}
	result.RowsAffected = int64(len(result.Rows))
	return result, nil
}

// scanObject reads the current row into an IRObject keyed by column name.
// Duplicate column names keep the last value.
func scanObject(rows *sql.Rows, cols []string) (ir.IRObject, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	obj := make(ir.IRObject, len(cols))
	for i, col := range cols {
		v, err := columnValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		obj[col] = v
	}
	return obj, nil
}

// ReadLog returns up to limit query log entries, oldest first. A limit of
// zero or less returns every entry.
//
// Results are ordered deterministically: ORDER BY seq ASC, id ASC.
func (s *Store) ReadLog(ctx context.Context, limit int) ([]ir.LogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT seq, id, statement_id, kind, sql, params, user_name, message
		FROM query_log
		ORDER BY seq ASC, id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT " + s.placeholder(1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	entries := []ir.LogEntry{}
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query log: %w", err)
	}
	return entries, nil
}

// ReadLogByStatement returns every log entry for one statement id.
func (s *Store) ReadLogByStatement(ctx context.Context, statementID string) ([]ir.LogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, statement_id, kind, sql, params, user_name, message
		FROM query_log
		WHERE statement_id = `+s.placeholder(1)+`
		ORDER BY seq ASC, id ASC`, statementID)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	entries := []ir.LogEntry{}
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query log: %w", err)
	}
	return entries, nil
}

func scanLogEntry(rows *sql.Rows) (ir.LogEntry, error) {
	var (
		entry   ir.LogEntry
		kind    string
		params  string
		message sql.NullString
	)
	if err := rows.Scan(&entry.Seq, &entry.ID, &entry.StatementID, &kind, &entry.SQL, &params, &entry.UserName, &message); err != nil {
		return ir.LogEntry{}, fmt.Errorf("scan log entry: %w", err)
	}
	entry.Kind = ir.StatementKind(kind)

	p, err := unmarshalParams(params)
	if err != nil {
		return ir.LogEntry{}, fmt.Errorf("log entry %s: %w", entry.ID, err)
	}
	entry.Params = p
	entry.Message = nullString(message)
	return entry, nil
}
