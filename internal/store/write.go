package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/querydoc/internal/ir"
)

// LogStatement appends an executed statement to the query log and returns
// the entry with its ID (generated when empty) and Seq filled in.
//
// Params are serialized to canonical JSON per RFC 8785 so identical
// statements log identical text.
func (s *Store) LogStatement(ctx context.Context, entry ir.LogEntry) (ir.LogEntry, error) {
	if entry.ID == "" {
		entry.ID = s.ids.Generate()
	}
	if _, err := ir.ParseStatementKind(string(entry.Kind)); err != nil {
		return ir.LogEntry{}, fmt.Errorf("log statement: %w", err)
	}

	params, err := marshalParams(entry.Params)
	if err != nil {
		return ir.LogEntry{}, fmt.Errorf("log statement: %w", err)
	}

	var message any
	if entry.Message != nil {
		message = *entry.Message
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	insert := `
		INSERT INTO query_log (id, statement_id, kind, sql, params, user_name, message)
		VALUES (` + s.placeholders(7) + `)`
	args := []any{entry.ID, entry.StatementID, string(entry.Kind), entry.SQL, params, entry.UserName, message}

	switch s.driver {
	case DriverPostgres:
		if err := s.db.QueryRowContext(ctx, insert+" RETURNING seq", args...).Scan(&entry.Seq); err != nil {
			return ir.LogEntry{}, fmt.Errorf("log statement: %w", err)
		}
	default:
		res, err := s.db.ExecContext(ctx, insert, args...)
		if err != nil {
			return ir.LogEntry{}, fmt.Errorf("log statement: %w", err)
		}
		if entry.Seq, err = res.LastInsertId(); err != nil {
			return ir.LogEntry{}, fmt.Errorf("log statement: seq: %w", err)
		}
	}

	slog.Info("statement logged", "id", entry.ID, "statement_id", entry.StatementID, "seq", entry.Seq)
	return entry, nil
}
