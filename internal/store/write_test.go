package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/testutil"
)

func TestLogStatement_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	msg := "monthly import"

	params, err := ParamsToIR([]any{"alice", int64(3), nil, decimal.RequireFromString("1.50")})
	require.NoError(t, err)

	logged, err := s.LogStatement(ctx, ir.LogEntry{
		StatementID: "abc",
		Kind:        ir.KindInsert,
		SQL:         `INSERT INTO "main"."users" ("name") VALUES (?)`,
		Params:      params,
		UserName:    "alice",
		Message:     &msg,
	})
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", logged.ID)
	assert.Equal(t, int64(1), logged.Seq)

	entries, err := s.ReadLog(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.Equal(t, logged.ID, got.ID)
	assert.Equal(t, ir.KindInsert, got.Kind)
	assert.Equal(t, "alice", got.UserName)
	require.NotNil(t, got.Message)
	assert.Equal(t, msg, *got.Message)
	require.Len(t, got.Params, 4)
	assert.Equal(t, ir.IRString("alice"), got.Params[0])
	assert.Equal(t, ir.IRInt(3), got.Params[1])
	assert.Equal(t, ir.IRNull{}, got.Params[2])
	num, ok := got.Params[3].(ir.IRNumber)
	require.True(t, ok, "want IRNumber, got %T", got.Params[3])
	assert.True(t, num.Equal(decimal.RequireFromString("1.5")))
}

func TestLogStatement_KeepsExplicitID(t *testing.T) {
	s := createTestStore(t)

	logged, err := s.LogStatement(context.Background(), ir.LogEntry{ID: "fixed", StatementID: "x", Kind: ir.KindSelect, SQL: "SELECT 1", UserName: "u"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", logged.ID)
	assert.Nil(t, logged.Message)
}

func TestLogStatement_DuplicateID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.db")
	s, err := Open(context.Background(), DriverSQLite, path, WithIDGenerator(testutil.NewFixedIDGenerator("same")))
	require.NoError(t, err)
	defer s.Close()

	entry := ir.LogEntry{StatementID: "x", Kind: ir.KindSelect, SQL: "SELECT 1", UserName: "u"}
	_, err = s.LogStatement(context.Background(), entry)
	require.NoError(t, err)
	_, err = s.LogStatement(context.Background(), entry)
	assert.Error(t, err)
}

func TestLogStatement_RejectsUnknownKind(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LogStatement(context.Background(), ir.LogEntry{StatementID: "x", Kind: "delete", SQL: "DELETE", UserName: "u"})
	assert.Error(t, err)
}
