package translator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
	"github.com/roach88/querydoc/internal/querysql"
	"github.com/roach88/querydoc/internal/testutil"
)

func newFake() *testutil.FakeCatalog {
	return testutil.NewFakeCatalog(
		testutil.Table("public", "users", "id", "name", "age", "_user", "_message"),
		testutil.WithForeignKey(testutil.Table("public", "orders", "id", "user_id", "total"), []string{"user_id"}, "users", "id"),
		testutil.Table("geo", "cities", "id", "name"),
	)
}

func doc(t *testing.T, src string) ir.IRValue {
	t.Helper()
	v, err := ir.UnmarshalDocument([]byte(src))
	require.NoError(t, err)
	return v
}

func render(t *testing.T, stmt queryir.Statement) (string, []any) {
	t.Helper()
	sql, params, err := querysql.NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	return sql, params
}

func renderExpr(t *testing.T, e queryir.Expr) (string, []any) {
	t.Helper()
	return render(t, &queryir.Select{Columns: []queryir.Expr{e}})
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.True(t, IsCode(err, code), "want %s, got %v", code, err)
}

var bg = context.Background()
