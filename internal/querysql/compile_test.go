package querysql

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

func col(name string) *queryir.Column { return &queryir.Column{Name: name} }

func lit(v ir.IRValue) *queryir.Literal { return &queryir.Literal{Value: v} }

func users() *queryir.Table { return &queryir.Table{Schema: "public", Name: "users"} }

func i64(n int64) *int64 { return &n }

func TestCompile_SimpleSelect(t *testing.T) {
	stmt := &queryir.Select{
		Columns: []queryir.Expr{
			&queryir.Column{Schema: "public", Table: "users", Name: "id", Bound: true},
			col("name"),
		},
		From:  []queryir.FromItem{users()},
		Where: &queryir.Binary{Op: queryir.OpEq, Left: col("name"), Right: lit(ir.IRString("'bob'"))},
	}

	sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, `SELECT "public"."users"."id", "name" FROM "public"."users" WHERE "name" = $1`, sql)
	assert.NotContains(t, sql, "bob")
	assert.Equal(t, []any{"'bob'"}, params)
}

func TestCompile_SQLitePlaceholders(t *testing.T) {
	stmt := &queryir.Select{
		From: []queryir.FromItem{users()},
		Where: &queryir.BoolOp{Op: queryir.And, Operands: []queryir.Expr{
			&queryir.Binary{Op: queryir.OpGt, Left: col("age"), Right: lit(ir.IRInt(18))},
			&queryir.Binary{Op: queryir.OpLt, Left: col("age"), Right: lit(ir.IRInt(65))},
		}},
	}

	sql, params, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "public"."users" WHERE ("age" > ?) AND ("age" < ?)`, sql)
	assert.Equal(t, []any{int64(18), int64(65)}, params)
}

func TestCompile_NullComparisons(t *testing.T) {
	tests := []struct {
		name string
		op   queryir.BinaryOp
		want string
	}{
		{"equals", queryir.OpEq, `SELECT * FROM "public"."users" WHERE "deleted" IS NULL`},
		{"not equals", queryir.OpNotEq, `SELECT * FROM "public"."users" WHERE "deleted" IS NOT NULL`},
		{"is not", queryir.OpIsNot, `SELECT * FROM "public"."users" WHERE "deleted" IS NOT NULL`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := &queryir.Select{
				From:  []queryir.FromItem{users()},
				Where: &queryir.Binary{Op: tt.op, Left: col("deleted"), Right: &queryir.Null{}},
			}
			sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Empty(t, params)
		})
	}
}

func TestCompile_NotAndOr(t *testing.T) {
	stmt := &queryir.Select{
		Columns: []queryir.Expr{&queryir.Star{}},
		From:    []queryir.FromItem{users()},
		Where: &queryir.Not{Expr: &queryir.BoolOp{Op: queryir.Or, Operands: []queryir.Expr{
			&queryir.Binary{Op: queryir.OpEq, Left: col("a"), Right: lit(ir.IRInt(1))},
			&queryir.Binary{Op: queryir.OpEq, Left: col("b"), Right: lit(ir.IRInt(2))},
		}}},
	}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "public"."users" WHERE NOT (("a" = $1) OR ("b" = $2))`, sql)
}

func TestCompile_Joins(t *testing.T) {
	on := &queryir.Binary{Op: queryir.OpEq,
		Left:  &queryir.Column{Schema: "public", Table: "users", Name: "id", Bound: true},
		Right: &queryir.Column{Schema: "public", Table: "orders", Name: "user_id", Bound: true}}
	orders := &queryir.Table{Schema: "public", Name: "orders"}

	tests := []struct {
		name string
		join *queryir.Join
		want string
	}{
		{"inner", &queryir.Join{Left: users(), Right: orders, On: on},
			`SELECT * FROM "public"."users" JOIN "public"."orders" ON "public"."users"."id" = "public"."orders"."user_id"`},
		{"left outer", &queryir.Join{Left: users(), Right: orders, On: on, Outer: true},
			`SELECT * FROM "public"."users" LEFT OUTER JOIN "public"."orders" ON "public"."users"."id" = "public"."orders"."user_id"`},
		{"full", &queryir.Join{Left: users(), Right: orders, On: on, Outer: true, Full: true},
			`SELECT * FROM "public"."users" FULL OUTER JOIN "public"."orders" ON "public"."users"."id" = "public"."orders"."user_id"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := NewCompiler(queryir.Postgres).Compile(&queryir.Select{From: []queryir.FromItem{tt.join}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompile_JoinWithoutConditionFails(t *testing.T) {
	orders := &queryir.Table{Schema: "public", Name: "orders"}
	_, _, err := NewCompiler(queryir.Postgres).Compile(&queryir.Select{
		From: []queryir.FromItem{&queryir.Join{Left: users(), Right: orders}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ON condition")
}

func TestCompile_AliasAndDerivedTables(t *testing.T) {
	inner := &queryir.Select{Columns: []queryir.Expr{col("id")}, From: []queryir.FromItem{users()}}
	stmt := &queryir.Select{From: []queryir.FromItem{
		&queryir.Alias{Item: users(), Name: "u"},
		&queryir.Alias{Item: &queryir.FromSelect{Statement: inner}, Name: "ids"},
		&queryir.FromSelect{Statement: inner},
	}}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "public"."users" AS "u", (SELECT "id" FROM "public"."users") AS "ids", (SELECT "id" FROM "public"."users") AS anon_1`,
		sql)
}

func TestCompile_OnlyIsPostgresOnly(t *testing.T) {
	stmt := &queryir.Select{From: []queryir.FromItem{&queryir.Table{Name: "t", Only: true}}}

	pg, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM ONLY "t"`, pg)

	lite, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t"`, lite)
}

func TestCompile_Clauses(t *testing.T) {
	stmt := &queryir.Select{
		Distinct: true,
		Columns:  []queryir.Expr{col("city"), &queryir.Func{Name: "count", Args: []queryir.Expr{&queryir.Star{}}}},
		From:     []queryir.FromItem{users()},
		Clauses: queryir.Clauses{
			GroupBy: []queryir.Expr{col("city")},
			Having: []queryir.Expr{
				&queryir.Binary{Op: queryir.OpGt, Left: &queryir.Func{Name: "count", Args: []queryir.Expr{&queryir.Star{}}}, Right: lit(ir.IRInt(2))},
			},
			OrderBy: []queryir.Expr{&queryir.Ordering{Expr: col("city"), Desc: true}, &queryir.Ordering{Expr: col("id")}},
			Limit:   i64(10),
			Offset:  i64(20),
		},
	}

	sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT DISTINCT "city", count(*) FROM "public"."users" GROUP BY "city" HAVING (count(*) > $1) ORDER BY "city" DESC, "id" ASC LIMIT 10 OFFSET 20`,
		sql)
	assert.Equal(t, []any{int64(2)}, params)
}

func TestCompile_SQLiteOffsetWithoutLimit(t *testing.T) {
	stmt := &queryir.Select{From: []queryir.FromItem{users()}, Clauses: queryir.Clauses{Offset: i64(5)}}

	sql, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "public"."users" LIMIT -1 OFFSET 5`, sql)
}

func TestCompile_Compound(t *testing.T) {
	a := &queryir.Select{Columns: []queryir.Expr{col("id")}, From: []queryir.FromItem{&queryir.Table{Name: "a"}}}
	b := &queryir.Select{Columns: []queryir.Expr{col("id")}, From: []queryir.FromItem{&queryir.Table{Name: "b"}}}
	stmt := &queryir.Compound{
		Keyword: queryir.Union,
		Selects: []queryir.Statement{a, b},
		Clauses: queryir.Clauses{Limit: i64(3)},
	}

	pg, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `(SELECT "id" FROM "a") UNION (SELECT "id" FROM "b") LIMIT 3`, pg)

	lite, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "a" UNION SELECT "id" FROM "b" LIMIT 3`, lite)
}

func TestCompile_SQLiteWrapsLimitedMembers(t *testing.T) {
	a := &queryir.Select{From: []queryir.FromItem{&queryir.Table{Name: "a"}}, Clauses: queryir.Clauses{Limit: i64(1)}}
	b := &queryir.Select{From: []queryir.FromItem{&queryir.Table{Name: "b"}}}
	stmt := &queryir.Compound{Keyword: queryir.Except, Selects: []queryir.Statement{a, b}}

	sql, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM (SELECT * FROM "a" LIMIT 1) EXCEPT SELECT * FROM "b"`, sql)
}

func TestCompile_SetOpsOnSelect(t *testing.T) {
	other := &queryir.Select{From: []queryir.FromItem{&queryir.Table{Name: "b"}}}
	stmt := &queryir.Select{
		From: []queryir.FromItem{&queryir.Table{Name: "a"}},
		Clauses: queryir.Clauses{
			SetOps:  []queryir.SetOp{{Keyword: queryir.Intersect, Query: other}},
			OrderBy: []queryir.Expr{&queryir.Ordering{Expr: col("id")}},
		},
	}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "a" INTERSECT (SELECT * FROM "b") ORDER BY "id" ASC`, sql)
}

func TestCompile_InsertRows(t *testing.T) {
	stmt := &queryir.Insert{
		Schema: "public",
		Table:  "users",
		Rows: []queryir.Row{
			{"name": lit(ir.IRString("alice")), "_user": lit(ir.IRString("bob")), "_message": &queryir.Null{}},
			{"age": lit(ir.IRInt(3)), "_user": lit(ir.IRString("bob")), "_message": &queryir.Null{}},
		},
		Returning: []queryir.Expr{&queryir.Column{Schema: "public", Table: "users", Name: "id", Bound: true}},
	}

	pg, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."users" ("_message", "_user", "age", "name") VALUES (NULL, $1, DEFAULT, $2), (NULL, $3, $4, DEFAULT) RETURNING "public"."users"."id"`,
		pg)
	assert.Equal(t, []any{"bob", "alice", "bob", int64(3)}, params)

	lite, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."users" ("_message", "_user", "age", "name") VALUES (NULL, ?, NULL, ?), (NULL, ?, ?, NULL) RETURNING "public"."users"."id"`,
		lite)
}

func TestCompile_InsertFromSelect(t *testing.T) {
	src := &queryir.Select{Columns: []queryir.Expr{col("name")}, From: []queryir.FromItem{&queryir.Table{Name: "staging"}}}
	stmt := &queryir.Insert{Schema: "public", Table: "users", Columns: []string{"name"}, Source: src}

	sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."users" ("name") SELECT "name" FROM "staging"`, sql)
	assert.Empty(t, params)
}

func TestCompile_InsertWithoutRows(t *testing.T) {
	_, _, err := NewCompiler(queryir.Postgres).Compile(&queryir.Insert{Table: "t"})
	assert.Error(t, err)
}

func TestCompile_Sequences(t *testing.T) {
	stmt := &queryir.Select{Columns: []queryir.Expr{
		&queryir.NextValue{Sequence: &queryir.SequenceRef{Schema: "public", Name: "ids"}},
	}}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT nextval('"public"."ids"')`, sql)

	_, _, err = NewCompiler(queryir.SQLite).Compile(stmt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestCompile_Concat(t *testing.T) {
	stmt := &queryir.Select{Columns: []queryir.Expr{
		&queryir.Label{Expr: &queryir.Binary{Op: queryir.OpConcat, Left: col("first"), Right: col("last")}, Name: "full"},
	}}

	pg, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT (concat("first", "last")) AS "full"`, pg)

	lite, _, err := NewCompiler(queryir.SQLite).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT ("first" || "last") AS "full"`, lite)
}

func TestCompile_InAndSubselect(t *testing.T) {
	sub := &queryir.Select{Columns: []queryir.Expr{col("user_id")}, From: []queryir.FromItem{&queryir.Table{Name: "orders"}}}
	stmt := &queryir.Select{
		From: []queryir.FromItem{users()},
		Where: &queryir.BoolOp{Op: queryir.And, Operands: []queryir.Expr{
			&queryir.In{Expr: col("id"), Set: &queryir.SubSelect{Statement: sub}},
			&queryir.In{Expr: col("role"), Set: &queryir.ExprList{Items: []queryir.Expr{lit(ir.IRString("a")), lit(ir.IRString("b"))}}},
		}},
	}

	sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "public"."users" WHERE ("id" IN (SELECT "user_id" FROM "orders")) AND ("role" IN ($1, $2))`,
		sql)
	assert.Equal(t, []any{"a", "b"}, params)
}

func TestCompile_InEmptyList(t *testing.T) {
	stmt := &queryir.Select{Where: &queryir.In{Expr: col("id"), Set: &queryir.ExprList{}}}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * WHERE 1 = 0`, sql)
}

func TestCompile_ArrayAccess(t *testing.T) {
	stmt := &queryir.Select{Columns: []queryir.Expr{
		&queryir.Index{Expr: col("tags"), Index: lit(ir.IRInt(1))},
		&queryir.SliceAccess{Expr: col("tags"), Slice: &queryir.Slice{Start: ir.IRInt(2), Step: 1}},
	}}

	sql, params, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT ("tags")[$1], ("tags")[$2:]`, sql)
	assert.Equal(t, []any{int64(1), int64(2)}, params)

	_, _, err = NewCompiler(queryir.SQLite).Compile(stmt)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCompile_LiteralColumnVerbatim(t *testing.T) {
	stmt := &queryir.Select{Columns: []queryir.Expr{&queryir.Column{Name: "now()", Literal: true}}}

	sql, _, err := NewCompiler(queryir.Postgres).Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, `SELECT now()`, sql)
}

func TestCompile_Nil(t *testing.T) {
	_, _, err := NewCompiler(queryir.Postgres).Compile(nil)
	assert.Error(t, err)
}

func TestReturnsRows(t *testing.T) {
	assert.True(t, ReturnsRows(&queryir.Select{}))
	assert.True(t, ReturnsRows(&queryir.Compound{}))
	assert.False(t, ReturnsRows(&queryir.Insert{}))
	assert.True(t, ReturnsRows(&queryir.Insert{Returning: []queryir.Expr{col("id")}}))
}

func TestParamValue(t *testing.T) {
	tests := []struct {
		name string
		in   ir.IRValue
		want any
	}{
		{"null", ir.IRNull{}, nil},
		{"string", ir.IRString("x"), "x"},
		{"int", ir.IRInt(7), int64(7)},
		{"bool", ir.IRBool(true), true},
		{"decimal", ir.MustIRNumber("1.10"), decimal.RequireFromString("1.10")},
		{"array", ir.IRArray{ir.IRInt(1), ir.IRString("a")}, `[1,"a"]`},
		{"object", ir.IRObject{"b": ir.IRInt(1), "a": ir.IRBool(false)}, `{"a":false,"b":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParamValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsertColumns_SortedUnion(t *testing.T) {
	rows := []queryir.Row{{"b": &queryir.Null{}}, {"a": &queryir.Null{}, "b": &queryir.Null{}}, {"c": &queryir.Null{}}}
	assert.Equal(t, []string{"a", "b", "c"}, InsertColumns(rows))
}
