package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

func a() queryir.Expr { return &queryir.Column{Name: "a"} }
func b() queryir.Expr { return &queryir.Literal{Value: ir.IRInt(1)} }

func TestParseOperator_BinaryTable(t *testing.T) {
	tests := []struct {
		keys []string
		op   queryir.BinaryOp
	}{
		{[]string{"equals", "="}, queryir.OpEq},
		{[]string{"greater", ">"}, queryir.OpGt},
		{[]string{"lower", "<"}, queryir.OpLt},
		{[]string{"notequal", "<>", "!="}, queryir.OpNotEq},
		{[]string{"notgreater", "<="}, queryir.OpLtEq},
		{[]string{"notlower", ">="}, queryir.OpGtEq},
		{[]string{"add", "+"}, queryir.OpAdd},
		{[]string{"substract", "-"}, queryir.OpSub},
		{[]string{"multiply", "*"}, queryir.OpMul},
		{[]string{"divide", "/"}, queryir.OpDiv},
		{[]string{"concatenate", "||"}, queryir.OpConcat},
		{[]string{"is not"}, queryir.OpIsNot},
	}
	for _, tt := range tests {
		for _, key := range tt.keys {
			t.Run(key, func(t *testing.T) {
				e, err := ParseOperator(key, []queryir.Expr{a(), b()})
				require.NoError(t, err)
				bin, ok := e.(*queryir.Binary)
				require.True(t, ok)
				assert.Equal(t, tt.op, bin.Op)
			})
		}
	}
}

func TestParseOperator_CaseFoldingAndTrim(t *testing.T) {
	e, err := ParseOperator("  EQUALS ", []queryir.Expr{a(), b()})
	require.NoError(t, err)
	assert.Equal(t, queryir.OpEq, e.(*queryir.Binary).Op)
}

func TestParseOperator_Arity(t *testing.T) {
	_, err := ParseOperator("equals", []queryir.Expr{a()})
	requireCode(t, err, ErrCodeArity)

	_, err = ParseOperator("equals", []queryir.Expr{a(), b(), b()})
	requireCode(t, err, ErrCodeArity)

	_, err = ParseOperator("or", nil)
	requireCode(t, err, ErrCodeArity)

	_, err = ParseOperator("not", []queryir.Expr{a(), b()})
	requireCode(t, err, ErrCodeArity)
}

func TestParseOperator_VariadicAnd(t *testing.T) {
	e, err := ParseOperator("and", []queryir.Expr{a(), b(), a()})
	require.NoError(t, err)
	op := e.(*queryir.BoolOp)
	assert.Equal(t, queryir.And, op.Op)
	assert.Len(t, op.Operands, 3)

	e, err = ParseOperator("OR", []queryir.Expr{a()})
	require.NoError(t, err)
	assert.Len(t, e.(*queryir.BoolOp).Operands, 1)
}

func TestParseOperator_Not(t *testing.T) {
	e, err := ParseOperator("not", []queryir.Expr{a()})
	require.NoError(t, err)
	n, ok := e.(*queryir.Not)
	require.True(t, ok)
	assert.Equal(t, a(), n.Expr)
}

func TestParseOperator_GetItem(t *testing.T) {
	e, err := ParseOperator("getitem", []queryir.Expr{a(), b()})
	require.NoError(t, err)
	assert.IsType(t, &queryir.Index{}, e)

	e, err = ParseOperator("getitem", []queryir.Expr{a(), &queryir.Slice{Start: ir.IRInt(1), Step: 1}})
	require.NoError(t, err)
	sa, ok := e.(*queryir.SliceAccess)
	require.True(t, ok)
	assert.Equal(t, ir.IRInt(1), sa.Slice.Start)
}

func TestParseOperator_In(t *testing.T) {
	e, err := ParseOperator("in", []queryir.Expr{a(), &queryir.ExprList{Items: []queryir.Expr{b()}}})
	require.NoError(t, err)
	assert.IsType(t, &queryir.In{}, e)
}

func TestParseOperator_Unsupported(t *testing.T) {
	_, err := ParseOperator("like", []queryir.Expr{a(), b()})
	requireCode(t, err, ErrCodeUnsupportedOperator)
	assert.Contains(t, err.Error(), "'like'")
}

func TestParseModifier(t *testing.T) {
	e, err := ParseModifier("DESC", []queryir.Expr{a()})
	require.NoError(t, err)
	assert.True(t, e.(*queryir.Ordering).Desc)

	e, err = ParseModifier("asc", []queryir.Expr{a()})
	require.NoError(t, err)
	assert.False(t, e.(*queryir.Ordering).Desc)

	_, err = ParseModifier("asc", nil)
	requireCode(t, err, ErrCodeArity)

	_, err = ParseModifier("asc", []queryir.Expr{a(), a()})
	requireCode(t, err, ErrCodeArity)

	_, err = ParseModifier("random", []queryir.Expr{a()})
	requireCode(t, err, ErrCodeUnsupportedOperator)
}

func TestIsOperator(t *testing.T) {
	assert.True(t, IsOperator("And"))
	assert.True(t, IsOperator("||"))
	assert.False(t, IsOperator("xor"))
}
