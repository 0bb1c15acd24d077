package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
)

func TestColumnDescriptionFromRaw(t *testing.T) {
	raw := ir.IRObject{
		"data_type":                ir.IRString("character varying"),
		"character_maximum_length": ir.IRInt(20),
		"is_nullable":              ir.IRString("NO"),
	}
	got := ColumnDescriptionFromRaw("public", "users", "name", raw)
	assert.Equal(t, ColumnChange{
		ColumnName: "name",
		NotNull:    true,
		DataType:   "character varying(20)",
		Schema:     "public",
		Table:      "users",
	}, got)

	got = ColumnDescriptionFromRaw("main", "t", "x", ir.IRObject{
		"data_type":   ir.IRString("INTEGER"),
		"is_nullable": ir.IRBool(true),
		"new_name":    ir.IRString("y"),
	})
	assert.False(t, got.NotNull)
	assert.Equal(t, "INTEGER", got.DataType)
	require.NotNil(t, got.NewName)
	assert.Equal(t, "y", *got.NewName)
}

func TestConstraintDescriptionFromRaw(t *testing.T) {
	got := ConstraintDescriptionFromRaw("public", "orders", "orders_user_fk", ir.IRObject{
		"constraint_typ": ir.IRString("f"),
		"definition":     ir.IRString("FOREIGN KEY (user_id) REFERENCES users(id)"),
	})
	assert.Equal(t, "f", got.ConstraintType)
	assert.Equal(t, "user_id", got.ConstraintParameter)
	require.NotNil(t, got.ReferenceTable)
	assert.Equal(t, "users", *got.ReferenceTable)
	require.NotNil(t, got.ReferenceColumn)
	assert.Equal(t, "id", *got.ReferenceColumn)
	assert.Nil(t, got.Action)

	pk := ConstraintDescriptionFromRaw("public", "orders", "orders_pkey", ir.IRObject{
		"constraint_typ": ir.IRString("p"),
		"definition":     ir.IRString("PRIMARY KEY (id)"),
	})
	assert.Equal(t, "id", pk.ConstraintParameter)
	assert.Nil(t, pk.ReferenceTable)
	assert.Nil(t, pk.ReferenceColumn)
}

func TestReplaceNullWithNULL(t *testing.T) {
	in := ir.IRObject{"a": ir.IRNull{}, "b": ir.IRInt(1)}
	out := ReplaceNullWithNULL(in)
	assert.Equal(t, ir.IRObject{"a": ir.IRString("NULL"), "b": ir.IRInt(1)}, out)
	assert.Equal(t, ir.IRNull{}, in["a"])
}
