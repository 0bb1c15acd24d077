package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/translator"
)

func doc(t *testing.T, src string) ir.IRValue {
	t.Helper()
	v, err := ir.UnmarshalDocument([]byte(src))
	require.NoError(t, err)
	return v
}

func TestParseCreateTable(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "plain",
			doc:  `{"name": "users", "fields": [{"type": "column", "name": "id", "data_type": "integer"}]}`,
			want: `CREATE TABLE "users" ("id" integer)`,
		},
		{
			name: "all modifiers",
			doc: `{"name": "scratch", "global": true, "temp": "true", "unlogged": true, "if_not_exists": true,
				"fields": [{"type": "column", "name": "a", "data_type": "text", "collate": "C"},
				           {"type": "column", "name": "b", "data_type": "int8", "constraints": []}]}`,
			want: `CREATE GLOBAL TEMP UNLOGGED TABLE IF NOT EXISTS "scratch" ("a" text COLLATE "C", "b" int8)`,
		},
		{
			name: "local no fields",
			doc:  `{"name": "empty", "local": true, "temp": false}`,
			want: `CREATE LOCAL TABLE "empty" ()`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCreateTable(doc(t, tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCreateTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code translator.ErrorCode
	}{
		{"not an object", `[]`, translator.ErrCodeInvalidValue},
		{"missing name", `{"fields": []}`, translator.ErrCodeMissingField},
		{"bad name", `{"name": "users; drop"}`, translator.ErrCodeInvalidIdentifier},
		{"bad flag", `{"name": "t", "temp": "sometimes"}`, translator.ErrCodeInvalidValue},
		{"bad data type", `{"name": "t", "fields": [{"type": "column", "name": "a", "data_type": "int;"}]}`, translator.ErrCodeInvalidIdentifier},
		{"column constraint", `{"name": "t", "fields": [{"type": "column", "name": "a", "data_type": "int", "constraints": [{"type": "not_null"}]}]}`, translator.ErrCodeNotImplemented},
		{"table constraint", `{"name": "t", "fields": [{"type": "table_constraint"}]}`, translator.ErrCodeNotImplemented},
		{"like", `{"name": "t", "fields": [{"type": "like", "table": "u"}]}`, translator.ErrCodeNotImplemented},
		{"unknown field", `{"name": "t", "fields": [{"type": "index"}]}`, translator.ErrCodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCreateTable(doc(t, tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.code, translator.CodeOf(err), "got %v", err)
		})
	}
}

func TestNotImplemented_Status(t *testing.T) {
	_, err := ParseTableConstraint(ir.IRObject{})
	assert.Equal(t, 501, translator.StatusOf(err))
}
