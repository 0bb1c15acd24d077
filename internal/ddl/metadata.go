package ddl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/querydoc/internal/ir"
)

// ColumnChange is a backend column description in the shape used for
// table edits.
type ColumnChange struct {
	ColumnName string  `json:"column_name"`
	NotNull    bool    `json:"not_null"`
	DataType   string  `json:"data_type"`
	NewName    *string `json:"new_name"`
	Schema     string  `json:"c_schema"`
	Table      string  `json:"c_table"`
}

// ColumnDescriptionFromRaw normalizes an information_schema.columns style
// row. A character_maximum_length is folded into the type: varchar(20).
// is_nullable may be a boolean or the strings "YES"/"NO".
func ColumnDescriptionFromRaw(schema, table, name string, raw ir.IRObject) ColumnChange {
	c := ColumnChange{ColumnName: name, Schema: schema, Table: table}

	dataType, hasType := raw.String("data_type")
	if hasType {
		switch size := raw["character_maximum_length"].(type) {
		case ir.IRInt:
			dataType += "(" + strconv.FormatInt(int64(size), 10) + ")"
		case ir.IRString:
			if size != "" {
				dataType += "(" + string(size) + ")"
			}
		}
	}
	c.DataType = dataType

	switch n := raw["is_nullable"].(type) {
	case ir.IRBool:
		c.NotNull = !bool(n)
	case ir.IRString:
		c.NotNull = strings.EqualFold(string(n), "no")
	}

	if nn, ok := raw.String("new_name"); ok {
		c.NewName = &nn
	}
	return c
}

// ConstraintChange is a backend constraint description in the shape used
// for table edits.
type ConstraintChange struct {
	Action              *string `json:"action"`
	ConstraintType      string  `json:"constraint_type"`
	ConstraintName      string  `json:"constraint_name"`
	ConstraintParameter string  `json:"constraint_parameter"`
	ReferenceTable      *string `json:"reference_table"`
	ReferenceColumn     *string `json:"reference_column"`
	Schema              string  `json:"c_schema"`
	Table               string  `json:"c_table"`
}

var (
	firstParens = regexp.MustCompile(`\(([^)]*)\)`)
	references  = regexp.MustCompile(`REFERENCES\s+([^\s(]+)\s*\(([^)]*)\)`)
)

// ConstraintDescriptionFromRaw normalizes a constraint row holding
// constraint_typ and a definition such as
// "FOREIGN KEY (user_id) REFERENCES users(id)".
func ConstraintDescriptionFromRaw(schema, table, name string, raw ir.IRObject) ConstraintChange {
	c := ConstraintChange{ConstraintName: name, Schema: schema, Table: table}
	c.ConstraintType, _ = raw.String("constraint_typ")

	def, _ := raw.String("definition")
	if m := firstParens.FindStringSubmatch(def); m != nil {
		c.ConstraintParameter = m[1]
	}
	if m := references.FindStringSubmatch(def); m != nil {
		refTable, refColumn := m[1], m[2]
		c.ReferenceTable = &refTable
		c.ReferenceColumn = &refColumn
	}
	return c
}

// ReplaceNullWithNULL returns a copy of obj in which null values are the
// string "NULL".
func ReplaceNullWithNULL(obj ir.IRObject) ir.IRObject {
	out := make(ir.IRObject, len(obj))
	for k, v := range obj {
		if _, null := v.(ir.IRNull); null || v == nil {
			out[k] = ir.IRString("NULL")
			continue
		}
		out[k] = v
	}
	return out
}
