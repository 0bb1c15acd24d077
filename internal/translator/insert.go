package translator

import (
	"context"
	"errors"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// Audit metadata columns injected into every inserted row.
const (
	MetaUser    = "_user"
	MetaMessage = "_message"
)

// InsertOptions carries the per-request inputs of an insert that do not
// come from the document.
type InsertOptions struct {
	// Message is recorded in the _message column; nil records NULL.
	Message *string

	// Mapper renames table and schema names in RETURNING column references.
	Mapper map[string]string
}

// ParseInsert translates an insert document.
//
// Rows always carry _user (from the context identity) and _message (from
// opts); caller-supplied values for those keys are overwritten.
func (t *Translator) ParseInsert(ctx context.Context, doc ir.IRValue, opts InsertOptions) (*queryir.Insert, error) {
	p := t.parser(ctx)
	d, err := object(doc, "insert")
	if err != nil {
		return nil, err
	}

	table, err := identAt(d, "table")
	if err != nil {
		return nil, err
	}
	schema, err := identAt(d, "schema")
	if err != nil {
		return nil, err
	}
	desc, err := t.resolver.Resolve(ctx, schema, table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		return nil, &Error{Code: ErrCodeTableNotFound, Message: "Table not found: " + schema + "." + table, Node: d, Err: err}
	}
	if err != nil {
		return nil, err
	}

	ins := &queryir.Insert{Schema: schema, Table: table}

	if raw, ok := d["fields"]; ok {
		list, err := asList(raw, "fields", d)
		if err != nil {
			return nil, err
		}
		for _, f := range list {
			name, err := insertField(f)
			if err != nil {
				return nil, err
			}
			if !desc.HasColumn(name) && !isMeta(name) {
				return nil, newError(ErrCodeInvalidInsertField, f, "Unknown column %s in %s.%s", name, schema, table)
			}
			ins.Columns = append(ins.Columns, name)
		}
	}

	method := "values"
	if d.Has("method") {
		if method, err = requireString(d, "method"); err != nil {
			return nil, newError(ErrCodeUnknownInsertMethod, d, "Unknown insert method: %v", d["method"])
		}
	}

	switch method {
	case "values":
		rawValues, err := lookupKey(d, "values")
		if err != nil {
			return nil, err
		}
		values, ok := rawValues.(ir.IRArray)
		if !ok {
			return nil, &Error{Code: ErrCodeInvalidValue, Message: "values is not a list", Key: "values", Node: d}
		}
		meta := metaRow(IdentityFromContext(ctx), opts.Message)
		for i, raw := range values {
			row, err := p.insertRow(ins.Columns, raw, i)
			if err != nil {
				return nil, err
			}
			if err := checkRowColumns(row, desc.HasColumn, raw); err != nil {
				return nil, err
			}
			for k, v := range meta {
				row[k] = v
			}
			ins.Rows = append(ins.Rows, row)
		}
	case "select":
		src, err := lookupKey(d, "values")
		if err != nil {
			return nil, err
		}
		if ins.Source, err = p.selectStatement(src); err != nil {
			return nil, err
		}
	default:
		return nil, newError(ErrCodeUnknownInsertMethod, d, "Unknown insert method: %s", method)
	}

	if raw, ok := d["returning"]; ok {
		list, err := asList(raw, "returning", d)
		if err != nil {
			return nil, err
		}
		rp := &parser{t: t, ctx: ctx, mapper: opts.Mapper}
		if ins.Returning, err = rp.expressions(list); err != nil {
			return nil, err
		}
	}
	return ins, nil
}

// insertField accepts a bare column name or a column expression.
func insertField(f ir.IRValue) (string, error) {
	switch v := f.(type) {
	case ir.IRString:
		return guard(string(v), f)
	case ir.IRObject:
		if tag, _ := v.String("type"); tag == "column" {
			return identAt(v, "column")
		}
	}
	return "", newError(ErrCodeInvalidInsertField, f, "Only pure column expressions are allowed in insert")
}

// insertRow builds one row: zipped against fields when given, otherwise the
// raw object is taken as column/value pairs.
func (p *parser) insertRow(fields []string, raw ir.IRValue, index int) (queryir.Row, error) {
	if len(fields) > 0 {
		list, ok := raw.(ir.IRArray)
		if !ok {
			return nil, newError(ErrCodeInvalidValue, raw, "row %d must be a list of %d values", index, len(fields))
		}
		if len(list) != len(fields) {
			return nil, newError(ErrCodeInvalidValue, raw, "row %d has %d values for %d fields", index, len(list), len(fields))
		}
		row := make(queryir.Row, len(fields))
		for i, f := range fields {
			e, err := p.expression(list[i])
			if err != nil {
				return nil, err
			}
			row[f] = e
		}
		return row, nil
	}

	obj, ok := raw.(ir.IRObject)
	if !ok {
		return nil, newError(ErrCodeInvalidValue, raw, "row %d must be an object", index)
	}
	row := make(queryir.Row, len(obj))
	for k, v := range obj {
		name, err := guard(k, obj)
		if err != nil {
			return nil, err
		}
		row[name] = rawValue(v)
	}
	return row, nil
}

// rawValue wraps a document value as data; raw rows are never parsed as
// expressions.
func rawValue(v ir.IRValue) queryir.Expr {
	if _, null := v.(ir.IRNull); null || v == nil {
		return &queryir.Null{}
	}
	return &queryir.Literal{Value: v}
}

func checkRowColumns(row queryir.Row, has func(string) bool, node ir.IRValue) error {
	for k := range row {
		if !has(k) && !isMeta(k) {
			return newError(ErrCodeInvalidInsertField, node, "Unknown column %s", k)
		}
	}
	return nil
}

func isMeta(name string) bool {
	return name == MetaUser || name == MetaMessage
}

func metaRow(id Identity, message *string) queryir.Row {
	row := queryir.Row{
		MetaUser:    &queryir.Literal{Value: ir.IRString(id.UserName())},
		MetaMessage: &queryir.Null{},
	}
	if message != nil {
		row[MetaMessage] = &queryir.Literal{Value: ir.IRString(*message)}
	}
	return row
}
