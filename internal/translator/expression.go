package translator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/literal"
	"github.com/roach88/querydoc/internal/queryir"
)

// ParseExpression translates an expression document.
//
// Objects dispatch on their "type" tag, lists translate element-wise into
// an ExprList, null becomes NULL and any other scalar becomes a literal.
func (t *Translator) ParseExpression(ctx context.Context, doc ir.IRValue) (queryir.Expr, error) {
	return t.parser(ctx).expression(doc)
}

// ParseCondition translates a condition. A list is an implicit AND.
func (t *Translator) ParseCondition(ctx context.Context, doc ir.IRValue) (queryir.Expr, error) {
	return t.parser(ctx).condition(doc)
}

func (p *parser) condition(doc ir.IRValue) (queryir.Expr, error) {
	if list, ok := doc.(ir.IRArray); ok {
		operands, err := p.expressions(list)
		if err != nil {
			return nil, err
		}
		return ParseOperator("AND", operands)
	}
	return p.expression(doc)
}

func (p *parser) expressions(list ir.IRArray) ([]queryir.Expr, error) {
	out := make([]queryir.Expr, 0, len(list))
	for _, item := range list {
		e, err := p.expression(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *parser) expression(doc ir.IRValue) (queryir.Expr, error) {
	switch d := doc.(type) {
	case ir.IRObject:
		return p.tagged(d)
	case ir.IRArray:
		items, err := p.expressions(d)
		if err != nil {
			return nil, err
		}
		return &queryir.ExprList{Items: items}, nil
	case nil, ir.IRNull:
		return &queryir.Null{}, nil
	default:
		return &queryir.Literal{Value: d}, nil
	}
}

func (p *parser) tagged(d ir.IRObject) (queryir.Expr, error) {
	tag, err := requireString(d, "type")
	if err != nil {
		return nil, err
	}
	kind, err := ParseExprKind(tag)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindColumn:
		return p.column(d)
	case KindGrouping:
		g, err := lookupKey(d, "grouping")
		if err != nil {
			return nil, err
		}
		return p.expression(g)
	case KindOperator:
		name, operands, err := p.operatorParts(d)
		if err != nil {
			return nil, err
		}
		return ParseOperator(name, operands)
	case KindModifier:
		name, operands, err := p.operatorParts(d)
		if err != nil {
			return nil, err
		}
		return ParseModifier(name, operands)
	case KindFunction:
		return p.function(d)
	case KindSlice:
		return slice(d)
	case KindStar:
		return &queryir.Star{}, nil
	case KindValue:
		v, ok := d["value"]
		if !ok {
			return &queryir.Null{}, nil
		}
		lv := literal.ReadPgValue(v)
		if _, null := lv.(ir.IRNull); null {
			return &queryir.Null{}, nil
		}
		return &queryir.Literal{Value: lv}, nil
	case KindLabel:
		return p.label(d)
	case KindSequence:
		return p.sequence(d)
	case KindSelect:
		stmt, err := p.selectStatement(d)
		if err != nil {
			return nil, err
		}
		return &queryir.SubSelect{Statement: stmt}, nil
	default:
		return nil, newError(ErrCodeUnknownExpressionType, d, "Unknown expression type: %s", tag)
	}
}

func (p *parser) operatorParts(d ir.IRObject) (string, []queryir.Expr, error) {
	name, err := requireString(d, "operator")
	if err != nil {
		return "", nil, err
	}
	raw, err := requireList(d, "operands")
	if err != nil {
		return "", nil, err
	}
	operands, err := p.expressions(raw)
	if err != nil {
		return "", nil, err
	}
	return name, operands, nil
}

// column resolves a column reference. With a table, the column binds to the
// table descriptor when the table is known and has the column; otherwise it
// falls back to a bare or literal column.
func (p *parser) column(d ir.IRObject) (queryir.Expr, error) {
	name, err := requireString(d, "column")
	if err != nil {
		return nil, err
	}
	isLiteral, err := flag(d, "is_literal")
	if err != nil {
		return nil, err
	}
	// Literal columns are embedded verbatim; the document vouches for them.
	if !isLiteral {
		if name, err = guard(name, d); err != nil {
			return nil, err
		}
	}
	fallback := &queryir.Column{Name: name, Literal: isLiteral}

	if !d.Has("table") {
		return fallback, nil
	}

	table, err := requireString(d, "table")
	if err != nil {
		return nil, err
	}
	if table, err = guard(p.mapName(table), d); err != nil {
		return nil, err
	}
	var schema string
	if d.Has("schema") {
		if schema, err = requireString(d, "schema"); err != nil {
			return nil, err
		}
		if schema, err = guard(p.mapName(schema), d); err != nil {
			return nil, err
		}
	}

	desc, err := p.lookupTable(schema, table)
	if err != nil {
		return nil, err
	}
	if desc != nil && desc.HasColumn(name) {
		return &queryir.Column{Schema: schema, Table: table, Name: name, Bound: true}, nil
	}
	return fallback, nil
}

func (p *parser) mapName(s string) string {
	if m, ok := p.mapper[s]; ok {
		return m
	}
	return s
}

// lookupTable returns the cached descriptor, or introspects the table if it
// exists. A table that does not exist yields nil without error.
func (p *parser) lookupTable(schema, table string) (*catalog.TableDescriptor, error) {
	r := p.t.resolver
	if desc, ok := r.Cached(schema, table); ok {
		slog.Debug("column table from cache", "schema", schema, "table", table)
		return desc, nil
	}
	exists, err := r.Exists(p.ctx, schema, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return r.Resolve(p.ctx, schema, table)
}

func (p *parser) function(d ir.IRObject) (queryir.Expr, error) {
	fname, err := requireString(d, "function")
	if err != nil {
		return nil, err
	}
	raw, err := lookupKey(d, "operands")
	if err != nil {
		return nil, err
	}

	var operands []queryir.Expr
	switch r := raw.(type) {
	case ir.IRArray:
		if operands, err = p.expressions(r); err != nil {
			return nil, err
		}
	default:
		e, err := p.expression(r)
		if err != nil {
			return nil, err
		}
		if list, ok := e.(*queryir.ExprList); ok && isGrouping(r) {
			operands = list.Items
		} else {
			operands = []queryir.Expr{e}
		}
	}

	switch fname {
	case "+":
		if len(operands) != 2 {
			return nil, newError(ErrCodeArity, d,
				"Wrong number of arguments for function %s. Expected 2. Got %d", fname, len(operands))
		}
		return &queryir.Binary{Op: queryir.OpAdd, Left: operands[0], Right: operands[1]}, nil
	case "nextval":
		if len(operands) != 1 {
			return nil, newError(ErrCodeArity, d,
				"Wrong number of arguments for function %s. Expected 1. Got %d", fname, len(operands))
		}
		if _, ok := operands[0].(*queryir.SequenceRef); !ok {
			return nil, newError(ErrCodeInvalidValue, d, "nextval expects a sequence operand")
		}
		return &queryir.NextValue{Sequence: operands[0]}, nil
	}

	name, err := guard(fname, d)
	if err != nil {
		return nil, err
	}
	return &queryir.Func{Name: name, Args: operands}, nil
}

func isGrouping(v ir.IRValue) bool {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return false
	}
	tag, _ := obj.String("type")
	return tag == "grouping"
}

func slice(d ir.IRObject) (queryir.Expr, error) {
	s := &queryir.Slice{Step: 1}
	for _, key := range []string{"start", "stop"} {
		v, ok := d[key]
		if !ok {
			continue
		}
		switch b := v.(type) {
		case ir.IRNull:
		case ir.IRInt:
			if key == "start" {
				s.Start = b
			} else {
				s.Stop = b
			}
		default:
			return nil, &Error{
				Code:    ErrCodeInvalidValue,
				Message: fmt.Sprintf("slice %s must be an integer, got %s", key, ir.TypeName(v)),
				Key:     key,
				Node:    d,
			}
		}
	}
	return s, nil
}

func (p *parser) label(d ir.IRObject) (queryir.Expr, error) {
	el, err := lookupKey(d, "element")
	if err != nil {
		return nil, err
	}
	e, err := p.expression(el)
	if err != nil {
		return nil, err
	}
	name, err := identAt(d, "label")
	if err != nil {
		return nil, err
	}
	return &queryir.Label{Expr: e, Name: name}, nil
}

func (p *parser) sequence(d ir.IRObject) (queryir.Expr, error) {
	schema := p.t.defaultSchema
	if d.Has("schema") {
		var err error
		if schema, err = identAt(d, "schema"); err != nil {
			return nil, err
		}
	}
	name, err := identAt(d, "sequence")
	if err != nil {
		return nil, err
	}
	return &queryir.SequenceRef{Schema: schema, Name: name}, nil
}
