package translator

import (
	"context"
	"strconv"
	"strings"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// ParseSelect translates a select document into a Select, or into a
// Compound when the document carries a set keyword.
//
// Not supported: WITH, WINDOW and locking clauses.
func (t *Translator) ParseSelect(ctx context.Context, doc ir.IRValue) (queryir.Statement, error) {
	return t.parser(ctx).selectStatement(doc)
}

var setKeywords = map[string]queryir.SetKeyword{
	"union":     queryir.Union,
	"intersect": queryir.Intersect,
	"except":    queryir.Except,
}

func (p *parser) selectStatement(doc ir.IRValue) (queryir.Statement, error) {
	d, err := object(doc, "select")
	if err != nil {
		return nil, err
	}

	var (
		stmt    queryir.Statement
		clauses *queryir.Clauses
	)
	if keyword, ok := setKeyword(d); ok {
		c, err := p.compound(d, keyword)
		if err != nil {
			return nil, err
		}
		stmt, clauses = c, &c.Clauses
	} else {
		s, err := p.simpleSelect(d)
		if err != nil {
			return nil, err
		}
		stmt, clauses = s, &s.Clauses
	}

	if err := p.clauses(d, clauses); err != nil {
		return nil, err
	}
	return stmt, nil
}

// setKeyword reports the set operation named by d's keyword. Any other
// keyword, including a missing or non-string one, means a plain select.
func setKeyword(d ir.IRObject) (queryir.SetKeyword, bool) {
	kw, ok := d["keyword"].(ir.IRString)
	if !ok {
		return "", false
	}
	keyword, ok := setKeywords[strings.ToLower(string(kw))]
	return keyword, ok
}

func (p *parser) compound(d ir.IRObject, keyword queryir.SetKeyword) (*queryir.Compound, error) {
	c := &queryir.Compound{Keyword: keyword}
	parts, ok := d["selects"]
	if !ok {
		return c, nil
	}
	list, err := asList(parts, "selects", d)
	if err != nil {
		return nil, err
	}

	for _, raw := range list {
		part, err := object(raw, "compound member")
		if err != nil {
			return nil, err
		}
		tag, err := requireString(part, "type")
		if err != nil {
			return nil, err
		}
		switch tag {
		case "grouping":
			grouping, err := lookupKey(part, "grouping")
			if err != nil {
				return nil, err
			}
			switch g := grouping.(type) {
			case ir.IRObject:
				s, err := p.selectStatement(g)
				if err != nil {
					return nil, err
				}
				c.Selects = append(c.Selects, s)
			case ir.IRArray:
				for _, el := range g {
					s, err := p.selectStatement(el)
					if err != nil {
						return nil, err
					}
					c.Selects = append(c.Selects, s)
				}
			default:
				return nil, newError(ErrCodeInvalidValue, part, "Cannot handle grouping type. Dictionary or list expected.")
			}
		case "select":
			s, err := p.selectStatement(part)
			if err != nil {
				return nil, err
			}
			c.Selects = append(c.Selects, s)
		default:
			return nil, newError(ErrCodeUnknownSelectType, part, "Unknown select type: %s", tag)
		}
	}
	return c, nil
}

func (p *parser) simpleSelect(d ir.IRObject) (*queryir.Select, error) {
	distinct, err := flag(d, "distinct")
	if err != nil {
		return nil, err
	}
	s := &queryir.Select{Distinct: distinct}

	if raw, ok := d["fields"]; ok {
		if _, null := raw.(ir.IRNull); !null {
			fields, err := asList(raw, "fields", d)
			if err != nil {
				return nil, err
			}
			for _, f := range fields {
				e, err := p.selectField(f)
				if err != nil {
					return nil, err
				}
				s.Columns = append(s.Columns, e)
			}
		}
	}

	if from, ok := d["from"]; ok {
		if s.From, err = p.fromItems(from); err != nil {
			return nil, err
		}
	}

	if where, ok := d["where"]; ok && !empty(where) {
		if s.Where, err = p.condition(where); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// selectField translates one output column. An "as" name is validated but
// the column keeps its own name.
func (p *parser) selectField(f ir.IRValue) (queryir.Expr, error) {
	e, err := p.field(f)
	if err != nil {
		return nil, err
	}
	if obj, ok := f.(ir.IRObject); ok && obj.Has("as") {
		if _, err := identAt(obj, "as"); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// field translates a column position: bare strings name columns.
func (p *parser) field(f ir.IRValue) (queryir.Expr, error) {
	if name, ok := f.(ir.IRString); ok {
		col, err := guard(string(name), f)
		if err != nil {
			return nil, err
		}
		return &queryir.Column{Name: col}, nil
	}
	return p.expression(f)
}

func (p *parser) clauses(d ir.IRObject, c *queryir.Clauses) error {
	if raw, ok := d["group_by"]; ok {
		list, err := asList(raw, "group_by", d)
		if err != nil {
			return err
		}
		for _, g := range list {
			e, err := p.field(g)
			if err != nil {
				return err
			}
			c.GroupBy = append(c.GroupBy, e)
		}
	}

	if raw, ok := d["having"]; ok {
		list, err := asList(raw, "having", d)
		if err != nil {
			return err
		}
		for _, h := range list {
			e, err := p.condition(h)
			if err != nil {
				return err
			}
			c.Having = append(c.Having, e)
		}
	}

	if raw, ok := d["select"]; ok {
		list, err := asList(raw, "select", d)
		if err != nil {
			return err
		}
		for _, el := range list {
			op, err := p.setOp(el)
			if err != nil {
				return err
			}
			c.SetOps = append(c.SetOps, op)
		}
	}

	if raw, ok := d["order_by"]; ok {
		list, err := asList(raw, "order_by", d)
		if err != nil {
			return err
		}
		for _, ob := range list {
			e, err := p.orderTerm(ob)
			if err != nil {
				return err
			}
			c.OrderBy = append(c.OrderBy, e)
		}
	}

	var err error
	if c.Limit, err = nonNegative(d, "limit"); err != nil {
		return err
	}
	if c.Offset, err = nonNegative(d, "offset"); err != nil {
		return err
	}
	return nil
}

func (p *parser) setOp(el ir.IRValue) (queryir.SetOp, error) {
	constraint, err := object(el, "set operation")
	if err != nil {
		return queryir.SetOp{}, err
	}
	tag, err := requireString(constraint, "type")
	if err != nil {
		return queryir.SetOp{}, err
	}
	keyword, ok := setKeywords[strings.ToLower(tag)]
	if !ok {
		return queryir.SetOp{}, newError(ErrCodeUnknownSelectType, constraint, "Unknown select type: %s", tag)
	}
	q, err := lookupKey(constraint, "query")
	if err != nil {
		return queryir.SetOp{}, err
	}
	sub, err := p.selectStatement(q)
	if err != nil {
		return queryir.SetOp{}, err
	}
	return queryir.SetOp{Keyword: keyword, Query: sub}, nil
}

// orderTerm translates an order_by entry; an "ordering" of "desc" sorts
// descending, anything else keeps the default ascending order.
func (p *parser) orderTerm(ob ir.IRValue) (queryir.Expr, error) {
	e, err := p.field(ob)
	if err != nil {
		return nil, err
	}
	obj, ok := ob.(ir.IRObject)
	if !ok {
		return e, nil
	}
	ordering := "asc"
	if obj.Has("ordering") {
		if ordering, err = requireString(obj, "ordering"); err != nil {
			return nil, err
		}
	}
	if _, sorted := e.(*queryir.Ordering); sorted {
		return e, nil
	}
	if strings.ToLower(ordering) == "desc" {
		return &queryir.Ordering{Expr: e, Desc: true}, nil
	}
	return e, nil
}

// nonNegative reads a LIMIT or OFFSET: an integer, or a string of digits.
func nonNegative(d ir.IRObject, key string) (*int64, error) {
	v, ok := d[key]
	if !ok {
		return nil, nil
	}
	invalid := &Error{Code: ErrCodeInvalidLimit, Message: "Invalid LIMIT: Expected a digit", Key: key, Node: d}

	var n int64
	switch x := v.(type) {
	case ir.IRInt:
		n = int64(x)
	case ir.IRString:
		if !isDigits(string(x)) {
			return nil, invalid
		}
		parsed, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			invalid.Err = err
			return nil, invalid
		}
		n = parsed
	default:
		return nil, invalid
	}
	if n < 0 {
		return nil, invalid
	}
	return &n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// empty reports whether v is falsy: null, false, "", or an empty list or object.
func empty(v ir.IRValue) bool {
	switch x := v.(type) {
	case nil, ir.IRNull:
		return true
	case ir.IRBool:
		return !bool(x)
	case ir.IRString:
		return x == ""
	case ir.IRArray:
		return len(x) == 0
	case ir.IRObject:
		return len(x) == 0
	default:
		return false
	}
}
