package translator

import (
	"context"
	"log/slog"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// ParseFromItem translates a from-item: a bare table name, a tagged
// object, or a list of from-items.
func (t *Translator) ParseFromItem(ctx context.Context, doc ir.IRValue) ([]queryir.FromItem, error) {
	return t.parser(ctx).fromItems(doc)
}

func (p *parser) fromItems(doc ir.IRValue) ([]queryir.FromItem, error) {
	list, ok := doc.(ir.IRArray)
	if !ok {
		item, err := p.fromItem(doc)
		if err != nil {
			return nil, err
		}
		return []queryir.FromItem{item}, nil
	}

	var items []queryir.FromItem
	for _, el := range list {
		sub, err := p.fromItems(el)
		if err != nil {
			return nil, err
		}
		items = append(items, sub...)
	}
	return items, nil
}

func (p *parser) fromItem(doc ir.IRValue) (queryir.FromItem, error) {
	if name, ok := doc.(ir.IRString); ok {
		doc = ir.IRObject{"type": ir.IRString("table"), "table": name}
	}
	d, err := object(doc, "from-item")
	if err != nil {
		return nil, err
	}

	tag, err := requireString(d, "type")
	if err != nil {
		return nil, err
	}
	kind, err := ParseFromKind(tag)
	if err != nil {
		return nil, err
	}

	var item queryir.FromItem
	switch kind {
	case FromTable:
		item, err = p.table(d)
	case FromSelect:
		var stmt queryir.Statement
		if stmt, err = p.selectStatement(d); err == nil {
			item = &queryir.FromSelect{Statement: stmt}
		}
	case FromJoin:
		item, err = p.join(d)
	}
	if err != nil {
		return nil, err
	}

	if d.Has("alias") {
		alias, err := identAt(d, "alias")
		if err != nil {
			return nil, err
		}
		item = &queryir.Alias{Item: item, Name: alias}
	}
	return item, nil
}

// table checks that the table exists and caches its descriptor.
func (p *parser) table(d ir.IRObject) (queryir.FromItem, error) {
	schema, err := optionalIdent(d, "schema")
	if err != nil {
		return nil, err
	}
	name, err := identAt(d, "table")
	if err != nil {
		return nil, err
	}
	only, err := flag(d, "only")
	if err != nil {
		return nil, err
	}

	r := p.t.resolver
	exists, err := r.Exists(p.ctx, schema, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		qualified := name
		if schema != "" {
			qualified = schema + "." + name
		}
		return nil, newError(ErrCodeTableNotFound, d, "Table not found: %s", qualified)
	}
	if _, err := r.Resolve(p.ctx, schema, name); err != nil {
		return nil, err
	}
	slog.Debug("resolved from-item table", "schema", schema, "table", name)

	return &queryir.Table{Schema: schema, Name: name, Only: only}, nil
}

func (p *parser) join(d ir.IRObject) (queryir.FromItem, error) {
	left, err := p.joinSide(d, "left")
	if err != nil {
		return nil, err
	}
	right, err := p.joinSide(d, "right")
	if err != nil {
		return nil, err
	}
	outer, err := flag(d, "is_outer")
	if err != nil {
		return nil, err
	}
	full, err := flag(d, "is_full")
	if err != nil {
		return nil, err
	}

	j := &queryir.Join{Left: left, Right: right, Outer: outer, Full: full}
	if on, ok := d["on"]; ok {
		if j.On, err = p.condition(on); err != nil {
			return nil, err
		}
		return j, nil
	}
	if j.On, err = p.foreignKeyCondition(d, left, right); err != nil {
		return nil, err
	}
	return j, nil
}

// joinTable is a base table inside a join side, with the qualifier its
// columns are addressed by.
type joinTable struct {
	desc   *catalog.TableDescriptor
	schema string
	name   string
}

func (jt joinTable) column(name string) *queryir.Column {
	return &queryir.Column{Schema: jt.schema, Table: jt.name, Name: name}
}

// joinTables lists the base tables of a from-item. Subselects and aliased
// joins expose no foreign keys.
func (p *parser) joinTables(item queryir.FromItem, alias string) ([]joinTable, error) {
	switch it := item.(type) {
	case *queryir.Table:
		desc, err := p.t.resolver.Resolve(p.ctx, it.Schema, it.Name)
		if err != nil {
			return nil, err
		}
		if alias != "" {
			return []joinTable{{desc: desc, name: alias}}, nil
		}
		return []joinTable{{desc: desc, schema: it.Schema, name: it.Name}}, nil
	case *queryir.Alias:
		return p.joinTables(it.Item, it.Name)
	case *queryir.Join:
		if alias != "" {
			return nil, nil
		}
		l, err := p.joinTables(it.Left, "")
		if err != nil {
			return nil, err
		}
		r, err := p.joinTables(it.Right, "")
		if err != nil {
			return nil, err
		}
		return append(l, r...), nil
	default:
		return nil, nil
	}
}

// foreignKeyCondition derives the ON clause of a join from the single
// foreign key linking its two sides, in either direction.
func (p *parser) foreignKeyCondition(d ir.IRObject, left, right queryir.FromItem) (queryir.Expr, error) {
	lefts, err := p.joinTables(left, "")
	if err != nil {
		return nil, err
	}
	rights, err := p.joinTables(right, "")
	if err != nil {
		return nil, err
	}

	type link struct {
		from, to joinTable
		fk       catalog.ForeignKey
	}
	var links []link
	for _, l := range lefts {
		for _, r := range rights {
			for _, fk := range r.desc.ReferencesTo(l.desc) {
				links = append(links, link{from: r, to: l, fk: fk})
			}
			if l.desc == r.desc {
				continue
			}
			for _, fk := range l.desc.ReferencesTo(r.desc) {
				links = append(links, link{from: l, to: r, fk: fk})
			}
		}
	}

	switch len(links) {
	case 0:
		return nil, newError(ErrCodeNoJoinCondition, d,
			"Can't find any foreign key relationships between the join sides; give an explicit on")
	case 1:
	default:
		return nil, newError(ErrCodeNoJoinCondition, d,
			"Found %d foreign key relationships between the join sides; give an explicit on", len(links))
	}

	lk := links[0]
	if len(lk.fk.Columns) == 0 || len(lk.fk.Columns) != len(lk.fk.RefColumns) {
		return nil, newError(ErrCodeNoJoinCondition, d, "Foreign key of %s has mismatched columns", lk.from.desc.Name)
	}
	conds := make([]queryir.Expr, len(lk.fk.Columns))
	for i, col := range lk.fk.Columns {
		from, err := guard(col, d)
		if err != nil {
			return nil, err
		}
		to, err := guard(lk.fk.RefColumns[i], d)
		if err != nil {
			return nil, err
		}
		conds[i] = &queryir.Binary{Op: queryir.OpEq, Left: lk.from.column(from), Right: lk.to.column(to)}
	}
	slog.Debug("inferred join condition", "from", lk.from.desc.Name, "to", lk.to.desc.Name)
	if len(conds) == 1 {
		return conds[0], nil
	}
	return &queryir.BoolOp{Op: queryir.And, Operands: conds}, nil
}

func (p *parser) joinSide(d ir.IRObject, key string) (queryir.FromItem, error) {
	v, err := lookupKey(d, key)
	if err != nil {
		return nil, err
	}
	if _, isList := v.(ir.IRArray); isList {
		return nil, &Error{Code: ErrCodeInvalidValue, Message: "join " + key + " must be a single from-item", Key: key, Node: d}
	}
	return p.fromItem(v)
}
