package queryir

import "fmt"

// DialectReport lists features of a statement that a dialect lacks or
// renders differently than Postgres.
type DialectReport struct {
	// Supported is false when rendering for the dialect will fail.
	Supported bool

	// Warnings describes each divergent feature. Empty for Postgres.
	Warnings []string
}

// CheckDialect walks a statement and reports what will not render the same
// way on the given dialect.
//
// SQLite divergences:
//  1. FULL OUTER joins are unsupported by older SQLite builds
//  2. sequences do not exist (NextValue fails to render)
//  3. array slicing and indexing have no native form
//  4. missing insert columns become NULL instead of DEFAULT
//
// CheckDialect is a pure function with no side effects.
func CheckDialect(stmt Statement, d Dialect) DialectReport {
	c := &checker{dialect: d, warnings: []string{}, supported: true}
	c.statement(stmt)
	return DialectReport{Supported: c.supported, Warnings: c.warnings}
}

type checker struct {
	dialect   Dialect
	warnings  []string
	supported bool
}

func (c *checker) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) fail(format string, args ...any) {
	c.supported = false
	c.warn(format, args...)
}

func (c *checker) statement(s Statement) {
	switch st := s.(type) {
	case nil:
		c.fail("nil statement")
	case *Select:
		for _, e := range st.Columns {
			c.expr(e)
		}
		for _, f := range st.From {
			c.from(f)
		}
		c.expr(st.Where)
		c.clauses(&st.Clauses)
	case *Compound:
		for _, m := range st.Selects {
			c.statement(m)
		}
		c.clauses(&st.Clauses)
	case *Insert:
		if st.Source != nil {
			c.statement(st.Source)
		}
		if c.dialect == SQLite && len(st.Rows) > 1 && rowsRagged(st.Rows) {
			c.warn("insert into %s: rows with differing keys pad missing columns with NULL, not DEFAULT", st.Table)
		}
		for _, row := range st.Rows {
			for _, e := range row {
				c.expr(e)
			}
		}
		for _, e := range st.Returning {
			c.expr(e)
		}
	default:
		c.fail("unknown statement type: %T", s)
	}
}

func (c *checker) clauses(cl *Clauses) {
	for _, e := range cl.GroupBy {
		c.expr(e)
	}
	for _, e := range cl.Having {
		c.expr(e)
	}
	for _, op := range cl.SetOps {
		c.statement(op.Query)
	}
	for _, e := range cl.OrderBy {
		c.expr(e)
	}
}

func (c *checker) from(f FromItem) {
	switch it := f.(type) {
	case *Table:
		if it.Only && c.dialect == SQLite {
			c.warn("ONLY %s is ignored on sqlite", it.Name)
		}
	case *Join:
		if it.Full && c.dialect == SQLite {
			c.warn("FULL OUTER join requires sqlite 3.39 or newer")
		}
		c.from(it.Left)
		c.from(it.Right)
		c.expr(it.On)
	case *Alias:
		c.from(it.Item)
	case *FromSelect:
		c.statement(it.Statement)
	default:
		c.fail("unknown from item type: %T", f)
	}
}

func (c *checker) expr(e Expr) {
	switch x := e.(type) {
	case nil, *Column, *Literal, *Null, *Star, *SequenceRef, *Slice:
	case *Binary:
		c.expr(x.Left)
		c.expr(x.Right)
	case *BoolOp:
		for _, o := range x.Operands {
			c.expr(o)
		}
	case *Not:
		c.expr(x.Expr)
	case *Ordering:
		c.expr(x.Expr)
	case *Func:
		for _, a := range x.Args {
			c.expr(a)
		}
	case *NextValue:
		if c.dialect == SQLite {
			c.fail("sequences are not available on sqlite")
		}
	case *Label:
		c.expr(x.Expr)
	case *Index:
		if c.dialect == SQLite {
			c.fail("array indexing is not available on sqlite")
		}
		c.expr(x.Expr)
		c.expr(x.Index)
	case *SliceAccess:
		if c.dialect == SQLite {
			c.fail("array slicing is not available on sqlite")
		}
		c.expr(x.Expr)
	case *In:
		c.expr(x.Expr)
		c.expr(x.Set)
	case *ExprList:
		for _, i := range x.Items {
			c.expr(i)
		}
	case *SubSelect:
		c.statement(x.Statement)
	default:
		c.fail("unknown expression type: %T", e)
	}
}

func rowsRagged(rows []Row) bool {
	first := rows[0]
	for _, r := range rows[1:] {
		if len(r) != len(first) {
			return true
		}
		for k := range r {
			if _, ok := first[k]; !ok {
				return true
			}
		}
	}
	return false
}
