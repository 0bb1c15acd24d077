package querysql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// ErrUnsupported is returned when a statement uses a feature the target
// dialect cannot express.
var ErrUnsupported = errors.New("not supported by dialect")

// Compiler renders queryir statements to parameterized SQL.
//
// CRITICAL: literal values are always bound parameters, never interpolated.
// The only text embedded verbatim is guarded identifiers, literal columns,
// and integer LIMIT/OFFSET values.
type Compiler struct {
	dialect queryir.Dialect
}

// NewCompiler creates a Compiler for the given dialect.
func NewCompiler(d queryir.Dialect) *Compiler {
	return &Compiler{dialect: d}
}

// Dialect returns the dialect the compiler renders for.
func (c *Compiler) Dialect() queryir.Dialect {
	return c.dialect
}

// Compile converts a statement to SQL.
// Returns (sql, params, error) tuple.
func (c *Compiler) Compile(stmt queryir.Statement) (string, []any, error) {
	if stmt == nil {
		return "", nil, fmt.Errorf("cannot compile nil statement")
	}
	w := &writer{dialect: c.dialect}
	if err := w.statement(stmt); err != nil {
		return "", nil, err
	}
	return w.sb.String(), w.params, nil
}

// ReturnsRows reports whether executing stmt produces a result set.
func ReturnsRows(stmt queryir.Statement) bool {
	switch s := stmt.(type) {
	case *queryir.Select, *queryir.Compound:
		return true
	case *queryir.Insert:
		return len(s.Returning) > 0
	default:
		return false
	}
}

// writer accumulates SQL text and parameters for one Compile call.
type writer struct {
	dialect queryir.Dialect
	sb      strings.Builder
	params  []any
	anon    int
}

func (w *writer) write(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

// bind appends a parameter and writes its placeholder.
func (w *writer) bind(v ir.IRValue) error {
	p, err := ParamValue(v)
	if err != nil {
		return err
	}
	w.params = append(w.params, p)
	if w.dialect == queryir.Postgres {
		w.write("$", strconv.Itoa(len(w.params)))
	} else {
		w.write("?")
	}
	return nil
}

func (w *writer) unsupported(feature string) error {
	return fmt.Errorf("%s on %s: %w", feature, w.dialect, ErrUnsupported)
}

func (w *writer) statement(s queryir.Statement) error {
	switch st := s.(type) {
	case *queryir.Select:
		return w.selectStmt(st)
	case *queryir.Compound:
		return w.compound(st)
	case *queryir.Insert:
		return w.insert(st)
	default:
		return fmt.Errorf("unsupported statement type: %T", s)
	}
}

func (w *writer) selectStmt(s *queryir.Select) error {
	w.write("SELECT ")
	if s.Distinct {
		w.write("DISTINCT ")
	}
	if len(s.Columns) == 0 {
		w.write("*")
	} else if err := w.exprList(s.Columns); err != nil {
		return err
	}

	if len(s.From) > 0 {
		w.write(" FROM ")
		for i, f := range s.From {
			if i > 0 {
				w.write(", ")
			}
			if err := w.from(f, false); err != nil {
				return err
			}
		}
	}

	if s.Where != nil {
		w.write(" WHERE ")
		if err := w.expr(s.Where); err != nil {
			return fmt.Errorf("compile where: %w", err)
		}
	}
	return w.clauses(&s.Clauses)
}

func (w *writer) compound(s *queryir.Compound) error {
	if len(s.Selects) == 0 {
		return fmt.Errorf("%s without member selects", s.Keyword)
	}
	for i, m := range s.Selects {
		if i > 0 {
			w.write(" ", string(s.Keyword), " ")
		}
		if err := w.member(m); err != nil {
			return err
		}
	}
	return w.clauses(&s.Clauses)
}

// member renders one operand of a set operation. Postgres accepts
// parenthesized members; SQLite does not, so members carrying their own
// ordering or limits are wrapped in a derived table there.
func (w *writer) member(s queryir.Statement) error {
	if w.dialect == queryir.Postgres {
		w.write("(")
		if err := w.statement(s); err != nil {
			return err
		}
		w.write(")")
		return nil
	}
	if needsWrap(s) {
		w.write("SELECT * FROM (")
		if err := w.statement(s); err != nil {
			return err
		}
		w.write(")")
		return nil
	}
	return w.statement(s)
}

func needsWrap(s queryir.Statement) bool {
	switch st := s.(type) {
	case *queryir.Select:
		return hasTrailing(&st.Clauses)
	case *queryir.Compound:
		return true
	default:
		return false
	}
}

func hasTrailing(c *queryir.Clauses) bool {
	return len(c.SetOps) > 0 || len(c.OrderBy) > 0 || c.Limit != nil || c.Offset != nil
}

func (w *writer) clauses(c *queryir.Clauses) error {
	if len(c.GroupBy) > 0 {
		w.write(" GROUP BY ")
		if err := w.exprList(c.GroupBy); err != nil {
			return err
		}
	}
	if len(c.Having) > 0 {
		w.write(" HAVING ")
		if err := w.expr(&queryir.BoolOp{Op: queryir.And, Operands: c.Having}); err != nil {
			return fmt.Errorf("compile having: %w", err)
		}
	}
	for _, op := range c.SetOps {
		w.write(" ", string(op.Keyword), " ")
		if err := w.member(op.Query); err != nil {
			return err
		}
	}
	if len(c.OrderBy) > 0 {
		w.write(" ORDER BY ")
		if err := w.exprList(c.OrderBy); err != nil {
			return err
		}
	}
	if c.Limit != nil {
		w.write(" LIMIT ", strconv.FormatInt(*c.Limit, 10))
	} else if c.Offset != nil && w.dialect == queryir.SQLite {
		// SQLite only accepts OFFSET after a LIMIT clause.
		w.write(" LIMIT -1")
	}
	if c.Offset != nil {
		w.write(" OFFSET ", strconv.FormatInt(*c.Offset, 10))
	}
	return nil
}

func (w *writer) insert(s *queryir.Insert) error {
	w.write("INSERT INTO ", ident.Qualified(s.Schema, s.Table))

	switch {
	case s.Source != nil:
		if len(s.Columns) > 0 {
			w.write(" (", quoteAll(s.Columns), ")")
		}
		w.write(" ")
		if err := w.statement(s.Source); err != nil {
			return fmt.Errorf("compile insert source: %w", err)
		}
	case len(s.Rows) > 0:
		cols := InsertColumns(s.Rows)
		w.write(" (", quoteAll(cols), ") VALUES ")
		for i, row := range s.Rows {
			if i > 0 {
				w.write(", ")
			}
			w.write("(")
			for j, col := range cols {
				if j > 0 {
					w.write(", ")
				}
				e, ok := row[col]
				if !ok {
					if w.dialect == queryir.Postgres {
						w.write("DEFAULT")
					} else {
						w.write("NULL")
					}
					continue
				}
				if err := w.expr(e); err != nil {
					return fmt.Errorf("compile row %d column %q: %w", i, col, err)
				}
			}
			w.write(")")
		}
	default:
		return fmt.Errorf("insert into %s has no rows", s.Table)
	}

	if len(s.Returning) > 0 {
		w.write(" RETURNING ")
		if err := w.exprList(s.Returning); err != nil {
			return err
		}
	}
	return nil
}

// InsertColumns returns the sorted union of the rows' column names.
func InsertColumns(rows []queryir.Row) []string {
	set := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	cols := maps.Keys(set)
	slices.Sort(cols)
	return cols
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

func (w *writer) from(f queryir.FromItem, aliased bool) error {
	switch it := f.(type) {
	case *queryir.Table:
		if it.Only && w.dialect == queryir.Postgres {
			w.write("ONLY ")
		}
		w.write(ident.Qualified(it.Schema, it.Name))
	case *queryir.Join:
		if err := w.from(it.Left, false); err != nil {
			return err
		}
		switch {
		case it.Full:
			w.write(" FULL OUTER JOIN ")
		case it.Outer:
			w.write(" LEFT OUTER JOIN ")
		default:
			w.write(" JOIN ")
		}
		if _, nested := it.Right.(*queryir.Join); nested {
			w.write("(")
			if err := w.from(it.Right, false); err != nil {
				return err
			}
			w.write(")")
		} else if err := w.from(it.Right, false); err != nil {
			return err
		}
		if it.On == nil {
			return fmt.Errorf("compile join: no ON condition")
		}
		w.write(" ON ")
		if err := w.expr(it.On); err != nil {
			return fmt.Errorf("compile join on: %w", err)
		}
	case *queryir.Alias:
		_, isJoin := it.Item.(*queryir.Join)
		if isJoin {
			w.write("(")
		}
		if err := w.from(it.Item, true); err != nil {
			return err
		}
		if isJoin {
			w.write(")")
		}
		w.write(" AS ", ident.Quote(it.Name))
	case *queryir.FromSelect:
		w.write("(")
		if err := w.statement(it.Statement); err != nil {
			return err
		}
		w.write(")")
		if !aliased {
			// Postgres requires every derived table to carry a name.
			w.anon++
			w.write(" AS anon_", strconv.Itoa(w.anon))
		}
	default:
		return fmt.Errorf("unsupported from item type: %T", f)
	}
	return nil
}

func (w *writer) exprList(es []queryir.Expr) error {
	for i, e := range es {
		if i > 0 {
			w.write(", ")
		}
		if err := w.expr(e); err != nil {
			return err
		}
	}
	return nil
}

// operand renders e, parenthesizing compound expressions.
func (w *writer) operand(e queryir.Expr) error {
	switch e.(type) {
	case *queryir.Binary, *queryir.BoolOp, *queryir.Not, *queryir.In:
		w.write("(")
		if err := w.expr(e); err != nil {
			return err
		}
		w.write(")")
		return nil
	default:
		return w.expr(e)
	}
}

func isNull(e queryir.Expr) bool {
	switch x := e.(type) {
	case *queryir.Null:
		return true
	case *queryir.Literal:
		_, null := x.Value.(ir.IRNull)
		return x.Value == nil || null
	default:
		return false
	}
}

func (w *writer) expr(e queryir.Expr) error {
	switch x := e.(type) {
	case *queryir.Column:
		if x.Literal {
			w.write(x.Name)
		} else {
			w.write(ident.Qualified(x.Schema, x.Table, x.Name))
		}
	case *queryir.Literal:
		if isNull(x) {
			w.write("NULL")
			return nil
		}
		return w.bind(x.Value)
	case *queryir.Null:
		w.write("NULL")
	case *queryir.Star:
		w.write("*")
	case *queryir.Binary:
		return w.binary(x)
	case *queryir.BoolOp:
		if len(x.Operands) == 0 {
			return fmt.Errorf("%s without operands", x.Op)
		}
		for i, o := range x.Operands {
			if i > 0 {
				w.write(" ", string(x.Op), " ")
			}
			if err := w.operand(o); err != nil {
				return err
			}
		}
	case *queryir.Not:
		w.write("NOT ")
		return w.operand(x.Expr)
	case *queryir.Ordering:
		if err := w.operand(x.Expr); err != nil {
			return err
		}
		if x.Desc {
			w.write(" DESC")
		} else {
			w.write(" ASC")
		}
	case *queryir.Func:
		w.write(x.Name, "(")
		if err := w.exprList(x.Args); err != nil {
			return err
		}
		w.write(")")
	case *queryir.SequenceRef:
		w.write(ident.Qualified(x.Schema, x.Name))
	case *queryir.NextValue:
		if w.dialect != queryir.Postgres {
			return w.unsupported("sequence next value")
		}
		seq, ok := x.Sequence.(*queryir.SequenceRef)
		if !ok {
			return fmt.Errorf("next value of %T: expected a sequence", x.Sequence)
		}
		w.write("nextval('", ident.Qualified(seq.Schema, seq.Name), "')")
	case *queryir.Label:
		if err := w.operand(x.Expr); err != nil {
			return err
		}
		w.write(" AS ", ident.Quote(x.Name))
	case *queryir.Index:
		if w.dialect != queryir.Postgres {
			return w.unsupported("array indexing")
		}
		w.write("(")
		if err := w.expr(x.Expr); err != nil {
			return err
		}
		w.write(")[")
		if err := w.expr(x.Index); err != nil {
			return err
		}
		w.write("]")
	case *queryir.SliceAccess:
		if w.dialect != queryir.Postgres {
			return w.unsupported("array slicing")
		}
		w.write("(")
		if err := w.expr(x.Expr); err != nil {
			return err
		}
		w.write(")[")
		if x.Slice.Start != nil {
			if err := w.bind(x.Slice.Start); err != nil {
				return err
			}
		}
		w.write(":")
		if x.Slice.Stop != nil {
			if err := w.bind(x.Slice.Stop); err != nil {
				return err
			}
		}
		w.write("]")
	case *queryir.Slice:
		return fmt.Errorf("slice outside of item access")
	case *queryir.In:
		if list, ok := x.Set.(*queryir.ExprList); ok && len(list.Items) == 0 {
			// Nothing is a member of the empty set.
			w.write("1 = 0")
			return nil
		}
		if err := w.operand(x.Expr); err != nil {
			return err
		}
		w.write(" IN ")
		switch x.Set.(type) {
		case *queryir.ExprList, *queryir.SubSelect:
			return w.expr(x.Set)
		default:
			w.write("(")
			if err := w.expr(x.Set); err != nil {
				return err
			}
			w.write(")")
		}
	case *queryir.ExprList:
		w.write("(")
		if err := w.exprList(x.Items); err != nil {
			return err
		}
		w.write(")")
	case *queryir.SubSelect:
		w.write("(")
		if err := w.statement(x.Statement); err != nil {
			return err
		}
		w.write(")")
	default:
		return fmt.Errorf("unsupported expression type: %T", e)
	}
	return nil
}

func (w *writer) binary(b *queryir.Binary) error {
	if isNull(b.Right) && (b.Op == queryir.OpEq || b.Op == queryir.OpNotEq || b.Op == queryir.OpIsNot) {
		if err := w.operand(b.Left); err != nil {
			return err
		}
		if b.Op == queryir.OpEq {
			w.write(" IS NULL")
		} else {
			w.write(" IS NOT NULL")
		}
		return nil
	}

	if b.Op == queryir.OpConcat && w.dialect == queryir.Postgres {
		w.write("concat(")
		if err := w.expr(b.Left); err != nil {
			return err
		}
		w.write(", ")
		if err := w.expr(b.Right); err != nil {
			return err
		}
		w.write(")")
		return nil
	}

	if err := w.operand(b.Left); err != nil {
		return err
	}
	w.write(" ", string(b.Op), " ")
	return w.operand(b.Right)
}

// ParamValue converts an ir.IRValue to a database/sql parameter.
// Arrays and objects are sent as JSON text.
func ParamValue(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil, nil
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRNumber:
		return val.Decimal, nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRArray, ir.IRObject:
		data, err := ir.MarshalIRValue(val)
		if err != nil {
			return nil, fmt.Errorf("convert parameter: %w", err)
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
