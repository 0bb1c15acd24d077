package queryir

import "github.com/roach88/querydoc/internal/ir"

// Expr is a value expression: column, literal, operator application, call.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode()
}

// FromItem is a source of rows usable in a FROM clause.
//
// This is a sealed interface - only types in this package implement it.
type FromItem interface {
	fromNode()
}

// Statement is a complete SELECT, compound SELECT or INSERT.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	statementNode()
}

// Column references a column.
//
// Bound columns were resolved against a table descriptor and render fully
// qualified. Literal columns render Name verbatim with no quoting; the
// document author vouches for their safety. Otherwise Name is quoted.
type Column struct {
	Schema  string
	Table   string
	Name    string
	Bound   bool
	Literal bool
}

func (*Column) exprNode() {}

// Literal is a constant value; it is always rendered as a bound parameter.
type Literal struct {
	Value ir.IRValue
}

func (*Literal) exprNode() {}

// Null is the SQL NULL constant.
type Null struct{}

func (*Null) exprNode() {}

// Star is the "*" column marker.
type Star struct{}

func (*Star) exprNode() {}

// BinaryOp enumerates infix operators.
type BinaryOp string

const (
	OpEq     BinaryOp = "="
	OpGt     BinaryOp = ">"
	OpLt     BinaryOp = "<"
	OpNotEq  BinaryOp = "!="
	OpLtEq   BinaryOp = "<="
	OpGtEq   BinaryOp = ">="
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpIsNot  BinaryOp = "IS NOT"
	OpConcat BinaryOp = "||"
)

// Binary applies an infix operator. Comparing against Null with OpEq or
// OpNotEq renders as IS NULL / IS NOT NULL. OpConcat renders as concat()
// on Postgres.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// BoolOpKind is AND or OR.
type BoolOpKind string

const (
	And BoolOpKind = "AND"
	Or  BoolOpKind = "OR"
)

// BoolOp folds one or more operands with AND or OR.
type BoolOp struct {
	Op       BoolOpKind
	Operands []Expr
}

func (*BoolOp) exprNode() {}

// Not negates a condition.
type Not struct {
	Expr Expr
}

func (*Not) exprNode() {}

// Ordering attaches a sort direction.
type Ordering struct {
	Expr Expr
	Desc bool
}

func (*Ordering) exprNode() {}

// Func is a generic SQL function call. Name has passed the identifier guard.
type Func struct {
	Name string
	Args []Expr
}

func (*Func) exprNode() {}

// SequenceRef names a sequence object.
type SequenceRef struct {
	Schema string
	Name   string
}

func (*SequenceRef) exprNode() {}

// NextValue draws the next value from a sequence.
type NextValue struct {
	Sequence Expr
}

func (*NextValue) exprNode() {}

// Label gives an expression an output name.
type Label struct {
	Expr Expr
	Name string
}

func (*Label) exprNode() {}

// Slice is a (start, stop, step) range; nil bounds are open.
// It is only meaningful as the right operand of SliceAccess.
type Slice struct {
	Start ir.IRValue
	Stop  ir.IRValue
	Step  int64
}

func (*Slice) exprNode() {}

// Index is element access: expr[index].
type Index struct {
	Expr  Expr
	Index Expr
}

func (*Index) exprNode() {}

// SliceAccess is range access: expr[start:stop].
type SliceAccess struct {
	Expr  Expr
	Slice *Slice
}

func (*SliceAccess) exprNode() {}

// In is set membership. Set is an ExprList or a SubSelect.
type In struct {
	Expr Expr
	Set  Expr
}

func (*In) exprNode() {}

// ExprList is an ordered list of expressions, rendered parenthesized.
type ExprList struct {
	Items []Expr
}

func (*ExprList) exprNode() {}

// SubSelect embeds a statement as a scalar or set expression.
type SubSelect struct {
	Statement Statement
}

func (*SubSelect) exprNode() {}

// Table references a table. Schema may be empty.
type Table struct {
	Schema string
	Name   string
	Only   bool
}

func (*Table) fromNode() {}

// Join combines two from-items. Outer selects LEFT OUTER, Full selects FULL OUTER.
type Join struct {
	Left  FromItem
	Right FromItem
	On    Expr // nil means no condition
	Outer bool
	Full  bool
}

func (*Join) fromNode() {}

// Alias renames a from-item.
type Alias struct {
	Item FromItem
	Name string
}

func (*Alias) fromNode() {}

// FromSelect uses a statement as a derived table.
type FromSelect struct {
	Statement Statement
}

func (*FromSelect) fromNode() {}

// SetKeyword is UNION, INTERSECT or EXCEPT.
type SetKeyword string

const (
	Union     SetKeyword = "UNION"
	Intersect SetKeyword = "INTERSECT"
	Except    SetKeyword = "EXCEPT"
)

// SetOp appends another statement to a select with a set keyword.
type SetOp struct {
	Keyword SetKeyword
	Query   Statement
}

// Clauses are the trailing clauses shared by Select and Compound.
type Clauses struct {
	GroupBy []Expr
	Having  []Expr // ANDed
	SetOps  []SetOp
	OrderBy []Expr
	Limit   *int64
	Offset  *int64
}

// Select is a single SELECT.
//
// Semantics:
//
//	SELECT [DISTINCT] <columns | *> [FROM <from>] [WHERE <where>]
//	[GROUP BY ...] [HAVING ...] [<set ops>] [ORDER BY ...] [LIMIT n] [OFFSET m]
type Select struct {
	Distinct bool
	Columns  []Expr // empty = *
	From     []FromItem
	Where    Expr // nil = no filter
	Clauses
}

func (*Select) statementNode() {}

// Compound combines several statements with one set keyword.
type Compound struct {
	Keyword SetKeyword
	Selects []Statement
	Clauses
}

func (*Compound) statementNode() {}

// Row is one insert row: column name to value expression.
type Row map[string]Expr

// Insert is INSERT ... VALUES or INSERT ... SELECT.
// Exactly one of Rows and Source is set.
type Insert struct {
	Schema    string
	Table     string
	Columns   []string // explicit field list; empty means derived from Rows
	Rows      []Row
	Source    Statement
	Returning []Expr
}

func (*Insert) statementNode() {}

// Dialect selects SQL rendering rules.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a dialect or driver name to a Dialect.
func ParseDialect(s string) (Dialect, bool) {
	switch s {
	case "postgres", "postgresql", "pq":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	default:
		return "", false
	}
}
