package translator

import (
	"strings"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
)

// binaryBuilder combines two translated operands.
type binaryBuilder func(x, y queryir.Expr) queryir.Expr

func infix(op queryir.BinaryOp) binaryBuilder {
	return func(x, y queryir.Expr) queryir.Expr {
		return &queryir.Binary{Op: op, Left: x, Right: y}
	}
}

// getItem indexes with a plain operand and range-extracts with a slice.
func getItem(x, y queryir.Expr) queryir.Expr {
	if s, ok := y.(*queryir.Slice); ok {
		return &queryir.SliceAccess{Expr: x, Slice: s}
	}
	return &queryir.Index{Expr: x, Index: y}
}

func in(x, y queryir.Expr) queryir.Expr {
	return &queryir.In{Expr: x, Set: y}
}

// binaryOperators holds every two-operand operator under its canonical
// name and its symbolic alias.
var binaryOperators = map[string]binaryBuilder{
	"equals":      infix(queryir.OpEq),
	"=":           infix(queryir.OpEq),
	"greater":     infix(queryir.OpGt),
	">":           infix(queryir.OpGt),
	"lower":       infix(queryir.OpLt),
	"<":           infix(queryir.OpLt),
	"notequal":    infix(queryir.OpNotEq),
	"<>":          infix(queryir.OpNotEq),
	"!=":          infix(queryir.OpNotEq),
	"notgreater":  infix(queryir.OpLtEq),
	"<=":          infix(queryir.OpLtEq),
	"notlower":    infix(queryir.OpGtEq),
	">=":          infix(queryir.OpGtEq),
	"add":         infix(queryir.OpAdd),
	"+":           infix(queryir.OpAdd),
	"substract":   infix(queryir.OpSub),
	"-":           infix(queryir.OpSub),
	"multiply":    infix(queryir.OpMul),
	"*":           infix(queryir.OpMul),
	"divide":      infix(queryir.OpDiv),
	"/":           infix(queryir.OpDiv),
	"concatenate": infix(queryir.OpConcat),
	"||":          infix(queryir.OpConcat),
	"is not":      infix(queryir.OpIsNot),
	"getitem":     getItem,
	"in":          in,
}

// IsOperator reports whether name is a known operator after case folding.
func IsOperator(name string) bool {
	key := operatorKey(name)
	_, ok := binaryOperators[key]
	return ok || key == "and" || key == "or" || key == "not"
}

func operatorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseOperator applies an operator to already translated operands.
//
// "and" and "or" fold one or more operands; "not" negates exactly one;
// everything else takes exactly two.
func ParseOperator(name string, operands []queryir.Expr) (queryir.Expr, error) {
	key := operatorKey(name)
	if len(operands) == 0 {
		return nil, newError(ErrCodeArity, ir.IRString(name), "Missing arguments for '%s'.", key)
	}

	switch key {
	case "and":
		return &queryir.BoolOp{Op: queryir.And, Operands: operands}, nil
	case "or":
		return &queryir.BoolOp{Op: queryir.Or, Operands: operands}, nil
	case "not":
		if len(operands) != 1 {
			return nil, arity(key, 1, len(operands))
		}
		return &queryir.Not{Expr: operands[0]}, nil
	}

	build, ok := binaryOperators[key]
	if !ok {
		return nil, newError(ErrCodeUnsupportedOperator, ir.IRString(name), "Operator '%s' not supported", key)
	}
	if len(operands) != 2 {
		return nil, arity(key, 2, len(operands))
	}
	return build(operands[0], operands[1]), nil
}

// ParseModifier applies a sort modifier ("asc" or "desc") to exactly one
// translated operand.
func ParseModifier(name string, operands []queryir.Expr) (queryir.Expr, error) {
	key := operatorKey(name)
	if len(operands) == 0 {
		return nil, newError(ErrCodeArity, ir.IRString(name), "Missing arguments for '%s'.", key)
	}
	if len(operands) != 1 {
		return nil, arity(key, 1, len(operands))
	}
	switch key {
	case "asc":
		return &queryir.Ordering{Expr: operands[0]}, nil
	case "desc":
		return &queryir.Ordering{Expr: operands[0], Desc: true}, nil
	default:
		return nil, newError(ErrCodeUnsupportedOperator, ir.IRString(name), "Operator %s not supported", key)
	}
}

func arity(key string, want, got int) *Error {
	return newError(ErrCodeArity, ir.IRString(key),
		"Wrong number of arguments for '%s'. Expected: %d Got: %d", key, want, got)
}
