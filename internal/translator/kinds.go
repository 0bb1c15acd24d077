package translator

import "github.com/roach88/querydoc/internal/ir"

// ExprKind is the closed set of expression "type" tags.
type ExprKind int

const (
	KindColumn ExprKind = iota + 1
	KindGrouping
	KindOperator
	KindModifier
	KindFunction
	KindSlice
	KindStar
	KindValue
	KindLabel
	KindSequence
	KindSelect
)

var exprKindNames = map[ExprKind]string{
	KindColumn:   "column",
	KindGrouping: "grouping",
	KindOperator: "operator",
	KindModifier: "modifier",
	KindFunction: "function",
	KindSlice:    "slice",
	KindStar:     "star",
	KindValue:    "value",
	KindLabel:    "label",
	KindSequence: "sequence",
	KindSelect:   "select",
}

var exprKinds = func() map[string]ExprKind {
	m := make(map[string]ExprKind, len(exprKindNames))
	for k, name := range exprKindNames {
		m[name] = k
	}
	return m
}()

// String returns the document tag of k.
func (k ExprKind) String() string {
	if name, ok := exprKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseExprKind maps a "type" tag to its kind. Unrecognized tags are
// UNKNOWN_EXPRESSION_TYPE errors.
func ParseExprKind(tag string) (ExprKind, error) {
	if k, ok := exprKinds[tag]; ok {
		return k, nil
	}
	return 0, newError(ErrCodeUnknownExpressionType, ir.IRString(tag), "Unknown expression type: %s", tag)
}

// FromKind is the closed set of from-item "type" tags.
type FromKind int

const (
	FromTable FromKind = iota + 1
	FromSelect
	FromJoin
)

// ParseFromKind maps a from-item "type" tag to its kind.
func ParseFromKind(tag string) (FromKind, error) {
	switch tag {
	case "table":
		return FromTable, nil
	case "select":
		return FromSelect, nil
	case "join":
		return FromJoin, nil
	default:
		return 0, newError(ErrCodeUnknownFromItemType, ir.IRString(tag), "Unknown from-item: %s", tag)
	}
}
