// Package literal reads literal values out of query documents.
package literal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/querydoc/internal/ir"
)

// ErrInvalidBool is returned when a flag is neither a boolean nor one of the
// accepted boolean words.
var ErrInvalidBool = errors.New("invalid value in binary field")

// ReadPgValue converts a document literal to its SQL literal form.
// Strings come back wrapped in single quotes; embedded quotes are NOT
// escaped, so the result must only ever travel as a bound parameter.
// Null (or a missing value) becomes ir.IRNull. Everything else is returned
// unchanged.
func ReadPgValue(x ir.IRValue) ir.IRValue {
	switch v := x.(type) {
	case ir.IRString:
		return ir.IRString("'" + string(v) + "'")
	case nil, ir.IRNull:
		return ir.IRNull{}
	default:
		return x
	}
}

// ReadBool accepts a boolean, or one of "true", "false", "yes", "no" in any
// case. Only the word "true" yields true: "yes" and "no" are both accepted
// and both read as false.
func ReadBool(x any) (bool, error) {
	var s string
	switch v := x.(type) {
	case bool:
		return v, nil
	case ir.IRBool:
		return bool(v), nil
	case string:
		s = v
	case ir.IRString:
		s = string(v)
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidBool, x)
	}

	switch lower := strings.ToLower(s); lower {
	case "true", "false":
		return lower == "true", nil
	case "yes", "no":
		return lower == "true", nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBool, s)
	}
}
