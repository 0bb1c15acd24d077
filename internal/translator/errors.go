package translator

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/roach88/querydoc/internal/ir"
)

// Error is a translation failure caused by the input document.
//
// Translation fails fast: the first invalid node aborts the whole statement
// and no partial statement is returned. Every Error is a deterministic
// function of the document, so retrying never helps.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the document key that was missing or invalid, if any.
	Key string

	// Node is the offending document node, if any.
	Node ir.IRValue

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes translation errors.
type ErrorCode string

const (
	// ErrCodeInvalidIdentifier indicates a name outside the identifier whitelist.
	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"

	// ErrCodeMissingField indicates a required document key is absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// ErrCodeUnknownExpressionType indicates an unrecognized expression "type" tag.
	ErrCodeUnknownExpressionType ErrorCode = "UNKNOWN_EXPRESSION_TYPE"

	// ErrCodeUnsupportedOperator indicates an unknown operator or modifier.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeUnknownFromItemType indicates an unrecognized from-item "type" tag.
	ErrCodeUnknownFromItemType ErrorCode = "UNKNOWN_FROM_ITEM_TYPE"

	// ErrCodeUnknownSelectType indicates an unknown compound member or set keyword.
	ErrCodeUnknownSelectType ErrorCode = "UNKNOWN_SELECT_TYPE"

	// ErrCodeUnknownInsertMethod indicates an insert method other than values or select.
	ErrCodeUnknownInsertMethod ErrorCode = "UNKNOWN_INSERT_METHOD"

	// ErrCodeArity indicates the wrong number of operands.
	ErrCodeArity ErrorCode = "ARITY_ERROR"

	// ErrCodeInvalidInsertField indicates an insert field that is not a plain column.
	ErrCodeInvalidInsertField ErrorCode = "INVALID_INSERT_FIELD"

	// ErrCodeInvalidLimit indicates a LIMIT or OFFSET that is not a non-negative integer.
	ErrCodeInvalidLimit ErrorCode = "INVALID_LIMIT"

	// ErrCodeInvalidValue indicates a node of the wrong shape.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeTableNotFound indicates a from-item table absent from the backend.
	ErrCodeTableNotFound ErrorCode = "TABLE_NOT_FOUND"

	// ErrCodeNoJoinCondition indicates a join without "on" whose tables are
	// linked by no foreign key, or by more than one.
	ErrCodeNoJoinCondition ErrorCode = "NO_JOIN_CONDITION"

	// ErrCodeNotImplemented indicates a reserved but unimplemented construct.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" && e.Code == ErrCodeMissingField {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP-equivalent status for the error.
func (e *Error) Status() int {
	switch e.Code {
	case ErrCodeMissingField:
		return http.StatusForbidden
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}

// IsCode returns true if err is a translation error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// CodeOf returns the code of a translation error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// StatusOf returns the HTTP-equivalent status of err. Errors that are not
// translation errors are backend faults and map to 500.
func StatusOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status()
	}
	return http.StatusInternalServerError
}

func newError(code ErrorCode, node ir.IRValue, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Node: node}
}

// missingField mirrors a failed required-key lookup on node.
func missingField(node ir.IRValue, key string) *Error {
	return &Error{
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("missing key %q", key),
		Key:     key,
		Node:    node,
	}
}
