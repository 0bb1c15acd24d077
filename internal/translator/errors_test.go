package translator

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/querydoc/internal/ir"
)

func TestError_Message(t *testing.T) {
	err := missingField(ir.IRObject{}, "table")
	assert.Equal(t, `MISSING_FIELD: missing key "table" (key=table)`, err.Error())

	err = newError(ErrCodeArity, nil, "Wrong number of arguments for '%s'.", "equals")
	assert.Equal(t, "ARITY_ERROR: Wrong number of arguments for 'equals'.", err.Error())
}

func TestError_Status(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeMissingField, http.StatusForbidden},
		{ErrCodeNotImplemented, http.StatusNotImplemented},
		{ErrCodeTableNotFound, http.StatusBadRequest},
		{ErrCodeInvalidIdentifier, http.StatusBadRequest},
		{ErrCodeInvalidLimit, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, (&Error{Code: tt.code}).Status())
		})
	}
}

func TestIsCode_Wrapped(t *testing.T) {
	base := newError(ErrCodeUnsupportedOperator, nil, "nope")
	wrapped := fmt.Errorf("translating: %w", base)

	assert.True(t, IsCode(wrapped, ErrCodeUnsupportedOperator))
	assert.False(t, IsCode(wrapped, ErrCodeArity))
	assert.Equal(t, ErrCodeUnsupportedOperator, CodeOf(wrapped))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeArity))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &Error{Code: ErrCodeInvalidValue, Err: cause}
	assert.ErrorIs(t, err, cause)
}
