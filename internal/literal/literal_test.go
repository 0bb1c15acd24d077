package literal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/ir"
)

func TestReadPgValue(t *testing.T) {
	tests := []struct {
		name string
		in   ir.IRValue
		want ir.IRValue
	}{
		{"string is quoted", ir.IRString("x"), ir.IRString("'x'")},
		{"embedded quote is not escaped", ir.IRString("it's"), ir.IRString("'it's'")},
		{"null", ir.IRNull{}, ir.IRNull{}},
		{"missing", nil, ir.IRNull{}},
		{"int passes through", ir.IRInt(7), ir.IRInt(7)},
		{"bool passes through", ir.IRBool(false), ir.IRBool(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadPgValue(tt.in))
		})
	}
}

func TestReadPgValueDecimal(t *testing.T) {
	n := ir.MustIRNumber("2.50")
	assert.Equal(t, n, ReadPgValue(n))
}

func TestReadBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{ir.IRBool(true), true},
		{"TRUE", true},
		{"true", true},
		{"False", false},
		{"No", false},
		{"no", false},
		// "yes" is accepted but compares against "true", so it reads false.
		{"yes", false},
		{"YES", false},
		{ir.IRString("True"), true},
	}

	for _, tt := range tests {
		got, err := ReadBool(tt.in)
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestReadBoolRejects(t *testing.T) {
	for _, in := range []any{"maybe", "", "1", ir.IRInt(1), nil, ir.IRNull{}} {
		_, err := ReadBool(in)
		require.Error(t, err, "input %v", in)
		assert.True(t, errors.Is(err, ErrInvalidBool))
	}
}
