// Package ident guards SQL identifiers before they reach generated SQL.
//
// Every schema, table, column, alias, label, sequence and function name taken
// from a query document passes through ReadPgID. Quote wraps a validated
// name in double quotes for embedding.
package ident

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned for names outside the identifier whitelist.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// pgQualifier accepts letters, digits, underscore and dots (schema.table).
// Letters and digits are Unicode-aware, matching \w in the documents' origin.
var pgQualifier = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_.]+$`)

// IsPgQual reports whether s is a safe bare identifier.
func IsPgQual(s string) bool {
	return pgQualifier.MatchString(s)
}

// ReadPgID returns s unchanged if it is a safe identifier.
func ReadPgID(s string) (string, error) {
	if IsPgQual(s) {
		return s, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrInvalidIdentifier, s)
}

// Quote wraps x in double quotes unless it already starts with a quote or
// contains "(". Anything holding a parenthesis is treated as an SQL
// expression rather than a name; a quoted identifier that legitimately
// contains "(" is therefore left alone.
func Quote(x string) string {
	if !strings.HasPrefix(x, `"`) && !strings.Contains(x, "(") {
		return `"` + x + `"`
	}
	return x
}

// Qualified joins quoted non-empty parts with dots: Qualified("s", "t") is "s"."t".
func Qualified(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		quoted = append(quoted, Quote(p))
	}
	return strings.Join(quoted, ".")
}
