// Package ddl renders table definitions and normalizes backend column and
// constraint metadata.
//
// Column and table constraints are reserved: documents that use them fail
// with NOT_IMPLEMENTED.
package ddl

import (
	"strconv"
	"strings"

	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/literal"
	"github.com/roach88/querydoc/internal/translator"
)

// ParseCreateTable renders a CREATE TABLE statement.
//
//	{"name": "t", "temp": true, "if_not_exists": true,
//	 "fields": [{"type": "column", "name": "id", "data_type": "integer"}]}
func ParseCreateTable(doc ir.IRValue) (string, error) {
	d, ok := doc.(ir.IRObject)
	if !ok {
		return "", invalid(doc, "create table document must be an object")
	}

	var sb strings.Builder
	sb.WriteString("CREATE ")

	global, err := flag(d, "global")
	if err != nil {
		return "", err
	}
	local, err := flag(d, "local")
	if err != nil {
		return "", err
	}
	switch {
	case global:
		sb.WriteString("GLOBAL ")
	case local:
		sb.WriteString("LOCAL ")
	}

	for _, kw := range []struct{ key, text string }{
		{"temp", "TEMP "},
		{"unlogged", "UNLOGGED "},
	} {
		on, err := flag(d, kw.key)
		if err != nil {
			return "", err
		}
		if on {
			sb.WriteString(kw.text)
		}
	}
	sb.WriteString("TABLE ")
	ifNotExists, err := flag(d, "if_not_exists")
	if err != nil {
		return "", err
	}
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}

	name, err := identAt(d, "name")
	if err != nil {
		return "", err
	}
	sb.WriteString(ident.Quote(name))

	var entries []string
	if raw, ok := d["fields"]; ok {
		fields, ok := raw.(ir.IRArray)
		if !ok {
			return "", invalid(d, "fields is not a list")
		}
		for _, f := range fields {
			entry, err := fieldEntry(f)
			if err != nil {
				return "", err
			}
			entries = append(entries, entry)
		}
	}
	sb.WriteString(" (")
	sb.WriteString(strings.Join(entries, ", "))
	sb.WriteString(")")
	return sb.String(), nil
}

func fieldEntry(f ir.IRValue) (string, error) {
	field, ok := f.(ir.IRObject)
	if !ok {
		return "", invalid(f, "field must be an object")
	}
	ftype, err := stringAt(field, "type")
	if err != nil {
		return "", err
	}

	switch ftype {
	case "column":
		name, err := identAt(field, "name")
		if err != nil {
			return "", err
		}
		dataType, err := identAt(field, "data_type")
		if err != nil {
			return "", err
		}
		entry := ident.Quote(name) + " " + dataType
		if field.Has("collate") {
			if _, null := field["collate"].(ir.IRNull); !null {
				collate, err := identAt(field, "collate")
				if err != nil {
					return "", err
				}
				entry += " COLLATE " + ident.Quote(collate)
			}
		}
		if cons, ok := field["constraints"].(ir.IRArray); ok {
			for _, c := range cons {
				if _, err := ParseColumnConstraint(c); err != nil {
					return "", err
				}
			}
		}
		return entry, nil
	case "table_constraint":
		return ParseTableConstraint(field)
	case "like":
		return "", notImplemented(field, "LIKE clauses in table definitions")
	default:
		return "", invalid(field, "unknown table field type: "+ftype)
	}
}

// ParseColumnConstraint is reserved for column constraints.
func ParseColumnConstraint(doc ir.IRValue) (string, error) {
	return "", notImplemented(doc, "column constraints")
}

// ParseTableConstraint is reserved for table constraints.
func ParseTableConstraint(doc ir.IRValue) (string, error) {
	return "", notImplemented(doc, "table constraints")
}

func notImplemented(node ir.IRValue, what string) error {
	return &translator.Error{Code: translator.ErrCodeNotImplemented, Message: what + " are not implemented", Node: node}
}

func invalid(node ir.IRValue, msg string) error {
	return &translator.Error{Code: translator.ErrCodeInvalidValue, Message: msg, Node: node}
}

func stringAt(d ir.IRObject, key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", &translator.Error{Code: translator.ErrCodeMissingField, Message: "missing key " + strconv.Quote(key), Key: key, Node: d}
	}
	s, ok := v.(ir.IRString)
	if !ok {
		return "", &translator.Error{Code: translator.ErrCodeInvalidValue, Message: key + " must be a string", Key: key, Node: d}
	}
	return string(s), nil
}

func identAt(d ir.IRObject, key string) (string, error) {
	s, err := stringAt(d, key)
	if err != nil {
		return "", err
	}
	id, err := ident.ReadPgID(s)
	if err != nil {
		return "", &translator.Error{Code: translator.ErrCodeInvalidIdentifier, Message: err.Error(), Key: key, Node: d, Err: err}
	}
	return id, nil
}

func flag(d ir.IRObject, key string) (bool, error) {
	v, ok := d[key]
	if !ok {
		return false, nil
	}
	if _, null := v.(ir.IRNull); null {
		return false, nil
	}
	b, err := literal.ReadBool(v)
	if err != nil {
		return false, &translator.Error{Code: translator.ErrCodeInvalidValue, Message: err.Error(), Key: key, Node: d, Err: err}
	}
	return b, nil
}
