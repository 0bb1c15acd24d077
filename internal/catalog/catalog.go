// Package catalog describes backend tables and caches their descriptors.
//
// The translator never talks to a database directly. It asks a
// SchemaCatalog whether a table exists and what columns it has, and keeps
// the answers in a TableCache that lives as long as the translator does.
package catalog

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned by IntrospectTable for tables the backend
// does not have.
var ErrTableNotFound = errors.New("table not found")

// ColumnDescriptor describes one column of a backend table.
type ColumnDescriptor struct {
	Name     string  `json:"name" yaml:"name"`
	DataType string  `json:"data_type" yaml:"data_type"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
	Default  *string `json:"default,omitempty" yaml:"default,omitempty"`
	Position int     `json:"position" yaml:"position"`
}

// ForeignKey references RefColumns of RefTable from Columns. An empty
// RefSchema means the owning table's schema.
type ForeignKey struct {
	Columns    []string `json:"columns" yaml:"columns"`
	RefSchema  string   `json:"ref_schema,omitempty" yaml:"ref_schema,omitempty"`
	RefTable   string   `json:"ref_table" yaml:"ref_table"`
	RefColumns []string `json:"ref_columns" yaml:"ref_columns"`
}

// TableDescriptor is the resolved shape of a backend table.
type TableDescriptor struct {
	Schema      string             `json:"schema" yaml:"schema"`
	Name        string             `json:"name" yaml:"name"`
	Columns     []ColumnDescriptor `json:"columns" yaml:"columns"`
	ForeignKeys []ForeignKey       `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// ReferencesTo returns the foreign keys of t that point at target.
func (t *TableDescriptor) ReferencesTo(target *TableDescriptor) []ForeignKey {
	var out []ForeignKey
	for _, fk := range t.ForeignKeys {
		schema := fk.RefSchema
		if schema == "" {
			schema = t.Schema
		}
		if schema == target.Schema && fk.RefTable == target.Name {
			out = append(out, fk)
		}
	}
	return out
}

// Column looks up a column by exact name.
func (t *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// HasColumn reports whether the table has a column called name.
func (t *TableDescriptor) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ColumnNames returns column names in table order.
func (t *TableDescriptor) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SchemaCatalog is the narrow backend capability the translator needs.
// Both calls may block on the backend and honor ctx cancellation.
type SchemaCatalog interface {
	// IntrospectTable returns the table's columns, or an error wrapping
	// ErrTableNotFound.
	IntrospectTable(ctx context.Context, schema, table string) (*TableDescriptor, error)

	// TableExists reports whether schema.table exists.
	TableExists(ctx context.Context, schema, table string) (bool, error)
}
