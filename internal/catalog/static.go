package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticCatalog answers from a fixed list of descriptors. It lets documents
// be translated without a live backend.
type StaticCatalog struct {
	tables map[Key]*TableDescriptor
}

var _ SchemaCatalog = (*StaticCatalog)(nil)

// NewStaticCatalog indexes tables by (schema, name).
func NewStaticCatalog(tables ...TableDescriptor) *StaticCatalog {
	c := &StaticCatalog{tables: make(map[Key]*TableDescriptor, len(tables))}
	for i := range tables {
		t := tables[i]
		c.tables[Key{Schema: t.Schema, Table: t.Name}] = &t
	}
	return c
}

// LoadStaticCatalog reads a YAML list of table descriptors:
//
//	- schema: public
//	  name: users
//	  columns:
//	    - {name: id, data_type: integer}
//	    - {name: name, data_type: text, nullable: true}
//	  foreign_keys:
//	    - {columns: [team_id], ref_table: teams, ref_columns: [id]}
func LoadStaticCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var tables []TableDescriptor
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&tables); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}

	for i := range tables {
		if tables[i].Name == "" {
			return nil, fmt.Errorf("tables[%d]: name is required", i)
		}
		for j := range tables[i].Columns {
			if tables[i].Columns[j].Position == 0 {
				tables[i].Columns[j].Position = j + 1
			}
		}
	}
	return NewStaticCatalog(tables...), nil
}

// TableExists reports whether the table is listed.
func (c *StaticCatalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := c.tables[Key{Schema: schema, Table: table}]
	return ok, nil
}

// IntrospectTable returns a copy of the listed descriptor.
func (c *StaticCatalog) IntrospectTable(ctx context.Context, schema, table string) (*TableDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := c.tables[Key{Schema: schema, Table: table}]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", schema, table, ErrTableNotFound)
	}
	cp := *t
	cp.Columns = append([]ColumnDescriptor(nil), t.Columns...)
	cp.ForeignKeys = append([]ForeignKey(nil), t.ForeignKeys...)
	return &cp, nil
}
