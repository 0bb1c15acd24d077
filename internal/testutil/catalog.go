package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/querydoc/internal/catalog"
)

// FakeCatalog is an in-memory catalog.SchemaCatalog.
//
// Every IntrospectTable and TableExists call is counted per (schema, table)
// so tests can assert how often the translator reached the backend.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeCatalog struct {
	mu         sync.Mutex
	tables     map[catalog.Key]*catalog.TableDescriptor
	introspect map[catalog.Key]int
	exists     map[catalog.Key]int
	err        error
}

// NewFakeCatalog creates a catalog holding the given tables.
func NewFakeCatalog(tables ...*catalog.TableDescriptor) *FakeCatalog {
	f := &FakeCatalog{
		tables:     make(map[catalog.Key]*catalog.TableDescriptor),
		introspect: make(map[catalog.Key]int),
		exists:     make(map[catalog.Key]int),
	}
	for _, t := range tables {
		f.AddTable(t)
	}
	return f
}

// Table builds a descriptor with text columns named cols.
func Table(schema, name string, cols ...string) *catalog.TableDescriptor {
	d := &catalog.TableDescriptor{Schema: schema, Name: name}
	for i, c := range cols {
		d.Columns = append(d.Columns, catalog.ColumnDescriptor{
			Name:     c,
			DataType: "text",
			Nullable: true,
			Position: i + 1,
		})
	}
	return d
}

// WithForeignKey adds a foreign key from cols of t to refCols of refTable
// in the same schema, and returns t.
func WithForeignKey(t *catalog.TableDescriptor, cols []string, refTable string, refCols ...string) *catalog.TableDescriptor {
	t.ForeignKeys = append(t.ForeignKeys, catalog.ForeignKey{
		Columns:    cols,
		RefTable:   refTable,
		RefColumns: refCols,
	})
	return t
}

// AddTable registers a table.
func (f *FakeCatalog) AddTable(t *catalog.TableDescriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[catalog.Key{Schema: t.Schema, Table: t.Name}] = t
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (f *FakeCatalog) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// IntrospectTable implements catalog.SchemaCatalog.
func (f *FakeCatalog) IntrospectTable(ctx context.Context, schema, table string) (*catalog.TableDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := catalog.Key{Schema: schema, Table: table}
	f.introspect[k]++
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := f.tables[k]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", schema, table, catalog.ErrTableNotFound)
	}
	return t, nil
}

// TableExists implements catalog.SchemaCatalog.
func (f *FakeCatalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := catalog.Key{Schema: schema, Table: table}
	f.exists[k]++
	if f.err != nil {
		return false, f.err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := f.tables[k]
	return ok, nil
}

// IntrospectCalls returns how often schema.table was introspected.
func (f *FakeCatalog) IntrospectCalls(schema, table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.introspect[catalog.Key{Schema: schema, Table: table}]
}

// ExistsCalls returns how often existence of schema.table was checked.
func (f *FakeCatalog) ExistsCalls(schema, table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists[catalog.Key{Schema: schema, Table: table}]
}

// TotalIntrospections returns the number of IntrospectTable calls.
func (f *FakeCatalog) TotalIntrospections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.introspect {
		n += c
	}
	return n
}
