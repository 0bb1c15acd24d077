package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolver answers table questions from the cache first and the catalog
// second. Empty schemas are normalized to the default schema so that
// "users" and "public.users" share one cache entry.
type Resolver struct {
	catalog       SchemaCatalog
	cache         *TableCache
	defaultSchema string
}

// NewResolver creates a Resolver. A nil cache gets a fresh private one.
func NewResolver(cat SchemaCatalog, cache *TableCache, defaultSchema string) *Resolver {
	if cache == nil {
		cache = NewTableCache()
	}
	return &Resolver{catalog: cat, cache: cache, defaultSchema: defaultSchema}
}

// DefaultSchema returns the schema used when a document names none.
func (r *Resolver) DefaultSchema() string {
	return r.defaultSchema
}

// Cache exposes the underlying cache.
func (r *Resolver) Cache() *TableCache {
	return r.cache
}

func (r *Resolver) key(schema, table string) Key {
	if schema == "" {
		schema = r.defaultSchema
	}
	return Key{Schema: schema, Table: table}
}

// Cached returns a descriptor only if it is already cached.
func (r *Resolver) Cached(schema, table string) (*TableDescriptor, bool) {
	return r.cache.Get(r.key(schema, table))
}

// Exists asks the catalog whether the table exists. It never consults the
// cache: existence checks always reach the backend.
func (r *Resolver) Exists(ctx context.Context, schema, table string) (bool, error) {
	k := r.key(schema, table)
	ok, err := r.catalog.TableExists(ctx, k.Schema, k.Table)
	if err != nil {
		return false, fmt.Errorf("checking table %s.%s: %w", k.Schema, k.Table, err)
	}
	return ok, nil
}

// Resolve returns the table's descriptor, introspecting it at most once
// per cache.
func (r *Resolver) Resolve(ctx context.Context, schema, table string) (*TableDescriptor, error) {
	k := r.key(schema, table)
	if d, ok := r.cache.Get(k); ok {
		slog.Debug("table cache hit", "schema", k.Schema, "table", k.Table)
		return d, nil
	}

	slog.Debug("table cache miss", "schema", k.Schema, "table", k.Table)
	d, err := r.catalog.IntrospectTable(ctx, k.Schema, k.Table)
	if err != nil {
		return nil, fmt.Errorf("introspecting table %s.%s: %w", k.Schema, k.Table, err)
	}
	stored, _ := r.cache.LoadOrStore(k, d)
	return stored, nil
}
