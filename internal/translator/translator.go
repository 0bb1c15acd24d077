package translator

import (
	"context"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/literal"
	"github.com/roach88/querydoc/internal/queryir"
)

// DefaultSchema is used when no schema is configured.
const DefaultSchema = "public"

// Translator turns query documents into queryir statements.
//
// A Translator is long-lived: it owns the table-descriptor cache, so one
// instance should serve every request of a process. It is safe for
// concurrent use; each call translates one document on its own stack.
type Translator struct {
	resolver      *catalog.Resolver
	defaultSchema string
}

type options struct {
	defaultSchema string
	cache         *catalog.TableCache
}

// Option configures a Translator.
type Option func(*options)

// WithDefaultSchema sets the schema used for sequences and for cache keys
// of tables referenced without a schema.
func WithDefaultSchema(schema string) Option {
	return func(o *options) {
		o.defaultSchema = schema
	}
}

// WithCache shares an existing table-descriptor cache.
func WithCache(cache *catalog.TableCache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// New creates a Translator backed by cat.
func New(cat catalog.SchemaCatalog, opts ...Option) *Translator {
	o := options{defaultSchema: DefaultSchema}
	for _, opt := range opts {
		opt(&o)
	}
	return &Translator{
		resolver:      catalog.NewResolver(cat, o.cache, o.defaultSchema),
		defaultSchema: o.defaultSchema,
	}
}

// DefaultSchema returns the configured default schema.
func (t *Translator) DefaultSchema() string {
	return t.defaultSchema
}

// Cache returns the translator's table-descriptor cache.
func (t *Translator) Cache() *catalog.TableCache {
	return t.resolver.Cache()
}

// Translate dispatches on kind to ParseSelect or ParseInsert.
func (t *Translator) Translate(ctx context.Context, kind ir.StatementKind, doc ir.IRValue, opts InsertOptions) (queryir.Statement, error) {
	switch kind {
	case ir.KindSelect:
		return t.ParseSelect(ctx, doc)
	case ir.KindInsert:
		return t.ParseInsert(ctx, doc, opts)
	default:
		return nil, newError(ErrCodeInvalidValue, doc, "unknown statement kind %q", kind)
	}
}

// parser carries per-call state through the recursive descent.
type parser struct {
	t      *Translator
	ctx    context.Context
	mapper map[string]string
}

func (t *Translator) parser(ctx context.Context) *parser {
	return &parser{t: t, ctx: ctx}
}

// object asserts that node is a document object.
func object(node ir.IRValue, what string) (ir.IRObject, error) {
	obj, ok := node.(ir.IRObject)
	if !ok {
		return nil, newError(ErrCodeInvalidValue, node, "%s must be an object, got %s", what, ir.TypeName(node))
	}
	return obj, nil
}

// lookupKey returns obj[key] or a MISSING_FIELD error.
func lookupKey(obj ir.IRObject, key string) (ir.IRValue, error) {
	v, ok := obj[key]
	if !ok {
		return nil, missingField(obj, key)
	}
	return v, nil
}

// requireString returns obj[key] as a string.
func requireString(obj ir.IRObject, key string) (string, error) {
	v, err := lookupKey(obj, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(ir.IRString)
	if !ok {
		return "", &Error{
			Code:    ErrCodeInvalidValue,
			Message: "key " + key + " must be a string, got " + ir.TypeName(v),
			Key:     key,
			Node:    obj,
		}
	}
	return string(s), nil
}

// requireList returns obj[key] as a list.
func requireList(obj ir.IRObject, key string) (ir.IRArray, error) {
	v, err := lookupKey(obj, key)
	if err != nil {
		return nil, err
	}
	return asList(v, key, obj)
}

func asList(v ir.IRValue, key string, node ir.IRValue) (ir.IRArray, error) {
	list, ok := v.(ir.IRArray)
	if !ok {
		return nil, &Error{
			Code:    ErrCodeInvalidValue,
			Message: key + " is not a list",
			Key:     key,
			Node:    node,
		}
	}
	return list, nil
}

// guard passes s through the identifier guard.
func guard(s string, node ir.IRValue) (string, error) {
	id, err := ident.ReadPgID(s)
	if err != nil {
		return "", &Error{Code: ErrCodeInvalidIdentifier, Message: err.Error(), Node: node, Err: err}
	}
	return id, nil
}

// identAt reads obj[key] as a guarded identifier.
func identAt(obj ir.IRObject, key string) (string, error) {
	s, err := requireString(obj, key)
	if err != nil {
		return "", err
	}
	return guard(s, obj)
}

// optionalIdent reads obj[key] as a guarded identifier if present.
func optionalIdent(obj ir.IRObject, key string) (string, error) {
	if !obj.Has(key) {
		return "", nil
	}
	return identAt(obj, key)
}

// flag reads an optional boolean key. Absent and null read as false.
func flag(obj ir.IRObject, key string) (bool, error) {
	v, ok := obj[key]
	if !ok {
		return false, nil
	}
	if _, null := v.(ir.IRNull); null {
		return false, nil
	}
	b, err := literal.ReadBool(v)
	if err != nil {
		return false, &Error{Code: ErrCodeInvalidValue, Message: err.Error(), Key: key, Node: obj, Err: err}
	}
	return b, nil
}
