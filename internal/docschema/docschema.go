// Package docschema checks the structure of query documents against an
// embedded CUE schema before they are translated.
//
// The schema checks shape only: top-level keys, expression tags, limit
// formats and from-item variants. Identifier safety, operator arity and
// table existence remain the translator's job.
package docschema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/querydoc/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// ValidationError is a document that does not fit the schema.
type ValidationError struct {
	// Path is the dotted path of the offending node, empty for the root.
	Path    string
	Message string
	Pos     token.Pos
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Validator holds the compiled schema. A Validator is not safe for
// concurrent use; CUE contexts are single-threaded.
type Validator struct {
	ctx  *cue.Context
	defs map[ir.StatementKind]cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	defs := map[ir.StatementKind]cue.Value{
		ir.KindSelect: schema.LookupPath(cue.ParsePath("#Select")),
		ir.KindInsert: schema.LookupPath(cue.ParsePath("#Insert")),
	}
	for kind, def := range defs {
		if !def.Exists() {
			return nil, fmt.Errorf("document schema has no definition for %s", kind)
		}
	}
	return &Validator{ctx: ctx, defs: defs}, nil
}

// Validate reports every structural problem in doc. It returns nil when the
// document fits, otherwise a slice of *ValidationError.
func (v *Validator) Validate(kind ir.StatementKind, doc ir.IRValue) []error {
	def, ok := v.defs[kind]
	if !ok {
		return []error{&ValidationError{Message: fmt.Sprintf("unknown statement kind %q", kind)}}
	}
	if _, isObj := doc.(ir.IRObject); !isObj {
		return []error{&ValidationError{Message: fmt.Sprintf("%s document must be an object, got %s", kind, ir.TypeName(doc))}}
	}

	data, err := ir.MarshalIRValue(doc)
	if err != nil {
		return []error{&ValidationError{Message: err.Error()}}
	}
	val := v.ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := val.Err(); err != nil {
		return convert(err)
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return convert(err)
	}
	return nil
}

// convert flattens a CUE error list, extracting path and position.
func convert(err error) []error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return []error{&ValidationError{Message: err.Error()}}
	}

	out := make([]error, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		format, args := e.Msg()
		ve := &ValidationError{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if positions := errors.Positions(e); len(positions) > 0 {
			ve.Pos = positions[0]
		}
		key := ve.Error()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ve)
	}
	return out
}
