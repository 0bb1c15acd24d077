package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/config"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/store"
	"github.com/roach88/querydoc/internal/translator"
)

// Error codes for CLI output.
const (
	// General errors (E0xx)
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeReadFailed   = "E002" // Document or file read error
	ErrCodeDecodeFailed = "E003" // Document is not valid JSON/YAML
	ErrCodeConfig       = "E004" // Invalid configuration
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBackend      = "E006" // Database open/introspection failed
	ErrCodeExecFailed   = "E007" // Statement execution failed
	ErrCodeNoDatabase   = "E008" // Command needs a database
	ErrCodeTestFailed   = "E009" // One or more scenarios failed

	// Translation errors (E1xx), one per translator error code
	ErrCodeInvalidIdentifier     = "E101"
	ErrCodeMissingField          = "E102"
	ErrCodeUnknownExpressionType = "E103"
	ErrCodeUnsupportedOperator   = "E104"
	ErrCodeUnknownFromItemType   = "E105"
	ErrCodeUnknownSelectType     = "E106"
	ErrCodeUnknownInsertMethod   = "E107"
	ErrCodeArity                 = "E108"
	ErrCodeInvalidInsertField    = "E109"
	ErrCodeInvalidLimit          = "E110"
	ErrCodeInvalidValue          = "E111"
	ErrCodeTableNotFound         = "E112"
	ErrCodeNotImplemented        = "E113"
	ErrCodeNoJoinCondition       = "E114"

	// Document and rendering errors (E2xx)
	ErrCodeSchemaInvalid = "E201" // Document fails the structural schema
	ErrCodeUnsupported   = "E202" // Statement cannot be rendered for the dialect
	ErrCodeRenderFailed  = "E203" // SQL rendering failed
)

var translatorCodes = map[translator.ErrorCode]string{
	translator.ErrCodeInvalidIdentifier:     ErrCodeInvalidIdentifier,
	translator.ErrCodeMissingField:          ErrCodeMissingField,
	translator.ErrCodeUnknownExpressionType: ErrCodeUnknownExpressionType,
	translator.ErrCodeUnsupportedOperator:   ErrCodeUnsupportedOperator,
	translator.ErrCodeUnknownFromItemType:   ErrCodeUnknownFromItemType,
	translator.ErrCodeUnknownSelectType:     ErrCodeUnknownSelectType,
	translator.ErrCodeUnknownInsertMethod:   ErrCodeUnknownInsertMethod,
	translator.ErrCodeArity:                 ErrCodeArity,
	translator.ErrCodeInvalidInsertField:    ErrCodeInvalidInsertField,
	translator.ErrCodeInvalidLimit:          ErrCodeInvalidLimit,
	translator.ErrCodeInvalidValue:          ErrCodeInvalidValue,
	translator.ErrCodeTableNotFound:         ErrCodeTableNotFound,
	translator.ErrCodeNotImplemented:        ErrCodeNotImplemented,
	translator.ErrCodeNoJoinCondition:       ErrCodeNoJoinCondition,
}

// MapTranslatorCode maps a translator error code to a CLI error code.
func MapTranslatorCode(code translator.ErrorCode) string {
	if c, ok := translatorCodes[code]; ok {
		return c
	}
	return ErrCodeGeneric
}

// LoadError is a failure to read or decode a query document.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads a query document. src is "-" for stdin, inline JSON
// when it starts with "{" or "[", and otherwise a file path. Files ending
// in .yaml or .yml are decoded as YAML; other files are tried as JSON
// first and then as YAML.
func LoadDocument(src string, stdin io.Reader) (ir.IRValue, error) {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return decode([]byte(trimmed), ".json")
	}

	var data []byte
	var err error
	if src == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", src)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading document: %v", err)}
	}
	return decode(data, strings.ToLower(filepath.Ext(src)))
}

func decode(data []byte, ext string) (ir.IRValue, error) {
	data = bytes.TrimSpace(data)
	switch ext {
	case ".yaml", ".yml":
		doc, err := ir.DocumentFromYAML(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
		}
		return doc, nil
	case ".json":
		doc, err := ir.UnmarshalDocument(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding JSON document: %v", err)}
		}
		return doc, nil
	default:
		if doc, err := ir.UnmarshalDocument(data); err == nil {
			return doc, nil
		}
		return decode(data, ".yaml")
	}
}

// backend is the catalog (and optional store) a command translates against.
type backend struct {
	cfg     *config.Config
	store   *store.Store
	catalog catalog.SchemaCatalog
}

func (b *backend) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// config returns the resolved configuration, resolving it on first use for
// commands built without the root command.
func (o *RootOptions) config() (*config.Config, error) {
	if o.Config == nil {
		cfg, err := resolveConfig(o)
		if err != nil {
			return nil, err
		}
		o.Config = cfg
	}
	return o.Config, nil
}

// openBackend wires the catalog. With a DSN the store is opened and serves
// as the catalog; with --tables a static catalog is used; otherwise the
// catalog is empty, so only documents without table references translate.
// needDB rejects the last two cases.
func (o *RootOptions) openBackend(ctx context.Context, needDB bool) (*backend, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	b := &backend{cfg: cfg}

	switch {
	case cfg.DSN != "":
		s, err := store.Open(ctx, cfg.DriverName(), cfg.DSN, store.WithQueryTimeout(cfg.QueryTimeout))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBackend, Message: err.Error()}
		}
		b.store = s
		b.catalog = s
	case needDB:
		return nil, &LoadError{Code: ErrCodeNoDatabase, Message: "no database: pass --db or set dsn in the config file"}
	case o.Tables != "":
		c, err := catalog.LoadStaticCatalog(o.Tables)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: err.Error()}
		}
		b.catalog = c
	default:
		b.catalog = catalog.NewStaticCatalog()
	}
	return b, nil
}
