package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/queryir"
	"github.com/roach88/querydoc/internal/querysql"
	"github.com/roach88/querydoc/internal/store"
	"github.com/roach88/querydoc/internal/translator"
)

// TranslateOptions holds flags shared by translate and exec.
type TranslateOptions struct {
	*RootOptions
	Kind   string
	Mapper map[string]string
}

// Translation is a rendered statement.
type Translation struct {
	Kind        ir.StatementKind `json:"kind"`
	StatementID string           `json:"statement_id"`
	Dialect     queryir.Dialect  `json:"dialect"`
	SQL         string           `json:"sql"`
	Params      ir.IRArray       `json:"params"`
	Warnings    []string         `json:"warnings,omitempty"`

	args        []any
	returnsRows bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <document>",
		Short: "Translate a query document to SQL",
		Long: `Translate a JSON or YAML query document to parameterized SQL.

The document is a file path, "-" for stdin, or inline JSON. Table
references are resolved against --db, or --tables when there is no
database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args[0])
		},
	}
	addTranslateFlags(cmd, opts)

	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *TranslateOptions) {
	cmd.Flags().StringVar(&opts.Kind, "kind", string(ir.KindSelect), "document kind (select|insert)")
	cmd.Flags().StringToStringVar(&opts.Mapper, "map", nil, "rename table/schema names in column references (old=new)")
}

func runTranslate(cmd *cobra.Command, opts *TranslateOptions, src string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := LoadDocument(src, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}

	b, err := opts.openBackend(cmd.Context(), false)
	if err != nil {
		return formatter.Fail(err)
	}
	defer b.Close()

	dialect := b.cfg.SQLDialect()
	if b.store != nil {
		dialect = b.store.Dialect()
	}

	tr, err := translateDocument(cmd.Context(), opts, b, dialect, doc)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("statement %s (%s, %s)", tr.StatementID, tr.Kind, tr.Dialect)

	if formatter.Format == "json" {
		return formatter.Success(tr)
	}
	printTranslation(formatter, tr)
	return nil
}

// translateDocument runs the translator, the dialect check and the
// renderer for one document.
func translateDocument(ctx context.Context, opts *TranslateOptions, b *backend, dialect queryir.Dialect, doc ir.IRValue) (*Translation, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	kind, err := ir.ParseStatementKind(opts.Kind)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	ctx = translator.ContextWithIdentity(ctx, opts.identity())
	t := translator.New(b.catalog, translator.WithDefaultSchema(b.cfg.Schema()))
	stmt, err := t.Translate(ctx, kind, doc, translator.InsertOptions{
		Message: opts.message(),
		Mapper:  opts.Mapper,
	})
	if err != nil {
		return nil, err
	}

	report := queryir.CheckDialect(stmt, dialect)
	if !report.Supported {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("statement cannot be rendered for %s: %s", dialect, strings.Join(report.Warnings, "; "))}
	}

	sql, args, err := querysql.NewCompiler(dialect).Compile(stmt)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRenderFailed, Message: err.Error()}
	}
	params, err := store.ParamsToIR(args)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRenderFailed, Message: err.Error()}
	}
	id, err := ir.StatementID(kind, doc)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	return &Translation{
		Kind:        kind,
		StatementID: id,
		Dialect:     dialect,
		SQL:         sql,
		Params:      params,
		Warnings:    report.Warnings,
		args:        args,
		returnsRows: querysql.ReturnsRows(stmt),
	}, nil
}

func printTranslation(f *OutputFormatter, tr *Translation) {
	fmt.Fprintln(f.Writer, tr.SQL)
	if len(tr.Params) > 0 {
		cells := make([]string, len(tr.Params))
		for i, p := range tr.Params {
			cells[i] = fmt.Sprintf("$%d=%s", i+1, paramText(p))
		}
		fmt.Fprintf(f.Writer, "-- params: %s\n", strings.Join(cells, ", "))
	}
	for _, w := range tr.Warnings {
		fmt.Fprintf(f.Writer, "-- warning: %s\n", w)
	}
}

func paramText(v ir.IRValue) string {
	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func (o *RootOptions) identity() translator.Identity {
	if o.User == "" {
		return translator.Identity{Anonymous: true}
	}
	return translator.Identity{Name: o.User}
}

func (o *RootOptions) message() *string {
	if o.Message == "" {
		return nil
	}
	m := o.Message
	return &m
}
