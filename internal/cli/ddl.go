package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/ddl"
)

// DDLOptions holds flags for the ddl command.
type DDLOptions struct {
	*RootOptions
	Apply bool
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DDLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ddl <document>",
		Short: "Render a CREATE TABLE document",
		Long: `Render a CREATE TABLE document to SQL, and with --apply run it against
--db. Column and table constraints are not supported yet.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "execute the statement against --db")

	return cmd
}

func runDDL(cmd *cobra.Command, opts *DDLOptions, src string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := LoadDocument(src, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}
	sql, err := ddl.ParseCreateTable(doc)
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Apply {
		b, err := opts.openBackend(cmd.Context(), true)
		if err != nil {
			return formatter.Fail(err)
		}
		defer b.Close()
		if _, err := b.store.Execute(cmd.Context(), sql, nil, false); err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeExecFailed, Message: err.Error()})
		}
		formatter.VerboseLog("applied: %s", sql)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"sql": sql, "applied": opts.Apply})
	}
	fmt.Fprintln(formatter.Writer, sql)
	return nil
}
