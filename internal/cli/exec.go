package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/ir"
)

// ExecResult is the outcome of an executed document.
type ExecResult struct {
	Translation  *Translation  `json:"translation"`
	LogID        string        `json:"log_id"`
	Seq          int64         `json:"seq"`
	Columns      []string      `json:"columns,omitempty"`
	Rows         []ir.IRObject `json:"rows"`
	RowsAffected int64         `json:"rows_affected"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <document>",
		Short: "Translate a query document and run it",
		Long: `Translate a query document, run the statement against --db and record
it in the query log.

Inserts record --user and --message in the _user and _message columns.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0])
		},
	}
	addTranslateFlags(cmd, opts)

	return cmd
}

func runExec(cmd *cobra.Command, opts *TranslateOptions, src string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	doc, err := LoadDocument(src, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}

	b, err := opts.openBackend(ctx, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer b.Close()

	tr, err := translateDocument(ctx, opts, b, b.store.Dialect(), doc)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("executing %s", tr.SQL)

	res, err := b.store.Execute(ctx, tr.SQL, tr.args, tr.returnsRows)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeExecFailed, Message: err.Error()})
	}

	entry, err := b.store.LogStatement(ctx, ir.LogEntry{
		StatementID: tr.StatementID,
		Kind:        tr.Kind,
		SQL:         tr.SQL,
		Params:      tr.Params,
		UserName:    opts.identity().UserName(),
		Message:     opts.message(),
	})
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeBackend, Message: err.Error()})
	}

	result := ExecResult{
		Translation:  tr,
		LogID:        entry.ID,
		Seq:          entry.Seq,
		Columns:      res.Columns,
		Rows:         res.Rows,
		RowsAffected: res.RowsAffected,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if tr.returnsRows {
		if err := formatter.Rows(res.Columns, res.Rows); err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "(%d row(s))\n", len(res.Rows))
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d row(s) affected\n", res.RowsAffected)
	return nil
}
