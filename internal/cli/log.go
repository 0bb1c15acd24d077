package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/ir"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Limit     int
	Statement string
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "List executed statements from the query log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum entries (0 for all)")
	cmd.Flags().StringVar(&opts.Statement, "statement", "", "only entries for this statement id")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	b, err := opts.openBackend(ctx, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer b.Close()

	var entries []ir.LogEntry
	if opts.Statement != "" {
		entries, err = b.store.ReadLogByStatement(ctx, opts.Statement)
	} else {
		entries, err = b.store.ReadLog(ctx, opts.Limit)
	}
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeBackend, Message: err.Error()})
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "#%d %s %s by %s\n", e.Seq, e.ID, e.Kind, e.UserName)
		if e.Message != nil {
			fmt.Fprintf(formatter.Writer, "  message: %s\n", *e.Message)
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", e.SQL)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "query log is empty")
	}
	return nil
}
