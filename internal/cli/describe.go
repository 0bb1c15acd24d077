package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/ddl"
	"github.com/roach88/querydoc/internal/ident"
)

// Description is an introspected table with its constraints.
type Description struct {
	Table       *catalog.TableDescriptor `json:"table"`
	Constraints []ddl.ConstraintChange   `json:"constraints"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "describe <table>",
		Short:         "Show the columns and constraints of a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runDescribe(cmd *cobra.Command, opts *RootOptions, table string) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	if _, err := ident.ReadPgID(table); err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeInvalidIdentifier, Message: err.Error()})
	}

	b, err := opts.openBackend(ctx, true)
	if err != nil {
		return formatter.Fail(err)
	}
	defer b.Close()

	schema := b.cfg.Schema()
	desc, err := b.store.IntrospectTable(ctx, schema, table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		return formatter.Fail(&LoadError{Code: ErrCodeTableNotFound, Message: fmt.Sprintf("Table not found: %s.%s", schema, table)})
	}
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeBackend, Message: err.Error()})
	}

	cons, err := b.store.Constraints(ctx, schema, table)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeBackend, Message: err.Error()})
	}

	result := Description{Table: desc, Constraints: cons}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s.%s\n", desc.Schema, desc.Name)
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, c := range desc.Columns {
		null := "null"
		if !c.Nullable {
			null = "not null"
		}
		dflt := ""
		if c.Default != nil {
			dflt = "default " + *c.Default
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", c.Position, c.Name, c.DataType, null, dflt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(cons) > 0 {
		fmt.Fprintln(formatter.Writer, "constraints:")
		for _, c := range cons {
			line := fmt.Sprintf("  %s %s (%s)", c.ConstraintName, c.ConstraintType, c.ConstraintParameter)
			if c.ReferenceTable != nil {
				line += fmt.Sprintf(" -> %s(%s)", *c.ReferenceTable, *c.ReferenceColumn)
			}
			fmt.Fprintln(formatter.Writer, line)
		}
	}
	return nil
}
