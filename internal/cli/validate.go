package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querydoc/internal/docschema"
	"github.com/roach88/querydoc/internal/ir"
	"github.com/roach88/querydoc/internal/translator"
)

// ValidationIssue is one problem found in a document.
type ValidationIssue struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Translated bool              `json:"translated"`
	Errors     []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a query document without running it",
		Long: `Check a query document against the document schema, then translate it
as a dry run.

The dry run needs table metadata, so it only happens with --db or
--tables. Schema problems are all reported; translation stops at the
first error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}
	addTranslateFlags(cmd, opts)

	return cmd
}

func runValidate(cmd *cobra.Command, opts *TranslateOptions, src string) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := LoadDocument(src, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(err)
	}
	kind, err := ir.ParseStatementKind(opts.Kind)
	if err != nil {
		return formatter.Fail(err)
	}

	validator, err := docschema.New()
	if err != nil {
		return formatter.Fail(err)
	}

	result := ValidationResult{Valid: true}
	for _, verr := range validator.Validate(kind, doc) {
		result.Errors = append(result.Errors, schemaIssue(verr))
	}
	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}
	formatter.VerboseLog("document matches the %s schema", kind)

	cfg, err := opts.config()
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeConfig, Message: err.Error()})
	}
	if cfg.DSN == "" && opts.Tables == "" {
		formatter.VerboseLog("no --db or --tables: translation dry run skipped")
		return outputValidateSuccess(formatter, result)
	}

	b, err := opts.openBackend(cmd.Context(), false)
	if err != nil {
		return formatter.Fail(err)
	}
	defer b.Close()

	dialect := cfg.SQLDialect()
	if b.store != nil {
		dialect = b.store.Dialect()
	}
	if _, err := translateDocument(cmd.Context(), opts, b, dialect, doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, translationIssue(err))
		return outputValidationErrors(formatter, result)
	}
	result.Translated = true

	return outputValidateSuccess(formatter, result)
}

func schemaIssue(err error) ValidationIssue {
	var ve *docschema.ValidationError
	if errors.As(err, &ve) {
		issue := ValidationIssue{Code: ErrCodeSchemaInvalid, Path: ve.Path, Message: ve.Message}
		if ve.Pos.IsValid() {
			issue.Line = ve.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Code: ErrCodeSchemaInvalid, Message: err.Error()}
}

func translationIssue(err error) ValidationIssue {
	var te *translator.Error
	if errors.As(err, &te) {
		return ValidationIssue{Code: MapTranslatorCode(te.Code), Path: te.Key, Message: te.Error()}
	}
	var le *LoadError
	if errors.As(err, &le) {
		return ValidationIssue{Code: le.Code, Message: le.Message}
	}
	return ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Translated {
		fmt.Fprintln(formatter.Writer, "✓ Document valid and translates")
	} else {
		fmt.Fprintln(formatter.Writer, "✓ Document valid")
	}
	return nil
}

// outputValidationErrors outputs every issue and returns exit code 1.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range errs {
		if issue.Path != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", issue.Path)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
