package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/graphtalk/graphtalk/grammar"
)

// ValidationIssue is one problem found while loading a grammar directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Definitions []string          `json:"definitions,omitempty"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grammar-dir>",
		Short: "Validate grammar definitions without building graphs",
		Long: `Validate CUE grammar definitions without building executable graphs.

Checks syntax, field types, endpoint references, and condition shapes
for every definition found under the top-level "grammar" field. Reports
all problems in one pass rather than stopping at the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, grammarDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	// Collect every problem in one pass
	loadResult, loadErrors := grammar.LoadDefinitions(grammarDir, grammar.LoadModeCollectAll)

	// Load-level failures (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *grammar.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, grammar.ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, grammarDir)
	for _, def := range loadResult.Definitions {
		formatter.VerboseLog("Validating definition: %s", def.Name)
	}

	issues := make([]ValidationIssue, 0, len(loadErrors))
	for _, err := range loadErrors {
		var loadErr *grammar.LoadError
		if errors.As(err, &loadErr) {
			issues = append(issues, ValidationIssue{
				Code:    loadErr.Code,
				Message: loadErr.Message,
				Line:    lineFromPos(loadErr.Pos),
			})
			continue
		}
		issues = append(issues, ValidationIssue{Code: grammar.ErrCodeGeneric, Message: err.Error()})
	}

	if len(issues) > 0 {
		return outputValidationIssues(formatter, loadResult, issues)
	}

	return outputValidateSuccess(formatter, loadResult)
}

// lineFromPos extracts a line number from a CUE position.
func lineFromPos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

func definitionNames(result *grammar.LoadResult) []string {
	names := make([]string, 0, len(result.Definitions))
	for _, def := range result.Definitions {
		names = append(names, def.Name)
	}
	return names
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result *grammar.LoadResult) error {
	names := definitionNames(result)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Definitions: names})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d definition(s) valid\n", len(names))
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}

// outputValidateError outputs a single load-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load failures are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationIssues outputs collected validation problems.
func outputValidationIssues(formatter *OutputFormatter, loadResult *grammar.LoadResult, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:       false,
			Definitions: definitionNames(loadResult),
			Errors:      issues,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
