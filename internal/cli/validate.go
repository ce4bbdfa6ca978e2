package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/multiverse/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes one invalid scenario file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"` // CUE path for schema errors
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML scenarios without executing them.

Performs strict YAML decoding, checks the scenario schema, and verifies that
every character, timeline, event, and memory is created before it is used.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := harness.FindScenarios(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "finding scenarios", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNotFound, "no scenario files found", paths)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	result := ValidationResult{Files: len(files)}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		if _, err := harness.LoadScenario(file); err != nil {
			result.Errors = append(result.Errors, toValidationError(file, err))
		}
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		msg := fmt.Sprintf("%d of %d scenario(s) invalid", len(result.Errors), len(files))
		if formatter.IsJSON() {
			_ = formatter.Failure(ErrCodeInvalidScenario, msg, result)
		} else {
			for _, ve := range result.Errors {
				formatter.Printf("✗ %s\n  %s\n", ve.File, ve.Message)
			}
			formatter.Printf("\n%s\n", msg)
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	formatter.Printf("✓ All scenarios valid (%d file(s))\n", len(files))
	return nil
}

func toValidationError(file string, err error) ValidationError {
	ve := ValidationError{File: file, Code: ErrCodeInvalidScenario, Message: err.Error()}
	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		ve.Path = schemaErr.Path
		if schemaErr.Pos.IsValid() {
			ve.Line = schemaErr.Pos.Line()
		}
	}
	return ve
}
