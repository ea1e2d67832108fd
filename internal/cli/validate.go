package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pytch/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Sprites []string                   `json:"sprites,omitempty"`
	Stage   string                     `json:"stage,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest-dir>",
		Short: "Validate sprite and stage manifests",
		Long: `Load the CUE manifests in a directory, compile their sprite and stage
declarations, and report every rule violation: missing or badly named
assets, bad costume sizes, duplicate names and costumes on a stage.

Exit codes:
  0 - Manifests are valid
  1 - Validation failed
  2 - Command error (directory missing, CUE does not load)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, err := LoadManifests(dir)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		// A manifest that loads but does not compile is a validation
		// failure, not a command error.
		if loadErr.Code == ErrCodeCompileFailed {
			return outputValidationErrors(formatter, []compiler.ValidationError{{
				Field:   "manifest",
				Message: loadErr.Error(),
				Code:    loadErr.Code,
			}})
		}
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)
	for _, c := range loadResult.Manifest.Classes() {
		formatter.VerboseLog("Validating %s: %s", c.Kind, c.Name)
	}

	if errs := compiler.Validate(loadResult.Manifest); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, summarize(loadResult.Manifest))
}

func summarize(m *compiler.Manifest) ValidationResult {
	result := ValidationResult{Valid: true}
	for _, c := range m.Sprites {
		result.Sprites = append(result.Sprites, c.Name)
	}
	if m.Stage != nil {
		result.Stage = m.Stage.Name
	}
	return result
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All manifests valid (%d sprite(s)", len(result.Sprites))
	if result.Stage != "" {
		fmt.Fprintf(formatter.Writer, ", stage %s", result.Stage)
	}
	fmt.Fprintln(formatter.Writer, ")")
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
