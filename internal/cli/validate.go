package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/harness"
)

// ScenarioFileError is a scenario file that failed to load.
type ScenarioFileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                `json:"valid"`
	Scenarios int                 `json:"scenarios"`
	Errors    []ScenarioFileError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Parse and check every scenario file in a directory without contacting
any backend. Every invalid file is reported, not just the first.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	entries, err := os.ReadDir(dir)
	if err != nil {
		_ = f.Error(ErrCodeInvalidInput, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
		return WrapExitError(ExitCommandError, "scenarios directory not found", err)
	}

	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	result := ValidationResult{}
	names := make(map[string]string, len(files))
	for _, file := range files {
		f.VerboseLog("Validating %s", file)
		s, err := harness.LoadScenario(filepath.Join(dir, file))
		if err != nil {
			result.Errors = append(result.Errors, ScenarioFileError{File: file, Message: err.Error()})
			continue
		}
		if prev, dup := names[s.Name]; dup {
			result.Errors = append(result.Errors, ScenarioFileError{
				File:    file,
				Message: fmt.Sprintf("duplicate scenario name %q (also in %s)", s.Name, prev),
			})
			continue
		}
		names[s.Name] = file
		result.Scenarios++
	}
	result.Valid = len(result.Errors) == 0

	if result.Valid {
		if f.JSON() {
			return f.Success(result)
		}
		fmt.Fprintf(f.Writer, "%s %d scenario(s) valid\n", Mark(true), result.Scenarios)
		return nil
	}

	if f.JSON() {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeInvalidInput,
				Message: fmt.Sprintf("%d invalid scenario file(s)", len(result.Errors)),
			},
		}); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(f.Writer, "%s %s: %s\n", Mark(false), e.File, e.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
