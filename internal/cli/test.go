package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter   string // scenario name substring
	Parallel int    // scenarios run at once
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run verification scenarios",
		Long: `Run the YAML scenarios in a directory against the hero API and database.

Each scenario's expect clauses and assertions are checked. Surfaces run
live unless simulated with --mock-api / --mock-db.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid scenarios, a scenario could not run, etc.)

Examples:
  herocheck test ./scenarios --mock-api --mock-db
  herocheck test ./scenarios --filter owe_money
  herocheck test ./scenarios --parallel 4 --format json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this text")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 1, "number of scenarios to run at once")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(dir); err != nil {
		return WrapExitError(ExitCommandError, "scenarios directory not found", err)
	}
	if opts.Parallel < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --parallel %d: must be at least 1", opts.Parallel))
	}

	scenarios, err := harness.LoadScenarios(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}
	f.VerboseLog("Loaded %d scenario(s) from %s", len(scenarios), dir)

	if len(scenarios) == 0 {
		if f.JSON() {
			return f.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	b, err := openBackends(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up backends", err)
	}
	defer b.Close()

	results, err := harness.RunAll(cmd.Context(), scenarios, b.harnessDeps(opts.RootOptions), opts.Parallel)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run aborted", err)
	}

	summary := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(results)),
		Total:     len(results),
	}
	for _, r := range results {
		sr := ScenarioResult{Name: r.Scenario, Pass: r.Pass}
		if !r.Pass {
			sr.Errors = r.Errors
			summary.Failed++
		} else {
			summary.Passed++
		}
		summary.Scenarios = append(summary.Scenarios, sr)
	}

	if f.JSON() {
		if err := outputTestJSON(f, summary); err != nil {
			return err
		}
	} else {
		outputTestText(f, summary, dir)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(f *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return f.Success(result)
	}
	return f.encode(CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		},
	})
}

// outputTestText outputs the test result as text, with a command to rerun
// each failed scenario.
func outputTestText(f *OutputFormatter, result TestResult, dir string) {
	w := f.Writer

	for _, s := range result.Scenarios {
		fmt.Fprintf(w, "%s %s\n", Mark(s.Pass), s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed == 0 {
		fmt.Fprintf(w, "%s All scenarios passed\n", Mark(true))
		return
	}

	fmt.Fprintln(w, "Rerun a failed scenario with:")
	for _, s := range result.Scenarios {
		if !s.Pass {
			fmt.Fprintf(w, "  %s\n", commandLine("herocheck", "test", dir, "--filter", s.Name))
		}
	}
}
