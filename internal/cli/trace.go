package cli

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/herocheck/internal/harness"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Run one scenario and print its trace",
		Long: `Run a single scenario and print every call it made, with the route
(live, simulated or fallback) and the response of each.

The JSON form is the same snapshot the harness compares against golden
files.

Examples:
  herocheck trace ./scenarios/owe_money.yaml --mock-api --mock-db
  herocheck trace ./scenarios/hero_create.yaml --api-fallback --format json`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTrace(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	b, err := openBackends(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up backends", err)
	}
	defer b.Close()

	result, err := harness.Run(cmd.Context(), scenario, b.harnessDeps(opts))
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario could not run", err)
	}

	if f.JSON() {
		if err := f.Success(harness.TraceSnapshot{
			ScenarioName: result.Scenario,
			Pass:         result.Pass,
			Trace:        result.Trace,
		}); err != nil {
			return err
		}
	} else {
		outputTraceText(f.Writer, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed", result.Scenario))
	}
	return nil
}

// outputTraceText prints one line per call and one per result.
func outputTraceText(w io.Writer, result *harness.Result) {
	fmt.Fprintf(w, "Scenario: %s\n\n", result.Scenario)

	for _, ev := range result.Trace {
		switch ev.Type {
		case harness.EventCall:
			fmt.Fprintf(w, "[%d] %s", ev.Seq, ev.Call)
			if ev.Args != nil {
				fmt.Fprintf(w, " %s", compact(ev.Args))
			}
			fmt.Fprintln(w)
		case harness.EventResult:
			fmt.Fprintf(w, "    -> %s", ev.Route)
			if ev.Status != 0 {
				fmt.Fprintf(w, " %d", ev.Status)
			}
			if ev.Error != "" {
				fmt.Fprintf(w, " error: %s", ev.Error)
			} else if ev.Body != nil {
				fmt.Fprintf(w, " %s", compact(ev.Body))
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", Mark(result.Pass), result.Scenario)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
