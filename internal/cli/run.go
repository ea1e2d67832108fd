package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pytch/internal/harness"
	"github.com/roach88/pytch/internal/journal"
	"github.com/roach88/pytch/internal/microbit"
	"github.com/roach88/pytch/internal/value"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string // journal path; empty disables journaling
	Protocol string // overrides the scenario's micro:bit protocol
}

// RunOutput is the JSON form of a scenario run.
type RunOutput struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	RunID    string               `json:"run_id,omitempty"`
	Errors   []string             `json:"errors,omitempty"`
	Trace    []harness.TraceEvent `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a simulated micro:bit",
		Long: `Run one scenario file: compile its manifest, attach its hooks, execute
its steps against a scripted micro:bit and check its assertions.

With --db the run's events, hook firings and device calls are journaled
to a SQLite database for later inspection with "pytch trace".

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (scenario or journal could not be loaded)

Example:
  pytch run ./scenarios/pong.yaml
  pytch run ./scenarios/pong.yaml --db ./runs.db --protocol v1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (created if missing)")
	cmd.Flags().StringVar(&opts.Protocol, "protocol", "", "micro:bit protocol override (v1|v2)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, err.Error())
	}
	if opts.Protocol != "" {
		if _, err := microbit.ParseProtocol(opts.Protocol); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeScenario, err.Error())
		}
		scenario.Protocol = opts.Protocol
	}

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.Database != "" {
		j, err := journal.Open(opts.Database, journal.WithLogger(logger))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error())
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("closing journal", slog.String("path", opts.Database), slog.Any("error", closeErr))
			}
		}()
		runOpts = append(runOpts, harness.WithJournal(j))
	}

	formatter.VerboseLog("Running scenario %s from %s", scenario.Name, path)

	result, err := harness.Run(cmd.Context(), scenario, runOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScenario, err.Error())
	}

	if err := outputRunResult(formatter, scenario.Name, result); err != nil {
		return err
	}
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed with %d error(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}

func outputRunResult(formatter *OutputFormatter, name string, result *harness.Result) error {
	if formatter.Format == "json" {
		resp := CLIResponse{
			Status: "ok",
			Data: RunOutput{
				Scenario: name,
				Pass:     result.Pass,
				RunID:    result.RunID,
				Errors:   result.Errors,
				Trace:    result.Trace,
			},
		}
		if !result.Pass {
			resp.Status = "error"
		}
		return formatter.JSON(resp)
	}

	w := formatter.Writer
	if result.Pass {
		fmt.Fprintf(w, "✓ %s\n", name)
	} else {
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "  run %s\n", result.RunID)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trace:")
	for _, ev := range result.Trace {
		writeTraceLine(w, ev)
	}
	return nil
}

// writeTraceLine prints one trace entry as
// "  [seq] kind op target args -> result !error".
func writeTraceLine(w io.Writer, ev harness.TraceEvent) {
	var b strings.Builder
	fmt.Fprintf(&b, "  [%d] %-6s %s", ev.Seq, ev.Kind, ev.Op)
	if ev.Target != "" {
		b.WriteString(" " + ev.Target)
	}
	if ev.Args != nil {
		b.WriteString(" " + compact(ev.Args))
	}
	if ev.Result != nil {
		b.WriteString(" -> " + compact(ev.Result))
	}
	if ev.Error != "" {
		b.WriteString(" !" + ev.Error)
	}
	fmt.Fprintln(w, b.String())
}

func compact(v value.Value) string {
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
