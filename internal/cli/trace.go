package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pytch/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // empty selects the latest run
	Channel  string // optional event channel filter
	List     bool   // list runs instead of tracing one
}

// TraceResult is the journaled record of one run.
type TraceResult struct {
	Run         RunSummary        `json:"run"`
	Events      []TraceEventEntry `json:"events"`
	Firings     []TraceFiring     `json:"firings"`
	DeviceCalls []TraceDeviceCall `json:"device_calls"`
	Stats       TraceStats        `json:"stats"`
}

// RunSummary identifies a journaled run.
type RunSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
}

// TraceEventEntry is one published event.
type TraceEventEntry struct {
	Seq     int64  `json:"seq"`
	Channel string `json:"channel"`
	Key     string `json:"key"`
	Target  string `json:"target,omitempty"`
}

// TraceFiring is one hook invocation caused by an event.
type TraceFiring struct {
	Seq       int64  `json:"seq"`
	HookIndex int    `json:"hook_index"`
	Class     string `json:"class"`
	Instance  string `json:"instance"`
	Error     string `json:"error,omitempty"`
}

// TraceDeviceCall is one micro:bit round trip.
type TraceDeviceCall struct {
	Seq      int64    `json:"seq"`
	Op       string   `json:"op"`
	Args     []string `json:"args"`
	Response []string `json:"response,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// TraceStats holds summary statistics for the run.
type TraceStats struct {
	Events        int `json:"events"`
	Firings       int `json:"firings"`
	FailedFirings int `json:"failed_firings"`
	DeviceCalls   int `json:"device_calls"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal of a run",
		Long: `Show what happened during a journaled run: the events published, the
hooks each event fired and the micro:bit calls made.

Without --run the most recent run is shown.

Examples:
  pytch trace --db ./runs.db
  pytch trace --db ./runs.db --list
  pytch trace --db ./runs.db --run 0190f1c2-... --channel sprite
  pytch trace --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (default: latest run)")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "only show events on this channel")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list journaled runs")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open creates missing files, so check first.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("journal not found: %s", opts.Database))
	}

	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())
	j, err := journal.Open(opts.Database, journal.WithLogger(logger))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error())
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			logger.Error("closing journal", slog.Any("error", closeErr))
		}
	}()

	if opts.List {
		return listRuns(ctx, formatter, j)
	}

	run, err := selectRun(ctx, j, opts.RunID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error())
	}

	result, err := loadTrace(ctx, j, run, opts.Channel)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

func selectRun(ctx context.Context, j *journal.Journal, id string) (journal.RunInfo, error) {
	if id == "" {
		run, ok, err := j.LatestRun(ctx)
		if err != nil {
			return journal.RunInfo{}, err
		}
		if !ok {
			return journal.RunInfo{}, fmt.Errorf("journal has no runs")
		}
		return run, nil
	}

	runs, err := j.Runs(ctx)
	if err != nil {
		return journal.RunInfo{}, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
	}
	return journal.RunInfo{}, fmt.Errorf("run not found: %s", id)
}

func loadTrace(ctx context.Context, j *journal.Journal, run journal.RunInfo, channel string) (*TraceResult, error) {
	events, err := j.Events(ctx, run.ID, channel)
	if err != nil {
		return nil, err
	}
	firings, err := j.Firings(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	calls, err := j.DeviceCalls(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	result := &TraceResult{
		Run:         RunSummary{ID: run.ID, Name: run.Name, Protocol: run.Protocol},
		Events:      make([]TraceEventEntry, 0, len(events)),
		Firings:     make([]TraceFiring, 0, len(firings)),
		DeviceCalls: make([]TraceDeviceCall, 0, len(calls)),
	}

	shown := make(map[int64]bool, len(events))
	for _, e := range events {
		shown[e.Seq] = true
		result.Events = append(result.Events, TraceEventEntry{Seq: e.Seq, Channel: e.Channel, Key: e.Key, Target: e.Target})
	}
	for _, f := range firings {
		// Firings follow the channel filter through their event.
		if channel != "" && !shown[f.Seq] {
			continue
		}
		result.Firings = append(result.Firings, TraceFiring{
			Seq: f.Seq, HookIndex: f.HookIndex, Class: f.Class, Instance: f.Instance, Error: f.Error,
		})
		if f.Error != "" {
			result.Stats.FailedFirings++
		}
	}
	for _, c := range calls {
		result.DeviceCalls = append(result.DeviceCalls, TraceDeviceCall{
			Seq: c.Seq, Op: c.Op, Args: c.Args, Response: c.Response, Error: c.Error,
		})
	}

	result.Stats.Events = len(result.Events)
	result.Stats.Firings = len(result.Firings)
	result.Stats.DeviceCalls = len(result.DeviceCalls)
	return result, nil
}

func listRuns(ctx context.Context, formatter *OutputFormatter, j *journal.Journal) error {
	runs, err := j.Runs(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error())
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = RunSummary{ID: r.ID, Name: r.Name, Protocol: r.Protocol}
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs journaled.")
		return nil
	}
	for _, r := range summaries {
		fmt.Fprintf(formatter.Writer, "%s  %s (%s)\n", r.ID, r.Name, r.Protocol)
	}
	return nil
}

func outputTraceText(formatter *OutputFormatter, result *TraceResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Run %s: %s (%s)\n", result.Run.ID, result.Run.Name, result.Run.Protocol)

	// Group firings under the event that caused them.
	bySeq := make(map[int64][]TraceFiring)
	for _, f := range result.Firings {
		bySeq[f.Seq] = append(bySeq[f.Seq], f)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Events:")
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, e := range result.Events {
		line := fmt.Sprintf("  [%d] %s/%s", e.Seq, e.Channel, e.Key)
		if e.Target != "" {
			line += " " + e.Target
		}
		fmt.Fprintln(w, line)
		for _, f := range bySeq[e.Seq] {
			status := "ok"
			if f.Error != "" {
				status = "error: " + f.Error
			}
			fmt.Fprintf(w, "      -> %s#%d on %s: %s\n", f.Class, f.HookIndex, f.Instance, status)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Device calls:")
	if len(result.DeviceCalls) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range result.DeviceCalls {
		line := fmt.Sprintf("  [%d] %s %s", c.Seq, c.Op, strings.Join(c.Args, " "))
		if len(c.Response) > 0 {
			line += " -> " + strings.Join(c.Response, ",")
		}
		if c.Error != "" {
			line += " !" + c.Error
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d event(s), %d firing(s) (%d failed), %d device call(s)\n",
		result.Stats.Events, result.Stats.Firings, result.Stats.FailedFirings, result.Stats.DeviceCalls)
}
