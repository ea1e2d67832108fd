package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/pytch/internal/dispatch"
)

// RunInfo describes a journaled run.
type RunInfo struct {
	ID       string
	Name     string
	Protocol string
}

// Firing is a journaled hook firing.
type Firing struct {
	Seq       int64
	HookIndex int
	Class     string
	Instance  string
	Error     string
}

// DeviceCall is a journaled transport round trip.
type DeviceCall struct {
	Seq      int64
	Op       string
	Args     []string
	Response []string
	Error    string
}

// Runs lists runs in the order they were started.
func (j *Journal) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, name, protocol FROM runs ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Name, &r.Protocol); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently started run, or false if the
// journal is empty.
func (j *Journal) LatestRun(ctx context.Context) (RunInfo, bool, error) {
	var r RunInfo
	err := j.db.QueryRowContext(ctx, `
		SELECT id, name, protocol FROM runs ORDER BY rowid DESC LIMIT 1
	`).Scan(&r.ID, &r.Name, &r.Protocol)
	if err == sql.ErrNoRows {
		return RunInfo{}, false, nil
	}
	if err != nil {
		return RunInfo{}, false, fmt.Errorf("query latest run: %w", err)
	}
	return r, true, nil
}

// Events returns a run's events in seq order. An empty channel matches
// every channel.
func (j *Journal) Events(ctx context.Context, runID, channel string) ([]dispatch.EventRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, channel, event_key, target
		FROM events
		WHERE run_id = ? AND (? = '' OR channel = ?)
		ORDER BY seq ASC
	`, runID, channel, channel)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []dispatch.EventRecord{}
	for rows.Next() {
		var e dispatch.EventRecord
		if err := rows.Scan(&e.Seq, &e.Channel, &e.Key, &e.Target); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Firings returns a run's hook firings ordered by event then hook.
func (j *Journal) Firings(ctx context.Context, runID string) ([]Firing, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, hook_index, class, instance, error
		FROM firings
		WHERE run_id = ?
		ORDER BY seq ASC, hook_index ASC, rowid ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	firings := []Firing{}
	for rows.Next() {
		var f Firing
		var errText sql.NullString
		if err := rows.Scan(&f.Seq, &f.HookIndex, &f.Class, &f.Instance, &errText); err != nil {
			return nil, fmt.Errorf("scan firing: %w", err)
		}
		f.Error = errText.String
		firings = append(firings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return firings, nil
}

// DeviceCalls returns a run's transport round trips in call order.
func (j *Journal) DeviceCalls(ctx context.Context, runID string) ([]DeviceCall, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT call_seq, op, args, response, error
		FROM device_calls
		WHERE run_id = ?
		ORDER BY call_seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query device calls: %w", err)
	}
	defer rows.Close()

	calls := []DeviceCall{}
	for rows.Next() {
		var c DeviceCall
		var argsJSON, respJSON string
		var errText sql.NullString
		if err := rows.Scan(&c.Seq, &c.Op, &argsJSON, &respJSON, &errText); err != nil {
			return nil, fmt.Errorf("scan device call: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &c.Args); err != nil {
			return nil, fmt.Errorf("unmarshal args of call %d: %w", c.Seq, err)
		}
		if err := json.Unmarshal([]byte(respJSON), &c.Response); err != nil {
			return nil, fmt.Errorf("unmarshal response of call %d: %w", c.Seq, err)
		}
		c.Error = errText.String
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate device calls: %w", err)
	}
	return calls, nil
}
