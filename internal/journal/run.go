package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/roach88/pytch/internal/dispatch"
	"github.com/roach88/pytch/internal/microbit"
	"github.com/roach88/pytch/internal/value"
)

// Run appends to one run's records. It implements dispatch.Recorder.
type Run struct {
	j     *Journal
	id    string
	calls atomic.Int64
}

// BeginRun inserts a new run and returns its recorder.
func (j *Journal) BeginRun(ctx context.Context, name, protocol string) (*Run, error) {
	id := j.ids.Generate()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, protocol) VALUES (?, ?, ?)
	`, id, name, protocol)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	j.logger.Debug("run started", "run", id, "name", name)
	return &Run{j: j, id: id}, nil
}

// ID returns the run ID.
func (r *Run) ID() string {
	return r.id
}

// RecordEvent implements dispatch.Recorder.
func (r *Run) RecordEvent(ctx context.Context, rec dispatch.EventRecord) error {
	_, err := r.j.db.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, channel, event_key, target)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.id, rec.Seq, rec.Channel, rec.Key, rec.Target)
	if err != nil {
		return fmt.Errorf("record event %d: %w", rec.Seq, err)
	}
	return nil
}

// RecordFiring implements dispatch.Recorder.
func (r *Run) RecordFiring(ctx context.Context, rec dispatch.FiringRecord) error {
	_, err := r.j.db.ExecContext(ctx, `
		INSERT INTO firings (run_id, seq, hook_index, class, instance, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.id, rec.Seq, rec.HookIndex, rec.Class, rec.Instance, errorText(rec.Err))
	if err != nil {
		return fmt.Errorf("record firing %d/%d: %w", rec.Seq, rec.HookIndex, err)
	}
	return nil
}

// Transport wraps next so every round trip is journaled. The wrapped
// transport's replies and errors pass through untouched; a failure to
// journal is logged.
func (r *Run) Transport(next microbit.Transport) microbit.Transport {
	return microbit.TransportFunc(func(ctx context.Context, op string, args []string) ([]string, error) {
		resp, err := next.Send(ctx, op, args)
		if jerr := r.recordCall(ctx, op, args, resp, err); jerr != nil {
			r.j.logger.Error("journal device call failed", "run", r.id, "op", op, "error", jerr)
		}
		return resp, err
	})
}

func (r *Run) recordCall(ctx context.Context, op string, args, resp []string, callErr error) error {
	seq := r.calls.Add(1)
	argsJSON, err := value.MarshalCanonical(args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	respJSON, err := value.MarshalCanonical(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	// Use a context that survives cancellation so the failing call is
	// still journaled.
	_, err = r.j.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO device_calls (run_id, call_seq, op, args, response, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.id, seq, op, string(argsJSON), string(respJSON), errorText(callErr))
	if err != nil {
		return fmt.Errorf("record device call %d: %w", seq, err)
	}
	return nil
}

func errorText(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}

var _ dispatch.Recorder = (*Run)(nil)
