package store

import (
	"context"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// DefaultBatchSize is how many pulses a Recorder buffers before writing.
const DefaultBatchSize = 4096

// Recorder buffers delivered pulses and writes them to a run.
//
// Its Observe method has the engine.Observer signature, so a Recorder can
// be registered directly with engine.WithObserver. Observers cannot return
// errors: the first write error is kept, recording stops, and the error is
// reported by Flush and Err.
type Recorder struct {
	store      *Store
	ctx        context.Context
	runID      string
	pressLimit int64
	batchSize  int

	pending  []ir.PulseEvent
	recorded int64
	err      error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithPressLimit records only presses 1..n. Zero records every press.
func WithPressLimit(n int64) RecorderOption {
	return func(r *Recorder) {
		r.pressLimit = n
	}
}

// WithBatchSize sets how many pulses are buffered between writes.
//
// Default: 4096 (DefaultBatchSize).
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewRecorder creates a recorder for an existing run.
func (s *Store) NewRecorder(ctx context.Context, runID string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:     s,
		ctx:       ctx,
		runID:     runID,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe buffers one delivered pulse.
func (r *Recorder) Observe(ev ir.PulseEvent, _ *ir.Module) {
	if r.err != nil {
		return
	}
	if r.pressLimit > 0 && ev.Press > r.pressLimit {
		return
	}
	r.pending = append(r.pending, ev)
	if len(r.pending) >= r.batchSize {
		r.err = r.write()
	}
}

// Flush writes any buffered pulses and returns the first error seen.
func (r *Recorder) Flush() error {
	if r.err != nil {
		return r.err
	}
	r.err = r.write()
	return r.err
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	return r.err
}

// Recorded returns the number of pulses written so far.
func (r *Recorder) Recorded() int64 {
	return r.recorded
}

func (r *Recorder) write() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.WritePulses(r.ctx, r.runID, r.pending); err != nil {
		return fmt.Errorf("record run %s: %w", r.runID, err)
	}
	r.recorded += int64(len(r.pending))
	r.pending = r.pending[:0]
	return nil
}
