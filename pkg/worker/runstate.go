// Package worker runs a single node's Source, Processor, or Sink loop:
// pulling/pushing channel.Message values, tracking epoch marker
// alignment across input ports, invoking Commit, and containing panics
// the way spec §7 requires (surfaced as an error, never a crashed
// process).
package worker

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// RunState is shared by every worker goroutine in one executor run. The
// first failure recorded — whether an operator error, an operator
// panic, or a commit error — cancels the shared context so every other
// worker unwinds promptly (spec §5: uniform cancellation on first
// failure).
type RunState struct {
	cancel context.CancelFunc
	failed atomic.Bool

	once sync.Once
	err  error
}

// NewRunState derives a cancellable context from parent and the
// RunState that controls it.
func NewRunState(parent context.Context) (context.Context, *RunState) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &RunState{cancel: cancel}
}

// Fail records err as the run's failure if no failure has been recorded
// yet, and cancels the run's context. Later calls are no-ops other than
// re-cancelling (which is itself a no-op on an already-cancelled context).
func (rs *RunState) Fail(err error) {
	if err == nil {
		return
	}
	rs.once.Do(func() {
		rs.err = err
		rs.failed.Store(true)
	})
	rs.cancel()
}

// Err returns the first recorded failure, or nil if the run has not
// failed.
func (rs *RunState) Err() error {
	if !rs.failed.Load() {
		return nil
	}
	return rs.err
}

// Failed reports whether Fail has recorded an error yet.
func (rs *RunState) Failed() bool {
	return rs.failed.Load()
}
