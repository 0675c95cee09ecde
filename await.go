// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskloop

import (
	"context"
	"sync/atomic"
)

// Await state values. A pending suspension resolves exactly once, to
// resumed (the external facility fired) or stopped (the runner forced it
// down); the CAS on pendingAwait.state is the arbiter.
const (
	awaitPending uint32 = iota
	awaitResumed
	awaitStopped
)

// pendingAwait tracks one externally suspended task.
//
// The slice of these is owned by the fiber; external goroutines only ever
// touch an entry's atomic state, via the resume closure handed to the
// awaiter. That keeps the single-writer discipline intact without a lock.
type pendingAwait struct {
	task   Task
	cancel context.CancelFunc
	state  atomic.Uint32
}

// beginAwait registers t with a, returning the tracking entry, or nil if
// the awaiter panicked (in which case the task has already been retired).
//
// The resume closure re-submits the task through the ingress queue, so a
// resumed task is re-admitted no earlier than the next tick, and never
// while a previous Advance is still on the stack. Extra resume calls lose
// the CAS and do nothing.
func (r *Runner) beginAwait(t Task, a Awaiter) (entry *pendingAwait) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &pendingAwait{task: t, cancel: cancel}
	defer func() {
		if rec := recover(); rec != nil {
			r.reportFault(Fault{Task: t, Recovered: rec, Op: FaultAwait})
			if e.state.CompareAndSwap(awaitPending, awaitStopped) {
				r.dispose(t)
			}
			cancel()
			entry = nil
		}
	}()
	a.Await(ctx, func() {
		if e.state.CompareAndSwap(awaitPending, awaitResumed) {
			r.resubmit(t)
		}
	})
	r.logger.Trace().
		Str(`runner`, r.name).
		Log(`task suspended on external awaiter`)
	return e
}

// resubmit re-admits an externally resumed task. Unlike Submit it leaves
// the paused flag alone, and a task resumed after kill is disposed here
// rather than silently dropped, upholding the dispose-or-readmit
// guarantee.
func (r *Runner) resubmit(t Task) {
	r.inflight.Add(1)
	defer r.inflight.Add(-1)
	if r.killed.Load() {
		r.dispose(t)
		return
	}
	r.ingress.push(t)
}

// prunePending drops entries whose suspension has resolved, releasing
// their contexts. Fiber only.
func prunePending(pending *[]*pendingAwait) {
	p := *pending
	for i := 0; i < len(p); i++ {
		if p[i].state.Load() != awaitPending {
			p[i].cancel()
			last := len(p) - 1
			p[i] = p[last]
			p[last] = nil
			p = p[:last]
			i--
		}
	}
	*pending = p
}

// stopPending forces down every tracked suspension: entries still pending
// are cancelled and their tasks disposed; entries that already resumed
// only have their contexts released (their tasks re-admitted themselves
// and are the queue's responsibility now). The slice is emptied either
// way.
func (r *Runner) stopPending(pending *[]*pendingAwait) {
	p := *pending
	for i, e := range p {
		if e.state.CompareAndSwap(awaitPending, awaitStopped) {
			e.cancel()
			r.logger.Trace().
				Str(`runner`, r.name).
				Log(`external suspension cancelled`)
			r.dispose(e.task)
		} else {
			e.cancel()
		}
		p[i] = nil
	}
	*pending = p[:0]
}
