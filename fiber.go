package taskloop

import (
	"runtime"
	"time"
)

type (
	// TickPolicy bounds the work performed by a single advance pass.
	//
	// Keep is consulted after each task is advanced, with the number of
	// tasks advanced so far this pass and the time elapsed since the pass
	// began. Returning false ends the pass; tasks not yet reached are
	// rotated to the front of the next pass, so a persistent bound degrades
	// to round-robin rather than starving the tail of the set. The bound
	// is best-effort: at least one task is always advanced per non-empty
	// pass.
	TickPolicy interface {
		Keep(advanced int, elapsed time.Duration) bool
	}

	// TickPolicyFunc adapts a plain function to the [TickPolicy] interface.
	TickPolicyFunc func(advanced int, elapsed time.Duration) bool
)

// Keep implements [TickPolicy] by calling f.
func (f TickPolicyFunc) Keep(advanced int, elapsed time.Duration) bool {
	return f(advanced, elapsed)
}

// TimeBudget returns a [TickPolicy] that ends the advance pass once d has
// elapsed. A non-positive d degenerates to one task per tick.
func TimeBudget(d time.Duration) TickPolicy {
	return TickPolicyFunc(func(_ int, elapsed time.Duration) bool {
		return elapsed < d
	})
}

// run is the fiber: the single goroutine that owns the runner's active
// set and advances its tasks. It is locked to an OS thread for the
// runner's lifetime, matching the one-worker-per-runner execution model
// and keeping thread-affine task workloads (FFI, thread-local state)
// safe.
func (r *Runner) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)

	setThreadName(r.name)

	r.logger.Debug().
		Str(`runner`, r.name).
		Bool(`relaxed`, r.gate.relaxed).
		Dur(`interval`, r.interval).
		Log(`runner started`)

	// Both structures are fiber-owned; they are handed to teardown by
	// pointer once the loop exits.
	var (
		active  activeSet
		pending []*pendingAwait
	)

	for !r.killed.Load() {
		tickStart := time.Now()

		// Admission. While flushing, queued submissions are left alone
		// (delayed, not dropped) and still-pending external suspensions
		// are forced down.
		flushing := r.flushing.Load()
		if flushing {
			r.state.Store(StateFlushing)
			r.stopPending(&pending)
		} else {
			r.state.Store(StateDraining)
			prunePending(&pending)
			r.ingress.drainInto(&active)
		}

		if active.len() > 0 {
			if !flushing {
				r.state.Store(StateRunning)
			}
			r.advancePass(&active, &pending, tickStart, flushing)
		}
		r.active.Store(int64(active.len()))

		// A flush ends only when the active set it found has run down.
		if flushing && active.len() == 0 {
			r.flushing.Store(false)
			r.logger.Debug().Str(`runner`, r.name).Log(`flush complete`)
		}

		if r.interval > 0 {
			r.pace(tickStart)
		}

		// Park only when there is nothing runnable and nothing queued.
		// The queue check races concurrent pushes, which is fine: a push
		// after the check wakes the gate, and the gate's signal is sticky,
		// so the wait below returns instead of blocking.
		if active.len() == 0 && r.ingress.len() == 0 && !r.killed.Load() {
			r.state.Store(StateIdle)
			r.gate.wait()
		}
	}

	r.teardown(&active, &pending)
}

// advancePass advances each active task once, retiring those that
// complete, fault, or suspend externally. Removal swaps the last task
// into the vacated index, so the index is revisited before moving on.
func (r *Runner) advancePass(active *activeSet, pending *[]*pendingAwait, started time.Time, flushing bool) {
	advanced := 0
	for i := 0; i < active.len(); i++ {
		t := active.at(i)
		advanced++
		step, ok := r.advance(t)
		switch {
		case !ok:
			// Panic already reported as a Fault; retire the task.
			active.removeAt(i)
			i--
			r.dispose(t)
		case step.kind == stepCompleted:
			active.removeAt(i)
			i--
			r.dispose(t)
		case step.kind == stepAwait:
			active.removeAt(i)
			i--
			if flushing || r.killed.Load() {
				// Forced stop; the awaiter is never invoked.
				r.dispose(t)
			} else if e := r.beginAwait(t, step.awaiter); e != nil {
				*pending = append(*pending, e)
			}
		}
		if r.policy != nil && !r.policy.Keep(advanced, time.Since(started)) {
			// Positions 0..i were handled this pass; lead with the rest
			// next tick.
			active.rotate(i + 1)
			return
		}
	}
}

// advance runs one Advance call with panic isolation. ok is false if the
// task panicked.
func (r *Runner) advance(t Task) (step Step, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			step, ok = Step{}, false
			r.reportFault(Fault{Task: t, Recovered: rec, Op: FaultAdvance})
		}
	}()
	return t.Advance(), true
}

// dispose releases a retired task's resources, if it has any. A panic
// from Dispose is reported but does not undo the retirement.
func (r *Runner) dispose(t Task) {
	d, ok := t.(Disposer)
	if !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.reportFault(Fault{Task: t, Recovered: rec, Op: FaultDispose})
		}
	}()
	d.Dispose()
}

// reportFault delivers a recovered panic to the fault handler, or to the
// log when no handler is configured. The handler is isolated the same
// way tasks are; a panicking handler must not take down the fiber.
func (r *Runner) reportFault(f Fault) {
	if r.fault == nil {
		r.logger.Err().
			Str(`runner`, r.name).
			Stringer(`op`, f.Op).
			Err(f).
			Log(`task fault`)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Err().
				Str(`runner`, r.name).
				Any(`recovered`, rec).
				Log(`fault handler panicked`)
		}
	}()
	r.fault(f)
}

// pace sleeps out the remainder of the tick interval. Kill cuts the
// sleep short; nothing else does.
func (r *Runner) pace(started time.Time) {
	remaining := r.interval - time.Since(started)
	if remaining <= 0 {
		return
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-t.C:
	case <-r.killCh:
	}
}

// teardown is the kill path. It runs exactly once, after the loop exits,
// and leaves no task behind: queued, externally pending, and active
// tasks are all disposed before the registry name is released and the
// kill callback fires.
func (r *Runner) teardown(active *activeSet, pending *[]*pendingAwait) {
	r.state.Store(StateKilled)

	// Wait out in-flight submitters before clearing the queue. A submit
	// that starts after the killed flag is set bails before pushing, so
	// once this loop observes zero the queue can no longer grow.
	spinCount := 0
	for r.inflight.Load() > 0 {
		spinCount++
		if spinCount > 1000 {
			time.Sleep(100 * time.Microsecond)
		} else {
			runtime.Gosched()
		}
	}

	dropped := r.ingress.clear()
	for _, t := range dropped {
		r.dispose(t)
	}
	r.stopPending(pending)
	for i := 0; i < active.len(); i++ {
		r.dispose(active.at(i))
	}
	active.reset()
	r.active.Store(0)

	if r.registry != nil {
		r.registry.release(r.name)
	}

	r.logger.Debug().
		Str(`runner`, r.name).
		Int(`dropped`, len(dropped)).
		Log(`runner killed`)

	if cb := r.onKilled; cb != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Err().
						Str(`runner`, r.name).
						Any(`recovered`, rec).
						Log(`kill callback panicked`)
				}
			}()
			cb()
		}()
	}
}
