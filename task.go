package taskloop

import "context"

type (
	// Task is a resumable unit of cooperative work.
	//
	// A task makes progress one slice at a time: each call to Advance runs
	// the task up to its next suspension point and reports, via the returned
	// [Step], whether the task wants to keep running, has finished, or is
	// handing control to an external facility.
	//
	// Advance is only ever called from the runner's fiber goroutine, never
	// concurrently with itself. Tasks therefore need no internal locking
	// unless they share state with other goroutines of their own accord.
	//
	// Scheduling is non-preemptive: a task that never returns from Advance
	// starves every other task on the same runner.
	Task interface {
		// Advance runs the task's next slice of work.
		Advance() Step
	}

	// TaskFunc adapts a plain function to the [Task] interface.
	TaskFunc func() Step

	// Disposer is implemented by tasks that own resources requiring
	// explicit release.
	//
	// Dispose is called exactly once per retirement: after the task
	// completes, faults, or is forcibly stopped by [Runner.StopAll],
	// [Runner.Kill], or a cancelled external suspension. It is never called
	// concurrently with Advance. A panic from Dispose is reported as a
	// [Fault] and does not prevent the task's removal.
	Disposer interface {
		Dispose()
	}

	// Awaiter bridges a task to an external asynchronous facility.
	//
	// Await registers interest in an external completion. The implementation
	// must arrange for resume to be called once the external work finishes;
	// resume is safe to call from any goroutine, and calling it more than
	// once is harmless (subsequent calls are no-ops). The first resume
	// re-submits the suspended task to its runner.
	//
	// ctx is cancelled if the runner stops or is killed while the task is
	// still pending, or after the suspension resolves (as a resource
	// release). Implementations that can abandon the external work early
	// should watch ctx.Done. Once ctx is cancelled the task has been (or is
	// being) retired; a late resume is a no-op.
	//
	// Await itself is invoked on the fiber goroutine and must not block.
	Awaiter interface {
		Await(ctx context.Context, resume func())
	}

	// Step is the outcome of a single [Task.Advance] call.
	//
	// The zero value is an ordinary suspension, equivalent to [Yield].
	Step struct {
		awaiter Awaiter
		kind    stepKind
	}

	stepKind uint8
)

const (
	stepYield stepKind = iota
	stepCompleted
	stepAwait
)

// Advance implements [Task] by calling f.
func (f TaskFunc) Advance() Step { return f() }

// Yield returns a Step indicating the task has more work and should be
// advanced again on a later tick.
func Yield() Step { return Step{} }

// Completed returns a Step indicating the task has finished. The runner
// removes the task and will never advance it again.
func Completed() Step { return Step{kind: stepCompleted} }

// Await returns a Step that suspends the task on an external facility.
//
// The runner removes the task from its active set without disposing it,
// then invokes a.Await on the fiber goroutine. The task is advanced again
// only after the awaiter's resume callback fires and the resulting
// re-submission is admitted.
//
// Await with a nil awaiter degenerates to [Yield].
func Await(a Awaiter) Step {
	if a == nil {
		return Step{}
	}
	return Step{kind: stepAwait, awaiter: a}
}

// Completed reports whether the step retires the task.
func (s Step) Completed() bool { return s.kind == stepCompleted }

// Awaiter returns the external awaiter carried by the step, if any.
// Host adapters use this to translate suspensions into their own
// asynchronous primitives.
func (s Step) Awaiter() (Awaiter, bool) { return s.awaiter, s.kind == stepAwait }
