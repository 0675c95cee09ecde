// Package taskloop provides cooperative task scheduling on dedicated
// worker threads, featuring pausable multi-step tasks, external
// suspension, and a spin/block wake-up gate tuned for low-latency
// hand-off.
//
// # Architecture
//
// Each [Runner] owns a single worker goroutine (the fiber), locked to an
// OS thread for its lifetime. Producers on any goroutine hand tasks to
// the fiber through an MPSC ingress queue; the fiber alone admits them
// into its active set and advances each active task once per tick. Tasks
// are resumable: every [Task.Advance] runs one slice of work and reports,
// via [Step], whether to keep going ([Yield]), retire ([Completed]), or
// suspend on an external facility ([Await]).
//
// Scheduling is non-preemptive. A task that blocks or spins inside
// Advance stalls every other task on the same runner; long operations
// should either be sliced across multiple Advance calls or pushed out
// through an [Awaiter].
//
// # Wake-up Gate
//
// An idle fiber parks on a hybrid gate: a sticky atomic signal checked by
// a bounded spin (cheap wake-up under load), backed by a capacity-1 token
// channel for blocking (no busy idle). Producers wake the gate on every
// push. Wake-ups may be spurious but are never missed; see [WithRelaxed]
// and [WithSpinAttempts] for the latency/CPU trade-off.
//
// # Thread Safety
//
//   - [Runner.Submit], [Runner.StopAll], [Runner.Pause], [Runner.Resume],
//     [Runner.Kill], and all getters are safe from any goroutine
//   - Task code (Advance, Dispose, Await) runs only on the fiber, never
//     concurrently with itself
//   - An [Awaiter]'s resume callback is safe from any goroutine and
//     idempotent
//
// # Lifecycle
//
// [Runner.StopAll] discards the queued backlog (disposing it) and blocks
// admission until the tasks already active run down to zero.
// [Runner.Kill] is terminal: remaining tasks are disposed, pending
// external suspensions are cancelled, the registry name (if any) is
// released, and the fiber exits. Every task the runner accepted is
// either run to completion or disposed; none are silently dropped.
//
// # Usage
//
//	runner, err := taskloop.New(
//	    taskloop.WithName("worker"),
//	    taskloop.WithTickInterval(10 * time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n := 3
//	runner.Submit(taskloop.TaskFunc(func() taskloop.Step {
//	    n--
//	    if n == 0 {
//	        fmt.Println("done")
//	        return taskloop.Completed()
//	    }
//	    return taskloop.Yield()
//	}))
//
//	// ... later
//	runner.Kill(nil)
//	<-runner.Done()
//
// # Faults
//
// A panic from task code is confined to that task: it is recovered,
// reported as a [Fault] (to the [WithFaultHandler] callback, or the
// configured logger), and the task is retired and disposed. The fiber
// and its remaining tasks continue. Lifecycle methods on a killed runner
// are silent no-ops; the only construction-time failure is
// [ErrDuplicateRunnerName].
package taskloop
