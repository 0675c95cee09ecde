package taskloop

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// Runner drives a set of cooperative tasks on a dedicated worker
// goroutine (the fiber), locked to its own OS thread.
//
// All methods are safe to call from any goroutine. Task code itself runs
// only on the fiber, one Advance at a time; see [Task] for the contract.
//
// A Runner keeps its fiber alive until [Runner.Kill]. Idle runners park
// on an internal gate and cost nothing but a blocked thread (or, for
// non-relaxed runners, a bounded spin before blocking).
type Runner struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	name     string
	registry *Registry

	logger   *logiface.Logger[logiface.Event]
	fault    func(Fault)
	policy   TickPolicy
	interval time.Duration

	gate    *gate
	ingress ingress

	// state is advisory; see State.
	state fiberState

	// Facade flags. paused is purely advisory. flushing gates admission.
	// killed is the terminal latch: set once by Kill, checked everywhere.
	paused   atomic.Bool
	flushing atomic.Bool
	killed   atomic.Bool

	// active mirrors the fiber's active set length after each tick phase.
	active atomic.Int64

	// inflight counts submissions between their killed-check and their
	// push, so teardown can wait for stragglers before clearing the
	// queue.
	inflight atomic.Int64

	killOnce sync.Once
	onKilled func()
	killCh   chan struct{}
	done     chan struct{}
}

var runnerIDCounter atomic.Uint64

// New creates a runner and starts its fiber.
//
// On error (bad options, or a registry name collision) no fiber is
// started and nothing is registered.
func New(opts ...Option) (*Runner, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	name := cfg.name
	if name == "" {
		name = fmt.Sprintf("taskloop-%d", runnerIDCounter.Add(1))
	}

	if cfg.registry != nil {
		if err := cfg.registry.acquire(name); err != nil {
			return nil, err
		}
	}

	r := &Runner{
		name:     name,
		registry: cfg.registry,
		logger:   cfg.logger,
		fault:    cfg.fault,
		policy:   cfg.policy,
		interval: cfg.interval,
		gate:     newGate(cfg.relaxed, cfg.spinAttempts),
		killCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.ingress.gate = r.gate

	go r.run()

	return r, nil
}

// Submit queues a task for admission on the fiber's next tick and clears
// the paused flag.
//
// Tasks submitted by a single goroutine are admitted in submission
// order. Submissions during a flush (see [Runner.StopAll]) are delayed
// until the flush completes, not dropped.
//
// A nil task is a no-op. After [Runner.Kill], Submit is a silent no-op:
// the task is not admitted and not disposed; ownership stays with the
// caller.
func (r *Runner) Submit(t Task) {
	if t == nil {
		return
	}
	r.inflight.Add(1)
	defer r.inflight.Add(-1)
	if r.killed.Load() {
		return
	}
	r.paused.Store(false)
	r.ingress.push(t)
}

// StopAll discards the queued backlog and flushes the active set.
//
// Tasks queued but not yet admitted are removed and disposed without
// ever being advanced. Tasks already active continue to be advanced
// until they complete (cooperative stop: there is no preemption), and
// still-pending external suspensions are cancelled and their tasks
// disposed. While the flush is in progress [Runner.IsStopping] reports
// true and no new admissions occur.
//
// StopAll returns without waiting for the flush. A no-op after Kill.
func (r *Runner) StopAll() {
	if r.killed.Load() {
		return
	}
	dropped := r.ingress.clear()
	for _, t := range dropped {
		r.dispose(t)
	}
	r.flushing.Store(true)
	r.gate.wake()
	r.logger.Debug().
		Str(`runner`, r.name).
		Int(`dropped`, len(dropped)).
		Log(`stop all`)
}

// Pause sets the advisory paused flag. The fiber itself is not affected:
// active tasks keep being advanced. Producers that want pause to mean
// anything consult [Runner.Paused] before submitting; any [Runner.Submit]
// clears the flag.
func (r *Runner) Pause() {
	r.paused.Store(true)
}

// Resume clears the advisory paused flag.
func (r *Runner) Resume() {
	r.paused.Store(false)
}

// Kill permanently stops the runner.
//
// The fiber finishes the tick in progress, then disposes every remaining
// task (queued, active, and externally pending, the latter with their
// await contexts cancelled), releases the registry name if one is held,
// invokes onKilled, and exits. onKilled may be nil, runs on the fiber
// goroutine, and is invoked exactly once no matter how many times Kill
// is called; later calls are no-ops whose callback is never used.
//
// Kill returns without waiting. Wait on [Runner.Done] for the fiber's
// exit.
func (r *Runner) Kill(onKilled func()) {
	r.killOnce.Do(func() {
		r.onKilled = onKilled
		r.killed.Store(true)
		close(r.killCh)
		r.gate.wake()
		r.logger.Debug().Str(`runner`, r.name).Log(`kill requested`)
	})
}

// ActiveCount reports the number of tasks in the active set. The value
// trails the fiber by up to one tick phase; treat it as a monitoring
// signal, not a synchronization primitive.
func (r *Runner) ActiveCount() int {
	return int(r.active.Load())
}

// QueuedCount reports the number of submitted tasks not yet admitted.
func (r *Runner) QueuedCount() int {
	return r.ingress.len()
}

// IsStopping reports whether a [Runner.StopAll] flush is still in
// progress.
func (r *Runner) IsStopping() bool {
	return r.flushing.Load()
}

// Paused reports the advisory paused flag.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Killed reports whether [Runner.Kill] has been called. The fiber may
// still be tearing down; see [Runner.Done].
func (r *Runner) Killed() bool {
	return r.killed.Load()
}

// Name returns the runner's name.
func (r *Runner) Name() string {
	return r.name
}

// State returns the fiber's current state. Advisory; see [State].
func (r *Runner) State() State {
	return r.state.Load()
}

// Done returns a channel closed once the fiber has fully exited,
// strictly after the kill callback has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
