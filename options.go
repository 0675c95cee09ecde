// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskloop

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// runnerOptions holds configuration options for Runner creation.
type runnerOptions struct {
	name         string
	registry     *Registry
	logger       *logiface.Logger[logiface.Event]
	fault        func(Fault)
	policy       TickPolicy
	interval     time.Duration
	spinAttempts int
	relaxed      bool
}

// --- Runner Options ---

// Option configures a Runner instance.
type Option interface {
	applyRunner(*runnerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyRunnerFunc func(*runnerOptions) error
}

func (o *optionImpl) applyRunner(opts *runnerOptions) error {
	return o.applyRunnerFunc(opts)
}

// WithName sets the runner's name, used for the OS thread label, log
// fields, and registry identity. Empty (the default) derives a unique
// "taskloop-N" name.
func WithName(name string) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.name = name
		return nil
	}}
}

// WithRegistry registers the runner's name with reg for its lifetime.
// [New] fails with [ErrDuplicateRunnerName] if the name is already held
// by a live runner; the name is released when the runner is killed.
func WithRegistry(reg *Registry) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.registry = reg
		return nil
	}}
}

// WithRelaxed controls the gate's idle behavior. When enabled the fiber
// skips the spin phase and blocks immediately when it has nothing to do,
// trading wake-up latency for idle CPU. Disabled by default.
func WithRelaxed(enabled bool) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.relaxed = enabled
		return nil
	}}
}

// WithSpinAttempts bounds how many spin iterations the gate performs
// before blocking, for runners not in relaxed mode. Zero selects the
// default.
func WithSpinAttempts(n int) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		if n < 0 {
			return fmt.Errorf("taskloop: spin attempts must not be negative: %d", n)
		}
		opts.spinAttempts = n
		return nil
	}}
}

// WithTickInterval enforces a fixed minimum duration per tick. After each
// advance pass the fiber sleeps out the remainder of the interval before
// continuing. Zero (the default) disables pacing; the fiber re-ticks as
// fast as work allows.
func WithTickInterval(d time.Duration) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		if d < 0 {
			return fmt.Errorf("taskloop: tick interval must not be negative: %v", d)
		}
		opts.interval = d
		return nil
	}}
}

// WithTickPolicy bounds the work performed by a single advance pass. See
// [TickPolicy]. Nil (the default) advances every active task each tick.
func WithTickPolicy(policy TickPolicy) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.policy = policy
		return nil
	}}
}

// WithLogger attaches a structured logger. The runner logs lifecycle
// transitions at debug level, external suspensions at trace level, and
// task faults at error level. Nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFaultHandler registers a callback for recovered task panics. The
// handler is usually invoked on the fiber goroutine, but forced-stop
// disposal can fault on the goroutine calling [Runner.StopAll] or an
// awaiter's resume, so implementations must be safe for concurrent use.
// The handler must not block; a panic from the handler itself is logged
// and discarded.
func WithFaultHandler(handler func(Fault)) Option {
	return &optionImpl{func(opts *runnerOptions) error {
		opts.fault = handler
		return nil
	}}
}

// resolveOptions applies Option instances to runnerOptions.
func resolveOptions(opts []Option) (*runnerOptions, error) {
	cfg := &runnerOptions{
		spinAttempts: defaultSpinAttempts, // default
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyRunner(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
