package taskloop

import (
	"sync/atomic"
)

// State describes what the fiber is currently doing.
//
// State Machine:
//
//	StateIdle (0) → StateDraining      [gate wake]
//	StateDraining → StateRunning       [tasks admitted]
//	StateRunning → StateIdle           [nothing left runnable]
//	StateDraining → StateFlushing      [stop-all observed]
//	StateRunning → StateFlushing       [stop-all observed]
//	StateFlushing → StateIdle          [active set ran down to zero]
//	any → StateKilled                  [kill observed; terminal]
//
// Unlike a CAS-driven state machine, this one has a single writer: the
// fiber stores transitions as it passes through its tick, and everyone
// else only reads. Wake-up correctness is carried by the gate, not by
// state transitions, so readers must treat the value as a monitoring
// signal that may lag the fiber by a few instructions.
type State uint32

const (
	// StateIdle indicates the fiber is parked (or about to park) with no
	// runnable tasks. Also the state of a freshly created runner.
	StateIdle State = iota
	// StateDraining indicates the fiber is admitting queued submissions
	// into its active set.
	StateDraining
	// StateRunning indicates the fiber is advancing active tasks.
	StateRunning
	// StateFlushing indicates admission is suspended while the active set
	// runs down to zero.
	StateFlushing
	// StateKilled indicates the fiber has exited. Terminal.
	StateKilled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDraining:
		return "Draining"
	case StateRunning:
		return "Running"
	case StateFlushing:
		return "Flushing"
	case StateKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// fiberState is the runner's state cell, cache-line padded so that the
// fiber's frequent stores do not contend with the runner's other hot
// fields.
type fiberState struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte //nolint:unused
	v atomic.Uint32
	_ [sizeOfCacheLine - sizeOfAtomicUint32]byte //nolint:unused
}

// Load returns the current state atomically.
func (s *fiberState) Load() State {
	return State(s.v.Load())
}

// Store atomically stores a new state. Fiber only.
func (s *fiberState) Store(state State) {
	s.v.Store(uint32(state))
}
