package taskloop

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrDuplicateRunnerName is returned by [New] when a registry already
	// has a live runner under the requested name. Matching is by
	// [errors.Is]; the returned error also carries the offending name.
	ErrDuplicateRunnerName = errors.New("taskloop: duplicate runner name")
)

// FaultOp identifies which task lifecycle call a recovered panic escaped
// from.
type FaultOp uint8

const (
	// FaultAdvance indicates a panic escaped [Task.Advance].
	FaultAdvance FaultOp = iota
	// FaultDispose indicates a panic escaped [Disposer.Dispose].
	FaultDispose
	// FaultAwait indicates a panic escaped [Awaiter.Await].
	FaultAwait
)

// String returns a human-readable representation of the operation.
func (op FaultOp) String() string {
	switch op {
	case FaultAdvance:
		return "advance"
	case FaultDispose:
		return "dispose"
	case FaultAwait:
		return "await"
	default:
		return "unknown"
	}
}

// Fault describes a panic recovered from a task while it was being
// advanced, disposed, or registered with an external awaiter.
//
// Faults are confined to the task they originate from: the faulting task
// is retired (and disposed, if it implements [Disposer]) while the runner
// and its remaining tasks continue unaffected. Faults are reported to the
// handler configured via [WithFaultHandler], or logged when no handler is
// set.
type Fault struct {
	// Task is the task the panic was recovered from.
	Task Task
	// Recovered is the value recovered from the panic.
	Recovered any
	// Op is the lifecycle call the panic escaped from.
	Op FaultOp
}

// Error implements the error interface.
func (f Fault) Error() string {
	return fmt.Sprintf("taskloop: task panicked during %s: %v", f.Op, f.Recovered)
}

// Unwrap returns the recovered value if it is an error type. This enables
// use with [errors.Is] and [errors.As] for error matching through the
// cause chain.
//
// If the recovered value is not an error (e.g. a string or other type),
// returns nil.
func (f Fault) Unwrap() error {
	if err, ok := f.Recovered.(error); ok {
		return err
	}
	return nil
}
