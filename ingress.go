package taskloop

import (
	"sync"

	"github.com/gammazero/deque"
)

// ingress is the MPSC hand-off queue between producers and the fiber.
//
// Any goroutine may push; only the fiber drains. A mutex guards the
// backing deque (pushes are rare relative to spins, and the critical
// sections are a few pointer moves), while the associated gate carries
// the wake so the fiber never blocks while holding the lock.
//
// Ordering: tasks from a single producer are admitted in submission
// order. No ordering is defined across producers.
type ingress struct {
	mu sync.Mutex
	q  deque.Deque[Task]

	// gate is woken on every push, outside the lock. A push that races a
	// concurrent clear may produce a wake with nothing behind it; the
	// fiber treats that as a spurious wake-up.
	gate *gate
}

// push enqueues a task and wakes the fiber. Safe from any goroutine.
func (q *ingress) push(t Task) {
	q.mu.Lock()
	q.q.PushBack(t)
	q.mu.Unlock()
	q.gate.wake()
}

// drainInto moves every queued task into dst, in queue order, and
// returns the number moved. Fiber only.
func (q *ingress) drainInto(dst *activeSet) int {
	q.mu.Lock()
	n := q.q.Len()
	for i := 0; i < n; i++ {
		dst.add(q.q.PopFront())
	}
	q.mu.Unlock()
	return n
}

// clear removes every queued task without admitting any, returning the
// removed tasks so the caller can dispose them. A push that begins after
// clear acquires the lock is not affected: its task stays queued for a
// later drain.
func (q *ingress) clear() []Task {
	q.mu.Lock()
	n := q.q.Len()
	if n == 0 {
		q.mu.Unlock()
		return nil
	}
	dropped := make([]Task, 0, n)
	for i := 0; i < n; i++ {
		dropped = append(dropped, q.q.PopFront())
	}
	q.mu.Unlock()
	return dropped
}

// len reports the number of queued tasks. Safe from any goroutine.
func (q *ingress) len() int {
	q.mu.Lock()
	n := q.q.Len()
	q.mu.Unlock()
	return n
}
