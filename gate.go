package taskloop

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	// defaultSpinAttempts is the bound on spin iterations before a tight
	// gate falls back to blocking. Tunable via [WithSpinAttempts].
	defaultSpinAttempts = 128

	// maxSpinSleep caps the sleep granularity of the spin backoff.
	maxSpinSleep = 100 * time.Microsecond
)

// gate coordinates parking and waking between the fiber and producers.
//
// It is a hybrid of a sticky atomic flag and a capacity-1 token channel.
// wake is cheap enough to call unconditionally on every push; wait spins
// on the flag for a bounded number of attempts (unless relaxed) and then
// blocks on the channel.
//
// Correctness story: wake sets the flag before it considers sending a
// token, and only the transition from idle to signaled sends one. A wake
// that lands between the fiber's queue check and its park is therefore
// never lost; either the spin path observes the flag, or the token is in
// the channel when the receive begins. Spurious wake-ups are possible
// (stale tokens from consumed signals) and harmless: the fiber rechecks
// its queues and parks again. Missed wake-ups are not possible.
type gate struct { // betteralign:ignore
	_        [sizeOfCacheLine]byte // Padding to avoid false sharing with neighboring allocations //nolint:unused
	signaled atomic.Uint32
	_        [sizeOfCacheLine - sizeOfAtomicUint32]byte //nolint:unused

	// token carries at most one wake from producers to a blocked fiber.
	token chan struct{}

	// spins counts backoff rounds, for observability and tests.
	spins atomic.Uint64

	// relaxed skips the spin phase entirely, trading wake latency for
	// idle CPU.
	relaxed bool

	attempts int // spin bound before blocking
	yields   int // attempts spent on Gosched before sleeping
}

func newGate(relaxed bool, attempts int) *gate {
	g := &gate{
		token:    make(chan struct{}, 1),
		relaxed:  relaxed,
		attempts: attempts,
	}
	if g.attempts <= 0 {
		g.attempts = defaultSpinAttempts
	}
	g.yields = g.attempts / 4
	if g.yields < 1 {
		g.yields = 1
	}
	return g
}

// wake records a wake and unparks the fiber if it is blocked.
//
// The signal is sticky: waking before the fiber parks is never lost, and
// repeated wakes between parks collapse into a single token. Safe to call
// from any goroutine, at any point in the runner's life.
func (g *gate) wake() {
	if g.signaled.Swap(1) == 0 {
		select {
		case g.token <- struct{}{}:
		default:
		}
	}
}

// wait parks the caller until a wake is recorded. Returns immediately if
// one already has been. Spurious returns are possible; missed wakes are
// not.
func (g *gate) wait() {
	if !g.relaxed {
		for i := 0; i < g.attempts; i++ {
			if g.signaled.Load() != 0 {
				g.consume()
				return
			}
			g.spins.Add(1)
			g.backoff(i)
		}
	}
	<-g.token
	g.signaled.Store(0)
}

// consume clears a signal observed by the spin path.
//
// The token is drained before the flag is cleared. In the other order a
// concurrent wake could slip between the two steps: its token would be
// swallowed by the drain while its flag write survives, leaving the flag
// set with no token and stranding a later blocking wait.
func (g *gate) consume() {
	select {
	case <-g.token:
	default:
	}
	g.signaled.Store(0)
}

// backoff yields between early spin attempts, then sleeps with a
// granularity that grows as attempts accumulate.
func (g *gate) backoff(attempt int) {
	if attempt < g.yields {
		runtime.Gosched()
		return
	}
	d := time.Duration(attempt-g.yields+1) * time.Microsecond
	if d > maxSpinSleep {
		d = maxSpinSleep
	}
	time.Sleep(d)
}
