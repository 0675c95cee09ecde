package taskloop

import "slices"

// activeSet holds the tasks currently being advanced by the fiber.
//
// Single-writer: only the fiber goroutine touches it, so no locking.
// Removal swaps the last element into the vacated slot, which keeps
// removal O(1) at the cost of iteration order. Callers removing during a
// forward scan must revisit the same index, since it now holds a task
// that has not been seen this pass.
type activeSet struct {
	tasks []Task
}

func (s *activeSet) add(t Task) {
	s.tasks = append(s.tasks, t)
}

func (s *activeSet) at(i int) Task {
	return s.tasks[i]
}

func (s *activeSet) len() int {
	return len(s.tasks)
}

// removeAt removes the task at index i via swap-with-last. The vacated
// tail slot is cleared for GC.
func (s *activeSet) removeAt(i int) {
	last := len(s.tasks) - 1
	s.tasks[i] = s.tasks[last]
	s.tasks[last] = nil
	s.tasks = s.tasks[:last]
}

// rotate moves the first k tasks to the end of the set, in place. Used
// when a tick policy truncates an advance pass, so the tasks it skipped
// lead the next pass instead of being skipped again.
func (s *activeSet) rotate(k int) {
	if k <= 0 || k >= len(s.tasks) {
		return
	}
	slices.Reverse(s.tasks[:k])
	slices.Reverse(s.tasks[k:])
	slices.Reverse(s.tasks)
}

// reset clears the set, releasing task references for GC.
func (s *activeSet) reset() {
	for i := range s.tasks {
		s.tasks[i] = nil
	}
	s.tasks = s.tasks[:0]
}
