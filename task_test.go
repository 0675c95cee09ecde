package taskloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepZeroValueYields(t *testing.T) {
	var s Step
	assert.False(t, s.Completed())
	aw, ok := s.Awaiter()
	assert.Nil(t, aw)
	assert.False(t, ok)
	assert.Equal(t, Yield(), s)
}

func TestStepCompleted(t *testing.T) {
	s := Completed()
	assert.True(t, s.Completed())
	aw, ok := s.Awaiter()
	assert.Nil(t, aw)
	assert.False(t, ok)
}

func TestStepAwait(t *testing.T) {
	a := newTestAwaiter()
	s := Await(a)
	assert.False(t, s.Completed())
	aw, ok := s.Awaiter()
	require.True(t, ok)
	assert.Same(t, a, aw)
}

func TestStepAwaitNilDegeneratesToYield(t *testing.T) {
	s := Await(nil)
	assert.Equal(t, Yield(), s)
	_, ok := s.Awaiter()
	assert.False(t, ok)
}

func TestTaskFunc(t *testing.T) {
	n := 0
	var task Task = TaskFunc(func() Step {
		n++
		if n >= 2 {
			return Completed()
		}
		return Yield()
	})

	assert.False(t, task.Advance().Completed())
	assert.True(t, task.Advance().Completed())
	assert.Equal(t, 2, n)
}

// TaskFunc works end to end on a runner.
func TestTaskFuncOnRunner(t *testing.T) {
	r := newTestRunner(t)

	done := make(chan struct{})
	phase := 0
	r.Submit(TaskFunc(func() Step {
		phase++
		switch phase {
		case 1:
			return Yield()
		default:
			close(done)
			return Completed()
		}
	}))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("task never completed")
	}
}
