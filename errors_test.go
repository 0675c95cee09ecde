package taskloop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultError(t *testing.T) {
	f := Fault{Task: &seqTask{}, Recovered: errBoom, Op: FaultAdvance}
	assert.EqualError(t, f, "taskloop: task panicked during advance: boom")

	f.Op = FaultDispose
	f.Recovered = "string panic"
	assert.EqualError(t, f, "taskloop: task panicked during dispose: string panic")
}

func TestFaultUnwrap(t *testing.T) {
	f := Fault{Recovered: errBoom, Op: FaultAdvance}
	assert.ErrorIs(t, f, errBoom)
	assert.Equal(t, errBoom, f.Unwrap())

	// Non-error panic values do not unwrap.
	f = Fault{Recovered: 42, Op: FaultAwait}
	assert.Nil(t, f.Unwrap())
	assert.NotErrorIs(t, f, errBoom)
}

func TestFaultAs(t *testing.T) {
	var err error = Fault{Recovered: errBoom, Op: FaultAwait}
	var f Fault
	assert.ErrorAs(t, err, &f)
	assert.Equal(t, FaultAwait, f.Op)
}

func TestFaultOpString(t *testing.T) {
	assert.Equal(t, "advance", FaultAdvance.String())
	assert.Equal(t, "dispose", FaultDispose.String())
	assert.Equal(t, "await", FaultAwait.String())
	assert.Equal(t, "unknown", FaultOp(99).String())
}

func TestErrDuplicateRunnerName(t *testing.T) {
	assert.EqualError(t, ErrDuplicateRunnerName, "taskloop: duplicate runner name")
	assert.True(t, errors.Is(ErrDuplicateRunnerName, ErrDuplicateRunnerName))
}
