//go:build !linux

package taskloop

// setThreadName is a no-op where the platform offers no stable API for
// labelling the calling OS thread.
func setThreadName(string) {}
