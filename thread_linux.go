//go:build linux

package taskloop

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// setThreadName labels the calling OS thread so the runner shows up by
// name in ps, top, and debuggers. Linux caps thread names at 15 bytes
// plus NUL; longer names are truncated.
func setThreadName(name string) {
	if name == "" {
		return
	}
	var buf [16]byte
	copy(buf[:15], name)
	_ = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0)
}
