// Package perf manages raw tracepoint performance counters: creation
// through the architecture-resolved perf_event_open syscall, grouping
// under a shared leader, kernel-side sub-filters, and atomic grouped
// reads.
package perf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/kvmwatch/kvmwatch/pkg/arch"
)

// Event is one open tracepoint counter. The file descriptor is owned
// exclusively by the event for its whole lifetime and released only
// through the owning group's Close.
type Event struct {
	name    string
	fd      int
	filter  string
	leader  bool
	profile *arch.Profile
}

// Name returns the field name the event was created for.
func (e *Event) Name() string {
	return e.name
}

// Leader reports whether the event owns the group's leader descriptor.
func (e *Event) Leader() bool {
	return e.leader
}

// Enable starts the counter.
func (e *Event) Enable() error {
	return e.ioctl(e.profile.Ioctl.Enable, 0)
}

// Disable stops the counter. Disabling the leader would silently stop
// every sibling in the group, so it is rejected.
func (e *Event) Disable() error {
	if e.leader {
		return errors.Wrap(ErrDisableLeader, e.name)
	}

	return e.ioctl(e.profile.Ioctl.Disable, 0)
}

// Reset zeroes the counter value.
func (e *Event) Reset() error {
	return e.ioctl(e.profile.Ioctl.Reset, 0)
}

func (e *Event) setFilter(expr string) error {
	arg, err := unix.BytePtrFromString(expr)
	if err != nil {
		return errors.Wrapf(err, "invalid filter expression %q", expr)
	}

	return e.ioctl(e.profile.Ioctl.SetFilter, uintptr(unsafe.Pointer(arg)))
}

func (e *Event) ioctl(request uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(e.fd), uintptr(request), arg)
	if errno != 0 {
		return errors.Wrapf(errno, "counter ioctl 0x%x failed for %s", request, e.name)
	}

	return nil
}

// TracepointConfig reads the kernel-assigned numeric identifier of a
// tracepoint from its metadata file under the tracing events directory.
func TracepointConfig(eventsDir, name string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(eventsDir, name, "id"))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read tracepoint id for %s", name)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed tracepoint id for %s", name)
	}

	return id, nil
}

func eventOpen(profile *arch.Profile, attr *eventAttr, pid, cpu, groupFD int) (int, error) {
	fd, _, errno := unix.Syscall6(
		profile.SyscallNumber,
		uintptr(unsafe.Pointer(attr)),
		uintptr(pid),
		uintptr(cpu),
		uintptr(groupFD),
		0,
		0,
	)
	if errno != 0 {
		return -1, errors.Wrapf(errno, "performance-counter creation failed (errno %d)", int(errno))
	}

	return int(fd), nil
}
