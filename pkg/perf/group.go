package perf

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/kvmwatch/kvmwatch/pkg/arch"
)

// Group is an ordered set of counters sharing one leader, bound to a
// single CPU. The first event added becomes the leader; one read on its
// descriptor snapshots every member atomically.
type Group struct {
	profile *arch.Profile
	cpu     int
	events  []*Event
}

func NewGroup(profile *arch.Profile, cpu int) *Group {
	return &Group{
		profile: profile,
		cpu:     cpu,
	}
}

// AddEvent opens a counter for the given tracepoint config on the
// group's CPU and registers it as the last member. A non-empty filter
// expression is installed on the new descriptor before it is returned.
func (g *Group) AddEvent(name string, config uint64, filter string) (*Event, error) {
	attr := eventAttr{
		Type:       typeTracepoint,
		Config:     config,
		ReadFormat: formatGroup,
	}
	attr.Size = uint32(unsafe.Sizeof(attr))

	leaderFD := -1
	if len(g.events) > 0 {
		leaderFD = g.events[0].fd
	}

	// pid -1: count events from any process on this CPU.
	fd, err := eventOpen(g.profile, &attr, -1, g.cpu, leaderFD)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open counter %s on cpu %d", name, g.cpu)
	}

	event := &Event{
		name:    name,
		fd:      fd,
		filter:  filter,
		leader:  len(g.events) == 0,
		profile: g.profile,
	}

	if filter != "" {
		if err := event.setFilter(filter); err != nil {
			unix.Close(fd)

			return nil, err
		}
	}

	g.events = append(g.events, event)

	return event, nil
}

// Events returns the members in creation order. The leader is always
// index zero.
func (g *Group) Events() []*Event {
	return g.events
}

// Read snapshots every member in one kernel operation and returns the
// absolute counts keyed by event name.
func (g *Group) Read() (map[string]uint64, error) {
	if len(g.events) == 0 {
		return nil, ErrEmptyGroup
	}

	buf := make([]byte, 8*(1+len(g.events)))
	n, err := unix.Read(g.events[0].fd, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read counter group on cpu %d", g.cpu)
	}

	counts, err := decodeGroupCounts(buf[:n], len(g.events))
	if err != nil {
		return nil, err
	}

	values := make(map[string]uint64, len(g.events))
	for i, event := range g.events {
		values[event.name] = counts[i]
	}

	return values, nil
}

// Close releases every member descriptor, the leader last.
func (g *Group) Close() error {
	var firstErr error
	for i := len(g.events) - 1; i >= 0; i-- {
		if err := unix.Close(g.events[i].fd); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to close counter %s", g.events[i].name)
		}
	}
	g.events = nil

	return firstErr
}

// decodeGroupCounts unpacks the grouped read format: an 8-byte header
// holding the number of values, followed by one native-endian uint64
// per member in creation order. A buffer of the wrong size is an error,
// never a truncated result.
func decodeGroupCounts(buf []byte, members int) ([]uint64, error) {
	if len(buf) != 8*(1+members) {
		return nil, errors.Wrapf(ErrGroupReadSize, "got %d bytes, want %d", len(buf), 8*(1+members))
	}

	counts := make([]uint64, members)
	for i := range counts {
		counts[i] = binary.NativeEndian.Uint64(buf[8*(i+1):])
	}

	return counts, nil
}
