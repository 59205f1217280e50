package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	log "github.com/rs/zerolog"

	"github.com/kvmwatch/kvmwatch/pkg/perf"
)

const (
	DefaultTracingRoot = "/sys/kernel/debug/tracing"

	defaultOnlineCPUsPath = "/sys/devices/system/cpu/online"

	// tracepointFamily is the kernel event family the source serves.
	tracepointFamily = "kvm"
)

// TracepointSource opens one counter group per online hardware thread,
// with one counter per discoverable field in each group. The created
// set is fixed at Init; SetActiveFields only toggles counters between
// enabled and disabled.
type TracepointSource struct {
	groups []*perf.Group
	fields mapset.Set[string]
	active mapset.Set[string]

	*TracepointSourceOptions
}

func NewTracepointSource(opts ...TracepointSourceOption) *TracepointSource {
	source := &TracepointSource{
		TracepointSourceOptions: &TracepointSourceOptions{
			tracingRoot:    DefaultTracingRoot,
			onlineCPUsPath: defaultOnlineCPUsPath,
			logger:         log.Nop(),
		},
		active: mapset.NewSet[string](),
	}
	for _, opt := range opts {
		opt(source)
	}

	return source
}

// TracepointsAvailable reports whether the tracing event directory for
// the virtualization family exists under the given root.
func TracepointsAvailable(tracingRoot string) bool {
	info, err := os.Stat(filepath.Join(tracingRoot, "events", tracepointFamily))

	return err == nil && info.IsDir()
}

func (s *TracepointSource) eventsDir() string {
	return filepath.Join(s.tracingRoot, "events", tracepointFamily)
}

// Init discovers fields and online CPUs, raises the descriptor limit to
// the required budget, and opens every counter. All failures are final:
// the source never partially initializes.
func (s *TracepointSource) Init() error {
	if s.profile == nil {
		return ErrNoProfile
	}

	fields, err := s.DiscoverFields()
	if err != nil {
		return err
	}

	cpus, err := OnlineCPUs(s.onlineCPUsPath)
	if err != nil {
		return err
	}

	budget := FDBudget(len(cpus), fields.Cardinality())
	if err := raiseFDLimit(budget); err != nil {
		return err
	}

	// Deterministic creation order: groups in CPU order, events in
	// sorted field order, so every group has the same leader.
	names := fields.ToSlice()
	sort.Strings(names)

	s.logger.Debug().
		Int("cpus", len(cpus)).
		Int("fields", len(names)).
		Uint64("fd_budget", budget).
		Msg("creating counter groups")

	for _, cpu := range cpus {
		group := perf.NewGroup(s.profile, cpu)
		for _, name := range names {
			if err := s.addEvent(group, name); err != nil {
				s.Close()

				return err
			}
		}
		s.groups = append(s.groups, group)
	}

	return nil
}

func (s *TracepointSource) addEvent(group *perf.Group, name string) error {
	field, err := ParseField(name)
	if err != nil {
		return err
	}

	config, err := perf.TracepointConfig(s.eventsDir(), field.Tracepoint)
	if err != nil {
		return err
	}

	filter, err := field.FilterExpression(s.profile)
	if err != nil {
		return err
	}

	if _, err := group.AddEvent(name, config, filter); err != nil {
		return err
	}

	return nil
}

// DiscoverFields enumerates the tracepoint directory and synthesizes
// one sub-reason field per reason-table entry of every tracepoint that
// has one.
func (s *TracepointSource) DiscoverFields() (mapset.Set[string], error) {
	if s.fields != nil {
		return s.fields.Clone(), nil
	}
	if s.profile == nil {
		return nil, ErrNoProfile
	}

	entries, err := os.ReadDir(s.eventsDir())
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover tracepoints")
	}

	fields := mapset.NewSet[string]()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		fields.Add(name)

		table, ok := s.profile.ReasonTables[name]
		if !ok {
			continue
		}
		for reason := range table.Reasons {
			fields.Add(fmt.Sprintf("%s(%s)", name, reason))
		}
	}

	s.fields = fields

	return fields.Clone(), nil
}

// SetActiveFields resets and enables every desired counter and disables
// the rest. Group leaders are never disabled: stopping a leader stops
// the whole group, so an undesired leader keeps counting and is merely
// excluded from Read output.
func (s *TracepointSource) SetActiveFields(desired mapset.Set[string]) error {
	for _, group := range s.groups {
		for _, event := range group.Events() {
			switch {
			case desired.Contains(event.Name()):
				if err := event.Reset(); err != nil {
					return err
				}
				if err := event.Enable(); err != nil {
					return err
				}
			case event.Leader():
				// Left running; filtered out on Read.
			default:
				if err := event.Disable(); err != nil {
					return err
				}
			}
		}
	}

	if s.fields != nil {
		s.active = desired.Intersect(s.fields)
	} else {
		s.active = desired.Clone()
	}

	return nil
}

// Read sums every active field across all per-CPU groups. Each group is
// snapshotted atomically; fields outside the active set are omitted.
func (s *TracepointSource) Read() (map[string]uint64, error) {
	totals := make(map[string]uint64, s.active.Cardinality())
	for _, group := range s.groups {
		values, err := group.Read()
		if err != nil {
			return nil, err
		}
		for name, value := range values {
			if s.active.Contains(name) {
				totals[name] += value
			}
		}
	}

	return totals, nil
}

// Close tears the counter groups down and releases every descriptor.
func (s *TracepointSource) Close() error {
	var firstErr error
	for _, group := range s.groups {
		if err := group.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.groups = nil

	return firstErr
}
