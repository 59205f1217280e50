package stats

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// DefaultDebugfsDir is where the kernel exposes its plain-text
// virtualization counters.
const DefaultDebugfsDir = "/sys/kernel/debug/kvm"

// DebugfsSource reads counters from flat decimal-text files. There is
// nothing to enable or disable: every counter is always running, so the
// active set is purely a display-side restriction.
type DebugfsSource struct {
	dir    string
	active mapset.Set[string]
}

type DebugfsSourceOption func(*DebugfsSource)

func WithDebugfsDir(dir string) DebugfsSourceOption {
	return func(s *DebugfsSource) {
		s.dir = dir
	}
}

func NewDebugfsSource(opts ...DebugfsSourceOption) *DebugfsSource {
	source := &DebugfsSource{
		dir:    DefaultDebugfsDir,
		active: mapset.NewSet[string](),
	}
	for _, opt := range opts {
		opt(source)
	}

	return source
}

// DiscoverFields lists the counter files. Subdirectories (per-VM
// breakdowns) are not counters and are skipped.
func (s *DebugfsSource) DiscoverFields() (mapset.Set[string], error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover debugfs counters")
	}

	fields := mapset.NewSet[string]()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fields.Add(entry.Name())
	}

	return fields, nil
}

func (s *DebugfsSource) SetActiveFields(desired mapset.Set[string]) error {
	s.active = desired.Clone()

	return nil
}

// Read parses every active counter file. A failure on any field fails
// the whole sample; values are never silently zeroed.
func (s *DebugfsSource) Read() (map[string]uint64, error) {
	values := make(map[string]uint64, s.active.Cardinality())
	for _, name := range s.active.ToSlice() {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read debugfs counter %s", name)
		}

		value, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed debugfs counter %s", name)
		}

		values[name] = value
	}

	return values, nil
}
