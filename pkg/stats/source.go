// Package stats collects virtualization event counters from pluggable
// backends and turns absolute counts into per-interval deltas under a
// runtime-changeable field filter.
package stats

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Source is the capability every counter backend provides. Concrete
// backends are selected by configuration, not inheritance.
type Source interface {
	// DiscoverFields returns every field name the backend can serve.
	DiscoverFields() (mapset.Set[string], error)

	// SetActiveFields restricts which fields subsequent Read calls
	// report. Names outside the discoverable set are ignored.
	SetActiveFields(desired mapset.Set[string]) error

	// Read returns the current absolute count of every active field.
	Read() (map[string]uint64, error)
}
