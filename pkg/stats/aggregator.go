package stats

import (
	"regexp"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// Sample is one observation of a field: the absolute count and, when a
// previous observation under the current filter exists, the delta since
// it.
type Sample struct {
	Value    uint64
	Delta    int64
	HasDelta bool
}

// Aggregator fans in one or more sources, restricts them to fields
// matching a filter pattern, and computes per-sample deltas. Sources
// are always consulted in configuration order.
type Aggregator struct {
	sources []Source
	pattern *regexp.Regexp
	prev    map[string]uint64
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		prev:    make(map[string]uint64),
	}
}

// FilterPattern returns the current pattern, empty when all fields are
// active.
func (a *Aggregator) FilterPattern() string {
	if a.pattern == nil {
		return ""
	}

	return a.pattern.String()
}

// SetFilterPattern restricts every source to its discoverable fields
// matching the pattern; an empty pattern activates everything. A
// pattern that does not compile returns ErrBadFilterPattern and leaves
// the aggregator untouched so the caller can re-prompt; source errors
// are backend failures and must propagate. Reconfiguring counters
// resets their hardware counts, so the previous-sample cache is
// cleared: the first sample after a filter change carries no deltas.
func (a *Aggregator) SetFilterPattern(pattern string) error {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return errors.Wrap(ErrBadFilterPattern, err.Error())
		}
	}

	for _, source := range a.sources {
		fields, err := source.DiscoverFields()
		if err != nil {
			return err
		}

		desired := mapset.NewSet[string]()
		for _, name := range fields.ToSlice() {
			if re == nil || re.MatchString(name) {
				desired.Add(name)
			}
		}

		if err := source.SetActiveFields(desired); err != nil {
			return err
		}
	}

	a.pattern = re
	a.prev = make(map[string]uint64)

	return nil
}

// Sample reads every source and merges the results. A field reported by
// several sources accumulates. Deltas are computed against the previous
// sample for the exact same name; a first observation has none.
func (a *Aggregator) Sample() (map[string]Sample, error) {
	totals := make(map[string]uint64)
	for _, source := range a.sources {
		values, err := source.Read()
		if err != nil {
			return nil, err
		}
		for name, value := range values {
			totals[name] += value
		}
	}

	samples := make(map[string]Sample, len(totals))
	for name, value := range totals {
		sample := Sample{Value: value}
		if previous, ok := a.prev[name]; ok {
			sample.Delta = int64(value - previous)
			sample.HasDelta = true
		}
		samples[name] = sample
		a.prev[name] = value
	}

	return samples, nil
}
