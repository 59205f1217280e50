package stats_test

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"

	"github.com/kvmwatch/kvmwatch/pkg/stats"
)

// fakeSource serves canned absolute counts, restricted by whatever
// active set the aggregator pushes down.
type fakeSource struct {
	fields mapset.Set[string]
	counts map[string]uint64
	active mapset.Set[string]
}

func newFakeSource(counts map[string]uint64) *fakeSource {
	fields := mapset.NewSet[string]()
	for name := range counts {
		fields.Add(name)
	}

	return &fakeSource{
		fields: fields,
		counts: counts,
		active: mapset.NewSet[string](),
	}
}

func (s *fakeSource) DiscoverFields() (mapset.Set[string], error) {
	return s.fields.Clone(), nil
}

func (s *fakeSource) SetActiveFields(desired mapset.Set[string]) error {
	s.active = desired.Intersect(s.fields)

	return nil
}

func (s *fakeSource) Read() (map[string]uint64, error) {
	values := make(map[string]uint64)
	for _, name := range s.active.ToSlice() {
		values[name] = s.counts[name]
	}

	return values, nil
}

func TestAggregator_FilterRestrictsFields(t *testing.T) {
	source := newFakeSource(map[string]uint64{
		"kvm_exit":      100,
		"kvm_exit(HLT)": 40,
		"kvm_entry":     100,
	})
	aggregator := stats.NewAggregator(source)

	require.NoError(t, aggregator.SetFilterPattern("^kvm_exit"))

	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Contains(t, samples, "kvm_exit")
	require.Contains(t, samples, "kvm_exit(HLT)")
	require.NotContains(t, samples, "kvm_entry")
}

func TestAggregator_EmptyPatternActivatesAll(t *testing.T) {
	source := newFakeSource(map[string]uint64{"a": 1, "b": 2})
	aggregator := stats.NewAggregator(source)

	require.NoError(t, aggregator.SetFilterPattern(""))

	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.Len(t, samples, 2)
}

func TestAggregator_InvalidPatternIsRecoverable(t *testing.T) {
	source := newFakeSource(map[string]uint64{"kvm_exit": 1})
	aggregator := stats.NewAggregator(source)
	require.NoError(t, aggregator.SetFilterPattern("^kvm_exit$"))

	err := aggregator.SetFilterPattern("([")
	require.Error(t, err)
	require.ErrorIs(t, err, stats.ErrBadFilterPattern)

	// Previous filter retained.
	require.Equal(t, "^kvm_exit$", aggregator.FilterPattern())
	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.Contains(t, samples, "kvm_exit")
}

func TestAggregator_FirstSampleHasNoDelta(t *testing.T) {
	source := newFakeSource(map[string]uint64{"kvm_exit": 10})
	aggregator := stats.NewAggregator(source)
	require.NoError(t, aggregator.SetFilterPattern(""))

	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.False(t, samples["kvm_exit"].HasDelta)

	source.counts["kvm_exit"] = 25
	samples, err = aggregator.Sample()
	require.NoError(t, err)
	require.True(t, samples["kvm_exit"].HasDelta)
	require.EqualValues(t, 15, samples["kvm_exit"].Delta)
}

func TestAggregator_FilterChangeClearsDeltas(t *testing.T) {
	source := newFakeSource(map[string]uint64{"kvm_exit": 10, "kvm_entry": 10})
	aggregator := stats.NewAggregator(source)
	require.NoError(t, aggregator.SetFilterPattern(""))

	_, err := aggregator.Sample()
	require.NoError(t, err)

	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.True(t, samples["kvm_exit"].HasDelta)

	// Same pattern, same absolute values: the change still clears the
	// previous-sample cache.
	require.NoError(t, aggregator.SetFilterPattern(""))
	samples, err = aggregator.Sample()
	require.NoError(t, err)
	require.False(t, samples["kvm_exit"].HasDelta)
	require.False(t, samples["kvm_entry"].HasDelta)
}

func TestAggregator_SumsAcrossSources(t *testing.T) {
	first := newFakeSource(map[string]uint64{"exits": 30, "only_first": 1})
	second := newFakeSource(map[string]uint64{"exits": 12})
	aggregator := stats.NewAggregator(first, second)
	require.NoError(t, aggregator.SetFilterPattern(""))

	samples, err := aggregator.Sample()
	require.NoError(t, err)
	require.EqualValues(t, 42, samples["exits"].Value)
	require.EqualValues(t, 1, samples["only_first"].Value)
}
