package stats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvmwatch/kvmwatch/pkg/stats"
)

func writeTracingTree(t *testing.T, tracepoints ...string) string {
	t.Helper()
	root := t.TempDir()
	for i, name := range tracepoints {
		dir := filepath.Join(root, "events", "kvm", name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "id"), []byte{byte('0' + i), '\n'}, 0o644))
	}

	return root
}

func TestFDBudget(t *testing.T) {
	require.EqualValues(t, 90, stats.FDBudget(4, 10))
	require.EqualValues(t, 50, stats.FDBudget(0, 0))
}

func TestTracepointsAvailable(t *testing.T) {
	root := writeTracingTree(t, "kvm_exit")
	require.True(t, stats.TracepointsAvailable(root))
	require.False(t, stats.TracepointsAvailable(t.TempDir()))
}

func TestTracepointSource_DiscoverFields(t *testing.T) {
	root := writeTracingTree(t, "kvm_exit", "kvm_entry", "kvm_inj_virq")

	source := stats.NewTracepointSource(
		stats.WithProfile(testProfile()),
		stats.WithTracingRoot(root),
	)

	fields, err := source.DiscoverFields()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"kvm_exit",
		"kvm_exit(HLT)",
		"kvm_exit(MSR_READ)",
		"kvm_entry",
		"kvm_inj_virq",
	}, fields.ToSlice())
}

func TestTracepointSource_DiscoverFieldsMissingTree(t *testing.T) {
	source := stats.NewTracepointSource(
		stats.WithProfile(testProfile()),
		stats.WithTracingRoot(t.TempDir()),
	)

	_, err := source.DiscoverFields()
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTracepointSource_RequiresProfile(t *testing.T) {
	source := stats.NewTracepointSource(
		stats.WithTracingRoot(t.TempDir()),
	)

	err := source.Init()
	require.Error(t, err)
	require.ErrorIs(t, err, stats.ErrNoProfile)
}
