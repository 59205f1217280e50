package perf

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func groupReadBuffer(counts ...uint64) []byte {
	buf := make([]byte, 8*(1+len(counts)))
	binary.NativeEndian.PutUint64(buf, uint64(len(counts)))
	for i, c := range counts {
		binary.NativeEndian.PutUint64(buf[8*(i+1):], c)
	}

	return buf
}

func TestDecodeGroupCounts(t *testing.T) {
	counts, err := decodeGroupCounts(groupReadBuffer(42, 0, 7), 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{42, 0, 7}, counts)
}

func TestDecodeGroupCounts_SizeMismatch(t *testing.T) {
	buf := groupReadBuffer(42, 7)

	_, err := decodeGroupCounts(buf, 3)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrGroupReadSize)

	_, err = decodeGroupCounts(buf[:len(buf)-1], 2)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrGroupReadSize)
}

func TestEventAttrLayout(t *testing.T) {
	var attr eventAttr

	// Fixed ABI layout: u32 u32 u64 u64 u64 u64 u64 u32 u32 u64 u64.
	require.EqualValues(t, 72, unsafe.Sizeof(attr))
	require.EqualValues(t, 8, unsafe.Offsetof(attr.Config))
	require.EqualValues(t, 32, unsafe.Offsetof(attr.ReadFormat))
	require.EqualValues(t, 48, unsafe.Offsetof(attr.WakeupEvents))
}

func TestTracepointConfig(t *testing.T) {
	eventsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(eventsDir, "kvm_exit"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eventsDir, "kvm_exit", "id"), []byte("2304\n"), 0o644))

	config, err := TracepointConfig(eventsDir, "kvm_exit")
	require.NoError(t, err)
	require.EqualValues(t, 2304, config)

	_, err = TracepointConfig(eventsDir, "kvm_entry")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.MkdirAll(filepath.Join(eventsDir, "kvm_bad"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eventsDir, "kvm_bad", "id"), []byte("zap\n"), 0o644))
	_, err = TracepointConfig(eventsDir, "kvm_bad")
	require.Error(t, err)
}

func TestDisableLeaderRejected(t *testing.T) {
	event := &Event{name: "kvm_exit", leader: true}

	err := event.Disable()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDisableLeader)
}
