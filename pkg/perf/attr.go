package perf

const (
	// PERF_TYPE_TRACEPOINT.
	typeTracepoint = 2

	// PERF_FORMAT_GROUP: one read on the leader returns every member.
	formatGroup = 1 << 3
)

// eventAttr is the perf_event_attr structure handed to the counter
// creation syscall. Field order and sizes are kernel ABI; only the
// leading fields are needed for counting-mode tracepoint events, the
// kernel zero-fills the rest based on Size.
type eventAttr struct {
	Type         uint32
	Size         uint32
	Config       uint64
	SampleFreq   uint64
	SampleType   uint64
	ReadFormat   uint64
	Flags        uint64
	WakeupEvents uint32
	BPType       uint32
	BPAddr       uint64
	BPLen        uint64
}
