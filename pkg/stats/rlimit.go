package stats

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// fdBudgetMargin covers descriptors the process needs beyond the
// counters themselves (tracing metadata files, stdio, the debugfs
// backend).
const fdBudgetMargin = 50

// FDBudget is the number of open descriptors the tracepoint backend
// needs for the given topology: one counter per field per hardware
// thread, plus a fixed margin.
func FDBudget(threads, fields int) uint64 {
	return uint64(threads)*uint64(fields) + fdBudgetMargin
}

// raiseFDLimit lifts the soft RLIMIT_NOFILE to at least needed, raising
// the hard limit as well when the process is privileged enough. It
// returns a typed error when the budget is unreachable so the caller
// can decide what to do.
func raiseFDLimit(needed uint64) error {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return errors.Wrap(err, "failed to query file descriptor limit")
	}

	if limit.Cur >= needed {
		return nil
	}

	raised := limit
	raised.Cur = needed
	if raised.Max < needed {
		raised.Max = needed
	}

	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &raised); err == nil {
		return nil
	}

	// Raising the hard limit needs CAP_SYS_RESOURCE. Retry within the
	// existing hard limit before giving up.
	if limit.Max >= needed {
		raised.Max = limit.Max
		if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &raised); err == nil {
			return nil
		}
	}

	return errors.Wrapf(ErrFDLimit, "need %d descriptors, hard limit is %d", needed, limit.Max)
}
