package stats

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseCPURange parses the kernel's CPU list format: comma-separated
// integers and inclusive ranges, e.g. "0-3,7" yields [0 1 2 3 7].
func ParseCPURange(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, errors.Wrap(ErrBadCPURange, "empty list")
	}

	var cpus []int
	for _, part := range strings.Split(list, ",") {
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(lo)
		if err != nil || first < 0 {
			return nil, errors.Wrap(ErrBadCPURange, part)
		}

		last := first
		if isRange {
			last, err = strconv.Atoi(hi)
			if err != nil || last < first {
				return nil, errors.Wrap(ErrBadCPURange, part)
			}
		}

		for cpu := first; cpu <= last; cpu++ {
			cpus = append(cpus, cpu)
		}
	}

	return cpus, nil
}

// OnlineCPUs reads and parses the online CPU list file.
func OnlineCPUs(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read online cpu list")
	}

	return ParseCPURange(string(data))
}
