// Package arch resolves the host-specific pieces of the perf counter
// ABI: the perf_event_open syscall number, the four counter ioctl
// request codes, and the tables translating numeric VM exit reasons to
// symbolic names.
package arch

import (
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// ReasonTable maps symbolic exit-reason names to the numeric codes a
// tracepoint reports in one of its attribute fields.
type ReasonTable struct {
	// Field is the tracepoint attribute the codes apply to, e.g.
	// "exit_reason" on x86 or "esr_ec" on arm64.
	Field string

	Reasons map[string]uint64
}

// IoctlCodes holds the request codes for the four counter ioctls. The
// values depend on the architecture's ioctl encoding.
type IoctlCodes struct {
	Enable    uint
	Disable   uint
	Reset     uint
	SetFilter uint
}

// Profile is the resolved counter ABI for the host. It is built once at
// startup and never mutated afterwards.
type Profile struct {
	// SyscallNumber is the perf_event_open syscall number.
	SyscallNumber uintptr

	Ioctl IoctlCodes

	// ReasonTables is keyed by tracepoint name. Tracepoints without an
	// entry have no sub-reason fields.
	ReasonTables map[string]ReasonTable
}

// Ioctl request codes shared by every supported architecture except
// ppc64, whose SET_FILTER encoding differs (see resolvePPC64).
const (
	ioctlEnable    = 0x2400
	ioctlDisable   = 0x2401
	ioctlReset     = 0x2403
	ioctlSetFilter = 0x40082406
)

const defaultCPUInfoPath = "/proc/cpuinfo"

// Resolve builds the Profile for the running host. It fails when the
// architecture is not supported.
func Resolve() (*Profile, error) {
	return resolve(runtime.GOARCH, defaultCPUInfoPath)
}

func resolve(goarch, cpuInfoPath string) (*Profile, error) {
	switch goarch {
	case "amd64":
		return resolveX86(cpuInfoPath)
	case "arm64":
		return &Profile{
			SyscallNumber: 241,
			Ioctl:         defaultIoctlCodes(),
			ReasonTables: map[string]ReasonTable{
				"kvm_exit": {Field: "esr_ec", Reasons: aarch64ExitReasons},
			},
		}, nil
	case "ppc64", "ppc64le":
		return resolvePPC64(), nil
	case "s390x":
		return &Profile{
			SyscallNumber: 331,
			Ioctl:         defaultIoctlCodes(),
		}, nil
	}

	return nil, errors.Wrap(ErrUnsupportedArch, goarch)
}

// resolveX86 picks between the Intel and AMD exit-reason tables by
// probing the CPU feature flags. The two virtualization extensions are
// mutually exclusive; a host advertising neither cannot run KVM guests.
func resolveX86(cpuInfoPath string) (*Profile, error) {
	flags, err := cpuFlags(cpuInfoPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe cpu flags")
	}

	var exitReasons map[string]uint64
	switch {
	case flags["vmx"]:
		exitReasons = vmxExitReasons
	case flags["svm"]:
		exitReasons = svmExitReasons
	default:
		return nil, ErrNoVirtExtension
	}

	return &Profile{
		SyscallNumber: 298,
		Ioctl:         defaultIoctlCodes(),
		ReasonTables: map[string]ReasonTable{
			"kvm_exit":           {Field: "exit_reason", Reasons: exitReasons},
			"kvm_userspace_exit": {Field: "reason", Reasons: userspaceExitReasons},
		},
	}, nil
}

// resolvePPC64 returns the ppc64 profile. The powerpc ioctl encoding
// sets the direction bits differently and folds the argument size into
// the request code, so SET_FILTER carries the pointer width.
func resolvePPC64() *Profile {
	codes := defaultIoctlCodes()
	codes.SetFilter = 0x80002406 | (8 << 16)

	return &Profile{
		SyscallNumber: 319,
		Ioctl:         codes,
		ReasonTables: map[string]ReasonTable{
			"kvm_exit": {Field: "exit_nr", Reasons: map[string]uint64{}},
		},
	}
}

func defaultIoctlCodes() IoctlCodes {
	return IoctlCodes{
		Enable:    ioctlEnable,
		Disable:   ioctlDisable,
		Reset:     ioctlReset,
		SetFilter: ioctlSetFilter,
	}
}

// cpuFlags parses the "flags" line of the first processor entry in
// /proc/cpuinfo into a set.
func cpuFlags(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "flags" {
			continue
		}
		for _, flag := range strings.Fields(value) {
			flags[flag] = true
		}

		return flags, nil
	}

	return flags, nil
}
