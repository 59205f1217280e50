package arch

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCPUInfo(t *testing.T, flags string) string {
	t.Helper()
	p := path.Join(t.TempDir(), "cpuinfo")
	content := "processor\t: 0\nvendor_id\t: GenuineTest\nflags\t\t: " + flags + "\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	return p
}

func TestResolve_UnsupportedArch(t *testing.T) {
	_, err := resolve("riscv64", defaultCPUInfoPath)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnsupportedArch)
}

func TestResolve_X86Intel(t *testing.T) {
	profile, err := resolve("amd64", writeCPUInfo(t, "fpu vme msr vmx sse2"))
	require.NoError(t, err)
	require.EqualValues(t, 298, profile.SyscallNumber)

	table, ok := profile.ReasonTables["kvm_exit"]
	require.True(t, ok)
	require.Equal(t, "exit_reason", table.Field)
	require.EqualValues(t, 12, table.Reasons["HLT"])
	require.EqualValues(t, 48, table.Reasons["EPT_VIOLATION"])
}

func TestResolve_X86AMD(t *testing.T) {
	profile, err := resolve("amd64", writeCPUInfo(t, "fpu vme msr svm sse2"))
	require.NoError(t, err)

	table := profile.ReasonTables["kvm_exit"]
	require.Equal(t, "exit_reason", table.Field)
	require.EqualValues(t, 0x078, table.Reasons["HLT"])
	require.EqualValues(t, 0x400, table.Reasons["NPF"])
}

func TestResolve_X86NoVirtExtension(t *testing.T) {
	_, err := resolve("amd64", writeCPUInfo(t, "fpu vme msr sse2"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNoVirtExtension)
}

func TestResolve_ARM64(t *testing.T) {
	profile, err := resolve("arm64", defaultCPUInfoPath)
	require.NoError(t, err)
	require.EqualValues(t, 241, profile.SyscallNumber)
	require.Equal(t, "esr_ec", profile.ReasonTables["kvm_exit"].Field)
	require.EqualValues(t, 0x01, profile.ReasonTables["kvm_exit"].Reasons["WFI"])
}

func TestResolve_S390(t *testing.T) {
	profile, err := resolve("s390x", defaultCPUInfoPath)
	require.NoError(t, err)
	require.EqualValues(t, 331, profile.SyscallNumber)
	require.Empty(t, profile.ReasonTables)
}

func TestResolve_PPC64SetFilterEncodesPointerWidth(t *testing.T) {
	profile, err := resolve("ppc64le", defaultCPUInfoPath)
	require.NoError(t, err)
	require.EqualValues(t, 319, profile.SyscallNumber)
	require.EqualValues(t, 0x80002406|uint(8<<16), profile.Ioctl.SetFilter)
}

// Every profile must expose all four ioctl request codes and a positive
// syscall number.
func TestResolve_IoctlCodesComplete(t *testing.T) {
	for _, goarch := range []string{"arm64", "ppc64", "ppc64le", "s390x"} {
		profile, err := resolve(goarch, defaultCPUInfoPath)
		require.NoError(t, err, goarch)
		require.NotZero(t, profile.SyscallNumber, goarch)
		require.NotZero(t, profile.Ioctl.Enable, goarch)
		require.NotZero(t, profile.Ioctl.Disable, goarch)
		require.NotZero(t, profile.Ioctl.Reset, goarch)
		require.NotZero(t, profile.Ioctl.SetFilter, goarch)
	}
}

func TestCPUFlags(t *testing.T) {
	flags, err := cpuFlags(writeCPUInfo(t, "fpu vmx svm"))
	require.NoError(t, err)
	require.True(t, flags["vmx"])
	require.True(t, flags["svm"])
	require.False(t, flags["sse2"])

	_, err = cpuFlags(path.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
