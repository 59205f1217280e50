package arch

// Exit-reason tables, from the kernel uapi headers. The numeric codes
// are ABI and never change for a given architecture.

// vmxExitReasons: arch/x86/include/uapi/asm/vmx.h (Intel VT-x).
var vmxExitReasons = map[string]uint64{
	"EXCEPTION_NMI":       0,
	"EXTERNAL_INTERRUPT":  1,
	"TRIPLE_FAULT":        2,
	"INIT_SIGNAL":         3,
	"SIPI_SIGNAL":         4,
	"PENDING_INTERRUPT":   7,
	"NMI_WINDOW":          8,
	"TASK_SWITCH":         9,
	"CPUID":               10,
	"HLT":                 12,
	"INVD":                13,
	"INVLPG":              14,
	"RDPMC":               15,
	"RDTSC":               16,
	"VMCALL":              18,
	"VMCLEAR":             19,
	"VMLAUNCH":            20,
	"VMPTRLD":             21,
	"VMPTRST":             22,
	"VMREAD":              23,
	"VMRESUME":            24,
	"VMWRITE":             25,
	"VMOFF":               26,
	"VMON":                27,
	"CR_ACCESS":           28,
	"DR_ACCESS":           29,
	"IO_INSTRUCTION":      30,
	"MSR_READ":            31,
	"MSR_WRITE":           32,
	"INVALID_STATE":       33,
	"MSR_LOAD_FAIL":       34,
	"MWAIT_INSTRUCTION":   36,
	"MONITOR_TRAP_FLAG":   37,
	"MONITOR_INSTRUCTION": 39,
	"PAUSE_INSTRUCTION":   40,
	"MCE_DURING_VMENTRY":  41,
	"TPR_BELOW_THRESHOLD": 43,
	"APIC_ACCESS":         44,
	"EOI_INDUCED":         45,
	"GDTR_IDTR":           46,
	"LDTR_TR":             47,
	"EPT_VIOLATION":       48,
	"EPT_MISCONFIG":       49,
	"INVEPT":              50,
	"RDTSCP":              51,
	"PREEMPTION_TIMER":    52,
	"INVVPID":             53,
	"WBINVD":              54,
	"XSETBV":              55,
	"APIC_WRITE":          56,
	"RDRAND":              57,
	"INVPCID":             58,
	"VMFUNC":              59,
	"ENCLS":               60,
	"RDSEED":              61,
	"PML_FULL":            62,
	"XSAVES":              63,
	"XRSTORS":             64,
}

// svmExitReasons: arch/x86/include/uapi/asm/svm.h (AMD-V).
var svmExitReasons = map[string]uint64{
	"READ_CR0":      0x000,
	"READ_CR3":      0x003,
	"READ_CR4":      0x004,
	"READ_CR8":      0x008,
	"WRITE_CR0":     0x010,
	"WRITE_CR3":     0x013,
	"WRITE_CR4":     0x014,
	"WRITE_CR8":     0x018,
	"READ_DR0":      0x020,
	"READ_DR1":      0x021,
	"READ_DR2":      0x022,
	"READ_DR3":      0x023,
	"READ_DR4":      0x024,
	"READ_DR5":      0x025,
	"READ_DR6":      0x026,
	"READ_DR7":      0x027,
	"WRITE_DR0":     0x030,
	"WRITE_DR1":     0x031,
	"WRITE_DR2":     0x032,
	"WRITE_DR3":     0x033,
	"WRITE_DR4":     0x034,
	"WRITE_DR5":     0x035,
	"WRITE_DR6":     0x036,
	"WRITE_DR7":     0x037,
	"EXCP_DE":       0x040,
	"EXCP_DB":       0x041,
	"EXCP_BP":       0x043,
	"EXCP_OF":       0x044,
	"EXCP_BR":       0x045,
	"EXCP_UD":       0x046,
	"EXCP_NM":       0x047,
	"EXCP_DF":       0x048,
	"EXCP_TS":       0x04a,
	"EXCP_NP":       0x04b,
	"EXCP_SS":       0x04c,
	"EXCP_GP":       0x04d,
	"EXCP_PF":       0x04e,
	"EXCP_MF":       0x050,
	"EXCP_AC":       0x051,
	"EXCP_MC":       0x052,
	"EXCP_XF":       0x053,
	"INTR":          0x060,
	"NMI":           0x061,
	"SMI":           0x062,
	"INIT":          0x063,
	"VINTR":         0x064,
	"CR0_SEL_WRITE": 0x065,
	"IDTR_READ":     0x066,
	"GDTR_READ":     0x067,
	"LDTR_READ":     0x068,
	"TR_READ":       0x069,
	"IDTR_WRITE":    0x06a,
	"GDTR_WRITE":    0x06b,
	"LDTR_WRITE":    0x06c,
	"TR_WRITE":      0x06d,
	"RDTSC":         0x06e,
	"RDPMC":         0x06f,
	"PUSHF":         0x070,
	"POPF":          0x071,
	"CPUID":         0x072,
	"RSM":           0x073,
	"IRET":          0x074,
	"SWINT":         0x075,
	"INVD":          0x076,
	"PAUSE":         0x077,
	"HLT":           0x078,
	"INVLPG":        0x079,
	"INVLPGA":       0x07a,
	"IOIO":          0x07b,
	"MSR":           0x07c,
	"TASK_SWITCH":   0x07d,
	"FERR_FREEZE":   0x07e,
	"SHUTDOWN":      0x07f,
	"VMRUN":         0x080,
	"VMMCALL":       0x081,
	"VMLOAD":        0x082,
	"VMSAVE":        0x083,
	"STGI":          0x084,
	"CLGI":          0x085,
	"SKINIT":        0x086,
	"RDTSCP":        0x087,
	"ICEBP":         0x088,
	"WBINVD":        0x089,
	"MONITOR":       0x08a,
	"MWAIT":         0x08b,
	"MWAIT_COND":    0x08c,
	"XSETBV":        0x08d,
	"NPF":           0x400,
}

// aarch64ExitReasons: exception classes from the ESR_EL2 register,
// arch/arm64/include/asm/esr.h.
var aarch64ExitReasons = map[string]uint64{
	"UNKNOWN":     0x00,
	"WFI":         0x01,
	"CP15_32":     0x03,
	"CP15_64":     0x04,
	"CP14_MR":     0x05,
	"CP14_LS":     0x06,
	"FP_ASIMD":    0x07,
	"CP10_ID":     0x08,
	"CP14_64":     0x0c,
	"ILL_ISS":     0x0e,
	"SVC32":       0x11,
	"HVC32":       0x12,
	"SMC32":       0x13,
	"SVC64":       0x15,
	"HVC64":       0x16,
	"SMC64":       0x17,
	"SYS64":       0x18,
	"IABT":        0x20,
	"IABT_HYP":    0x21,
	"PC_ALIGN":    0x22,
	"DABT":        0x24,
	"DABT_HYP":    0x25,
	"SP_ALIGN":    0x26,
	"FP_EXC32":    0x28,
	"FP_EXC64":    0x2c,
	"SERROR":      0x2f,
	"BREAKPT":     0x30,
	"BREAKPT_HYP": 0x31,
	"SOFTSTP":     0x32,
	"SOFTSTP_HYP": 0x33,
	"WATCHPT":     0x34,
	"WATCHPT_HYP": 0x35,
	"BKPT32":      0x38,
	"VECTOR32":    0x3a,
	"BRK64":       0x3c,
}

// userspaceExitReasons: KVM_EXIT_* codes from include/uapi/linux/kvm.h,
// reported when a guest exit has to be completed in userspace.
var userspaceExitReasons = map[string]uint64{
	"UNKNOWN":         0,
	"EXCEPTION":       1,
	"IO":              2,
	"HYPERCALL":       3,
	"DEBUG":           4,
	"HLT":             5,
	"MMIO":            6,
	"IRQ_WINDOW_OPEN": 7,
	"SHUTDOWN":        8,
	"FAIL_ENTRY":      9,
	"INTR":            10,
	"SET_TPR":         11,
	"TPR_ACCESS":      12,
	"S390_SIEIC":      13,
	"S390_RESET":      14,
	"DCR":             15,
	"NMI":             16,
	"INTERNAL_ERROR":  17,
	"OSI":             18,
	"PAPR_HCALL":      19,
	"S390_UCONTROL":   20,
	"WATCHDOG":        21,
	"S390_TSCH":       22,
	"EPR":             23,
	"SYSTEM_EVENT":    24,
	"S390_STSI":       25,
	"IOAPIC_EOI":      26,
	"HYPERV":          27,
}
