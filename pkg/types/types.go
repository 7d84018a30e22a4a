package types

// DefaultTopK controls how many top processes we display per resource category.
const DefaultTopK = 10

// CPUTickSample holds the cumulative clock-tick counters of one cpu line in the
// system stat record. Every counter only grows while the machine is up.
type CPUTickSample struct {
	User      uint64
	Nice      uint64
	System    uint64
	Idle      uint64
	IOWait    uint64
	IRQ       uint64
	SoftIRQ   uint64
	Steal     uint64
	Guest     uint64
	GuestNice uint64
}

// IdleTicks is idle + iowait.
func (s CPUTickSample) IdleTicks() uint64 {
	return s.Idle + s.IOWait
}

// TotalTicks sums all ten counters.
func (s CPUTickSample) TotalTicks() uint64 {
	return s.User + s.Nice + s.System + s.Idle + s.IOWait + s.IRQ +
		s.SoftIRQ + s.Steal + s.Guest + s.GuestNice
}

// SystemSnapshot holds the machine-wide facts of one collection cycle.
// Ratios are nil when they could not be computed this cycle.
type SystemSnapshot struct {
	MemTotalKB        uint64
	MemFreeKB         uint64
	MemoryUtilization *float64
	UptimeSeconds     uint64
	BootTime          uint64
	TotalProcesses    uint64
	RunningProcesses  uint64
	KernelVersion     string
	OSPrettyName      string
	CPUTicks          CPUTickSample
	NumCPU            int
	CPUUtilization    *float64
	CoreUtilization   []*float64
}

// ProcessSnapshot holds the facts of one process. Fields that could not be
// read keep their zero value and are named in Degraded. ResidentMemoryMB
// follows VmSize; ResidentSetMB is the resident set size from statm.
type ProcessSnapshot struct {
	PID              int
	Name             string
	State            string
	PPID             int
	Command          string
	ResidentMemoryMB float64
	ResidentSetMB    float64
	UID              string
	User             string
	StartTimeTicks   uint64
	AgeSeconds       uint64
	CPUUtilization   *float64
	Degraded         []string
}

// Snapshot is everything one collection cycle produced.
type Snapshot struct {
	System    SystemSnapshot
	Processes []ProcessSnapshot
	// Degraded lists system-wide facts that were unavailable this cycle.
	Degraded []string
}
