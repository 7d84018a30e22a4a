package procfs

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/srodi/procspot/pkg/types"
)

// MemInfo holds the two meminfo counters the collector needs, in kibibytes.
type MemInfo struct {
	TotalKB uint64
	FreeKB  uint64
}

// MemInfo reads MemTotal and MemFree from the memory-info record.
func (fs FS) MemInfo() (MemInfo, error) {
	path := fs.procPath("meminfo")
	data, err := fs.read(path)
	if err != nil {
		return MemInfo{}, err
	}
	var info MemInfo
	for key, dst := range map[string]*uint64{"MemTotal": &info.TotalKB, "MemFree": &info.FreeKB} {
		v, err := ColonFields.LookupBytes(data, key)
		if err != nil {
			return MemInfo{}, fmt.Errorf("%s in %s: %w", key, path, err)
		}
		if *dst, err = ParseUint(key, v); err != nil {
			return MemInfo{}, err
		}
	}
	return info, nil
}

// Utilization returns (total-free)/total clamped to [0,1]. A zero total
// yields ErrUnavailable.
func (m MemInfo) Utilization() (float64, error) {
	if m.TotalKB == 0 {
		return 0, fmt.Errorf("MemTotal is zero: %w", ErrUnavailable)
	}
	if m.FreeKB >= m.TotalKB {
		return 0, nil
	}
	return float64(m.TotalKB-m.FreeKB) / float64(m.TotalKB), nil
}

// MemoryUtilization returns the fraction of memory in use.
func (fs FS) MemoryUtilization() (float64, error) {
	info, err := fs.MemInfo()
	if err != nil {
		return 0, err
	}
	return info.Utilization()
}

// UpTimeSeconds returns the seconds since boot with their fractional part.
func (fs FS) UpTimeSeconds() (float64, error) {
	path := fs.procPath("uptime")
	data, err := fs.read(path)
	if err != nil {
		return 0, err
	}
	// The second field is the aggregate idle time, which nothing consumes.
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, malformed(path, "empty record")
	}
	return ParseFloat("uptime", fields[0])
}

// UpTime returns the whole seconds since boot.
func (fs FS) UpTime() (uint64, error) {
	secs, err := fs.UpTimeSeconds()
	if err != nil {
		return 0, err
	}
	if secs < 0 {
		return 0, nil
	}
	return uint64(secs), nil
}

// TotalProcesses returns the number of forks since boot.
func (fs FS) TotalProcesses() (uint64, error) {
	return fs.lookupUint(SpaceFields, fs.procPath("stat"), "processes")
}

// RunningProcesses returns the number of runnable processes.
func (fs FS) RunningProcesses() (uint64, error) {
	return fs.lookupUint(SpaceFields, fs.procPath("stat"), "procs_running")
}

// BootTime returns the boot time in seconds since the epoch.
func (fs FS) BootTime() (uint64, error) {
	return fs.lookupUint(SpaceFields, fs.procPath("stat"), "btime")
}

// OperatingSystem returns PRETTY_NAME from os-release without its quotes.
func (fs FS) OperatingSystem() (string, error) {
	return fs.lookup(AssignFields, fs.etcPath("os-release"), "PRETTY_NAME")
}

// Kernel returns the release string, the third token of the version record
// after the OS name and the word "version".
func (fs FS) Kernel() (string, error) {
	path := fs.procPath("version")
	data, err := fs.read(path)
	if err != nil {
		return "", err
	}
	line, _, _ := bytes.Cut(data, []byte{'\n'})
	fields := strings.Fields(string(line))
	if len(fields) < 3 {
		return "", malformed(path, "want 3 fields, got %d", len(fields))
	}
	return fields[2], nil
}

// CPUTicks returns the aggregate counters from the "cpu" line of the stat
// record.
func (fs FS) CPUTicks() (types.CPUTickSample, error) {
	all, err := fs.cpuLines()
	if err != nil {
		return types.CPUTickSample{}, err
	}
	agg, ok := all["cpu"]
	if !ok {
		return types.CPUTickSample{}, fmt.Errorf("cpu in %s: %w", fs.procPath("stat"), ErrKeyNotFound)
	}
	return agg, nil
}

// CoreTicks returns the counters of every cpuN line, ordered by N.
func (fs FS) CoreTicks() ([]types.CPUTickSample, error) {
	all, err := fs.cpuLines()
	if err != nil {
		return nil, err
	}
	cores := make([]types.CPUTickSample, 0, len(all))
	for i := 0; ; i++ {
		s, ok := all[fmt.Sprintf("cpu%d", i)]
		if !ok {
			break
		}
		cores = append(cores, s)
	}
	return cores, nil
}

func (fs FS) cpuLines() (map[string]types.CPUTickSample, error) {
	path := fs.procPath("stat")
	data, err := fs.read(path)
	if err != nil {
		return nil, err
	}
	samples := make(map[string]types.CPUTickSample)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}
		s, err := parseCPULine(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		samples[fields[0]] = s
	}
	if err := sc.Err(); err != nil {
		return nil, missing(path, err)
	}
	return samples, nil
}

// parseCPULine reads a "cpu user nice system idle ..." line. Older kernels
// stop before steal and guest; the missing counters stay zero.
func parseCPULine(fields []string) (types.CPUTickSample, error) {
	var s types.CPUTickSample
	dst := []*uint64{
		&s.User, &s.Nice, &s.System, &s.Idle, &s.IOWait,
		&s.IRQ, &s.SoftIRQ, &s.Steal, &s.Guest, &s.GuestNice,
	}
	values := fields[1:]
	if len(values) < 4 {
		return s, fmt.Errorf("%w: %s line has %d counters", ErrMalformedRecord, fields[0], len(values))
	}
	for i, v := range values {
		if i >= len(dst) {
			break
		}
		n, err := ParseUint(fields[0], v)
		if err != nil {
			return s, err
		}
		*dst[i] = n
	}
	return s, nil
}
