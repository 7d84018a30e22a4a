package procfs

import (
	"bytes"
	"fmt"
	"strings"
)

// Field numbers in the process stat record, counted from 1 as in proc(5).
const (
	statFieldState     = 3
	statFieldPPID      = 4
	statFieldUTime     = 14
	statFieldSTime     = 15
	statFieldCUTime    = 16
	statFieldCSTime    = 17
	statFieldStartTime = 22
)

// ProcStat is the split process stat record.
type ProcStat struct {
	path   string
	fields []string
}

// Len returns the number of fields in the record.
func (s ProcStat) Len() int { return len(s.fields) }

// Field returns field n (1-based). Short records yield ErrMalformedRecord.
func (s ProcStat) Field(n int) (string, error) {
	if n < 1 || n > len(s.fields) {
		return "", malformed(s.path, "want field %d, record has %d", n, len(s.fields))
	}
	return s.fields[n-1], nil
}

func (s ProcStat) uintField(n int) (uint64, error) {
	v, err := s.Field(n)
	if err != nil {
		return 0, err
	}
	return ParseUint(fmt.Sprintf("stat field %d", n), v)
}

// Comm returns the command name without its parentheses.
func (s ProcStat) Comm() string {
	if len(s.fields) < 2 {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(s.fields[1], "("), ")")
}

// State returns the one-letter process state.
func (s ProcStat) State() string {
	v, _ := s.Field(statFieldState)
	return v
}

// PPID returns the parent pid.
func (s ProcStat) PPID() (int, error) {
	v, err := s.Field(statFieldPPID)
	if err != nil {
		return 0, err
	}
	n, err := ParseInt("ppid", v)
	return int(n), err
}

// StartTime returns the start time in clock ticks since boot.
func (s ProcStat) StartTime() (uint64, error) {
	return s.uintField(statFieldStartTime)
}

// Ticks returns utime+stime, plus cutime+cstime when children is set.
func (s ProcStat) Ticks(children bool) (uint64, error) {
	fields := []int{statFieldUTime, statFieldSTime}
	if children {
		fields = append(fields, statFieldCUTime, statFieldCSTime)
	}
	var total uint64
	for _, n := range fields {
		v, err := s.uintField(n)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// parseProcStat splits a stat line. The comm field may hold spaces, so the
// fields after the last ')' are counted from field 3.
func parseProcStat(path string, data []byte) ProcStat {
	line, _, _ := bytes.Cut(data, []byte{'\n'})
	text := string(line)
	open := strings.IndexByte(text, '(')
	end := strings.LastIndexByte(text, ')')
	if open < 0 || end < open {
		return ProcStat{path: path, fields: strings.Fields(text)}
	}
	fields := strings.Fields(text[:open])
	if len(fields) > 1 {
		fields = fields[:1]
	}
	fields = append(fields, text[open:end+1])
	fields = append(fields, strings.Fields(text[end+1:])...)
	return ProcStat{path: path, fields: fields}
}

// Stat reads the process stat record.
func (fs FS) Stat(pid int) (ProcStat, error) {
	path := fs.pidPath(pid, "stat")
	data, err := fs.read(path)
	if err != nil {
		return ProcStat{}, err
	}
	return parseProcStat(path, data), nil
}

// Command returns the first line of the command-line record verbatim. A
// process that has exited yields an empty string.
func (fs FS) Command(pid int) string {
	data, err := readFile(fs.pidPath(pid, "cmdline"))
	if err != nil {
		return ""
	}
	line, _, _ := bytes.Cut(data, []byte{'\n'})
	return string(line)
}

// Ram returns VmSize in mebibytes.
func (fs FS) Ram(pid int) (float64, error) {
	kb, err := fs.lookupUint(ColonFields, fs.pidPath(pid, "status"), "VmSize")
	if err != nil {
		return 0, err
	}
	return float64(kb) / 1024, nil
}

// Uid returns the real user id from the status record, unresolved.
func (fs FS) Uid(pid int) (string, error) {
	return fs.lookup(ColonFields, fs.pidPath(pid, "status"), "Uid")
}

// User resolves the owner of pid against the identity table. No matching
// entry yields an empty name and a nil error.
func (fs FS) User(pid int) (string, error) {
	uid, err := fs.Uid(pid)
	if err != nil {
		return "", err
	}
	return fs.LookupUser(uid)
}

// StartTime returns the process start time in clock ticks since boot.
func (fs FS) StartTime(pid int) (uint64, error) {
	st, err := fs.Stat(pid)
	if err != nil {
		return 0, err
	}
	return st.StartTime()
}

// ProcessUpTime returns how many seconds pid has been running.
func (fs FS) ProcessUpTime(pid int, clockTicks uint64) (uint64, error) {
	start, err := fs.StartTime(pid)
	if err != nil {
		return 0, err
	}
	uptime, err := fs.UpTime()
	if err != nil {
		return 0, err
	}
	return Age(uptime, start, clockTicks), nil
}

// Age converts a start time in ticks into seconds elapsed at uptime. A
// process that started after the uptime sample reports zero.
func Age(uptimeSeconds, startTicks, clockTicks uint64) uint64 {
	if clockTicks == 0 {
		clockTicks = userHZ
	}
	started := startTicks / clockTicks
	if started >= uptimeSeconds {
		return 0
	}
	return uptimeSeconds - started
}
