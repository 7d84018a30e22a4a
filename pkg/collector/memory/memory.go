// Package memory reads resident set sizes and converts the kernel's memory
// units.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/srodi/procspot/pkg/procfs"
)

// procReadFile allows tests to stub reading /proc/PID/statm.
var procReadFile = os.ReadFile

// pageSize allows tests to pin the page size statm counts in.
var pageSize = unix.Getpagesize

// Sampler reads per-process resident set sizes under one proc root.
type Sampler struct {
	procRoot string
}

// NewSampler returns a Sampler for procRoot, /proc when empty.
func NewSampler(procRoot string) *Sampler {
	if procRoot == "" {
		procRoot = procfs.DefaultProcRoot
	}
	return &Sampler{procRoot: procRoot}
}

// RSSBytes returns the resident set size for a single PID.
func (s *Sampler) RSSBytes(pid int) (uint64, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("invalid pid %d", pid)
	}
	statmPath := filepath.Join(s.procRoot, strconv.Itoa(pid), "statm")
	data, err := procReadFile(statmPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", procfs.ErrMissingRecord, statmPath, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: %s: %d fields, need 2", procfs.ErrMalformedRecord, statmPath, len(fields))
	}
	rssPages, err := procfs.ParseUint("resident", fields[1])
	if err != nil {
		return 0, err
	}
	return rssPages * uint64(pageSize()), nil
}

// KiBToMiB converts the kibibyte counts of meminfo and status records.
func KiBToMiB(kb uint64) float64 {
	return float64(kb) / 1024
}

// BytesToMiB converts a byte count to mebibytes.
func BytesToMiB(b uint64) float64 {
	return float64(b) / (1024 * 1024)
}
