package procfs

import (
	"fmt"
	"strconv"
)

// Pids lists the digit-named directories directly under the proc root.
// Entries that vanish or cannot be inspected mid-scan are skipped.
func (fs FS) Pids() ([]int, error) {
	entries, err := readDir(fs.proc)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", fs.proc, err)
	}
	pids := make([]int, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !isDigits(name) {
			continue
		}
		if !entry.IsDir() {
			info, err := entry.Info()
			if err != nil || !info.IsDir() {
				continue
			}
		}
		pid, err := strconv.Atoi(name)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
