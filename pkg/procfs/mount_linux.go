//go:build linux
// +build linux

package procfs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// VerifyMount reports whether the proc root is backed by a real procfs
// mount rather than a plain directory tree.
func (fs FS) VerifyMount() (bool, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(fs.proc, &st); err != nil {
		return false, fmt.Errorf("statfs %s: %w", fs.proc, err)
	}
	return st.Type == unix.PROC_SUPER_MAGIC, nil
}
