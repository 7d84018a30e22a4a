package procfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultProcRoot = "/proc"
	DefaultEtcRoot  = "/etc"
)

// readFile and readDir allow tests to stub filesystem access.
var (
	readFile = os.ReadFile
	readDir  = os.ReadDir
)

// FS is a handle on one pseudo-filesystem root plus the identity and
// os-release records under an etc root.
type FS struct {
	proc string
	etc  string
}

// NewFS checks that procRoot is a directory and returns a handle on it.
// Empty roots fall back to the defaults.
func NewFS(procRoot, etcRoot string) (FS, error) {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	if etcRoot == "" {
		etcRoot = DefaultEtcRoot
	}
	info, err := os.Stat(procRoot)
	if err != nil {
		return FS{}, fmt.Errorf("opening proc root: %w", err)
	}
	if !info.IsDir() {
		return FS{}, fmt.Errorf("proc root %s is not a directory", procRoot)
	}
	return FS{proc: procRoot, etc: etcRoot}, nil
}

// ProcRoot returns the pseudo-filesystem root.
func (fs FS) ProcRoot() string { return fs.proc }

func (fs FS) procPath(elem ...string) string {
	return filepath.Join(append([]string{fs.proc}, elem...)...)
}

func (fs FS) pidPath(pid int, name string) string {
	return fs.procPath(strconv.Itoa(pid), name)
}

func (fs FS) etcPath(name string) string {
	return filepath.Join(fs.etc, name)
}

func (fs FS) read(path string) ([]byte, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, missing(path, err)
	}
	return data, nil
}

func (fs FS) lookup(sc Scanner, path, key string) (string, error) {
	data, err := fs.read(path)
	if err != nil {
		return "", err
	}
	v, err := sc.LookupBytes(data, key)
	if err != nil {
		return "", fmt.Errorf("%s in %s: %w", key, path, err)
	}
	return v, nil
}

func (fs FS) lookupUint(sc Scanner, path, key string) (uint64, error) {
	v, err := fs.lookup(sc, path, key)
	if err != nil {
		return 0, err
	}
	return ParseUint(key, v)
}
