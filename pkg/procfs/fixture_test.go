package procfs

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFixture creates root/rel with content, making parent directories.
func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newFixtureFS returns an FS over empty proc and etc trees in a temp dir.
func newFixtureFS(t *testing.T) (FS, string, string) {
	t.Helper()
	base := t.TempDir()
	procRoot := filepath.Join(base, "proc")
	etcRoot := filepath.Join(base, "etc")
	for _, dir := range []string{procRoot, etcRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	procFS, err := NewFS(procRoot, etcRoot)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return procFS, procRoot, etcRoot
}
