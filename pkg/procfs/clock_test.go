package procfs

import (
	"errors"
	"testing"

	"github.com/tklauser/go-sysconf"
)

func TestClockTicks(t *testing.T) {
	t.Cleanup(func() {
		sysconfClockTicks = func() (int64, error) { return sysconf.Sysconf(sysconf.SC_CLK_TCK) }
	})

	sysconfClockTicks = func() (int64, error) { return 250, nil }
	if got := ClockTicks(); got != 250 {
		t.Fatalf("expected 250, got %d", got)
	}

	sysconfClockTicks = func() (int64, error) { return 0, errors.New("unsupported") }
	if got := ClockTicks(); got != userHZ {
		t.Fatalf("expected fallback %d, got %d", userHZ, got)
	}
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS("/nonexistent/proc/root", ""); err == nil {
		t.Fatalf("expected error for missing root")
	}
	procFS, procRoot, _ := newFixtureFS(t)
	if procFS.ProcRoot() != procRoot {
		t.Fatalf("unexpected root %s", procFS.ProcRoot())
	}
}
