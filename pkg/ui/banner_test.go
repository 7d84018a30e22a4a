package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/srodi/procspot/pkg/types"
)

// TestBannerPreview prints the banner so `go test ./pkg/ui -run TestBannerPreview` shows it.
func TestBannerPreview(t *testing.T) {
	fmt.Println(Banner())
}

func TestBannerIncludesWordmark(t *testing.T) {
	banner := Banner()
	if !strings.Contains(banner, "procspot") {
		t.Fatalf("banner missing procspot wordmark: %q", banner)
	}
	if !strings.Contains(banner, "procfs telemetry lens") {
		t.Fatalf("banner missing tagline")
	}
	lines := strings.Split(strings.TrimSpace(banner), "\n")
	if len(lines) < 8 {
		t.Fatalf("expected multi-line banner, got %d lines", len(lines))
	}
}

func TestBannerUsesGradientColors(t *testing.T) {
	banner := Banner()
	colors := []string{bold, spotFlame, honeyOrange, beeYellow, mint, seafoam, cobalt, deepIndigo, fuchsia}
	for _, color := range colors {
		if !strings.Contains(banner, color) {
			t.Fatalf("banner missing color code %q", color)
		}
	}
}

func TestHeader(t *testing.T) {
	cpu, mem := 0.25, 0.5
	header := Header(types.SystemSnapshot{
		OSPrettyName:      "Test Linux 1.0",
		KernelVersion:     "6.1.0",
		UptimeSeconds:     3725,
		NumCPU:            4,
		CPUUtilization:    &cpu,
		MemoryUtilization: &mem,
		MemTotalKB:        2048 * 1024,
		RunningProcesses:  3,
		TotalProcesses:    900,
	})
	for _, want := range []string{"Test Linux 1.0", "kernel 6.1.0", "up 01:02:05", "cpus 4", "cpu 25.0%", "mem 50.0% (2048 MB total)", "3 running / 900 forked"} {
		if !strings.Contains(header, want) {
			t.Fatalf("header %q missing %q", header, want)
		}
	}
}

func TestHeaderUnavailableFacts(t *testing.T) {
	header := Header(types.SystemSnapshot{})
	if !strings.Contains(header, "unknown OS") || !strings.Contains(header, "kernel n/a") {
		t.Fatalf("missing placeholders: %q", header)
	}
	if strings.Count(header, "n/a") != 3 {
		t.Fatalf("expected cpu, mem and kernel as n/a: %q", header)
	}
}

func TestDim(t *testing.T) {
	if got := Dim("x"); got != dim+"x"+reset {
		t.Fatalf("unexpected dim output %q", got)
	}
}
