package ui

import (
	"fmt"
	"strings"

	"github.com/srodi/procspot/pkg/report"
	"github.com/srodi/procspot/pkg/types"
)

const (
	reset       = "\033[0m"
	bold        = "\033[1m"
	dim         = "\033[2m"
	beeYellow   = "\033[38;5;226m"
	honeyOrange = "\033[38;5;214m"
	mint        = "\033[38;5;121m"
	seafoam     = "\033[38;5;49m"
	cobalt      = "\033[38;5;33m"
	deepIndigo  = "\033[38;5;61m"
	fuchsia     = "\033[38;5;177m"
	spotFlame   = "\033[38;5;208m"
)

// Banner renders a colored procspot wordmark.
func Banner() string {
	var b strings.Builder

	letters := [][]string{
		{"██████╗  ", "██╔══██╗ ", "██████╔╝ ", "██╔═══╝  ", "██║      ", "╚═╝      "},
		{"██████╗  ", "██╔══██╗ ", "██████╔╝ ", "██╔══██╗ ", "██║  ██║ ", "╚═╝  ╚═╝ "},
		{" ██████╗ ", "██╔═████╗", "██║██╔██║", "████╔╝██║", "╚██████╔╝", " ╚═════╝ "},
		{" ██████╗ ", "██╔════╝ ", "██║      ", "██║      ", "╚██████╗ ", " ╚═════╝ "},
		{" ██████╗ ", "██╔════╝ ", "╚█████╗  ", " ╚═══██╗ ", "██████╔╝ ", "╚═════╝  "},
		{"██████╗  ", "██╔══██╗ ", "██████╔╝ ", "██╔═══╝  ", "██║      ", "╚═╝      "},
		{" ██████╗ ", "██╔═████╗", "██║██╔██║", "████╔╝██║", "╚██████╔╝", " ╚═════╝ "},
		{"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "},
	}
	gradient := []string{spotFlame, honeyOrange, beeYellow, mint, seafoam, cobalt, deepIndigo, fuchsia}
	rows := make([]string, len(letters[0]))
	for i, letter := range letters {
		color := gradient[i%len(gradient)]
		for row := 0; row < len(letter); row++ {
			rows[row] += color + letter[row] + "  "
		}
	}
	for _, line := range rows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + spotFlame + "procspot" + reset + "  •  procfs telemetry lens\n\n")

	return b.String()
}

// Header summarizes the machine-wide facts of a snapshot in two lines.
// Unavailable facts print as "n/a".
func Header(sys types.SystemSnapshot) string {
	osName := sys.OSPrettyName
	if osName == "" {
		osName = "unknown OS"
	}
	kernel := sys.KernelVersion
	if kernel == "" {
		kernel = "n/a"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s | kernel %s | up %s | cpus %d\n", osName, kernel, report.FormatAge(sys.UptimeSeconds), sys.NumCPU)
	fmt.Fprintf(&b, "cpu %s | mem %s (%.0f MB total) | tasks %d running / %d forked\n",
		percent(sys.CPUUtilization), percent(sys.MemoryUtilization), float64(sys.MemTotalKB)/1024,
		sys.RunningProcesses, sys.TotalProcesses)
	return b.String()
}

// Dim wraps s in the faint attribute used for secondary lines.
func Dim(s string) string {
	return dim + s + reset
}

func percent(ratio *float64) string {
	if ratio == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *ratio*100)
}
