package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/srodi/procspot/pkg/collector/memory"
	"github.com/srodi/procspot/pkg/types"
)

// ProcMetrics condenses one process of a snapshot into a table row.
type ProcMetrics struct {
	PID        int
	Comm       string
	Command    string
	User       string
	State      string
	CPUPercent float64
	CPUKnown   bool
	VirtMB     float64
	RSSMB      float64
	RSSRatio   float64
	AgeSeconds uint64
	Diagnosis  string
}

// FilterConfig controls which processes appear in CLI tables.
type FilterConfig struct {
	HideKernel *bool // nil defaults to true so kernel threads stay hidden unless explicitly shown
	UserFilter string
}

func (cfg FilterConfig) hideKernelEnabled() bool {
	if cfg.HideKernel == nil {
		return true
	}
	return *cfg.HideKernel
}

// BuildProcMetrics turns the processes of a snapshot into rows and returns
// both a slice for table rendering and an index for quick lookups.
func BuildProcMetrics(snap types.Snapshot) ([]ProcMetrics, map[int]ProcMetrics) {
	totalMB := memory.KiBToMiB(snap.System.MemTotalKB)
	if totalMB <= 0 {
		totalMB = 1
	}

	result := make([]ProcMetrics, 0, len(snap.Processes))
	index := make(map[int]ProcMetrics, len(snap.Processes))
	for _, p := range snap.Processes {
		row := ProcMetrics{
			PID:        p.PID,
			Comm:       p.Name,
			Command:    DisplayCommand(p.Command),
			User:       p.User,
			State:      p.State,
			VirtMB:     p.ResidentMemoryMB,
			RSSMB:      p.ResidentSetMB,
			RSSRatio:   p.ResidentSetMB / totalMB,
			AgeSeconds: p.AgeSeconds,
		}
		if row.User == "" {
			row.User = p.UID
		}
		if p.CPUUtilization != nil {
			row.CPUKnown = true
			row.CPUPercent = 100 * *p.CPUUtilization
		}
		row.Diagnosis = classifyProc(&row)
		result = append(result, row)
		index[row.PID] = row
	}
	return result, index
}

// DisplayCommand turns the NUL-separated argv of a command-line record into
// a printable string.
func DisplayCommand(cmd string) string {
	return strings.TrimSpace(strings.ReplaceAll(cmd, "\x00", " "))
}

// FilterMetrics applies HideKernel/user filters before ranking tables.
func FilterMetrics(rows []ProcMetrics, cfg FilterConfig) []ProcMetrics {
	filtered := make([]ProcMetrics, 0, len(rows))
	for _, row := range rows {
		if passesFilters(row, cfg) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// CPUUsageRows returns the rows with the highest known CPU share up to topK.
func CPUUsageRows(rows []ProcMetrics, topK int) []ProcMetrics {
	candidates := make([]ProcMetrics, 0, len(rows))
	for _, row := range rows {
		if !row.CPUKnown {
			continue
		}
		candidates = append(candidates, row)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CPUPercent == candidates[j].CPUPercent {
			return candidates[i].PID < candidates[j].PID
		}
		return candidates[i].CPUPercent > candidates[j].CPUPercent
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

// MemoryRows orders processes by resident set size.
func MemoryRows(rows []ProcMetrics, topK int) []ProcMetrics {
	candidates := make([]ProcMetrics, 0, len(rows))
	for _, row := range rows {
		if row.RSSMB == 0 {
			continue
		}
		candidates = append(candidates, row)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].RSSMB == candidates[j].RSSMB {
			return candidates[i].PID < candidates[j].PID
		}
		return candidates[i].RSSMB > candidates[j].RSSMB
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

// SelectFocusCandidate picks the most interesting process to summarize for the operator.
func SelectFocusCandidate(rows []ProcMetrics) *ProcMetrics {
	if len(rows) == 0 {
		return nil
	}
	var best *ProcMetrics
	bestScore := -1.0
	for _, row := range rows {
		severity := diagnosisSeverity(row.Diagnosis)
		if severity == 0 && row.CPUPercent < 1 {
			continue
		}
		score := float64(severity)*1000 + row.CPUPercent
		if best == nil || score > bestScore {
			copy := row
			best = &copy
			bestScore = score
		}
	}
	if best != nil {
		return best
	}
	maxIdx := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].CPUPercent > rows[maxIdx].CPUPercent {
			maxIdx = i
		}
	}
	copy := rows[maxIdx]
	return &copy
}

// FocusSummary returns a short explanation string for the status line.
func FocusSummary(row ProcMetrics) string {
	switch row.Diagnosis {
	case "Zombie":
		return fmt.Sprintf("exited but not reaped, %s old", FormatAge(row.AgeSeconds))
	case "CPU-bound":
		return fmt.Sprintf("%.1f%% of all CPUs, %.0f MB", row.CPUPercent, row.RSSMB)
	case "Memory-heavy":
		return fmt.Sprintf("%.1f GB, %.0f%% of RAM", row.RSSMB/1024.0, row.RSSRatio*100)
	case "Busy":
		return fmt.Sprintf("%.1f%% CPU for %s", row.CPUPercent, FormatAge(row.AgeSeconds))
	default:
		return fmt.Sprintf("%.1f%% CPU, %.0f MB", row.CPUPercent, row.RSSMB)
	}
}

// FormatAge renders seconds as HH:MM:SS, with a day prefix past 24h.
func FormatAge(secs uint64) string {
	days := secs / 86400
	secs %= 86400
	clock := fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, clock)
	}
	return clock
}

func classifyProc(row *ProcMetrics) string {
	if row.State == "Z" {
		return "Zombie"
	}
	if row.CPUPercent > 50 {
		return "CPU-bound"
	}
	if row.RSSRatio > 0.3 && row.RSSMB > 1000 {
		return "Memory-heavy"
	}
	if row.CPUPercent > 10 {
		return "Busy"
	}
	return "OK"
}

func passesFilters(row ProcMetrics, cfg FilterConfig) bool {
	if cfg.hideKernelEnabled() && isKernelThread(row) {
		return false
	}
	if cfg.UserFilter != "" && !strings.EqualFold(row.User, cfg.UserFilter) {
		return false
	}
	return true
}

// isKernelThread treats rows without a command line as kernel threads, plus
// the well-known kernel thread names for records read mid-exit.
func isKernelThread(row ProcMetrics) bool {
	if row.PID == 0 {
		return true
	}
	name := strings.ToLower(row.Comm)
	switch {
	case strings.HasPrefix(name, "kworker"), strings.HasPrefix(name, "ksoftirqd"), strings.HasPrefix(name, "kthreadd"),
		strings.HasPrefix(name, "migration"), strings.HasPrefix(name, "watchdog"), strings.HasPrefix(name, "rcu"),
		strings.HasPrefix(name, "irq/"):
		return true
	}
	return row.Command == "" && row.State != "Z"
}

func diagnosisSeverity(label string) int {
	switch label {
	case "Zombie":
		return 4
	case "CPU-bound":
		return 3
	case "Memory-heavy":
		return 2
	case "Busy":
		return 1
	default:
		return 0
	}
}
