package cpu

import (
	"sync"

	"github.com/srodi/procspot/pkg/types"
)

// Model turns cumulative clock-tick counters into utilization ratios. It
// keeps exactly one previous sample per subject: the whole system, each
// core, and each pid. A subject seen for the first time, or whose counters
// went backwards, reports unavailable and becomes the new baseline.
type Model struct {
	mu         sync.Mutex
	clockTicks uint64
	cpus       int

	system    types.CPUTickSample
	hasSystem bool
	cores     map[int]types.CPUTickSample
	procs     map[int]procSample
}

type procSample struct {
	ticks  uint64
	start  uint64
	uptime float64
}

// NewModel returns an empty model. clockTicks is the number of clock ticks
// per second, fetched once by the caller.
func NewModel(clockTicks uint64) *Model {
	if clockTicks == 0 {
		clockTicks = 100
	}
	return &Model{
		clockTicks: clockTicks,
		cpus:       1,
		cores:      make(map[int]types.CPUTickSample),
		procs:      make(map[int]procSample),
	}
}

// SetCPUs sets how many CPUs per-process ratios are spread across.
func (m *Model) SetCPUs(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = 1
	}
	m.cpus = n
}

// System records the aggregate sample and returns the utilization since the
// previous one.
func (m *Model) System(s types.CPUTickSample) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.system, m.hasSystem
	m.system, m.hasSystem = s, true
	if !ok {
		return 0, false
	}
	return utilization(prev, s)
}

// Cores records one sample per core and returns a ratio per core, nil where
// unavailable. Cores beyond the returned slice are forgotten.
func (m *Model) Cores(samples []types.CPUTickSample) []*float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ratios := make([]*float64, len(samples))
	for i, s := range samples {
		prev, ok := m.cores[i]
		m.cores[i] = s
		if !ok {
			continue
		}
		if r, ok := utilization(prev, s); ok {
			ratios[i] = &r
		}
	}
	for i := range m.cores {
		if i >= len(samples) {
			delete(m.cores, i)
		}
	}
	return ratios
}

// Process records the tick counter of pid and returns the share of total
// CPU capacity it used since its previous sample. start is the process
// start time; a new start time under the same pid means the pid was reused.
// uptime is the system uptime in seconds at the time of the read.
func (m *Model) Process(pid int, start, ticks uint64, uptime float64) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.procs[pid]
	m.procs[pid] = procSample{ticks: ticks, start: start, uptime: uptime}
	if !ok || prev.start != start || ticks < prev.ticks || uptime < prev.uptime {
		return 0, false
	}
	elapsed := (uptime - prev.uptime) * float64(m.clockTicks) * float64(m.cpus)
	if elapsed <= 0 {
		return 0, true
	}
	return clamp(float64(ticks-prev.ticks) / elapsed), true
}

// Retain forgets every pid not in pids.
func (m *Model) Retain(pids []int) {
	live := make(map[int]struct{}, len(pids))
	for _, pid := range pids {
		live[pid] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid := range m.procs {
		if _, ok := live[pid]; !ok {
			delete(m.procs, pid)
		}
	}
}

// Reset drops every baseline so the next sample of each subject starts over.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.system, m.hasSystem = types.CPUTickSample{}, false
	m.cores = make(map[int]types.CPUTickSample)
	m.procs = make(map[int]procSample)
}

// Tracked returns how many pids currently have a baseline.
func (m *Model) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.procs)
}

// utilization computes 1 - Δidle/Δtotal. A total that went backwards is
// unavailable; no elapsed ticks is zero.
func utilization(prev, cur types.CPUTickSample) (float64, bool) {
	prevTotal, curTotal := prev.TotalTicks(), cur.TotalTicks()
	if curTotal < prevTotal {
		return 0, false
	}
	total := curTotal - prevTotal
	if total == 0 {
		return 0, true
	}
	var idle uint64
	if prevIdle, curIdle := prev.IdleTicks(), cur.IdleTicks(); curIdle > prevIdle {
		idle = curIdle - prevIdle
	}
	return clamp(1 - float64(idle)/float64(total)), true
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
