// Package collector runs one collection cycle over a pseudo-filesystem and
// turns it into a types.Snapshot.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/srodi/procspot/pkg/collector/cpu"
	"github.com/srodi/procspot/pkg/collector/memory"
	"github.com/srodi/procspot/pkg/procfs"
	"github.com/srodi/procspot/pkg/types"
)

const defaultUserCacheSize = 1024

var errUptimeUnavailable = errors.New("system uptime unavailable")

// Options configures a Collector.
type Options struct {
	// ClockTicks is the number of clock ticks per second. Zero asks sysconf.
	ClockTicks uint64
	// IncludeChildren adds waited-for children ticks to per-process CPU.
	IncludeChildren bool
	UserCacheSize   int
	Logger          *zap.Logger
}

// Collector owns the previous tick samples between cycles. It is not meant
// to be shared by concurrent callers of Collect.
type Collector struct {
	fs         procfs.FS
	model      *cpu.Model
	mem        *memory.Sampler
	users      *lru.Cache
	clockTicks uint64
	children   bool
	log        *zap.Logger
}

// New returns a Collector reading from fs.
func New(fs procfs.FS, opts Options) (*Collector, error) {
	if opts.ClockTicks == 0 {
		opts.ClockTicks = procfs.ClockTicks()
	}
	if opts.UserCacheSize <= 0 {
		opts.UserCacheSize = defaultUserCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	users, err := lru.New(opts.UserCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating user cache: %w", err)
	}
	return &Collector{
		fs:         fs,
		model:      cpu.NewModel(opts.ClockTicks),
		mem:        memory.NewSampler(fs.ProcRoot()),
		users:      users,
		clockTicks: opts.ClockTicks,
		children:   opts.IncludeChildren,
		log:        opts.Logger,
	}, nil
}

// ClockTicks returns the clock ticks per second this collector converts with.
func (c *Collector) ClockTicks() uint64 { return c.clockTicks }

// Reset drops every CPU baseline; the next cycle reports CPU as unavailable.
func (c *Collector) Reset() {
	c.model.Reset()
}

// Collect takes one snapshot. Facts that cannot be read are left at their
// zero value and listed as degraded; only a cancelled ctx returns an error.
func (c *Collector) Collect(ctx context.Context) (types.Snapshot, error) {
	start := time.Now()
	// The identity table is read fresh every cycle.
	c.users.Purge()

	var snap types.Snapshot
	uptime, uptimeOK := c.collectSystem(&snap)

	pids, err := c.fs.Pids()
	if err != nil {
		snap.Degraded = append(snap.Degraded, "pids")
		c.log.Warn("enumerating processes failed", zap.Error(err))
	}
	snap.Processes = make([]types.ProcessSnapshot, 0, len(pids))
	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		snap.Processes = append(snap.Processes, c.collectProcess(pid, uptime, uptimeOK))
	}
	if err == nil {
		c.model.Retain(pids)
	}

	c.log.Debug("collection cycle done",
		zap.Int("processes", len(snap.Processes)),
		zap.Strings("degraded", snap.Degraded),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

func (c *Collector) collectSystem(snap *types.Snapshot) (float64, bool) {
	sys := &snap.System
	fail := func(field string, err error) {
		snap.Degraded = append(snap.Degraded, field)
		c.log.Warn("system fact unavailable", zap.String("field", field), zap.Error(err))
	}

	if info, err := c.fs.MemInfo(); err != nil {
		fail("memory", err)
	} else {
		sys.MemTotalKB, sys.MemFreeKB = info.TotalKB, info.FreeKB
		if u, err := info.Utilization(); err != nil {
			fail("memory_utilization", err)
		} else {
			sys.MemoryUtilization = &u
		}
	}

	uptime, err := c.fs.UpTimeSeconds()
	uptimeOK := err == nil && uptime >= 0
	if uptimeOK {
		sys.UptimeSeconds = uint64(uptime)
	} else {
		fail("uptime", err)
	}

	var errs [4]error
	sys.TotalProcesses, errs[0] = c.fs.TotalProcesses()
	sys.RunningProcesses, errs[1] = c.fs.RunningProcesses()
	sys.BootTime, errs[2] = c.fs.BootTime()
	sys.KernelVersion, errs[3] = c.fs.Kernel()
	for i, field := range []string{"processes", "procs_running", "btime", "kernel"} {
		if errs[i] != nil {
			fail(field, errs[i])
		}
	}
	if name, err := c.fs.OperatingSystem(); err != nil {
		fail("os", err)
	} else {
		sys.OSPrettyName = name
	}

	if cores, err := c.fs.CoreTicks(); err != nil {
		fail("cores", err)
	} else {
		sys.NumCPU = len(cores)
		if len(cores) > 0 {
			c.model.SetCPUs(len(cores))
		}
		sys.CoreUtilization = c.model.Cores(cores)
	}
	if ticks, err := c.fs.CPUTicks(); err != nil {
		fail("cpu", err)
	} else {
		sys.CPUTicks = ticks
		if u, ok := c.model.System(ticks); ok {
			sys.CPUUtilization = &u
		}
	}
	return uptime, uptimeOK
}

func (c *Collector) collectProcess(pid int, uptime float64, uptimeOK bool) types.ProcessSnapshot {
	p := types.ProcessSnapshot{PID: pid}
	fail := func(field string, err error) {
		p.Degraded = append(p.Degraded, field)
		c.log.Debug("process fact unavailable", zap.Int("pid", pid), zap.String("field", field), zap.Error(err))
	}

	p.Command = c.fs.Command(pid)
	if mb, err := c.fs.Ram(pid); err != nil {
		fail("ram", err)
	} else {
		p.ResidentMemoryMB = mb
	}
	if rss, err := c.mem.RSSBytes(pid); err != nil {
		fail("rss", err)
	} else {
		p.ResidentSetMB = memory.BytesToMiB(rss)
	}
	if uid, err := c.fs.Uid(pid); err != nil {
		fail("uid", err)
	} else {
		p.UID = uid
		if name, err := c.lookupUser(uid); err != nil {
			fail("user", err)
		} else {
			p.User = name
		}
	}

	st, err := c.fs.Stat(pid)
	if err != nil {
		fail("stat", err)
		return p
	}
	p.Name = st.Comm()
	p.State = st.State()
	if ppid, err := st.PPID(); err == nil {
		p.PPID = ppid
	}
	start, err := st.StartTime()
	if err != nil {
		fail("start_time", err)
		return p
	}
	p.StartTimeTicks = start
	if !uptimeOK {
		fail("age", errUptimeUnavailable)
		return p
	}
	p.AgeSeconds = procfs.Age(uint64(uptime), start, c.clockTicks)

	ticks, err := st.Ticks(c.children)
	if err != nil {
		fail("cpu", err)
		return p
	}
	if u, ok := c.model.Process(pid, start, ticks, uptime); ok {
		p.CPUUtilization = &u
	}
	return p
}

func (c *Collector) lookupUser(uid string) (string, error) {
	if name, ok := c.users.Get(uid); ok {
		return name.(string), nil
	}
	name, err := c.fs.LookupUser(uid)
	if err != nil {
		return "", err
	}
	c.users.Add(uid, name)
	return name, nil
}
