//go:build linux

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/srodi/procspot/pkg/collector"
	"github.com/srodi/procspot/pkg/config"
	"github.com/srodi/procspot/pkg/logging"
	"github.com/srodi/procspot/pkg/procfs"
	"github.com/srodi/procspot/pkg/report"
	"github.com/srodi/procspot/pkg/types"
	"github.com/srodi/procspot/pkg/ui"
)

const minCommandWidth = 20

// view is what the renderer needs to know about the output terminal.
type view struct {
	color bool
	width int
}

// parseConfig loads the optional config file, then applies the flags that
// were explicitly set on top of it.
func parseConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("procspot", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML or TOML config file")
	interval := fs.Duration("interval", config.DefaultInterval, "time between the baseline and the reported sample (e.g. 500ms, 3s)")
	topK := fs.Int("topk", types.DefaultTopK, "number of processes to display per section")
	hideKernel := fs.Bool("hide-kernel", true, "hide kernel threads such as kworker, ksoftirqd, etc")
	user := fs.String("user", "", "only show processes owned by this user (case-insensitive)")
	procRoot := fs.String("proc", procfs.DefaultProcRoot, "pseudo-filesystem root")
	etcRoot := fs.String("etc", procfs.DefaultEtcRoot, "directory holding passwd and os-release")
	children := fs.Bool("children", false, "count CPU time of waited-for children")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	logFile := fs.String("log-file", "", "also write JSON logs to this rotated file")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval.Duration = *interval
		case "topk":
			cfg.TopK = *topK
		case "hide-kernel":
			cfg.HideKernel = *hideKernel
		case "user":
			cfg.UserFilter = *user
		case "proc":
			cfg.ProcRoot = *procRoot
		case "etc":
			cfg.EtcRoot = *etcRoot
		case "children":
			cfg.IncludeChildren = *children
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	cfg.Validate()
	return cfg, nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout, terminalView(os.Stdout))
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("procspot failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run takes a baseline sample, waits one interval and prints the second one.
func run(ctx context.Context, cfg config.Config, out io.Writer, v view) error {
	logger := zap.L()
	fsys, err := procfs.NewFS(cfg.ProcRoot, cfg.EtcRoot)
	if err != nil {
		return err
	}
	if ok, err := fsys.VerifyMount(); err != nil {
		logger.Warn("checking proc mount", zap.String("root", fsys.ProcRoot()), zap.Error(err))
	} else if !ok {
		logger.Warn("proc root is not a procfs mount, reading it as plain files", zap.String("root", fsys.ProcRoot()))
	}

	c, err := collector.New(fsys, collector.Options{
		ClockTicks:      cfg.ClockTicks,
		IncludeChildren: cfg.IncludeChildren,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("initializing collector: %w", err)
	}
	logger.Debug("collector ready",
		zap.Uint64("clock_ticks", c.ClockTicks()),
		zap.Duration("interval", cfg.Interval.Duration))

	if _, err := c.Collect(ctx); err != nil {
		return fmt.Errorf("baseline sample: %w", err)
	}
	timer := time.NewTimer(cfg.Interval.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	snap, err := c.Collect(ctx)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	return render(out, snap, cfg, v, time.Now())
}

func terminalView(f *os.File) view {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return view{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	return view{color: true, width: width}
}

func render(out io.Writer, snap types.Snapshot, cfg config.Config, v view, now time.Time) error {
	procRows, _ := report.BuildProcMetrics(snap)
	hideKernel := cfg.HideKernel
	filterCfg := report.FilterConfig{HideKernel: &hideKernel, UserFilter: cfg.UserFilter}
	filteredRows := report.FilterMetrics(procRows, filterCfg)
	focus := report.SelectFocusCandidate(filteredRows)
	cmdWidth := commandWidth(v.width)

	var buf bytes.Buffer
	if v.color {
		buf.WriteString(ui.Banner())
	} else {
		buf.WriteString("procspot\n\n")
	}
	fmt.Fprintf(&buf, "Sampled: %s | Window: %v\n", now.Format(time.RFC3339), cfg.Interval.Duration)
	buf.WriteString(ui.Header(snap.System))
	if len(snap.Degraded) > 0 {
		line := "Unavailable: " + strings.Join(snap.Degraded, ", ")
		if v.color {
			line = ui.Dim(line)
		}
		buf.WriteString(line + "\n")
	}
	buf.WriteString("\n")

	if focus != nil {
		fmt.Fprintf(&buf, "[!] Focus: %s (pid %d)\n", focus.Comm, focus.PID)
		fmt.Fprintf(&buf, "   Reason: %s - %s\n\n", focus.Diagnosis, report.FocusSummary(*focus))
	} else if len(filteredRows) == 0 {
		fmt.Fprintf(&buf, "[!] No processes matched current filters (topk=%d, hide-kernel=%t, user=%q)\n\n", cfg.TopK, cfg.HideKernel, cfg.UserFilter)
	}

	fmt.Fprintf(&buf, "[Top %d CPU, window %v]\n", cfg.TopK, cfg.Interval.Duration)
	cpuRows := report.CPUUsageRows(filteredRows, cfg.TopK)
	if len(cpuRows) == 0 {
		fmt.Fprintln(&buf, "No CPU samples for this window")
	} else {
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PID\tUSER\tCOMM\tSTATE\tCPU(%)\tRSS(MB)\tAGE\tDiag\tCOMMAND")
		for _, row := range cpuRows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.1f\t%s\t%s\t%s\n",
				row.PID, row.User, row.Comm, row.State, row.CPUPercent, row.RSSMB,
				report.FormatAge(row.AgeSeconds), row.Diagnosis, truncate(row.Command, cmdWidth))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(&buf, "\n[Top %d Memory]\n", cfg.TopK)
	memRows := report.MemoryRows(filteredRows, cfg.TopK)
	if len(memRows) == 0 {
		fmt.Fprintln(&buf, "No resident memory readings")
	} else {
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PID\tUSER\tCOMM\tRSS(MB)\tRAM(%)\tVIRT(MB)\tCPU(%)\tCOMMAND")
		for _, row := range memRows {
			cpu := "n/a"
			if row.CPUKnown {
				cpu = fmt.Sprintf("%.2f", row.CPUPercent)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.1f\t%.1f\t%s\t%s\n",
				row.PID, row.User, row.Comm, row.RSSMB, row.RSSRatio*100, row.VirtMB, cpu, truncate(row.Command, cmdWidth))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := out.Write(buf.Bytes())
	return err
}

// commandWidth leaves the command column whatever the fixed columns do not
// use. Zero means no limit.
func commandWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return max(termWidth-80, minCommandWidth)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
