// Package config loads collector settings from a YAML or TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/srodi/procspot/pkg/procfs"
	"github.com/srodi/procspot/pkg/types"
)

const DefaultInterval = time.Second

// Config is the settings of one procspot run. Zero values mean "use the
// default", except for booleans whose defaults are set by Default.
type Config struct {
	ProcRoot        string   `yaml:"proc_root" toml:"proc_root"`
	EtcRoot         string   `yaml:"etc_root" toml:"etc_root"`
	Interval        Duration `yaml:"interval" toml:"interval"`
	TopK            int      `yaml:"topk" toml:"topk"`
	HideKernel      bool     `yaml:"hide_kernel" toml:"hide_kernel"`
	UserFilter      string   `yaml:"user_filter" toml:"user_filter"`
	IncludeChildren bool     `yaml:"include_children" toml:"include_children"`
	ClockTicks      uint64   `yaml:"clock_ticks" toml:"clock_ticks"`
	LogLevel        string   `yaml:"log_level" toml:"log_level"`
	LogFile         string   `yaml:"log_file" toml:"log_file"`
}

// Duration wraps time.Duration so both decoders accept strings like "3s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler, which toml uses.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ProcRoot:   procfs.DefaultProcRoot,
		EtcRoot:    procfs.DefaultEtcRoot,
		Interval:   Duration{DefaultInterval},
		TopK:       types.DefaultTopK,
		HideKernel: true,
		LogLevel:   "info",
	}
}

// Load decodes path over the defaults. The decoder is picked by extension.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decoding %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces out-of-range values with defaults.
func (c *Config) Validate() {
	if c.Interval.Duration <= 0 {
		c.Interval.Duration = DefaultInterval
	}
	if c.TopK <= 0 {
		c.TopK = 1
	}
	if c.ProcRoot == "" {
		c.ProcRoot = procfs.DefaultProcRoot
	}
	if c.EtcRoot == "" {
		c.EtcRoot = procfs.DefaultEtcRoot
	}
	c.UserFilter = strings.TrimSpace(c.UserFilter)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
