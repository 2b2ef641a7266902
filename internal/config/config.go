// Package config loads and saves the user configuration stored as YAML in the
// stt config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stt-cli/internal/report"
	"stt-cli/internal/store"
)

const (
	EnvConfigDir = "STT_CONFIG_DIR"
	EnvFile      = "STT_FILE"
)

type ReportConfig struct {
	// RoundTo is a Go duration string such as "5m". Empty disables rounding.
	RoundTo         string   `yaml:"roundTo,omitempty"`
	BreakActivities []string `yaml:"breakActivities,omitempty"`
	// Width truncates text report lines. Zero uses the terminal width.
	Width int `yaml:"width,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

type Config struct {
	File   string       `yaml:"file,omitempty"`
	Report ReportConfig `yaml:"report,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Report: ReportConfig{
			BreakActivities: append([]string(nil), report.DefaultBreakActivities...),
		},
		Log: LogConfig{Level: "warn"},
	}
}

func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stt"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file. A missing file yields Default(); fields absent
// from the file keep their default values.
func Load() (Config, error) {
	cfg := Default()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), fmt.Errorf("invalid %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg, keeping the previous file as config.yaml.bak.
func Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = store.AtomicWriteFile(path+".bak", prev, 0o644)
	}
	return store.AtomicWriteFile(path, b, 0o644)
}

func (c Config) Validate() error {
	if _, err := c.RoundTo(); err != nil {
		return err
	}
	if c.Report.Width < 0 {
		return fmt.Errorf("report.width must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	return nil
}

func (c Config) RoundTo() (time.Duration, error) {
	if strings.TrimSpace(c.Report.RoundTo) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Report.RoundTo)
	if err != nil {
		return 0, fmt.Errorf("report.roundTo: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("report.roundTo must not be negative")
	}
	return d, nil
}

// ReportOptions converts the report section. An invalid roundTo disables
// rounding; Load and Save reject it anyway.
func (c Config) ReportOptions() report.Options {
	d, _ := c.RoundTo()
	return report.Options{RoundTo: d, BreakActivities: c.Report.BreakActivities}
}

// ActivitiesFile resolves the activities file: flag, then STT_FILE, then the
// config file, then ~/.stt/activities.
func (c Config) ActivitiesFile(flag string) (string, error) {
	for _, v := range []string{flag, os.Getenv(EnvFile), c.File} {
		if v = strings.TrimSpace(v); v != "" {
			return expandHome(v)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stt", "activities"), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Keys lists the keys accepted by Set and Get.
var Keys = []string{"file", "report.roundTo", "report.breakActivities", "report.width", "log.level"}

// Get returns the value of a dotted key as a string.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "file":
		return c.File, nil
	case "report.roundTo":
		return c.Report.RoundTo, nil
	case "report.breakActivities":
		return strings.Join(c.Report.BreakActivities, ","), nil
	case "report.width":
		return fmt.Sprint(c.Report.Width), nil
	case "log.level":
		return c.Log.Level, nil
	}
	return "", unknownKey(key)
}

// Set assigns a dotted key and validates the result.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "file":
		next.File = value
	case "report.roundTo":
		next.Report.RoundTo = value
	case "report.breakActivities":
		next.Report.BreakActivities = nil
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				next.Report.BreakActivities = append(next.Report.BreakActivities, part)
			}
		}
	case "report.width":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("report.width must be an integer")
		}
		next.Report.Width = n
	case "log.level":
		next.Log.Level = strings.ToLower(value)
	default:
		return unknownKey(key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(Keys, ", "))
}
