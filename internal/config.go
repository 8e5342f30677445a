package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the runtime.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after a root
// or scheduler was built from it.
type Config struct {
	// Scheduler contains time slicing and priority settings.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	// Reconciler contains render pass settings.
	Reconciler ReconcilerConfig `json:"reconciler" yaml:"reconciler"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`
}

// SchedulerConfig contains time slicing settings.
type SchedulerConfig struct {
	// FrameInterval is the length of one work slice before yielding.
	FrameInterval time.Duration `json:"frame_interval" yaml:"frame_interval"`

	// Timeouts maps each priority to how long its tasks may wait.
	Timeouts PriorityTimeouts `json:"timeouts" yaml:"timeouts"`
}

// PriorityTimeouts is the priority to expiration table.
type PriorityTimeouts struct {
	Immediate    time.Duration `json:"immediate" yaml:"immediate"`
	UserBlocking time.Duration `json:"user_blocking" yaml:"user_blocking"`
	Normal       time.Duration `json:"normal" yaml:"normal"`
	Low          time.Duration `json:"low" yaml:"low"`
	Idle         time.Duration `json:"idle" yaml:"idle"`
}

// ReconcilerConfig contains render pass settings.
type ReconcilerConfig struct {
	WarnDuplicateKeys bool `json:"warn_duplicate_keys" yaml:"warn_duplicate_keys"`
	NestedUpdateLimit int  `json:"nested_update_limit" yaml:"nested_update_limit"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// maxSigned31BitInt milliseconds, about 12 days
const idleTimeout = 1073741823 * time.Millisecond

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Scheduler: SchedulerConfig{
			FrameInterval: 5 * time.Millisecond,
			Timeouts: PriorityTimeouts{
				Immediate:    1 * time.Millisecond,
				UserBlocking: 250 * time.Millisecond,
				Normal:       5 * time.Second,
				Low:          10 * time.Second,
				Idle:         idleTimeout,
			},
		},
		Reconciler: ReconcilerConfig{
			WarnDuplicateKeys: true,
			NestedUpdateLimit: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration with priority: env > file > defaults.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	return nil
}

func loadConfigFromEnv(config *Config) {
	if v := os.Getenv("FIBER_FRAME_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Scheduler.FrameInterval = d
		}
	}
	if v := os.Getenv("FIBER_NESTED_UPDATE_LIMIT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Reconciler.NestedUpdateLimit = i
		}
	}
	if v := os.Getenv("FIBER_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("FIBER_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
}

// Validate checks the configuration for values the runtime cannot use.
func (c Config) Validate() error {
	var errs []error

	if c.Scheduler.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.frame_interval must be positive, got %s", c.Scheduler.FrameInterval))
	}

	t := c.Scheduler.Timeouts
	if !(t.Immediate <= t.UserBlocking && t.UserBlocking <= t.Normal && t.Normal <= t.Low && t.Low <= t.Idle) {
		errs = append(errs, errors.New("scheduler.timeouts must not decrease with priority"))
	}

	if c.Reconciler.NestedUpdateLimit < 1 {
		errs = append(errs, fmt.Errorf("reconciler.nested_update_limit must be at least 1, got %d", c.Reconciler.NestedUpdateLimit))
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds a logger writing to out with the configured handler.
func (c LogConfig) NewLogger(out io.Writer) *slog.Logger {
	level, err := ParseLogLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// timeout returns the expiration delay for a priority.
func (t PriorityTimeouts) timeout(p Priority) time.Duration {
	switch p {
	case ImmediatePriority:
		return t.Immediate
	case UserBlockingPriority:
		return t.UserBlocking
	case LowPriority:
		return t.Low
	case IdlePriority:
		return t.Idle
	default:
		return t.Normal
	}
}
