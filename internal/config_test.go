package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		config := DefaultConfig()
		require.NoError(t, config.Validate())

		assert.Equal(t, 5*time.Millisecond, config.Scheduler.FrameInterval)
		assert.Equal(t, 250*time.Millisecond, config.Scheduler.Timeouts.UserBlocking)
		assert.Equal(t, 50, config.Reconciler.NestedUpdateLimit)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeConfig(t, "fiber.yaml", `
scheduler:
  frame_interval: 10ms
reconciler:
  nested_update_limit: 5
log:
  level: debug
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Millisecond, config.Scheduler.FrameInterval)
		assert.Equal(t, 5, config.Reconciler.NestedUpdateLimit)
		assert.Equal(t, "debug", config.Log.Level)
		assert.Equal(t, 5*time.Second, config.Scheduler.Timeouts.Normal)
	})

	t.Run("json file", func(t *testing.T) {
		path := writeConfig(t, "fiber.json", `{"scheduler": {"frame_interval": 2000000}, "log": {"format": "json"}}`)

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Millisecond, config.Scheduler.FrameInterval)
		assert.Equal(t, "json", config.Log.Format)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "fiber.yaml", "scheduler:\n  frame_interval: 10ms\n")
		t.Setenv("FIBER_FRAME_INTERVAL", "3ms")
		t.Setenv("FIBER_NESTED_UPDATE_LIMIT", "7")
		t.Setenv("FIBER_LOG_LEVEL", "warn")

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Millisecond, config.Scheduler.FrameInterval)
		assert.Equal(t, 7, config.Reconciler.NestedUpdateLimit)
		assert.Equal(t, "warn", config.Log.Level)
	})

	t.Run("invalid values are reported together", func(t *testing.T) {
		config := DefaultConfig()
		config.Scheduler.FrameInterval = 0
		config.Scheduler.Timeouts.Normal = time.Hour
		config.Reconciler.NestedUpdateLimit = 0
		config.Log.Format = "xml"

		err := config.Validate()
		require.Error(t, err)
		for _, field := range []string{"frame_interval", "timeouts", "nested_update_limit", "log.format"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("unparsable file", func(t *testing.T) {
		path := writeConfig(t, "fiber.yaml", "scheduler: [")

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "load config file")
	})

	t.Run("logger honours level and format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

		logger.Info("hidden")
		logger.Warn("shown", "n", 1)

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
		assert.Contains(t, buf.String(), `"n":1`)
	})

	t.Run("timeouts per priority", func(t *testing.T) {
		timeouts := DefaultConfig().Scheduler.Timeouts
		assert.Equal(t, time.Millisecond, timeouts.timeout(ImmediatePriority))
		assert.Equal(t, 10*time.Second, timeouts.timeout(LowPriority))
		assert.Equal(t, idleTimeout, timeouts.timeout(IdlePriority))
		assert.Equal(t, 5*time.Second, timeouts.timeout(NoPriority))
	})
}
