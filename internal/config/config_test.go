package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.App.User)
	assert.Equal(t, filepath.Join(cfg.App.DataDir, "taskdesk.db"), cfg.App.DBPath)
	assert.Equal(t, filepath.Join(cfg.App.DataDir, "taskdesk.log"), cfg.Logger.OutputPath)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes)
	assert.Equal(t, 15, cfg.Pomodoro.LongBreakMinutes)
	assert.Equal(t, 4, cfg.Pomodoro.LongBreakEvery)
	assert.Equal(t, 30, cfg.Notify.LeadMinutes)
	assert.Equal(t, 128, cfg.Query.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.Query.CacheTTL)
	assert.Equal(t, 64, cfg.Scheduler.Buffer)
	assert.False(t, cfg.Web.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Web.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKDESK_APP_USER", "alice")
	t.Setenv("TASKDESK_POMODORO_WORK_MINUTES", "50")
	t.Setenv("TASKDESK_NOTIFY_DESKTOP", "true")
	t.Setenv("TASKDESK_WEB_ENABLED", "true")
	t.Setenv("TASKDESK_QUERY_CACHE_TTL", "1m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.App.User)
	assert.Equal(t, 50, cfg.Pomodoro.WorkMinutes)
	assert.True(t, cfg.Notify.Desktop)
	assert.True(t, cfg.Web.Enabled)
	assert.Equal(t, time.Minute, cfg.Query.CacheTTL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := []byte(`
app:
  user: bob
  data_dir: ` + dir + `
logger:
  level: debug
  mode: development
  encoding: console
pomodoro:
  long_break_every: 3
web:
  enabled: true
  addr: ":9999"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.App.User)
	assert.Equal(t, filepath.Join(dir, "taskdesk.db"), cfg.App.DBPath)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "development", cfg.Logger.Mode)
	assert.Equal(t, 3, cfg.Pomodoro.LongBreakEvery)
	assert.Equal(t, ":9999", cfg.Web.Addr)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes, "unset keys keep defaults")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKDESK_POMODORO_WORK_MINUTES", "0")
	_, err := Load("")
	assert.Error(t, err)
}
