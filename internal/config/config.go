// Package config loads runtime settings from defaults, an optional YAML
// file and TASKDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TASKDESK"

type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Pomodoro  PomodoroConfig
	Notify    NotifyConfig
	Query     QueryConfig
	Scheduler SchedulerConfig
	Web       WebConfig
}

type AppConfig struct {
	User    string
	DataDir string
	DBPath  string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
	OutputPath   string
}

type PomodoroConfig struct {
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	LongBreakEvery    int
}

type NotifyConfig struct {
	LeadMinutes   int
	SnoozeMinutes int
	Desktop       bool
}

type QueryConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

type SchedulerConfig struct {
	Buffer int
}

type WebConfig struct {
	Enabled         bool
	Addr            string
	ShutdownTimeout time.Duration
}

// Load reads configuration. An empty path searches ./taskdesk.yaml and
// $HOME/.config/taskdesk/taskdesk.yaml and tolerates their absence; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("taskdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "taskdesk"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.User = v.GetString("app.user")
	cfg.App.DataDir = v.GetString("app.data_dir")
	cfg.App.DBPath = v.GetString("app.db_path")
	if cfg.App.DBPath == "" {
		cfg.App.DBPath = filepath.Join(cfg.App.DataDir, "taskdesk.db")
	}

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")
	cfg.Logger.OutputPath = v.GetString("logger.output_path")
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = filepath.Join(cfg.App.DataDir, "taskdesk.log")
	}

	cfg.Pomodoro.WorkMinutes = v.GetInt("pomodoro.work_minutes")
	cfg.Pomodoro.ShortBreakMinutes = v.GetInt("pomodoro.short_break_minutes")
	cfg.Pomodoro.LongBreakMinutes = v.GetInt("pomodoro.long_break_minutes")
	cfg.Pomodoro.LongBreakEvery = v.GetInt("pomodoro.long_break_every")

	cfg.Notify.LeadMinutes = v.GetInt("notify.lead_minutes")
	cfg.Notify.SnoozeMinutes = v.GetInt("notify.snooze_minutes")
	cfg.Notify.Desktop = v.GetBool("notify.desktop")

	cfg.Query.CacheSize = v.GetInt("query.cache_size")
	cfg.Query.CacheTTL = v.GetDuration("query.cache_ttl")

	cfg.Scheduler.Buffer = v.GetInt("scheduler.buffer")

	cfg.Web.Enabled = v.GetBool("web.enabled")
	cfg.Web.Addr = v.GetString("web.addr")
	cfg.Web.ShutdownTimeout = v.GetDuration("web.shutdown_timeout")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.user", "local")
	v.SetDefault("app.data_dir", defaultDataDir())
	v.SetDefault("app.db_path", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "production")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.color_enabled", false)
	v.SetDefault("logger.output_path", "")

	v.SetDefault("pomodoro.work_minutes", 25)
	v.SetDefault("pomodoro.short_break_minutes", 5)
	v.SetDefault("pomodoro.long_break_minutes", 15)
	v.SetDefault("pomodoro.long_break_every", 4)

	v.SetDefault("notify.lead_minutes", 30)
	v.SetDefault("notify.snooze_minutes", 10)
	v.SetDefault("notify.desktop", false)

	v.SetDefault("query.cache_size", 128)
	v.SetDefault("query.cache_ttl", "30s")

	v.SetDefault("scheduler.buffer", 64)

	v.SetDefault("web.enabled", false)
	v.SetDefault("web.addr", "127.0.0.1:8787")
	v.SetDefault("web.shutdown_timeout", "5s")
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".taskdesk")
	}
	return ".taskdesk"
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.User) == "" {
		return errors.New("config: app.user is required")
	}
	if c.Pomodoro.WorkMinutes <= 0 || c.Pomodoro.ShortBreakMinutes <= 0 || c.Pomodoro.LongBreakMinutes <= 0 {
		return errors.New("config: pomodoro durations must be positive")
	}
	if c.Pomodoro.LongBreakEvery <= 0 {
		return errors.New("config: pomodoro.long_break_every must be positive")
	}
	if c.Notify.LeadMinutes <= 0 {
		return errors.New("config: notify.lead_minutes must be positive")
	}
	if c.Scheduler.Buffer <= 0 {
		return errors.New("config: scheduler.buffer must be positive")
	}
	if c.Web.Enabled && strings.TrimSpace(c.Web.Addr) == "" {
		return errors.New("config: web.addr is required when web is enabled")
	}
	return nil
}
