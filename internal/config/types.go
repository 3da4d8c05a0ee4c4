package config

import (
	"fmt"
	"time"

	"remindd/internal/task"
)

// Config is the daemon's whole configuration. JSON and YAML are both
// accepted; unknown keys are rejected so typos surface immediately.
//
// All durations are Go duration strings (e.g. "500ms", "5s", "1m").
type Config struct {
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
	Monitor MonitorConfig `json:"monitor"`
	Cleanup CleanupConfig `json:"cleanup"`
	Notify  NotifyConfig  `json:"notify"`
}

type StorageConfig struct {
	Path string `json:"path"`
	// BusyTimeout is a Go duration string (sqlite busy_timeout pragma).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// MonitorConfig controls the alarm tick loop.
//
// Enabled is a pointer so "omitted" (default true) is distinguishable
// from an explicit false.
type MonitorConfig struct {
	Enabled       *bool  `json:"enabled,omitempty"`
	PollInterval  string `json:"poll_interval,omitempty"`
	NotifyTimeout string `json:"notify_timeout,omitempty"`
}

// CleanupConfig controls the retention purge.
type CleanupConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
	// At is the daily run time, 24-hour "HH:MM".
	At            string `json:"at,omitempty"`
	RetentionDays int    `json:"retention_days,omitempty"`
}

type NotifyConfig struct {
	Channel    string         `json:"channel,omitempty"`
	RatePerSec int            `json:"rate_per_sec,omitempty"`
	Command    CommandConfig  `json:"command,omitempty"`
	Telegram   TelegramConfig `json:"telegram,omitempty"`
}

type CommandConfig struct {
	Path string   `json:"path,omitempty"`
	Args []string `json:"args,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
}

// Default returns the configuration used when a section is omitted.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Path: "./remindd.db", BusyTimeout: "5s"},
		Logging: LoggingConfig{Level: "info", Console: true},
		Monitor: MonitorConfig{PollInterval: "5s", NotifyTimeout: "10s"},
		Cleanup: CleanupConfig{At: "03:30", RetentionDays: 30},
		Notify:  NotifyConfig{Channel: "console", RatePerSec: 3},
	}
}

func (c *MonitorConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }
func (c *CleanupConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// Check validates everything that can be validated without touching
// the environment. The config manager runs it before committing a
// reload, so a broken edit never replaces the last good config.
func (c *Config) Check() error {
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("monitor.poll_interval", c.Monitor.PollInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("monitor.notify_timeout", c.Monitor.NotifyTimeout); err != nil {
		return err
	}
	if c.Cleanup.At != "" {
		if err := task.ValidateTime(c.Cleanup.At); err != nil {
			return fmt.Errorf("cleanup.at: %w", err)
		}
	}
	if c.Cleanup.RetentionDays < 0 {
		return fmt.Errorf("cleanup.retention_days must be >= 0")
	}
	switch c.Notify.Channel {
	case "", "console":
	case "command":
		if c.Notify.Command.Path == "" {
			return fmt.Errorf("notify.command.path is required for the command channel")
		}
	case "telegram":
		if c.Notify.Telegram.Token == "" || c.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("notify.telegram.token and chat_id are required for the telegram channel")
		}
	default:
		return fmt.Errorf("notify.channel: unknown channel %q", c.Notify.Channel)
	}
	return nil
}

// Resolved duration accessors with defaults.

func (c *Config) PollInterval() time.Duration {
	d, _ := ParseDurationOrDefault("monitor.poll_interval", c.Monitor.PollInterval, 5*time.Second)
	return d
}

func (c *Config) NotifyTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("monitor.notify_timeout", c.Monitor.NotifyTimeout, 10*time.Second)
	return d
}

func (c *Config) StorageBusyTimeout() time.Duration {
	d, _ := ParseDurationOrDefault("storage.busy_timeout", c.Storage.BusyTimeout, 5*time.Second)
	return d
}
