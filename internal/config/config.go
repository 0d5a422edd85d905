// Package config loads the reminder app settings from a YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const AppName = "remindme"

// DefaultSoundURL is a direct link to an MP3 file.
const DefaultSoundURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"

type Config struct {
	Notification NotificationConfig `json:"notification" yaml:"notification"`
	Alarm        AlarmConfig        `json:"alarm" yaml:"alarm"`
	Logging      LoggingConfig      `json:"logging" yaml:"logging"`
}

// NotificationConfig controls the notification collaborator.
//
// Enabled=false behaves like a denied notification permission: reminders are
// still scheduled but every notification request fails with an alert.
// Command is an optional desktop notifier argv; title and body are appended.
type NotificationConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Offset  string   `json:"offset" yaml:"offset"`
	Title   string   `json:"title" yaml:"title"`
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`
}

// AlarmConfig controls the audible alarm.
//
// Source is an http(s) URL or a local file. Player is the argv used to play
// it (the file path is appended); empty means the terminal bell.
type AlarmConfig struct {
	Offset      string   `json:"offset" yaml:"offset"`
	Ceiling     string   `json:"ceiling" yaml:"ceiling"`
	Source      string   `json:"source" yaml:"source"`
	Player      []string `json:"player,omitempty" yaml:"player,omitempty"`
	LoadTimeout string   `json:"load_timeout" yaml:"load_timeout"`
	CacheDir    string   `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Timings holds the parsed durations.
type Timings struct {
	NotifyOffset time.Duration
	AlarmOffset  time.Duration
	AlarmCeiling time.Duration
	LoadTimeout  time.Duration
}

const (
	defaultNotifyOffset = 60 * time.Minute
	defaultAlarmOffset  = 15 * time.Minute
	defaultAlarmCeiling = 60 * time.Second
	defaultLoadTimeout  = 30 * time.Second
)

func Default() Config {
	return Config{
		Notification: NotificationConfig{
			Enabled: true,
			Offset:  defaultNotifyOffset.String(),
			Title:   "Upcoming Event",
		},
		Alarm: AlarmConfig{
			Offset:      defaultAlarmOffset.String(),
			Ceiling:     defaultAlarmCeiling.String(),
			Source:      DefaultSoundURL,
			LoadTimeout: defaultLoadTimeout.String(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Dir returns the per-user directory for the app's files.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := decodeStrict(path, data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	_, err := c.Timings()
	return err
}

func (c Config) Timings() (Timings, error) {
	var (
		t   Timings
		err error
	)
	if t.NotifyOffset, err = durationSetting("notification.offset", c.Notification.Offset, defaultNotifyOffset); err != nil {
		return t, err
	}
	if t.AlarmOffset, err = durationSetting("alarm.offset", c.Alarm.Offset, defaultAlarmOffset); err != nil {
		return t, err
	}
	if t.AlarmCeiling, err = durationSetting("alarm.ceiling", c.Alarm.Ceiling, defaultAlarmCeiling); err != nil {
		return t, err
	}
	if t.LoadTimeout, err = durationSetting("alarm.load_timeout", c.Alarm.LoadTimeout, defaultLoadTimeout); err != nil {
		return t, err
	}
	return t, nil
}
