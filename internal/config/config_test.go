package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "go.yaml.in/yaml/v3"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefault_Timings(t *testing.T) {
	tm, err := Default().Timings()
	require.NoError(t, err)
	assert.Equal(t, Timings{
		NotifyOffset: time.Hour,
		AlarmOffset:  15 * time.Minute,
		AlarmCeiling: time.Minute,
		LoadTimeout:  30 * time.Second,
	}, tm)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	p := writeFile(t, "config.yaml", `
notification:
  enabled: false
  offset: 30m
  command: [notify-send, -u, critical]
alarm:
  ceiling: 2m
  source: /tmp/alarm.wav
  player: [ffplay, -nodisp, -autoexit]
logging:
  level: debug
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, "Upcoming Event", cfg.Notification.Title)
	assert.Equal(t, []string{"notify-send", "-u", "critical"}, cfg.Notification.Command)
	assert.Equal(t, "/tmp/alarm.wav", cfg.Alarm.Source)
	assert.Equal(t, []string{"ffplay", "-nodisp", "-autoexit"}, cfg.Alarm.Player)
	assert.Equal(t, "debug", cfg.Logging.Level)

	tm, err := cfg.Timings()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, tm.NotifyOffset)
	assert.Equal(t, 15*time.Minute, tm.AlarmOffset)
	assert.Equal(t, 2*time.Minute, tm.AlarmCeiling)
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "config.json", `{"alarm": {"offset": "5m"}}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	tm, err := cfg.Timings()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, tm.AlarmOffset)
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", "# nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"unknown key", "c.yaml", "alarm:\n  volume: 11\n", "unknown field"},
		{"bad duration", "c.yaml", "alarm:\n  offset: soon\n", `alarm.offset: "soon" is not a duration`},
		{"negative duration", "c.yaml", "notification:\n  offset: -5m\n", "notification.offset: must not be negative"},
		{"broken yaml", "c.yaml", "alarm: [\n", "parse yaml config"},
		{"broken json", "c.json", "{", "decode json config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDurationSetting(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Second},
		{"0s", time.Second},
		{" 90s ", 90 * time.Second},
		{"1h30m", 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := durationSetting("alarm.ceiling", tt.raw, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestLoad_YAMLNonStringKeysRejected(t *testing.T) {
	_, err := Load(writeFile(t, "c.yaml", "alarm:\n  1: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestYAML_RoundTrip(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, Default(), back)
}
