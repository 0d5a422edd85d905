package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// decodeStrict fills cfg from a config file. YAML is re-encoded as JSON first
// so both formats share the same unknown-key check.
func decodeStrict(path string, data []byte, cfg *Config) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
		if doc == nil {
			return nil
		}
		var err error
		if data, err = json.Marshal(stringKeys(doc)); err != nil {
			return fmt.Errorf("convert yaml config: %w", err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", format, err)
	}
	return nil
}

// stringKeys rewrites nested mappings whose keys are not strings (`1: x`) so
// encoding/json accepts them.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = stringKeys(e)
		}
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = stringKeys(e)
		}
	}
	return v
}

// YAML renders the config the way it would be written to config.yaml.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// durationSetting parses a Go duration string for key. Blank or zero falls
// back to def; negative values are rejected.
func durationSetting(key, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: %q is not a duration (try 15m or 1h30m)", key, raw)
	case d < 0:
		return 0, fmt.Errorf("%s: must not be negative, got %s", key, d)
	case d == 0:
		return def, nil
	}
	return d, nil
}
