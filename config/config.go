// Package config loads the daemon's YAML configuration and the persisted
// overlay layout / world-anchor state, mirroring the teacher's load/shd.go
// use of gopkg.in/yaml.v3 for structured config data.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is the merged result of res/config.yaml and conf.d/*.yaml,
// applied alphabetically so later files override earlier ones.
type Config struct {
	ShownScreens        map[string]bool `yaml:"shown_screens"`
	AllowSliding        bool            `yaml:"allow_sliding"`
	ScrollScale         float64         `yaml:"scroll_scale"`
	InvertScrollX       bool            `yaml:"invert_scroll_x"`
	InvertScrollY       bool            `yaml:"invert_scroll_y"`
	GrabHelpOverlayName string          `yaml:"grab_help_overlay"`
	OSC                 OSCConfig       `yaml:"osc"`
	Notifications       NotifyConfig    `yaml:"notifications"`
}

// OSCConfig holds the avatar-parameter OSC sender's endpoint.
type OSCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// NotifyConfig holds D-Bus notification-monitor tuning.
type NotifyConfig struct {
	Enabled     bool `yaml:"enabled"`
	QueueLength int  `yaml:"queue_length"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ShownScreens:        map[string]bool{},
		AllowSliding:        true,
		ScrollScale:         1,
		GrabHelpOverlayName: "grab_help",
		OSC:                 OSCConfig{Addr: "127.0.0.1:9000"},
		Notifications:       NotifyConfig{QueueLength: 10},
	}
}

// Load reads base (res/config.yaml) and then every *.yaml file under confDir
// in alphabetical order, merging each into the result. A missing base or
// confDir is not an error: Default() plus whatever files do exist is
// returned.
func Load(base string, confDir string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(base); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", base, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: reading %s: %w", base, err)
	}

	entries, err := os.ReadDir(confDir)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", confDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(confDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}
