package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the config directories.
const FileName = "tilerules.yaml"

// Load loads the tilerules configuration.
// Search order: customPath -> ~/.tilerules/configs/tilerules.yaml -> ./configs/tilerules.yaml -> embedded default
// Values missing from a file keep their defaults.
func Load(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return finish(cfg)
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return finish(cfg)
			}
			cfg = DefaultConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return finish(cfg)
		}
		cfg = DefaultConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return finish(cfg)
}

// finish applies the playback preset and fills zero values.
func finish(cfg Config) (Config, error) {
	if cfg.Playback.Preset != "" && !cfg.Playback.Preset.Valid() {
		return cfg, fmt.Errorf("config: unknown playback preset %q", cfg.Playback.Preset)
	}
	ApplyPreset(&cfg, cfg.Playback.Preset)

	def := DefaultConfig()
	if cfg.Engine.HistorySize <= 0 {
		cfg.Engine.HistorySize = def.Engine.HistorySize
	}
	if cfg.Playback.TickRate <= 0 {
		cfg.Playback.TickRate = def.Playback.TickRate
	}
	if cfg.Playback.FrameRate <= 0 {
		cfg.Playback.FrameRate = def.Playback.FrameRate
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	return cfg, nil
}

// Dir returns the tilerules home directory, or empty if home is unavailable.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tilerules")
}

// ResolvePath makes a relative storage path absolute under the tilerules
// home directory. Absolute paths are returned unchanged.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if dir := Dir(); dir != "" {
		return filepath.Join(dir, p)
	}
	return p
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}
