package config

import (
	_ "embed"
)

//go:embed defaults/tilerules.yaml
var defaultYAML []byte

// DefaultConfig returns the hardcoded default configuration.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			HistorySize: 20,
			Seed:        0,
		},
		Playback: PlaybackConfig{
			TickRate:  2,
			FrameRate: 12,
			Preset:    PresetCustom,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Storage: StorageConfig{
			DBPath:      "tilerules.db",
			SnapshotDir: "snapshots",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
