// Package config provides YAML-based configuration loading and playback
// presets for tilerules.
package config

// Config contains all tilerules configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
}

// EngineConfig defines rule engine parameters.
type EngineConfig struct {
	HistorySize int   `yaml:"history_size"`
	Seed        int64 `yaml:"seed"` // 0 keeps the scenario's seed
}

// PlaybackConfig defines viewer timing.
type PlaybackConfig struct {
	TickRate  float64     `yaml:"tick_rate"`  // ticks per second
	FrameRate float64     `yaml:"frame_rate"` // animation frames per second
	Preset    SpeedPreset `yaml:"preset"`
}

// LogConfig defines logging parameters.
type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig defines where runs and snapshots are kept.
type StorageConfig struct {
	DBPath      string `yaml:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
}
