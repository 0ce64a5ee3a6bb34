package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	// A user or local config file may exist on the machine running the
	// tests; only compare when the embedded file was used.
	if _, err := os.Stat(filepath.Join("configs", FileName)); err == nil {
		t.Skip("local config present")
	}
	if p := userConfigPath(FileName); p != "" {
		if _, err := os.Stat(p); err == nil {
			t.Skip("user config present")
		}
	}

	expected := DefaultConfig()
	if cfg != expected {
		t.Errorf("embedded config = %+v, expected %+v", cfg, expected)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
engine:
  seed: 7
playback:
  preset: fast
storage:
  db_path: /tmp/runs.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Engine.Seed != 7 {
		t.Errorf("Seed = %d, expected 7", cfg.Engine.Seed)
	}
	if cfg.Engine.HistorySize != 20 {
		t.Errorf("HistorySize = %d, expected default 20", cfg.Engine.HistorySize)
	}
	if cfg.Playback.TickRate != 6 || cfg.Playback.FrameRate != 30 {
		t.Errorf("fast preset not applied: %+v", cfg.Playback)
	}
	if cfg.Storage.DBPath != "/tmp/runs.db" {
		t.Errorf("DBPath = %s", cfg.Storage.DBPath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %s, expected warn", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "engine: [unclosed"},
		{"unknown preset", "playback:\n  preset: warp\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPacing(t *testing.T) {
	tests := []struct {
		name          string
		playback      PlaybackConfig
		expectedTick  time.Duration
		expectedFrame time.Duration
		expectedFit   int
	}{
		{"defaults", PlaybackConfig{TickRate: 2, FrameRate: 12}, 500 * time.Millisecond, time.Second / 12, 6},
		{"zero rates fall back", PlaybackConfig{}, 500 * time.Millisecond, time.Second / 12, 6},
		{"frames slower than ticks", PlaybackConfig{TickRate: 10, FrameRate: 5}, 100 * time.Millisecond, 200 * time.Millisecond, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPacing(tc.playback)
			if got := p.TickInterval(); got != tc.expectedTick {
				t.Errorf("TickInterval() = %v, expected %v", got, tc.expectedTick)
			}
			if got := p.FrameInterval(); got != tc.expectedFrame {
				t.Errorf("FrameInterval() = %v, expected %v", got, tc.expectedFrame)
			}
			if got := p.FrameBudget(); got != tc.expectedFit {
				t.Errorf("FrameBudget() = %d, expected %d", got, tc.expectedFit)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Playback.TickRate = 3.5

	ApplyPreset(&cfg, PresetCustom)
	if cfg.Playback.TickRate != 3.5 {
		t.Errorf("custom preset changed tick rate to %v", cfg.Playback.TickRate)
	}

	ApplyPreset(&cfg, PresetSlow)
	if cfg.Playback.TickRate != 1 || cfg.Playback.Preset != PresetSlow {
		t.Errorf("slow preset not applied: %+v", cfg.Playback)
	}
}
