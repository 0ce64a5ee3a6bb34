package config

import "time"

// SpeedPreset represents a named playback speed.
type SpeedPreset string

const (
	PresetSlow   SpeedPreset = "slow"
	PresetNormal SpeedPreset = "normal"
	PresetFast   SpeedPreset = "fast"
	PresetCustom SpeedPreset = "custom" // keep the configured rates
)

// Presets lists the selectable presets.
var Presets = []SpeedPreset{PresetSlow, PresetNormal, PresetFast, PresetCustom}

// Valid reports whether p is a known preset.
func (p SpeedPreset) Valid() bool {
	for _, known := range Presets {
		if p == known {
			return true
		}
	}
	return false
}

// ApplyPreset modifies the playback rates based on a speed preset.
func ApplyPreset(cfg *Config, preset SpeedPreset) {
	switch preset {
	case PresetSlow:
		cfg.Playback.TickRate = 1
		cfg.Playback.FrameRate = 8
	case PresetNormal:
		cfg.Playback.TickRate = 2
		cfg.Playback.FrameRate = 12
	case PresetFast:
		cfg.Playback.TickRate = 6
		cfg.Playback.FrameRate = 30
	}
	if preset != "" {
		cfg.Playback.Preset = preset
	}
}

// Pacing converts playback rates into timer intervals.
type Pacing struct {
	cfg PlaybackConfig
}

// NewPacing creates pacing for the given playback config.
func NewPacing(cfg PlaybackConfig) Pacing {
	return Pacing{cfg: cfg}
}

// TickInterval returns the time between simulation ticks.
func (p Pacing) TickInterval() time.Duration {
	return interval(p.cfg.TickRate, 2)
}

// FrameInterval returns the time between animation frames.
func (p Pacing) FrameInterval() time.Duration {
	return interval(p.cfg.FrameRate, 12)
}

// FrameBudget returns how many frames of a tick can play before the next
// tick is due. Longer frame lists are sped up to fit.
func (p Pacing) FrameBudget() int {
	n := int(p.TickInterval() / p.FrameInterval())
	if n < 1 {
		return 1
	}
	return n
}

func interval(rate, fallback float64) time.Duration {
	if rate <= 0 {
		rate = fallback
	}
	return time.Duration(float64(time.Second) / rate)
}
