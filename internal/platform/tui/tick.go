// Package tui provides the Bubble Tea viewer for tile-rule scenarios.
// It paces engine ticks, replays each tick's animation frames and forwards
// keys and clicks to the world as rule input.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation tick.
type TickMsg time.Time

// FrameMsg advances animation playback. Gen ties it to the tick that
// scheduled it so frames of a superseded tick are dropped.
type FrameMsg struct {
	Gen int
}

// tickCmd returns a Bubble Tea command that sends a tick message after d.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameCmd returns a command that sends the next frame message after d.
func frameCmd(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return FrameMsg{Gen: gen}
	})
}
