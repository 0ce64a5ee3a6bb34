package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilerules/internal/core"
)

// ViewerKeyMap defines the key bindings of the scenario viewer. Arrow keys
// and space are forwarded to the world as rule input; the rest control
// playback.
type ViewerKeyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Space key.Binding
	Enter key.Binding

	Pause key.Binding
	Step  key.Binding
	Back  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Step, k.Back, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Space, k.Enter},
		{k.Pause, k.Step, k.Back},
		{k.Help, k.Quit},
	}
}

// DefaultViewerKeyMap returns default key bindings.
func DefaultViewerKeyMap() ViewerKeyMap {
	return ViewerKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "ArrowLeft"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "ArrowRight"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "ArrowUp"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "ArrowDown"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Space"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Enter"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Step: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "step"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "untick"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RuleKey translates a key message to the key code rules test for.
// Returns false for keys that are not forwarded to the world.
func (k ViewerKeyMap) RuleKey(msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, k.Left):
		return core.KeyArrowLeft, true
	case key.Matches(msg, k.Right):
		return core.KeyArrowRight, true
	case key.Matches(msg, k.Up):
		return core.KeyArrowUp, true
	case key.Matches(msg, k.Down):
		return core.KeyArrowDown, true
	case key.Matches(msg, k.Space):
		return core.KeySpace, true
	case key.Matches(msg, k.Enter):
		return core.KeyEnter, true
	}
	return "", false
}
