package core

import (
	"sort"
	"strings"
)

// Key codes used by key-triggered rule groups. The names follow the DOM
// KeyboardEvent.code convention authored content is written against.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeySpace      = "Space"
	KeyEnter      = "Enter"
)

// Input is the input state for a single tick: which keys are held and which
// actors were clicked.
type Input struct {
	Keys   map[string]bool `json:"keys" yaml:"keys"`
	Clicks map[string]bool `json:"clicks" yaml:"clicks"`
}

// NewInput creates an empty input state.
func NewInput() Input {
	return Input{
		Keys:   make(map[string]bool),
		Clicks: make(map[string]bool),
	}
}

// PressKey marks a key as held for this tick.
func (in *Input) PressKey(code string) {
	if in.Keys == nil {
		in.Keys = make(map[string]bool)
	}
	in.Keys[code] = true
}

// Click marks an actor as clicked for this tick.
func (in *Input) Click(actorID string) {
	if in.Clicks == nil {
		in.Clicks = make(map[string]bool)
	}
	in.Clicks[actorID] = true
}

// HasKey returns true if the key is held.
func (in Input) HasKey(code string) bool {
	return in.Keys[code]
}

// Clicked returns true if the actor was clicked.
func (in Input) Clicked(actorID string) bool {
	return in.Clicks[actorID]
}

// HeldKeys returns the held key codes in sorted order.
func (in Input) HeldKeys() []string {
	return truthyKeys(in.Keys)
}

// ClickedIDs returns the clicked actor ids in sorted order.
func (in Input) ClickedIDs() []string {
	return truthyKeys(in.Clicks)
}

// KeypressValue is the comma-joined held key list stored in the keypress
// global.
func (in Input) KeypressValue() string {
	return strings.Join(in.HeldKeys(), ",")
}

// ClickValue is the comma-joined clicked actor list stored in the click
// global.
func (in Input) ClickValue() string {
	return strings.Join(in.ClickedIDs(), ",")
}

// Empty returns true if nothing is held or clicked.
func (in Input) Empty() bool {
	return len(in.HeldKeys()) == 0 && len(in.ClickedIDs()) == 0
}

// Clone creates a deep copy of this input state.
func (in Input) Clone() Input {
	clone := NewInput()
	for k, v := range in.Keys {
		clone.Keys[k] = v
	}
	for k, v := range in.Clicks {
		clone.Clicks[k] = v
	}
	return clone
}

func truthyKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
