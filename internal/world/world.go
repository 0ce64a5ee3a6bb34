package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/tilerules/internal/core"
)

// Reserved global ids maintained by the engine and the shell.
const (
	GlobalClick         = "click"
	GlobalKeypress      = "keypress"
	GlobalSelectedStage = "selectedStageId"
)

// ErrNoStage is returned when the selected stage does not exist.
var ErrNoStage = errors.New("world: no current stage")

// Global is a named world-level variable.
type Global struct {
	ID    string
	Name  string
	Value string
}

// Stage is a grid of actors.
type Stage struct {
	ID     string
	Name   string
	Width  int
	Height int
	WrapX  bool
	WrapY  bool
	Actors *ActorSet
}

// Bounds returns the stage's dimensions and wrap flags.
func (s *Stage) Bounds() core.Bounds {
	return core.Bounds{Width: s.Width, Height: s.Height, WrapX: s.WrapX, WrapY: s.WrapY}
}

// Clone returns a copy of the stage sharing actor pointers.
func (s *Stage) Clone() *Stage {
	clone := *s
	clone.Actors = s.Actors.Clone()
	return &clone
}

// Frame is one animation sub-step of a tick: a full actor snapshot.
type Frame struct {
	ID     int
	Actors map[string]Actor
}

// HistoryEntry captures the state before a committed tick.
type HistoryEntry struct {
	Tick                 uint64
	StageID              string
	Actors               *ActorSet
	Globals              map[string]Global
	Input                core.Input
	EvaluatedRuleDetails map[string]map[string]NodeResult
}

// World is the full simulation state.
type World struct {
	ID                   string
	Stages               map[string]*Stage
	Globals              map[string]Global
	Input                core.Input
	History              []HistoryEntry
	EvaluatedRuleDetails map[string]map[string]NodeResult
	EvaluatedTickFrames  []Frame
	Tick                 uint64
	Seed                 int64
	NextFrameID          int
}

// New creates a world holding a single selected stage.
func New(id string, stage *Stage) World {
	w := World{
		ID:                   id,
		Stages:               map[string]*Stage{stage.ID: stage},
		Globals:              make(map[string]Global),
		Input:                core.NewInput(),
		EvaluatedRuleDetails: make(map[string]map[string]NodeResult),
	}
	EnsureReservedGlobals(&w)
	w.SetGlobal(GlobalSelectedStage, stage.ID)
	return w
}

// EnsureReservedGlobals creates the click, keypress and selectedStageId
// globals when missing. An unset stage selection picks the first stage id.
func EnsureReservedGlobals(w *World) {
	if w.Globals == nil {
		w.Globals = make(map[string]Global)
	}
	reserved := []Global{
		{ID: GlobalClick, Name: "Clicked Actor"},
		{ID: GlobalKeypress, Name: "Key Pressed"},
		{ID: GlobalSelectedStage, Name: "Current Stage"},
	}
	for _, g := range reserved {
		if _, ok := w.Globals[g.ID]; !ok {
			w.Globals[g.ID] = g
		}
	}
	if w.Globals[GlobalSelectedStage].Value == "" {
		if ids := w.StageIDs(); len(ids) > 0 {
			w.SetGlobal(GlobalSelectedStage, ids[0])
		}
	}
}

// StageIDs returns the stage ids in sorted order.
func (w *World) StageIDs() []string {
	ids := make([]string, 0, len(w.Stages))
	for id := range w.Stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CurrentStage returns the stage named by the selectedStageId global.
func (w *World) CurrentStage() (*Stage, error) {
	id := w.Globals[GlobalSelectedStage].Value
	stage, ok := w.Stages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoStage, id)
	}
	return stage, nil
}

// GlobalValue returns a global's value and whether it exists.
func (w *World) GlobalValue(id string) (string, bool) {
	g, ok := w.Globals[id]
	return g.Value, ok
}

// SetGlobal sets a global's value, creating it when missing.
func (w *World) SetGlobal(id, value string) {
	if w.Globals == nil {
		w.Globals = make(map[string]Global)
	}
	g, ok := w.Globals[id]
	if !ok {
		g = Global{ID: id, Name: id}
	}
	g.Value = value
	w.Globals[id] = g
}

// Clone returns a copy of the world that shares no mutable maps with w.
// Actors are shared by pointer and must be replaced, not edited.
func (w World) Clone() World {
	clone := w
	clone.Stages = make(map[string]*Stage, len(w.Stages))
	for id, s := range w.Stages {
		clone.Stages[id] = s.Clone()
	}
	clone.Globals = CloneGlobals(w.Globals)
	clone.Input = w.Input.Clone()
	clone.History = append([]HistoryEntry(nil), w.History...)
	clone.EvaluatedRuleDetails = CloneDetails(w.EvaluatedRuleDetails)
	clone.EvaluatedTickFrames = append([]Frame(nil), w.EvaluatedTickFrames...)
	return clone
}

// CloneGlobals copies a globals map.
func CloneGlobals(globals map[string]Global) map[string]Global {
	out := make(map[string]Global, len(globals))
	for k, v := range globals {
		out[k] = v
	}
	return out
}

// CloneDetails copies the outer and per-actor maps of evaluation details.
// Evaluations themselves are immutable once recorded.
func CloneDetails(details map[string]map[string]NodeResult) map[string]map[string]NodeResult {
	out := make(map[string]map[string]NodeResult, len(details))
	for actorID, nodes := range details {
		inner := make(map[string]NodeResult, len(nodes))
		for nodeID, r := range nodes {
			inner[nodeID] = r
		}
		out[actorID] = inner
	}
	return out
}
