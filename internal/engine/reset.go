package engine

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// PreviewStageID is the id of the stage ResetForRule builds.
const PreviewStageID = "preview"

// ResetOptions controls ResetForRule.
type ResetOptions struct {
	// Offset is where the main actor is placed. Template actors keep their
	// position relative to it.
	Offset core.Position
	// ApplyActions runs the rule's actions once on the built stage, giving
	// the rule's "after" state.
	ApplyActions bool
	// Globals seeds the preview world, for rules that read globals.
	Globals map[string]world.Global
}

// DefaultOffset places a rule's extent at the top-left of its preview stage.
func DefaultOffset(rule *world.Rule) core.Position {
	return core.Pos(-rule.Extent.XMin, -rule.Extent.YMin)
}

// ResetForRule builds a single-stage world holding only the rule's template
// actors, optionally with the rule's actions applied once. Created actors
// keep their template ids so editors can refer to them.
func (e *Engine) ResetForRule(rule *world.Rule, chars world.Characters, opts ResetOptions) (world.World, error) {
	if err := validateRule(rule); err != nil {
		return world.World{}, err
	}

	off := opts.Offset
	stage := &world.Stage{
		ID:     PreviewStageID,
		Name:   rule.Name,
		Width:  core.Max(off.X+rule.Extent.XMax+1, 1),
		Height: core.Max(off.Y+rule.Extent.YMax+1, 1),
		Actors: world.NewActorSet(),
	}
	for _, t := range rule.Actors.All() {
		a := t.Clone()
		a.Position = t.Position.Add(off)
		if _, ok := core.WrapPosition(a.Position, stage.Bounds()); !ok {
			e.logger.Warn("template actor outside preview stage", "rule", rule.ID, "actor", a.ID, "position", a.Position)
			continue
		}
		stage.Actors.Put(a)
	}

	w := world.New(PreviewStageID, stage)
	for id, g := range opts.Globals {
		w.Globals[id] = g
	}
	w.SetGlobal(world.GlobalSelectedStage, PreviewStageID)

	if !opts.ApplyActions {
		w.EvaluatedTickFrames = []world.Frame{{ID: w.NextFrameID, Actors: stage.Actors.Snapshot()}}
		w.NextFrameID++
		return w, nil
	}

	me, ok := stage.Actors.Get(rule.MainActorID)
	if !ok {
		return world.World{}, fmt.Errorf("engine: reset for rule %q: main actor is off the preview stage", rule.ID)
	}
	mapping := make(map[string]string, stage.Actors.Len())
	for _, id := range stage.Actors.IDs() {
		mapping[id] = id
	}

	ts := &tickState{
		e:       e,
		chars:   chars,
		stage:   stage,
		globals: w.Globals,
		input:   w.Input,
		details: w.EvaluatedRuleDetails,
		frames:  NewFrameAccumulator(stage.Actors),
		rng:     rand.New(rand.NewSource(tickSeed(w.Seed, w.Tick))),
	}
	if err := ts.apply(me, rule, mapping); err != nil {
		return world.World{}, err
	}
	w.EvaluatedTickFrames = ts.frames.Frames(w.NextFrameID)
	w.NextFrameID += len(w.EvaluatedTickFrames)
	return w, nil
}
