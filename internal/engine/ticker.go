package engine

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// tickState is the working copy a tick mutates. Every map in it is a fresh
// copy of the input world's data.
type tickState struct {
	e         *Engine
	chars     world.Characters
	stage     *world.Stage
	globals   map[string]world.Global
	input     core.Input
	details   map[string]map[string]world.NodeResult
	frames    *FrameAccumulator
	rng       *rand.Rand
	createIDs bool // false in preview mode: created actors keep template ids
	fired     bool
}

// tickSeed derives the random seed of a tick so each tick of a world is
// reproducible on its own.
func tickSeed(seed int64, tick uint64) int64 {
	return seed*1_000_003 + int64(tick)
}

func (ts *tickState) character(id string) (*world.Character, bool) {
	ch, ok := ts.chars[id]
	return ch, ok
}

func (ts *tickState) filledPoints(a *world.Actor) []core.Position {
	return ts.e.ActorFilledPoints(a, ts.chars)
}

func (ts *tickState) record(actorID, nodeID string, r world.NodeResult) {
	nodes, ok := ts.details[actorID]
	if !ok {
		nodes = make(map[string]world.NodeResult)
		ts.details[actorID] = nodes
	}
	nodes[nodeID] = r
}

// Tick advances the world by one step and returns the new world. The
// caller's world is not modified. A *RuleError aborts the tick.
//
// Steps:
//  1. Publish the input as the keypress and click globals
//  2. Walk each actor's rule tree in stage order; actors created during the
//     tick wait for the next one
//  3. Replay buffered mutations as frames
//  4. Push a history entry if any rule fired, then clear the input
func (e *Engine) Tick(w world.World, chars world.Characters) (world.World, error) {
	next := w.Clone()
	world.EnsureReservedGlobals(&next)

	stage, err := next.CurrentStage()
	if err != nil {
		return world.World{}, fmt.Errorf("engine: tick: %w", err)
	}
	before := w.Stages[stage.ID]

	next.SetGlobal(world.GlobalKeypress, next.Input.KeypressValue())
	next.SetGlobal(world.GlobalClick, next.Input.ClickValue())
	if next.EvaluatedRuleDetails == nil {
		next.EvaluatedRuleDetails = make(map[string]map[string]world.NodeResult)
	}

	ts := &tickState{
		e:         e,
		chars:     chars,
		stage:     stage,
		globals:   next.Globals,
		input:     next.Input,
		details:   next.EvaluatedRuleDetails,
		frames:    NewFrameAccumulator(stage.Actors),
		rng:       rand.New(rand.NewSource(tickSeed(w.Seed, w.Tick))),
		createIDs: true,
	}

	for _, id := range stage.Actors.IDs() {
		me, ok := stage.Actors.Get(id)
		if !ok {
			continue // deleted earlier this tick
		}
		ch, ok := ts.character(me.CharacterID)
		if !ok {
			e.logger.Warn("character not found, actor skipped", "actor", me.ID, "character", me.CharacterID)
			continue
		}
		if _, err := ts.runFirst(id, ch.Rules); err != nil {
			return world.World{}, err
		}
	}

	// Drop details of actors that no longer exist.
	for actorID := range ts.details {
		if !stage.Actors.Has(actorID) {
			delete(ts.details, actorID)
		}
	}

	next.EvaluatedTickFrames = ts.frames.Frames(next.NextFrameID)
	next.NextFrameID += len(next.EvaluatedTickFrames)

	if ts.fired {
		entry := world.HistoryEntry{
			Tick:                 w.Tick,
			StageID:              stage.ID,
			Globals:              world.CloneGlobals(w.Globals),
			Input:                w.Input.Clone(),
			EvaluatedRuleDetails: world.CloneDetails(w.EvaluatedRuleDetails),
		}
		if before != nil {
			entry.Actors = before.Actors.Clone()
		} else {
			entry.Actors = world.NewActorSet()
		}
		next.History = append(next.History, entry)
		if over := len(next.History) - e.historySize; over > 0 {
			next.History = append([]world.HistoryEntry(nil), next.History[over:]...)
		}
	}

	next.Input = core.NewInput()
	next.Tick++
	return next, nil
}

// Untick restores the state saved by the most recent tick that fired a rule.
// With no history the world is returned unchanged.
func (e *Engine) Untick(w world.World) world.World {
	next := w.Clone()
	if len(next.History) == 0 {
		return next
	}
	entry := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]

	if stage, ok := next.Stages[entry.StageID]; ok {
		stage.Actors = entry.Actors.Clone()
	} else {
		e.logger.Warn("history stage not found", "stage", entry.StageID)
	}
	next.Globals = world.CloneGlobals(entry.Globals)
	next.Input = entry.Input.Clone()
	next.EvaluatedRuleDetails = world.CloneDetails(entry.EvaluatedRuleDetails)
	next.Tick = entry.Tick

	if stage, err := next.CurrentStage(); err == nil {
		next.EvaluatedTickFrames = []world.Frame{{ID: next.NextFrameID, Actors: stage.Actors.Snapshot()}}
		next.NextFrameID++
	} else {
		next.EvaluatedTickFrames = nil
	}
	return next
}

// Fired reports whether the tick that produced w fired a rule. A firing tick
// leaves a history entry stamped with its own tick number.
func Fired(w world.World) bool {
	n := len(w.History)
	return n > 0 && w.Tick > 0 && w.History[n-1].Tick == w.Tick-1
}
