package engine

import (
	"math"

	"github.com/vovakirdan/tilerules/internal/world"
)

// runFirst evaluates nodes in order and stops at the first success.
func (ts *tickState) runFirst(actorID string, nodes []world.Node) (bool, error) {
	for _, n := range nodes {
		if !ts.stage.Actors.Has(actorID) {
			return false, nil
		}
		ok, err := ts.evalNode(actorID, n)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// runAll evaluates every node and reports whether any succeeded.
func (ts *tickState) runAll(actorID string, nodes []world.Node) (bool, error) {
	passed := false
	for _, n := range nodes {
		if !ts.stage.Actors.Has(actorID) {
			break
		}
		ok, err := ts.evalNode(actorID, n)
		if err != nil {
			return false, err
		}
		passed = passed || ok
	}
	return passed, nil
}

func (ts *tickState) evalNode(actorID string, n world.Node) (bool, error) {
	switch node := n.(type) {
	case *world.EventGroup:
		ok := false
		if ts.triggered(actorID, node) {
			var err error
			if ok, err = ts.runFirst(actorID, node.Rules); err != nil {
				return false, err
			}
		}
		ts.record(actorID, node.ID, world.NodeResult{Passed: ok})
		return ok, nil

	case *world.FlowGroup:
		ok, err := ts.runFlow(actorID, node)
		if err != nil {
			return false, err
		}
		ts.record(actorID, node.ID, world.NodeResult{Passed: ok})
		return ok, nil

	case *world.Rule:
		me, exists := ts.stage.Actors.Get(actorID)
		if !exists {
			return false, nil
		}
		eval, mapping, err := ts.match(me, node)
		if err != nil {
			return false, err
		}
		ts.record(actorID, node.ID, world.NodeResult{Passed: eval.Passed, Evaluation: eval})
		if !eval.Passed {
			return false, nil
		}
		ts.fired = true
		if err := ts.apply(me, node, mapping); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, world.UnhandledVariant(n)
	}
}

func (ts *tickState) triggered(actorID string, g *world.EventGroup) bool {
	switch g.Trigger {
	case world.TriggerIdle:
		return true
	case world.TriggerKey:
		return ts.input.HasKey(g.Key)
	case world.TriggerClick:
		return ts.input.Clicked(actorID)
	}
	ts.e.logger.Warn("unknown trigger", "group", g.ID, "trigger", g.Trigger)
	return false
}

func (ts *tickState) runFlow(actorID string, g *world.FlowGroup) (bool, error) {
	switch g.Behavior {
	case world.BehaviorFirst, "":
		return ts.runFirst(actorID, g.Rules)

	case world.BehaviorRandom:
		shuffled := append([]world.Node(nil), g.Rules...)
		ts.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return ts.runFirst(actorID, shuffled)

	case world.BehaviorAll:
		return ts.runAll(actorID, g.Rules)

	case world.BehaviorLoop:
		passed := false
		for i, n := 0, ts.loopCount(actorID, g); i < n; i++ {
			ok, err := ts.runFirst(actorID, g.Rules)
			if err != nil {
				return false, err
			}
			passed = passed || ok
		}
		return passed, nil
	}
	ts.e.logger.Warn("unknown flow behavior", "group", g.ID, "behavior", g.Behavior)
	return false, nil
}

// loopCount resolves how many times a loop container repeats. A variable
// count reads the acting actor; non-numbers count as 0.
func (ts *tickState) loopCount(actorID string, g *world.FlowGroup) int {
	if g.Loop.Variable == "" {
		return clampLoop(float64(g.Loop.Constant))
	}
	me, ok := ts.stage.Actors.Get(actorID)
	if !ok {
		return 0
	}
	ch, _ := ts.character(me.CharacterID)
	v := VariableValue(me, ch, g.Loop.Variable, "")
	if v.Null {
		return 0
	}
	n := ParseNumber(v.S)
	if math.IsNaN(n) {
		return 0
	}
	if n > maxLoopCount {
		ts.e.logger.Warn("loop count capped", "group", g.ID, "count", n, "max", maxLoopCount)
	}
	return clampLoop(n)
}

func clampLoop(n float64) int {
	switch {
	case n <= 0:
		return 0
	case n > maxLoopCount:
		return maxLoopCount
	}
	return int(n)
}
