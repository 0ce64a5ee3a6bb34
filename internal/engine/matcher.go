package engine

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// ruleMatch is the state of one matcher run: an acting actor against a rule.
type ruleMatch struct {
	ts      *tickState
	me      *world.Actor
	rule    *world.Rule
	bounds  core.Bounds
	eval    *world.RuleEvaluation
	mapping map[string]string // rule actor id -> stage actor id
	used    map[string]bool   // stage actors already bound
	points  map[string][]core.Position
}

// match decides whether rule applies around me. The evaluation is complete
// even when the match fails. On success the returned mapping binds every
// matched rule actor to its stage actor.
//
// Matching is greedy: within a cell stage actors are taken in stage order and
// bound to the first fitting rule actor, and nothing is revisited. Two
// same-character actors with conditions that only one ordering satisfies can
// therefore fail to match.
func (ts *tickState) match(me *world.Actor, rule *world.Rule) (*world.RuleEvaluation, map[string]string, error) {
	if err := validateRule(rule); err != nil {
		return nil, nil, err
	}

	m := &ruleMatch{
		ts:     ts,
		me:     me,
		rule:   rule,
		bounds: ts.stage.Bounds(),
		eval: &world.RuleEvaluation{
			RuleID:  rule.ID,
			ActorID: me.ID,
			Cells:   make(map[core.Position]world.CellResult),
		},
		mapping: map[string]string{rule.MainActorID: me.ID},
		used:    map[string]bool{me.ID: true},
		points:  make(map[string][]core.Position),
	}

	if err := m.scanExtent(); err != nil {
		return nil, nil, err
	}
	m.checkRequired()
	m.checkOffsets()
	if err := m.checkConditions(); err != nil {
		return nil, nil, err
	}

	m.eval.Passed = m.eval.Failure == world.FailureNone
	m.eval.StageActorForID = make(map[string]string, len(m.mapping))
	for k, v := range m.mapping {
		m.eval.StageActorForID[k] = v
	}
	if !m.eval.Passed {
		return m.eval, nil, nil
	}
	return m.eval, m.mapping, nil
}

func (m *ruleMatch) fail(kind world.FailureKind, format string, args ...any) {
	if m.eval.Failure != world.FailureNone {
		return
	}
	m.eval.Failure = kind
	m.eval.Message = fmt.Sprintf(format, args...)
}

func failCell(cell *world.CellResult, kind world.FailureKind) {
	if cell.Failure == world.FailureNone {
		cell.Failure = kind
	}
}

func (m *ruleMatch) stagePoints(a *world.Actor) []core.Position {
	if pts, ok := m.points[a.ID]; ok {
		return pts
	}
	pts := m.ts.filledPoints(a)
	m.points[a.ID] = pts
	return pts
}

func (m *ruleMatch) templatePoints(t *world.Actor) []core.Position {
	ch, _ := m.ts.character(t.CharacterID)
	return FilledPoints(t, ch)
}

// scanExtent walks every extent cell and binds stage actors to rule actors.
func (m *ruleMatch) scanExtent() error {
	for _, local := range m.rule.Extent.Cells() {
		cell := world.CellResult{Local: local, Ignored: m.rule.Extent.Ignored[local]}

		// 1. Offscreen cells fail the match but scanning continues
		unwrapped := m.me.Position.Add(local)
		wrapped, ok := core.WrapPosition(unwrapped, m.bounds)
		if !ok {
			cell.Offscreen = true
			failCell(&cell, world.FailureOffscreen)
			m.fail(world.FailureOffscreen, "cell %s is offscreen", local)
			m.eval.Cells[local] = cell
			continue
		}
		cell.StagePosition = wrapped

		// 2. Unbound actors on both sides of the cell
		var stageHere []*world.Actor
		for _, a := range m.ts.stage.Actors.All() {
			if m.used[a.ID] {
				continue
			}
			pts := m.stagePoints(a)
			if covers(pts, unwrapped) || covers(pts, wrapped) {
				stageHere = append(stageHere, a)
				cell.StageActorIDs = append(cell.StageActorIDs, a.ID)
			}
		}
		var rulesHere []*world.Actor
		for _, t := range m.rule.Actors.All() {
			if _, bound := m.mapping[t.ID]; bound {
				continue
			}
			if covers(m.templatePoints(t), local) {
				rulesHere = append(rulesHere, t)
				cell.RuleActorIDs = append(cell.RuleActorIDs, t.ID)
			}
		}
		if len(stageHere) != len(rulesHere) && !cell.Ignored {
			failCell(&cell, world.FailureActorCount)
			m.fail(world.FailureActorCount, "cell %s has %d actors, rule expects %d", local, len(stageHere), len(rulesHere))
		}

		// 3. Character and conditions first, then character alone
		for _, s := range stageHere {
			for _, t := range rulesHere {
				if m.isBound(t.ID) || t.CharacterID != s.CharacterID {
					continue
				}
				ok, err := m.conditionsHold(t, s)
				if err != nil {
					return err
				}
				if ok {
					m.bind(t.ID, s.ID)
					break
				}
			}
		}
		for _, s := range stageHere {
			if m.used[s.ID] {
				continue
			}
			for _, t := range rulesHere {
				if !m.isBound(t.ID) && t.CharacterID == s.CharacterID {
					m.bind(t.ID, s.ID)
					break
				}
			}
		}

		for _, s := range stageHere {
			if !m.used[s.ID] && !cell.Ignored {
				failCell(&cell, world.FailureActorMismatch)
				m.fail(world.FailureActorMismatch, "actor %s at %s matches no rule actor", s.ID, wrapped)
			}
		}
		for _, t := range rulesHere {
			if !m.isBound(t.ID) {
				failCell(&cell, world.FailureActorMismatch)
				m.fail(world.FailureActorMismatch, "rule actor %s not found at %s", t.ID, wrapped)
			}
		}

		cell.Passed = cell.Failure == world.FailureNone
		m.eval.Cells[local] = cell
	}
	return nil
}

func (m *ruleMatch) isBound(ruleActorID string) bool {
	_, ok := m.mapping[ruleActorID]
	return ok
}

func (m *ruleMatch) bind(ruleActorID, stageActorID string) {
	m.mapping[ruleActorID] = stageActorID
	m.used[stageActorID] = true
}

// conditionsHold checks the enabled conditions that mention template t,
// assuming t is bound to candidate. Other unbound rule actors are looked up
// by position without evaluating their own conditions.
func (m *ruleMatch) conditionsHold(t, candidate *world.Actor) (bool, error) {
	lk := m.lookup(func(id string) (*world.Actor, bool) {
		if id == t.ID {
			return candidate, true
		}
		if sid, ok := m.mapping[id]; ok {
			return m.ts.stage.Actors.Get(sid)
		}
		return m.actorAtRulePosition(id)
	})

	for _, c := range m.rule.Conditions {
		if !c.Enabled || !mentions(c, t.ID) {
			continue
		}
		left, err := ResolveValue(c.Left, lk, c.Comparator)
		if err != nil {
			return false, conditionError(m.rule.ID, c.Key, err)
		}
		right, err := ResolveValue(c.Right, lk, c.Comparator)
		if err != nil {
			return false, conditionError(m.rule.ID, c.Key, err)
		}
		if !ComparatorMatches(c.Comparator, left, right) {
			return false, nil
		}
	}
	return true, nil
}

// actorAtRulePosition answers "which stage actor fills the position of rule
// actor id": the first stage actor of the same character covering it.
func (m *ruleMatch) actorAtRulePosition(id string) (*world.Actor, bool) {
	t, ok := m.rule.Actors.Get(id)
	if !ok {
		return nil, false
	}
	pos, ok := core.WrapPosition(m.me.Position.Add(t.Position), m.bounds)
	if !ok {
		return nil, false
	}
	for _, a := range m.ts.stage.Actors.All() {
		if a.CharacterID == t.CharacterID && covers(m.stagePoints(a), pos) {
			return a, true
		}
	}
	return nil, false
}

func mentions(c world.Condition, ruleActorID string) bool {
	for _, id := range append(world.ActorRefs(c.Left), world.ActorRefs(c.Right)...) {
		if id == ruleActorID {
			return true
		}
	}
	return false
}

func (m *ruleMatch) lookup(actor func(string) (*world.Actor, bool)) Lookup {
	return Lookup{
		Globals:    m.ts.globals,
		Characters: m.ts.chars,
		Actor:      actor,
		Logger:     m.ts.e.logger,
	}
}

// checkRequired verifies that actions and in-extent conditions only refer to
// bound rule actors.
func (m *ruleMatch) checkRequired() {
	created := make(map[string]bool)
	var required []string
	for _, act := range m.rule.Actions {
		switch a := act.(type) {
		case *world.CreateAction:
			created[world.ActionActorID(a)] = true
			continue
		case *world.GlobalAction:
		default:
			if id := world.ActionActorID(a); !created[id] {
				required = append(required, id)
			}
		}
		for _, id := range world.ActorRefs(world.ActionValue(act)) {
			if !created[id] {
				required = append(required, id)
			}
		}
	}
	for _, c := range m.rule.Conditions {
		if !c.Enabled {
			continue
		}
		for _, id := range append(world.ActorRefs(c.Left), world.ActorRefs(c.Right)...) {
			if m.templateInExtent(id) {
				required = append(required, id)
			}
		}
	}

	for _, id := range required {
		if !m.isBound(id) {
			m.fail(world.FailureMissingActor, "rule actor %s was not matched", id)
			return
		}
	}
}

func (m *ruleMatch) templateInExtent(id string) bool {
	t, ok := m.rule.Actors.Get(id)
	if !ok {
		return false
	}
	for _, p := range m.templatePoints(t) {
		if m.rule.Extent.Contains(p) {
			return true
		}
	}
	return false
}

// checkOffsets verifies that create and absolute move targets are on the
// stage.
func (m *ruleMatch) checkOffsets() {
	for i, act := range m.rule.Actions {
		var offset *core.Position
		switch a := act.(type) {
		case *world.CreateAction:
			offset = &a.Offset
		case *world.MoveAction:
			if a.Delta == nil {
				offset = a.Offset
			}
		}
		if offset == nil {
			continue
		}
		if _, ok := core.WrapPosition(m.me.Position.Add(*offset), m.bounds); !ok {
			m.fail(world.FailureActionOffset, "action %d targets offscreen offset %s", i, *offset)
			return
		}
	}
}

// checkConditions evaluates every enabled condition against the bound
// actors. All results are recorded; the first failure sets the reason.
func (m *ruleMatch) checkConditions() error {
	lk := m.lookup(func(id string) (*world.Actor, bool) {
		sid, ok := m.mapping[id]
		if !ok {
			return nil, false
		}
		return m.ts.stage.Actors.Get(sid)
	})

	for _, c := range m.rule.Conditions {
		if !c.Enabled {
			continue
		}
		left, err := ResolveValue(c.Left, lk, c.Comparator)
		if err != nil {
			return conditionError(m.rule.ID, c.Key, err)
		}
		right, err := ResolveValue(c.Right, lk, c.Comparator)
		if err != nil {
			return conditionError(m.rule.ID, c.Key, err)
		}
		passed := ComparatorMatches(c.Comparator, left, right)
		m.eval.Conditions = append(m.eval.Conditions, world.ConditionResult{
			Key:        c.Key,
			Comparator: c.Comparator,
			Left:       left,
			Right:      right,
			Passed:     passed,
		})
		if !passed {
			m.fail(world.FailureCondition, "condition %s failed: %s %s %s", c.Key, left, c.Comparator, right)
		}
	}
	return nil
}

// validateRule rejects rules whose actions or conditions refer to actors
// the rule does not define.
func validateRule(rule *world.Rule) error {
	if !rule.Actors.Has(rule.MainActorID) {
		return &RuleError{RuleID: rule.ID, ActionIndex: -1, Err: fmt.Errorf("%w: main actor %q", ErrUnknownActor, rule.MainActorID)}
	}

	known := func(id string, created map[string]bool) bool {
		return rule.Actors.Has(id) || created[id]
	}
	created := make(map[string]bool)
	for i, act := range rule.Actions {
		switch a := act.(type) {
		case *world.CreateAction:
			if a.Actor == nil || a.Actor.ID == "" || a.Actor.CharacterID == "" {
				return actionError(rule.ID, i, fmt.Errorf("%w: create without actor", ErrUnknownActor))
			}
			created[a.Actor.ID] = true
			continue
		case *world.MoveAction:
			if a.Delta == nil && a.Offset == nil {
				return actionError(rule.ID, i, fmt.Errorf("%w: move without delta or offset", ErrUnknownValue))
			}
		case *world.DeleteAction:
		case *world.AppearanceAction, *world.TransformAction, *world.VariableAction, *world.GlobalAction:
			if world.ActionValue(a) == nil {
				return actionError(rule.ID, i, fmt.Errorf("%w: %s action without value", ErrUnknownValue, a.Kind()))
			}
		default:
			return actionError(rule.ID, i, fmt.Errorf("%w: %v", ErrUnknownValue, world.UnhandledVariant(act)))
		}

		if _, global := act.(*world.GlobalAction); !global {
			if id := world.ActionActorID(act); !known(id, created) {
				return actionError(rule.ID, i, fmt.Errorf("%w: %q", ErrUnknownActor, id))
			}
		}
		for _, id := range world.ActorRefs(world.ActionValue(act)) {
			if !known(id, created) {
				return actionError(rule.ID, i, fmt.Errorf("%w: %q", ErrUnknownActor, id))
			}
		}
	}

	for _, c := range rule.Conditions {
		if !c.Enabled {
			continue
		}
		if c.Left == nil || c.Right == nil {
			return conditionError(rule.ID, c.Key, fmt.Errorf("%w: missing side", ErrUnknownValue))
		}
		for _, id := range append(world.ActorRefs(c.Left), world.ActorRefs(c.Right)...) {
			if !rule.Actors.Has(id) {
				return conditionError(rule.ID, c.Key, fmt.Errorf("%w: %q", ErrUnknownActor, id))
			}
		}
	}
	return nil
}

// EvaluateRule runs the matcher for one actor of the current stage without
// applying the rule. It is what rule editors use to explain a rule.
func (e *Engine) EvaluateRule(w world.World, chars world.Characters, actorID string, rule *world.Rule) (*world.RuleEvaluation, error) {
	next := w.Clone()
	world.EnsureReservedGlobals(&next)
	stage, err := next.CurrentStage()
	if err != nil {
		return nil, fmt.Errorf("engine: evaluate rule: %w", err)
	}
	me, ok := stage.Actors.Get(actorID)
	if !ok {
		return nil, fmt.Errorf("engine: evaluate rule: actor %q not on stage %q", actorID, stage.ID)
	}
	ts := &tickState{
		e:       e,
		chars:   chars,
		stage:   stage,
		globals: next.Globals,
		input:   next.Input,
		details: make(map[string]map[string]world.NodeResult),
		frames:  NewFrameAccumulator(stage.Actors),
		rng:     rand.New(rand.NewSource(tickSeed(w.Seed, w.Tick))),
	}
	eval, _, err := ts.match(me, rule)
	return eval, err
}
