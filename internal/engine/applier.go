package engine

import (
	"fmt"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// apply runs the rule's actions in order against the tick state. Each
// action sees the effects of the ones before it. mapping binds rule actor
// ids to stage actor ids; created actors are added to it under their rule
// id.
func (ts *tickState) apply(me *world.Actor, rule *world.Rule, mapping map[string]string) error {
	origin := me.Position
	bound := make(map[string]string, len(mapping))
	for k, v := range mapping {
		bound[k] = v
	}
	lk := Lookup{
		Globals:    ts.globals,
		Characters: ts.chars,
		Actor: func(id string) (*world.Actor, bool) {
			sid, ok := bound[id]
			if !ok {
				return nil, false
			}
			return ts.stage.Actors.Get(sid)
		},
		Logger: ts.e.logger,
	}

	for i, act := range rule.Actions {
		if err := ts.applyAction(i, act, origin, bound, lk); err != nil {
			return actionError(rule.ID, i, err)
		}
	}
	return nil
}

func (ts *tickState) applyAction(i int, act world.Action, origin core.Position, bound map[string]string, lk Lookup) error {
	bounds := ts.stage.Bounds()

	if create, ok := act.(*world.CreateAction); ok {
		pos, ok := core.WrapPosition(origin.Add(create.Offset), bounds)
		if !ok {
			return nil
		}
		id := create.Actor.ID
		if ts.createIDs {
			id = ts.e.ids.NewID(ts.rng)
		}
		created := &world.Actor{
			ID:             id,
			CharacterID:    create.Actor.CharacterID,
			Position:       pos,
			Appearance:     create.Actor.Appearance,
			Transform:      create.Actor.Transform,
			VariableValues: make(map[string]string),
		}
		if created.Appearance == "" {
			if ch, ok := ts.character(created.CharacterID); ok {
				created.Appearance = ch.DefaultAppearance()
			}
		}
		ts.stage.Actors.Put(created)
		bound[create.Actor.ID] = id
		ts.emit(created, false, create.Animation, i)
		return nil
	}

	if g, ok := act.(*world.GlobalAction); ok {
		v, err := ResolveValue(g.Value, lk, "")
		if err != nil {
			return err
		}
		existing, exists := ts.globals[g.Global]
		if !exists {
			existing = world.Global{ID: g.Global, Name: g.Global}
		}
		result, err := ApplyVariableOperation(existing.Value, g.Operation, v.S)
		if err != nil {
			return err
		}
		existing.Value = result
		ts.globals[g.Global] = existing
		return nil
	}

	target, ok := ts.stage.Actors.Get(bound[world.ActionActorID(act)])
	if !ok {
		// Deleted by an earlier action or rule.
		return nil
	}
	updated := target.Clone()

	switch a := act.(type) {
	case *world.MoveAction:
		var dest core.Position
		if a.Delta != nil {
			dest = target.Position.Add(*a.Delta)
		} else {
			dest = origin.Add(*a.Offset)
		}
		pos, ok := core.WrapPosition(dest, bounds)
		if !ok {
			return nil // can't move off the edge
		}
		updated.Position = pos

	case *world.DeleteAction:
		ts.stage.Actors.Delete(target.ID)
		ts.emit(updated, true, a.Animation, i)
		return nil

	case *world.AppearanceAction:
		v, err := ResolveValue(a.Value, lk, "")
		if err != nil {
			return err
		}
		if v.Null {
			ts.e.logger.Warn("appearance value is null, action skipped", "actor", target.ID, "action", i)
			return nil
		}
		updated.Appearance = v.S

	case *world.TransformAction:
		v, err := ResolveValue(a.Value, lk, "")
		if err != nil {
			return err
		}
		operand := core.Identity
		if !v.Null {
			operand = core.Transform(v.S)
		}
		t, err := ApplyTransformOperation(target.Transform, a.Operation, operand)
		if err != nil {
			return err
		}
		updated.Transform = t

	case *world.VariableAction:
		v, err := ResolveValue(a.Value, lk, "")
		if err != nil {
			return err
		}
		if v.Null && (a.Operation == world.OpSet || a.Operation == "") {
			// Setting null drops the override so the declared default shows.
			delete(updated.VariableValues, a.Variable)
			break
		}
		ch, _ := ts.character(target.CharacterID)
		existing := VariableValue(target, ch, a.Variable, "")
		result, err := ApplyVariableOperation(existing.S, a.Operation, v.S)
		if err != nil {
			return err
		}
		updated.VariableValues[a.Variable] = result

	default:
		return fmt.Errorf("%w: %v", ErrUnknownValue, world.UnhandledVariant(act))
	}

	ts.stage.Actors.Put(updated)
	ts.emit(updated, false, world.ActionAnimation(act), i)
	return nil
}

// emit buffers the post-action snapshot for animation playback.
func (ts *tickState) emit(a *world.Actor, deleted bool, style world.AnimationStyle, index int) {
	switch {
	case style == world.AnimationSkip:
		ts.frames.Fold(a, deleted, index)
	case deleted:
		ts.frames.PushDeleted(a, index)
	default:
		ts.frames.Push(a, index)
	}
}
