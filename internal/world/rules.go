package world

import (
	"fmt"

	"github.com/vovakirdan/tilerules/internal/core"
)

// Node is an element of a character's rule tree: an *EventGroup, a
// *FlowGroup or a *Rule. The set is closed; switches over Node end in a
// default that reports an unhandled variant.
type Node interface {
	NodeID() string
	node()
}

// Trigger is what wakes an event group.
type Trigger string

const (
	TriggerIdle  Trigger = "idle"
	TriggerKey   Trigger = "key"
	TriggerClick Trigger = "click"
)

// EventGroup runs its rules when its trigger fires.
type EventGroup struct {
	ID      string
	Name    string
	Trigger Trigger
	Key     string // key code for TriggerKey
	Rules   []Node
}

// Behavior selects how a flow group walks its children.
type Behavior string

const (
	BehaviorFirst  Behavior = "first"
	BehaviorRandom Behavior = "random"
	BehaviorAll    Behavior = "all"
	BehaviorLoop   Behavior = "loop"
)

// LoopCount is either a constant or the name of a variable on the acting
// actor. Variable takes precedence when set.
type LoopCount struct {
	Constant int
	Variable string
}

// FlowGroup is a container with first/random/all/loop semantics.
type FlowGroup struct {
	ID       string
	Name     string
	Behavior Behavior
	Loop     LoopCount
	Rules    []Node
}

// Extent is the inclusive rectangle, relative to the main actor, a rule
// inspects. Stage actors on Ignored cells that no template accounts for are
// tolerated.
type Extent struct {
	XMin, XMax int
	YMin, YMax int
	Ignored    map[core.Position]bool
}

// Contains reports whether the rule-local cell lies inside the extent.
func (e Extent) Contains(p core.Position) bool {
	return p.X >= e.XMin && p.X <= e.XMax && p.Y >= e.YMin && p.Y <= e.YMax
}

// Cells returns every cell of the extent, row by row.
func (e Extent) Cells() []core.Position {
	var cells []core.Position
	for y := e.YMin; y <= e.YMax; y++ {
		for x := e.XMin; x <= e.XMax; x++ {
			cells = append(cells, core.Pos(x, y))
		}
	}
	return cells
}

// Rule is a local spatial pattern, a set of conditions and an ordered list of
// actions. Template actor positions are relative to the main actor, which
// sits at the origin.
type Rule struct {
	ID          string
	Name        string
	MainActorID string
	Actors      *ActorSet
	Extent      Extent
	Conditions  []Condition
	Actions     []Action
}

func (g *EventGroup) NodeID() string { return g.ID }
func (g *FlowGroup) NodeID() string  { return g.ID }
func (r *Rule) NodeID() string       { return r.ID }

func (*EventGroup) node() {}
func (*FlowGroup) node()  {}
func (*Rule) node()       {}

// Comparator compares the two sides of a condition.
type Comparator string

const (
	CompareEqual      Comparator = "="
	CompareNotEqual   Comparator = "!="
	CompareGreaterEq  Comparator = ">="
	CompareLessEq     Comparator = "<="
	CompareGreater    Comparator = ">"
	CompareLess       Comparator = "<"
	CompareContains   Comparator = "contains"
	CompareStartsWith Comparator = "starts-with"
	CompareEndsWith   Comparator = "ends-with"
)

// Valid reports whether c is a known comparator.
func (c Comparator) Valid() bool {
	switch c {
	case CompareEqual, CompareNotEqual, CompareGreaterEq, CompareLessEq, CompareGreater,
		CompareLess, CompareContains, CompareStartsWith, CompareEndsWith:
		return true
	}
	return false
}

// Condition is a comparison that must hold for a rule to fire.
type Condition struct {
	Key        string
	Enabled    bool
	Left       RuleValue
	Right      RuleValue
	Comparator Comparator
}

// Pseudo-variables readable through an ActorVariable value.
const (
	VariableAppearance = "appearance"
	VariableTransform  = "transform"
)

// RuleValue is a Constant, an ActorVariable or a GlobalRef.
type RuleValue interface {
	ruleValue()
}

// Constant is a literal value.
type Constant struct {
	Value string
}

// ActorVariable reads a variable of a rule actor. Variable may be
// VariableAppearance or VariableTransform.
type ActorVariable struct {
	ActorID  string
	Variable string
}

// GlobalRef reads a global by id.
type GlobalRef struct {
	Global string
}

func (Constant) ruleValue()      {}
func (ActorVariable) ruleValue() {}
func (GlobalRef) ruleValue()     {}

// ActorRefs returns the rule actor ids a value reads from.
func ActorRefs(v RuleValue) []string {
	if av, ok := v.(ActorVariable); ok {
		return []string{av.ActorID}
	}
	return nil
}

// Operation is how an action combines a value with the existing one.
type Operation string

const (
	OpSet      Operation = "set"
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

// AnimationStyle controls how an action's change is framed. Linear (the
// default) gives the change its own frame; skip folds it into the actor's
// previous frame.
type AnimationStyle string

const (
	AnimationLinear AnimationStyle = "linear"
	AnimationSkip   AnimationStyle = "skip"
)

// Action is one step of a rule: *MoveAction, *DeleteAction, *CreateAction,
// *AppearanceAction, *TransformAction, *VariableAction or *GlobalAction.
type Action interface {
	Kind() string
	action()
}

// MoveAction moves an actor either by Delta from its current position or to
// Offset relative to the acting actor's rule-start position.
type MoveAction struct {
	ActorID   string
	Delta     *core.Position
	Offset    *core.Position
	Animation AnimationStyle
}

// DeleteAction removes an actor.
type DeleteAction struct {
	ActorID   string
	Animation AnimationStyle
}

// CreateAction adds a copy of Actor at Offset from the acting actor. Later
// actions of the same rule address the new actor by Actor.ID.
type CreateAction struct {
	Actor     *Actor
	Offset    core.Position
	Animation AnimationStyle
}

// AppearanceAction changes an actor's appearance.
type AppearanceAction struct {
	ActorID   string
	Value     RuleValue
	Animation AnimationStyle
}

// TransformAction sets or composes an actor's transform.
type TransformAction struct {
	ActorID   string
	Operation Operation
	Value     RuleValue
	Animation AnimationStyle
}

// VariableAction changes a per-actor variable.
type VariableAction struct {
	ActorID   string
	Variable  string
	Operation Operation
	Value     RuleValue
	Animation AnimationStyle
}

// GlobalAction changes a global.
type GlobalAction struct {
	Global    string
	Operation Operation
	Value     RuleValue
}

func (*MoveAction) Kind() string       { return "move" }
func (*DeleteAction) Kind() string     { return "delete" }
func (*CreateAction) Kind() string     { return "create" }
func (*AppearanceAction) Kind() string { return "appearance" }
func (*TransformAction) Kind() string  { return "transform" }
func (*VariableAction) Kind() string   { return "variable" }
func (*GlobalAction) Kind() string     { return "global" }

func (*MoveAction) action()       {}
func (*DeleteAction) action()     {}
func (*CreateAction) action()     {}
func (*AppearanceAction) action() {}
func (*TransformAction) action()  {}
func (*VariableAction) action()   {}
func (*GlobalAction) action()     {}

// ActionActorID returns the rule actor an action targets, or "" for globals.
func ActionActorID(a Action) string {
	switch act := a.(type) {
	case *MoveAction:
		return act.ActorID
	case *DeleteAction:
		return act.ActorID
	case *CreateAction:
		if act.Actor == nil {
			return ""
		}
		return act.Actor.ID
	case *AppearanceAction:
		return act.ActorID
	case *TransformAction:
		return act.ActorID
	case *VariableAction:
		return act.ActorID
	case *GlobalAction:
		return ""
	default:
		panic(UnhandledVariant(a))
	}
}

// ActionValue returns the value an action reads, or nil.
func ActionValue(a Action) RuleValue {
	switch act := a.(type) {
	case *AppearanceAction:
		return act.Value
	case *TransformAction:
		return act.Value
	case *VariableAction:
		return act.Value
	case *GlobalAction:
		return act.Value
	}
	return nil
}

// ActionAnimation returns the animation style of an actor action.
func ActionAnimation(a Action) AnimationStyle {
	switch act := a.(type) {
	case *MoveAction:
		return act.Animation
	case *DeleteAction:
		return act.Animation
	case *CreateAction:
		return act.Animation
	case *AppearanceAction:
		return act.Animation
	case *TransformAction:
		return act.Animation
	case *VariableAction:
		return act.Animation
	}
	return AnimationLinear
}

// UnhandledVariant builds the error reported when a switch over a closed
// variant set meets a type it does not know.
func UnhandledVariant(v any) error {
	return fmt.Errorf("world: unhandled variant %T", v)
}
