// Package formats provides scenario file format parsers.
//
// A scenario document is a flat, tagged representation of a world and its
// characters. Rule tree nodes, values and actions carry a "type" field that
// selects the variant they decode into.
package formats

import "github.com/vovakirdan/tilerules/internal/core"

// Document is the on-disk structure of a scenario file (YAML or JSON).
type Document struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	Description   string         `yaml:"description,omitempty" json:"description,omitempty"`
	Seed          int64          `yaml:"seed,omitempty" json:"seed,omitempty"`
	SelectedStage string         `yaml:"selected_stage,omitempty" json:"selected_stage,omitempty"`
	Globals       []GlobalDoc    `yaml:"globals,omitempty" json:"globals,omitempty"`
	Characters    []CharacterDoc `yaml:"characters" json:"characters"`
	Stages        []StageDoc     `yaml:"stages" json:"stages"`
}

// GlobalDoc is a global variable with its initial value.
type GlobalDoc struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Value string `yaml:"value" json:"value"`
}

// CharacterDoc is a character definition.
type CharacterDoc struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Appearances []AppearanceDoc `yaml:"appearances,omitempty" json:"appearances,omitempty"`
	Variables   []VariableDoc   `yaml:"variables,omitempty" json:"variables,omitempty"`
	Rules       []NodeDoc       `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// AppearanceDoc names an appearance and says how to draw it in a terminal.
type AppearanceDoc struct {
	ID        string        `yaml:"id" json:"id"`
	Name      string        `yaml:"name,omitempty" json:"name,omitempty"`
	Glyph     string        `yaml:"glyph,omitempty" json:"glyph,omitempty"`
	Color     string        `yaml:"color,omitempty" json:"color,omitempty"`
	Footprint *FootprintDoc `yaml:"footprint,omitempty" json:"footprint,omitempty"`
}

// FootprintDoc is a multi-cell sprite shape.
type FootprintDoc struct {
	Width  int             `yaml:"width" json:"width"`
	Height int             `yaml:"height" json:"height"`
	Anchor core.Position   `yaml:"anchor" json:"anchor"`
	Filled []core.Position `yaml:"filled" json:"filled"`
}

// VariableDoc declares a per-actor variable.
type VariableDoc struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Default string `yaml:"default" json:"default"`
}

// Node types.
const (
	NodeEvent = "event"
	NodeFlow  = "flow"
	NodeRule  = "rule"
)

// NodeDoc is a rule tree node. Type selects which fields apply:
// event (trigger, key, rules), flow (behavior, loop, rules) or rule
// (main_actor, actors, extent, conditions, actions).
type NodeDoc struct {
	Type string `yaml:"type" json:"type"`
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Trigger string `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Key     string `yaml:"key,omitempty" json:"key,omitempty"`

	Behavior string   `yaml:"behavior,omitempty" json:"behavior,omitempty"`
	Loop     *LoopDoc `yaml:"loop,omitempty" json:"loop,omitempty"`

	Rules []NodeDoc `yaml:"rules,omitempty" json:"rules,omitempty"`

	MainActor  string         `yaml:"main_actor,omitempty" json:"main_actor,omitempty"`
	Actors     []ActorDoc     `yaml:"actors,omitempty" json:"actors,omitempty"`
	Extent     *ExtentDoc     `yaml:"extent,omitempty" json:"extent,omitempty"`
	Conditions []ConditionDoc `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Actions    []ActionDoc    `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// LoopDoc is a loop count: a constant or a variable of the acting actor.
type LoopDoc struct {
	Constant int    `yaml:"constant,omitempty" json:"constant,omitempty"`
	Variable string `yaml:"variable,omitempty" json:"variable,omitempty"`
}

// ActorDoc is an actor on a stage or a rule template.
type ActorDoc struct {
	ID         string            `yaml:"id" json:"id"`
	Character  string            `yaml:"character" json:"character"`
	Position   core.Position     `yaml:"position" json:"position"`
	Appearance string            `yaml:"appearance,omitempty" json:"appearance,omitempty"`
	Transform  string            `yaml:"transform,omitempty" json:"transform,omitempty"`
	Variables  map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// ExtentDoc is a rule's inspected rectangle. When omitted the extent is the
// bounding box of the rule's actors.
type ExtentDoc struct {
	XMin    int             `yaml:"x_min" json:"x_min"`
	XMax    int             `yaml:"x_max" json:"x_max"`
	YMin    int             `yaml:"y_min" json:"y_min"`
	YMax    int             `yaml:"y_max" json:"y_max"`
	Ignored []core.Position `yaml:"ignored,omitempty" json:"ignored,omitempty"`
}

// ConditionDoc is a rule condition. Conditions are enabled unless
// enabled: false is given.
type ConditionDoc struct {
	Key        string   `yaml:"key" json:"key"`
	Enabled    *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Left       ValueDoc `yaml:"left" json:"left"`
	Comparator string   `yaml:"comparator" json:"comparator"`
	Right      ValueDoc `yaml:"right" json:"right"`
}

// Value types.
const (
	ValueConstant = "constant"
	ValueActor    = "actor"
	ValueGlobal   = "global"
)

// ValueDoc is a rule value: constant (value), actor (actor, variable) or
// global (global).
type ValueDoc struct {
	Type     string `yaml:"type" json:"type"`
	Value    string `yaml:"value,omitempty" json:"value,omitempty"`
	Actor    string `yaml:"actor,omitempty" json:"actor,omitempty"`
	Variable string `yaml:"variable,omitempty" json:"variable,omitempty"`
	Global   string `yaml:"global,omitempty" json:"global,omitempty"`
}

// ActionDoc is a rule action. Type is one of move, delete, create,
// appearance, transform, variable or global.
type ActionDoc struct {
	Type      string         `yaml:"type" json:"type"`
	Actor     string         `yaml:"actor,omitempty" json:"actor,omitempty"`
	Template  *ActorDoc      `yaml:"template,omitempty" json:"template,omitempty"`
	Delta     *core.Position `yaml:"delta,omitempty" json:"delta,omitempty"`
	Offset    *core.Position `yaml:"offset,omitempty" json:"offset,omitempty"`
	Operation string         `yaml:"operation,omitempty" json:"operation,omitempty"`
	Variable  string         `yaml:"variable,omitempty" json:"variable,omitempty"`
	Global    string         `yaml:"global,omitempty" json:"global,omitempty"`
	Value     *ValueDoc      `yaml:"value,omitempty" json:"value,omitempty"`
	Animation string         `yaml:"animation,omitempty" json:"animation,omitempty"`
}

// StageDoc is a stage and its initial actors.
type StageDoc struct {
	ID     string     `yaml:"id" json:"id"`
	Name   string     `yaml:"name,omitempty" json:"name,omitempty"`
	Width  int        `yaml:"width" json:"width"`
	Height int        `yaml:"height" json:"height"`
	WrapX  bool       `yaml:"wrap_x,omitempty" json:"wrap_x,omitempty"`
	WrapY  bool       `yaml:"wrap_y,omitempty" json:"wrap_y,omitempty"`
	Actors []ActorDoc `yaml:"actors,omitempty" json:"actors,omitempty"`
}
