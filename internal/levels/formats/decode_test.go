package formats

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

const baseDoc = `
id: t
characters:
  - id: hero
    name: Hero
    appearances: [{id: default, glyph: "@"}]
    rules:
%s
stages:
  - id: main
    width: 4
    height: 4
    actors:
      - {id: h1, character: hero, position: {x: 1, y: 1}}
`

func docWithRules(rules string) []byte {
	return []byte(strings.Replace(baseDoc, "%s", rules, 1))
}

func TestParseYAMLRuleTree(t *testing.T) {
	sc, err := ParseYAML(docWithRules(`
      - type: rule
        id: spawn
        main_actor: me
        actors:
          - {id: me, character: hero, position: {x: 0, y: 0}}
          - {id: other, character: hero, position: {x: -1, y: 2}}
        extent:
          x_min: -1
          x_max: 1
          y_min: 0
          y_max: 2
          ignored: [{x: 1, y: 1}]
        actions:
          - type: create
            template: {id: kid, character: hero, position: {x: 0, y: 1}}
            offset: {x: 0, y: 1}
          - type: variable
            actor: kid
            variable: hp
            operation: add
            value: {type: actor, actor: other, variable: hp}
          - type: global
            global: score
            value: {type: global, global: score}
          - type: transform
            actor: me
            value: {value: "flip-x"}
`))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}

	rule, ok := sc.Characters["hero"].FindRule("spawn")
	if !ok {
		t.Fatal("rule spawn missing")
	}
	if !rule.Extent.Ignored[core.Pos(1, 1)] || rule.Extent.XMin != -1 || rule.Extent.YMax != 2 {
		t.Errorf("extent = %+v", rule.Extent)
	}

	create, ok := rule.Actions[0].(*world.CreateAction)
	if !ok || create.Actor.ID != "kid" || create.Offset != core.Pos(0, 1) {
		t.Fatalf("create = %+v", rule.Actions[0])
	}
	if create.Animation != world.AnimationLinear {
		t.Errorf("animation = %q, expected linear default", create.Animation)
	}

	v, ok := rule.Actions[1].(*world.VariableAction)
	if !ok || v.Operation != world.OpAdd {
		t.Fatalf("variable action = %+v", rule.Actions[1])
	}
	if ref, ok := v.Value.(world.ActorVariable); !ok || ref.ActorID != "other" {
		t.Errorf("variable value = %+v", v.Value)
	}

	g, ok := rule.Actions[2].(*world.GlobalAction)
	if !ok || g.Operation != world.OpSet {
		t.Fatalf("global action = %+v, expected set by default", rule.Actions[2])
	}
	if _, ok := g.Value.(world.GlobalRef); !ok {
		t.Errorf("global value = %T", g.Value)
	}

	tr, ok := rule.Actions[3].(*world.TransformAction)
	if !ok || tr.Value != (world.Constant{Value: "flip-x"}) {
		t.Errorf("transform action = %+v", rule.Actions[3])
	}
}

func TestParseErrors(t *testing.T) {
	meActor := `
        main_actor: me
        actors:
          - {id: me, character: hero, position: {x: 0, y: 0}}`

	tests := []struct {
		name     string
		rules    string
		expected string
	}{
		{
			"unknown node type",
			"      - {type: widget, id: w}",
			`unknown type "widget"`,
		},
		{
			"duplicate node id",
			"      - {type: flow, id: a}\n      - {type: flow, id: a}",
			"duplicate node id a",
		},
		{
			"key trigger without key",
			"      - {type: event, id: e, trigger: key}",
			"key trigger needs a key",
		},
		{
			"unknown behavior",
			"      - {type: flow, id: f, behavior: sometimes}",
			`unknown behavior "sometimes"`,
		},
		{
			"main actor missing",
			"      - type: rule\n        id: r\n        main_actor: ghost" + strings.TrimPrefix(meActor, "\n        main_actor: me"),
			"main actor ghost is not a rule actor",
		},
		{
			"unknown comparator",
			"      - type: rule\n        id: r" + meActor + `
        conditions:
          - {key: c, left: {value: "1"}, comparator: "~", right: {value: "1"}}`,
			`unknown comparator "~"`,
		},
		{
			"move with delta and offset",
			"      - type: rule\n        id: r" + meActor + `
        actions:
          - {type: move, actor: me, delta: {x: 1, y: 0}, offset: {x: 1, y: 0}}`,
			"exactly one of delta or offset",
		},
		{
			"invalid transform constant",
			"      - type: rule\n        id: r" + meActor + `
        actions:
          - {type: transform, actor: me, value: {value: "45"}}`,
			`invalid transform "45"`,
		},
		{
			"unknown animation",
			"      - type: rule\n        id: r" + meActor + `
        actions:
          - {type: delete, actor: me, animation: bounce}`,
			`unknown animation "bounce"`,
		},
		{
			"unknown operation",
			"      - type: rule\n        id: r" + meActor + `
        actions:
          - {type: global, global: g, operation: multiply, value: {value: "2"}}`,
			`unknown operation "multiply"`,
		},
		{
			"extent without main actor",
			"      - type: rule\n        id: r" + meActor + `
        extent: {x_min: 1, x_max: 2, y_min: 0, y_max: 0}`,
			"extent must contain the main actor",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML(docWithRules(tc.rules))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("error %q does not contain %q", err, tc.expected)
			}
		})
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
	}{
		{"missing id", "stages: [{id: s, width: 1, height: 1}]", "scenario id is required"},
		{"no stages", "id: x", "has no stages"},
		{"bad size", "id: x\nstages: [{id: s, width: 0, height: 1}]", "invalid size"},
		{"unknown character", "id: x\nstages: [{id: s, width: 1, height: 1, actors: [{id: a, character: nope, position: {x: 0, y: 0}}]}]", "unknown character nope"},
		{"bad selected stage", "id: x\nselected_stage: z\nstages: [{id: s, width: 1, height: 1}]", "selected stage z not found"},
		{"bad yaml", "id: [", "parse yaml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("error %q does not contain %q", err, tc.expected)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	sc, err := ParseJSON([]byte(`{"id":"j","stages":[{"id":"s","width":2,"height":1}]}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if sc.Name != "j" {
		t.Errorf("name = %q, expected id fallback", sc.Name)
	}
	if _, err := ParseJSON([]byte(`{`)); err == nil {
		t.Error("expected error for truncated json")
	}
}
