package tui

import (
	"testing"

	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/levels/formats"
)

const viewerScenario = `
id: viewer
name: Viewer
seed: 4
globals:
  - {id: score, name: Score, value: "7"}
characters:
  - id: hero
    appearances:
      - {id: default, glyph: "@", color: green}
    rules:
      - type: event
        id: on-right
        trigger: key
        key: ArrowRight
        rules:
          - type: rule
            id: step-right
            main_actor: me
            actors:
              - {id: me, character: hero, position: {x: 0, y: 0}}
            actions:
              - {type: move, actor: me, delta: {x: 1, y: 0}}
      - type: event
        id: on-click
        trigger: click
        rules:
          - type: rule
            id: step-left
            main_actor: me
            actors:
              - {id: me, character: hero, position: {x: 0, y: 0}}
            actions:
              - {type: move, actor: me, delta: {x: -1, y: 0}}
  - id: rock
    appearances:
      - {id: default}
  - id: bar
    appearances:
      - id: wide
        glyph: "="
        color: yellow
        footprint:
          width: 2
          height: 1
          anchor: {x: 0, y: 0}
          filled: [{x: 0, y: 0}, {x: 1, y: 0}]
stages:
  - id: main
    width: 5
    height: 2
    wrap_x: true
    actors:
      - {id: h, character: hero, position: {x: 1, y: 0}}
      - {id: r, character: rock, position: {x: 2, y: 1}}
      - {id: b, character: bar, position: {x: 4, y: 1}, appearance: wide}
`

func loadViewerScenario(t *testing.T) levels.Scenario {
	t.Helper()
	sc, err := formats.ParseYAML([]byte(viewerScenario))
	if err != nil {
		t.Fatalf("ParseYAML() failed: %v", err)
	}
	return levels.Scenario{Scenario: sc}
}
