package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

func TestStageText(t *testing.T) {
	sc := loadViewerScenario(t)
	w := sc.NewWorld()
	stage, err := w.CurrentStage()
	if err != nil {
		t.Fatalf("CurrentStage() failed: %v", err)
	}

	got := StageText(sc.Scenario, LiveFrame(stage))
	// The bar wraps from x=4 onto x=0; the rock has no glyph and uses the
	// first letter of its character.
	expected := "·@···\n=·r·="
	if got != expected {
		t.Errorf("StageText() = %q, expected %q", got, expected)
	}
}

func TestDrawStageColorsAndOffset(t *testing.T) {
	sc := loadViewerScenario(t)
	w := sc.NewWorld()
	stage, _ := w.CurrentStage()

	s := core.NewScreen(7, 4)
	DrawStage(s, 1, 1, sc.Scenario, LiveFrame(stage))

	tests := []struct {
		x, y     int
		expected core.Cell
	}{
		{0, 0, core.Cell{Rune: ' '}},
		{1, 1, core.Cell{Rune: EmptyCell, Color: core.ColorGray}},
		{2, 1, core.Cell{Rune: '@', Color: core.ColorGreen}},
		{3, 2, core.Cell{Rune: 'r'}},
		{1, 2, core.Cell{Rune: '=', Color: core.ColorYellow}},
		{5, 2, core.Cell{Rune: '=', Color: core.ColorYellow}},
		{6, 2, core.Cell{Rune: ' '}},
	}
	for _, tc := range tests {
		if got := s.GetCell(tc.x, tc.y); got != tc.expected {
			t.Errorf("cell (%d,%d) = %+v, expected %+v", tc.x, tc.y, got, tc.expected)
		}
	}
}

func TestAnimationFrameSortsActors(t *testing.T) {
	sc := loadViewerScenario(t)
	w := sc.NewWorld()
	stage, _ := w.CurrentStage()

	f := AnimationFrame(stage, world.Frame{Actors: stage.Actors.Snapshot()})
	if len(f.Actors) != 3 {
		t.Fatalf("Expected 3 actors, got %d", len(f.Actors))
	}
	if f.Actors[0].ID != "b" || f.Actors[1].ID != "h" || f.Actors[2].ID != "r" {
		t.Errorf("Frame actors not sorted: %s %s %s", f.Actors[0].ID, f.Actors[1].ID, f.Actors[2].ID)
	}
}

func TestActorAt(t *testing.T) {
	sc := loadViewerScenario(t)
	w := sc.NewWorld()
	stage, _ := w.CurrentStage()
	f := LiveFrame(stage)

	tests := []struct {
		cell     core.Position
		expected string
		found    bool
	}{
		{core.Pos(1, 0), "h", true},
		{core.Pos(2, 1), "r", true},
		{core.Pos(4, 1), "b", true},
		{core.Pos(0, 1), "b", true}, // wrapped footprint cell
		{core.Pos(3, 0), "", false},
		{core.Pos(-1, 0), "", false},
	}
	for _, tc := range tests {
		id, ok := ActorAt(sc.Scenario, f, tc.cell)
		if ok != tc.found || id != tc.expected {
			t.Errorf("ActorAt(%v) = %q, %v; expected %q, %v", tc.cell, id, ok, tc.expected, tc.found)
		}
	}
}

func TestFormatGlobals(t *testing.T) {
	sc := loadViewerScenario(t)
	w := sc.NewWorld()

	got := strings.Join(FormatGlobals(w), "|")
	expected := "score = 7|selectedStageId = main"
	if got != expected {
		t.Errorf("FormatGlobals() = %q, expected %q", got, expected)
	}

	w.SetGlobal("keypress", "Space")
	if got := FormatGlobals(w); len(got) != 3 || got[0] != "keypress = Space" {
		t.Errorf("Set reserved globals should be listed, got %v", got)
	}
}

func TestRenderScreenPlainText(t *testing.T) {
	s := core.NewScreen(3, 2)
	s.SetCell(0, 0, core.Cell{Rune: 'a', Color: core.ColorRed})
	s.Set(1, 0, 'b')

	// Without a color profile lipgloss renders plain text.
	got := RenderScreen(s)
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") || strings.Count(got, "\n") != 1 {
		t.Errorf("RenderScreen() = %q", got)
	}
}
