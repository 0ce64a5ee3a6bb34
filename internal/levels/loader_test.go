package levels_test

import (
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/world"
)

// getTestdataPath returns path to testdata/scenarios.
func getTestdataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata", "scenarios")
}

func TestLoaderLoadAll(t *testing.T) {
	loader := levels.NewLoader(getTestdataPath())

	scenarios, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// broken.yaml and README.txt are skipped
	if len(scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].ID != "alpha" || scenarios[1].ID != "beta" {
		t.Errorf("scenarios not sorted: %s, %s", scenarios[0].ID, scenarios[1].ID)
	}
	if filepath.Base(scenarios[1].FilePath) != "beta.json" {
		t.Errorf("unexpected file path %q", scenarios[1].FilePath)
	}
}

func TestLoaderLoadAlpha(t *testing.T) {
	loader := levels.NewLoader(getTestdataPath())

	sc, err := loader.LoadByID("alpha")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}

	if sc.Name != "Alpha" || sc.Seed != 11 {
		t.Errorf("unexpected header: name=%q seed=%d", sc.Name, sc.Seed)
	}
	if sc.World.Seed != 11 {
		t.Errorf("world seed = %d, expected 11", sc.World.Seed)
	}
	if v, _ := sc.World.GlobalValue("score"); v != "5" {
		t.Errorf("score = %q, expected 5", v)
	}
	if v, _ := sc.World.GlobalValue(world.GlobalSelectedStage); v != "main" {
		t.Errorf("selected stage = %q, expected main", v)
	}
	if len(sc.World.Stages) != 2 {
		t.Errorf("expected 2 stages, got %d", len(sc.World.Stages))
	}

	stage, err := sc.World.CurrentStage()
	if err != nil {
		t.Fatalf("CurrentStage failed: %v", err)
	}
	if !stage.WrapX || stage.WrapY {
		t.Errorf("wrap flags = %v/%v", stage.WrapX, stage.WrapY)
	}
	h1, ok := stage.Actors.Get("h1")
	if !ok {
		t.Fatal("actor h1 missing")
	}
	// default appearance is the first id in sorted order
	if h1.Appearance != "big" {
		t.Errorf("appearance = %q, expected big", h1.Appearance)
	}

	hero := sc.Characters["hero"]
	if hero == nil {
		t.Fatal("character hero missing")
	}
	if hero.Variables["hp"].DefaultValue != "3" {
		t.Errorf("hp default = %q", hero.Variables["hp"].DefaultValue)
	}
	if info, ok := hero.Footprint("big"); !ok || len(info.Filled) != 2 {
		t.Errorf("big footprint = %+v, %v", info, ok)
	}

	rule, ok := hero.FindRule("walk")
	if !ok {
		t.Fatal("rule walk missing")
	}
	if len(rule.Conditions) != 2 || !rule.Conditions[0].Enabled || rule.Conditions[1].Enabled {
		t.Errorf("condition enabled flags wrong: %+v", rule.Conditions)
	}
	if rule.Extent.XMin != 0 || rule.Extent.XMax != 0 || rule.Extent.YMin != 0 || rule.Extent.YMax != 0 {
		t.Errorf("default extent = %+v", rule.Extent)
	}
	move, ok := rule.Actions[0].(*world.MoveAction)
	if !ok {
		t.Fatalf("expected move action, got %T", rule.Actions[0])
	}
	if *move.Delta != core.Pos(1, 0) || move.Animation != world.AnimationSkip {
		t.Errorf("move = %+v", move)
	}

	ev, ok := hero.Rules[0].(*world.EventGroup)
	if !ok || ev.Trigger != world.TriggerIdle {
		t.Fatalf("expected idle event group, got %T", hero.Rules[0])
	}
	flow, ok := ev.Rules[0].(*world.FlowGroup)
	if !ok || flow.Behavior != world.BehaviorLoop || flow.Loop.Variable != "hp" {
		t.Errorf("unexpected flow group %+v", ev.Rules[0])
	}

	g := sc.Glyph(h1)
	if g.Rune != 'h' {
		t.Errorf("big has no glyph, expected fallback 'h', got %q", g.Rune)
	}
}

func TestLoaderLoadJSON(t *testing.T) {
	loader := levels.NewLoader(getTestdataPath())

	sc, err := loader.LoadByID("beta")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}

	stage, err := sc.World.CurrentStage()
	if err != nil {
		t.Fatalf("CurrentStage failed: %v", err)
	}
	if stage.ID != "b" {
		t.Errorf("selected stage = %s, expected b", stage.ID)
	}
	r1, ok := stage.Actors.Get("r1")
	if !ok || r1.Position != core.Pos(3, 3) {
		t.Errorf("r1 = %+v", r1)
	}
	if g := sc.Glyph(r1); g.Rune != 'o' {
		t.Errorf("glyph = %q, expected 'o'", g.Rune)
	}
}

func TestLoaderNotFound(t *testing.T) {
	loader := levels.NewLoader(getTestdataPath())

	if _, err := loader.LoadByID("nonexistent"); err == nil {
		t.Error("expected error for nonexistent scenario")
	}
	if _, err := loader.LoadFile("broken.yaml"); err == nil {
		t.Error("expected error for invalid scenario")
	}
}

func TestLoaderListIDs(t *testing.T) {
	loader := levels.NewLoader(getTestdataPath())

	ids, err := loader.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}

	expected := []string{"alpha", "beta"}
	if len(ids) != len(expected) {
		t.Fatalf("ids = %v, expected %v", ids, expected)
	}
	for i := range ids {
		if ids[i] != expected[i] {
			t.Errorf("ids[%d] = %s, expected %s", i, ids[i], expected[i])
		}
	}
}

func TestScenarioNewWorldIsIndependent(t *testing.T) {
	sc, err := levels.LoadPath(filepath.Join(getTestdataPath(), "alpha.yaml"))
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}

	w := sc.NewWorld()
	w.SetGlobal("score", "99")
	stage, _ := w.CurrentStage()
	stage.Actors.Delete("h1")

	if v, _ := sc.World.GlobalValue("score"); v != "5" {
		t.Errorf("scenario global changed to %q", v)
	}
	orig, _ := sc.World.CurrentStage()
	if !orig.Actors.Has("h1") {
		t.Error("scenario stage lost actor h1")
	}
}

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"pack/one.yml": {Data: []byte(`
id: one
characters: [{id: c, name: C}]
stages: [{id: s, width: 1, height: 1}]
`)},
		"pack/notes.md": {Data: []byte("# notes")},
	}

	loader := levels.NewFSLoader(fsys, "pack")
	ids, err := loader.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "one" {
		t.Errorf("ids = %v, expected [one]", ids)
	}
}
