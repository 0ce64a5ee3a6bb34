package scenarios

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/registry"
	"github.com/vovakirdan/tilerules/internal/world"
)

func newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(log.New(io.Discard)),
		engine.WithIDGenerator(engine.NewSequentialIDs("gen")),
	)
}

func load(t *testing.T, id string) levels.Scenario {
	t.Helper()
	sc, err := registry.Create(id)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", id, err)
	}
	return sc
}

func run(t *testing.T, sc levels.Scenario, w world.World, ticks int) world.World {
	t.Helper()
	e := newEngine()
	for i := 0; i < ticks; i++ {
		var err error
		w, err = e.Tick(w, sc.Characters)
		if err != nil {
			t.Fatalf("tick %d failed: %v", i+1, err)
		}
	}
	return w
}

func position(t *testing.T, w world.World, id string) core.Position {
	t.Helper()
	stage, err := w.CurrentStage()
	if err != nil {
		t.Fatalf("CurrentStage failed: %v", err)
	}
	a, ok := stage.Actors.Get(id)
	if !ok {
		t.Fatalf("actor %s missing", id)
	}
	return a.Position
}

func TestEmbeddedScenariosRegistered(t *testing.T) {
	all, err := Loader().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	expected := []string{"coins", "edge", "fountain", "keys", "score", "walker", "wrap"}
	if len(all) != len(expected) {
		t.Fatalf("loaded %d scenarios, expected %d (an embedded file failed to parse?)", len(all), len(expected))
	}
	for i, sc := range all {
		if sc.ID != expected[i] {
			t.Errorf("scenario %d = %s, expected %s", i, sc.ID, expected[i])
		}
		if !registry.Exists(sc.ID) {
			t.Errorf("scenario %s not registered", sc.ID)
		}
	}
}

func TestWalkerSteps(t *testing.T) {
	sc := load(t, "walker")
	w := run(t, sc, sc.NewWorld(), 1)
	if got := position(t, w, "w1"); got != core.Pos(3, 3) {
		t.Errorf("walker at %v, expected (3,3)", got)
	}

	w = run(t, sc, w, 11)
	if got := position(t, w, "w1"); got != core.Pos(9, 3) {
		t.Errorf("walker at %v, expected (9,3)", got)
	}
	if len(w.History) != 7 {
		t.Errorf("history length = %d, expected 7 firing ticks", len(w.History))
	}
}

func TestWrapRunnersCrossTheSeam(t *testing.T) {
	sc := load(t, "wrap")
	w := run(t, sc, sc.NewWorld(), 1)

	if got := position(t, w, "r1"); got != core.Pos(0, 0) {
		t.Errorf("r1 at %v, expected (0,0)", got)
	}
	if got := position(t, w, "r2"); got != core.Pos(9, 1) {
		t.Errorf("r2 at %v, expected (9,1)", got)
	}

	w = run(t, sc, w, 9)
	if got := position(t, w, "r1"); got != core.Pos(9, 0) {
		t.Errorf("r1 at %v, expected a full lap to (9,0)", got)
	}
	if got := position(t, w, "r2"); got != core.Pos(0, 1) {
		t.Errorf("r2 at %v, expected a full lap to (0,1)", got)
	}
}

func TestEdgeStopsWithoutError(t *testing.T) {
	sc := load(t, "edge")
	w := run(t, sc, sc.NewWorld(), 5)

	if got := position(t, w, "w1"); got != core.Pos(9, 0) {
		t.Errorf("walker at %v, expected (9,0)", got)
	}
	if w.Tick != 5 {
		t.Errorf("tick = %d, expected 5", w.Tick)
	}
}

func TestScoreAddsEveryTick(t *testing.T) {
	sc := load(t, "score")
	w := run(t, sc, sc.NewWorld(), 5)

	if v, _ := w.GlobalValue("score"); v != "50" {
		t.Errorf("score = %q, expected 50", v)
	}
}

func TestCoinsCollected(t *testing.T) {
	sc := load(t, "coins")
	w := run(t, sc, sc.NewWorld(), 20)

	if v, _ := w.GlobalValue("score"); v != "30" {
		t.Errorf("score = %q, expected 30", v)
	}
	stage, _ := w.CurrentStage()
	if stage.Actors.Len() != 1 {
		t.Errorf("expected only the hero left, got %v", stage.Actors.IDs())
	}
	if got := position(t, w, "hero"); got != core.Pos(9, 0) {
		t.Errorf("hero at %v, expected (9,0)", got)
	}
}

func TestKeysMoveAndClickSpins(t *testing.T) {
	sc := load(t, "keys")
	w := sc.NewWorld()
	w.Input.PressKey(core.KeyArrowRight)

	w = run(t, sc, w, 1)
	if got := position(t, w, "p1"); got != core.Pos(4, 2) {
		t.Errorf("p1 at %v, expected (4,2)", got)
	}
	if v, _ := w.GlobalValue(world.GlobalKeypress); v != core.KeyArrowRight {
		t.Errorf("keypress global = %q", v)
	}

	// Space alone does not dash
	w.Input.PressKey(core.KeySpace)
	w = run(t, sc, w, 1)
	if got := position(t, w, "p1"); got != core.Pos(4, 2) {
		t.Errorf("p1 dashed without ArrowRight to %v", got)
	}

	w.Input.PressKey(core.KeySpace)
	w.Input.PressKey(core.KeyArrowRight)
	w = run(t, sc, w, 1)
	if got := position(t, w, "p1"); got != core.Pos(6, 2) {
		t.Errorf("p1 at %v, expected a dash to (6,2)", got)
	}
	if v, _ := w.GlobalValue(world.GlobalKeypress); v != "ArrowRight,Space" {
		t.Errorf("keypress global = %q", v)
	}

	// no input, nothing moves
	w = run(t, sc, w, 1)
	if got := position(t, w, "p1"); got != core.Pos(6, 2) {
		t.Errorf("p1 moved without input to %v", got)
	}

	w.Input.Click("p1")
	w = run(t, sc, w, 1)
	stage, _ := w.CurrentStage()
	p1, _ := stage.Actors.Get("p1")
	if p1.Transform != core.Rotate90 {
		t.Errorf("transform = %q, expected 90", p1.Transform)
	}
}

func TestFountainBurnsOut(t *testing.T) {
	sc := load(t, "fountain")
	w := run(t, sc, sc.NewWorld(), 3)

	stage, _ := w.CurrentStage()
	sparks := 0
	for _, a := range stage.Actors.All() {
		if a.CharacterID == "spark" {
			sparks++
		}
	}
	if sparks != 2 {
		t.Errorf("after 3 ticks expected 2 sparks, got %d", sparks)
	}

	w = run(t, sc, w, 20)
	stage, _ = w.CurrentStage()
	if ids := stage.Actors.IDs(); len(ids) != 1 || ids[0] != "fountain" {
		t.Errorf("expected only the fountain left, got %v", ids)
	}
	fountain, _ := stage.Actors.Get("fountain")
	if fountain.VariableValues["left"] != "0" {
		t.Errorf("left = %q, expected 0", fountain.VariableValues["left"])
	}
}

func TestCreateReturnsFreshWorlds(t *testing.T) {
	a := load(t, "coins")
	b := load(t, "coins")

	a.World.SetGlobal("score", "100")
	if v, _ := b.World.GlobalValue("score"); v != "0" {
		t.Errorf("second instance saw score %q", v)
	}
}
