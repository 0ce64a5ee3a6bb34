package engine

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithLogger(log.New(io.Discard)),
		WithIDGenerator(NewSequentialIDs("new")),
	}
	return New(append(base, opts...)...)
}

func actor(id, character string, x, y int) *world.Actor {
	return &world.Actor{ID: id, CharacterID: character, Position: core.Pos(x, y), Appearance: "default"}
}

func newWorld(w, h int, wrapX, wrapY bool, actors ...*world.Actor) world.World {
	return world.New("test", &world.Stage{
		ID:     "main",
		Width:  w,
		Height: h,
		WrapX:  wrapX,
		WrapY:  wrapY,
		Actors: world.NewActorSet(actors...),
	})
}

// newRule builds a rule whose first template is the main actor and whose
// extent is the bounding box of the templates.
func newRule(id string, templates []*world.Actor, actions ...world.Action) *world.Rule {
	r := &world.Rule{
		ID:          id,
		Name:        id,
		MainActorID: templates[0].ID,
		Actors:      world.NewActorSet(templates...),
		Actions:     actions,
	}
	for _, t := range templates {
		r.Extent.XMin = core.Min(r.Extent.XMin, t.Position.X)
		r.Extent.XMax = core.Max(r.Extent.XMax, t.Position.X)
		r.Extent.YMin = core.Min(r.Extent.YMin, t.Position.Y)
		r.Extent.YMax = core.Max(r.Extent.YMax, t.Position.Y)
	}
	return r
}

func idle(id string, nodes ...world.Node) *world.EventGroup {
	return &world.EventGroup{ID: id, Trigger: world.TriggerIdle, Rules: nodes}
}

func newCharacter(id string, nodes ...world.Node) *world.Character {
	return &world.Character{
		ID:   id,
		Name: id,
		Spritesheet: world.Spritesheet{
			Appearances: map[string]string{"default": id},
		},
		Rules: nodes,
	}
}

func charSet(cs ...*world.Character) world.Characters {
	out := make(world.Characters, len(cs))
	for _, c := range cs {
		out[c.ID] = c
	}
	return out
}

func delta(x, y int) *core.Position {
	p := core.Pos(x, y)
	return &p
}

func moveBy(actorID string, x, y int) *world.MoveAction {
	return &world.MoveAction{ActorID: actorID, Delta: delta(x, y)}
}

// walkerRule moves the acting actor by (dx, dy).
func walkerRule(id string, dx, dy int) *world.Rule {
	return newRule(id, []*world.Actor{actor("me", "walker", 0, 0)}, moveBy("me", dx, dy))
}

func tickN(t *testing.T, e *Engine, w world.World, cs world.Characters, n int) world.World {
	t.Helper()
	for i := 0; i < n; i++ {
		var err error
		w, err = e.Tick(w, cs)
		require.NoError(t, err)
	}
	return w
}

func stageActor(t *testing.T, w world.World, id string) (*world.Actor, bool) {
	t.Helper()
	stage, err := w.CurrentStage()
	require.NoError(t, err)
	return stage.Actors.Get(id)
}
