package engine

import (
	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// FilledPoints returns the grid cells an actor occupies. Appearances with
// footprint info cover every filled cell, transformed by the actor's
// transform and placed so the anchor lands on the actor's position. Without
// footprint info (or without a character) the actor covers one cell.
func FilledPoints(a *world.Actor, ch *world.Character) []core.Position {
	if ch == nil {
		return []core.Position{a.Position}
	}
	info, ok := ch.Footprint(a.Appearance)
	if !ok {
		return []core.Position{a.Position}
	}

	size := core.Size{W: info.Width, H: info.Height}
	ax, ay := core.ApplyTransform(info.Anchor.X, info.Anchor.Y, size, a.Transform)
	origin := a.Position.Sub(core.Pos(ax, ay))

	points := make([]core.Position, 0, len(info.Filled))
	for _, cell := range info.Filled {
		x, y := core.ApplyTransform(cell.X, cell.Y, size, a.Transform)
		points = append(points, origin.Add(core.Pos(x, y)))
	}
	return points
}

// ActorFilledPoints looks up the actor's character and returns its filled
// cells. A missing character is logged and treated as a 1x1 sprite.
func (e *Engine) ActorFilledPoints(a *world.Actor, chars world.Characters) []core.Position {
	ch, ok := chars[a.CharacterID]
	if !ok {
		e.logger.Warn("character not found, using single cell", "actor", a.ID, "character", a.CharacterID)
		return []core.Position{a.Position}
	}
	return FilledPoints(a, ch)
}

func covers(points []core.Position, p core.Position) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
