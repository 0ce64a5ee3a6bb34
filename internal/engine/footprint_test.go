package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

func TestFilledPoints(t *testing.T) {
	// An L shape in a 2x3 box, anchored at its corner:
	//   X.
	//   X.
	//   XX
	ell := newCharacter("ell")
	ell.Spritesheet.AppearanceInfo = map[string]world.AppearanceInfo{
		"default": {
			Width:  2,
			Height: 3,
			Anchor: core.Pos(0, 2),
			Filled: []core.Position{core.Pos(0, 0), core.Pos(0, 1), core.Pos(0, 2), core.Pos(1, 2)},
		},
	}

	tests := []struct {
		name      string
		transform core.Transform
		expected  []core.Position
	}{
		{
			name:     "untransformed",
			expected: []core.Position{core.Pos(5, 3), core.Pos(5, 4), core.Pos(5, 5), core.Pos(6, 5)},
		},
		{
			name:      "flip-x",
			transform: core.FlipX,
			expected:  []core.Position{core.Pos(5, 3), core.Pos(5, 4), core.Pos(5, 5), core.Pos(4, 5)},
		},
		{
			name:      "rotate 180",
			transform: core.Rotate180,
			expected:  []core.Position{core.Pos(5, 7), core.Pos(5, 6), core.Pos(5, 5), core.Pos(4, 5)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := actor("a", "ell", 5, 5)
			a.Transform = tc.transform

			got := FilledPoints(a, ell)

			assert.ElementsMatch(t, tc.expected, got)
			assert.Contains(t, got, a.Position, "anchor lands on the actor position")
		})
	}
}

func TestFilledPointsFallsBackToSingleCell(t *testing.T) {
	e := newTestEngine()
	a := actor("a", "missing", 2, 2)

	assert.Equal(t, []core.Position{core.Pos(2, 2)}, FilledPoints(a, nil))
	assert.Equal(t, []core.Position{core.Pos(2, 2)}, FilledPoints(a, newCharacter("plain")))
	assert.Equal(t, []core.Position{core.Pos(2, 2)}, e.ActorFilledPoints(a, charSet()))
}
