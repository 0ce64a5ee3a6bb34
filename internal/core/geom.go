// Package core provides fundamental grid types and utilities for the rule
// engine. It contains no external dependencies to keep geometry pure and
// testable.
package core

import "fmt"

// Position is an integer grid cell. X increases to the right, Y increases
// downward (screen coordinates).
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Pos is a convenience constructor for Position.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the sum of two positions.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p minus other.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Size is the width and height of a bounding box in cells.
type Size struct {
	W int
	H int
}

// Bounds describes a stage for wrapping purposes.
type Bounds struct {
	Width  int
	Height int
	WrapX  bool
	WrapY  bool
}

// FloorMod returns a mod n in [0, n) for n > 0, including negative a.
func FloorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// WrapPosition maps pos onto the stage. A wrapping axis is reduced with a
// floor modulo; a non-wrapping axis outside [0, dim) makes the position
// invalid (offscreen), reported by ok == false.
func WrapPosition(pos Position, b Bounds) (Position, bool) {
	out := pos
	if b.WrapX {
		if b.Width <= 0 {
			return Position{}, false
		}
		out.X = FloorMod(pos.X, b.Width)
	} else if pos.X < 0 || pos.X >= b.Width {
		return Position{}, false
	}
	if b.WrapY {
		if b.Height <= 0 {
			return Position{}, false
		}
		out.Y = FloorMod(pos.Y, b.Height)
	} else if pos.Y < 0 || pos.Y >= b.Height {
		return Position{}, false
	}
	return out, true
}

// Rect represents an axis-aligned box of cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
