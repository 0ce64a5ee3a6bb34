package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != (Cell{Rune: ' '}) {
				t.Fatalf("New screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}

	if neg := NewScreen(-3, 2); neg.Width() != 0 {
		t.Errorf("negative width should clamp to 0, got %d", neg.Width())
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetCell(5, 5, Cell{Rune: 'X', Color: ColorRed})
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}
	if s.GetCell(5, 5).Color != ColorRed {
		t.Errorf("GetCell(5, 5).Color = %v, expected red", s.GetCell(5, 5).Color)
	}

	// Set drops the color
	s.Set(5, 5, 'Y')
	if s.GetCell(5, 5) != (Cell{Rune: 'Y'}) {
		t.Errorf("Set should store an uncolored cell, got %+v", s.GetCell(5, 5))
	}

	tests := []struct {
		name string
		x, y int
	}{
		{"left", -1, 0},
		{"right", 100, 0},
		{"top", 0, -1},
		{"bottom", 0, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s.Set(tc.x, tc.y, 'A') // must not panic
			if s.Get(tc.x, tc.y) != ' ' {
				t.Error("Out of bounds Get should return space")
			}
		})
	}
}

func TestScreenClearAndFill(t *testing.T) {
	s := NewScreen(5, 5)
	s.SetCell(1, 1, Cell{Rune: '@', Color: ColorCyan})
	s.Fill('#')

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if s.GetCell(x, y) != (Cell{Rune: '#'}) {
				t.Errorf("After Fill, expected '#' at (%d, %d), got %+v", x, y, s.GetCell(x, y))
			}
		}
	}

	s.Clear()
	if s.String() != strings.Repeat(strings.Repeat(" ", 5)+"\n", 4)+strings.Repeat(" ", 5) {
		t.Errorf("After Clear, expected blank screen, got %q", s.String())
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Hello")

	for i, ch := range "Hello" {
		if s.Get(2+i, 1) != ch {
			t.Errorf("DrawText: expected %q at (%d, 1), got %q", ch, 2+i, s.Get(2+i, 1))
		}
	}

	// Text should be clipped at boundaries
	s.DrawText(18, 0, "Hello")
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}

	// Multi-byte runes take one cell each
	s.DrawText(0, 3, "→x")
	if s.Get(0, 3) != '→' || s.Get(1, 3) != 'x' {
		t.Errorf("expected →x, got %q%q", s.Get(0, 3), s.Get(1, 3))
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(NewRect(1, 1, 5, 4))

	corners := []struct {
		x, y     int
		expected rune
	}{
		{1, 1, '┌'},
		{5, 1, '┐'},
		{1, 4, '└'},
		{5, 4, '┘'},
	}
	for _, tc := range corners {
		if got := s.Get(tc.x, tc.y); got != tc.expected {
			t.Errorf("corner (%d,%d) = %q, expected %q", tc.x, tc.y, got, tc.expected)
		}
	}

	for x := 2; x < 5; x++ {
		if s.Get(x, 1) != '─' || s.Get(x, 4) != '─' {
			t.Errorf("Horizontal edge missing at x=%d", x)
		}
	}
	for y := 2; y < 4; y++ {
		if s.Get(1, y) != '│' || s.Get(5, y) != '│' {
			t.Errorf("Vertical edge missing at y=%d", y)
		}
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawText(0, 1, "BBBBB")
	s.SetCell(0, 2, Cell{Rune: 'C', Color: ColorGreen})

	result := s.String()
	expected := "AAAAA\nBBBBB\nC    "

	if result != expected {
		t.Errorf("String() = %q, expected %q", result, expected)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")
	s.SetCell(1, 0, Cell{Rune: 'e', Color: ColorYellow})

	// Resize smaller - should preserve top-left content
	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Errorf("After resize, dimensions should be 8x4, got %dx%d", s.Width(), s.Height())
	}
	if row0 := s.Row(0); !strings.HasPrefix(row0, "Hello") {
		t.Errorf("Content should be preserved, row 0 = %q", row0)
	}
	if s.GetCell(1, 0).Color != ColorYellow {
		t.Error("Colors should be preserved on resize")
	}

	// Resize larger - old content should still be there
	s.Resize(15, 8)
	if row0 := s.Row(0); !strings.HasPrefix(row0, "Hello") {
		t.Errorf("Content should be preserved after enlarging, row 0 = %q", row0)
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(10, 5)
	s.DrawText(0, 2, "Test")

	row := s.Row(2)
	if !strings.HasPrefix(row, "Test") {
		t.Errorf("Row(2) should start with 'Test', got %q", row)
	}
	if len(row) != 10 {
		t.Errorf("Row length should be 10, got %d", len(row))
	}

	if outOfBounds := s.Row(-1); outOfBounds != "          " {
		t.Errorf("Out of bounds row should be spaces, got %q", outOfBounds)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected Color
		ok       bool
	}{
		{"", ColorDefault, true},
		{"red", ColorRed, true},
		{"CYAN", ColorCyan, true},
		{"bright-yellow", ColorBrightYellow, true},
		{"brightyellow", ColorBrightYellow, true},
		{"grey", ColorGray, true},
		{"orange", ColorOrange, true},
		{"chartreuse", ColorDefault, false},
	}

	for _, tc := range tests {
		color, ok := ParseColor(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseColor(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if color != tc.expected {
			t.Errorf("ParseColor(%q): expected %v, got %v", tc.input, tc.expected, color)
		}
	}
}
