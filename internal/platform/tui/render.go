package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/levels/formats"
	"github.com/vovakirdan/tilerules/internal/world"
)

// EmptyCell is drawn on stage cells no actor covers.
const EmptyCell = '·'

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// StageFrame is what DrawStage draws: a stage's geometry and one snapshot
// of its actors, either the live stage or an animation frame.
type StageFrame struct {
	Bounds core.Bounds
	Actors []world.Actor
}

// LiveFrame returns the current actors of a stage in stage order.
func LiveFrame(s *world.Stage) StageFrame {
	f := StageFrame{Bounds: s.Bounds()}
	for _, a := range s.Actors.All() {
		f.Actors = append(f.Actors, *a)
	}
	return f
}

// AnimationFrame returns the actors of an animation frame. Frames carry no
// order, so actors are drawn sorted by id.
func AnimationFrame(s *world.Stage, fr world.Frame) StageFrame {
	f := StageFrame{Bounds: s.Bounds()}
	ids := make([]string, 0, len(fr.Actors))
	for id := range fr.Actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		f.Actors = append(f.Actors, fr.Actors[id])
	}
	return f
}

// DrawStage draws a stage frame with its top-left cell at (ox, oy). Later
// actors are drawn over earlier ones. Cells of a footprint that fall off a
// non-wrapping stage are skipped.
func DrawStage(s *core.Screen, ox, oy int, sc *formats.Scenario, f StageFrame) {
	for y := 0; y < f.Bounds.Height; y++ {
		for x := 0; x < f.Bounds.Width; x++ {
			s.SetCell(ox+x, oy+y, core.Cell{Rune: EmptyCell, Color: core.ColorGray})
		}
	}

	for i := range f.Actors {
		a := &f.Actors[i]
		g := sc.Glyph(a)
		color, _ := core.ParseColor(g.Color)
		for _, p := range engine.FilledPoints(a, sc.Characters[a.CharacterID]) {
			cell, ok := core.WrapPosition(p, f.Bounds)
			if !ok {
				continue
			}
			s.SetCell(ox+cell.X, oy+cell.Y, core.Cell{Rune: g.Rune, Color: color})
		}
	}
}

// ActorAt returns the id of the topmost actor covering a stage cell.
func ActorAt(sc *formats.Scenario, f StageFrame, cell core.Position) (string, bool) {
	for i := len(f.Actors) - 1; i >= 0; i-- {
		a := &f.Actors[i]
		for _, p := range engine.FilledPoints(a, sc.Characters[a.CharacterID]) {
			if q, ok := core.WrapPosition(p, f.Bounds); ok && q == cell {
				return a.ID, true
			}
		}
	}
	return "", false
}

// FormatGlobals lists the world's globals as "id = value" lines sorted by
// id. Unset reserved globals are left out.
func FormatGlobals(w world.World) []string {
	ids := make([]string, 0, len(w.Globals))
	for id := range w.Globals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		g := w.Globals[id]
		if g.Value == "" && isReserved(id) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", id, g.Value))
	}
	return lines
}

func isReserved(id string) bool {
	switch id {
	case world.GlobalClick, world.GlobalKeypress, world.GlobalSelectedStage:
		return true
	}
	return false
}

// StageText draws a stage alone and returns it as plain text, for headless
// output.
func StageText(sc *formats.Scenario, f StageFrame) string {
	s := core.NewScreen(f.Bounds.Width, f.Bounds.Height)
	DrawStage(s, 0, 0, sc, f)
	return s.String()
}
