package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilerules/internal/config"
	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/engine"
	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/storage"
	"github.com/vovakirdan/tilerules/internal/world"
)

// headerLines is the number of rows above the stage box.
const headerLines = 2

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	sideStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model that plays a scenario.
type Model struct {
	scenario levels.Scenario
	engine   *engine.Engine
	world    world.World
	pacing   config.Pacing
	keys     ViewerKeyMap
	help     help.Model

	// pending collects keys and clicks until the next tick consumes them.
	// A terminal reports presses only, so a key counts as held for the
	// one tick after it is pressed.
	pending core.Input

	frames []world.Frame
	frame  int
	gen    int

	paused   bool
	ticks    int
	fired    int
	err      error
	width    int
	quitting bool
}

// NewModel creates a viewer for the scenario starting from w.
func NewModel(sc levels.Scenario, eng *engine.Engine, w world.World, pacing config.Pacing) Model {
	h := help.New()
	h.ShowAll = false
	return Model{
		scenario: sc,
		engine:   eng,
		world:    w,
		pacing:   pacing,
		keys:     DefaultViewerKeyMap(),
		help:     h,
		pending:  core.NewInput(),
	}
}

// World returns the current world.
func (m Model) World() world.World { return m.world }

// Paused reports whether ticking is paused.
func (m Model) Paused() bool { return m.paused }

// Err returns the error of the last failed tick.
func (m Model) Err() error { return m.err }

// Pending returns the input the next tick will see.
func (m Model) Pending() core.Input { return m.pending }

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.pacing.TickInterval())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		next := tickCmd(m.pacing.TickInterval())
		if m.paused || m.err != nil {
			return m, next
		}
		var cmd tea.Cmd
		m, cmd = m.step()
		return m, tea.Batch(next, cmd)

	case FrameMsg:
		if msg.Gen != m.gen || m.frame >= len(m.frames)-1 {
			return m, nil
		}
		m.frame++
		if m.frame < len(m.frames)-1 {
			return m, frameCmd(m.frameDelay(), m.gen)
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil
	case key.Matches(msg, m.keys.Step):
		if !m.paused {
			return m, nil
		}
		return m.step()
	case key.Matches(msg, m.keys.Back):
		return m.untick()
	}

	if code, ok := m.keys.RuleKey(msg); ok {
		m.pending.PressKey(code)
	}
	return m, nil
}

// handleMouse turns a left click on an actor into a click input.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	cell := core.Pos(msg.X-1, msg.Y-headerLines-1)
	if id, ok := ActorAt(m.scenario.Scenario, m.currentFrame(), cell); ok {
		m.pending.Click(id)
	}
	return m, nil
}

// step runs one tick with the pending input and starts frame playback.
func (m Model) step() (Model, tea.Cmd) {
	m.world.Input = m.pending
	m.pending = core.NewInput()

	next, err := m.engine.Tick(m.world, m.scenario.Characters)
	if err != nil {
		m.err = err
		m.paused = true
		return m, nil
	}
	m.world = next
	m.ticks++
	if engine.Fired(next) {
		m.fired++
	}
	return m.play(next.EvaluatedTickFrames)
}

// untick steps back to the state before the last firing tick.
func (m Model) untick() (Model, tea.Cmd) {
	m.world = m.engine.Untick(m.world)
	m.err = nil
	return m.play(m.world.EvaluatedTickFrames)
}

// play starts replaying frames from the first one.
func (m Model) play(frames []world.Frame) (Model, tea.Cmd) {
	m.gen++
	m.frames = frames
	m.frame = 0
	if len(frames) <= 1 {
		return m, nil
	}
	return m, frameCmd(m.frameDelay(), m.gen)
}

// frameDelay spreads long frame lists over one tick interval.
func (m Model) frameDelay() time.Duration {
	d := m.pacing.FrameInterval()
	if n := len(m.frames); n > m.pacing.FrameBudget() {
		d = m.pacing.TickInterval() / time.Duration(n)
	}
	return d
}

// currentFrame returns what the stage shows right now: the frame being
// replayed, or the live stage once playback has finished.
func (m Model) currentFrame() StageFrame {
	stage, err := m.world.CurrentStage()
	if err != nil {
		return StageFrame{}
	}
	if m.frame < len(m.frames)-1 {
		return AnimationFrame(stage, m.frames[m.frame])
	}
	return LiveFrame(stage)
}

// Record summarizes the session for the run log.
func (m Model) Record() storage.RunRecord {
	return storage.NewRunRecord(m.scenario.ID, m.world, m.ticks, m.fired, "watch")
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("%s (%s)", m.scenario.Name, m.scenario.ID))
	status := fmt.Sprintf("  tick %d", m.world.Tick)
	if m.paused {
		status += "  " + pausedStyle.Render("PAUSED")
	}
	b.WriteString(title + status + "\n\n")

	f := m.currentFrame()
	s := core.NewScreen(f.Bounds.Width+2, f.Bounds.Height+2)
	s.DrawBox(core.NewRect(0, 0, s.Width(), s.Height()))
	DrawStage(s, 1, 1, m.scenario.Scenario, f)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, RenderScreen(s), "  ", m.sidebar()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) sidebar() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ticks  %d (%d fired)\n", m.ticks, m.fired)
	fmt.Fprintf(&sb, "frames %d/%d\n", min(m.frame+1, len(m.frames)), len(m.frames))
	if keys := m.pending.KeypressValue(); keys != "" {
		fmt.Fprintf(&sb, "keys   %s\n", keys)
	}
	if clicks := m.pending.ClickValue(); clicks != "" {
		fmt.Fprintf(&sb, "click  %s\n", clicks)
	}
	if globals := FormatGlobals(m.world); len(globals) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(globals, "\n"))
	}
	return sideStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// Run plays the scenario until the user quits and returns the final world.
// The session is recorded in store when one is given and at least one
// tick ran.
func Run(sc levels.Scenario, eng *engine.Engine, w world.World, pacing config.Pacing, store *storage.Store) (world.World, error) {
	model := NewModel(sc, eng, w, pacing)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // clicks become rule input
	)

	final, err := p.Run()
	if err != nil {
		return w, err
	}
	m, ok := final.(Model)
	if !ok {
		return w, nil
	}

	if store != nil && m.ticks > 0 {
		if _, err := store.SaveRun(m.Record()); err != nil {
			eng.Logger().Warn("run not recorded", "scenario", sc.ID, "err", err)
		}
	}
	return m.world, m.err
}
