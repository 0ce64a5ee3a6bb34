package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilerules/internal/registry"
	"github.com/vovakirdan/tilerules/internal/storage"
)

// Runs browser layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show scenario list sidebar
	sidebarWidth       = 20  // Width of scenario list sidebar
	maxRuns            = 100 // Max runs to load
)

// RunsKeyMap defines the key bindings for the runs browser.
type RunsKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	NextScenario key.Binding
	PrevScenario key.Binding
	Quit         key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextScenario, k.PrevScenario, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextScenario, k.PrevScenario},
		{k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextScenario: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next scenario"),
		),
		PrevScenario: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev scenario"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel is the Bubble Tea model for browsing the run log.
type RunsModel struct {
	scenarios   []string // scenario ids with runs or registered
	cursor      int
	store       *storage.Store
	runs        []storage.RunRecord
	stats       *storage.ScenarioStats
	table       table.Model
	help        help.Model
	keys        RunsKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewRunsModel creates a runs browser starting at the given scenario, or
// at the first one when start is empty or unknown.
func NewRunsModel(store *storage.Store, start string, width, height int) RunsModel {
	h := help.New()
	h.ShowAll = false

	m := RunsModel{
		scenarios:   scenarioIDs(store),
		store:       store,
		keys:        DefaultRunsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, id := range m.scenarios {
		if id == start {
			m.cursor = i
		}
	}

	m.table = m.createTable()
	if len(m.scenarios) > 0 {
		m.loadRuns(m.scenarios[m.cursor])
	}
	return m
}

// scenarioIDs merges registered scenarios with those that have runs, so
// runs of files loaded by path are listed too.
func scenarioIDs(store *storage.Store) []string {
	seen := make(map[string]bool)
	for _, info := range registry.List() {
		seen[info.ID] = true
	}
	if store != nil {
		if all, err := store.GetAllScenarioStats(); err == nil {
			for id := range all {
				seen[id] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// createTable creates a new table with appropriate columns.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 6},
		{Title: "Ticks", Width: 7},
		{Title: "Fired", Width: 7},
		{Title: "Tick", Width: 7},
		{Title: "Actors", Width: 7},
		{Title: "Source", Width: 8},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, stats and help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads runs and stats for the given scenario.
func (m *RunsModel) loadRuns(scenarioID string) {
	m.runs, m.stats = nil, nil
	if m.store != nil {
		if runs, err := m.store.RunsForScenario(scenarioID, maxRuns); err == nil {
			m.runs = runs
		}
		if stats, err := m.store.GetScenarioStats(scenarioID); err == nil {
			m.stats = stats
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the current runs.
func (m *RunsModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = RunRow(r)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// RunRow formats a run as a table row.
func RunRow(r storage.RunRecord) table.Row {
	return table.Row{
		fmt.Sprintf("#%d", r.ID),
		fmt.Sprintf("%d", r.Ticks),
		fmt.Sprintf("%d", r.FiredTicks),
		fmt.Sprintf("%d", r.FinalTick),
		fmt.Sprintf("%d", r.Actors),
		r.Source,
		r.CreatedAt.Format("Jan 02 15:04"),
	}
}

// Selected returns the scenario currently shown.
func (m RunsModel) Selected() string {
	if len(m.scenarios) == 0 {
		return ""
	}
	return m.scenarios[m.cursor]
}

// Init initializes the runs model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs browser.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextScenario):
			if len(m.scenarios) > 0 {
				m.cursor = (m.cursor + 1) % len(m.scenarios)
				m.loadRuns(m.scenarios[m.cursor])
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevScenario):
			if len(m.scenarios) > 0 {
				m.cursor = (m.cursor - 1 + len(m.scenarios)) % len(m.scenarios)
				m.loadRuns(m.scenarios[m.cursor])
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the runs browser.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "RUNS"
	if id := m.Selected(); id != "" {
		title = "RUNS - " + id
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	content := m.renderTableContent()
	if m.stats != nil && m.stats.Runs > 0 {
		content = fmt.Sprintf("%d runs, %d ticks, longest %d, avg fired %.1f\n\n%s",
			m.stats.Runs, m.stats.TotalTicks, m.stats.MaxTicks, m.stats.AvgFired, content)
	}
	panel := sideStyle.Render(content)

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", panel))
	} else {
		b.WriteString(panel)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderSidebar renders the scenario list.
func (m RunsModel) renderSidebar() string {
	style := sideStyle.Width(sidebarWidth)

	var sidebar strings.Builder
	sidebar.WriteString("Scenarios\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, id := range m.scenarios {
		cursor := "  "
		lineStyle := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			lineStyle = lineStyle.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := id
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(lineStyle.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return style.Render(sidebar.String())
}

// renderTableContent renders the table or empty message.
func (m RunsModel) renderTableContent() string {
	if len(m.runs) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(1, 2).
			Render("No runs recorded yet.")
	}
	return m.table.View()
}

func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// RunRunsBrowser runs the runs browser screen.
func RunRunsBrowser(store *storage.Store, start string, width, height int) error {
	p := tea.NewProgram(
		NewRunsModel(store, start, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
