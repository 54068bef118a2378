package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetris-ga/internal/storage"
)

// shortIDLen is how much of a run UUID the tables show.
const shortIDLen = 8

// RunSource provides the persisted runs the browser shows.
type RunSource interface {
	RecentRuns(limit int) ([]storage.Run, error)
	Generations(runID string) ([]storage.Generation, error)
}

// HistoryKeyMap defines the key bindings for the run browser.
type HistoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "generations"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing optimizer runs.
type HistoryModel struct {
	source   RunSource
	limit    int
	runs     []storage.Run
	gens     []storage.Generation
	current  *storage.Run // Run whose generations are shown, nil on the run list
	table    table.Model
	help     help.Model
	keys     HistoryKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewHistoryModel creates a browser over the most recent runs.
func NewHistoryModel(source RunSource, limit, width, height int) HistoryModel {
	m := HistoryModel{
		source: source,
		limit:  limit,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.loadRuns()
	return m
}

func tableStyles() table.Styles {
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
	return s
}

func (m *HistoryModel) newTable(columns []table.Column, rows []table.Row) {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for title, help, and margins
	)
	t.SetStyles(tableStyles())
	m.table = t
}

// loadRuns switches to the run list.
func (m *HistoryModel) loadRuns() {
	m.current = nil
	m.gens = nil
	m.runs, m.err = m.source.RecentRuns(m.limit)

	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		rows[i] = table.Row{
			ShortID(r.ID),
			r.StartedAt.Local().Format("Jan 02 15:04"),
			string(r.Status),
			fmt.Sprintf("%d", r.Generations),
			fmt.Sprintf("%d", r.BestScore),
			r.BestWeights.Encode(),
		}
	}
	m.newTable([]table.Column{
		{Title: "Run", Width: shortIDLen},
		{Title: "Started", Width: 12},
		{Title: "Status", Width: 9},
		{Title: "Gens", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Weights", Width: 32},
	}, rows)
}

// loadGenerations switches to the history of the selected run.
func (m *HistoryModel) loadGenerations(r storage.Run) {
	m.current = &r
	m.gens, m.err = m.source.Generations(r.ID)

	rows := make([]table.Row, len(m.gens))
	for i, g := range m.gens {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%d", g.BestScore),
			fmt.Sprintf("%d", g.BestEverScore),
			fmt.Sprintf("%.1f", g.AvgScore),
			fmt.Sprintf("%d", g.WorstScore),
			g.Elapsed.Round(time.Millisecond).String(),
		}
	}
	m.newTable([]table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Best ever", Width: 10},
		{Title: "Avg", Width: 10},
		{Title: "Worst", Width: 9},
		{Title: "Time", Width: 10},
	}, rows)
}

// Init initializes the browser.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.current == nil {
				m.quitting = true
				return m, tea.Quit
			}
			m.loadRuns()
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if m.current == nil && len(m.runs) > 0 {
				m.loadGenerations(m.runs[m.table.Cursor()])
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-8, 3))
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "OPTIMIZER RUNS"
	if m.current != nil {
		title = fmt.Sprintf("RUN %s - best %d", ShortID(m.current.ID), m.current.BestScore)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(boxStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table, an error, or an empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return emptyStyle.Foreground(lipgloss.Color("1")).Render("Error: " + m.err.Error())
	case m.current == nil && len(m.runs) == 0:
		return emptyStyle.Render("No runs recorded yet.\nStart one with `tetrisga evolve`.")
	case m.current != nil && len(m.gens) == 0:
		return emptyStyle.Render("This run has no completed generations.")
	}
	return m.table.View()
}

// Selected returns the run whose generations are shown, or nil.
func (m HistoryModel) Selected() *storage.Run {
	return m.current
}

// IsQuitting returns true if the user closed the browser.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// ShortID abbreviates a run ID for display.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// RunHistory runs the run browser in the current terminal.
func RunHistory(source RunSource, limit, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(source, limit, width, height),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
