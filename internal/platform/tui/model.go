package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tetris-ga/internal/core"
	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// Speed limits for the viewer, in simulation steps per frame.
const (
	minStepsPerTick = 1
	maxStepsPerTick = 512

	restartDelay = 3 * time.Second // Pause on a finished run before auto restart
)

// WatchOptions configures the game viewer.
type WatchOptions struct {
	Sim         tetris.DriverConfig
	Runtime     core.RuntimeConfig
	AutoRestart bool // Start a fresh game with a new seed when the run ends
}

// WatchModel is the Bubble Tea model that plays and draws one game.
type WatchModel struct {
	opts      WatchOptions
	driver    *tetris.Driver
	screen    *core.Screen
	keys      WatchKeyMap
	keyMapper *KeyMapper
	help      help.Model
	width     int
	height    int
	steps     int         // Simulation steps per tick
	intent    core.Action // Manual intent for the next step
	last      core.StepResult
	paused    bool
	quitting  bool
	doneTicks int
}

// NewWatchModel creates a viewer for the configured game.
func NewWatchModel(opts WatchOptions) WatchModel {
	rt := opts.Runtime
	def := core.DefaultConfig()
	if rt.ScreenW <= 0 || rt.ScreenH <= 0 {
		rt.ScreenW, rt.ScreenH = def.ScreenW, def.ScreenH
	}
	if rt.TickRate <= 0 {
		rt.TickRate = def.TickRate
	}
	if rt.StepsPerTick <= 0 {
		rt.StepsPerTick = def.StepsPerTick
	}
	opts.Runtime = rt

	return WatchModel{
		opts:      opts,
		driver:    tetris.NewDriver(opts.Sim),
		screen:    core.NewScreen(rt.ScreenW, rt.ScreenH),
		keys:      DefaultWatchKeyMap(),
		keyMapper: NewKeyMapper(),
		help:      help.New(),
		width:     rt.ScreenW,
		height:    rt.ScreenH,
		steps:     min(max(rt.StepsPerTick, minStepsPerTick), maxStepsPerTick),
	}
}

// Init starts the tick loop.
func (m WatchModel) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil
	case key.Matches(msg, m.keys.Faster):
		m.steps = min(m.steps*2, maxStepsPerTick)
		return m, nil
	case key.Matches(msg, m.keys.Slower):
		m.steps = max(m.steps/2, minStepsPerTick)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.last = m.driver.Step(core.ActionQuit)
		m.quitting = true
		return m, tea.Quit
	}
	if m.opts.Sim.Manual && action.IsMove() {
		m.intent = action
	}
	return m, nil
}

// handleTick advances the simulation by the current speed.
func (m WatchModel) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	if m.driver.Done() {
		if !m.opts.AutoRestart {
			return m, tickCmd(m.opts.Runtime.TickRate)
		}
		m.doneTicks++
		if m.doneTicks >= m.opts.Runtime.TickRate*int(restartDelay/time.Second) {
			m.restart(time.Now().UnixNano())
		}
		return m, tickCmd(m.opts.Runtime.TickRate)
	}

	if !m.paused {
		for i := 0; i < m.steps && !m.driver.Done(); i++ {
			m.last = m.driver.Step(m.intent)
			m.intent = core.ActionNone
		}
	}
	return m, tickCmd(m.opts.Runtime.TickRate)
}

// restart replaces the finished game with a fresh one on a new seed.
func (m *WatchModel) restart(seed int64) {
	m.opts.Sim.Seed = seed
	m.driver = tetris.NewDriver(m.opts.Sim)
	m.last = core.StepResult{}
	m.doneTicks = 0
}

// View renders the current state to a string for display.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	status := m.statusLine()
	h := max(m.height-lipgloss.Height(status), 1)
	if m.screen.Width() != m.width || m.screen.Height() != h {
		m.screen.Resize(m.width, h)
	}

	m.driver.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + status
}

func (m WatchModel) statusLine() string {
	state := fmt.Sprintf("x%d", m.steps)
	if m.paused {
		state += " PAUSED"
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return style.Render(state + "  " + m.help.View(m.keys))
}

// Driver returns the running simulation.
func (m WatchModel) Driver() *tetris.Driver { return m.driver }

// Paused reports whether the simulation is paused.
func (m WatchModel) Paused() bool { return m.paused }

// StepsPerTick returns the current speed.
func (m WatchModel) StepsPerTick() int { return m.steps }

// LastStep returns the result of the most recent simulation step.
func (m WatchModel) LastStep() core.StepResult { return m.last }

// IsQuitting returns true if the user asked to quit.
func (m WatchModel) IsQuitting() bool { return m.quitting }

// Watch runs the viewer in the current terminal.
func Watch(opts WatchOptions) error {
	p := tea.NewProgram(
		NewWatchModel(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
