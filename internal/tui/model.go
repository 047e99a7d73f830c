package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/interact"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/ui"
	"github.com/gridsens/gridsens/internal/workspace"
)

// statusBarHeight is the chrome reserved below the grid.
const statusBarHeight = 1

// errorDisplayFor is how long an inline error stays on the status bar.
const errorDisplayFor = 5 * time.Second

// tickMsg drives the periodic redraw for clocks and the status bar.
type tickMsg time.Time

// updatesMsg signals that the scheduler delivered fresh poll results.
type updatesMsg struct{}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ws   *workspace.Workspace
	ctrl *interact.Controller
	keys keyMap
	help help.Model
	spin spinner.Model
	log  logger.Logger

	width  int
	height int
	geom   interact.Geometry

	form *panelForm

	paused    bool
	quitting  bool
	statusErr string
	errSince  time.Time
}

// NewModel builds the dashboard model over a restored workspace.
func NewModel(ws *workspace.Workspace, log logger.Logger) Model {
	if log == nil {
		log = logger.Noop()
	}
	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ui.ColorAccent)),
	)
	m := Model{
		ws:   ws,
		keys: defaultKeyMap(),
		help: help.New(),
		spin: sp,
		log:  log,
		geom: interact.Geometry{CellW: 1, CellH: 1},
	}
	m.ctrl = interact.NewController(ws.Surface(), m.geom, log)
	return m
}

// Controller exposes the gesture state machine, mainly for tests.
func (m Model) Controller() *interact.Controller { return m.ctrl }

// Init starts the redraw tick, the spinner, and the poll-result pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spin.Tick,
		waitUpdates(m.ws.Updates()),
	)
}

// tickCmd schedules the next periodic redraw.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitUpdates blocks on the scheduler's wakeup channel and converts each
// signal into a message. Re-armed after every delivery.
func waitUpdates(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return updatesMsg{}
	}
}

// Update handles one event-loop message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.recomputeGeometry()
		return m, nil

	case tea.FocusMsg:
		if !m.paused {
			m.ws.ResumeAll()
		}
		return m, nil

	case tea.BlurMsg:
		m.ws.PauseAll()
		return m, nil

	case tickMsg:
		m.ws.PumpUpdates()
		if m.statusErr != "" && time.Since(m.errSince) > errorDisplayFor {
			m.statusErr = ""
		}
		return m, tickCmd()

	case updatesMsg:
		m.ws.PumpUpdates()
		return m, waitUpdates(m.ws.Updates())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.form != nil {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// recomputeGeometry rescales grid cells to the terminal, reserving the
// status bar row. The controller keeps any gesture in progress.
func (m *Model) recomputeGeometry() {
	g := m.ws.Grid()
	gridH := m.height - statusBarHeight
	m.geom = interact.Geometry{
		CellW: max(1, m.width/max(1, g.Columns())),
		CellH: max(1, gridH/max(1, g.Rows())),
	}
	m.ctrl.SetGeometry(m.geom)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.ctrl.State() != interact.StateIdle {
			m.ctrl.Cancel()
			return m, nil
		}
		m.ctrl.ClearSelection()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		form, err := newPanelForm(m.ws, "")
		if err != nil {
			m.reportErr(err)
			return m, nil
		}
		m.form = form
		return m, form.Init()

	case key.Matches(msg, m.keys.Edit):
		sel := m.ctrl.Selection()
		if len(sel) != 1 {
			return m, nil
		}
		form, err := newPanelForm(m.ws, sel[0])
		if err != nil {
			m.reportErr(err)
			return m, nil
		}
		m.form = form
		return m, form.Init()

	case key.Matches(msg, m.keys.Delete):
		for _, id := range m.ctrl.Selection() {
			if err := m.ws.DeletePanel(id); err != nil {
				m.reportErr(err)
				continue
			}
			m.ctrl.DetachPanel(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.Duplicate):
		sel := m.ctrl.Selection()
		if len(sel) != 1 {
			return m, nil
		}
		if _, err := m.ws.ClonePanel(sel[0]); err != nil {
			m.reportErr(err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.paused {
			m.ws.PauseAll()
		} else {
			m.ws.ResumeAll()
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if err := m.ws.SaveProfile(""); err != nil {
			m.reportErr(err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Nudge):
		m.nudgeSelection(msg.String())
		return m, nil
	}

	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	additive := msg.Shift || msg.Ctrl
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ctrl.Press(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		m.ctrl.Move(msg.X, msg.Y)
	case tea.MouseActionRelease:
		if err := m.ctrl.Release(msg.X, msg.Y, additive); err != nil {
			m.reportErr(err)
		}
	}
}

// nudgeSelection moves the whole selection one cell with the arrow keys,
// the keyboard fallback for terminals without mouse support. The move is
// all-or-nothing, matching a drag commit.
func (m *Model) nudgeSelection(keyName string) {
	sel := m.ctrl.Selection()
	if len(sel) == 0 {
		return
	}
	dx, dy := 0, 0
	switch keyName {
	case "up":
		dy = -1
	case "down":
		dy = 1
	case "left":
		dx = -1
	case "right":
		dx = 1
	default:
		return
	}

	surface := m.ws.Surface()
	moves := make(map[string]grid.Rect, len(sel))
	for _, id := range sel {
		r, ok := surface.RectOf(id)
		if !ok {
			continue
		}
		moves[id] = r.Translate(dx, dy)
	}
	if len(moves) == 0 {
		return
	}
	if err := surface.Apply(moves); err != nil {
		m.reportErr(err)
	}
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, cmd := m.form.Update(msg)
	if !done {
		return m, cmd
	}
	result := m.form.Err()
	m.form = nil
	if result != nil {
		m.reportErr(result)
	}
	return m, cmd
}

// reportErr places an error on the status bar. Errors from rejected
// gestures and failed panel edits surface here instead of crashing or
// silently vanishing.
func (m *Model) reportErr(err error) {
	if err == nil {
		return
	}
	m.statusErr = err.Error()
	m.errSince = time.Now()
	m.log.Debug("ui error: %v", err)
}
