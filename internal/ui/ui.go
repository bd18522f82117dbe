package ui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"sprout/internal/category"
	"sprout/internal/config"
	"sprout/internal/focus"
	"sprout/internal/notify"
	"sprout/internal/shell"
	"sprout/internal/storage"
	"sprout/internal/task"
	"sprout/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeTimer
)

type pane int

const (
	paneTasks pane = iota
	paneSidebar
)

// Prefs stores UI preferences that outlive a session.
type Prefs interface {
	SaveSettings(storage.Settings) error
	SavePanelCollapsed(bool) error
}

// Deps is everything the program needs from the outside.
type Deps struct {
	View      *view.Coordinator
	Prefs     Prefs
	Keys      config.Keymap
	Pomodoro  focus.Config
	Collapsed bool
	Notifier  notify.Notifier
	Logger    *log.Logger
	Now       func() time.Time
}

type signalMsg shell.Signal

type tickMsg struct {
	gen int
}

type pendingDelete struct {
	taskID     int64
	categoryID string
	label      string
}

type Model struct {
	view     *view.Coordinator
	prefs    Prefs
	keys     config.Keymap
	notifier notify.Notifier
	shell    shell.Channel
	logger   *log.Logger
	now      func() time.Time

	pomodoro focus.Config
	timer    *focus.Timer
	tickGen  int
	focusBar progress.Model
	breakBar progress.Model

	cursor     int
	treeCursor int
	pane       pane
	mode       mode
	form       *formState
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *pendingDelete

	collapsed bool
	maximized bool
	compact   bool
	width     int
	height    int
}

// New builds the model. Signals go to ch; the terminal host created by Run
// feeds them back to the model as messages.
func New(d Deps, ch shell.Channel) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		d.Notifier = notify.Log{Logger: d.Logger}
	}
	if ch == nil {
		ch = shell.Discard
	}

	m := Model{
		view:      d.View,
		prefs:     d.Prefs,
		keys:      d.Keys,
		notifier:  d.Notifier,
		shell:     ch,
		logger:    d.Logger,
		now:       d.Now,
		pomodoro:  d.Pomodoro,
		focusBar:  progress.New(progress.WithSolidFill(focusColor), progress.WithWidth(40)),
		breakBar:  progress.New(progress.WithSolidFill(breakColor), progress.WithWidth(40)),
		input:     ti,
		mode:      modeList,
		collapsed: d.Collapsed,
		status:    fmt.Sprintf("Press '%s' to add a task, '%s' to focus.", d.Keys.Add, d.Keys.Focus),
	}
	m.syncTreeCursor()
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(d Deps) error {
	host := &programHost{logger: d.Logger}
	p := tea.NewProgram(New(d, host), tea.WithAltScreen())
	host.p = p
	_, err := p.Run()
	return err
}

// programHost is the terminal side of the shell channel.
type programHost struct {
	p      *tea.Program
	logger *log.Logger
}

func (h *programHost) Send(s shell.Signal) {
	if h.logger != nil {
		h.logger.Debug("shell signal", "signal", s)
	}
	if h.p != nil {
		go h.p.Send(signalMsg(s))
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeTimer()
			return m, tea.Quit
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tickMsg:
		return m.updateTick(msg)
	case signalMsg:
		return m.handleSignal(shell.Signal(msg))
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-20, 10)
		w := min(max(msg.Width-10, 10), 60)
		m.focusBar.Width, m.breakBar.Width = w, w
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeForm:
		return m.updateFormMode(key, msg)
	case modeTimer:
		return m.updateTimerMode(key)
	}
	switch key {
	case m.keys.Minimize:
		m.shell.Send(shell.Minimize)
		return m, nil
	case m.keys.Maximize:
		m.shell.Send(shell.Maximize)
		return m, nil
	case m.keys.Quit:
		m.shell.Send(shell.Close)
		return m, nil
	}
	if m.pane == paneSidebar {
		return m.updateSidebar(key)
	}
	return m.updateListMode(key)
}

// handleSignal is the terminal's reaction to a window-control signal.
func (m Model) handleSignal(s shell.Signal) (tea.Model, tea.Cmd) {
	switch s {
	case shell.Minimize:
		return m, tea.Suspend
	case shell.Maximize:
		m.maximized = !m.maximized
		if m.maximized {
			m.pane = paneTasks
		}
	case shell.Close:
		m.closeTimer()
		return m, tea.Quit
	case shell.EnterCompactMode:
		m.compact = true
	case shell.LeaveCompactMode:
		m.compact = false
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.view.Visible()
	switch key {
	case m.keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(tasks))
	case m.keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(tasks))
	case m.keys.SwitchPane:
		if !m.sidebarHidden() {
			m.pane = paneSidebar
		}
	case m.keys.Sidebar:
		return m.toggleSidebar()
	case m.keys.Add:
		return m.startForm(addTaskForm())
	case m.keys.AddCategory:
		return m.startForm(addCategoryForm())
	case m.keys.Settings:
		return m.startForm(settingsForm(m.pomodoro))
	case m.keys.Toggle:
		if len(tasks) == 0 {
			return m, nil
		}
		r, err := m.view.ToggleTask(tasks[m.cursor].ID)
		if !m.reportErr("toggle", err) {
			m.status = fmt.Sprintf("Marked %q %s", r.Text, humanDone(r.Completed))
		}
		m.cursor = clampCursor(m.cursor, len(m.view.Visible()))
	case m.keys.Delete:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &pendingDelete{taskID: t.ID, label: t.Text}
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Text)
	case m.keys.Focus:
		return m.openTimer()
	}
	return m, nil
}

func (m Model) updateSidebar(key string) (tea.Model, tea.Cmd) {
	rows := m.treeRows()
	switch key {
	case m.keys.Down, "down":
		m.treeCursor = clampCursor(m.treeCursor+1, len(rows))
		m.selectRow(rows)
	case m.keys.Up, "up":
		m.treeCursor = clampCursor(m.treeCursor-1, len(rows))
		m.selectRow(rows)
	case m.keys.SwitchPane, m.keys.Cancel:
		m.pane = paneTasks
	case m.keys.Sidebar:
		return m.toggleSidebar()
	case m.keys.AddCategory, m.keys.Add:
		return m.startForm(addCategoryForm())
	case m.keys.Rename:
		id := m.view.Selection()
		if id == category.RootID {
			m.status = "The root category cannot be renamed"
			return m, nil
		}
		title, _ := m.view.Tree().Title(id)
		return m.startForm(renameForm(id, title))
	case m.keys.Delete:
		id := m.view.Selection()
		if id == category.RootID {
			m.status = "The root category cannot be deleted"
			return m, nil
		}
		title, _ := m.view.Tree().Title(id)
		m.confirmDel = true
		m.pendingDel = &pendingDelete{categoryID: id, label: title}
		m.status = fmt.Sprintf("Delete category \"%s\" and all its tasks? y/n", title)
	case m.keys.Settings:
		return m.startForm(settingsForm(m.pomodoro))
	}
	return m, nil
}

func (m *Model) selectRow(rows []treeRow) {
	if len(rows) == 0 {
		return
	}
	if err := m.view.Select(rows[m.treeCursor].id); err != nil {
		m.logger.Warn("select", "err", err)
		return
	}
	m.cursor = 0
	m.status = fmt.Sprintf("Showing %s", rows[m.treeCursor].title)
}

func (m *Model) syncTreeCursor() {
	for i, r := range m.treeRows() {
		if r.id == m.view.Selection() {
			m.treeCursor = i
			return
		}
	}
	m.treeCursor = 0
}

func (m Model) toggleSidebar() (tea.Model, tea.Cmd) {
	m.collapsed = !m.collapsed
	if m.collapsed {
		m.pane = paneTasks
	}
	if m.prefs != nil {
		if err := m.prefs.SavePanelCollapsed(m.collapsed); err != nil {
			m.logger.Error("save panel state", "err", err)
		}
	}
	return m, nil
}

func (m Model) sidebarHidden() bool {
	return m.collapsed || m.maximized
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		pd := m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		if pd == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		if pd.categoryID != "" {
			n, err := m.view.DeleteCategory(pd.categoryID)
			if !m.reportErr("delete", err) {
				m.status = fmt.Sprintf("Deleted category %q and %d tasks", pd.label, n)
			}
			m.syncTreeCursor()
		} else {
			if !m.reportErr("delete", m.view.RemoveTask(pd.taskID)) {
				m.status = "Deleted task"
			}
		}
		m.cursor = clampCursor(m.cursor, len(m.view.Visible()))
		return m, nil
	default:
		return m, nil
	}
}

// reportErr describes err on the status line and reports whether there was
// an error at all. Stale ids are only logged.
func (m *Model) reportErr(op string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, view.ErrNotSaved):
		m.status = fmt.Sprintf("%s: %v", op, err)
		return true
	case errors.Is(err, task.ErrNotFound), errors.Is(err, category.ErrNotFound):
		m.logger.Debug("stale id", "op", op, "err", err)
		return true
	case errors.Is(err, category.ErrRootProtected):
		m.status = "The root category cannot be renamed or deleted"
		return true
	case errors.Is(err, category.ErrBlankTitle), errors.Is(err, task.ErrBlankText):
		m.status = "Title cannot be empty"
		return true
	default:
		m.status = fmt.Sprintf("%s failed: %v", op, err)
		return true
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
