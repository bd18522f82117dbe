package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sprout/internal/config"
	"sprout/internal/focus"
	"sprout/internal/storage"
	"sprout/internal/view"
)

const deadlineLayout = "2006-01-02 15:04"

type formKind int

const (
	formAddTask formKind = iota
	formAddCategory
	formRename
	formSettings
)

// formState is a small multi-field editor. Tab and shift+tab move between
// fields, enter advances and saves on the last field.
type formState struct {
	kind   formKind
	title  string
	fields []string
	values []string
	index  int
	target string
}

func addTaskForm() *formState {
	return &formState{
		kind:   formAddTask,
		title:  "New task",
		fields: []string{"text", "deadline (YYYY-MM-DD HH:MM, optional)"},
		values: make([]string, 2),
	}
}

func addCategoryForm() *formState {
	return &formState{
		kind:   formAddCategory,
		title:  "New category",
		fields: []string{"title"},
		values: make([]string, 1),
	}
}

func renameForm(id, current string) *formState {
	return &formState{
		kind:   formRename,
		title:  "Rename category",
		fields: []string{"title"},
		values: []string{current},
		target: id,
	}
}

func settingsForm(cfg focus.Config) *formState {
	return &formState{
		kind:  formSettings,
		title: "Pomodoro settings",
		fields: []string{
			fmt.Sprintf("focus minutes (%d-%d)", config.MinFocusMinutes, config.MaxFocusMinutes),
			fmt.Sprintf("break minutes (%d-%d)", config.MinBreakMinutes, config.MaxBreakMinutes),
		},
		values: []string{
			strconv.Itoa(cfg.FocusSeconds / 60),
			strconv.Itoa(cfg.BreakSeconds / 60),
		},
	}
}

func (fs formState) currentLabel() string {
	return fs.fields[fs.index]
}

func (fs formState) currentValue() string {
	return fs.values[fs.index]
}

func (fs *formState) setCurrentValue(v string) {
	fs.values[fs.index] = v
}

func (m Model) startForm(fs *formState) (tea.Model, tea.Cmd) {
	m.form = fs
	m.mode = modeForm
	m.input.SetValue(fs.currentValue())
	m.input.Placeholder = fs.currentLabel()
	m.status = m.formPrompt()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(m.form.fields)-1 {
			return m.submitForm()
		}
		m.moveField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(m.form.fields))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.status = m.formPrompt()
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeList
	if m.timer != nil {
		m.mode = modeTimer
	}
	m.input.SetValue("")
	m.input.Blur()
}

// submitForm applies the form. Validation failures keep the form open with a
// warning on the status line.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	fs := m.form
	switch fs.kind {
	case formAddTask:
		deadline, err := parseDeadline(fs.values[1])
		if err != nil {
			m.status = fmt.Sprintf("deadline invalid: use %s", deadlineLayout)
			return m, nil
		}
		r, err := m.view.AddTask(fs.values[0], deadline)
		if m.reportErr("add", err) && !errors.Is(err, view.ErrNotSaved) {
			return m, nil
		}
		m.closeForm()
		m.cursorTo(r.ID)
		if err == nil {
			m.status = "Added task"
		}
	case formAddCategory:
		id, err := m.view.AddCategory(fs.values[0])
		if m.reportErr("add category", err) && !errors.Is(err, view.ErrNotSaved) {
			return m, nil
		}
		m.closeForm()
		if err == nil {
			m.status = fmt.Sprintf("Added category %q", strings.TrimSpace(fs.values[0]))
		}
		m.logger.Debug("category added", "id", id)
	case formRename:
		err := m.view.RenameCategory(fs.target, fs.values[0])
		if m.reportErr("rename", err) && !errors.Is(err, view.ErrNotSaved) {
			return m, nil
		}
		m.closeForm()
		if err == nil {
			m.status = "Renamed category"
		}
	case formSettings:
		return m.applySettings(fs.values[0], fs.values[1])
	}
	return m, nil
}

func (m Model) applySettings(focusText, breakText string) (tea.Model, tea.Cmd) {
	p, err := parsePomodoro(focusText, breakText)
	if err != nil {
		m.status = fmt.Sprintf("settings invalid: %v", err)
		return m, nil
	}
	cfg := focus.FromMinutes(p.FocusMinutes, p.BreakMinutes)
	m.pomodoro = cfg
	m.closeForm()
	m.status = "Settings saved"
	if m.timer != nil {
		applied, err := m.timer.Reconfigure(cfg)
		switch {
		case err != nil:
			m.status = fmt.Sprintf("settings invalid: %v", err)
			return m, nil
		case !applied:
			m.status = "Settings saved; they apply when the timer stops"
		}
	}
	if m.prefs != nil {
		err := m.prefs.SaveSettings(storage.Settings{FocusMinutes: p.FocusMinutes, BreakMinutes: p.BreakMinutes})
		if err != nil {
			m.logger.Error("save settings", "err", err)
			m.status = fmt.Sprintf("settings not saved: %v", err)
		}
	}
	return m, nil
}

func (m *Model) cursorTo(id int64) {
	for i, r := range m.view.Visible() {
		if r.ID == id {
			m.cursor = i
			return
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.view.Visible()))
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	if len(m.form.fields) == 1 {
		return fmt.Sprintf("%s: Enter to save, Esc to cancel.", m.form.title)
	}
	return fmt.Sprintf("%s: editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.form.title, m.form.currentLabel(), m.form.index+1, len(m.form.fields))
}

func parseDeadline(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(deadlineLayout, v, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePomodoro(focusText, breakText string) (config.Pomodoro, error) {
	f, err := strconv.Atoi(strings.TrimSpace(focusText))
	if err != nil {
		return config.Pomodoro{}, fmt.Errorf("focus minutes: %w", err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(breakText))
	if err != nil {
		return config.Pomodoro{}, fmt.Errorf("break minutes: %w", err)
	}
	p := config.Pomodoro{FocusMinutes: f, BreakMinutes: b}
	return p, p.Validate()
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
