package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sprout/internal/focus"
	"sprout/internal/shell"
)

// tick schedules the next one-second beat for generation gen. Bumping
// tickGen orphans any beat already in flight.
func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// openTimer opens the focus view for the selected task. With no tasks the
// timer runs unattached.
func (m Model) openTimer() (tea.Model, tea.Cmd) {
	var opts []focus.Option
	tasks := m.view.Visible()
	if len(tasks) > 0 {
		t := tasks[m.cursor]
		if t.Completed {
			m.status = "Completed tasks cannot be focused"
			return m, nil
		}
		opts = append(opts, focus.WithTask(t.ID, t.Text), focus.WithCompletionHook(m.view.RecordFocus))
	}
	opts = append(opts, focus.WithNotifier(m.notifier))

	timer, err := focus.New(m.pomodoro, opts...)
	if err != nil {
		m.status = fmt.Sprintf("timer: %v", err)
		return m, nil
	}
	m.timer = timer
	m.tickGen++
	m.mode = modeTimer
	m.status = m.timerHelp()
	m.shell.Send(shell.EnterCompactMode)
	return m, nil
}

func (m Model) updateTimerMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.StartStop:
		if m.timer.State().Running {
			m.timer.Stop()
			m.tickGen++
			m.status = "Stopped; progress discarded"
			return m, nil
		}
		if !m.timer.Start() {
			return m, nil
		}
		m.tickGen++
		m.status = fmt.Sprintf("%s started", modeTitle(m.timer.State().Mode))
		return m, tick(m.tickGen)
	case m.keys.Reset:
		m.timer.Reset()
		m.tickGen++
		m.status = "Timer reset"
	case m.keys.SwitchMode:
		m.timer.SwitchMode()
		m.tickGen++
		m.status = fmt.Sprintf("Switched to %s", m.timer.State().Mode)
	case m.keys.Settings:
		return m.startForm(settingsForm(m.pomodoro))
	case m.keys.Minimize:
		m.shell.Send(shell.Minimize)
	case m.keys.Cancel, m.keys.Quit, m.keys.Focus:
		m.closeTimer()
		m.status = "Timer closed"
	}
	return m, nil
}

func (m Model) updateTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if m.timer == nil || msg.gen != m.tickGen {
		return m, nil
	}
	finished := m.timer.State().Mode
	if m.timer.Tick() {
		title, body := focus.CompletionMessage(finished, m.timer.Label())
		m.status = fmt.Sprintf("%s. %s", title, body)
		m.cursor = clampCursor(m.cursor, len(m.view.Visible()))
		return m, nil
	}
	if !m.timer.State().Running {
		return m, nil
	}
	return m, tick(m.tickGen)
}

// closeTimer stops the countdown and drops its driver before the timer goes
// away.
func (m *Model) closeTimer() {
	if m.timer == nil {
		return
	}
	m.timer.Close()
	m.tickGen++
	m.timer = nil
	if m.mode == modeTimer {
		m.mode = modeList
	}
	m.shell.Send(shell.LeaveCompactMode)
}

func (m Model) timerHelp() string {
	k := m.keys
	return fmt.Sprintf("%s start/stop • %s reset • %s switch mode • %s settings • %s close",
		keyLabel(k.StartStop), k.Reset, k.SwitchMode, k.Settings, k.Cancel)
}

func modeTitle(md focus.Mode) string {
	if md == focus.Break {
		return "Break"
	}
	return "Focus"
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
