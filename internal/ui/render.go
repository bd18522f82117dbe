package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sprout/internal/config"
	"sprout/internal/focus"
	"sprout/internal/task"
)

const (
	focusColor = "#E5484D"
	breakColor = "#30A46C"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#30A46C"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activePane    = paneStyle.BorderForeground(lipgloss.Color("#30A46C"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2F6F4F"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	doneStyle     = mutedStyle.Strikethrough(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	clockStyle    = lipgloss.NewStyle().Bold(true).Padding(1, 2)

	urgencyStyles = map[task.Urgency]lipgloss.Style{
		task.UrgencyOverdue: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D")).Bold(true),
		task.UrgencyUrgent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F76B15")),
		task.UrgencySoon:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC53D")),
		task.UrgencyNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8E8E8E")),
	}
)

type treeRow struct {
	id    string
	title string
	depth int
}

func (m Model) treeRows() []treeRow {
	var rows []treeRow
	m.view.Tree().Walk(func(id, title string, depth int) {
		rows = append(rows, treeRow{id: id, title: title, depth: depth})
	})
	return rows
}

func (m Model) View() string {
	if m.compact && m.timer != nil {
		var b strings.Builder
		b.WriteString(m.renderTimer())
		b.WriteString("\n")
		m.writeForm(&b)
		b.WriteString(statusStyle.Render(m.status))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("sprout"))
	b.WriteString("\n\n")

	var body string
	switch {
	case m.timer != nil && m.mode == modeTimer:
		body = m.renderTimer()
	case m.sidebarHidden():
		body = m.renderPane(m.renderTaskList(), paneTasks)
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPane(m.renderSidebar(), paneSidebar),
			m.renderPane(m.renderTaskList(), paneTasks))
	}
	b.WriteString(body)
	b.WriteString("\n")

	m.writeForm(&b)

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	if !m.maximized {
		b.WriteString(mutedStyle.Render(renderHelp(m.keys)))
	}
	return b.String()
}

func (m Model) renderPane(content string, p pane) string {
	if m.pane == p && m.mode == modeList {
		return activePane.Render(content)
	}
	return paneStyle.Render(content)
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString("Categories\n")
	for _, r := range m.treeRows() {
		total, open := m.view.Count(r.id)
		line := fmt.Sprintf("%s%s (%d/%d)", strings.Repeat("  ", r.depth), r.title, open, total)
		if r.id == m.view.Selection() {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTaskList() string {
	title, _ := m.view.Tree().Title(m.view.Selection())
	tasks := m.view.Visible()

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.keys.Add)))
		return b.String()
	}
	now := m.now()
	for i, t := range tasks {
		cursor := " "
		if m.cursor == i && m.pane == paneTasks {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		text := t.Text
		if t.Completed {
			text = doneStyle.Render(text)
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox, text)
		if t.Deadline != nil {
			label := task.DeadlineLabel(now, *t.Deadline)
			if style, ok := urgencyStyles[t.Urgency(now)]; ok {
				label = style.Render(label)
			} else {
				label = mutedStyle.Render(label)
			}
			line += "  " + label
		}
		if t.TotalFocusMinutes > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  %dm focused", t.TotalFocusMinutes))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTimer() string {
	st := m.timer.State()
	label := m.timer.Label()
	if label == "" {
		label = "Focus"
	}
	bar := m.focusBar
	if st.Mode == focus.Break {
		bar = m.breakBar
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(label))
	b.WriteString("\n")
	state := "idle"
	if st.Running {
		state = "running"
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s • %s", modeTitle(st.Mode), state)))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(focus.FormatClock(st.Remaining)))
	b.WriteString("\n")
	b.WriteString(bar.ViewAs(m.timer.Progress()))
	if pending, ok := m.timer.Pending(); ok {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("next: %d min focus, %d min break",
			pending.FocusSeconds/60, pending.BreakSeconds/60)))
	}
	return b.String()
}

func (m Model) writeForm(b *strings.Builder) {
	if m.form == nil {
		return
	}
	b.WriteString(m.renderForm())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
}

func (m Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.form.title)
	b.WriteString("\n")
	for i, name := range m.form.fields {
		prefix := " "
		val := m.form.values[i]
		if i == m.form.index {
			prefix = ">"
			val = m.input.Value()
		}
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-40s : %s\n", prefix, name, val))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s pane • %s add • %s category • %s toggle • %s delete • %s rename • %s focus • %s settings • %s sidebar • %s quit",
		k.Up, k.Down, k.SwitchPane, k.Add, k.AddCategory, keyLabel(k.Toggle), k.Delete, k.Rename, k.Focus, k.Settings, k.Sidebar, k.Quit)
}
