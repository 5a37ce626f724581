package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m *Model) initBubbleComponents() {
	m.taskTable = table.New(
		table.WithColumns(taskColumns(m.width)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "Buy milk tomorrow at 5pm #errands p2"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 60

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 60

	m.focusProgress = progress.New(progress.WithDefaultGradient())
	m.helpModel = help.New()
	m.detailViewport = viewport.New(48, 14)
}

func taskColumns(width int) []table.Column {
	title := max(width*3/5-50, 20)
	return []table.Column{
		{Title: " ", Width: 2},
		{Title: "P", Width: 2},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 12},
		{Title: "Due", Width: 16},
	}
}

// syncBubbleData copies model state into the bubbles components before
// rendering.
func (m *Model) syncBubbleData() {
	tasks := m.visibleTasks()
	m.List.Cursor = clampCursor(m.List.Cursor, len(tasks))
	now := m.store.Now()

	m.taskTable.SetColumns(taskColumns(m.width))
	m.taskTable.SetHeight(max(m.height-14, 6))
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		mark := " "
		if m.List.Selected[t.ID] {
			mark = "*"
		}
		priority := "-"
		if t.Priority != "" && t.Priority != model.PriorityNone {
			priority = strings.ToUpper(string(t.Priority)[:1])
		}
		rows = append(rows, table.Row{mark, priority, t.Title, string(t.Status), formatDue(t.DueDate, now)})
	}
	m.taskTable.SetRows(rows)
	if len(rows) > 0 {
		m.taskTable.SetCursor(m.List.Cursor)
	}

	m.quickAddInput.SetValue(m.QuickAdd.Input)
	m.commandInput.SetValue(m.Palette.Input)
	if m.QuickAdd.Active {
		m.quickAddInput.Focus()
	}
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	m.detailViewport.Width = max(m.width*2/5-8, 30)
	if t, ok := m.currentTask(); ok {
		md := t.Description
		if strings.TrimSpace(md) == "" {
			md = "_No description_"
		}
		m.detailViewport.SetContent(views.RenderMarkdown(md, m.detailViewport.Width))
	} else {
		m.detailViewport.SetContent("")
	}
}

func (m Model) renderProgress() string {
	return fmt.Sprintf("%s %d%%", m.focusProgress.ViewAs(m.Timer.Progress()), int(m.Timer.Progress()*100))
}

func (m *Model) resizeComponents() {
	inputWidth := max(m.width*3/5-12, 20)
	m.quickAddInput.Width = inputWidth
	m.commandInput.Width = inputWidth
	m.focusProgress.Width = max(m.width*3/5-16, 20)
	m.helpModel.Width = max(m.width*2/5-8, 30)
}
