package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskRowData struct {
	ID       string
	Title    string
	Status   string
	Priority string
	Due      string
	Overdue  bool
	Tags     []string
	Selected bool
	Cursor   bool
}

type ListPanelData struct {
	TableView string
	Count     int
	Filter    string
	Sort      string
	Search    string
}

type QuickAddData struct {
	InputView   string
	Preview     string
	Suggestions []string
}

type DetailData struct {
	ID              string
	Title           string
	Status          string
	Priority        string
	Due             string
	Project         string
	Tags            []string
	Repeat          string
	Estimate        string
	Pomodoros       int
	Subtasks        []string
	DescriptionView string
}

type ColumnData struct {
	Label string
	Tasks []TaskRowData
}

type QuadrantData struct {
	Label string
	Hint  string
	Tasks []TaskRowData
}

type CalendarDayData struct {
	Label string
	Today bool
	Tasks []TaskRowData
}

type CalendarPanelData struct {
	Title string
	Days  []CalendarDayData
}

type HabitRowData struct {
	Name          string
	Frequency     string
	ScheduledDay  bool
	DoneToday     bool
	CurrentStreak int
	LongestStreak int
	Rate          int
	Cursor        bool
}

type FocusPanelData struct {
	TaskTitle    string
	Phase        string
	Timer        string
	ProgressView string
	Sessions     int
	Running      bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

type NotificationData struct {
	ID    string
	Title string
	Body  string
	Level string
	Read  bool
}

var (
	priorityStyles = map[string]lipgloss.Style{
		"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		"high":     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cellStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

func PriorityBadge(priority string) string {
	style, ok := priorityStyles[priority]
	if !ok {
		return mutedStyle.Render("·")
	}
	return style.Render(strings.ToUpper(priority[:1]))
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("tasks (%d)", data.Count)) + "\n")
	meta := []string{"sort: " + data.Sort}
	if data.Filter != "" {
		meta = append(meta, "filter: "+data.Filter)
	}
	if data.Search != "" {
		meta = append(meta, fmt.Sprintf("search: %q", data.Search))
	}
	b.WriteString(mutedStyle.Render(strings.Join(meta, " | ")) + "\n")
	if data.Count == 0 {
		b.WriteString("(no tasks match)")
		return b.String()
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderQuickAdd(data QuickAddData) string {
	var b strings.Builder
	b.WriteString(data.InputView + "\n")
	if data.Preview != "" {
		b.WriteString(mutedStyle.Render("→ "+data.Preview) + "\n")
	}
	if len(data.Suggestions) > 0 {
		b.WriteString(mutedStyle.Render("try: " + strings.Join(data.Suggestions, ", ")))
	}
	return strings.TrimSpace(b.String())
}

func RenderDetailPane(data DetailData) string {
	if data.ID == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(data.Title) + "\n")
	b.WriteString(fmt.Sprintf("status: %s | priority: %s %s\n", data.Status, PriorityBadge(data.Priority), data.Priority))
	if data.Due != "" {
		b.WriteString("due: " + data.Due + "\n")
	}
	if data.Project != "" {
		b.WriteString("project: " + data.Project + "\n")
	}
	if len(data.Tags) > 0 {
		b.WriteString("tags: #" + strings.Join(data.Tags, " #") + "\n")
	}
	if data.Repeat != "" {
		b.WriteString("repeat: " + data.Repeat + "\n")
	}
	if data.Estimate != "" {
		b.WriteString("estimate: " + data.Estimate + "\n")
	}
	if data.Pomodoros > 0 {
		b.WriteString(fmt.Sprintf("pomodoros: %d\n", data.Pomodoros))
	}
	if len(data.Subtasks) > 0 {
		b.WriteString("subtasks:\n")
		for _, s := range data.Subtasks {
			b.WriteString("  " + s + "\n")
		}
	}
	if data.DescriptionView != "" {
		b.WriteString("\n" + data.DescriptionView)
	}
	b.WriteString("\n" + mutedStyle.Render("id: "+data.ID))
	return strings.TrimSpace(b.String())
}

func RenderKanbanPanel(columns []ColumnData, width int) string {
	if len(columns) == 0 {
		return ""
	}
	colWidth := max(width/len(columns)-4, 16)
	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks))) + "\n")
		for _, t := range col.Tasks {
			b.WriteString(renderTaskLine(t) + "\n")
		}
		rendered = append(rendered, cellStyle.Width(colWidth).Render(strings.TrimSpace(b.String())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderMatrixPanel lays quadrants out two per row in the given order.
func RenderMatrixPanel(quadrants []QuadrantData, width int) string {
	cellWidth := max(width/2-4, 20)
	cells := make([]string, 0, len(quadrants))
	for _, q := range quadrants {
		var b strings.Builder
		b.WriteString(titleStyle.Render(q.Label) + " " + mutedStyle.Render(q.Hint) + "\n")
		if len(q.Tasks) == 0 {
			b.WriteString(mutedStyle.Render("(empty)"))
		}
		for _, t := range q.Tasks {
			b.WriteString(renderTaskLine(t) + "\n")
		}
		cells = append(cells, cellStyle.Width(cellWidth).Render(strings.TrimSpace(b.String())))
	}
	rows := make([]string, 0, 2)
	for i := 0; i < len(cells); i += 2 {
		end := min(i+2, len(cells))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(data.Title) + "\n")
	for _, day := range data.Days {
		label := day.Label
		if day.Today {
			label = headerStyle.Render(label + " (today)")
		}
		b.WriteString("\n" + label + "\n")
		if len(day.Tasks) == 0 {
			b.WriteString(mutedStyle.Render("  -") + "\n")
			continue
		}
		for _, t := range day.Tasks {
			b.WriteString("  " + renderTaskLine(t) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderHabitsPanel(rows []HabitRowData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("habits") + "\n")
	if len(rows) == 0 {
		b.WriteString("(no habits yet: /habit add <name>)")
		return b.String()
	}
	for _, h := range rows {
		cursor := " "
		if h.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		switch {
		case h.DoneToday:
			check = "[x]"
		case !h.ScheduledDay:
			check = " - "
		}
		b.WriteString(fmt.Sprintf("%s %s %-20s %-7s streak %2d (best %2d) %3d%%\n",
			cursor, check, h.Name, h.Frequency, h.CurrentStreak, h.LongestStreak, h.Rate))
	}
	return strings.TrimSpace(b.String())
}

func RenderFocusPanel(data FocusPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("focus") + "\n")
	if data.TaskTitle != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.TaskTitle))
	} else {
		b.WriteString("task: (none attached)\n")
	}
	state := "paused"
	if data.Running {
		state = "running"
	}
	b.WriteString(fmt.Sprintf("phase: %s (%s)\n", strings.ToUpper(data.Phase), state))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(data.ProgressView + "\n")
	b.WriteString(fmt.Sprintf("sessions completed: %d\n", data.Sessions))
	b.WriteString(mutedStyle.Render("actions: [space]start/pause [r]reset [n]skip phase"))
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, inputView string, hints []string) string {
	if !active {
		return ""
	}
	out := inputView
	if len(hints) > 0 {
		out += "\n" + mutedStyle.Render(strings.Join(hints, " "))
	}
	return out
}

func RenderNotifications(items []NotificationData, unread int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("notifications (%d unread)\n", unread))
	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "•"
		}
		line := fmt.Sprintf("%s [%s] %s: %s", marker, strings.ToUpper(n.Level), n.Title, n.Body)
		if n.Level == "high" {
			line = overdueStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func renderTaskLine(t TaskRowData) string {
	cursor := " "
	if t.Cursor {
		cursor = ">"
	}
	title := t.Title
	if t.Overdue {
		title = overdueStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", cursor, PriorityBadge(t.Priority), title)
	if t.Due != "" {
		line += mutedStyle.Render(" " + t.Due)
	}
	return line
}
