package update

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/store"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

var (
	statusCycle   = []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusCompleted, model.StatusBlocked}
	priorityCycle = []model.Priority{model.PriorityNone, model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical}
	sortCycle     = []query.SortField{query.SortByCreatedAt, query.SortByDueDate, query.SortByPriority, query.SortByTitle, query.SortByStatus, query.SortByUpdatedAt}
)

func (m Model) visibleTasks() []model.Task {
	return m.cache.Filtered(m.store, m.List.Filter, m.List.Sort, m.List.Search, m.store.Now())
}

func (m Model) kanbanColumns() []query.Column {
	_, tasks := m.store.Snapshot()
	return query.Kanban(query.Filtered(tasks, query.Filter{}, m.List.Sort, m.List.Search, m.store.Now()))
}

// currentTask is the task under the cursor of the active view.
func (m Model) currentTask() (model.Task, bool) {
	switch m.CurrentView {
	case ViewKanban:
		cols := m.kanbanColumns()
		if m.Kanban.Column < 0 || m.Kanban.Column >= len(cols) {
			return model.Task{}, false
		}
		col := cols[m.Kanban.Column].Tasks
		if m.Kanban.Row < 0 || m.Kanban.Row >= len(col) {
			return model.Task{}, false
		}
		return col[m.Kanban.Row], true
	case ViewFocus:
		if m.Timer.TaskID == "" {
			return model.Task{}, false
		}
		t, err := m.store.Task(m.Timer.TaskID)
		return t, err == nil
	default:
		tasks := m.visibleTasks()
		if len(tasks) == 0 {
			return model.Task{}, false
		}
		return tasks[clampCursor(m.List.Cursor, len(tasks))], true
	}
}

// targetIDs is the selection when one exists, otherwise the cursor task.
func (m Model) targetIDs() []string {
	ids := make([]string, 0, len(m.List.Selected))
	for _, t := range m.visibleTasks() {
		if m.List.Selected[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if t, ok := m.currentTask(); ok {
		return []string{t.ID}
	}
	return nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.visibleTasks())
	switch msg.String() {
	case "j", "down":
		m.List.Cursor = clampCursor(m.List.Cursor+1, n)
	case "k", "up":
		m.List.Cursor = clampCursor(m.List.Cursor-1, n)
	case "g", "home":
		m.List.Cursor = 0
	case "G", "end":
		m.List.Cursor = clampCursor(n-1, n)
	case " ":
		if t, ok := m.currentTask(); ok {
			if m.List.Selected[t.ID] {
				delete(m.List.Selected, t.ID)
			} else {
				m.List.Selected[t.ID] = true
			}
		}
	case "u":
		clear(m.List.Selected)
		m.Status = StatusBar{Text: "selection cleared"}
	case "enter":
		m.List.DetailVisible = !m.List.DetailVisible
	case "x":
		m.completeTargets()
	case "d":
		m.deleteTargets()
	case "D":
		if t, ok := m.currentTask(); ok {
			dup, err := m.store.DuplicateTask(t.ID)
			m.setResult(fmt.Sprintf("duplicated: %s", dup.Title), err)
		}
	case "s":
		m.cycleStatus()
	case "p":
		m.cyclePriority()
	case "o":
		i := slices.Index(sortCycle, m.List.Sort.Field)
		m.List.Sort.Field = sortCycle[(i+1)%len(sortCycle)]
		m.Status = StatusBar{Text: "sort: " + m.List.Sort.String()}
	case "O":
		if m.List.Sort.Direction == query.Ascending {
			m.List.Sort.Direction = query.Descending
		} else {
			m.List.Sort.Direction = query.Ascending
		}
		m.Status = StatusBar{Text: "sort: " + m.List.Sort.String()}
	case "c":
		m.List.Filter = query.Filter{}
		m.List.Search = ""
		m.Status = StatusBar{Text: "filters cleared"}
	case "f":
		if t, ok := m.currentTask(); ok {
			m.Timer.SetTask(t.ID)
			m.CurrentView = ViewFocus
			m.Status = StatusBar{Text: "focus on: " + t.Title}
		}
	case "R":
		m.openRepeatEditor()
	}
	return m, nil
}

func (m Model) handleKanbanKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cols := m.kanbanColumns()
	switch msg.String() {
	case "h", "left":
		m.Kanban.Column = clampCursor(m.Kanban.Column-1, len(cols))
		m.Kanban.Row = 0
	case "l", "right":
		m.Kanban.Column = clampCursor(m.Kanban.Column+1, len(cols))
		m.Kanban.Row = 0
	case "j", "down":
		m.Kanban.Row = clampCursor(m.Kanban.Row+1, len(cols[m.Kanban.Column].Tasks))
	case "k", "up":
		m.Kanban.Row = clampCursor(m.Kanban.Row-1, len(cols[m.Kanban.Column].Tasks))
	case "[", "]":
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		next := m.Kanban.Column + 1
		if msg.String() == "[" {
			next = m.Kanban.Column - 1
		}
		if next < 0 || next >= len(cols) {
			return m, nil
		}
		status := cols[next].Status
		_, err := m.store.UpdateTask(t.ID, store.Patch{Status: &status})
		m.setResult(fmt.Sprintf("moved to %s", cols[next].Label), err)
		if err == nil {
			m.Kanban.Column = next
			m.Kanban.Row = 0
		}
	case "x":
		m.completeTargets()
	}
	return m, nil
}

func (m *Model) completeTargets() {
	ids := m.targetIDs()
	if len(ids) == 0 {
		return
	}
	spawned := 0
	for _, id := range ids {
		_, next, err := m.store.CompleteTask(id)
		if err != nil {
			m.setResult("", err)
			return
		}
		if next != nil {
			spawned++
		}
	}
	clear(m.List.Selected)
	text := fmt.Sprintf("completed %d task(s)", len(ids))
	if spawned > 0 {
		text += fmt.Sprintf(", %d repeat(s) scheduled", spawned)
	}
	m.Status = StatusBar{Text: text}
}

func (m *Model) deleteTargets() {
	ids := m.targetIDs()
	if len(ids) == 0 {
		return
	}
	err := m.store.BatchDelete(ids)
	if err == nil {
		clear(m.List.Selected)
	}
	m.setResult(fmt.Sprintf("deleted %d task(s)", len(ids)), err)
}

func (m *Model) cycleStatus() {
	t, ok := m.currentTask()
	if !ok {
		return
	}
	i := slices.Index(statusCycle, t.Status)
	next := statusCycle[(i+1)%len(statusCycle)]
	_, err := m.store.UpdateTask(t.ID, store.Patch{Status: &next})
	m.setResult("status: "+string(next), err)
}

func (m *Model) cyclePriority() {
	ids := m.targetIDs()
	if len(ids) == 0 {
		return
	}
	t, _ := m.store.Task(ids[0])
	i := slices.Index(priorityCycle, t.Priority)
	next := priorityCycle[(i+1)%len(priorityCycle)]
	m.setResult("priority: "+string(next), m.store.BatchSetPriority(ids, next))
}

func (m *Model) setResult(text string, err error) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Debug("action failed", zap.Error(err))
		return
	}
	m.Status = StatusBar{Text: text}
}

func (m Model) renderListView() string {
	tasks := m.visibleTasks()
	out := views.RenderListPanel(views.ListPanelData{
		TableView: m.taskTable.View(),
		Count:     len(tasks),
		Filter:    describeFilter(m.List.Filter, m.store.Tags(), m.store.Projects()),
		Sort:      m.List.Sort.String(),
		Search:    m.List.Search,
	})
	if len(m.List.Selected) > 0 {
		out += fmt.Sprintf("\nselected: %d", len(m.List.Selected))
	}
	return out
}

func (m Model) renderKanbanView() string {
	now := m.store.Now()
	cols := m.kanbanColumns()
	data := make([]views.ColumnData, 0, len(cols))
	for ci, col := range cols {
		rows := make([]views.TaskRowData, 0, len(col.Tasks))
		for ri, t := range col.Tasks {
			rows = append(rows, rowData(t, now, ci == m.Kanban.Column && ri == m.Kanban.Row))
		}
		data = append(data, views.ColumnData{Label: col.Label, Tasks: rows})
	}
	return views.RenderKanbanPanel(data, m.width-4)
}

var quadrantLabels = map[query.Quadrant][2]string{
	query.UrgentImportant:       {"Do first", "urgent + important"},
	query.NotUrgentImportant:    {"Schedule", "important"},
	query.UrgentNotImportant:    {"Delegate", "urgent"},
	query.NotUrgentNotImportant: {"Eliminate", "neither"},
}

func (m Model) renderMatrixView() string {
	now := m.store.Now()
	_, tasks := m.store.Snapshot()
	matrix := query.BuildMatrix(tasks, now)
	data := make([]views.QuadrantData, 0, len(query.Quadrants))
	for _, q := range query.Quadrants {
		rows := make([]views.TaskRowData, 0, len(matrix[q]))
		for _, t := range matrix[q] {
			rows = append(rows, rowData(t, now, false))
		}
		label := quadrantLabels[q]
		data = append(data, views.QuadrantData{Label: label[0], Hint: label[1], Tasks: rows})
	}
	return views.RenderMatrixPanel(data, m.width-4)
}

func (m Model) renderDetailPane() string {
	t, ok := m.currentTask()
	if !ok {
		return views.RenderDetailPane(views.DetailData{})
	}
	data := views.DetailData{
		ID:              t.ID,
		Title:           t.Title,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		Due:             formatDue(t.DueDate, m.store.Now()),
		Tags:            tagNames(t.Tags),
		Pomodoros:       t.PomodoroCount,
		DescriptionView: m.detailViewport.View(),
	}
	if t.ProjectID != "" {
		if p, err := m.store.Project(t.ProjectID); err == nil {
			data.Project = p.Name
		}
	}
	if t.Repeat.IsRepeating() {
		data.Repeat = fmt.Sprintf("%s every %d", t.Repeat.Type, max(t.Repeat.Interval, 1))
	}
	if t.EstimatedMinutes != nil {
		data.Estimate = fmt.Sprintf("%dm", *t.EstimatedMinutes)
	}
	for _, s := range t.Subtasks {
		box := "[ ]"
		if s.Completed {
			box = "[x]"
		}
		data.Subtasks = append(data.Subtasks, box+" "+s.Title)
	}
	return views.RenderDetailPane(data)
}
