package query

import (
	"math"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

type Column struct {
	Status model.Status `json:"status"`
	Label  string       `json:"label"`
	Tasks  []model.Task `json:"tasks"`
}

var kanbanColumns = []Column{
	{Status: model.StatusTodo, Label: "To Do"},
	{Status: model.StatusInProgress, Label: "In Progress"},
	{Status: model.StatusCompleted, Label: "Completed"},
	{Status: model.StatusBlocked, Label: "Blocked"},
}

// Kanban groups tasks by status. Archived tasks have no column.
func Kanban(tasks []model.Task) []Column {
	cols := make([]Column, len(kanbanColumns))
	for i, c := range kanbanColumns {
		cols[i] = Column{Status: c.Status, Label: c.Label, Tasks: make([]model.Task, 0)}
	}
	for _, t := range tasks {
		for i := range cols {
			if cols[i].Status == t.Status {
				cols[i].Tasks = append(cols[i].Tasks, t)
				break
			}
		}
	}
	return cols
}

type Day struct {
	Date  time.Time    `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return model.StartOfDay(t).AddDate(0, 0, -offset)
}

// Timeline lays out the Monday-based week containing anchor. A task lands on
// its due day, or its start day when it has no due date.
func Timeline(tasks []model.Task, anchor time.Time) []Day {
	start := WeekStart(anchor)
	days := make([]Day, 7)
	for i := range days {
		days[i] = Day{Date: start.AddDate(0, 0, i), Tasks: make([]model.Task, 0)}
	}
	for _, t := range tasks {
		when := t.DueDate
		if when == nil {
			when = t.StartDate
		}
		if when == nil {
			continue
		}
		for i := range days {
			if sameDay(days[i].Date, when.In(anchor.Location())) {
				days[i].Tasks = append(days[i].Tasks, t)
				break
			}
		}
	}
	return days
}

// CalendarMonth maps day-of-month to the tasks due that day.
func CalendarMonth(tasks []model.Task, year int, month time.Month, loc *time.Location) map[int][]model.Task {
	out := make(map[int][]model.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.In(loc)
		if due.Year() == year && due.Month() == month {
			out[due.Day()] = append(out[due.Day()], t)
		}
	}
	return out
}

type Bar struct {
	Task  model.Task
	Start time.Time
	End   time.Time
}

func (b Bar) Days() int {
	return int(math.Round(model.StartOfDay(b.End).Sub(model.StartOfDay(b.Start)).Hours()/24)) + 1
}

// Gantt returns one bar per task that has both a start and a due date.
func Gantt(tasks []model.Task) []Bar {
	out := make([]Bar, 0)
	for _, t := range tasks {
		if t.StartDate == nil || t.DueDate == nil {
			continue
		}
		out = append(out, Bar{Task: t, Start: *t.StartDate, End: *t.DueDate})
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
