package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	today := model.StartOfDay(now)
	switch day := model.StartOfDay(*due); {
	case day.Equal(today):
		return "today " + due.Format("15:04")
	case day.Equal(today.AddDate(0, 0, 1)):
		return "tomorrow " + due.Format("15:04")
	case day.Year() == today.Year():
		return due.Format("Jan 2 15:04")
	default:
		return due.Format("2006-01-02")
	}
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func rowData(t model.Task, now time.Time, cursor bool) views.TaskRowData {
	return views.TaskRowData{
		ID:       t.ID,
		Title:    t.Title,
		Status:   string(t.Status),
		Priority: string(t.Priority),
		Due:      formatDue(t.DueDate, now),
		Overdue:  t.IsOverdue(now),
		Tags:     tagNames(t.Tags),
		Cursor:   cursor,
	}
}

func describeFilter(f query.Filter, tags []model.Tag, projects []model.Project) string {
	if f.IsZero() {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, s := range f.Statuses {
		parts = append(parts, "status:"+string(s))
	}
	for _, p := range f.Priorities {
		parts = append(parts, "priority:"+string(p))
	}
	for _, id := range f.TagIDs {
		name := id
		for _, t := range tags {
			if t.ID == id {
				name = t.Name
			}
		}
		parts = append(parts, "tag:"+name)
	}
	for _, id := range f.ProjectIDs {
		name := id
		for _, p := range projects {
			if p.ID == id {
				name = p.Name
			}
		}
		parts = append(parts, "project:"+name)
	}
	if f.Overdue {
		parts = append(parts, "overdue")
	}
	if f.HasDueDate != nil {
		parts = append(parts, fmt.Sprintf("due:%t", *f.HasDueDate))
	}
	if f.HasSubtasks != nil {
		parts = append(parts, fmt.Sprintf("subtasks:%t", *f.HasSubtasks))
	}
	return strings.Join(parts, " ")
}

func clampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
