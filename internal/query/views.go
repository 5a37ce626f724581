package query

import (
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// Overdue applies the overdue predicate to the raw collection.
func Overdue(tasks []model.Task, now time.Time) []model.Task {
	return collect(tasks, func(t model.Task) bool { return t.IsOverdue(now) })
}

// DueToday returns tasks due in [midnight today, midnight tomorrow).
func DueToday(tasks []model.Task, now time.Time) []model.Task {
	start := model.StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	return collect(tasks, func(t model.Task) bool {
		return t.DueDate != nil && !t.DueDate.Before(start) && t.DueDate.Before(end)
	})
}

// Upcoming returns open tasks due in [midnight today, midnight today + 7 days].
func Upcoming(tasks []model.Task, now time.Time) []model.Task {
	start := model.StartOfDay(now)
	end := start.AddDate(0, 0, 7)
	return collect(tasks, func(t model.Task) bool {
		return t.DueDate != nil && !t.DueDate.Before(start) && !t.DueDate.After(end) && t.Status != model.StatusCompleted
	})
}

func ByProject(tasks []model.Task, projectID string) []model.Task {
	return collect(tasks, func(t model.Task) bool { return t.ProjectID == projectID })
}

func ByTag(tasks []model.Task, tagID string) []model.Task {
	return collect(tasks, func(t model.Task) bool { return t.HasTag(tagID) })
}

func collect(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
