// Package query filters, sorts and groups an in-memory task collection.
// Every function is pure: it reads the slice it is given and returns a new
// one, leaving the input order untouched.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// DateRange is half-open: Start <= due < End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filter holds optional constraints; all active ones are ANDed. Empty sets
// and nil pointers are inactive.
type Filter struct {
	Statuses    []model.Status   `json:"status,omitempty"`
	Priorities  []model.Priority `json:"priority,omitempty"`
	TagIDs      []string         `json:"tags,omitempty"`
	ProjectIDs  []string         `json:"projects,omitempty"`
	Overdue     bool             `json:"isOverdue,omitempty"`
	DateRange   *DateRange       `json:"dateRange,omitempty"`
	HasDueDate  *bool            `json:"hasDueDate,omitempty"`
	HasSubtasks *bool            `json:"hasSubtasks,omitempty"`
}

func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && len(f.Priorities) == 0 && len(f.TagIDs) == 0 &&
		len(f.ProjectIDs) == 0 && !f.Overdue && f.DateRange == nil && f.HasDueDate == nil && f.HasSubtasks == nil
}

type predicate func(model.Task) bool

// Filtered runs search, then each active filter stage, then a stable sort.
func Filtered(tasks []model.Task, f Filter, s Sort, search string, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	stages := f.stages(search, now)
	for _, task := range tasks {
		if matchesAll(task, stages) {
			out = append(out, task)
		}
	}
	SortTasks(out, s)
	return out
}

// Matches reports whether a single task passes search and filter.
func Matches(task model.Task, f Filter, search string, now time.Time) bool {
	return matchesAll(task, f.stages(search, now))
}

func matchesAll(task model.Task, stages []predicate) bool {
	for _, keep := range stages {
		if !keep(task) {
			return false
		}
	}
	return true
}

func (f Filter) stages(search string, now time.Time) []predicate {
	var stages []predicate
	if search != "" {
		needle := strings.ToLower(search)
		stages = append(stages, func(t model.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), needle) ||
				(t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle))
		})
	}
	if len(f.Statuses) > 0 {
		stages = append(stages, func(t model.Task) bool { return slices.Contains(f.Statuses, t.Status) })
	}
	if len(f.Priorities) > 0 {
		stages = append(stages, func(t model.Task) bool { return slices.Contains(f.Priorities, t.Priority) })
	}
	if len(f.TagIDs) > 0 {
		stages = append(stages, func(t model.Task) bool {
			return slices.ContainsFunc(t.Tags, func(tag model.Tag) bool { return slices.Contains(f.TagIDs, tag.ID) })
		})
	}
	if len(f.ProjectIDs) > 0 {
		stages = append(stages, func(t model.Task) bool {
			return t.ProjectID != "" && slices.Contains(f.ProjectIDs, t.ProjectID)
		})
	}
	if f.Overdue {
		stages = append(stages, func(t model.Task) bool { return t.IsOverdue(now) })
	}
	if r := f.DateRange; r != nil {
		stages = append(stages, func(t model.Task) bool {
			return t.DueDate != nil && !t.DueDate.Before(r.Start) && t.DueDate.Before(r.End)
		})
	}
	if f.HasDueDate != nil {
		want := *f.HasDueDate
		stages = append(stages, func(t model.Task) bool { return (t.DueDate != nil) == want })
	}
	if f.HasSubtasks != nil {
		want := *f.HasSubtasks
		stages = append(stages, func(t model.Task) bool { return (len(t.Subtasks) > 0) == want })
	}
	return stages
}
