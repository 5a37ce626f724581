package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusArchived   Status = "archived"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked, StatusArchived}

func (s Status) IsValid() bool {
	return s.Rank() >= 0
}

// Rank is the position of s in Statuses, or -1.
func (s Status) Rank() int {
	for i, candidate := range Statuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

type Priority string

const (
	PriorityNone     Priority = "none"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities is ordered from lowest to highest.
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

func (p Priority) Rank() int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p Priority) IsImportant() bool {
	return p == PriorityHigh || p == PriorityCritical
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	Tags             []Tag      `json:"tags"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Subtasks         []Subtask  `json:"subtasks"`
	Repeat           RepeatRule `json:"repeat"`
	EstimatedMinutes *int       `json:"estimatedTime,omitempty"`
	ProjectID        string     `json:"projectId,omitempty"`
	PomodoroCount    int        `json:"pomodoroCount,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Status == StatusCompleted && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task status is completed")
	}
	if t.Status != StatusCompleted && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task status is not completed")
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		return errors.New("model: estimated time must not be negative")
	}
	return t.Repeat.Validate()
}

// IsOverdue reports whether t has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

func (t Task) HasTag(id string) bool {
	for _, tag := range t.Tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with t. Tags and
// Subtasks are never nil in the copy so they encode as JSON arrays.
func (t Task) Clone() Task {
	out := t
	out.Tags = append(make([]Tag, 0, len(t.Tags)), t.Tags...)
	out.Subtasks = append(make([]Subtask, 0, len(t.Subtasks)), t.Subtasks...)
	out.DueDate = cloneTime(t.DueDate)
	out.StartDate = cloneTime(t.StartDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.Repeat.EndDate = cloneTime(t.Repeat.EndDate)
	if t.EstimatedMinutes != nil {
		v := *t.EstimatedMinutes
		out.EstimatedMinutes = &v
	}
	return out
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("model: project id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("model: project name is required")
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
