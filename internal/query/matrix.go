package query

import (
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// UrgencyWindow is how close a due date must be for a task to count as urgent.
const UrgencyWindow = 72 * time.Hour

type Quadrant string

const (
	UrgentImportant       Quadrant = "urgent-important"
	NotUrgentImportant    Quadrant = "not-urgent-important"
	UrgentNotImportant    Quadrant = "urgent-not-important"
	NotUrgentNotImportant Quadrant = "not-urgent-not-important"
)

// Quadrants in display order: do, schedule, delegate, eliminate.
var Quadrants = []Quadrant{UrgentImportant, NotUrgentImportant, UrgentNotImportant, NotUrgentNotImportant}

// IsUrgent is true when the task has a due date less than UrgencyWindow
// away. Past due dates count as urgent.
func IsUrgent(t model.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Sub(now) < UrgencyWindow
}

func Classify(t model.Task, now time.Time) Quadrant {
	urgent := IsUrgent(t, now)
	important := t.Priority.IsImportant()
	switch {
	case urgent && important:
		return UrgentImportant
	case important:
		return NotUrgentImportant
	case urgent:
		return UrgentNotImportant
	default:
		return NotUrgentNotImportant
	}
}

type Matrix map[Quadrant][]model.Task

// BuildMatrix buckets every non-completed task. Each quadrant key is present
// even when empty.
func BuildMatrix(tasks []model.Task, now time.Time) Matrix {
	m := make(Matrix, len(Quadrants))
	for _, q := range Quadrants {
		m[q] = make([]model.Task, 0)
	}
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			continue
		}
		q := Classify(t, now)
		m[q] = append(m[q], t)
	}
	return m
}
