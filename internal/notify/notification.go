// Package notify raises due-soon and overdue notifications for tasks and
// forwards them to the desktop.
package notify

import "time"

type Kind string

const (
	KindDueSoon Kind = "due-soon"
	KindOverdue Kind = "overdue"
	KindMessage Kind = "message"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Notification struct {
	ID           string     `json:"id"`
	TaskID       string     `json:"taskId,omitempty"`
	Kind         Kind       `json:"kind"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	Level        Level      `json:"level"`
	At           time.Time  `json:"timestamp"`
	Read         bool       `json:"read"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

// Snoozed reports whether n is hidden at now.
func (n Notification) Snoozed(now time.Time) bool {
	return n.SnoozedUntil != nil && n.SnoozedUntil.After(now)
}
