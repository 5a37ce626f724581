package model

import (
	"errors"
	"strings"
)

// TaskBlueprint is the partial task a template instantiates.
type TaskBlueprint struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Priority         Priority   `json:"priority"`
	Repeat           RepeatRule `json:"repeat"`
	EstimatedMinutes *int       `json:"estimatedTime,omitempty"`
	Tags             []Tag      `json:"tags"`
	Subtasks         []string   `json:"subtasks,omitempty"`
}

type Template struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category"`
	UsageCount  int           `json:"usageCount"`
	Blueprint   TaskBlueprint `json:"taskTemplate"`
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: template id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: template name is required")
	}
	if strings.TrimSpace(t.Blueprint.Title) == "" {
		return errors.New("model: template task title is required")
	}
	return nil
}
