package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

func minutes(n int) *int { return &n }

// DefaultTemplates returns the built-in templates a fresh store starts with.
func DefaultTemplates() []model.Template {
	daily := model.RepeatRule{Type: model.RepeatDaily, Interval: 1}
	weekly := model.RepeatRule{Type: model.RepeatWeekly, Interval: 1}
	return []model.Template{
		{
			ID: "template-1", Name: "Daily Standup", Description: "Daily team standup meeting", Category: "Work",
			Blueprint: model.TaskBlueprint{Title: "Daily Standup", Priority: model.PriorityMedium, Repeat: daily, EstimatedMinutes: minutes(15),
				Tags: []model.Tag{{ID: "work", Name: "work", Color: "#3b82f6"}}},
		},
		{
			ID: "template-2", Name: "Weekly Review", Description: "Review weekly progress and plan next week", Category: "Productivity",
			Blueprint: model.TaskBlueprint{Title: "Weekly Review", Priority: model.PriorityHigh, Repeat: weekly, EstimatedMinutes: minutes(60),
				Tags: []model.Tag{{ID: "review", Name: "review", Color: "#8b5cf6"}}},
		},
		{
			ID: "template-3", Name: "Grocery Shopping", Description: "Weekly grocery shopping trip", Category: "Personal",
			Blueprint: model.TaskBlueprint{Title: "Grocery Shopping", Priority: model.PriorityMedium, Repeat: weekly, EstimatedMinutes: minutes(45),
				Tags: []model.Tag{{ID: "shopping", Name: "shopping", Color: "#10b981"}}},
		},
		{
			ID: "template-4", Name: "Exercise", Description: "Daily workout routine", Category: "Health",
			Blueprint: model.TaskBlueprint{Title: "Exercise", Priority: model.PriorityHigh, Repeat: daily, EstimatedMinutes: minutes(30),
				Tags: []model.Tag{{ID: "health", Name: "health", Color: "#ef4444"}}},
		},
		{
			ID: "template-5", Name: "Code Review", Description: "Review pull requests", Category: "Work",
			Blueprint: model.TaskBlueprint{Title: "Code Review", Priority: model.PriorityHigh, EstimatedMinutes: minutes(30),
				Tags: []model.Tag{{ID: "development", Name: "development", Color: "#f59e0b"}}},
		},
		{
			ID: "template-6", Name: "Call Family", Description: "Weekly family check-in", Category: "Personal",
			Blueprint: model.TaskBlueprint{Title: "Call Family", Priority: model.PriorityMedium, Repeat: weekly, EstimatedMinutes: minutes(20),
				Tags: []model.Tag{{ID: "family", Name: "family", Color: "#ec4899"}}},
		},
	}
}

func (s *Store) Templates() []model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Template{}, s.templates...)
}

func (s *Store) TemplatesByCategory(category string) []model.Template {
	out := make([]model.Template, 0)
	for _, t := range s.Templates() {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// FindTemplate matches an id exactly or a name case-insensitively.
func (s *Store) FindTemplate(ref string) (model.Template, bool) {
	for _, t := range s.Templates() {
		if t.ID == ref || strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return model.Template{}, false
}

func (s *Store) AddTemplate(t model.Template) (model.Template, error) {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return model.Template{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	err := s.mutate(EventTemplates, func() ([]string, error) {
		for _, existing := range s.templates {
			if existing.ID == t.ID {
				return nil, fmt.Errorf("%w: duplicate template id %s", ErrInvalidInput, t.ID)
			}
		}
		s.templates = append(s.templates, t)
		return []string{t.ID}, nil
	})
	return t, err
}

func (s *Store) DeleteTemplate(id string) error {
	return s.mutate(EventTemplates, func() ([]string, error) {
		for i, t := range s.templates {
			if t.ID == id {
				s.templates = append(s.templates[:i], s.templates[i+1:]...)
				return []string{id}, nil
			}
		}
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	})
}

// UseTemplate instantiates a template as a new todo task and bumps its
// usage count.
func (s *Store) UseTemplate(id string) (model.Task, error) {
	var bp model.TaskBlueprint
	err := s.mutate(EventTemplates, func() ([]string, error) {
		for i := range s.templates {
			if s.templates[i].ID == id {
				s.templates[i].UsageCount++
				bp = s.templates[i].Blueprint
				return []string{id}, nil
			}
		}
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
	})
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	task := model.Task{
		Title:       bp.Title,
		Description: bp.Description,
		Priority:    bp.Priority,
		Repeat:      bp.Repeat,
		Tags:        append([]model.Tag{}, bp.Tags...),
		Subtasks:    make([]model.Subtask, 0, len(bp.Subtasks)),
	}
	if bp.EstimatedMinutes != nil {
		task.EstimatedMinutes = minutes(*bp.EstimatedMinutes)
	}
	for _, title := range bp.Subtasks {
		task.Subtasks = append(task.Subtasks, model.Subtask{ID: uuid.NewString(), Title: title, CreatedAt: now})
	}
	return s.AddTask(task)
}
