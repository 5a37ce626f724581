package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/nlp"
)

// Patch is a partial task update. Nil fields are left unchanged; the
// Clear* flags reset optional fields.
type Patch struct {
	Title            *string           `json:"title,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Status           *model.Status     `json:"status,omitempty"`
	Priority         *model.Priority   `json:"priority,omitempty"`
	Tags             *[]model.Tag      `json:"tags,omitempty"`
	Subtasks         *[]model.Subtask  `json:"subtasks,omitempty"`
	DueDate          *time.Time        `json:"dueDate,omitempty"`
	ClearDueDate     bool              `json:"clearDueDate,omitempty"`
	StartDate        *time.Time        `json:"startDate,omitempty"`
	ClearStartDate   bool              `json:"clearStartDate,omitempty"`
	Repeat           *model.RepeatRule `json:"repeat,omitempty"`
	EstimatedMinutes *int              `json:"estimatedTime,omitempty"`
	ClearEstimate    bool              `json:"clearEstimatedTime,omitempty"`
	ProjectID        *string           `json:"projectId,omitempty"`
}

func (s *Store) Tasks() []model.Task {
	_, tasks := s.Snapshot()
	return tasks
}

func (s *Store) Task(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	return s.tasks[i].Clone(), nil
}

// AddTask fills id, timestamps and defaults, then validates and stores t.
func (s *Store) AddTask(t model.Task) (model.Task, error) {
	now := s.now()
	t = t.Clone()
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []model.Tag{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
	syncCompletedAt(&t, t.Status, now)
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err := s.mutate(EventTaskAdded, func() ([]string, error) {
		if s.taskIndex(t.ID) >= 0 {
			return nil, fmt.Errorf("%w: duplicate task id %s", ErrInvalidInput, t.ID)
		}
		s.tasks = append(s.tasks, t)
		return []string{t.ID}, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Debug("task added", zap.String("task_id", t.ID), zap.String("priority", string(t.Priority)))
	return t.Clone(), nil
}

// UpdateTask applies p, refreshes UpdatedAt and keeps CompletedAt in step
// with the status. An invalid result leaves the task unchanged.
func (s *Store) UpdateTask(id string, p Patch) (model.Task, error) {
	var out model.Task
	err := s.mutate(EventTaskUpdated, func() ([]string, error) {
		i := s.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		prev := s.tasks[i]
		next := prev.Clone()
		applyPatch(&next, p)
		now := s.now()
		next.UpdatedAt = now
		syncCompletedAt(&next, prev.Status, now)
		if err := next.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		s.tasks[i] = next
		out = next.Clone()
		return []string{id}, nil
	})
	return out, err
}

func (s *Store) DeleteTask(id string) error {
	return s.mutate(EventTaskDeleted, func() ([]string, error) {
		i := s.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return []string{id}, nil
	})
}

// DuplicateTask copies a task under a new id with " (Copy)" appended,
// reset to todo.
func (s *Store) DuplicateTask(id string) (model.Task, error) {
	var out model.Task
	err := s.mutate(EventTaskAdded, func() ([]string, error) {
		i := s.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		now := s.now()
		dup := s.tasks[i].Clone()
		dup.ID = uuid.NewString()
		dup.Title = dup.Title + " (Copy)"
		dup.Status = model.StatusTodo
		dup.CompletedAt = nil
		dup.CreatedAt = now
		dup.UpdatedAt = now
		s.tasks = append(s.tasks, dup)
		out = dup.Clone()
		return []string{dup.ID}, nil
	})
	return out, err
}

// AddParsed creates a task from parser output. The project is resolved by
// case-insensitive name; tags are reused by name or created.
func (s *Store) AddParsed(p nlp.ParsedTask) (model.Task, error) {
	now := s.now()
	t := model.Task{
		ID:               uuid.NewString(),
		Title:            p.Title,
		Status:           model.StatusTodo,
		Priority:         p.Priority,
		Tags:             []model.Tag{},
		Subtasks:         []model.Subtask{},
		CreatedAt:        now,
		UpdatedAt:        now,
		EstimatedMinutes: p.EstimatedMinutes,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.RepeatType != "" && p.RepeatType != model.RepeatNone {
		t.Repeat = model.RepeatRule{Type: p.RepeatType, Interval: max(p.RepeatInterval, 1)}
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err := s.mutate(EventTaskAdded, func() ([]string, error) {
		if p.ProjectName != "" {
			for _, proj := range s.projects {
				if strings.EqualFold(proj.Name, p.ProjectName) {
					t.ProjectID = proj.ID
					break
				}
			}
		}
		for _, name := range p.Tags {
			t.Tags = append(t.Tags, s.tagByNameLocked(name))
		}
		s.tasks = append(s.tasks, t)
		return []string{t.ID}, nil
	})
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Debug("task added from text", zap.String("task_id", t.ID), zap.Int("tags", len(t.Tags)))
	return t.Clone(), nil
}

// CompleteTask marks a task completed. A repeating task with a next
// occurrence spawns a fresh todo copy due at that occurrence, which is
// returned as next.
func (s *Store) CompleteTask(id string) (done model.Task, next *model.Task, err error) {
	err = s.mutate(EventTaskUpdated, func() ([]string, error) {
		i := s.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		now := s.now()
		cur := s.tasks[i].Clone()
		prevStatus := cur.Status
		cur.Status = model.StatusCompleted
		cur.UpdatedAt = now
		syncCompletedAt(&cur, prevStatus, now)

		// The next occurrence is resolved before anything is written so a
		// broken repeat rule leaves the task untouched.
		var occ *model.Task
		if prevStatus != model.StatusCompleted && cur.Repeat.IsRepeating() {
			anchor := now
			if cur.DueDate != nil {
				anchor = *cur.DueDate
			}
			nextDue, nextErr := cur.Repeat.NextAfter(anchor)
			switch {
			case errors.Is(nextErr, model.ErrRepeatEnded):
			case nextErr != nil:
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, nextErr)
			default:
				o := nextOccurrence(cur, nextDue, now)
				occ = &o
			}
		}

		s.tasks[i] = cur
		done = cur.Clone()
		if occ == nil {
			return []string{id}, nil
		}
		s.tasks = append(s.tasks, *occ)
		clone := occ.Clone()
		next = &clone
		return []string{id, occ.ID}, nil
	})
	return done, next, err
}

// RecordPomodoro increments the finished focus-session count of a task.
func (s *Store) RecordPomodoro(id string) (model.Task, error) {
	var out model.Task
	err := s.mutate(EventTaskUpdated, func() ([]string, error) {
		i := s.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		s.tasks[i].PomodoroCount++
		s.tasks[i].UpdatedAt = s.now()
		out = s.tasks[i].Clone()
		return []string{id}, nil
	})
	return out, err
}

func nextOccurrence(t model.Task, due, now time.Time) model.Task {
	occ := t.Clone()
	occ.ID = uuid.NewString()
	occ.Status = model.StatusTodo
	occ.CompletedAt = nil
	occ.CreatedAt = now
	occ.UpdatedAt = now
	occ.PomodoroCount = 0
	if t.StartDate != nil && t.DueDate != nil {
		start := due.Add(t.StartDate.Sub(*t.DueDate))
		occ.StartDate = &start
	}
	occ.DueDate = &due
	for i := range occ.Subtasks {
		occ.Subtasks[i].ID = uuid.NewString()
		occ.Subtasks[i].Completed = false
		occ.Subtasks[i].CreatedAt = now
	}
	return occ
}

func applyPatch(t *model.Task, p Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = append([]model.Tag{}, (*p.Tags)...)
	}
	if p.Subtasks != nil {
		t.Subtasks = append([]model.Subtask{}, (*p.Subtasks)...)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ClearStartDate {
		t.StartDate = nil
	} else if p.StartDate != nil {
		start := *p.StartDate
		t.StartDate = &start
	}
	if p.Repeat != nil {
		t.Repeat = *p.Repeat
	}
	if p.ClearEstimate {
		t.EstimatedMinutes = nil
	} else if p.EstimatedMinutes != nil {
		v := *p.EstimatedMinutes
		t.EstimatedMinutes = &v
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
}

// syncCompletedAt stamps CompletedAt on a transition into completed and
// clears it for any other status.
func syncCompletedAt(t *model.Task, prev model.Status, now time.Time) {
	if t.Status != model.StatusCompleted {
		t.CompletedAt = nil
		return
	}
	if prev != model.StatusCompleted || t.CompletedAt == nil {
		stamp := now
		t.CompletedAt = &stamp
	}
}

func (s *Store) taskIndex(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// ImportTasks validates every task first and then inserts new ids and
// replaces existing ones. Nothing is applied if any task is invalid.
func (s *Store) ImportTasks(tasks []model.Task) (added, replaced int, err error) {
	prepared := make([]model.Task, 0, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		if t.Tags == nil {
			t.Tags = []model.Tag{}
		}
		if t.Subtasks == nil {
			t.Subtasks = []model.Subtask{}
		}
		if vErr := t.Validate(); vErr != nil {
			return 0, 0, fmt.Errorf("%w: task %d: %w", ErrInvalidInput, i, vErr)
		}
		prepared = append(prepared, t)
	}
	ids := make([]string, 0, len(prepared))
	err = s.mutate(EventTaskAdded, func() ([]string, error) {
		for _, t := range prepared {
			if i := s.taskIndex(t.ID); i >= 0 {
				s.tasks[i] = t
				replaced++
			} else {
				s.tasks = append(s.tasks, t)
				added++
			}
			ids = append(ids, t.ID)
		}
		return ids, nil
	})
	return added, replaced, err
}
