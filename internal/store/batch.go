package store

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// batch applies fn to every task in ids as one mutation. Unknown ids fail
// the whole batch before anything changes.
func (s *Store) batch(ids []string, fn func(t *model.Task, now time.Time)) error {
	return s.mutate(EventTaskUpdated, func() ([]string, error) {
		idx := make([]int, 0, len(ids))
		for _, id := range ids {
			i := s.taskIndex(id)
			if i < 0 {
				return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
			}
			idx = append(idx, i)
		}
		now := s.now()
		for _, i := range idx {
			prev := s.tasks[i].Status
			fn(&s.tasks[i], now)
			s.tasks[i].UpdatedAt = now
			syncCompletedAt(&s.tasks[i], prev, now)
		}
		return append([]string(nil), ids...), nil
	})
}

func (s *Store) BatchDelete(ids []string) error {
	return s.mutate(EventTaskDeleted, func() ([]string, error) {
		drop := make(map[string]bool, len(ids))
		for _, id := range ids {
			if s.taskIndex(id) < 0 {
				return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
			}
			drop[id] = true
		}
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if !drop[t.ID] {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
		return append([]string(nil), ids...), nil
	})
}

func (s *Store) BatchComplete(ids []string) error {
	return s.batch(ids, func(t *model.Task, _ time.Time) { t.Status = model.StatusCompleted })
}

func (s *Store) BatchArchive(ids []string) error {
	return s.batch(ids, func(t *model.Task, _ time.Time) { t.Status = model.StatusArchived })
}

func (s *Store) BatchSetPriority(ids []string, p model.Priority) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, model.ErrInvalidPriority, p)
	}
	return s.batch(ids, func(t *model.Task, _ time.Time) { t.Priority = p })
}

// BatchSetProject assigns projectID, or clears the project when it is "".
func (s *Store) BatchSetProject(ids []string, projectID string) error {
	return s.batch(ids, func(t *model.Task, _ time.Time) { t.ProjectID = projectID })
}

func (s *Store) BatchAddTag(ids []string, tag model.Tag) error {
	return s.batch(ids, func(t *model.Task, _ time.Time) {
		if !t.HasTag(tag.ID) {
			t.Tags = append(t.Tags, tag)
		}
	})
}

// BatchSetDueDate sets or, with a nil due, clears the due date.
func (s *Store) BatchSetDueDate(ids []string, due *time.Time) error {
	return s.batch(ids, func(t *model.Task, _ time.Time) {
		if due == nil {
			t.DueDate = nil
			return
		}
		v := *due
		t.DueDate = &v
	})
}
