// Package habit tracks recurring habits and their per-day completions.
package habit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

var ErrNotFound = errors.New("habit: not found")

// Snapshot is the persisted form of a tracker.
type Snapshot struct {
	Habits      []model.Habit           `json:"habits"`
	Completions []model.HabitCompletion `json:"completions"`
}

type HabitPatch struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	Frequency   *model.Frequency
	DaysOfWeek  []time.Weekday
	GoalType    *model.GoalType
	GoalValue   *float64
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

type Tracker struct {
	mu          sync.RWMutex
	habits      []model.Habit
	completions []model.HabitCompletion
	now         func() time.Time
	logger      *zap.Logger
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) AddHabit(h model.Habit) (model.Habit, error) {
	if strings.TrimSpace(h.ID) == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = t.now()
	}
	if h.Frequency == "" {
		h.Frequency = model.FrequencyDaily
	}
	if h.GoalType == "" {
		h.GoalType = model.GoalCompletion
	}
	if err := h.Validate(); err != nil {
		return model.Habit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.habits = append(t.habits, h)
	t.logger.Debug("habit added", zap.String("habit_id", h.ID), zap.String("frequency", string(h.Frequency)))
	return h, nil
}

func (t *Tracker) UpdateHabit(id string, patch HabitPatch) (model.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return model.Habit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := t.habits[i]
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Color != nil {
		next.Color = *patch.Color
	}
	if patch.Icon != nil {
		next.Icon = *patch.Icon
	}
	if patch.Frequency != nil {
		next.Frequency = *patch.Frequency
	}
	if patch.DaysOfWeek != nil {
		next.DaysOfWeek = append([]time.Weekday(nil), patch.DaysOfWeek...)
	}
	if patch.GoalType != nil {
		next.GoalType = *patch.GoalType
	}
	if patch.GoalValue != nil {
		next.GoalValue = *patch.GoalValue
	}
	if err := next.Validate(); err != nil {
		return model.Habit{}, err
	}
	t.habits[i] = next
	return next, nil
}

// DeleteHabit removes the habit and all of its completions.
func (t *Tracker) DeleteHabit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.habits = append(t.habits[:i], t.habits[i+1:]...)
	kept := t.completions[:0]
	for _, c := range t.completions {
		if c.HabitID != id {
			kept = append(kept, c)
		}
	}
	t.completions = kept
	t.logger.Debug("habit deleted", zap.String("habit_id", id))
	return nil
}

func (t *Tracker) ArchiveHabit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.habits[i].Archived = true
	return nil
}

func (t *Tracker) Habit(id string) (model.Habit, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.indexOf(id)
	if i < 0 {
		return model.Habit{}, false
	}
	return t.habits[i], true
}

// FindByName matches case-insensitively, falling back to an id match.
func (t *Tracker) FindByName(name string) (model.Habit, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, h := range t.habits {
		if strings.EqualFold(h.Name, name) || h.ID == name {
			return h, true
		}
	}
	return model.Habit{}, false
}

func (t *Tracker) Habits() []model.Habit {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Habit(nil), t.habits...)
}

func (t *Tracker) ActiveHabits() []model.Habit {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Habit, 0, len(t.habits))
	for _, h := range t.habits {
		if !h.Archived {
			out = append(out, h)
		}
	}
	return out
}

// TodayHabits returns active habits scheduled on now's weekday.
func (t *Tracker) TodayHabits(now time.Time) []model.Habit {
	out := make([]model.Habit, 0)
	for _, h := range t.ActiveHabits() {
		if h.ScheduledOn(now.Weekday()) {
			out = append(out, h)
		}
	}
	return out
}

// MarkComplete upserts the record for (habitID, day).
func (t *Tracker) MarkComplete(habitID string, day time.Time, value *float64, note string) (model.HabitCompletion, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(habitID) < 0 {
		return model.HabitCompletion{}, fmt.Errorf("%w: %s", ErrNotFound, habitID)
	}
	date := model.Day(day)
	for i, c := range t.completions {
		if c.HabitID == habitID && c.Date == date {
			c.Completed = true
			c.Value = value
			c.Note = note
			c.CompletedAt = t.now()
			t.completions[i] = c
			return c, nil
		}
	}
	c := model.HabitCompletion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		Date:        date,
		Completed:   true,
		Value:       value,
		Note:        note,
		CompletedAt: t.now(),
	}
	t.completions = append(t.completions, c)
	t.logger.Debug("habit completed", zap.String("habit_id", habitID), zap.String("date", date))
	return c, nil
}

// MarkIncomplete deletes the record for (habitID, day), if any.
func (t *Tracker) MarkIncomplete(habitID string, day time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	date := model.Day(day)
	kept := t.completions[:0]
	for _, c := range t.completions {
		if !(c.HabitID == habitID && c.Date == date) {
			kept = append(kept, c)
		}
	}
	t.completions = kept
}

// Toggle flips the completion state of (habitID, day) and reports the new state.
func (t *Tracker) Toggle(habitID string, day time.Time) (bool, error) {
	if _, ok := t.Completion(habitID, day); ok {
		t.MarkIncomplete(habitID, day)
		return false, nil
	}
	if _, err := t.MarkComplete(habitID, day, nil, ""); err != nil {
		return false, err
	}
	return true, nil
}

// Completion returns the completed record for (habitID, day).
func (t *Tracker) Completion(habitID string, day time.Time) (model.HabitCompletion, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	date := model.Day(day)
	for _, c := range t.completions {
		if c.HabitID == habitID && c.Date == date && c.Completed {
			return c, true
		}
	}
	return model.HabitCompletion{}, false
}

func (t *Tracker) Completions(habitID string) []model.HabitCompletion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.HabitCompletion, 0)
	for _, c := range t.completions {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out
}

// Stats returns zeroed stats for an unknown habit.
func (t *Tracker) Stats(habitID string, now time.Time) Stats {
	if _, ok := t.Habit(habitID); !ok {
		return Stats{}
	}
	return ComputeStats(t.Completions(habitID), now)
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		Habits:      append([]model.Habit{}, t.habits...),
		Completions: append([]model.HabitCompletion{}, t.completions...),
	}
}

func (t *Tracker) Restore(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.habits = append([]model.Habit(nil), s.Habits...)
	t.completions = append([]model.HabitCompletion(nil), s.Completions...)
}

func (t *Tracker) indexOf(id string) int {
	for i, h := range t.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
