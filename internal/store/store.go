// Package store owns the task collection, projects, tags, templates and
// the habit tracker for one user, and persists them as JSON snapshots.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/habit"
	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/storage"
)

var (
	ErrNotFound     = errors.New("store: not found")
	ErrInvalidInput = errors.New("store: invalid input")
)

// DefaultTagColor is used for tags created implicitly from "#name" input.
const DefaultTagColor = "#3b82f6"

type EventKind string

const (
	EventTaskAdded       EventKind = "task.added"
	EventTaskUpdated     EventKind = "task.updated"
	EventTaskDeleted     EventKind = "task.deleted"
	EventProjectsChanged EventKind = "projects.changed"
	EventTagsChanged     EventKind = "tags.changed"
	EventTemplates       EventKind = "templates.changed"
	EventHydrated        EventKind = "store.hydrated"
)

type Event struct {
	Kind     EventKind
	IDs      []string
	Revision uint64
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type Store struct {
	mu        sync.RWMutex
	tasks     []model.Task
	projects  []model.Project
	tags      []model.Tag
	templates []model.Template
	revision  uint64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	habits *habit.Tracker
	now    func() time.Time
	logger *zap.Logger
}

func New(opts ...Option) *Store {
	s := &Store{
		tasks:     make([]model.Task, 0),
		projects:  make([]model.Project, 0),
		tags:      make([]model.Tag, 0),
		templates: DefaultTemplates(),
		subs:      make(map[int]func(Event)),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.habits = habit.NewTracker(habit.WithClock(s.now), habit.WithLogger(s.logger.Named("habit")))
	return s
}

func (s *Store) Habits() *habit.Tracker {
	return s.habits
}

func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers fn for every mutation event. Callbacks run on the
// mutating goroutine after the store lock is released.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns the current revision with a deep copy of every task.
func (s *Store) Snapshot() (uint64, []model.Task) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision, cloneTasks(s.tasks)
}

// mutate runs fn under the write lock and publishes an event when fn
// succeeds.
func (s *Store) mutate(kind EventKind, fn func() ([]string, error)) error {
	s.mu.Lock()
	ids, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.revision++
	ev := Event{Kind: kind, IDs: ids, Revision: s.revision}
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

type tasksDocument struct {
	Tasks    []model.Task    `json:"tasks"`
	Projects []model.Project `json:"projects"`
	Tags     []model.Tag     `json:"tags"`
}

// Hydrate loads every snapshot for user. Missing snapshots keep the
// in-memory defaults; the first non-missing failure is returned.
func (s *Store) Hydrate(ctx context.Context, repo storage.SnapshotRepository, user string) storage.Result {
	var doc tasksDocument
	tasksRes := storage.LoadJSON(ctx, repo, storage.TasksKey(user), &doc)
	var habits habit.Snapshot
	habitsRes := storage.LoadJSON(ctx, repo, storage.HabitsKey(user), &habits)
	var templates []model.Template
	templatesRes := storage.LoadJSON(ctx, repo, storage.TemplatesKey(user), &templates)

	err := s.mutate(EventHydrated, func() ([]string, error) {
		if tasksRes.OK {
			s.tasks = nonNilTasks(doc.Tasks)
			s.projects = append(make([]model.Project, 0, len(doc.Projects)), doc.Projects...)
			s.tags = append(make([]model.Tag, 0, len(doc.Tags)), doc.Tags...)
		}
		if templatesRes.OK && templates != nil {
			s.templates = templates
		}
		return nil, nil
	})
	if err != nil {
		s.logger.Warn("hydrate failed", zap.String("user", user), zap.Error(err))
		return storage.Result{Reason: storage.ReasonIO, Err: err}
	}
	if habitsRes.OK {
		s.habits.Restore(habits)
	}

	for _, res := range []storage.Result{tasksRes, habitsRes, templatesRes} {
		if !res.OK && res.Reason != storage.ReasonMissing {
			s.logger.Warn("hydrate failed", zap.String("user", user), zap.String("reason", string(res.Reason)), zap.Error(res.Err))
			return res
		}
	}
	s.logger.Info("store hydrated", zap.String("user", user), zap.Int("tasks", len(doc.Tasks)))
	return storage.Result{OK: true}
}

func (s *Store) Persist(ctx context.Context, repo storage.SnapshotRepository, user string) storage.Result {
	s.mu.RLock()
	doc := tasksDocument{Tasks: cloneTasks(s.tasks), Projects: append([]model.Project{}, s.projects...), Tags: append([]model.Tag{}, s.tags...)}
	templates := append([]model.Template{}, s.templates...)
	s.mu.RUnlock()

	now := s.now()
	results := []storage.Result{
		storage.SaveJSON(ctx, repo, storage.TasksKey(user), doc, now),
		storage.SaveJSON(ctx, repo, storage.HabitsKey(user), s.habits.Snapshot(), now),
		storage.SaveJSON(ctx, repo, storage.TemplatesKey(user), templates, now),
	}
	for _, res := range results {
		if !res.OK {
			s.logger.Error("persist failed", zap.String("user", user), zap.String("reason", string(res.Reason)), zap.Error(res.Err))
			return res
		}
	}
	return storage.Result{OK: true}
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func nonNilTasks(in []model.Task) []model.Task {
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		if t.Tags == nil {
			t.Tags = []model.Tag{}
		}
		if t.Subtasks == nil {
			t.Subtasks = []model.Subtask{}
		}
		out = append(out, t)
	}
	return out
}
