package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/nlp"
	"github.com/sandeepkv93/taskdesk/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LoadSnapshot(ctx context.Context, key string) (storage.Snapshot, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.Snapshot), args.Error(1)
}

func (m *mockRepo) SaveSnapshot(ctx context.Context, in storage.Snapshot) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *mockRepo) DeleteSnapshot(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockRepo) ListSnapshots(ctx context.Context, filter storage.SnapshotListFilter) ([]storage.Snapshot, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]storage.Snapshot), args.Error(1)
}

func TestAddTaskDefaults(t *testing.T) {
	s, clock := newStore(t)
	task, err := s.AddTask(model.Task{Title: "Write report"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, model.PriorityNone, task.Priority)
	assert.Equal(t, clock.t, task.CreatedAt)
	assert.Equal(t, clock.t, task.UpdatedAt)
	assert.NotNil(t, task.Tags)
	assert.Equal(t, uint64(1), s.Revision())
}

func TestAddTaskRejectsInvalid(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.AddTask(model.Task{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AddTask(model.Task{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, model.ErrInvalidPriority)
	assert.Empty(t, s.Tasks())
	assert.Zero(t, s.Revision())
}

func TestUpdateTaskMaintainsTimestamps(t *testing.T) {
	s, clock := newStore(t)
	task, err := s.AddTask(model.Task{Title: "Ship"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	completed := model.StatusCompleted
	done, err := s.UpdateTask(task.ID, Patch{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, clock.t, *done.CompletedAt)
	assert.Equal(t, clock.t, done.UpdatedAt)

	clock.Advance(time.Hour)
	title := "Ship it"
	renamed, err := s.UpdateTask(task.ID, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, *done.CompletedAt, *renamed.CompletedAt, "completedAt kept while status stays completed")
	assert.Equal(t, clock.t, renamed.UpdatedAt)

	todo := model.StatusTodo
	reopened, err := s.UpdateTask(task.ID, Patch{Status: &todo})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
}

func TestUpdateTaskClearsOptionalFields(t *testing.T) {
	s, clock := newStore(t)
	due := clock.t.Add(24 * time.Hour)
	est := 30
	task, err := s.AddTask(model.Task{Title: "Plan", DueDate: &due, EstimatedMinutes: &est})
	require.NoError(t, err)

	updated, err := s.UpdateTask(task.ID, Patch{ClearDueDate: true, ClearEstimate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.EstimatedMinutes)
}

func TestUpdateTaskInvalidLeavesTaskUnchanged(t *testing.T) {
	s, _ := newStore(t)
	task, err := s.AddTask(model.Task{Title: "Keep"})
	require.NoError(t, err)

	bad := model.Status("done")
	_, err = s.UpdateTask(task.ID, Patch{Status: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	got, err := s.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, got.Status)

	_, err = s.UpdateTask("missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateTask(t *testing.T) {
	s, clock := newStore(t)
	completedAt := clock.t
	orig, err := s.AddTask(model.Task{
		Title:       "Report",
		Status:      model.StatusCompleted,
		CompletedAt: &completedAt,
		Priority:    model.PriorityHigh,
		Tags:        []model.Tag{{ID: "t1", Name: "work"}},
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	dup, err := s.DuplicateTask(orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, "Report (Copy)", dup.Title)
	assert.Equal(t, model.StatusTodo, dup.Status)
	assert.Nil(t, dup.CompletedAt)
	assert.Equal(t, clock.t, dup.CreatedAt)
	assert.Equal(t, model.PriorityHigh, dup.Priority)
	assert.Equal(t, orig.Tags, dup.Tags)
	assert.Len(t, s.Tasks(), 2)

	_, err = s.DuplicateTask("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s, _ := newStore(t)
	task, _ := s.AddTask(model.Task{Title: "Gone"})
	require.NoError(t, s.DeleteTask(task.ID))
	assert.Empty(t, s.Tasks())
	assert.ErrorIs(t, s.DeleteTask(task.ID), ErrNotFound)
}

func TestAddParsedResolvesProjectAndTags(t *testing.T) {
	s, clock := newStore(t)
	proj, err := s.AddProject(model.Project{Name: "Work"})
	require.NoError(t, err)
	existing, err := s.AddTag(model.Tag{Name: "home", Color: "#ff0000"})
	require.NoError(t, err)

	parsed := nlp.NewParser(nlp.WithClock(clock.Now)).Parse("Call Bob tomorrow #Home #calls @work weekly 30min")
	task, err := s.AddParsed(parsed)
	require.NoError(t, err)

	assert.Equal(t, "Call Bob", task.Title)
	assert.Equal(t, proj.ID, task.ProjectID)
	require.Len(t, task.Tags, 2)
	assert.Equal(t, existing.ID, task.Tags[0].ID)
	assert.Equal(t, "calls", task.Tags[1].Name)
	assert.Equal(t, DefaultTagColor, task.Tags[1].Color)
	assert.Len(t, s.Tags(), 2)
	assert.Equal(t, model.RepeatWeekly, task.Repeat.Type)
	assert.Equal(t, 1, task.Repeat.Interval)
	require.NotNil(t, task.EstimatedMinutes)
	assert.Equal(t, 30, *task.EstimatedMinutes)
	require.NotNil(t, task.DueDate)
}

func TestAddParsedUnknownProjectIsIgnored(t *testing.T) {
	s, _ := newStore(t)
	task, err := s.AddParsed(nlp.ParsedTask{Title: "x", Priority: model.PriorityLow, ProjectName: "nowhere"})
	require.NoError(t, err)
	assert.Empty(t, task.ProjectID)
}

func TestCompleteRepeatingTaskSpawnsNextOccurrence(t *testing.T) {
	s, clock := newStore(t)
	due := time.Date(2026, 2, 11, 17, 0, 0, 0, time.UTC)
	task, err := s.AddTask(model.Task{
		Title:    "Standup",
		DueDate:  &due,
		Repeat:   model.RepeatRule{Type: model.RepeatDaily, Interval: 1},
		Subtasks: []model.Subtask{{ID: "s1", Title: "notes", Completed: true}},
	})
	require.NoError(t, err)

	done, next, err := s.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, clock.t, *done.CompletedAt)
	require.NotNil(t, next)
	assert.Equal(t, model.StatusTodo, next.Status)
	assert.Equal(t, due.AddDate(0, 0, 1), *next.DueDate)
	assert.False(t, next.Subtasks[0].Completed)
	assert.Len(t, s.Tasks(), 2)

	_, again, err := s.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.Nil(t, again, "completing twice does not spawn twice")
}

func TestCompleteRepeatingTaskPastEndDate(t *testing.T) {
	s, _ := newStore(t)
	due := time.Date(2026, 2, 11, 17, 0, 0, 0, time.UTC)
	end := due
	task, err := s.AddTask(model.Task{Title: "Last", DueDate: &due, Repeat: model.RepeatRule{Type: model.RepeatDaily, Interval: 1, EndDate: &end}})
	require.NoError(t, err)

	_, next, err := s.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestCompleteTaskWithBrokenRepeatLeavesTaskUntouched(t *testing.T) {
	s, _ := newStore(t)
	payload := []byte(`{"tasks":[{"id":"r1","title":"Water plants","status":"todo","priority":"none",` +
		`"tags":[],"subtasks":[],"repeat":{"type":"hourly","interval":1}}]}`)
	repo := new(mockRepo)
	repo.On("LoadSnapshot", mock.Anything, storage.TasksKey("alice")).Return(storage.Snapshot{Payload: payload}, nil)
	repo.On("LoadSnapshot", mock.Anything, mock.Anything).Return(storage.Snapshot{}, storage.ErrNotFound)
	require.True(t, s.Hydrate(context.Background(), repo, "alice").OK)
	rev := s.Revision()

	_, next, err := s.CompleteTask("r1")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, model.ErrInvalidRepeatType)
	assert.Nil(t, next)

	got, err := s.Task("r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Len(t, s.Tasks(), 1)
	assert.Equal(t, rev, s.Revision())
}

func TestRecordPomodoro(t *testing.T) {
	s, _ := newStore(t)
	task, _ := s.AddTask(model.Task{Title: "Focus"})
	_, err := s.RecordPomodoro(task.ID)
	require.NoError(t, err)
	got, err := s.RecordPomodoro(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PomodoroCount)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s, _ := newStore(t)
	var events []Event
	cancel := s.Subscribe(func(ev Event) { events = append(events, ev) })

	task, _ := s.AddTask(model.Task{Title: "a"})
	_ = s.DeleteTask(task.ID)
	cancel()
	_, _ = s.AddTask(model.Task{Title: "b"})

	require.Len(t, events, 2)
	assert.Equal(t, EventTaskAdded, events[0].Kind)
	assert.Equal(t, []string{task.ID}, events[0].IDs)
	assert.Equal(t, EventTaskDeleted, events[1].Kind)
	assert.Equal(t, uint64(2), events[1].Revision)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := newStore(t)
	_, _ = s.AddTask(model.Task{Title: "a", Tags: []model.Tag{{ID: "t", Name: "t"}}})
	rev, tasks := s.Snapshot()
	tasks[0].Tags[0].Name = "mutated"

	_, again := s.Snapshot()
	assert.Equal(t, uint64(1), rev)
	assert.Equal(t, "t", again[0].Tags[0].Name)
}

func TestHydrateMissingKeepsDefaults(t *testing.T) {
	s, _ := newStore(t)
	repo := new(mockRepo)
	repo.On("LoadSnapshot", mock.Anything, mock.Anything).Return(storage.Snapshot{}, storage.ErrNotFound)

	res := s.Hydrate(context.Background(), repo, "alice")
	assert.True(t, res.OK)
	assert.Len(t, s.Templates(), 6)
	repo.AssertNumberOfCalls(t, "LoadSnapshot", 3)
}

func TestHydratePublishesEvent(t *testing.T) {
	s, _ := newStore(t)
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })
	repo := new(mockRepo)
	repo.On("LoadSnapshot", mock.Anything, mock.Anything).Return(storage.Snapshot{}, storage.ErrNotFound)

	require.True(t, s.Hydrate(context.Background(), repo, "alice").OK)
	require.Len(t, events, 1)
	assert.Equal(t, EventHydrated, events[0].Kind)
	assert.Equal(t, uint64(1), s.Revision())
}

func TestHydrateReportsCorruptSnapshot(t *testing.T) {
	s, _ := newStore(t)
	repo := new(mockRepo)
	repo.On("LoadSnapshot", mock.Anything, storage.TasksKey("alice")).Return(storage.Snapshot{Payload: []byte("{")}, nil)
	repo.On("LoadSnapshot", mock.Anything, mock.Anything).Return(storage.Snapshot{}, storage.ErrNotFound)

	res := s.Hydrate(context.Background(), repo, "alice")
	assert.False(t, res.OK)
	assert.Equal(t, storage.ReasonCorrupt, res.Reason)
	assert.Empty(t, s.Tasks())
}

func TestPersistReportsIOFailure(t *testing.T) {
	s, _ := newStore(t)
	repo := new(mockRepo)
	boom := errors.New("disk full")
	repo.On("SaveSnapshot", mock.Anything, mock.Anything).Return(boom)

	res := s.Persist(context.Background(), repo, "alice")
	assert.False(t, res.OK)
	assert.Equal(t, storage.ReasonIO, res.Reason)
	assert.ErrorIs(t, res.Err, boom)
}

func TestPersistHydrateRoundTripThroughSQLite(t *testing.T) {
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	s, clock := newStore(t)
	proj, _ := s.AddProject(model.Project{Name: "Home"})
	task, err := s.AddTask(model.Task{Title: "Paint", ProjectID: proj.ID})
	require.NoError(t, err)
	h, err := s.Habits().AddHabit(model.Habit{Name: "Read"})
	require.NoError(t, err)
	_, err = s.Habits().MarkComplete(h.ID, clock.t, nil, "")
	require.NoError(t, err)
	_, err = s.UseTemplate("template-1")
	require.NoError(t, err)

	require.True(t, s.Persist(ctx, repo, "alice").OK)

	restored, _ := newStore(t)
	require.True(t, restored.Hydrate(ctx, repo, "alice").OK)
	got, err := restored.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paint", got.Title)
	assert.Len(t, restored.Tasks(), 2)
	assert.Len(t, restored.Projects(), 1)
	assert.Equal(t, 1, restored.Habits().Stats(h.ID, clock.t).CurrentStreak)
	tpl, ok := restored.FindTemplate("template-1")
	require.True(t, ok)
	assert.Equal(t, 1, tpl.UsageCount)

	other, _ := newStore(t)
	assert.True(t, other.Hydrate(ctx, repo, "bob").OK)
	assert.Empty(t, other.Tasks())
}
