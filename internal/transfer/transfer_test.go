package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/store"
)

var now = time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)

func sampleTasks() []model.Task {
	due := now.Add(48 * time.Hour)
	done := now.Add(-time.Hour)
	est := 25
	end := now.AddDate(0, 1, 0)
	return []model.Task{
		{
			ID: "a", Title: "Write report", Description: "quarterly", Status: model.StatusTodo,
			Priority: model.PriorityHigh, Tags: []model.Tag{{ID: "t1", Name: "work", Color: "#3b82f6"}},
			DueDate: &due, CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now,
			Subtasks:         []model.Subtask{{ID: "s1", Title: "draft", CreatedAt: now}},
			Repeat:           model.RepeatRule{Type: model.RepeatWeekly, Interval: 2, EndDate: &end},
			EstimatedMinutes: &est, ProjectID: "p1", PomodoroCount: 3,
		},
		{
			ID: "b", Title: "Done thing", Status: model.StatusCompleted, Priority: model.PriorityNone,
			Tags: []model.Tag{}, Subtasks: []model.Subtask{}, CompletedAt: &done,
			CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: done,
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleTasks(), now))
	assert.Contains(t, buf.String(), `"exportDate": "2026-02-11T10:00:00Z"`)

	res, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), res.Tasks)
	assert.Equal(t, now, res.ExportDate)
}

func TestExportEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, now))
	assert.Contains(t, buf.String(), `"tasks": []`)
}

func TestExportStoreTaskWritesEmptyArrays(t *testing.T) {
	st := store.New(store.WithClock(func() time.Time { return now }))
	added, err := st.AddTask(model.Task{Title: "Plain task"})
	require.NoError(t, err)
	got, err := st.Task(added.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []model.Task{got}, now))
	assert.Contains(t, buf.String(), `"tags": []`)
	assert.Contains(t, buf.String(), `"subtasks": []`)
	assert.NotContains(t, buf.String(), "null")
}

func TestImportRejectsMalformedFiles(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `{tasks`, ErrMalformed},
		{"missing tasks", `{"exportDate":"2026-02-11T10:00:00Z"}`, ErrMissingList},
		{"tasks is object", `{"tasks":{"id":"a"}}`, ErrMissingList},
		{"tasks is null", `{"tasks":null}`, ErrMissingList},
		{"bad task shape", `{"tasks":[{"id":1}]}`, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMergeIsAllOrNothing(t *testing.T) {
	s := store.New(store.WithClock(func() time.Time { return now }))
	existing, err := s.AddTask(model.Task{ID: "a", Title: "Old title"})
	require.NoError(t, err)

	added, replaced, err := Merge(s, ImportResult{Tasks: sampleTasks()})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, replaced)
	got, err := s.Task(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)

	bad := append(sampleTasks(), model.Task{ID: "c", Title: "", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedAt: now})
	_, _, err = Merge(s, ImportResult{Tasks: bad})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	assert.Len(t, s.Tasks(), 2)
}
