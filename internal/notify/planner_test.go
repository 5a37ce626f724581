package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/scheduler"
)

type fakeScheduler struct {
	events    map[string]scheduler.DueEvent
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{events: make(map[string]scheduler.DueEvent)}
}

func (f *fakeScheduler) Schedule(ev scheduler.DueEvent) error {
	f.events[ev.ID] = ev
	return nil
}

func (f *fakeScheduler) Cancel(taskID string) int {
	f.cancelled = append(f.cancelled, taskID)
	n := 0
	for id, ev := range f.events {
		if ev.TaskID == taskID {
			delete(f.events, id)
			n++
		}
	}
	return n
}

func TestPlannerSync(t *testing.T) {
	engine := newFakeScheduler()
	p := NewPlanner(engine, 30*time.Minute)

	far := dueIn("far", 2*time.Hour, model.PriorityLow)
	near := dueIn("near", 10*time.Minute, model.PriorityLow)
	past := dueIn("past", -time.Hour, model.PriorityLow)

	n, err := p.Sync([]model.Task{far, near, past}, now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, now.Add(90*time.Minute), engine.events["far:due-soon"].TriggerAt)
	assert.Equal(t, now.Add(2*time.Hour), engine.events["far:due"].TriggerAt)
	assert.Contains(t, engine.events, "near:due")
	assert.NotContains(t, engine.events, "near:due-soon")

	n, err = p.Sync([]model.Task{far, near}, now)
	require.NoError(t, err)
	assert.Zero(t, n, "unchanged tasks are not rescheduled")

	far.Status = model.StatusCompleted
	moved := dueIn("near", 3*time.Hour, model.PriorityLow)
	n, err = p.Sync([]model.Task{far, moved}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, engine.events, "far:due")
	assert.Equal(t, now.Add(3*time.Hour), engine.events["near:due"].TriggerAt)
}

func TestPlannerWithEngine(t *testing.T) {
	engine := scheduler.NewEngine(4)
	engine.Start()
	defer engine.Stop()

	p := NewPlanner(engine, time.Hour)
	start := time.Now()
	due := start.Add(40 * time.Millisecond)
	_, err := p.Sync([]model.Task{{ID: "a", Title: "a", Status: model.StatusTodo, DueDate: &due}}, start)
	require.NoError(t, err)

	select {
	case ev := <-engine.C():
		assert.Equal(t, "a", ev.TaskID)
		assert.Equal(t, scheduler.KindDue, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for due event")
	}
}
