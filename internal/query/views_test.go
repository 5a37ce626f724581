package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

func dayTask(id string, due time.Time, status model.Status) model.Task {
	return model.Task{ID: id, Title: id, Status: status, DueDate: &due}
}

func TestDerivedViews(t *testing.T) {
	midnight := model.StartOfDay(now)
	tasks := []model.Task{
		dayTask("yesterday", midnight.Add(-time.Minute), model.StatusTodo),
		dayTask("earlier-today", midnight.Add(time.Hour), model.StatusTodo),
		dayTask("done-today", midnight.Add(2*time.Hour), model.StatusCompleted),
		dayTask("tonight", midnight.Add(23*time.Hour), model.StatusInProgress),
		dayTask("tomorrow", midnight.AddDate(0, 0, 1), model.StatusTodo),
		dayTask("week-edge", midnight.AddDate(0, 0, 7), model.StatusTodo),
		dayTask("past-week", midnight.AddDate(0, 0, 7).Add(time.Nanosecond), model.StatusTodo),
		{ID: "undated", Status: model.StatusTodo},
	}

	assert.Equal(t, []string{"yesterday", "earlier-today"}, ids(Overdue(tasks, now)))
	assert.Equal(t, []string{"earlier-today", "done-today", "tonight"}, ids(DueToday(tasks, now)))
	assert.Equal(t, []string{"earlier-today", "tonight", "tomorrow", "week-edge"}, ids(Upcoming(tasks, now)))
}

func TestByProjectAndTag(t *testing.T) {
	tasks := fixture()
	assert.Equal(t, []string{"a", "e"}, ids(ByProject(tasks, "p1")))
	assert.Equal(t, []string{"b", "d"}, ids(ByProject(tasks, "")))
	assert.Equal(t, []string{"a", "d"}, ids(ByTag(tasks, "tag-work")))
	assert.Empty(t, ByTag(tasks, "tag-missing"))
}
