package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		task model.Task
		want Quadrant
	}{
		{"critical due in a day", model.Task{Priority: model.PriorityCritical, DueDate: at(24 * time.Hour)}, UrgentImportant},
		{"low without due date", model.Task{Priority: model.PriorityLow}, NotUrgentNotImportant},
		{"high without due date", model.Task{Priority: model.PriorityHigh}, NotUrgentImportant},
		{"medium past due", model.Task{Priority: model.PriorityMedium, DueDate: at(-48 * time.Hour)}, UrgentNotImportant},
		{"just inside window", model.Task{Priority: model.PriorityNone, DueDate: at(UrgencyWindow - time.Nanosecond)}, UrgentNotImportant},
		{"exactly at window", model.Task{Priority: model.PriorityHigh, DueDate: at(UrgencyWindow)}, NotUrgentImportant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.task, now))
		})
	}
}

func TestBuildMatrixSkipsCompleted(t *testing.T) {
	m := BuildMatrix(fixture(), now)

	assert.Len(t, m, 4)
	assert.Equal(t, []string{"a"}, ids(m[UrgentImportant]))
	assert.Equal(t, []string{"e"}, ids(m[NotUrgentImportant]))
	assert.Equal(t, []string{"c"}, ids(m[UrgentNotImportant]))
	assert.Equal(t, []string{"d"}, ids(m[NotUrgentNotImportant]))
}

func TestBuildMatrixEmpty(t *testing.T) {
	m := BuildMatrix(nil, now)
	for _, q := range Quadrants {
		assert.NotNil(t, m[q])
		assert.Empty(t, m[q])
	}
}
