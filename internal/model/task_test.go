package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Title:     "Implement model validation",
		Status:    StatusInProgress,
		Priority:  PriorityHigh,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletedRequiresCompletedAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Title:     "Done task",
		Status:    StatusCompleted,
		Priority:  PriorityMedium,
		CreatedAt: now,
	}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: completed_at is required when task status is completed" {
		t.Fatalf("unexpected error: %v", err)
	}

	task.Status = StatusTodo
	task.CompletedAt = &now
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for completed_at on open task")
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Title:     "Bad status",
		Status:    Status("Invalid"),
		Priority:  PriorityLow,
		CreatedAt: now,
	}
	err := task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}

	task.Status = StatusTodo
	task.Priority = Priority("Bad")
	err = task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}
}

func TestPriorityRankIsTotallyOrdered(t *testing.T) {
	for i := 1; i < len(Priorities); i++ {
		if Priorities[i-1].Rank() >= Priorities[i].Rank() {
			t.Fatalf("rank of %s should be below %s", Priorities[i-1], Priorities[i])
		}
	}
	if Priority("urgent").Rank() != -1 {
		t.Fatal("unknown priority should rank -1")
	}
	if !PriorityCritical.IsImportant() || !PriorityHigh.IsImportant() || PriorityMedium.IsImportant() {
		t.Fatal("unexpected importance classification")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	task := Task{Status: StatusTodo, DueDate: &past}
	if !task.IsOverdue(now) {
		t.Fatal("expected overdue")
	}
	task.Status = StatusCompleted
	if task.IsOverdue(now) {
		t.Fatal("completed task should not be overdue")
	}
	task.Status = StatusBlocked
	task.DueDate = nil
	if task.IsOverdue(now) {
		t.Fatal("task without due date should not be overdue")
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	due := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	est := 30
	task := Task{
		ID:               "task-1",
		Tags:             []Tag{{ID: "t1", Name: "home"}},
		Subtasks:         []Subtask{{ID: "s1", Title: "step"}},
		DueDate:          &due,
		EstimatedMinutes: &est,
	}
	cp := task.Clone()
	cp.Tags[0].Name = "work"
	cp.Subtasks[0].Completed = true
	*cp.DueDate = due.Add(time.Hour)
	*cp.EstimatedMinutes = 60

	if task.Tags[0].Name != "home" || task.Subtasks[0].Completed {
		t.Fatal("clone shares slices with original")
	}
	if !task.DueDate.Equal(due) || *task.EstimatedMinutes != 30 {
		t.Fatal("clone shares pointers with original")
	}
}

func TestTaskCloneKeepsEmptyCollections(t *testing.T) {
	for _, task := range []Task{
		{ID: "empty", Tags: []Tag{}, Subtasks: []Subtask{}},
		{ID: "unset"},
	} {
		cp := task.Clone()
		if cp.Tags == nil || cp.Subtasks == nil {
			t.Fatalf("%s: clone returned nil collections", task.ID)
		}
		raw, err := json.Marshal(cp)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(raw), `"tags":[]`) || !strings.Contains(string(raw), `"subtasks":[]`) {
			t.Fatalf("%s: collections not encoded as arrays: %s", task.ID, raw)
		}
	}
}

func TestDayBoundaries(t *testing.T) {
	at := time.Date(2026, 2, 9, 15, 4, 5, 6, time.UTC)
	if got := StartOfDay(at); got.Format(time.RFC3339Nano) != "2026-02-09T00:00:00Z" {
		t.Fatalf("unexpected start of day: %s", got.Format(time.RFC3339Nano))
	}
	end := EndOfDay(at)
	if end.Day() != 9 || !end.Add(time.Nanosecond).Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end of day: %s", end.Format(time.RFC3339Nano))
	}
}
