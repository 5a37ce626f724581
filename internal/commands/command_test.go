package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"filter status:todo", TypeFilter},
		{"clear", TypeClear},
		{"sort due asc", TypeSort},
		{"search report", TypeSearch},
		{"view kanban", TypeView},
		{"done", TypeDone},
		{"dup 3f2a", TypeDuplicate},
		{"delete selected", TypeDelete},
		{"habit done Read", TypeHabit},
		{"template Weekly Review", TypeTemplate},
		{"export /tmp/tasks.json", TypeExport},
		{"import /tmp/tasks.json", TypeImport},
		{"snooze all 15m", TypeSnooze},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseInvalidArguments(t *testing.T) {
	cases := []string{
		"add",
		"filter",
		"filter status:done",
		"filter priority:p9",
		"filter color:red",
		"filter due:maybe",
		"sort",
		"sort rank",
		"sort due sideways",
		"view board",
		"habit",
		"habit add",
		"habit add Gym weekly",
		"habit add Gym custom days:funday",
		"habit skip Read",
		"template",
		"export",
		"snooze all",
		"snooze all soon",
	}
	for _, in := range cases {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseFilterTerms(t *testing.T) {
	cmd, err := Parse("filter status:todo status:in-progress priority:HIGH tag:#work project:@home overdue due:yes subtasks:no")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	f := cmd.Filter
	if len(f.Statuses) != 2 || f.Statuses[1] != model.StatusInProgress {
		t.Fatalf("unexpected statuses: %v", f.Statuses)
	}
	if len(f.Priorities) != 1 || f.Priorities[0] != model.PriorityHigh {
		t.Fatalf("unexpected priorities: %v", f.Priorities)
	}
	if len(f.Tags) != 1 || f.Tags[0] != "work" || len(f.Projects) != 1 || f.Projects[0] != "home" {
		t.Fatalf("unexpected names: tags=%v projects=%v", f.Tags, f.Projects)
	}
	if !f.Overdue || f.HasDueDate == nil || !*f.HasDueDate || f.HasSubtasks == nil || *f.HasSubtasks {
		t.Fatalf("unexpected flags: %+v", f)
	}
}

func TestParseSort(t *testing.T) {
	cmd, err := Parse("sort priority asc")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Sort.Sort != (query.Sort{Field: query.SortByPriority, Direction: query.Ascending}) {
		t.Fatalf("unexpected sort: %+v", cmd.Sort.Sort)
	}
	cmd, err = Parse("sort title")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Sort.Sort.Direction != query.Descending {
		t.Fatalf("expected default descending, got %v", cmd.Sort.Sort.Direction)
	}
}

func TestParseHabitAdd(t *testing.T) {
	cmd, err := Parse("habit add Morning run custom days:mon,wednesday,fri")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	h := cmd.Habit
	if h.Action != HabitAdd || h.Name != "Morning run" || h.Frequency != model.FrequencyCustom {
		t.Fatalf("unexpected habit args: %+v", h)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(h.Days) != len(want) {
		t.Fatalf("unexpected days: %v", h.Days)
	}
	for i := range want {
		if h.Days[i] != want[i] {
			t.Fatalf("unexpected days: %v", h.Days)
		}
	}

	cmd, err = Parse("habit add Drink water")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Habit.Frequency != model.FrequencyDaily || cmd.Habit.Name != "Drink water" {
		t.Fatalf("unexpected default habit: %+v", cmd.Habit)
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"15m":        15 * time.Minute,
		"1h30m":      90 * time.Minute,
		"10 minutes": 10 * time.Minute,
		"2 hours":    2 * time.Hour,
		"1 day":      24 * time.Hour,
		"3 mins":     3 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil || got != want {
			t.Fatalf("ParseDuration(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDuration("-5m"); err == nil {
		t.Fatal("expected negative duration to fail")
	}
}

func TestParseTargetDefaultsToSelected(t *testing.T) {
	cmd, err := Parse("done")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Target.Target != "selected" {
		t.Fatalf("unexpected target: %q", cmd.Target.Target)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"clear", "view list", "snooze all 5m", "habit done Read"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
