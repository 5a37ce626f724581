package nlp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// Wednesday.
var fixedNow = time.Date(2026, 2, 11, 10, 15, 30, 0, time.UTC)

func newTestParser() *Parser {
	return NewParser(WithClock(func() time.Time { return fixedNow }))
}

func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestParseFullSentence(t *testing.T) {
	got := newTestParser().Parse("Buy groceries tomorrow at 5pm #shopping p1")

	assert.Equal(t, "Buy groceries", got.Title)
	assert.Equal(t, model.PriorityCritical, got.Priority)
	assert.Equal(t, []string{"shopping"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, date(2026, 2, 12, 17, 0), *got.DueDate)
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		got := newTestParser().Parse(in)
		assert.Equal(t, ParsedTask{Title: DefaultTitle}, got, "input %q", in)
	}
}

func TestParseTonight(t *testing.T) {
	got := newTestParser().Parse("Call mom tonight")

	assert.Equal(t, "Call mom", got.Title)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, date(2026, 2, 11, 20, 0), *got.DueDate)
	assert.Empty(t, got.Priority)
	assert.Nil(t, got.Tags)
}

func TestParsePriorityKeywords(t *testing.T) {
	cases := map[string]model.Priority{
		"p1":            model.PriorityCritical,
		"p2":            model.PriorityHigh,
		"p3":            model.PriorityMedium,
		"p4":            model.PriorityLow,
		"urgent":        model.PriorityCritical,
		"important":     model.PriorityHigh,
		"critical":      model.PriorityCritical,
		"high priority": model.PriorityHigh,
		"low priority":  model.PriorityLow,
		"URGENT":        model.PriorityCritical,
	}
	for keyword, want := range cases {
		t.Run(keyword, func(t *testing.T) {
			got := newTestParser().Parse("Ship release " + keyword)
			assert.Equal(t, want, got.Priority)
			assert.Equal(t, "Ship release", got.Title)
			assert.NotContains(t, strings.ToLower(got.Title), strings.ToLower(keyword))
		})
	}
}

func TestParsePriorityIsWholeWord(t *testing.T) {
	got := newTestParser().Parse("Update p10 firmware for urgently needed fix")
	assert.Empty(t, got.Priority)
	assert.Equal(t, "Update p10 firmware for urgently needed fix", got.Title)
}

func TestParsePriorityLaterTableEntryWins(t *testing.T) {
	// p1 precedes p4 in the table, so p4 wins regardless of text order.
	got := newTestParser().Parse("p4 Pay rent p1")
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, "Pay rent", got.Title)

	got = newTestParser().Parse("low priority cleanup urgent")
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, "cleanup", got.Title)
}

func TestParseTagsAndProject(t *testing.T) {
	got := newTestParser().Parse("Plan sprint @work @home #team #q3")

	assert.Equal(t, []string{"team", "q3"}, got.Tags)
	assert.Equal(t, "work", got.ProjectName)
	assert.Equal(t, "Plan sprint @home", got.Title)
}

func TestParseRepeat(t *testing.T) {
	cases := []struct {
		in       string
		kind     model.RepeatType
		interval int
		title    string
	}{
		{"Water plants every 2 days", model.RepeatDaily, 2, "Water plants"},
		{"Standup daily", model.RepeatDaily, 1, "Standup"},
		{"Retro biweekly", model.RepeatWeekly, 2, "Retro"},
		{"Backup every 2 weeks", model.RepeatWeekly, 2, "Backup"},
		{"Invoice every month", model.RepeatMonthly, 1, "Invoice"},
		{"Renew domain yearly", model.RepeatYearly, 1, "Renew domain"},
		{"Report daily weekly", model.RepeatWeekly, 1, "Report"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			assert.Equal(t, tc.kind, got.RepeatType)
			assert.Equal(t, tc.interval, got.RepeatInterval)
			assert.Equal(t, tc.title, got.Title)
		})
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in    string
		want  int
		title string
	}{
		{"Write essay 1.5h", 90, "Write essay"},
		{"Read 30mins", 30, "Read"},
		{"Review 45min docs", 45, "Review docs"},
		{"Deep work 2hrs", 120, "Deep work"},
		{"Yoga 1hour", 60, "Yoga"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			require.NotNil(t, got.EstimatedMinutes)
			assert.Equal(t, tc.want, *got.EstimatedMinutes)
			assert.Equal(t, tc.title, got.Title)
		})
	}

	got := newTestParser().Parse("Gym 2 hours")
	assert.Nil(t, got.EstimatedMinutes)
	assert.Equal(t, "Gym 2 hours", got.Title)
}

func TestParseDueKeywords(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Pay bills today", model.EndOfDay(date(2026, 2, 11, 0, 0))},
		{"Pay bills tomorrow", model.EndOfDay(date(2026, 2, 12, 0, 0))},
		{"Pay bills this evening", date(2026, 2, 11, 18, 0)},
		{"Pay bills next week", model.EndOfDay(date(2026, 2, 18, 0, 0))},
		{"Pay bills next monday", model.EndOfDay(date(2026, 2, 16, 0, 0))},
		{"Pay bills next wednesday", model.EndOfDay(date(2026, 2, 18, 0, 0))},
		{"Pay bills next friday", model.EndOfDay(date(2026, 2, 13, 0, 0))},
		{"Pay bills next month", model.EndOfDay(date(2026, 3, 11, 0, 0))},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			require.NotNil(t, got.DueDate)
			assert.Equal(t, tc.want, *got.DueDate)
			assert.Equal(t, "Pay bills", got.Title)
		})
	}
}

func TestParseNextWeekdayFromSameWeekday(t *testing.T) {
	monday := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
	p := NewParser(WithClock(func() time.Time { return monday }))
	got := p.Parse("Sprint planning next monday")
	require.NotNil(t, got.DueDate)
	assert.Equal(t, model.EndOfDay(date(2026, 2, 16, 0, 0)), *got.DueDate)
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in    string
		want  time.Time
		title string
	}{
		{"Meeting at 3:30pm", date(2026, 2, 11, 15, 30), "Meeting"},
		{"Sync 9:05 with team", date(2026, 2, 11, 9, 5), "Sync with team"},
		{"Night job at 12am", date(2026, 2, 11, 0, 0), "Night job"},
		{"Lunch at 12pm", date(2026, 2, 11, 12, 0), "Lunch"},
		{"Dentist next friday at 9am", date(2026, 2, 13, 9, 0), "Dentist"},
		{"Standup at 930am", date(2026, 2, 11, 9, 30), "Standup"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			require.NotNil(t, got.DueDate)
			assert.Equal(t, tc.want, *got.DueDate)
			assert.Equal(t, tc.title, got.Title)
		})
	}
}

func TestParseClockOutOfRangeIsIgnored(t *testing.T) {
	got := newTestParser().Parse("Score was 99:99")
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "Score was 99:99", got.Title)
}

func TestParseAbsoluteDates(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"File report tomorrow 2026-03-05", date(2026, 3, 5, 0, 0)},
		{"File report 04/15/2026", date(2026, 4, 15, 0, 0)},
		{"File report 12/31", date(2026, 12, 31, 0, 0)},
		{"File report at 5pm 2026-03-05", date(2026, 3, 5, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			require.NotNil(t, got.DueDate)
			assert.Equal(t, tc.want, *got.DueDate)
			assert.Equal(t, "File report", got.Title)
		})
	}

	got := newTestParser().Parse("Ratio 13/45")
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "Ratio 13/45", got.Title)
}

func TestParseRelativeOffset(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Renew passport in 2 days", model.EndOfDay(date(2026, 2, 13, 0, 0))},
		{"Renew passport in 3 weeks", model.EndOfDay(date(2026, 3, 4, 0, 0))},
		{"Renew passport in 1 month", model.EndOfDay(date(2026, 3, 11, 0, 0))},
		{"Renew passport 2026-05-01 in 1 day", model.EndOfDay(date(2026, 2, 12, 0, 0))},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := newTestParser().Parse(tc.in)
			require.NotNil(t, got.DueDate)
			assert.Equal(t, tc.want, *got.DueDate)
			assert.Equal(t, "Renew passport", got.Title)
		})
	}
}

func TestParseCollapsesWhitespace(t *testing.T) {
	got := newTestParser().Parse("  Buy   milk \t and  eggs  ")
	assert.Equal(t, "Buy milk and eggs", got.Title)
}

func TestParseOnlyTokensFallsBackToDefaultTitle(t *testing.T) {
	got := newTestParser().Parse("#errand p2 tomorrow")
	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"errand"}, got.Tags)
	require.NotNil(t, got.DueDate)
}

func TestParseMonthOffsetClampsToMonthEnd(t *testing.T) {
	jan31 := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	p := NewParser(WithClock(func() time.Time { return jan31 }))

	for _, in := range []string{"Pay rent in 1 month", "Pay rent next month"} {
		got := p.Parse(in)
		require.NotNil(t, got.DueDate, in)
		assert.Equal(t, model.EndOfDay(date(2026, 2, 28, 0, 0)), *got.DueDate, in)
	}
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{"today", "tomorrow", "tonight"}, Suggest("to"))
	assert.Equal(t, []string{"every day", "every week", "every month"}, Suggest("every"))
	assert.Equal(t, []string{"today", "tomorrow", "tonight", "this evening", "next week"}, Suggest(""))
	assert.Equal(t, []string{"p1 (critical)", "p2 (high)", "p3 (medium)", "p4 (low)", "every day"}, Suggest("repeat p"))
	assert.Contains(t, Suggest("call mom tomorrow"), "tomorrow")
}

func TestPreview(t *testing.T) {
	got := Preview(newTestParser().Parse("Buy groceries tomorrow at 5pm #shopping #food p1 @home 30min"))
	assert.True(t, strings.HasPrefix(got, "Buy groceries | Due: "))
	assert.Contains(t, got, "Priority: critical")
	assert.Contains(t, got, "Tags: shopping, food")
	assert.Contains(t, got, "Project: home")
	assert.Contains(t, got, "Estimate: 30m")
}
