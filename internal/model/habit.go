package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for habit completions.
const DayLayout = "2006-01-02"

var (
	ErrInvalidFrequency = errors.New("model: invalid habit frequency")
	ErrInvalidGoalType  = errors.New("model: invalid habit goal type")
	ErrInvalidDay       = errors.New("model: invalid calendar day")
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	default:
		return false
	}
}

type GoalType string

const (
	GoalCompletion GoalType = "completion"
	GoalCount      GoalType = "count"
	GoalDuration   GoalType = "duration"
)

func (g GoalType) IsValid() bool {
	switch g {
	case GoalCompletion, GoalCount, GoalDuration:
		return true
	default:
		return false
	}
}

type Habit struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon,omitempty"`
	Frequency   Frequency      `json:"frequency"`
	DaysOfWeek  []time.Weekday `json:"daysOfWeek,omitempty"`
	GoalType    GoalType       `json:"goalType"`
	GoalValue   float64        `json:"goalValue,omitempty"`
	Archived    bool           `json:"archived"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: habit id is required")
	}
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("model: habit name is required")
	}
	if !h.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, h.Frequency)
	}
	if !h.GoalType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoalType, h.GoalType)
	}
	if h.Frequency == FrequencyCustom && len(h.DaysOfWeek) == 0 {
		return errors.New("model: custom habit requires days of week")
	}
	return nil
}

// ScheduledOn reports whether the habit is due on weekday w.
func (h Habit) ScheduledOn(w time.Weekday) bool {
	if h.Frequency == FrequencyDaily {
		return true
	}
	for _, d := range h.DaysOfWeek {
		if d == w {
			return true
		}
	}
	return false
}

type HabitCompletion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habitId"`
	Date        string    `json:"date"`
	Completed   bool      `json:"completed"`
	Value       *float64  `json:"value,omitempty"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a calendar day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return t, nil
}
