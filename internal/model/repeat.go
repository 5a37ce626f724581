package model

import (
	"errors"
	"fmt"
	"time"
)

type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

var (
	ErrInvalidRepeatType = errors.New("model: invalid repeat type")
	ErrInvalidInterval   = errors.New("model: invalid repeat interval")
	ErrRepeatEnded       = errors.New("model: repeat rule has ended")
)

func (r RepeatType) IsValid() bool {
	switch r {
	case "", RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	default:
		return false
	}
}

// RepeatRule describes how a task recurs. The zero value means no repeat.
type RepeatRule struct {
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval,omitempty"`
	EndDate  *time.Time `json:"endDate,omitempty"`
}

func (r RepeatRule) IsRepeating() bool {
	return r.Type != "" && r.Type != RepeatNone
}

func (r RepeatRule) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeatType, r.Type)
	}
	if !r.IsRepeating() {
		return nil
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
	}
	return nil
}

func (r RepeatRule) interval() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

// NextAfter returns the occurrence one interval after from, keeping the
// wall clock of from. It fails with ErrRepeatEnded once EndDate is passed.
func (r RepeatRule) NextAfter(from time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	n := r.interval()
	var next time.Time
	switch r.Type {
	case RepeatDaily:
		next = from.AddDate(0, 0, n)
	case RepeatWeekly:
		next = from.AddDate(0, 0, 7*n)
	case RepeatMonthly:
		next = AddMonthsClamped(from, n)
	case RepeatYearly:
		next = AddMonthsClamped(from, 12*n)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRepeatType, r.Type)
	}
	if r.EndDate != nil && next.After(EndOfDay(*r.EndDate)) {
		return time.Time{}, ErrRepeatEnded
	}
	return next, nil
}

func (r RepeatRule) Preview(from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := r.NextAfter(cursor)
		if errors.Is(err, ErrRepeatEnded) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

// AddMonthsClamped moves t by n months, pinning to the last day of the
// target month instead of overflowing (Jan 31 + 1 month = Feb 28).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
