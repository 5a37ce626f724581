package habit

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// RateWindowDays is the trailing window, today included, used for the
// completion rate. It is the same for daily, weekly and custom habits.
const RateWindowDays = 30

type Stats struct {
	CurrentStreak     int    `json:"currentStreak"`
	LongestStreak     int    `json:"longestStreak"`
	TotalCompletions  int    `json:"totalCompletions"`
	CompletionRate    int    `json:"completionRate"`
	LastCompletedDate string `json:"lastCompletedDate,omitempty"`
}

// ComputeStats derives streaks and rates from one habit's completion
// records. Records with Completed=false are ignored. Days are evaluated in
// now's location.
func ComputeStats(completions []model.HabitCompletion, now time.Time) Stats {
	done := make(map[string]bool, len(completions))
	days := make([]string, 0, len(completions))
	for _, c := range completions {
		if !c.Completed {
			continue
		}
		done[c.Date] = true
		days = append(days, c.Date)
	}
	// DayLayout sorts lexically in date order.
	slices.SortFunc(days, func(a, b string) int { return strings.Compare(b, a) })

	stats := Stats{TotalCompletions: len(days)}
	if len(days) == 0 {
		return stats
	}
	stats.LastCompletedDate = days[0]
	stats.CurrentStreak = currentStreak(done, now)
	stats.LongestStreak = longestStreak(days, now.Location())
	stats.CompletionRate = completionRate(days, now)
	return stats
}

// currentStreak walks back from today. A missing today is skipped once so an
// unfinished day does not break a streak running through yesterday.
func currentStreak(done map[string]bool, now time.Time) int {
	today := model.StartOfDay(now)
	cursor := today
	streak := 0
	for {
		if done[model.Day(cursor)] {
			streak++
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		if streak == 0 && cursor.Equal(today) {
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		return streak
	}
}

// longestStreak scans days newest first; a gap of exactly one calendar day
// extends the run and anything else starts a new run of 1.
func longestStreak(days []string, loc *time.Location) int {
	longest, run := 0, 0
	var prev time.Time
	for _, raw := range days {
		d, err := model.ParseDay(raw, loc)
		if err != nil {
			continue
		}
		if prev.IsZero() {
			run = 1
		} else if dayDiff(prev, d) == 1 {
			run++
		} else {
			longest = max(longest, run)
			run = 1
		}
		prev = d
	}
	return max(longest, run)
}

func completionRate(days []string, now time.Time) int {
	today := model.StartOfDay(now)
	from := today.AddDate(0, 0, -(RateWindowDays - 1))
	recent := 0
	for _, raw := range days {
		d, err := model.ParseDay(raw, now.Location())
		if err != nil {
			continue
		}
		if !d.Before(from) && !d.After(today) {
			recent++
		}
	}
	return int(math.Round(float64(recent) / RateWindowDays * 100))
}

// dayDiff counts calendar days from b to a, tolerating DST shifts.
func dayDiff(a, b time.Time) int {
	return int(math.Round(a.Sub(b).Hours() / 24))
}
