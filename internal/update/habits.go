package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) handleHabitsKey(msg tea.KeyMsg) Model {
	tracker := m.store.Habits()
	habits := tracker.ActiveHabits()
	switch msg.String() {
	case "j", "down":
		m.Habits.Cursor = clampCursor(m.Habits.Cursor+1, len(habits))
	case "k", "up":
		m.Habits.Cursor = clampCursor(m.Habits.Cursor-1, len(habits))
	case " ", "enter":
		if len(habits) == 0 {
			return m
		}
		h := habits[clampCursor(m.Habits.Cursor, len(habits))]
		done, err := tracker.Toggle(h.ID, m.store.Now())
		if err != nil {
			m.setResult("", err)
			return m
		}
		if done {
			stats := tracker.Stats(h.ID, m.store.Now())
			m.Status = StatusBar{Text: fmt.Sprintf("%s done, streak %d", h.Name, stats.CurrentStreak)}
		} else {
			m.Status = StatusBar{Text: h.Name + " unmarked"}
		}
	case "A":
		if len(habits) == 0 {
			return m
		}
		h := habits[clampCursor(m.Habits.Cursor, len(habits))]
		m.setResult("archived: "+h.Name, tracker.ArchiveHabit(h.ID))
		m.Habits.Cursor = clampCursor(m.Habits.Cursor, len(habits)-1)
	}
	return m
}

func (m Model) renderHabitsView() string {
	tracker := m.store.Habits()
	now := m.store.Now()
	habits := tracker.ActiveHabits()
	cursor := clampCursor(m.Habits.Cursor, len(habits))
	rows := make([]views.HabitRowData, 0, len(habits))
	for i, h := range habits {
		_, done := tracker.Completion(h.ID, now)
		stats := tracker.Stats(h.ID, now)
		rows = append(rows, views.HabitRowData{
			Name:          h.Name,
			Frequency:     string(h.Frequency),
			ScheduledDay:  h.ScheduledOn(now.Weekday()),
			DoneToday:     done,
			CurrentStreak: stats.CurrentStreak,
			LongestStreak: stats.LongestStreak,
			Rate:          stats.CompletionRate,
			Cursor:        i == cursor,
		})
	}
	return views.RenderHabitsPanel(rows)
}
