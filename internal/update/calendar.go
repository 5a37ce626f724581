package update

import (
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "w":
		m.Calendar.Mode = CalendarModeWeek
		m.Status = StatusBar{Text: "calendar mode: week"}
	case "m":
		m.Calendar.Mode = CalendarModeMonth
		m.Status = StatusBar{Text: "calendar mode: month"}
	case "h", "left":
		m.shiftCalendar(-1)
	case "l", "right":
		m.shiftCalendar(1)
	case "t":
		m.Calendar.Anchor = m.store.Now()
		m.Status = StatusBar{Text: "calendar: today"}
	}
	return m
}

func (m *Model) shiftCalendar(delta int) {
	if m.Calendar.Mode == CalendarModeMonth {
		y, mo, _ := m.Calendar.Anchor.Date()
		m.Calendar.Anchor = time.Date(y, mo+time.Month(delta), 1, 0, 0, 0, 0, m.Calendar.Anchor.Location())
	} else {
		m.Calendar.Anchor = m.Calendar.Anchor.AddDate(0, 0, 7*delta)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("calendar: %s", m.Calendar.Anchor.Format("2006-01-02"))}
}

func (m Model) renderCalendarView() string {
	if m.Calendar.Mode == CalendarModeMonth {
		return m.renderMonthView()
	}
	now := m.store.Now()
	_, tasks := m.store.Snapshot()
	days := query.Timeline(tasks, m.Calendar.Anchor)
	today := model.StartOfDay(now)

	data := views.CalendarPanelData{Title: "week of " + query.WeekStart(m.Calendar.Anchor).Format("Jan 2, 2006")}
	for _, d := range days {
		rows := make([]views.TaskRowData, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			rows = append(rows, rowData(t, now, false))
		}
		data.Days = append(data.Days, views.CalendarDayData{
			Label: d.Date.Format("Mon Jan 2"),
			Today: d.Date.Equal(today),
			Tasks: rows,
		})
	}
	return views.RenderCalendarPanel(data)
}

// renderMonthView lists only the days of the anchor month that have tasks.
func (m Model) renderMonthView() string {
	now := m.store.Now()
	_, tasks := m.store.Snapshot()
	y, mo, _ := m.Calendar.Anchor.Date()
	byDay := query.CalendarMonth(tasks, y, mo, m.Calendar.Anchor.Location())

	dayNums := make([]int, 0, len(byDay))
	for d := range byDay {
		dayNums = append(dayNums, d)
	}
	slices.Sort(dayNums)

	today := model.StartOfDay(now)
	data := views.CalendarPanelData{Title: m.Calendar.Anchor.Format("January 2006")}
	for _, n := range dayNums {
		date := time.Date(y, mo, n, 0, 0, 0, 0, m.Calendar.Anchor.Location())
		rows := make([]views.TaskRowData, 0, len(byDay[n]))
		for _, t := range byDay[n] {
			rows = append(rows, rowData(t, now, false))
		}
		data.Days = append(data.Days, views.CalendarDayData{
			Label: date.Format("Mon Jan 2"),
			Today: date.Equal(today),
			Tasks: rows,
		})
	}
	return views.RenderCalendarPanel(data)
}
