package web

import (
	"time"

	"github.com/sandeepkv93/taskdesk/internal/query"
)

// ganttRow is the JSON shape of one bar in the gantt view.
type ganttRow struct {
	TaskID string    `json:"taskId"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Days   int       `json:"days"`
}

func ganttRows(bars []query.Bar) []ganttRow {
	out := make([]ganttRow, 0, len(bars))
	for _, b := range bars {
		out = append(out, ganttRow{TaskID: b.Task.ID, Title: b.Task.Title, Start: b.Start, End: b.End, Days: b.Days()})
	}
	return out
}
