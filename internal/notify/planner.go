package notify

import (
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/scheduler"
)

// Scheduler is the part of scheduler.Engine the planner drives.
type Scheduler interface {
	Schedule(ev scheduler.DueEvent) error
	Cancel(taskID string) int
}

// Planner keeps one due-soon and one due event queued per open task with a
// future due date.
type Planner struct {
	engine  Scheduler
	lead    time.Duration
	planned map[string]time.Time
}

func NewPlanner(engine Scheduler, lead time.Duration) *Planner {
	if lead <= 0 {
		lead = DefaultLead
	}
	return &Planner{engine: engine, lead: lead, planned: make(map[string]time.Time)}
}

// Sync reconciles queued events with tasks and returns how many events it
// scheduled.
func (p *Planner) Sync(tasks []model.Task, now time.Time) (int, error) {
	seen := make(map[string]bool, len(tasks))
	scheduled := 0
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == model.StatusCompleted || t.Status == model.StatusArchived || !t.DueDate.After(now) {
			continue
		}
		seen[t.ID] = true
		due := *t.DueDate
		if prev, ok := p.planned[t.ID]; ok && prev.Equal(due) {
			continue
		}
		p.engine.Cancel(t.ID)
		if soon := due.Add(-p.lead); soon.After(now) {
			if err := p.engine.Schedule(scheduler.DueEvent{ID: t.ID + ":" + string(scheduler.KindDueSoon), TaskID: t.ID, Kind: scheduler.KindDueSoon, TriggerAt: soon}); err != nil {
				return scheduled, err
			}
			scheduled++
		}
		if err := p.engine.Schedule(scheduler.DueEvent{ID: t.ID + ":" + string(scheduler.KindDue), TaskID: t.ID, Kind: scheduler.KindDue, TriggerAt: due}); err != nil {
			return scheduled, err
		}
		scheduled++
		p.planned[t.ID] = due
	}
	for id := range p.planned {
		if !seen[id] {
			p.engine.Cancel(id)
			delete(p.planned, id)
		}
	}
	return scheduled, nil
}
