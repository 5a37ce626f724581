package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/scheduler"
	"github.com/sandeepkv93/taskdesk/internal/store"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

const shownNotifications = 3

func notifyTickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return NotifyTickMsg{At: t} })
}

func waitForDueEventCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueEventMsg{Event: ev}
	}
}

func waitForStoreEventCmd(ch <-chan store.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return StoreChangedMsg{Event: ev}
	}
}

func (m Model) dueEvents() <-chan scheduler.DueEvent {
	if m.engine == nil {
		return nil
	}
	return m.engine.C()
}

// evaluateNotifications raises due-soon and overdue notifications and shows
// the newest one in the status bar.
func (m *Model) evaluateNotifications() {
	created := m.monitor.Evaluate(m.store.Tasks(), m.store.Now())
	if len(created) == 0 {
		return
	}
	n := created[len(created)-1]
	m.Status = StatusBar{Text: fmt.Sprintf("%s%s", n.Title, suffix(len(created)-1))}
}

func suffix(more int) string {
	if more <= 0 {
		return ""
	}
	return fmt.Sprintf(" (+%d more)", more)
}

func (m *Model) applyDueEvent(ev scheduler.DueEvent) {
	m.logger.Debug("due event", zap.String("task_id", ev.TaskID), zap.String("kind", string(ev.Kind)))
	m.evaluateNotifications()
	t, err := m.store.Task(ev.TaskID)
	if err != nil {
		return
	}
	switch ev.Kind {
	case scheduler.KindDueSoon:
		m.Status = StatusBar{Text: "due soon: " + t.Title}
	case scheduler.KindDue:
		m.Status = StatusBar{Text: "due now: " + t.Title, IsError: true}
	}
}

func (m *Model) snoozeLatest() {
	now := m.store.Now()
	visible := m.monitor.Visible(now)
	if len(visible) == 0 {
		m.Status = StatusBar{Text: "no notifications"}
		return
	}
	m.monitor.Snooze(visible[0].ID, m.snoozeFor, now)
	m.Status = StatusBar{Text: fmt.Sprintf("snoozed %q for %s", visible[0].Title, m.snoozeFor)}
}

func (m *Model) syncPlanner() {
	if m.planner == nil {
		return
	}
	if _, err := m.planner.Sync(m.store.Tasks(), m.store.Now()); err != nil {
		m.logger.Warn("planner sync failed", zap.Error(err))
	}
}

func (m Model) renderNotificationsView() string {
	now := m.store.Now()
	visible := m.monitor.Visible(now)
	if len(visible) > shownNotifications {
		visible = visible[:shownNotifications]
	}
	items := make([]views.NotificationData, 0, len(visible))
	for _, n := range visible {
		items = append(items, views.NotificationData{
			ID:    n.ID,
			Title: n.Title,
			Body:  n.Body,
			Level: string(n.Level),
			Read:  n.Read,
		})
	}
	return views.RenderNotifications(items, m.monitor.UnreadCount(now))
}
