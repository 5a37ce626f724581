package notify

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

const (
	DefaultLead = 30 * time.Minute
	// MaxNotifications bounds the in-memory history; the oldest are dropped.
	MaxNotifications = 100
)

type Option func(*Monitor)

func WithLead(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.lead = d
		}
	}
}

func WithDesktop(n DesktopNotifier) Option {
	return func(m *Monitor) {
		if n != nil {
			m.desktop = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Monitor holds notifications newest first.
type Monitor struct {
	mu      sync.Mutex
	items   []Notification
	seq     int
	lead    time.Duration
	desktop DesktopNotifier
	logger  *zap.Logger

	subs    map[int]func([]Notification)
	nextSub int
}

func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		lead:    DefaultLead,
		desktop: NoopDesktopNotifier{},
		logger:  zap.NewNop(),
		subs:    make(map[int]func([]Notification)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Lead() time.Duration {
	return m.lead
}

// Evaluate raises at most one due-soon and one overdue notification per
// task and returns the ones created by this call.
func (m *Monitor) Evaluate(tasks []model.Task, now time.Time) []Notification {
	m.mu.Lock()
	created := make([]Notification, 0)
	leadMinutes := int(m.lead / time.Minute)
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == model.StatusCompleted || t.Status == model.StatusArchived {
			continue
		}
		until := int(t.DueDate.Sub(now) / time.Minute)

		if until > 0 && until <= leadMinutes && !m.hasTaskLocked(t.ID, "") {
			level := LevelMedium
			if t.Priority.IsImportant() {
				level = LevelHigh
			}
			created = append(created, m.addLocked(Notification{
				ID:     "notif-" + t.ID,
				TaskID: t.ID,
				Kind:   KindDueSoon,
				Title:  "Task Due Soon: " + t.Title,
				Body:   fmt.Sprintf("Due in %d minutes", until),
				Level:  level,
				At:     now,
			}))
		}

		if t.DueDate.Before(now) && !m.hasTaskLocked(t.ID, KindOverdue) {
			created = append(created, m.addLocked(Notification{
				ID:     "overdue-" + t.ID,
				TaskID: t.ID,
				Kind:   KindOverdue,
				Title:  "Task Overdue: " + t.Title,
				Body:   fmt.Sprintf("This task was due %d minutes ago", -until),
				Level:  LevelHigh,
				At:     now,
			}))
		}
	}
	m.mu.Unlock()

	if len(created) > 0 {
		m.deliver(created)
	}
	return created
}

// Push records a free-form message such as command feedback.
func (m *Monitor) Push(title, body string, level Level, now time.Time) Notification {
	m.mu.Lock()
	m.seq++
	n := m.addLocked(Notification{
		ID:    "msg-" + strconv.Itoa(m.seq),
		Kind:  KindMessage,
		Title: title,
		Body:  body,
		Level: level,
		At:    now,
	})
	m.mu.Unlock()
	m.deliver([]Notification{n})
	return n
}

// Visible returns every notification not snoozed at now, newest first.
func (m *Monitor) Visible(now time.Time) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked(now)
}

func (m *Monitor) UnreadCount(now time.Time) int {
	count := 0
	for _, n := range m.Visible(now) {
		if !n.Read {
			count++
		}
	}
	return count
}

func (m *Monitor) MarkRead(id string) bool {
	return m.update(id, func(n *Notification) { n.Read = true })
}

func (m *Monitor) MarkAllRead() {
	m.mu.Lock()
	for i := range m.items {
		m.items[i].Read = true
	}
	m.mu.Unlock()
	m.broadcast(time.Now())
}

func (m *Monitor) Snooze(id string, d time.Duration, now time.Time) bool {
	until := now.Add(d)
	return m.update(id, func(n *Notification) { n.SnoozedUntil = &until })
}

func (m *Monitor) Dismiss(id string) bool {
	m.mu.Lock()
	found := false
	for i, n := range m.items {
		if n.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()
	if found {
		m.broadcast(time.Now())
	}
	return found
}

// Subscribe registers fn to receive the visible list after every change.
func (m *Monitor) Subscribe(fn func([]Notification)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Monitor) update(id string, fn func(*Notification)) bool {
	m.mu.Lock()
	found := false
	for i := range m.items {
		if m.items[i].ID == id {
			fn(&m.items[i])
			found = true
			break
		}
	}
	m.mu.Unlock()
	if found {
		m.broadcast(time.Now())
	}
	return found
}

func (m *Monitor) addLocked(n Notification) Notification {
	m.items = append([]Notification{n}, m.items...)
	if len(m.items) > MaxNotifications {
		m.items = m.items[:MaxNotifications]
	}
	return n
}

// hasTaskLocked matches any notification for taskID when kind is empty.
func (m *Monitor) hasTaskLocked(taskID string, kind Kind) bool {
	for _, n := range m.items {
		if n.TaskID == taskID && (kind == "" || n.Kind == kind) {
			return true
		}
	}
	return false
}

func (m *Monitor) visibleLocked(now time.Time) []Notification {
	out := make([]Notification, 0, len(m.items))
	for _, n := range m.items {
		if !n.Snoozed(now) {
			out = append(out, n)
		}
	}
	return out
}

func (m *Monitor) deliver(created []Notification) {
	for _, n := range created {
		if err := m.desktop.Send(n); err != nil {
			m.logger.Warn("desktop notification failed", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
	now := created[0].At
	m.broadcast(now)
}

func (m *Monitor) broadcast(now time.Time) {
	m.mu.Lock()
	visible := m.visibleLocked(now)
	fns := make([]func([]Notification), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(visible)
	}
}
