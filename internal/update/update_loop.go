package update

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForStoreEventCmd(m.changes),
		func() tea.Msg { return NotifyTickMsg{At: m.store.Now()} },
	}
	if ch := m.dueEvents(); ch != nil {
		cmds = append(cmds, waitForDueEventCmd(ch))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.resizeComponents()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case FocusTickMsg:
		return m.onFocusTick(typed)
	case NotifyTickMsg:
		m.evaluateNotifications()
		return m, notifyTickCmd()
	case DueEventMsg:
		m.applyDueEvent(typed.Event)
		return m, waitForDueEventCmd(m.dueEvents())
	case StoreChangedMsg:
		m.syncPlanner()
		m.List.Cursor = clampCursor(m.List.Cursor, len(m.visibleTasks()))
		return m, waitForStoreEventCmd(m.changes)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error("app error", zap.Error(typed.Err))
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return m.quit()
	}
	// Modal inputs own the keyboard until closed.
	switch {
	case m.Palette.Active:
		return m.handlePaletteKey(msg), nil
	case m.QuickAdd.Active:
		return m.handleQuickAddKey(msg), nil
	case m.RepeatEditor.Active:
		return m.handleRepeatEditorKey(msg), nil
	}

	if n, err := strconv.Atoi(keyStr); err == nil && n >= 1 && n <= len(viewOrder) {
		m.CurrentView = viewOrder[n-1]
		return m, nil
	}
	switch keyStr {
	case "tab":
		m.CurrentView = nextView(m.CurrentView, 1)
		return m, nil
	case "shift+tab":
		m.CurrentView = nextView(m.CurrentView, -1)
		return m, nil
	case m.Keys.QuickAdd:
		return m.openQuickAdd(), nil
	case m.Keys.Palette:
		return m.openPalette(), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Save:
		m.save()
		return m, nil
	case m.Keys.ReadAll:
		m.monitor.MarkAllRead()
		m.Status = StatusBar{Text: "notifications marked read"}
		return m, nil
	case m.Keys.Snooze:
		m.snoozeLatest()
		return m, nil
	case m.Keys.Quit:
		return m.quit()
	case "esc":
		if m.HelpVisible {
			m.HelpVisible = false
			return m, nil
		}
	}

	switch m.CurrentView {
	case ViewList, ViewMatrix:
		return m.handleListKey(msg)
	case ViewKanban:
		return m.handleKanbanKey(msg)
	case ViewCalendar:
		return m.handleCalendarKey(msg), nil
	case ViewHabits:
		return m.handleHabitsKey(msg), nil
	case ViewFocus:
		return m.handleFocusKey(msg)
	}
	return m, nil
}

func (m *Model) save() {
	if m.persist == nil {
		m.Status = StatusBar{Text: "nothing to save to"}
		return
	}
	m.setResult("saved", m.persist())
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.save()
	if m.unsub != nil {
		m.unsub()
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	m.syncBubbleData()

	var left string
	switch m.CurrentView {
	case ViewList:
		left = m.renderListView()
	case ViewKanban:
		left = m.renderKanbanView()
	case ViewCalendar:
		left = m.renderCalendarView()
	case ViewMatrix:
		left = m.renderMatrixView()
	case ViewHabits:
		left = m.renderHabitsView()
	case ViewFocus:
		left = m.renderFocusView()
	}
	left = joinNonEmpty(left, m.renderQuickAdd(), m.renderCommandPalette())

	var right string
	if m.List.DetailVisible && (m.CurrentView == ViewList || m.CurrentView == ViewMatrix) {
		right = m.renderDetailPane()
	}
	right = joinNonEmpty(right, m.renderRepeatEditor(), m.renderHelpIfVisible())

	tabs := make([]string, len(viewOrder))
	for i, v := range viewOrder {
		tabs[i] = string(v)
	}
	return views.RenderApp(views.AppData{
		Tabs:         tabs,
		ActiveTab:    string(m.CurrentView),
		Header:       fmt.Sprintf("taskdesk | %d tasks | %d selected", len(m.store.Tasks()), len(m.List.Selected)),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   m.Status.Text,
		IsError:      m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("1-%d views | %s add | %s cmd | %s help | %s save | %s read all | %s quit",
			len(viewOrder), m.Keys.QuickAdd, m.Keys.Palette, m.Keys.Help, m.Keys.Save, m.Keys.ReadAll, m.Keys.Quit),
		Width: m.width,
	})
}

func nextView(current View, step int) View {
	for i, v := range viewOrder {
		if v == current {
			n := len(viewOrder)
			return viewOrder[((i+step)%n+n)%n]
		}
	}
	return ViewList
}

func isKnownView(v View) bool {
	for _, known := range viewOrder {
		if v == known {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
