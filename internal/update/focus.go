package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/notify"
	"github.com/sandeepkv93/taskdesk/internal/pomodoro"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) handleFocusKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		wasRunning := m.Timer.Running
		m.Timer.Toggle()
		if wasRunning {
			m.Status = StatusBar{Text: "focus paused"}
			return m, nil
		}
		m.focusGen++
		m.Status = StatusBar{Text: "focus running"}
		return m, focusTickCmd(m.focusGen)
	case "r":
		m.Timer.Reset()
		m.Status = StatusBar{Text: "focus reset"}
		return m, nil
	case "n":
		m.applyTransition(m.Timer.Skip())
		return m, nil
	case "x":
		m.Timer.SetTask("")
		m.Status = StatusBar{Text: "focus task detached"}
		return m, nil
	}
	return m, nil
}

// onFocusTick ignores ticks from a chain started before the last resume.
func (m Model) onFocusTick(msg FocusTickMsg) (tea.Model, tea.Cmd) {
	if !m.Timer.Running || msg.Gen != m.focusGen {
		return m, nil
	}
	if tr, ok := m.Timer.Tick(); ok {
		m.applyTransition(tr)
	}
	return m, focusTickCmd(m.focusGen)
}

// applyTransition credits finished work sessions to the attached task.
func (m *Model) applyTransition(tr pomodoro.Transition) {
	if tr.From == pomodoro.PhaseWork && tr.TaskID != "" {
		if _, err := m.store.RecordPomodoro(tr.TaskID); err != nil {
			m.logger.Debug("record pomodoro failed", zap.String("task_id", tr.TaskID), zap.Error(err))
		}
	}
	var text string
	switch {
	case tr.To == pomodoro.PhaseShortBreak || tr.To == pomodoro.PhaseLongBreak:
		text = fmt.Sprintf("work session %d complete, time for a %s", tr.Sessions, tr.To)
	case tr.From == pomodoro.PhaseIdle:
		text = "work session started"
	default:
		text = "break over, back to work"
	}
	m.Status = StatusBar{Text: text}
	if tr.From != pomodoro.PhaseIdle {
		m.monitor.Push("Pomodoro", text, notify.LevelLow, m.store.Now())
	}
}

func (m Model) renderFocusView() string {
	data := views.FocusPanelData{
		Phase:        string(m.Timer.Phase),
		Timer:        m.Timer.Clock(),
		ProgressView: m.renderProgress(),
		Sessions:     m.Timer.Sessions,
		Running:      m.Timer.Running,
	}
	if m.Timer.TaskID != "" {
		if t, err := m.store.Task(m.Timer.TaskID); err == nil {
			data.TaskTitle = t.Title
		}
	}
	return views.RenderFocusPanel(data)
}

func focusTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{Gen: gen} })
}
