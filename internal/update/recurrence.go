package update

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/store"
)

var repeatCycle = []model.RepeatType{model.RepeatNone, model.RepeatDaily, model.RepeatWeekly, model.RepeatMonthly, model.RepeatYearly}

func (m *Model) openRepeatEditor() {
	t, ok := m.currentTask()
	if !ok {
		return
	}
	ed := RepeatEditorState{Active: true, TaskID: t.ID, Type: t.Repeat.Type, IntervalText: "1"}
	if ed.Type == "" {
		ed.Type = model.RepeatNone
	}
	if t.Repeat.Interval > 0 {
		ed.IntervalText = strconv.Itoa(t.Repeat.Interval)
	}
	m.RepeatEditor = ed
	m.computeRepeatPreview()
}

func (m Model) handleRepeatEditorKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.RepeatEditor.Active = false
		return m
	case "tab":
		i := slices.Index(repeatCycle, m.RepeatEditor.Type)
		m.RepeatEditor.Type = repeatCycle[(i+1)%len(repeatCycle)]
	case "enter":
		rule, err := m.RepeatEditor.rule()
		if err != nil {
			m.RepeatEditor.Err = err.Error()
			return m
		}
		_, err = m.store.UpdateTask(m.RepeatEditor.TaskID, store.Patch{Repeat: &rule})
		m.setResult("repeat: "+string(rule.Type), err)
		if err == nil {
			m.RepeatEditor.Active = false
		}
		return m
	case "backspace":
		if n := len(m.RepeatEditor.IntervalText); n > 0 {
			m.RepeatEditor.IntervalText = m.RepeatEditor.IntervalText[:n-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.RepeatEditor.IntervalText += string(msg.Runes)
		}
	}
	m.computeRepeatPreview()
	return m
}

func (s RepeatEditorState) rule() (model.RepeatRule, error) {
	if s.Type == model.RepeatNone {
		return model.RepeatRule{Type: model.RepeatNone}, nil
	}
	interval, err := strconv.Atoi(strings.TrimSpace(s.IntervalText))
	if err != nil || interval < 1 {
		return model.RepeatRule{}, fmt.Errorf("interval must be a positive number")
	}
	rule := model.RepeatRule{Type: s.Type, Interval: interval}
	return rule, rule.Validate()
}

// computeRepeatPreview lists the next five occurrences after the task's
// due date, or after now for undated tasks.
func (m *Model) computeRepeatPreview() {
	m.RepeatEditor.Preview = nil
	rule, err := m.RepeatEditor.rule()
	if err != nil {
		m.RepeatEditor.Err = err.Error()
		return
	}
	m.RepeatEditor.Err = ""
	if !rule.IsRepeating() {
		return
	}
	from := m.store.Now()
	if t, err := m.store.Task(m.RepeatEditor.TaskID); err == nil && t.DueDate != nil {
		from = *t.DueDate
	}
	dates, err := rule.Preview(from, 5)
	if err != nil {
		m.RepeatEditor.Err = err.Error()
		return
	}
	for _, d := range dates {
		m.RepeatEditor.Preview = append(m.RepeatEditor.Preview, d.Format("Mon 2006-01-02 15:04"))
	}
}

func (m Model) renderRepeatEditor() string {
	if !m.RepeatEditor.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString("repeat-editor:\n")
	b.WriteString("keys: [tab] type [0-9] interval [enter] apply [esc] close\n")
	b.WriteString(fmt.Sprintf("type: %s\n", m.RepeatEditor.Type))
	b.WriteString(fmt.Sprintf("interval: %s\n", m.RepeatEditor.IntervalText))
	if m.RepeatEditor.Err != "" {
		b.WriteString("error: " + m.RepeatEditor.Err + "\n")
	}
	if len(m.RepeatEditor.Preview) > 0 {
		b.WriteString("next:\n")
		for _, item := range m.RepeatEditor.Preview {
			b.WriteString("- " + item + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
