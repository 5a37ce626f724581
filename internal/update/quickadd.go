package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskdesk/internal/nlp"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) openQuickAdd() Model {
	m.QuickAdd = QuickAddState{Active: true}
	m.quickAddInput.SetValue("")
	m.quickAddInput.Focus()
	return m
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.QuickAdd = QuickAddState{}
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "quick add cancelled"}
	case "enter":
		text := strings.TrimSpace(m.QuickAdd.Input)
		if text == "" {
			return m
		}
		task, err := m.store.AddParsed(m.parser.Parse(text))
		m.setResult("added: "+task.Title, err)
		if err == nil {
			m.QuickAdd = QuickAddState{}
			m.quickAddInput.Blur()
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.QuickAdd.Input += string(msg.Runes)
			if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
				m.QuickAdd.Input += " "
			}
			return m
		}
		m.quickAddInput.SetValue(m.QuickAdd.Input)
		m.quickAddInput.CursorEnd()
		m.quickAddInput, _ = m.quickAddInput.Update(msg)
		m.QuickAdd.Input = m.quickAddInput.Value()
	}
	return m
}

func (m Model) renderQuickAdd() string {
	if !m.QuickAdd.Active {
		return ""
	}
	data := views.QuickAddData{InputView: m.quickAddInput.View()}
	if text := strings.TrimSpace(m.QuickAdd.Input); text != "" {
		data.Preview = nlp.Preview(m.parser.Parse(text))
		data.Suggestions = nlp.Suggest(lastWord(text))
	}
	return views.RenderQuickAdd(data)
}

func lastWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
