package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/taskdesk/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	global := toKeyBindings(m.globalBindings())
	local := toKeyBindings(m.viewBindings())
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("%-8s %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.FullHelpView(helpKeyMap{
			short: global,
			full:  [][]key.Binding{global, local},
		}.FullHelp()),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: fmt.Sprintf("1-%d", len(viewOrder)), Action: "switch view"},
		{Key: "tab", Action: "next view"},
		{Key: m.Keys.QuickAdd, Action: "quick add"},
		{Key: m.Keys.Palette, Action: "command palette"},
		{Key: m.Keys.Save, Action: "save"},
		{Key: m.Keys.ReadAll, Action: "mark notifications read"},
		{Key: m.Keys.Snooze, Action: "snooze latest notification"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "save and quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewList, ViewMatrix:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "toggle select"},
			{Key: "enter", Action: "toggle details"},
			{Key: "x", Action: "complete"},
			{Key: "d", Action: "delete"},
			{Key: "D", Action: "duplicate"},
			{Key: "s/p", Action: "cycle status / priority"},
			{Key: "o/O", Action: "sort field / direction"},
			{Key: "c", Action: "clear filters"},
			{Key: "f", Action: "focus on task"},
			{Key: "R", Action: "edit repeat"},
		}
	case ViewKanban:
		return []KeyBinding{
			{Key: "h/l", Action: "move column"},
			{Key: "j/k", Action: "move card"},
			{Key: "[/]", Action: "move card to previous/next status"},
			{Key: "x", Action: "complete"},
		}
	case ViewCalendar:
		return []KeyBinding{
			{Key: "w/m", Action: "week / month"},
			{Key: "h/l", Action: "previous / next period"},
			{Key: "t", Action: "jump to today"},
		}
	case ViewHabits:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "toggle today"},
			{Key: "A", Action: "archive"},
		}
	case ViewFocus:
		return []KeyBinding{
			{Key: "space", Action: "start / pause"},
			{Key: "r", Action: "reset"},
			{Key: "n", Action: "skip phase"},
			{Key: "x", Action: "detach task"},
		}
	}
	return nil
}

func toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
