package update

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/commands"
	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/transfer"
	"github.com/sandeepkv93/taskdesk/internal/views"
)

func (m Model) openPalette() Model {
	m.Palette = CommandPaletteState{Active: true}
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette = CommandPaletteState{}
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			if len(msg.Runes) == 0 {
				m.Palette.Input += " "
			} else {
				m.Palette.Input += string(msg.Runes)
			}
			return m
		}
		m.commandInput.SetValue(m.Palette.Input)
		m.commandInput.CursorEnd()
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette = CommandPaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Debug("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}

// paletteHandlers binds each command to m.
func (m *Model) paletteHandlers() commands.Handlers {
	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.store.AddParsed(m.parser.Parse(a.Text))
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "added: " + task.Title}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			f, err := m.resolveFilter(a)
			if err != nil {
				return commands.Result{}, err
			}
			m.List.Filter = f
			m.List.Cursor = 0
			m.CurrentView = ViewList
			return commands.Result{Message: fmt.Sprintf("%d task(s) match", len(m.visibleTasks()))}, nil
		},
		Clear: func() (commands.Result, error) {
			m.List.Filter = query.Filter{}
			m.List.Search = ""
			return commands.Result{Message: "filters cleared"}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			m.List.Sort = a.Sort
			return commands.Result{Message: "sort: " + a.Sort.String()}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.List.Search = a.Query
			m.List.Cursor = 0
			m.CurrentView = ViewList
			return commands.Result{Message: fmt.Sprintf("search %q: %d match(es)", a.Query, len(m.visibleTasks()))}, nil
		},
		View: func(a commands.ViewArgs) (commands.Result, error) {
			m.CurrentView = View(a.Name)
			return commands.Result{Message: "view: " + a.Name}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			for _, id := range ids {
				if _, _, err := m.store.CompleteTask(id); err != nil {
					return commands.Result{}, err
				}
			}
			clear(m.List.Selected)
			return commands.Result{Message: fmt.Sprintf("completed %d task(s)", len(ids))}, nil
		},
		Duplicate: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			for _, id := range ids {
				if _, err := m.store.DuplicateTask(id); err != nil {
					return commands.Result{}, err
				}
			}
			return commands.Result{Message: fmt.Sprintf("duplicated %d task(s)", len(ids))}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.store.BatchDelete(ids); err != nil {
				return commands.Result{}, err
			}
			clear(m.List.Selected)
			return commands.Result{Message: fmt.Sprintf("deleted %d task(s)", len(ids))}, nil
		},
		Habit: m.runHabitCommand,
		Template: func(a commands.TemplateArgs) (commands.Result, error) {
			tpl, ok := m.store.FindTemplate(a.Ref)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no template %q", a.Ref)}
			}
			task, err := m.store.UseTemplate(tpl.ID)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "added from template: " + task.Title}, nil
		},
		Export: func(a commands.PathArgs) (commands.Result, error) {
			f, err := os.Create(a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			defer f.Close()
			tasks := m.store.Tasks()
			if err := transfer.Export(f, tasks, m.store.Now()); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(tasks), a.Path)}, nil
		},
		Import: func(a commands.PathArgs) (commands.Result, error) {
			f, err := os.Open(a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			defer f.Close()
			res, err := transfer.Import(f)
			if err != nil {
				return commands.Result{}, err
			}
			added, replaced, err := transfer.Merge(m.store, res)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("imported %d new, %d replaced", added, replaced)}, nil
		},
		Snooze: func(a commands.SnoozeArgs) (commands.Result, error) {
			now := m.store.Now()
			visible := m.monitor.Visible(now)
			ids := make([]string, 0, len(visible))
			switch a.Target {
			case "all":
				for _, n := range visible {
					ids = append(ids, n.ID)
				}
			case "latest":
				if len(visible) > 0 {
					ids = append(ids, visible[0].ID)
				}
			default:
				ids = append(ids, a.Target)
			}
			snoozed := 0
			for _, id := range ids {
				if m.monitor.Snooze(id, a.For, now) {
					snoozed++
				}
			}
			if snoozed == 0 {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no matching notifications to snooze"}
			}
			return commands.Result{Message: fmt.Sprintf("snoozed %d notification(s) for %s", snoozed, a.For)}, nil
		},
	}
}

func (m *Model) runHabitCommand(a commands.HabitArgs) (commands.Result, error) {
	tracker := m.store.Habits()
	now := m.store.Now()
	switch a.Action {
	case commands.HabitAdd:
		h, err := tracker.AddHabit(model.Habit{Name: a.Name, Frequency: a.Frequency, DaysOfWeek: a.Days})
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: "habit added: " + h.Name}, nil
	case commands.HabitDone, commands.HabitUndo:
		h, ok := tracker.FindByName(a.Name)
		if !ok {
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no habit %q", a.Name)}
		}
		if a.Action == commands.HabitUndo {
			tracker.MarkIncomplete(h.ID, now)
			return commands.Result{Message: "habit unmarked: " + h.Name}, nil
		}
		if _, err := tracker.MarkComplete(h.ID, now, nil, ""); err != nil {
			return commands.Result{}, err
		}
		stats := tracker.Stats(h.ID, now)
		return commands.Result{Message: fmt.Sprintf("%s done, streak %d", h.Name, stats.CurrentStreak)}, nil
	}
	return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown habit action %q", a.Action)}
}

// resolveFilter maps tag and project names to ids.
func (m *Model) resolveFilter(a commands.FilterArgs) (query.Filter, error) {
	f := query.Filter{
		Statuses:    a.Statuses,
		Priorities:  a.Priorities,
		Overdue:     a.Overdue,
		HasDueDate:  a.HasDueDate,
		HasSubtasks: a.HasSubtasks,
	}
	tags := m.store.Tags()
	for _, name := range a.Tags {
		found := false
		for _, t := range tags {
			if strings.EqualFold(t.Name, name) {
				f.TagIDs = append(f.TagIDs, t.ID)
				found = true
				break
			}
		}
		if !found {
			return query.Filter{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown tag %q", name)}
		}
	}
	for _, name := range a.Projects {
		p, ok := m.store.ProjectByName(name)
		if !ok {
			return query.Filter{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown project %q", name)}
		}
		f.ProjectIDs = append(f.ProjectIDs, p.ID)
	}
	return f, nil
}

// resolveTarget turns "selected" or an id prefix into task ids.
func (m *Model) resolveTarget(target string) ([]string, error) {
	if target == "" || target == "selected" {
		ids := m.targetIDs()
		if len(ids) == 0 {
			return nil, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
		}
		return ids, nil
	}
	var match []string
	for _, t := range m.store.Tasks() {
		if strings.HasPrefix(strings.ToLower(t.ID), target) {
			match = append(match, t.ID)
		}
	}
	switch len(match) {
	case 0:
		return nil, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task with id %q", target)}
	case 1:
		return match, nil
	default:
		return nil, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("id %q is ambiguous", target)}
	}
}

func (m Model) renderCommandPalette() string {
	var hints []string
	if m.Palette.Active && strings.TrimSpace(m.Palette.Input) == "" {
		for _, t := range commands.Types {
			hints = append(hints, string(t))
		}
	}
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View(), hints)
}
