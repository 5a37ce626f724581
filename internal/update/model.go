// Package update holds the bubbletea model for the terminal UI.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/nlp"
	"github.com/sandeepkv93/taskdesk/internal/notify"
	"github.com/sandeepkv93/taskdesk/internal/pomodoro"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/scheduler"
	"github.com/sandeepkv93/taskdesk/internal/store"
)

type View string

const (
	ViewList     View = "list"
	ViewKanban   View = "kanban"
	ViewCalendar View = "calendar"
	ViewMatrix   View = "matrix"
	ViewHabits   View = "habits"
	ViewFocus    View = "focus"
)

// viewOrder is also the number-key order.
var viewOrder = []View{ViewList, ViewKanban, ViewCalendar, ViewMatrix, ViewHabits, ViewFocus}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	QuickAdd string
	Palette  string
	Help     string
	Save     string
	ReadAll  string
	Snooze   string
	Quit     string
}

type ListState struct {
	Filter        query.Filter
	Sort          query.Sort
	Search        string
	Cursor        int
	Selected      map[string]bool
	DetailVisible bool
}

type KanbanState struct {
	Column int
	Row    int
}

type CalendarMode string

const (
	CalendarModeWeek  CalendarMode = "week"
	CalendarModeMonth CalendarMode = "month"
)

type CalendarState struct {
	Mode   CalendarMode
	Anchor time.Time
}

type HabitsState struct {
	Cursor int
}

type QuickAddState struct {
	Active bool
	Input  string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type RepeatEditorState struct {
	Active       bool
	TaskID       string
	Type         model.RepeatType
	IntervalText string
	Preview      []string
	Err          string
}

// Options wires the model to the shared services. Only Store is required.
type Options struct {
	Store     *store.Store
	Cache     *query.Cache
	Parser    *nlp.Parser
	Monitor   *notify.Monitor
	Engine    *scheduler.Engine
	Planner   *notify.Planner
	Pomodoro  pomodoro.Durations
	SnoozeFor time.Duration
	Persist   func() error
	Logger    *zap.Logger
}

type Model struct {
	CurrentView  View
	List         ListState
	Kanban       KanbanState
	Calendar     CalendarState
	Habits       HabitsState
	QuickAdd     QuickAddState
	Palette      CommandPaletteState
	RepeatEditor RepeatEditorState
	Timer        pomodoro.Timer
	HelpVisible  bool
	Status       StatusBar
	Keys         GlobalKeyMap
	Quitting     bool
	LastError    error

	store     *store.Store
	cache     *query.Cache
	parser    *nlp.Parser
	monitor   *notify.Monitor
	engine    *scheduler.Engine
	planner   *notify.Planner
	persist   func() error
	snoozeFor time.Duration
	logger    *zap.Logger
	changes   chan store.Event
	unsub     func()
	focusGen  int

	taskTable      table.Model
	quickAddInput  textinput.Model
	commandInput   textinput.Model
	focusProgress  progress.Model
	helpModel      help.Model
	detailViewport viewport.Model
	width          int
	height         int
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type FocusTickMsg struct {
	Gen int
}

type NotifyTickMsg struct {
	At time.Time
}

type DueEventMsg struct {
	Event scheduler.DueEvent
}

type StoreChangedMsg struct {
	Event store.Event
}

func NewModel(opts Options) Model {
	st := opts.Store
	if st == nil {
		st = store.New()
	}
	m := Model{
		CurrentView: ViewList,
		List: ListState{
			Sort:     query.DefaultSort(),
			Selected: make(map[string]bool),
		},
		Calendar: CalendarState{Mode: CalendarModeWeek, Anchor: st.Now()},
		Timer:    pomodoro.New(opts.Pomodoro),
		Keys: GlobalKeyMap{
			QuickAdd: "a",
			Palette:  "/",
			Help:     "?",
			Save:     "ctrl+s",
			ReadAll:  "N",
			Snooze:   "z",
			Quit:     "q",
		},
		RepeatEditor: RepeatEditorState{Type: model.RepeatDaily, IntervalText: "1"},

		store:     st,
		cache:     opts.Cache,
		parser:    opts.Parser,
		monitor:   opts.Monitor,
		engine:    opts.Engine,
		planner:   opts.Planner,
		persist:   opts.Persist,
		snoozeFor: opts.SnoozeFor,
		logger:    opts.Logger,
		changes:   make(chan store.Event, 1),
		width:     120,
		height:    40,
	}
	if m.cache == nil {
		m.cache = query.NewCache(64, time.Minute)
	}
	if m.parser == nil {
		m.parser = nlp.NewParser(nlp.WithClock(st.Now))
	}
	if m.monitor == nil {
		m.monitor = notify.NewMonitor()
	}
	if m.snoozeFor <= 0 {
		m.snoozeFor = 10 * time.Minute
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	changes := m.changes
	m.unsub = st.Subscribe(func(ev store.Event) {
		select {
		case changes <- ev:
		default:
		}
	})
	m.initBubbleComponents()
	m.syncPlanner()
	return m
}
