// Package commands parses and dispatches command palette input.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
	"github.com/sandeepkv93/taskdesk/internal/query"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeFilter    Type = "filter"
	TypeClear     Type = "clear"
	TypeSort      Type = "sort"
	TypeSearch    Type = "search"
	TypeView      Type = "view"
	TypeDone      Type = "done"
	TypeDuplicate Type = "dup"
	TypeDelete    Type = "delete"
	TypeHabit     Type = "habit"
	TypeTemplate  Type = "template"
	TypeExport    Type = "export"
	TypeImport    Type = "import"
	TypeSnooze    Type = "snooze"
)

// Types lists every command in palette order.
var Types = []Type{
	TypeAdd, TypeFilter, TypeClear, TypeSort, TypeSearch, TypeView, TypeDone, TypeDuplicate,
	TypeDelete, TypeHabit, TypeTemplate, TypeExport, TypeImport, TypeSnooze,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Text string
}

// FilterArgs carries tag and project names; handlers resolve them to ids.
type FilterArgs struct {
	Statuses    []model.Status
	Priorities  []model.Priority
	Tags        []string
	Projects    []string
	Overdue     bool
	HasDueDate  *bool
	HasSubtasks *bool
}

type SortArgs struct {
	Sort query.Sort
}

type SearchArgs struct {
	Query string
}

type ViewArgs struct {
	Name string
}

// TargetArgs names a task: "selected" or an id prefix.
type TargetArgs struct {
	Target string
}

type HabitAction string

const (
	HabitAdd  HabitAction = "add"
	HabitDone HabitAction = "done"
	HabitUndo HabitAction = "undo"
)

type HabitArgs struct {
	Action    HabitAction
	Name      string
	Frequency model.Frequency
	Days      []time.Weekday
}

type TemplateArgs struct {
	Ref string
}

type PathArgs struct {
	Path string
}

type SnoozeArgs struct {
	Target string
	For    time.Duration
}

// Views lists the names accepted by "view".
var Views = []string{"list", "kanban", "calendar", "matrix", "habits", "focus"}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Filter   *FilterArgs
	Sort     *SortArgs
	Search   *SearchArgs
	View     *ViewArgs
	Target   *TargetArgs
	Habit    *HabitArgs
	Template *TemplateArgs
	Path     *PathArgs
	Snooze   *SnoozeArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeClear:
		return Command{Type: TypeClear, Raw: input}, nil
	case TypeSort:
		return parseSort(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: strings.Join(args, " ")}}, nil
	case TypeView:
		return parseView(input, args)
	case TypeDone, TypeDuplicate, TypeDelete:
		return parseTarget(input, Type(head), args)
	case TypeHabit:
		return parseHabit(input, args)
	case TypeTemplate:
		if len(args) == 0 {
			return Command{}, invalid("template requires a name or id")
		}
		return Command{Type: TypeTemplate, Raw: input, Template: &TemplateArgs{Ref: strings.Join(args, " ")}}, nil
	case TypeExport, TypeImport:
		if len(args) == 0 {
			return Command{}, invalid("%s requires a file path", head)
		}
		return Command{Type: Type(head), Raw: input, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
	case TypeSnooze:
		return parseSnooze(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text}}, nil
}

// parseFilter reads key:value terms; repeated keys accumulate.
func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("filter requires at least one term, e.g. status:todo")
	}
	out := FilterArgs{}
	for _, arg := range args {
		if strings.EqualFold(arg, "overdue") {
			out.Overdue = true
			continue
		}
		key, value, ok := strings.Cut(arg, ":")
		if !ok || value == "" {
			return Command{}, invalid("filter term %q must look like key:value", arg)
		}
		switch strings.ToLower(key) {
		case "status":
			s := model.Status(strings.ToLower(value))
			if !s.IsValid() {
				return Command{}, invalid("unknown status %q", value)
			}
			out.Statuses = append(out.Statuses, s)
		case "priority":
			p := model.Priority(strings.ToLower(value))
			if !p.IsValid() {
				return Command{}, invalid("unknown priority %q", value)
			}
			out.Priorities = append(out.Priorities, p)
		case "tag":
			out.Tags = append(out.Tags, strings.TrimPrefix(value, "#"))
		case "project":
			out.Projects = append(out.Projects, strings.TrimPrefix(value, "@"))
		case "due":
			b, err := parseBool(value)
			if err != nil {
				return Command{}, invalid("due expects yes or no")
			}
			out.HasDueDate = &b
		case "subtasks":
			b, err := parseBool(value)
			if err != nil {
				return Command{}, invalid("subtasks expects yes or no")
			}
			out.HasSubtasks = &b
		default:
			return Command{}, invalid("unknown filter key %q", key)
		}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &out}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid("sort requires a field and optional asc|desc")
	}
	field, err := query.ParseSortField(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	dir := query.Descending
	if len(args) == 2 {
		if dir, err = query.ParseDirection(args[1]); err != nil {
			return Command{}, invalid("%v", err)
		}
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Sort: query.Sort{Field: field, Direction: dir}}}, nil
}

func parseView(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("view requires one of %s", strings.Join(Views, ", "))
	}
	name := strings.ToLower(args[0])
	for _, v := range Views {
		if v == name {
			return Command{Type: TypeView, Raw: raw, View: &ViewArgs{Name: name}}, nil
		}
	}
	return Command{}, invalid("unknown view %q", args[0])
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	target := "selected"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: target}}, nil
}

// parseHabit handles "habit add <name> [daily|weekly|custom] [days:mon,wed]"
// and "habit done|undo <name>".
func parseHabit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("habit requires an action (add, done, undo) and a name")
	}
	action := HabitAction(strings.ToLower(args[0]))
	out := HabitArgs{Action: action}
	switch action {
	case HabitDone, HabitUndo:
		out.Name = strings.Join(args[1:], " ")
	case HabitAdd:
		nameParts := make([]string, 0, len(args))
		for _, arg := range args[1:] {
			lower := strings.ToLower(arg)
			if f := model.Frequency(lower); f.IsValid() {
				out.Frequency = f
				continue
			}
			if strings.HasPrefix(lower, "days:") {
				days, err := parseWeekdays(strings.TrimPrefix(lower, "days:"))
				if err != nil {
					return Command{}, err
				}
				out.Days = days
				continue
			}
			nameParts = append(nameParts, arg)
		}
		out.Name = strings.Join(nameParts, " ")
		if out.Frequency == "" {
			out.Frequency = model.FrequencyDaily
		}
		if out.Frequency != model.FrequencyDaily && len(out.Days) == 0 {
			return Command{}, invalid("%s habits need days:mon,wed,...", out.Frequency)
		}
	default:
		return Command{}, invalid("unknown habit action %q", args[0])
	}
	if strings.TrimSpace(out.Name) == "" {
		return Command{}, invalid("habit requires a name")
	}
	return Command{Type: TypeHabit, Raw: raw, Habit: &out}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("snooze requires target and duration")
	}
	d, err := ParseDuration(strings.Join(args[1:], " "))
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{Target: strings.ToLower(args[0]), For: d}}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(raw string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, 7)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			return nil, invalid("unknown weekday %q", token)
		}
		d, ok := weekdayNames[token[:3]]
		if !ok {
			return nil, invalid("unknown weekday %q", token)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseDuration accepts Go durations ("15m", "1h30m") and "<n> <unit>"
// phrases in minutes, hours or days.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d, nil
	}
	fields := strings.Fields(raw)
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[0])
		if err == nil && n > 0 {
			switch strings.TrimSuffix(fields[1], "s") {
			case "min", "minute":
				return time.Duration(n) * time.Minute, nil
			case "hour", "hr":
				return time.Duration(n) * time.Hour, nil
			case "day":
				return time.Duration(n) * 24 * time.Hour, nil
			}
		}
	}
	return 0, invalid("invalid duration %q", raw)
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}
