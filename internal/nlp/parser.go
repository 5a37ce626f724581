// Package nlp turns a line of free text into structured task fields.
//
// Extraction runs as a fixed sequence of passes. Every pass removes the text
// it consumed, so later passes never see it. Within the priority, repeat and
// due-keyword tables a later table entry overrides an earlier one when both
// match the same input.
package nlp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

const DefaultTitle = "New Task"

type ParsedTask struct {
	Title            string
	DueDate          *time.Time
	Priority         model.Priority
	Tags             []string
	ProjectName      string
	RepeatType       model.RepeatType
	RepeatInterval   int
	EstimatedMinutes *int
}

type priorityRule struct {
	pattern  *regexp.Regexp
	priority model.Priority
}

type repeatRule struct {
	pattern  *regexp.Regexp
	kind     model.RepeatType
	interval int
}

type dueRule struct {
	keyword string
	pattern *regexp.Regexp
	resolve func(now time.Time) time.Time
}

var priorityRules = []priorityRule{
	{wordPattern("p1"), model.PriorityCritical},
	{wordPattern("p2"), model.PriorityHigh},
	{wordPattern("p3"), model.PriorityMedium},
	{wordPattern("p4"), model.PriorityLow},
	{wordPattern("urgent"), model.PriorityCritical},
	{wordPattern("important"), model.PriorityHigh},
	{wordPattern("critical"), model.PriorityCritical},
	{wordPattern("high priority"), model.PriorityHigh},
	{wordPattern("low priority"), model.PriorityLow},
}

var repeatRules = []repeatRule{
	{wordPattern("daily"), model.RepeatDaily, 1},
	{wordPattern("every day"), model.RepeatDaily, 1},
	{wordPattern("weekly"), model.RepeatWeekly, 1},
	{wordPattern("every week"), model.RepeatWeekly, 1},
	{wordPattern("monthly"), model.RepeatMonthly, 1},
	{wordPattern("every month"), model.RepeatMonthly, 1},
	{wordPattern("yearly"), model.RepeatYearly, 1},
	{wordPattern("every year"), model.RepeatYearly, 1},
	{wordPattern("every 2 days"), model.RepeatDaily, 2},
	{wordPattern("every 3 days"), model.RepeatDaily, 3},
	{wordPattern("every 2 weeks"), model.RepeatWeekly, 2},
	{wordPattern("biweekly"), model.RepeatWeekly, 2},
}

var dueRules = []dueRule{
	{"today", wordPattern("today"), func(now time.Time) time.Time { return model.EndOfDay(now) }},
	{"tomorrow", wordPattern("tomorrow"), func(now time.Time) time.Time { return model.EndOfDay(now.AddDate(0, 0, 1)) }},
	{"tonight", wordPattern("tonight"), func(now time.Time) time.Time { return atClock(now, 20, 0) }},
	{"this evening", wordPattern("this evening"), func(now time.Time) time.Time { return atClock(now, 18, 0) }},
	{"next week", wordPattern("next week"), func(now time.Time) time.Time { return model.EndOfDay(now.AddDate(0, 0, 7)) }},
	{"next monday", wordPattern("next monday"), nextWeekday(time.Monday)},
	{"next tuesday", wordPattern("next tuesday"), nextWeekday(time.Tuesday)},
	{"next wednesday", wordPattern("next wednesday"), nextWeekday(time.Wednesday)},
	{"next thursday", wordPattern("next thursday"), nextWeekday(time.Thursday)},
	{"next friday", wordPattern("next friday"), nextWeekday(time.Friday)},
	{"next month", wordPattern("next month"), func(now time.Time) time.Time { return model.EndOfDay(model.AddMonthsClamped(now, 1)) }},
}

var (
	tagPattern      = regexp.MustCompile(`#(\w+)`)
	projectPattern  = regexp.MustCompile(`@(\w+)`)
	durationPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)(minutes|minute|mins|min|hours|hour|hrs|hr|h)\b`)
	clockPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bat (\d{1,2}):?(\d{2})?\s*(am|pm)?\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`),
	}
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDatePattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	shortDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	offsetPattern    = regexp.MustCompile(`(?i)\bin (\d+) (days|day|weeks|week|months|month)\b`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
}

type Option func(*Parser)

// WithClock overrides the time source used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

type Parser struct {
	now func() time.Time
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses input against the wall clock.
func Parse(input string) ParsedTask {
	return NewParser().Parse(input)
}

// Parse never fails. Input that matches nothing comes back as the trimmed
// title, or DefaultTitle when nothing is left.
func (p *Parser) Parse(input string) ParsedTask {
	now := p.now()
	text := strings.TrimSpace(input)
	var out ParsedTask

	for _, rule := range priorityRules {
		if next, ok := strip(text, rule.pattern); ok {
			out.Priority = rule.priority
			text = next
		}
	}

	if matches := tagPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		out.Tags = make([]string, 0, len(matches))
		for _, m := range matches {
			out.Tags = append(out.Tags, m[1])
		}
		text = strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
	}

	if loc := projectPattern.FindStringSubmatchIndex(text); loc != nil {
		out.ProjectName = text[loc[2]:loc[3]]
		text = cut(text, loc)
	}

	for _, rule := range repeatRules {
		if next, ok := strip(text, rule.pattern); ok {
			out.RepeatType = rule.kind
			out.RepeatInterval = rule.interval
			text = next
		}
	}

	if loc := durationPattern.FindStringSubmatchIndex(text); loc != nil {
		value, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		if err == nil {
			unit := strings.ToLower(text[loc[4]:loc[5]])
			if strings.HasPrefix(unit, "h") {
				value *= 60
			}
			minutes := int(math.Round(value))
			out.EstimatedMinutes = &minutes
			text = cut(text, loc)
		}
	}

	for _, rule := range dueRules {
		if next, ok := strip(text, rule.pattern); ok {
			due := rule.resolve(now)
			out.DueDate = &due
			text = next
		}
	}

	for _, pattern := range clockPatterns {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		hour, minute, ok := clockFromMatch(text, loc)
		if !ok {
			continue
		}
		base := now
		if out.DueDate != nil {
			base = *out.DueDate
		}
		due := atClock(base, hour, minute)
		out.DueDate = &due
		text = cut(text, loc)
		break
	}

	if due, next, ok := absoluteDate(text, now); ok {
		out.DueDate = &due
		text = next
	}

	if loc := offsetPattern.FindStringSubmatchIndex(text); loc != nil {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err == nil {
			unit := strings.ToLower(text[loc[4]:loc[5]])
			var due time.Time
			switch {
			case strings.HasPrefix(unit, "day"):
				due = model.EndOfDay(now.AddDate(0, 0, n))
			case strings.HasPrefix(unit, "week"):
				due = model.EndOfDay(now.AddDate(0, 0, 7*n))
			default:
				due = model.EndOfDay(model.AddMonthsClamped(now, n))
			}
			out.DueDate = &due
			text = cut(text, loc)
		}
	}

	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
	if text == "" {
		text = DefaultTitle
	}
	out.Title = text
	return out
}

// strip removes every match of re from text.
func strip(text string, re *regexp.Regexp) (string, bool) {
	if !re.MatchString(text) {
		return text, false
	}
	return strings.TrimSpace(re.ReplaceAllString(text, "")), true
}

// cut removes the match located at loc[0]:loc[1].
func cut(text string, loc []int) string {
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

func clockFromMatch(text string, loc []int) (int, int, bool) {
	hour, err := strconv.Atoi(text[loc[2]:loc[3]])
	if err != nil {
		return 0, 0, false
	}
	minute := 0
	if loc[4] >= 0 {
		minute, err = strconv.Atoi(text[loc[4]:loc[5]])
		if err != nil {
			return 0, 0, false
		}
	}
	if loc[6] >= 0 {
		switch strings.ToLower(text[loc[6]:loc[7]]) {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func absoluteDate(text string, now time.Time) (time.Time, string, bool) {
	if loc := isoDatePattern.FindStringSubmatchIndex(text); loc != nil {
		if d, ok := calendarDate(atoi(text, loc, 1), atoi(text, loc, 2), atoi(text, loc, 3), now.Location()); ok {
			return d, cut(text, loc), true
		}
	}
	if loc := usDatePattern.FindStringSubmatchIndex(text); loc != nil {
		if d, ok := calendarDate(atoi(text, loc, 3), atoi(text, loc, 1), atoi(text, loc, 2), now.Location()); ok {
			return d, cut(text, loc), true
		}
	}
	if loc := shortDatePattern.FindStringSubmatchIndex(text); loc != nil {
		if d, ok := calendarDate(now.Year(), atoi(text, loc, 1), atoi(text, loc, 2), now.Location()); ok {
			return d, cut(text, loc), true
		}
	}
	return time.Time{}, text, false
}

func atoi(text string, loc []int, group int) int {
	v, err := strconv.Atoi(text[loc[2*group]:loc[2*group+1]])
	if err != nil {
		return -1
	}
	return v
}

func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return d, true
}

func atClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// nextWeekday resolves "next <day>": always strictly after today, so on the
// named weekday itself it jumps a full week.
func nextWeekday(target time.Weekday) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		offset := (7 + int(target) - int(now.Weekday())) % 7
		if offset == 0 {
			offset = 7
		}
		return model.EndOfDay(now.AddDate(0, 0, offset))
	}
}

// Preview renders the parsed fields on one line for the quick-add input.
func Preview(p ParsedTask) string {
	parts := []string{p.Title}
	if p.DueDate != nil {
		parts = append(parts, "Due: "+p.DueDate.Format("Mon Jan 2 15:04"))
	}
	if p.Priority != "" {
		parts = append(parts, "Priority: "+string(p.Priority))
	}
	if len(p.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(p.Tags, ", "))
	}
	if p.ProjectName != "" {
		parts = append(parts, "Project: "+p.ProjectName)
	}
	if p.RepeatType != "" {
		parts = append(parts, fmt.Sprintf("Repeat: %s/%d", p.RepeatType, p.RepeatInterval))
	}
	if p.EstimatedMinutes != nil {
		parts = append(parts, fmt.Sprintf("Estimate: %dm", *p.EstimatedMinutes))
	}
	return strings.Join(parts, " | ")
}
