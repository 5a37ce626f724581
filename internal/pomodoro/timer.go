// Package pomodoro implements a tick-driven focus timer.
package pomodoro

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

type Durations struct {
	Work           time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

func DefaultDurations() Durations {
	return Durations{
		Work:           25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

func (d Durations) withDefaults() Durations {
	def := DefaultDurations()
	if d.Work <= 0 {
		d.Work = def.Work
	}
	if d.ShortBreak <= 0 {
		d.ShortBreak = def.ShortBreak
	}
	if d.LongBreak <= 0 {
		d.LongBreak = def.LongBreak
	}
	if d.LongBreakEvery <= 0 {
		d.LongBreakEvery = def.LongBreakEvery
	}
	return d
}

// Transition describes a phase change. TaskID is set when a work session
// finished while a task was attached.
type Transition struct {
	From     Phase
	To       Phase
	TaskID   string
	Sessions int
}

// Timer is advanced by one Tick per second. The zero value is not usable;
// call New.
type Timer struct {
	Phase     Phase
	Remaining time.Duration
	Running   bool
	Sessions  int
	TaskID    string
	durations Durations
}

func New(d Durations) Timer {
	d = d.withDefaults()
	return Timer{Phase: PhaseIdle, Remaining: d.Work, durations: d}
}

func (t Timer) Durations() Durations {
	return t.durations
}

// Start runs the timer, entering work from idle.
func (t *Timer) Start() {
	t.Running = true
	if t.Phase == PhaseIdle {
		t.Phase = PhaseWork
	}
}

func (t *Timer) Pause() {
	t.Running = false
}

// Toggle starts a paused timer and pauses a running one.
func (t *Timer) Toggle() {
	if t.Running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset returns to idle with a full work block. Sessions are kept.
func (t *Timer) Reset() {
	t.Phase = PhaseIdle
	t.Remaining = t.durations.Work
	t.Running = false
}

func (t *Timer) SetTask(taskID string) {
	t.TaskID = taskID
}

// Skip ends the current phase. Finishing work counts a session and starts
// a break, long every LongBreakEvery sessions; anything else goes to work.
func (t *Timer) Skip() Transition {
	tr := Transition{From: t.Phase}
	if t.Phase == PhaseWork {
		t.Sessions++
		tr.TaskID = t.TaskID
		if t.Sessions%t.durations.LongBreakEvery == 0 {
			t.Phase = PhaseLongBreak
			t.Remaining = t.durations.LongBreak
		} else {
			t.Phase = PhaseShortBreak
			t.Remaining = t.durations.ShortBreak
		}
	} else {
		t.Phase = PhaseWork
		t.Remaining = t.durations.Work
	}
	tr.To = t.Phase
	tr.Sessions = t.Sessions
	return tr
}

// Tick counts one second down while running. A tick that finds the clock
// at zero advances the phase and reports the transition.
func (t *Timer) Tick() (Transition, bool) {
	if t.Remaining <= 0 {
		return t.Skip(), true
	}
	if t.Running {
		t.Remaining -= time.Second
		if t.Remaining < 0 {
			t.Remaining = 0
		}
	}
	return Transition{}, false
}

func (t Timer) Total() time.Duration {
	switch t.Phase {
	case PhaseShortBreak:
		return t.durations.ShortBreak
	case PhaseLongBreak:
		return t.durations.LongBreak
	default:
		return t.durations.Work
	}
}

// Progress is the elapsed fraction of the current phase in [0, 1].
func (t Timer) Progress() float64 {
	total := t.Total()
	if total <= 0 {
		return 0
	}
	p := 1 - float64(t.Remaining)/float64(total)
	return min(max(p, 0), 1)
}

// Clock renders the remaining time as MM:SS.
func (t Timer) Clock() string {
	sec := int(t.Remaining / time.Second)
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
