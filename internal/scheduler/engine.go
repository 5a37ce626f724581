// Package scheduler emits task due-time events at their trigger instants.
package scheduler

import (
	"container/heap"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type EventKind string

const (
	// KindDueSoon fires a lead time before the due date.
	KindDueSoon EventKind = "due-soon"
	KindDue     EventKind = "due"
)

type DueEvent struct {
	ID        string
	TaskID    string
	Kind      EventKind
	TriggerAt time.Time
}

// eventHeap orders by trigger time, then id, so simultaneous events fire
// in a stable order.
type eventHeap []DueEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if !h[i].TriggerAt.Equal(h[j].TriggerAt) {
		return h[i].TriggerAt.Before(h[j].TriggerAt)
	}
	return h[i].ID < h[j].ID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(DueEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces the clock used to decide which events are due.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is a single-goroutine timer wheel over a min-heap. Due events are
// sent on C without blocking; events that find the buffer full are counted
// as dropped.
type Engine struct {
	mu      sync.Mutex
	pending eventHeap
	out     chan DueEvent
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	running bool
	closed  bool
	dropped atomic.Uint64
	now     func() time.Time
	logger  *zap.Logger
}

func NewEngine(buffer int, opts ...Option) *Engine {
	e := &Engine{
		out:    make(chan DueEvent, max(buffer, 1)),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) C() <-chan DueEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.closed {
		return
	}
	e.running = true
	go e.run()
}

// Stop halts the loop and closes C. Pending events are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running || e.closed {
		e.closed = true
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.quit)
	e.mu.Unlock()
	<-e.done
}

// Schedule queues ev. A pending event with the same non-empty ID is
// replaced.
func (e *Engine) Schedule(ev DueEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStopped
	}
	if ev.ID != "" {
		e.dropWhereLocked(func(p DueEvent) bool { return p.ID == ev.ID })
	}
	heap.Push(&e.pending, ev)
	e.poke()
	return nil
}

// Cancel drops every pending event for taskID and returns how many were
// removed.
func (e *Engine) Cancel(taskID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.dropWhereLocked(func(p DueEvent) bool { return p.TaskID == taskID })
	if n > 0 {
		e.poke()
	}
	return n
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) dropWhereLocked(match func(DueEvent) bool) int {
	before := len(e.pending)
	e.pending = slices.DeleteFunc(e.pending, match)
	removed := before - len(e.pending)
	if removed > 0 {
		heap.Init(&e.pending)
	}
	return removed
}

func (e *Engine) run() {
	defer close(e.done)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var fire <-chan time.Time
		if next, ok := e.head(); ok {
			timer.Reset(max(next.Sub(e.now()), 0))
			fire = timer.C
		}
		select {
		case <-fire:
			for _, ev := range e.takeDue(e.now()) {
				e.deliver(ev)
			}
		case <-e.wake:
			timer.Stop()
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) deliver(ev DueEvent) {
	select {
	case e.out <- ev:
	default:
		e.dropped.Add(1)
		e.logger.Warn("due event dropped", zap.String("event_id", ev.ID), zap.String("task_id", ev.TaskID))
	}
}

func (e *Engine) poke() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) head() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return time.Time{}, false
	}
	return e.pending[0].TriggerAt, true
}

func (e *Engine) takeDue(now time.Time) []DueEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var due []DueEvent
	for len(e.pending) > 0 && !e.pending[0].TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.pending).(DueEvent))
	}
	return due
}
