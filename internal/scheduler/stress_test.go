package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Several planners racing to reschedule and cancel the same tasks must
// leave exactly one delivery per surviving event id.
func TestConcurrentRescheduleAndCancel(t *testing.T) {
	engine := NewEngine(1024)
	engine.Start()
	defer engine.Stop()

	const tasks = 200
	const planners = 6
	base := time.Now().UTC().Add(300 * time.Millisecond)

	var wg sync.WaitGroup
	for p := range planners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				ev := DueEvent{
					ID:        fmt.Sprintf("due-task-%d", i),
					TaskID:    fmt.Sprintf("task-%d", i),
					Kind:      KindDue,
					TriggerAt: base.Add(time.Duration((i+p)%20) * time.Millisecond),
				}
				if err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule %s: %v", ev.ID, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < tasks; i += 2 {
		engine.Cancel(fmt.Sprintf("task-%d", i))
	}
	if got := engine.Pending(); got > tasks/2 {
		t.Fatalf("expected at most %d pending after cancel, got %d", tasks/2, got)
	}

	seen := make(map[string]int)
	deadline := time.After(5 * time.Second)
	for len(seen) < tasks/2 {
		select {
		case ev := <-engine.C():
			seen[ev.ID]++
		case <-deadline:
			t.Fatalf("timed out: received %d of %d, dropped %d", len(seen), tasks/2, engine.Dropped())
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("event %s delivered %d times", id, n)
		}
	}
	select {
	case ev := <-engine.C():
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
