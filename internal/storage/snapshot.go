package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Reason string

const (
	ReasonMissing Reason = "missing"
	ReasonCorrupt Reason = "corrupt"
	ReasonIO      Reason = "io"
)

// Result reports the outcome of a snapshot load or save. Persistence
// failures are values, never panics or errors crossing the boundary.
type Result struct {
	OK     bool
	Reason Reason
	Err    error
}

func TasksKey(user string) string     { return "tasks-" + user }
func HabitsKey(user string) string    { return "habits-" + user }
func TemplatesKey(user string) string { return "templates-" + user }

// LoadJSON decodes the snapshot stored under key into dst. On any failure
// dst is left untouched.
func LoadJSON[T any](ctx context.Context, repo SnapshotRepository, key string, dst *T) Result {
	if repo == nil {
		return Result{Reason: ReasonIO, Err: errors.New("storage: nil repository")}
	}
	snap, err := repo.LoadSnapshot(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Result{Reason: ReasonMissing, Err: err}
	}
	if err != nil {
		return Result{Reason: ReasonIO, Err: err}
	}
	var decoded T
	if err := json.Unmarshal(snap.Payload, &decoded); err != nil {
		return Result{Reason: ReasonCorrupt, Err: err}
	}
	*dst = decoded
	return Result{OK: true}
}

func SaveJSON(ctx context.Context, repo SnapshotRepository, key string, v any, now time.Time) Result {
	if repo == nil {
		return Result{Reason: ReasonIO, Err: errors.New("storage: nil repository")}
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return Result{Reason: ReasonCorrupt, Err: err}
	}
	if err := repo.SaveSnapshot(ctx, Snapshot{Key: key, Payload: payload, UpdatedAt: now}); err != nil {
		return Result{Reason: ReasonIO, Err: err}
	}
	return Result{OK: true}
}
