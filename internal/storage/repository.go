package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, key string) (Snapshot, error)
	SaveSnapshot(ctx context.Context, in Snapshot) error
	DeleteSnapshot(ctx context.Context, key string) error
	ListSnapshots(ctx context.Context, filter SnapshotListFilter) ([]Snapshot, error)
}
