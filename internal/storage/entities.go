package storage

import "time"

// Snapshot is one JSON document stored under a key such as "tasks-local".
type Snapshot struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

type SnapshotListFilter struct {
	Prefix string
	Limit  int
	Offset int
}
