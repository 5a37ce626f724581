package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskdesk-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestSnapshotCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	saved := parseRFC3339(t, "2026-02-09T12:00:00Z")

	snap := Snapshot{Key: "tasks-alice", Payload: []byte(`[{"id":"1"}]`), UpdatedAt: saved}
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, snap.Key)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if string(got.Payload) != string(snap.Payload) || !got.UpdatedAt.Equal(saved) {
		t.Fatalf("unexpected snapshot: %#v", got)
	}

	snap.Payload = []byte(`[]`)
	snap.UpdatedAt = saved.Add(time.Hour)
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("overwrite snapshot: %v", err)
	}
	if err := repo.SaveSnapshot(ctx, Snapshot{Key: "habits-alice", Payload: []byte(`{}`), UpdatedAt: saved}); err != nil {
		t.Fatalf("save habits: %v", err)
	}
	if err := repo.SaveSnapshot(ctx, Snapshot{Key: "tasks-bob", Payload: []byte(`[]`), UpdatedAt: saved}); err != nil {
		t.Fatalf("save bob: %v", err)
	}

	tasks, err := repo.ListSnapshots(ctx, SnapshotListFilter{Prefix: "tasks-"})
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Key != "tasks-alice" || string(tasks[0].Payload) != "[]" {
		t.Fatalf("unexpected task snapshots: %#v", tasks)
	}

	page, err := repo.ListSnapshots(ctx, SnapshotListFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list with offset: %v", err)
	}
	if len(page) != 2 || page[0].Key != "tasks-alice" {
		t.Fatalf("unexpected offset page: %#v", page)
	}

	if err := repo.DeleteSnapshot(ctx, snap.Key); err != nil {
		t.Fatalf("delete snapshot: %v", err)
	}
	if _, err := repo.LoadSnapshot(ctx, snap.Key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteSnapshot(ctx, snap.Key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListSnapshotsEscapesPrefix(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for _, key := range []string{"tasks-a_b", "tasks-axb"} {
		if err := repo.SaveSnapshot(ctx, Snapshot{Key: key, Payload: []byte(`[]`)}); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}
	got, err := repo.ListSnapshots(ctx, SnapshotListFilter{Prefix: "tasks-a_"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Key != "tasks-a_b" {
		t.Fatalf("unexpected prefix match: %#v", got)
	}
}

func TestSaveSnapshotRequiresKey(t *testing.T) {
	repo := setupRepo(t)
	if err := repo.SaveSnapshot(context.Background(), Snapshot{Payload: []byte(`[]`)}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	if err := repo.SaveSnapshot(context.Background(), Snapshot{Key: "k", Payload: []byte(`1`)}); err != nil {
		t.Fatalf("save after open: %v", err)
	}
}
