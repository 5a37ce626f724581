package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path in WAL mode and applies pending
// migrations. Writers wait up to five seconds on a locked database.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, key string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, payload, updated_at
		FROM snapshots WHERE key = ?`, key)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveSnapshot inserts or replaces the payload stored under in.Key.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, in Snapshot) error {
	if strings.TrimSpace(in.Key) == "" {
		return errors.New("storage: snapshot key is required")
	}
	updated := in.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		in.Key, in.Payload, updated.UTC().Format(timestampLayout),
	)
	return err
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context, filter SnapshotListFilter) ([]Snapshot, error) {
	query := `SELECT key, payload, updated_at FROM snapshots`
	args := make([]any, 0, 3)
	if filter.Prefix != "" {
		query += ` WHERE key LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(filter.Prefix)+"%")
	}
	query += ` ORDER BY key ASC`
	query, args = page(query, args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// page appends LIMIT/OFFSET to q. SQLite needs a LIMIT before OFFSET, so
// an offset alone uses LIMIT -1.
func page(q string, args []any, limit, offset int) (string, []any) {
	switch {
	case limit > 0:
		q += " LIMIT ?"
		args = append(args, limit)
	case offset > 0:
		q += " LIMIT -1"
	}
	if offset > 0 {
		q += " OFFSET ?"
		args = append(args, offset)
	}
	return q, args
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s rowScanner) (Snapshot, error) {
	var out Snapshot
	var updated string
	if err := s.Scan(&out.Key, &out.Payload, &updated); err != nil {
		return Snapshot{}, err
	}
	at, err := time.Parse(timestampLayout, updated)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: bad updated_at %q: %w", out.Key, updated, err)
	}
	out.UpdatedAt = at
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return err
	case n == 0:
		return ErrNotFound
	}
	return nil
}
