package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	version int
	name    string
	up      string
	down    string
}

const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL
)`

// MigrateUp applies every migration newer than the recorded schema version
// and returns how many ran. Each migration runs in its own transaction.
func MigrateUp(db *sql.DB) (int, error) {
	all, applied, err := migrationState(db)
	if err != nil {
		return 0, err
	}
	ran := 0
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.up); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		ran++
	}
	return ran, nil
}

// MigrateDown reverts applied migrations newest first.
func MigrateDown(db *sql.DB) (int, error) {
	all, applied, err := migrationState(db)
	if err != nil {
		return 0, err
	}
	ran := 0
	for _, m := range slices.Backward(all) {
		if !applied[m.version] {
			continue
		}
		err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.down); err != nil {
				return err
			}
			_, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = ?`, m.version)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("revert migration %s: %w", m.name, err)
		}
		ran++
	}
	return ran, nil
}

func migrationState(db *sql.DB) ([]migration, map[int]bool, error) {
	all, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.Exec(versionTable); err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()
	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, err
		}
		applied[v] = true
	}
	return all, applied, rows.Err()
}

// loadMigrations pairs NNNN_name.up.sql with NNNN_name.down.sql.
func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	out := make([]migration, 0, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(path.Base(name), ".up.sql")
		prefix, _, ok := strings.Cut(base, "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil {
			return nil, fmt.Errorf("migration %s: name must start with a version number", name)
		}
		up, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		down, err := migrationFiles.ReadFile(strings.TrimSuffix(name, ".up.sql") + ".down.sql")
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}
		out = append(out, migration{version: version, name: base, up: string(up), down: string(down)})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
