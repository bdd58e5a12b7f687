package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"contentdesk/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers (CLI, TUI and web can share the file);
	// busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS actors (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS brands (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			active INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS post_types (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY,
			brand_id INTEGER NOT NULL,
			post_type_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			due_date TEXT NOT NULL,
			claimant_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_brand ON tasks(brand_id);`,
		`CREATE TABLE IF NOT EXISTS enquiries (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL,
			seq INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, seq);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return loadStateFromSQLite(ctx, db)
}

// SaveSQLite replaces the whole state in one transaction.
func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return ErrNilDB
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeMeta(ctx, tx, st); err != nil {
		return err
	}

	// Replace-all; the data set is small and a full rewrite keeps rows consistent.
	for _, t := range []string{"actors", "brands", "post_types", "tasks", "enquiries"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for _, a := range st.Actors {
		raw, _ := json.Marshal(a)
		if _, err := tx.ExecContext(ctx, `INSERT INTO actors(id, json, updated_at_unixms) VALUES(?, ?, ?)`, a.ID, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, b := range st.Brands {
		raw, _ := json.Marshal(b)
		if _, err := tx.ExecContext(ctx, `INSERT INTO brands(id, name, active, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			b.ID, b.Name, boolToInt(b.Active), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.PostTypes {
		raw, _ := json.Marshal(p)
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_types(id, name, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			p.ID, p.Name, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, t := range st.Tasks {
		if err := upsertTask(ctx, tx, t, nowMs); err != nil {
			return err
		}
	}
	for _, e := range st.Enquiries {
		raw, _ := json.Marshal(e)
		if _, err := tx.ExecContext(ctx, `INSERT INTO enquiries(id, name, status, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			e.ID, e.Name, string(e.Status), string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveTask writes one whole task row. The task must already exist.
func (s Store) SaveTask(ctx context.Context, t model.ContentTask) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE id = ?`, t.ID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: KindTask, ID: strconv.FormatInt(t.ID, 10)}
	}
	return upsertTask(ctx, db, t, time.Now().UTC().UnixMilli())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertTask(ctx context.Context, x execer, t model.ContentTask, nowMs int64) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task %d: %w", t.ID, err)
	}
	claimant := ""
	if t.Claimant != nil {
		claimant = strings.TrimSpace(t.Claimant.ID)
	}
	_, err = x.ExecContext(ctx, `INSERT OR REPLACE INTO tasks(
		id, brand_id, post_type_id, title, due_date, claimant_id, json, updated_at_unixms
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Brand.ID, t.PostType.ID, t.Title, strings.TrimSpace(string(t.Due)), claimant, string(raw), nowMs)
	return err
}

func writeMeta(ctx context.Context, x execer, st *DB) error {
	nextIDs, _ := json.Marshal(st.NextIDs)
	kv := [][2]string{
		{"version", strconv.Itoa(st.Version)},
		{"current_actor_id", strings.TrimSpace(st.CurrentActorID)},
		{"next_ids", string(nextIDs)},
	}
	for _, p := range kv {
		if _, err := x.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: 1, NextIDs: map[string]int64{}}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	out.CurrentActorID = readMeta("current_actor_id")
	if v := readMeta("next_ids"); v != "" && v != "null" {
		if err := json.Unmarshal([]byte(v), &out.NextIDs); err != nil {
			return nil, fmt.Errorf("decode next ids: %w", err)
		}
		if out.NextIDs == nil {
			out.NextIDs = map[string]int64{}
		}
	}

	var err error
	if out.Actors, err = readJSONRows[model.Actor](ctx, db, `SELECT json FROM actors ORDER BY id`); err != nil {
		return nil, err
	}
	if out.Brands, err = readJSONRows[model.Brand](ctx, db, `SELECT json FROM brands ORDER BY id`); err != nil {
		return nil, err
	}
	if out.PostTypes, err = readJSONRows[model.PostType](ctx, db, `SELECT json FROM post_types ORDER BY id`); err != nil {
		return nil, err
	}
	if out.Tasks, err = readJSONRows[model.ContentTask](ctx, db, `SELECT json FROM tasks ORDER BY due_date, id`); err != nil {
		return nil, err
	}
	if out.Enquiries, err = readJSONRows[model.Enquiry](ctx, db, `SELECT json FROM enquiries ORDER BY id`); err != nil {
		return nil, err
	}

	// Ensure nil slices are empty for stable callers.
	if out.Actors == nil {
		out.Actors = []model.Actor{}
	}
	if out.Brands == nil {
		out.Brands = []model.Brand{}
	}
	if out.PostTypes == nil {
		out.PostTypes = []model.PostType{}
	}
	if out.Tasks == nil {
		out.Tasks = []model.ContentTask{}
	}
	if out.Enquiries == nil {
		out.Enquiries = []model.Enquiry{}
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
