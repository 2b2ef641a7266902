package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stt-cli/internal/model"

	_ "modernc.org/sqlite"
)

// ExportSQLite writes items into the "items" table of the SQLite database at
// path, replacing its previous contents. The activities file stays the source
// of truth; the export only exists for ad-hoc SQL reporting.
func ExportSQLite(ctx context.Context, path string, items []model.Item) (int, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items(seq, activity, start_unix, end_unix, start_local, end_local, duration_s) VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, it := range items {
		var (
			endUnix  sql.NullInt64
			endLocal sql.NullString
			dur      sql.NullInt64
		)
		if it.End != nil {
			endUnix = sql.NullInt64{Int64: it.End.Unix(), Valid: true}
			endLocal = sql.NullString{String: it.End.Format(TimeLayout), Valid: true}
			dur = sql.NullInt64{Int64: int64(it.End.Sub(it.Start).Seconds()), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i+1, it.Activity, it.Start.Unix(), endUnix, it.Start.Format(TimeLayout), endLocal, dur); err != nil {
			return 0, fmt.Errorf("insert item %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

// ReadSQLite reads items back from a database written by ExportSQLite.
func ReadSQLite(ctx context.Context, path string) ([]model.Item, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT activity, start_unix, end_unix FROM items ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var (
			activity string
			start    int64
			end      sql.NullInt64
		)
		if err := rows.Scan(&activity, &start, &end); err != nil {
			return nil, err
		}
		var endPtr *time.Time
		if end.Valid {
			e := time.Unix(end.Int64, 0)
			endPtr = &e
		}
		it, err := model.New(activity, time.Unix(start, 0), endPtr)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Item{}
	}
	return out, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite export: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			seq INTEGER PRIMARY KEY,
			activity TEXT NOT NULL,
			start_unix INTEGER NOT NULL,
			end_unix INTEGER,
			start_local TEXT NOT NULL,
			end_local TEXT,
			duration_s INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_start ON items(start_unix);`,
		`CREATE INDEX IF NOT EXISTS idx_items_activity ON items(activity);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
