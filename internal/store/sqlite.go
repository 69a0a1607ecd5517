package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/starfield-labs/exonamd/internal/catalog"
	"github.com/starfield-labs/exonamd/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	stage         TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	rowupdate_max TEXT NOT NULL DEFAULT '',
	data          BLOB NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_stage ON snapshots(stage, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, stage string, planets []model.Planet) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := catalog.WriteCSV(&buf, planets); err != nil {
		return nil, eris.Wrap(err, "sqlite: encode snapshot")
	}

	snap := &Snapshot{
		ID:           uuid.New().String(),
		Stage:        stage,
		RowCount:     len(planets),
		RowUpdateMax: rowUpdateMax(planets),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, stage, row_count, rowupdate_max, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Stage, snap.RowCount, snap.RowUpdateMax, buf.Bytes(), snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert snapshot %s", stage)
	}
	return snap, nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, stage string) ([]model.Planet, *Snapshot, error) {
	var snap Snapshot
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, stage, row_count, rowupdate_max, data, created_at
		 FROM snapshots WHERE stage = ? ORDER BY created_at DESC LIMIT 1`,
		stage,
	).Scan(&snap.ID, &snap.Stage, &snap.RowCount, &snap.RowUpdateMax, &data, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrapf(err, "sqlite: load snapshot %s", stage)
	}

	planets, err := catalog.ReadCSV(strings.NewReader(string(data)))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "sqlite: decode snapshot %s", snap.ID)
	}
	return planets, &snap, nil
}

func (s *SQLiteStore) LatestRowUpdate(ctx context.Context) (string, error) {
	var max string
	err := s.db.QueryRowContext(ctx,
		`SELECT rowupdate_max FROM snapshots WHERE stage = ? ORDER BY created_at DESC LIMIT 1`,
		StageCurated,
	).Scan(&max)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "sqlite: latest rowupdate")
	}
	return max, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stage, row_count, rowupdate_max, created_at
		 FROM snapshots ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Stage, &snap.RowCount, &snap.RowUpdateMax, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}
