package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/starfield-labs/exonamd/internal/catalog"
	"github.com/starfield-labs/exonamd/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	stage         TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	rowupdate_max TEXT NOT NULL DEFAULT '',
	data          BYTEA NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_stage ON snapshots(stage, created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, stage string, planets []model.Planet) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := catalog.WriteCSV(&buf, planets); err != nil {
		return nil, eris.Wrap(err, "postgres: encode snapshot")
	}

	snap := &Snapshot{
		ID:           uuid.New().String(),
		Stage:        stage,
		RowCount:     len(planets),
		RowUpdateMax: rowUpdateMax(planets),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, stage, row_count, rowupdate_max, data, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.Stage, snap.RowCount, snap.RowUpdateMax, buf.Bytes(), snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert snapshot %s", stage)
	}
	return snap, nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context, stage string) ([]model.Planet, *Snapshot, error) {
	var snap Snapshot
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, stage, row_count, rowupdate_max, data, created_at
		 FROM snapshots WHERE stage = $1 ORDER BY created_at DESC LIMIT 1`,
		stage,
	).Scan(&snap.ID, &snap.Stage, &snap.RowCount, &snap.RowUpdateMax, &data, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: load snapshot %s", stage)
	}

	planets, err := catalog.ReadCSV(strings.NewReader(string(data)))
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: decode snapshot %s", snap.ID)
	}
	return planets, &snap, nil
}

func (s *PostgresStore) LatestRowUpdate(ctx context.Context) (string, error) {
	var max string
	err := s.pool.QueryRow(ctx,
		`SELECT rowupdate_max FROM snapshots WHERE stage = $1 ORDER BY created_at DESC LIMIT 1`,
		StageCurated,
	).Scan(&max)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: latest rowupdate")
	}
	return max, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, stage, row_count, rowupdate_max, created_at
		 FROM snapshots ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Stage, &snap.RowCount, &snap.RowUpdateMax, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: iterate snapshots")
}
