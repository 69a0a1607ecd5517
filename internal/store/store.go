// Package store persists per-stage catalog snapshots so pipeline stages can
// resume from the previous run and the serve command can read results without
// recomputing.
package store

import (
	"context"
	"time"

	"github.com/starfield-labs/exonamd/internal/model"
)

// Stage names for stored snapshots.
const (
	StageCurated = "curated"
	StageInterp  = "interp"
	StageNAMD    = "namd"
)

// Snapshot describes one stored catalog state.
type Snapshot struct {
	ID           string    `json:"id"`
	Stage        string    `json:"stage"`
	RowCount     int       `json:"row_count"`
	RowUpdateMax string    `json:"rowupdate_max"` // high-water mark for incremental refresh
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the snapshot persistence interface.
type Store interface {
	// SaveSnapshot stores the table under the given stage.
	SaveSnapshot(ctx context.Context, stage string, planets []model.Planet) (*Snapshot, error)
	// LoadSnapshot returns the most recent snapshot for a stage. A stage
	// with no snapshots returns (nil, nil, nil).
	LoadSnapshot(ctx context.Context, stage string) ([]model.Planet, *Snapshot, error)
	// LatestRowUpdate returns the rowupdate high-water mark of the most
	// recent curated snapshot, or "" when none exists.
	LatestRowUpdate(ctx context.Context) (string, error)
	// ListSnapshots returns snapshot metadata, newest first.
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)

	Migrate(ctx context.Context) error
	Close() error
}

// rowUpdateMax computes the high-water mark across a table. ISO dates order
// lexicographically.
func rowUpdateMax(planets []model.Planet) string {
	max := ""
	for i := range planets {
		if planets[i].RowUpdate > max {
			max = planets[i].RowUpdate
		}
	}
	return max
}
