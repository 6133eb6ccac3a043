// Package store contains the persistence operations for tracks, races,
// entries and winners. Every function takes a bun.IDB, which is satisfied by
// both *bun.DB (pooled connection) and bun.Tx (caller-supplied transaction),
// so the ingestion orchestrator can compose several calls inside one atomic
// unit.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/models"
)

// FindTrackByCode looks a track up by its short code. Returns (nil, nil) when
// no row exists.
func FindTrackByCode(ctx context.Context, db bun.IDB, code string) (*models.Track, error) {
	track := &models.Track{}
	err := db.NewSelect().Model(track).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find track %s: %w", code, err)
	}
	return track, nil
}

// CreateTrack inserts a new track row.
func CreateTrack(ctx context.Context, db bun.IDB, track *models.Track) error {
	if _, err := db.NewInsert().Model(track).Exec(ctx); err != nil {
		return fmt.Errorf("create track %s: %w", track.Code, err)
	}
	return nil
}

// GetOrCreateTrack resolves a track by code, creating it lazily on first use.
// The create is an insert-on-conflict-do-nothing followed by a reselect so
// two concurrent ingestions of a brand-new code cannot duplicate it.
func GetOrCreateTrack(ctx context.Context, db bun.IDB, code, name string) (*models.Track, error) {
	track := &models.Track{Code: code, Name: name}
	_, err := db.NewInsert().Model(track).
		On("CONFLICT (code) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("get or create track %s: %w", code, err)
	}

	found, err := FindTrackByCode(ctx, db, code)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("track %s missing after insert", code)
	}
	return found, nil
}

// AllTracks returns every track ordered by code.
func AllTracks(ctx context.Context, db bun.IDB) ([]models.Track, error) {
	var tracks []models.Track
	if err := db.NewSelect().Model(&tracks).OrderExpr("code ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}
