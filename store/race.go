package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/models"
)

// FindRaceByID returns one race by its derived key, (nil, nil) when absent.
func FindRaceByID(ctx context.Context, db bun.IDB, raceID string) (*models.Race, error) {
	race := &models.Race{}
	err := db.NewSelect().Model(race).Where("rc.race_id = ?", raceID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find race %s: %w", raceID, err)
	}
	return race, nil
}

// UpsertRace inserts or overwrites a race by its natural key. Re-ingesting
// the same track/date/number always lands on the same row.
func UpsertRace(ctx context.Context, db bun.IDB, race *models.Race) error {
	_, err := db.NewInsert().Model(race).
		On("CONFLICT (race_id) DO UPDATE").
		Set("track_id = EXCLUDED.track_id").
		Set("date = EXCLUDED.date").
		Set("race_number = EXCLUDED.race_number").
		Set("post_time = EXCLUDED.post_time").
		Set("source_file = EXCLUDED.source_file").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert race %s: %w", race.RaceID, err)
	}
	return nil
}

// RacesByDateRange returns races within [from, to] inclusive, with the track
// relation loaded, ordered by date then race number.
func RacesByDateRange(ctx context.Context, db bun.IDB, from, to string) ([]models.Race, error) {
	var races []models.Race
	err := db.NewSelect().Model(&races).
		Relation("Track").
		Where("rc.date >= ?", from).
		Where("rc.date <= ?", to).
		OrderExpr("rc.date ASC, rc.race_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("races %s..%s: %w", from, to, err)
	}
	return races, nil
}
