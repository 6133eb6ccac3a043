package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/models"
)

// WinnerByRace returns the winner row for a race, (nil, nil) when absent.
func WinnerByRace(ctx context.Context, db bun.IDB, raceID string) (*models.RaceWinner, error) {
	winner := &models.RaceWinner{}
	err := db.NewSelect().Model(winner).Where("rw.race_id = ?", raceID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("winner for %s: %w", raceID, err)
	}
	return winner, nil
}

// UpsertWinner stores the winner for a race. The unique constraint on race_id
// plus insert-on-conflict keeps exactly one winner per race; a second payload
// for the same race overwrites the first.
func UpsertWinner(ctx context.Context, db bun.IDB, winner *models.RaceWinner) error {
	_, err := db.NewInsert().Model(winner).
		On("CONFLICT (race_id) DO UPDATE").
		Set("winning_horse_number = EXCLUDED.winning_horse_number").
		Set("winning_payout_2_dollar = EXCLUDED.winning_payout_2_dollar").
		Set("winning_payout_1_p3 = EXCLUDED.winning_payout_1_p3").
		Set("extraction_method = EXCLUDED.extraction_method").
		Set("extraction_confidence = EXCLUDED.extraction_confidence").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert winner %s: %w", winner.RaceID, err)
	}
	return nil
}

// WinnersByDateRange returns winners for races within [from, to] inclusive.
func WinnersByDateRange(ctx context.Context, db bun.IDB, from, to string) ([]models.RaceWinner, error) {
	var winners []models.RaceWinner
	err := db.NewSelect().Model(&winners).
		Join("INNER JOIN races rc ON rc.race_id = rw.race_id").
		Where("rc.date >= ?", from).
		Where("rc.date <= ?", to).
		OrderExpr("rw.race_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("winners %s..%s: %w", from, to, err)
	}
	return winners, nil
}

// WinnersByTrack returns winners for a track code, most recent race first.
func WinnersByTrack(ctx context.Context, db bun.IDB, trackCode string) ([]models.RaceWinner, error) {
	var winners []models.RaceWinner
	err := db.NewSelect().Model(&winners).
		Join("INNER JOIN races rc ON rc.race_id = rw.race_id").
		Join("INNER JOIN tracks t ON t.track_id = rc.track_id").
		Where("t.code = ?", trackCode).
		OrderExpr("rc.date DESC, rc.race_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("winners for track %s: %w", trackCode, err)
	}
	return winners, nil
}
