package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/trackapi/models"
)

// ExistingHorseNumbers returns the horse numbers already stored for a race.
func ExistingHorseNumbers(ctx context.Context, db bun.IDB, raceID string) (map[int]bool, error) {
	var numbers []int
	err := db.NewSelect().Model((*models.RaceEntry)(nil)).
		Column("horse_number").
		Where("race_id = ?", raceID).
		Scan(ctx, &numbers)
	if err != nil {
		return nil, fmt.Errorf("existing entries for %s: %w", raceID, err)
	}

	existing := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		existing[n] = true
	}
	return existing, nil
}

// BatchUpsertEntries stores a batch of entries for one race. The batch is
// partitioned by existence: new rows go in a single multi-row insert (the
// common first-ingestion-of-the-day case), already-present rows are updated
// individually.
func BatchUpsertEntries(ctx context.Context, db bun.IDB, entries []*models.RaceEntry) error {
	if len(entries) == 0 {
		return nil
	}

	existing, err := ExistingHorseNumbers(ctx, db, entries[0].RaceID)
	if err != nil {
		return err
	}

	var inserts []*models.RaceEntry
	var updates []*models.RaceEntry
	for _, e := range entries {
		if existing[e.HorseNumber] {
			updates = append(updates, e)
		} else {
			inserts = append(inserts, e)
		}
	}

	if len(inserts) > 0 {
		if _, err := db.NewInsert().Model(&inserts).Exec(ctx); err != nil {
			return fmt.Errorf("insert %d entries for %s: %w", len(inserts), entries[0].RaceID, err)
		}
	}

	for _, e := range updates {
		e.UpdatedAt = time.Now()
		_, err := db.NewUpdate().Model(e).
			Column("double_val", "constant", "p3", "correct_p3", "ml", "live_odds",
				"sharp_percent", "action", "double_delta", "p3_delta", "x_figure",
				"will_pay_2", "will_pay", "will_pay_1_p3", "win_pool", "veto_rating",
				"raw_data", "updated_at").
			Where("race_id = ?", e.RaceID).
			Where("horse_number = ?", e.HorseNumber).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update entry %s/%d: %w", e.RaceID, e.HorseNumber, err)
		}
	}

	return nil
}

// EntriesByRace returns the stored entries for a race ordered by horse number.
func EntriesByRace(ctx context.Context, db bun.IDB, raceID string) ([]models.RaceEntry, error) {
	var entries []models.RaceEntry
	err := db.NewSelect().Model(&entries).
		Where("race_id = ?", raceID).
		OrderExpr("horse_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("entries for %s: %w", raceID, err)
	}
	return entries, nil
}

// EntriesByDate returns every entry for races on a calendar date.
func EntriesByDate(ctx context.Context, db bun.IDB, date string) ([]models.RaceEntry, error) {
	var entries []models.RaceEntry
	err := db.NewSelect().Model(&entries).
		Join("INNER JOIN races rc ON rc.race_id = re.race_id").
		Where("rc.date = ?", date).
		OrderExpr("re.race_id ASC, re.horse_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("entries for date %s: %w", date, err)
	}
	return entries, nil
}
