package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/normalize"
	"github.com/padraicbc/trackapi/store"
)

// Policy holds the configurable validation decisions the upstream sources
// never agreed on: the legal race-number minimum and the two-digit-year
// century window.
type Policy struct {
	RaceNumberMin    int
	DateFutureWindow int
}

// DefaultPolicy matches the more permissive of the observed validators.
func DefaultPolicy() Policy {
	return Policy{RaceNumberMin: 1, DateFutureWindow: normalize.DefaultFutureWindow}
}

// Ingestor drives daily batches through the store, one transaction per race.
type Ingestor struct {
	db     *bun.DB
	policy Policy
	log    *zap.Logger
}

// New creates an Ingestor. A nil logger falls back to the global zap logger.
func New(db *bun.DB, policy Policy, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.L()
	}
	if policy.RaceNumberMin == 0 {
		policy = DefaultPolicy()
	}
	return &Ingestor{db: db, policy: policy, log: log}
}

// ProcessDailyRaceData runs a whole batch. Races are processed sequentially
// in request order, each inside its own transaction, so one malformed race
// rolls back alone and the rest of the batch still commits. Only a failure
// to obtain a transaction at all aborts the batch.
func (ing *Ingestor) ProcessDailyRaceData(ctx context.Context, req *DailyRaceRequest) *Result {
	stats := Statistics{Errors: []string{}}
	processed := []string{}

	for i := range req.Races {
		rd := &req.Races[i]

		raceID, entryCount, dropped, err := ing.processRace(ctx, rd, req.Source, req.RaceWinners)
		if err != nil {
			stats.RacesSkipped++
			stats.EntriesSkipped += len(rd.Entries)
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", raceRef(rd, raceID), err.Error()))
			ing.log.Warn("race skipped",
				zap.String("race", raceRef(rd, raceID)),
				zap.Error(err))

			if errors.Is(err, ErrBatchFatal) {
				return &Result{
					Success:        false,
					Message:        fmt.Sprintf("batch aborted: %v", err),
					Statistics:     stats,
					ProcessedRaces: processed,
				}
			}
			continue
		}

		stats.RacesProcessed++
		stats.EntriesProcessed += entryCount
		stats.EntriesSkipped += dropped
		processed = append(processed, raceID)
	}

	msg := fmt.Sprintf("processed %d/%d races", stats.RacesProcessed, len(req.Races))
	return &Result{
		Success:        stats.RacesProcessed > 0,
		Message:        msg,
		Statistics:     stats,
		ProcessedRaces: processed,
	}
}

// processRace drives one race through track -> race -> entries -> winner
// inside a single transaction. Returns the race id (when derivable), the
// number of entries stored and the number of entries dropped by filtering.
func (ing *Ingestor) processRace(ctx context.Context, rd *RaceData, source string, winners map[string]WinnerPayload) (raceID string, entryCount, dropped int, err error) {
	raceNumber := normalize.RaceNumber(rd.RaceNumber.String(), ing.policy.RaceNumberMin)
	if raceNumber == nil {
		return "", 0, 0, &ValidationError{Msg: fmt.Sprintf(
			"race number %q out of range [%d,%d]",
			rd.RaceNumber.String(), ing.policy.RaceNumberMin, normalize.RaceNumberMax)}
	}

	isoDate, err := normalize.ConvertDateFormatWindow(rd.Date, ing.policy.DateFutureWindow)
	if err != nil {
		return "", 0, 0, &ValidationError{Msg: err.Error()}
	}

	trackCode := normalize.ExtractTrackCode(rd.Track)
	trackName := normalize.StandardizeTrackName(rd.Track)
	raceID, err = normalize.GenerateRaceID(trackCode, isoDate, *raceNumber)
	if err != nil {
		return "", 0, 0, &ValidationError{Msg: err.Error()}
	}

	tx, err := ing.db.BeginTx(ctx, nil)
	if err != nil {
		return raceID, 0, 0, fmt.Errorf("%w: begin transaction: %v", ErrBatchFatal, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	track, err := store.GetOrCreateTrack(ctx, tx, trackCode, trackName)
	if err != nil {
		return raceID, 0, 0, err
	}

	race := &models.Race{
		RaceID:     raceID,
		TrackID:    track.TrackID,
		Date:       isoDate,
		RaceNumber: *raceNumber,
		SourceFile: source,
	}
	if pt := normalize.CleanString(rd.PostTime); pt != nil && *pt != "" {
		race.PostTime = pt
	}
	if err := store.UpsertRace(ctx, tx, race); err != nil {
		return raceID, 0, 0, err
	}

	var entries []*models.RaceEntry
	for _, e := range rd.Entries {
		if !ValidEntry(e) {
			dropped++
			continue
		}
		entries = append(entries, NormalizeEntry(raceID, e))
	}
	if len(entries) == 0 {
		return raceID, 0, dropped, &ValidationError{Msg: "no valid entries"}
	}

	if err := store.BatchUpsertEntries(ctx, tx, entries); err != nil {
		return raceID, 0, dropped, err
	}

	// Winner failure is non-fatal: entries are valuable even without a
	// confirmed winner, so the race still commits.
	ing.storeWinner(ctx, tx, rd, raceID, trackName, *raceNumber, entries, winners)

	if err := tx.Commit(); err != nil {
		return raceID, 0, dropped, fmt.Errorf("commit %s: %w", raceID, err)
	}
	committed = true

	return raceID, len(entries), dropped, nil
}

func (ing *Ingestor) storeWinner(ctx context.Context, tx bun.Tx, rd *RaceData, raceID, trackName string, raceNumber int, entries []*models.RaceEntry, winners map[string]WinnerPayload) {
	var payload *WinnerPayload
	if winners != nil {
		if p, ok := winners[winnerKey(trackName, rd.Date, raceNumber)]; ok {
			payload = &p
		}
	}

	winner, err := ExtractWinner(entries, payload)
	if err != nil {
		ing.log.Info("no winner resolved", zap.String("race_id", raceID), zap.Error(err))
		return
	}
	if err := ValidateWinner(winner); err != nil {
		ing.log.Warn("winner rejected", zap.String("race_id", raceID), zap.Error(err))
		return
	}

	// A failed statement would poison the enclosing transaction, so the
	// upsert runs under a savepoint: on error only the winner write unwinds
	// and the race itself still commits.
	if _, err := tx.ExecContext(ctx, "SAVEPOINT race_winner"); err != nil {
		ing.log.Warn("winner savepoint failed", zap.String("race_id", raceID), zap.Error(err))
		return
	}
	if err := store.UpsertWinner(ctx, tx, winner); err != nil {
		_, _ = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT race_winner")
		ing.log.Warn("winner upsert failed", zap.String("race_id", raceID), zap.Error(err))
		return
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT race_winner"); err != nil {
		ing.log.Warn("winner savepoint release failed", zap.String("race_id", raceID), zap.Error(err))
		return
	}

	ing.log.Debug("winner stored",
		zap.String("race_id", raceID),
		zap.Int("horse", winner.WinningHorseNumber),
		zap.String("method", winner.ExtractionMethod),
		zap.String("confidence", winner.ExtractionConfidence))
}

// raceRef labels a race in the error list: the derived id when available,
// otherwise enough of the input to find the row in the source sheet.
func raceRef(rd *RaceData, raceID string) string {
	if raceID != "" {
		return raceID
	}
	if rd.RaceID != "" {
		return rd.RaceID
	}
	return fmt.Sprintf("%s %s race %s", rd.Track, rd.Date, rd.RaceNumber.String())
}
