package ingest

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	bundb "github.com/padraicbc/trackapi/db"
	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/store"
)

func testIngestor(t *testing.T) (*Ingestor, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, bundb.CreateTables(context.Background(), db))

	return New(db, DefaultPolicy(), zap.NewNop()), db
}

func aqueductBatch() *DailyRaceRequest {
	return &DailyRaceRequest{
		Source: "daily-sheet.xlsx",
		Races: []RaceData{{
			Track:      "AQUEDUCT",
			Date:       "04-27-25",
			RaceNumber: "3",
			Entries: []EntryData{
				{HorseNumber: "1", WillPay2: "$10.00"},
				{HorseNumber: "2", WillPay2: "$298.00"},
				{HorseNumber: "3", WillPay2: "$22.40"},
			},
		}},
	}
}

// The concrete end-to-end scenario: one race, three entries, no winners
// payload. The winner falls out of the summary heuristic.
func TestProcessDailyRaceData(t *testing.T) {
	ing, db := testIngestor(t)
	ctx := context.Background()

	res := ing.ProcessDailyRaceData(ctx, aqueductBatch())
	require.True(t, res.Success)
	require.Equal(t, 1, res.Statistics.RacesProcessed)
	require.Equal(t, 3, res.Statistics.EntriesProcessed)
	require.Equal(t, 0, res.Statistics.RacesSkipped)
	require.Empty(t, res.Statistics.Errors)
	require.Equal(t, []string{"AQU_20250427_03"}, res.ProcessedRaces)

	track, err := store.FindTrackByCode(ctx, db, "AQU")
	require.NoError(t, err)
	require.NotNil(t, track)
	require.Equal(t, "AQUEDUCT", track.Name)

	race, err := store.FindRaceByID(ctx, db, "AQU_20250427_03")
	require.NoError(t, err)
	require.NotNil(t, race)
	require.Equal(t, "2025-04-27", race.Date)
	require.Equal(t, "daily-sheet.xlsx", race.SourceFile)

	winner, err := store.WinnerByRace(ctx, db, "AQU_20250427_03")
	require.NoError(t, err)
	require.NotNil(t, winner)
	require.Equal(t, 2, winner.WinningHorseNumber)
	require.Equal(t, models.MethodSummary, winner.ExtractionMethod)
	require.Equal(t, models.ConfidenceMedium, winner.ExtractionConfidence)
}

// Re-ingesting an identical batch must land on the same rows, not duplicate
// them.
func TestProcessDailyRaceDataIdempotent(t *testing.T) {
	ing, db := testIngestor(t)
	ctx := context.Background()

	first := ing.ProcessDailyRaceData(ctx, aqueductBatch())
	require.True(t, first.Success)
	second := ing.ProcessDailyRaceData(ctx, aqueductBatch())
	require.True(t, second.Success)

	races, err := db.NewSelect().Model((*models.Race)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, races)

	entries, err := db.NewSelect().Model((*models.RaceEntry)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, entries)

	winners, err := db.NewSelect().Model((*models.RaceWinner)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, winners)

	tracks, err := db.NewSelect().Model((*models.Track)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tracks)
}

// One malformed race in a batch rolls back alone; the others commit and the
// statistics attribute the failure to that race only.
func TestProcessDailyRaceDataIsolation(t *testing.T) {
	ing, db := testIngestor(t)
	ctx := context.Background()

	req := &DailyRaceRequest{
		Source: "daily-sheet.xlsx",
		Races: []RaceData{
			{
				Track: "AQUEDUCT", Date: "04-27-25", RaceNumber: "3",
				Entries: []EntryData{{HorseNumber: "1", WillPay2: "$10.00"}},
			},
			{
				Track: "AQUEDUCT", Date: "04-27-25", RaceNumber: "99",
				Entries: []EntryData{{HorseNumber: "1", WillPay2: "$10.00"}, {HorseNumber: "2", WillPay2: "$5.00"}},
			},
			{
				Track: "SARATOGA", Date: "04-27-25", RaceNumber: "5",
				Entries: []EntryData{{HorseNumber: "4", WillPay2: "$7.20"}, {HorseNumber: "5", WillPay2: "$3.60"}},
			},
		},
	}

	res := ing.ProcessDailyRaceData(ctx, req)
	require.True(t, res.Success)
	require.Equal(t, 2, res.Statistics.RacesProcessed)
	require.Equal(t, 3, res.Statistics.EntriesProcessed)
	require.Equal(t, 1, res.Statistics.RacesSkipped)
	require.Equal(t, 2, res.Statistics.EntriesSkipped)
	require.Len(t, res.Statistics.Errors, 1)
	require.Contains(t, res.Statistics.Errors[0], "99")
	require.Contains(t, res.Statistics.Errors[0], "out of range")
	require.Equal(t, []string{"AQU_20250427_03", "SAR_20250427_05"}, res.ProcessedRaces)

	// The malformed race left nothing behind.
	races, err := db.NewSelect().Model((*models.Race)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, races)
}

// A race whose entries are all filtered out is rolled back, including its
// already-upserted race row.
func TestProcessDailyRaceDataNoValidEntriesRollsBack(t *testing.T) {
	ing, db := testIngestor(t)
	ctx := context.Background()

	req := &DailyRaceRequest{
		Source: "daily-sheet.xlsx",
		Races: []RaceData{{
			Track: "AQUEDUCT", Date: "04-27-25", RaceNumber: "3",
			Entries: []EntryData{
				{HorseNumber: "1"},                       // no signals
				{HorseNumber: "99", WillPay2: "$10.00"},  // out of range
			},
		}},
	}

	res := ing.ProcessDailyRaceData(ctx, req)
	require.False(t, res.Success)
	require.Equal(t, 1, res.Statistics.RacesSkipped)
	require.Len(t, res.Statistics.Errors, 1)
	require.Contains(t, res.Statistics.Errors[0], "no valid entries")

	race, err := store.FindRaceByID(ctx, db, "AQU_20250427_03")
	require.NoError(t, err)
	require.Nil(t, race)
}

// The authoritative race_winners payload outranks the payout heuristic.
func TestProcessDailyRaceDataHeaderWinner(t *testing.T) {
	ing, db := testIngestor(t)
	ctx := context.Background()

	req := aqueductBatch()
	req.RaceWinners = map[string]WinnerPayload{
		"AQUEDUCT 04-27-25 Race 3": {
			WinningHorseNumber:   "1",
			WinningPayout2Dollar: "$8.40",
		},
	}

	res := ing.ProcessDailyRaceData(ctx, req)
	require.True(t, res.Success)

	winner, err := store.WinnerByRace(ctx, db, "AQU_20250427_03")
	require.NoError(t, err)
	require.NotNil(t, winner)
	require.Equal(t, 1, winner.WinningHorseNumber)
	require.Equal(t, models.MethodHeader, winner.ExtractionMethod)
	require.Equal(t, models.ConfidenceHigh, winner.ExtractionConfidence)
	require.NotNil(t, winner.WinningPayout2Dollar)
	require.Equal(t, 8.4, *winner.WinningPayout2Dollar)
}

// The stricter validator variant rejects race numbers below 3.
func TestProcessDailyRaceDataRaceNumberPolicy(t *testing.T) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, bundb.CreateTables(context.Background(), db))

	ing := New(db, Policy{RaceNumberMin: 3, DateFutureWindow: 10}, zap.NewNop())

	req := aqueductBatch()
	req.Races[0].RaceNumber = "2"

	res := ing.ProcessDailyRaceData(context.Background(), req)
	require.False(t, res.Success)
	require.Equal(t, 1, res.Statistics.RacesSkipped)
	require.True(t, strings.Contains(res.Statistics.Errors[0], "[3,15]"))
}
