package report

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	bundb "github.com/padraicbc/trackapi/db"
	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/store"
)

func testDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, bundb.CreateTables(context.Background(), db))
	return db
}

func TestBuildDailySummary(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	track, err := store.GetOrCreateTrack(ctx, db, "AQU", "AQUEDUCT")
	require.NoError(t, err)

	require.NoError(t, store.UpsertRace(ctx, db, &models.Race{
		RaceID:     "AQU_20250427_03",
		TrackID:    track.TrackID,
		Date:       "2025-04-27",
		RaceNumber: 3,
		SourceFile: "daily-04-27-25.json",
	}))
	require.NoError(t, store.BatchUpsertEntries(ctx, db, []*models.RaceEntry{
		{RaceID: "AQU_20250427_03", HorseNumber: 1},
		{RaceID: "AQU_20250427_03", HorseNumber: 2},
	}))

	payout := 298.0
	require.NoError(t, store.UpsertWinner(ctx, db, &models.RaceWinner{
		RaceID:               "AQU_20250427_03",
		WinningHorseNumber:   2,
		WinningPayout2Dollar: &payout,
		ExtractionMethod:     models.MethodSummary,
		ExtractionConfidence: models.ConfidenceMedium,
	}))

	body, err := BuildDailySummary(ctx, db, "2025-04-27")
	require.NoError(t, err)

	require.Contains(t, body, "Daily race data summary for 2025-04-27")
	require.Contains(t, body, "Races ingested:   1")
	require.Contains(t, body, "Entries ingested: 2")
	require.Contains(t, body, "Winners resolved: 1")
	require.Contains(t, body, "AQU_20250427_03: horse 2 (summary/medium) $298.00")
}

func TestBuildDailySummaryEmptyDay(t *testing.T) {
	db := testDB(t)

	body, err := BuildDailySummary(context.Background(), db, "2025-01-01")
	require.NoError(t, err)

	require.Contains(t, body, "Races ingested:   0")
	require.False(t, strings.Contains(body, "Winners:"))
}
