package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	bundb "github.com/padraicbc/trackapi/db"
	"github.com/padraicbc/trackapi/ingest"
)

func testHandler(t *testing.T) (*Handler, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, bundb.CreateTables(context.Background(), db))

	ingestor := ingest.New(db, ingest.DefaultPolicy(), zap.NewNop())
	return New(db, ingestor, nil, []byte("test-secret")), db
}

const dailyBody = `{
	"source": "daily-04-27-25.json",
	"races": [
		{
			"track": "AQU",
			"date": "04-27-25",
			"race_number": 3,
			"post_time": "4:15 PM",
			"entries": [
				{"horse_number": 1, "will_pay_2": "$10.00", "win_pool": "1200"},
				{"horse_number": 2, "will_pay_2": "$298.00", "win_pool": "800"},
				{"horse_number": "3", "will_pay_2": "$22.40", "win_pool": "950"}
			]
		}
	]
}`

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func getPath(t *testing.T, h echo.HandlerFunc, target string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestIngestDailyRaceData(t *testing.T) {
	h, _ := testHandler(t)

	rec := postJSON(t, h.IngestDailyRaceData, "/rp/races/daily", dailyBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var res ingest.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, 1, res.Statistics.RacesProcessed)
	require.Equal(t, 3, res.Statistics.EntriesProcessed)
	require.Equal(t, []string{"AQU_20250427_03"}, res.ProcessedRaces)
}

func TestIngestDailyRaceDataRejectsEmptyBatch(t *testing.T) {
	h, _ := testHandler(t)

	rec := postJSON(t, h.IngestDailyRaceData, "/rp/races/daily", `{"source": "x.json", "races": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRaceByID(t *testing.T) {
	h, _ := testHandler(t)
	require.Equal(t, http.StatusOK, postJSON(t, h.IngestDailyRaceData, "/rp/races/daily", dailyBody).Code)

	rec := getPath(t, h.RaceByID, "/rp/races/AQU_20250427_03", map[string]string{"id": "AQU_20250427_03"})
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		RaceID  string `json:"raceID"`
		Entries []struct {
			HorseNumber int `json:"horseNumber"`
		} `json:"entries"`
		Winner *struct {
			WinningHorseNumber int    `json:"winningHorseNumber"`
			ExtractionMethod   string `json:"extractionMethod"`
		} `json:"winner"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, "AQU_20250427_03", detail.RaceID)
	require.Len(t, detail.Entries, 3)
	require.NotNil(t, detail.Winner)
	require.Equal(t, 2, detail.Winner.WinningHorseNumber)

	missing := getPath(t, h.RaceByID, "/rp/races/XXX", map[string]string{"id": "XXX"})
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestWinnersByDate(t *testing.T) {
	h, _ := testHandler(t)
	require.Equal(t, http.StatusOK, postJSON(t, h.IngestDailyRaceData, "/rp/races/daily", dailyBody).Code)

	rec := getPath(t, h.Winners, "/rp/winners?date=2025-04-27", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var winners []struct {
		RaceID             string `json:"raceID"`
		WinningHorseNumber int    `json:"winningHorseNumber"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &winners))
	require.Len(t, winners, 1)
	require.Equal(t, "AQU_20250427_03", winners[0].RaceID)
	require.Equal(t, 2, winners[0].WinningHorseNumber)
}

func TestSubmitWagersUnconfigured(t *testing.T) {
	h, _ := testHandler(t)

	rec := postJSON(t, h.SubmitWagers, "/rp/wagers/submit", `{"wagers": []}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
