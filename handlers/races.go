package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/store"
)

type raceJSON struct {
	RaceID     string  `json:"raceID"`
	TrackCode  string  `json:"trackCode"`
	TrackName  string  `json:"trackName"`
	Date       string  `json:"date"`
	RaceNumber int     `json:"raceNumber"`
	PostTime   *string `json:"postTime,omitempty"`
	SourceFile string  `json:"sourceFile"`
}

type raceDetailJSON struct {
	raceJSON
	Entries []models.RaceEntry `json:"entries"`
	Winner  *models.RaceWinner `json:"winner,omitempty"`
}

// Races returns races for a single date or a from/to range.
func (h *Handler) Races(c echo.Context) error {
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if date := c.QueryParam("date"); date != "" {
		from, to = date, date
	}
	if from == "" || to == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing date or from/to params")
	}

	races, err := store.RacesByDateRange(c.Request().Context(), h.db, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]raceJSON, len(races))
	for i, r := range races {
		result[i] = toRaceJSON(r)
	}
	return c.JSON(http.StatusOK, result)
}

// RaceByID returns one race with its entries and winner, when present.
func (h *Handler) RaceByID(c echo.Context) error {
	raceID := c.Param("id")
	ctx := c.Request().Context()

	race, err := store.FindRaceByID(ctx, h.db, raceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if race == nil {
		return echo.NewHTTPError(http.StatusNotFound, "race not found")
	}

	entries, err := store.EntriesByRace(ctx, h.db, raceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	winner, err := store.WinnerByRace(ctx, h.db, raceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail := raceDetailJSON{raceJSON: toRaceJSON(*race), Entries: entries, Winner: winner}
	if detail.Entries == nil {
		detail.Entries = []models.RaceEntry{}
	}
	return c.JSON(http.StatusOK, detail)
}

// DailyEntries returns every stored entry for races on one calendar date.
func (h *Handler) DailyEntries(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing date param")
	}

	entries, err := store.EntriesByDate(c.Request().Context(), h.db, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []models.RaceEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Tracks returns every known track.
func (h *Handler) Tracks(c echo.Context) error {
	tracks, err := store.AllTracks(c.Request().Context(), h.db)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tracks)
}

func toRaceJSON(r models.Race) raceJSON {
	rj := raceJSON{
		RaceID:     r.RaceID,
		Date:       r.Date,
		RaceNumber: r.RaceNumber,
		PostTime:   r.PostTime,
		SourceFile: r.SourceFile,
	}
	if r.Track != nil {
		rj.TrackCode = r.Track.Code
		rj.TrackName = r.Track.Name
	}
	return rj
}
