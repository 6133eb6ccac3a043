package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/trackapi/models"
	"github.com/padraicbc/trackapi/store"
)

// WinnerByRace returns the winner row for one race.
func (h *Handler) WinnerByRace(c echo.Context) error {
	raceID := c.Param("raceID")

	winner, err := store.WinnerByRace(c.Request().Context(), h.db, raceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if winner == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no winner for race")
	}
	return c.JSON(http.StatusOK, winner)
}

// Winners returns winners filtered by track code or by date / date range.
func (h *Handler) Winners(c echo.Context) error {
	ctx := c.Request().Context()

	if track := c.QueryParam("track"); track != "" {
		winners, err := store.WinnersByTrack(ctx, h.db, track)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, emptyIfNil(winners))
	}

	from, to := c.QueryParam("from"), c.QueryParam("to")
	if date := c.QueryParam("date"); date != "" {
		from, to = date, date
	}
	if from == "" || to == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing track, date or from/to params")
	}

	winners, err := store.WinnersByDateRange(ctx, h.db, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, emptyIfNil(winners))
}

func emptyIfNil(winners []models.RaceWinner) []models.RaceWinner {
	if winners == nil {
		return []models.RaceWinner{}
	}
	return winners
}
