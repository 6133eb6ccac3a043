package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/trackapi/report"
)

// DailyReport renders the plain-text ingestion summary for a date.
func (h *Handler) DailyReport(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing date param")
	}

	body, err := report.BuildDailySummary(c.Request().Context(), h.db, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.String(http.StatusOK, body)
}
