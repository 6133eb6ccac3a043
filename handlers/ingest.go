package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/trackapi/ingest"
)

// IngestDailyRaceData accepts a daily batch of race data and runs it through
// the ingestion pipeline. 200 when at least one race committed, 400 when the
// request is malformed or nothing committed, 500 on unexpected failure.
func (h *Handler) IngestDailyRaceData(c echo.Context) error {
	var req ingest.DailyRaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := ingest.ValidateRequest(&req); err != nil {
		var ve *ingest.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	res := h.ingestor.ProcessDailyRaceData(c.Request().Context(), &req)

	zap.L().Info("daily ingestion",
		zap.String("source", req.Source),
		zap.Int("processed", res.Statistics.RacesProcessed),
		zap.Int("skipped", res.Statistics.RacesSkipped),
		zap.Int("entries", res.Statistics.EntriesProcessed))

	// The caller always gets the full statistics so partial success is
	// distinguishable from total failure.
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	return c.JSON(status, res)
}
