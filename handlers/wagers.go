package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/trackapi/xpressbet"
)

type wagerRequest struct {
	Wagers []xpressbet.Wager `json:"wagers"`
}

// SubmitWagers forwards a wager batch to the XpressBet gateway.
func (h *Handler) SubmitWagers(c echo.Context) error {
	if h.wagers == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "wager gateway not configured")
	}

	var req wagerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := xpressbet.Validate(req.Wagers); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.wagers.Submit(c.Request().Context(), req.Wagers)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, receipt)
}
