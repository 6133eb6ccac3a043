package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyOrJWT authorizes a request either by the configured X-Api-Key header
// (used by the ingestion client) or by a valid JWT (used by the UI). When a
// key header is present it is checked exclusively; otherwise the request
// falls through to JWT validation.
func APIKeyOrJWT(jwtKey []byte, apiKey string) echo.MiddlewareFunc {
	jwtMW := JWT(jwtKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key := c.Request().Header.Get("X-Api-Key"); key != "" {
				if apiKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
					c.Set("auth", "api_key")
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			return jwtMW(next)(c)
		}
	}
}
