package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/db"
)

// ErrorHandler renders every error as {"message": ...}. Fetch failures keep
// their generic message, so driver detail never reaches the client, and
// unknown errors collapse to a plain 500.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var message interface{} = http.StatusText(code)

		var fetchErr *db.FetchError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &fetchErr):
			message = fetchErr.Error()
		case errors.Is(err, db.ErrNotFound):
			code = http.StatusNotFound
			message = http.StatusText(code)
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = httpErr.Message
			if httpErr.Internal != nil {
				logger.Error().Err(httpErr.Internal).Int("status", code).Msg("request failed")
			}
		default:
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).Str("request_id", rid).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{"message": message})
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
