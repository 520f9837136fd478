package action

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respond writes o to the client: 303 to the redirect target on success, 422
// with field errors on a validation failure, 500 with the generic message on
// a persistence failure. A successful delete answers 200 with its message.
func Respond(c echo.Context, o Outcome) error {
	switch o.Result {
	case Invalid:
		return c.JSON(http.StatusUnprocessableEntity, o.State)
	case Failed:
		return c.JSON(http.StatusInternalServerError, o.State)
	}
	if o.Redirect != "" {
		return c.Redirect(http.StatusSeeOther, o.Redirect)
	}
	return c.JSON(http.StatusOK, o.State)
}
