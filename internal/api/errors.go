package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/models"
)

// WriteError maps the service error taxonomy to HTTP statuses. Specific
// sentinels wrap one of the four base classes, so matching the class is
// enough; the message still names the precise condition.
func WriteError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, models.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrConflict):
		status, message = http.StatusConflict, unwrapMessage(err)
	case errors.Is(err, models.ErrPrecondition):
		status, message = http.StatusUnprocessableEntity, unwrapMessage(err)
	case errors.Is(err, models.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	}
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// unwrapMessage strips the "service.Op: " prefixes so clients see only the
// sentinel's own text. It walks the chain until it hits a known sentinel,
// specific or base, whichever comes first; context wrappers above it never
// reach the client.
func unwrapMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e {
		case models.ErrCartPublished, models.ErrItemNotInCart, models.ErrApplicationOpen,
			models.ErrRoleUnchanged, models.ErrSameShiftState, models.ErrOwnerHasRestaurant,
			models.ErrRestaurantNameTaken, models.ErrLocationNameTaken,
			models.ErrStatusOutOfOrder, models.ErrNotPromotable,
			models.ErrNotFound, models.ErrConflict, models.ErrPrecondition, models.ErrForbidden:
			return e.Error()
		}
	}
	return err.Error()
}
