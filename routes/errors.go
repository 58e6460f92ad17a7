package routes

import (
	"errors"

	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/kataras/iris/v12"
)

// handleServiceError maps the service error taxonomy onto HTTP statuses.
// Conflicts (state machine refused) are 409, lapsed holds 410, storage
// trouble 503 so clients can retry.
func handleServiceError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrNotAuthorized):
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, services.ErrReservationExpired):
		utils.JSONError(ctx, iris.StatusGone, "reservation_expired", "This reservation has expired. Please make a new booking.")
	case errors.Is(err, services.ErrRoomNotAvailable):
		utils.JSONError(ctx, iris.StatusConflict, "room_not_available", "Room is no longer available.")
	case errors.Is(err, services.ErrBookingLimitReached):
		utils.JSONError(ctx, iris.StatusConflict, "booking_limit_reached", err.Error())
	case errors.Is(err, services.ErrActiveBookings):
		utils.JSONError(ctx, iris.StatusConflict, "active_bookings", err.Error())
	case errors.Is(err, services.ErrAlreadyTerminal),
		errors.Is(err, services.ErrProofAlreadyReviewed),
		errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(ctx, iris.StatusConflict, "conflict", err.Error())
	case errors.Is(err, services.ErrUnavailable):
		utils.JSONError(ctx, iris.StatusServiceUnavailable, "unavailable", "Storage temporarily unavailable, try again.")
	default:
		utils.CreateInternalServerError(ctx)
	}
}
