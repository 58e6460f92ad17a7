package routes

import (
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// CreateBooking places a hold on a room. The hold expires automatically if
// the student never confirms payment.
func CreateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var moveIn *time.Time
	if input.MoveInDate != "" {
		parsed, err := time.Parse("2006-01-02", input.MoveInDate)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation error", "moveInDate must be YYYY-MM-DD.", ctx)
			return
		}
		moveIn = &parsed
	}

	booking, err := reservations.Reserve(services.ReserveInput{
		StudentID:  claims.ID,
		RoomID:     input.RoomID,
		MoveInDate: moveIn,
		Notes:      input.Notes,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

// ConfirmBooking marks a held booking as paid, making the occupancy durable.
func ConfirmBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	booking, confirmErr := reservations.Confirm(id, claims.ID)
	if confirmErr != nil {
		handleServiceError(ctx, confirmErr)
		return
	}

	ctx.JSON(booking)
}

func CancelBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input CancelBookingInput
	ctx.ReadJSON(&input) // optional body

	booking, cancelErr := reservations.Cancel(id,
		services.Actor{UserID: claims.ID, Role: claims.Role}, input.Reason)
	if cancelErr != nil {
		handleServiceError(ctx, cancelErr)
		return
	}

	ctx.JSON(booking)
}

func GetMyBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	bookings, err := reservations.BookingsForStudent(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(bookings)
}

// CreateInquiry sends a pre-booking question to a house owner.
func CreateInquiry(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateInquiryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	inquiry, err := inquiries.Send(services.InquiryInput{
		StudentID: claims.ID,
		HouseID:   input.HouseID,
		Subject:   input.Subject,
		Message:   input.Message,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(inquiry)
}

func GetMyInquiries(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	list, err := inquiries.ForStudent(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(list)
}

func CancelInquiry(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	inquiry, cancelErr := inquiries.Cancel(id,
		services.Actor{UserID: claims.ID, Role: claims.Role})
	if cancelErr != nil {
		handleServiceError(ctx, cancelErr)
		return
	}

	ctx.JSON(inquiry)
}

type CreateBookingInput struct {
	RoomID     uint   `json:"roomID" validate:"required"`
	MoveInDate string `json:"moveInDate"`
	Notes      string `json:"notes" validate:"max=1024"`
}

type CancelBookingInput struct {
	Reason string `json:"reason" validate:"max=512"`
}

type CreateInquiryInput struct {
	HouseID uint   `json:"houseID" validate:"required"`
	Subject string `json:"subject" validate:"required,max=256"`
	Message string `json:"message" validate:"required,max=2048"`
}
