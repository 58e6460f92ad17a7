package routes

import (
	"net/http"

	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func pageParams(ctx iris.Context) (page int, perPage int, offset int) {
	page = ctx.URLParamIntDefault("page", 1)
	perPage = ctx.URLParamIntDefault("per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage, (page - 1) * perPage
}

// Create area - POST /admin/areas
func AdminCreateArea(ctx iris.Context) {
	var input AreaInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	area := models.ResidentialArea{
		Name:                  input.Name,
		Description:           input.Description,
		Latitude:              input.Latitude,
		Longitude:             input.Longitude,
		ApproximateDistanceKm: input.ApproximateDistanceKm,
	}
	if err := storage.DB.Create(&area).Error; err != nil {
		utils.JSONError(ctx, http.StatusConflict, "conflict", "Area name already exists.")
		return
	}

	utils.Audit(ctx, "area.create", "residential_area", area.ID, nil, area)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": area})
}

// Verify house listing - PATCH /admin/houses/{id}/verify
func AdminVerifyHouse(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var house models.House
	if err := storage.DB.First(&house, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := house
	house.IsVerified = !house.IsVerified
	if err := storage.DB.Save(&house).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.Audit(ctx, "house.verify_toggle", "house", house.ID, before, house)
	ctx.JSON(iris.Map{"data": house})
}

// Delete impact preview - GET /admin/houses/{id}/delete-impact
func AdminPreviewHouseDelete(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	impact, previewErr := housekeeping.PreviewDeleteImpact(id)
	if previewErr != nil {
		handleServiceError(ctx, previewErr)
		return
	}
	ctx.JSON(iris.Map{"data": impact})
}

// Delete house - DELETE /admin/houses/{id}?force=true
// Refuses with 409 and the blocking bookings unless force is set.
func AdminDeleteHouse(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	force := ctx.URLParamDefault("force", "") == "true"

	impact, deleteErr := housekeeping.DeleteHouse(id, force)
	if deleteErr != nil {
		if impact != nil && len(impact.ActiveBookings) > 0 {
			ctx.StopWithJSON(http.StatusConflict, iris.Map{
				"error":   "active_bookings",
				"message": "House has active bookings. Repeat with ?force=true to cancel them and delete.",
				"impact":  impact,
			})
			return
		}
		handleServiceError(ctx, deleteErr)
		return
	}

	utils.Audit(ctx, "house.delete", "house", id, impact, nil)
	ctx.JSON(iris.Map{"data": impact})
}

// Pending proofs - GET /admin/proofs?status=pending
func AdminListProofs(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)
	status := ctx.URLParamDefault("status", models.ProofPending)

	query := storage.DB.Model(&models.PaymentProof{}).Where("status = ?", status)

	var total int64
	query.Count(&total)

	var items []models.PaymentProof
	if err := query.Preload("Student").Order("uploaded_at ASC").
		Offset(offset).Limit(perPage).Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, items, page, perPage, total)
}

// Review proof - PATCH /admin/proofs/{id}
func AdminReviewProof(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var input ReviewProofInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	proof, reviewErr := verification.ReviewProof(id, input.Decision, claims.ID, input.Comment)
	if reviewErr != nil {
		handleServiceError(ctx, reviewErr)
		return
	}

	utils.Audit(ctx, "proof.review", "payment_proof", proof.ID, nil, proof)
	ctx.JSON(iris.Map{"data": proof})
}

// Students listing - GET /admin/students
func AdminListStudents(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	query := storage.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent)

	if verified := ctx.URLParamDefault("verified", ""); verified == "true" {
		query = query.Where("admin_verified = ?", true)
	} else if verified == "false" {
		query = query.Where("admin_verified = ?", false)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// Toggle verification - PATCH /admin/students/{id}/verification
func AdminToggleVerification(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var before models.User
	if err := storage.DB.First(&before, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	user, toggleErr := verification.ToggleAdminVerification(id, claims.ID)
	if toggleErr != nil {
		handleServiceError(ctx, toggleErr)
		return
	}

	utils.Audit(ctx, "user.verification_toggle", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": user})
}

// Bookings listing - GET /admin/bookings
func AdminListBookings(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	query := storage.DB.Model(&models.Booking{})
	if status := ctx.URLParamDefault("status", ""); status != "" {
		query = query.Where("booking_type = ?", status)
	}

	var total int64
	query.Count(&total)

	var items []models.Booking
	if err := query.Preload("Student").Preload("House").Preload("Room").
		Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	reservations.ExpireLapsed(items)

	utils.JSONPage(ctx, items, page, perPage, total)
}

// Payment history - GET /admin/payments?type=room_rental|subscription
func AdminListPayments(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	query := storage.DB.Model(&models.Payment{})
	if paymentType := ctx.URLParamDefault("type", ""); paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}

	var total int64
	query.Count(&total)

	var items []models.Payment
	if err := query.Preload("Payer").Preload("Recipient").
		Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, items, page, perPage, total)
}

// Manual sweep - POST /admin/bookings/sweep
// The background sweeper covers normal operation; this is for operators who
// want the books squared immediately.
func AdminSweepExpiredBookings(ctx iris.Context) {
	swept, err := reservations.SweepExpired(clock.Now())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.Audit(ctx, "booking.sweep", "booking", 0, nil, iris.Map{"sweptCount": len(swept)})
	ctx.JSON(iris.Map{"data": swept, "meta": iris.Map{"swept": len(swept)}})
}

// Audit log - GET /admin/audits
func AdminListAudits(ctx iris.Context) {
	page, perPage, offset := pageParams(ctx)

	query := storage.DB.Model(&models.AuditLog{})
	if action := ctx.URLParamDefault("action", ""); action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	query.Count(&total)

	var items []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, items, page, perPage, total)
}

type AreaInput struct {
	Name                  string  `json:"name" validate:"required,max=100"`
	Description           string  `json:"description" validate:"max=4096"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	ApproximateDistanceKm float64 `json:"approximateDistanceKm" validate:"min=0"`
}

type ReviewProofInput struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
	Comment  string `json:"comment" validate:"max=1024"`
}
