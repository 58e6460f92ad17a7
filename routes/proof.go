package routes

import (
	"fmt"

	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UploadPaymentProof accepts a base64 image of a payment receipt, stores it,
// and queues the proof for admin review. Only email verification is required
// here: this is the path an unverified student takes to become verified.
func UploadPaymentProof(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	decision, err := gateway.Authorize(claims.ID, services.ActionUploadProof)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !decision.Allowed {
		utils.JSONError(ctx, iris.StatusForbidden, decision.Reason, decision.Message)
		return
	}

	var input UploadProofInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reference := uuid.NewString()
	publicID := fmt.Sprintf("proofs/%d/%s", claims.ID, reference)

	imageURL, uploadErr := storage.UploadProofImage(input.Image, publicID)
	if uploadErr != nil {
		utils.JSONError(ctx, iris.StatusServiceUnavailable, "upload_failed", "Could not store the proof image, try again.")
		return
	}

	proof, recordErr := verification.RecordProof(claims.ID, reference, imageURL)
	if recordErr != nil {
		handleServiceError(ctx, recordErr)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(proof)
}

func GetMyPaymentProofs(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var proofs []models.PaymentProof
	if err := storage.DB.Where("user_id = ?", claims.ID).
		Order("uploaded_at DESC").Find(&proofs).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(proofs)
}

type UploadProofInput struct {
	Image string `json:"image" validate:"required"`
}
