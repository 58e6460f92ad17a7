package routes

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if userInput.PhoneNumber != "" && !utils.ValidatePhoneNumber(userInput.PhoneNumber) {
		utils.CreateError(iris.StatusBadRequest, "Validation error", "Invalid phone number.", ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	role := userInput.Role
	if role != models.RoleStudent && role != models.RoleHouseOwner {
		// Admin accounts are provisioned out of band.
		role = models.RoleStudent
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FullName:    userInput.FullName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		PhoneNumber: utils.NormalizePhoneNumber(userInput.PhoneNumber),
		Role:        role,
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	switch role {
	case models.RoleStudent:
		storage.DB.Create(&models.StudentProfile{
			UserID:        newUser.ID,
			StudentNumber: userInput.StudentNumber,
			Institution:   userInput.Institution,
		})
	case models.RoleHouseOwner:
		storage.DB.Create(&models.HouseOwnerProfile{UserID: newUser.ID})
	}

	if token, err := utils.CreateEmailVerificationToken(newUser.ID); err == nil {
		notifier.EmailVerificationRequested(&newUser, token)
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.IsActive != nil && !*existingUser.IsActive {
		utils.CreateError(iris.StatusForbidden, "Account Disabled", "This account has been deactivated.", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

func Logout(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	utils.RevokeRefreshToken(claims.ID)
	ctx.StatusCode(iris.StatusNoContent)
}

// VerifyEmail consumes the emailed verification token. Repeat clicks on the
// same link succeed quietly.
func VerifyEmail(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.EmailVerificationToken)

	if err := verification.EmailVerify(claims.ID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"message": "Email verified successfully."})
}

// ResendVerificationEmail mails a fresh verification link.
func ResendVerificationEmail(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	user := getUserByID(strconv.FormatUint(uint64(claims.ID), 10), ctx)
	if user == nil {
		return
	}

	if user.EmailVerified {
		ctx.JSON(iris.Map{"message": "Email already verified."})
		return
	}

	token, err := utils.CreateEmailVerificationToken(user.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	notifier.EmailVerificationRequested(user, token)

	ctx.JSON(iris.Map{"message": "Verification email sent."})
}

// GetAccessStatus reports whether the caller may use booking features right
// now, with the deny reason when not. This is derived fresh on every call.
func GetAccessStatus(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	decision, err := gateway.Authorize(claims.ID, services.ActionBrowseProtected)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"access":      decision,
		"changeToken": changes.Version(claims.ID),
	})
}

// GetProfileStatus returns the caller's profile together with the change
// token clients poll to detect verification-state changes.
func GetProfileStatus(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	user := getUserByID(strconv.FormatUint(uint64(claims.ID), 10), ctx)
	if user == nil {
		return
	}

	var profile models.StudentProfile
	hasProfile := storage.DB.Where("user_id = ?", user.ID).First(&profile).Error == nil

	response := iris.Map{
		"user":        user,
		"changeToken": changes.Version(user.ID),
	}
	if hasProfile {
		response["studentProfile"] = profile
	}
	ctx.JSON(response)
}

func GetUserSavedHouses(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var savedIDs []uint
	if user.SavedHouses != nil {
		if err := json.Unmarshal(user.SavedHouses, &savedIDs); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	var houses []models.House
	if len(savedIDs) > 0 {
		if err := storage.DB.Preload("Rooms").Preload("ResidentialArea").
			Where("id IN ?", savedIDs).Find(&houses).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(houses)
}

func AlterUserSavedHouses(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AlterSavedHousesInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var houseExists models.House
	if err := storage.DB.First(&houseExists, req.HouseID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var savedHouses []uint
	var unMarshalledHouses []uint

	if user.SavedHouses != nil {
		unmarshalErr := json.Unmarshal(user.SavedHouses, &unMarshalledHouses)
		if unmarshalErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	if req.Op == "add" {
		if !slices.Contains(unMarshalledHouses, req.HouseID) {
			savedHouses = append(unMarshalledHouses, req.HouseID)
		} else {
			savedHouses = unMarshalledHouses
		}
	} else if req.Op == "remove" && len(unMarshalledHouses) > 0 {
		for _, houseID := range unMarshalledHouses {
			if req.HouseID != houseID {
				savedHouses = append(savedHouses, houseID)
			}
		}
	}

	marshalledHouses, marshalErr := json.Marshal(savedHouses)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user.SavedHouses = marshalledHouses

	rowsUpdated := storage.DB.Model(user).Updates(user)
	if rowsUpdated.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// UpdateOwnerPaymentInfo lets a house owner record where students should pay.
func UpdateOwnerPaymentInfo(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input OwnerPaymentInfoInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var profile models.HouseOwnerProfile
	res := storage.DB.Where("user_id = ?", claims.ID).Limit(1).Find(&profile)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		profile = models.HouseOwnerProfile{UserID: claims.ID}
	}

	profile.EcocashNumber = input.EcocashNumber
	profile.BankAccount = input.BankAccount
	profile.OtherPaymentInfo = input.OtherPaymentInfo

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(profile)
}

func GetMyNotifications(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var notifications []models.Notification
	if err := storage.DB.Where("user_id = ?", claims.ID).
		Order("created_at DESC").Limit(50).Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(notifications)
}

// GetMyPayments lists the caller's payment history, newest first. Covers both
// room rentals and subscription fees.
func GetMyPayments(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	query := storage.DB.Where("payer_id = ?", claims.ID)
	if paymentType := ctx.URLParamDefault("type", ""); paymentType != "" {
		query = query.Where("payment_type = ?", paymentType)
	}

	var payments []models.Payment
	if err := query.Preload("Booking").
		Order("created_at DESC").Limit(100).Find(&payments).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(payments)
}

func MarkNotificationRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	res := storage.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, claims.ID).
		Update("is_read", true)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func getUserByID(id string, ctx iris.Context) *models.User {
	var user models.User
	userExists := storage.DB.Where("id = ?", id).Find(&user)

	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if userExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &user
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID, user.Role)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":            user.ID,
		"fullName":      user.FullName,
		"email":         user.Email,
		"phoneNumber":   user.PhoneNumber,
		"role":          user.Role,
		"emailVerified": user.EmailVerified,
		"adminVerified": user.AdminVerified,
		"savedHouses":   user.SavedHouses,
		"accessToken":   string(tokenPair.AccessToken),
		"refreshToken":  string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FullName      string `json:"fullName" validate:"required,max=256"`
	Email         string `json:"email" validate:"required,max=256,email"`
	Password      string `json:"password" validate:"required,min=8,max=256"`
	PhoneNumber   string `json:"phoneNumber"`
	Role          string `json:"role" validate:"omitempty,oneof=student house_owner"`
	StudentNumber string `json:"studentNumber"`
	Institution   string `json:"institution"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlterSavedHousesInput struct {
	HouseID uint   `json:"houseID" validate:"required"`
	Op      string `json:"op" validate:"required,oneof=add remove"`
}

type OwnerPaymentInfoInput struct {
	EcocashNumber    string `json:"ecocashNumber"`
	BankAccount      string `json:"bankAccount"`
	OtherPaymentInfo string `json:"otherPaymentInfo"`
}
