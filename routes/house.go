package routes

import (
	"encoding/json"

	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/services"
	"github.com/peaceghost-hub/EasyAccomodation/storage"
	"github.com/peaceghost-hub/EasyAccomodation/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/datatypes"
)

// GetResidentialAreas lists browsable areas. Public.
func GetResidentialAreas(ctx iris.Context) {
	var areas []models.ResidentialArea
	if err := storage.DB.Order("name").Find(&areas).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(areas)
}

// GetHouses lists active verified houses, optionally filtered by area.
// Public: browsing listings never requires verification.
func GetHouses(ctx iris.Context) {
	query := storage.DB.Preload("Rooms").Preload("ResidentialArea").
		Where("is_active = ? AND is_verified = ?", true, true)

	if areaID := ctx.URLParamIntDefault("areaID", 0); areaID > 0 {
		query = query.Where("residential_area_id = ?", areaID)
	}
	if ctx.URLParamDefault("available", "") == "true" {
		query = query.Where("is_full = ?", false)
	}

	var houses []models.House
	if err := query.Find(&houses).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(houses)
}

func GetHouseByID(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var house models.House
	res := storage.DB.Preload("Rooms").Preload("ResidentialArea").Find(&house, id)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(house)
}

// CreateHouse registers a listing owned by the caller. New listings stay
// hidden until an admin verifies them.
func CreateHouse(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input HouseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var area models.ResidentialArea
	if err := storage.DB.First(&area, input.ResidentialAreaID).Error; err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation error", "Unknown residential area.", ctx)
		return
	}

	amenities, _ := json.Marshal(input.Amenities)
	ownerID := claims.ID
	house := models.House{
		HouseNumber:       input.HouseNumber,
		StreetAddress:     input.StreetAddress,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		ResidentialAreaID: input.ResidentialAreaID,
		OwnerID:           &ownerID,
		IsActive:          true,
		Amenities:         datatypes.JSON(amenities),
		Description:       input.Description,
		Rules:             input.Rules,
	}

	if err := storage.DB.Create(&house).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	for _, room := range input.Rooms {
		storage.DB.Create(&models.Room{
			HouseID:       house.ID,
			RoomNumber:    room.RoomNumber,
			Capacity:      room.Capacity,
			PricePerMonth: room.PricePerMonth,
			State:         models.RoomAvailable,
		})
	}

	storage.DB.Preload("Rooms").First(&house, house.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(house)
}

func UpdateHouse(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	house := getOwnedHouse(ctx, claims)
	if house == nil {
		return
	}

	var input HouseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities, _ := json.Marshal(input.Amenities)
	house.HouseNumber = input.HouseNumber
	house.StreetAddress = input.StreetAddress
	house.Latitude = input.Latitude
	house.Longitude = input.Longitude
	house.Amenities = datatypes.JSON(amenities)
	house.Description = input.Description
	house.Rules = input.Rules
	if input.ResidentialAreaID != 0 {
		house.ResidentialAreaID = input.ResidentialAreaID
	}

	if err := storage.DB.Save(house).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(house)
}

// AddRoom appends a room to an owned house.
func AddRoom(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	house := getOwnedHouse(ctx, claims)
	if house == nil {
		return
	}

	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.Room{
		HouseID:       house.ID,
		RoomNumber:    input.RoomNumber,
		Capacity:      input.Capacity,
		PricePerMonth: input.PricePerMonth,
		State:         models.RoomAvailable,
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// A new available room means the house is no longer full.
	if house.IsFull {
		storage.DB.Model(house).Update("is_full", false)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(room)
}

// ClaimHouse attaches an admin-seeded listing to the calling owner. Houses
// already claimed by someone else are refused.
func ClaimHouse(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	res := storage.DB.Model(&models.House{}).
		Where("id = ? AND owner_id IS NULL", id).
		Update("owner_id", claims.ID)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		var house models.House
		if storage.DB.First(&house, id).Error != nil {
			utils.CreateNotFound(ctx)
			return
		}
		utils.JSONError(ctx, iris.StatusConflict, "already_claimed", "House already has an owner.")
		return
	}

	var house models.House
	storage.DB.Preload("Rooms").First(&house, id)
	ctx.JSON(house)
}

// GetMyHouses lists the caller's listings with rooms.
func GetMyHouses(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var houses []models.House
	if err := storage.DB.Preload("Rooms").Preload("ResidentialArea").
		Where("owner_id = ?", claims.ID).Find(&houses).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(houses)
}

// GetHouseBookings lists bookings against an owned house.
func GetHouseBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	house := getOwnedHouse(ctx, claims)
	if house == nil {
		return
	}

	var bookings []models.Booking
	if err := storage.DB.Preload("Student").Preload("Room").
		Where("house_id = ?", house.ID).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	reservations.ExpireLapsed(bookings)
	ctx.JSON(bookings)
}

// GetHouseInquiries lists inquiries sent to an owned house.
func GetHouseInquiries(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	house := getOwnedHouse(ctx, claims)
	if house == nil {
		return
	}

	list, err := inquiries.ForHouse(house.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(list)
}

// VerifyInquiry lets the owner acknowledge an inquiry with a response.
func VerifyInquiry(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input InquiryResponseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	inquiry, verifyErr := inquiries.Verify(id,
		services.Actor{UserID: claims.ID, Role: claims.Role}, input.Response)
	if verifyErr != nil {
		handleServiceError(ctx, verifyErr)
		return
	}
	ctx.JSON(inquiry)
}

// getOwnedHouse loads the {id} house and enforces ownership (admins pass).
func getOwnedHouse(ctx iris.Context, claims *utils.AccessToken) *models.House {
	id := ctx.Params().Get("id")

	var house models.House
	res := storage.DB.Find(&house, id)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	if claims.Role != models.RoleAdmin &&
		(house.OwnerID == nil || *house.OwnerID != claims.ID) {
		ctx.StatusCode(iris.StatusForbidden)
		return nil
	}
	return &house
}

type HouseInput struct {
	HouseNumber       string      `json:"houseNumber" validate:"required,max=50"`
	StreetAddress     string      `json:"streetAddress" validate:"required,max=200"`
	Latitude          float64     `json:"latitude"`
	Longitude         float64     `json:"longitude"`
	ResidentialAreaID uint        `json:"residentialAreaID" validate:"required"`
	Amenities         []string    `json:"amenities"`
	Description       string      `json:"description" validate:"max=4096"`
	Rules             string      `json:"rules" validate:"max=4096"`
	Rooms             []RoomInput `json:"rooms" validate:"dive"`
}

type RoomInput struct {
	RoomNumber    string  `json:"roomNumber" validate:"required,max=20"`
	Capacity      int     `json:"capacity" validate:"required,min=1,max=10"`
	PricePerMonth float64 `json:"pricePerMonth" validate:"required,min=0"`
}

type InquiryResponseInput struct {
	Response string `json:"response" validate:"required,max=2048"`
}
