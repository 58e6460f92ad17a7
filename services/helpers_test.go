package services

import (
	"testing"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.HouseOwnerProfile{},
		&models.ResidentialArea{},
		&models.House{},
		&models.Room{},
		&models.Booking{},
		&models.BookingInquiry{},
		&models.PaymentProof{},
		&models.Payment{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedVerifiedStudent creates a student with email and admin verification
// both valid at testBase, with the window ending 30 days later.
func seedVerifiedStudent(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	verifiedAt := testBase.Add(-time.Hour)
	expiresAt := verifiedAt.Add(30 * 24 * time.Hour)
	user := models.User{
		Email:                  email,
		FullName:               "Test Student",
		Role:                   models.RoleStudent,
		EmailVerified:          true,
		EmailVerifiedAt:        &verifiedAt,
		AdminVerified:          true,
		AdminVerifiedAt:        &verifiedAt,
		AdminVerifiedExpiresAt: &expiresAt,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	if err := db.Create(&models.StudentProfile{UserID: user.ID}).Error; err != nil {
		t.Fatalf("seed student profile: %v", err)
	}
	return &user
}

func seedUnverifiedStudent(t *testing.T, db *gorm.DB, email string, emailVerified bool) *models.User {
	t.Helper()

	user := models.User{
		Email:         email,
		FullName:      "Pending Student",
		Role:          models.RoleStudent,
		EmailVerified: emailVerified,
	}
	if emailVerified {
		at := testBase.Add(-time.Hour)
		user.EmailVerifiedAt = &at
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return &user
}

func seedOwner(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:         email,
		FullName:      "Test Owner",
		Role:          models.RoleHouseOwner,
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return &user
}

// seedHouseWithRoom creates an area, a verified house and one available room.
func seedHouseWithRoom(t *testing.T, db *gorm.DB, ownerID *uint) (*models.House, *models.Room) {
	t.Helper()

	area := models.ResidentialArea{Name: "Senga " + time.Now().Format("150405.000000000")}
	if err := db.Create(&area).Error; err != nil {
		t.Fatalf("seed area: %v", err)
	}

	house := models.House{
		HouseNumber:       "12",
		StreetAddress:     "Main Street",
		ResidentialAreaID: area.ID,
		OwnerID:           ownerID,
		IsVerified:        true,
		IsActive:          true,
	}
	if err := db.Create(&house).Error; err != nil {
		t.Fatalf("seed house: %v", err)
	}

	room := models.Room{
		HouseID:       house.ID,
		RoomNumber:    "A1",
		Capacity:      1,
		PricePerMonth: 80,
		State:         models.RoomAvailable,
	}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return &house, &room
}

// newTestEngine wires a ReservationEngine with a 7-day hold, a cap of 2
// consecutive unpaid holds and no Redis.
func newTestEngine(db *gorm.DB, clock *fakeClock) *ReservationEngine {
	ledger := NewRoomLedger(db)
	gateway := NewAccessGateway(db, clock)
	return NewReservationEngine(db, ledger, gateway, clock, 7*24*time.Hour, 2, nil)
}

func roomState(t *testing.T, db *gorm.DB, roomID uint) string {
	t.Helper()
	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		t.Fatalf("load room: %v", err)
	}
	return room.State
}
