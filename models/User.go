package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleHouseOwner = "house_owner"
	RoleAdmin      = "admin"
)

type User struct {
	gorm.Model
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role" gorm:"type:varchar(20);default:student;index"` // student, house_owner, admin
	IsActive    *bool  `json:"isActive" gorm:"default:true"`

	// Email verification (token sent on registration)
	EmailVerified   bool       `json:"emailVerified" gorm:"default:false"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`

	// Admin verification (payment proof accepted by an admin). AdminVerified
	// alone is never trusted: access derivation re-checks the expiry timestamp.
	AdminVerified          bool       `json:"adminVerified" gorm:"default:false"`
	AdminVerifiedAt        *time.Time `json:"adminVerifiedAt"`
	AdminVerifiedExpiresAt *time.Time `json:"adminVerifiedExpiresAt"`

	SavedHouses datatypes.JSON `json:"savedHouses"`

	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Houses   []House   `json:"houses,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// StudentProfile carries student-only fields and the consecutive-hold counter
// that caps unpaid reservations.
type StudentProfile struct {
	gorm.Model
	UserID                  uint       `json:"userID" gorm:"uniqueIndex;not null"`
	StudentNumber           string     `json:"studentNumber" gorm:"size:50"`
	Institution             string     `json:"institution" gorm:"size:100"`
	ConsecutiveBookingCount int        `json:"consecutiveBookingCount" gorm:"default:0"`
	LastBookingDate         *time.Time `json:"lastBookingDate"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// HouseOwnerProfile stores the payment channels students use to pay the owner.
type HouseOwnerProfile struct {
	gorm.Model
	UserID           uint   `json:"userID" gorm:"uniqueIndex;not null"`
	EcocashNumber    string `json:"ecocashNumber" gorm:"size:20"`
	BankAccount      string `json:"bankAccount" gorm:"size:50"`
	OtherPaymentInfo string `json:"otherPaymentInfo" gorm:"type:text"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
