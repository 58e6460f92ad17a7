package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking lifecycle:
//  1. "reserved"  - hold created for later payment, expires after the policy window
//  2. "confirmed" - student paid, room occupied
//  3. "cancelled" - cancelled by student, owner or admin (terminal)
//  4. "expired"   - hold lapsed without confirmation (terminal)
const (
	BookingReserved  = "reserved"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingExpired   = "expired"
)

type Booking struct {
	gorm.Model
	StudentID uint `json:"studentID" gorm:"index;not null"`
	HouseID   uint `json:"houseID" gorm:"index;not null"`
	RoomID    uint `json:"roomID" gorm:"index;not null"`

	BookingType string `json:"bookingType" gorm:"type:varchar(20);index;not null"`
	Version     int64  `json:"-" gorm:"default:0"`

	// Set only while BookingType is "reserved"; confirmed bookings never expire.
	ExpiresAt  *time.Time `json:"expiresAt"`
	MoveInDate *time.Time `json:"moveInDate"`

	IsPaid             bool   `json:"isPaid" gorm:"default:false"`
	Notes              string `json:"notes" gorm:"type:text"`
	CancellationReason string `json:"cancellationReason" gorm:"type:text"`

	Student *User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	House   *House `json:"house,omitempty" gorm:"foreignKey:HouseID"`
	Room    *Room  `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// IsTerminal reports whether no further transitions may leave this booking.
func (b *Booking) IsTerminal() bool {
	return b.BookingType == BookingCancelled || b.BookingType == BookingExpired
}

// HoldExpired reports whether a reserved booking's hold window has lapsed at
// the given instant. Checked lazily on every read so correctness never waits
// on the background sweep.
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.BookingType == BookingReserved && b.ExpiresAt != nil && !now.Before(*b.ExpiresAt)
}

// BookingInquiry tracks pre-booking communication between a student and a
// house owner. Inquiries never touch room state.
type BookingInquiry struct {
	gorm.Model
	StudentID uint `json:"studentID" gorm:"index;not null"`
	HouseID   uint `json:"houseID" gorm:"index;not null"`

	Subject string `json:"subject" gorm:"size:200;not null"`
	Message string `json:"message" gorm:"type:text;not null"`
	Status  string `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, verified, cancelled

	Response     string     `json:"response" gorm:"type:text"`
	ResponseDate *time.Time `json:"responseDate"`

	Student *User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	House   *House `json:"house,omitempty" gorm:"foreignKey:HouseID"`
}

const (
	InquiryPending   = "pending"
	InquiryVerified  = "verified"
	InquiryCancelled = "cancelled"
)
