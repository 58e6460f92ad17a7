package models

import (
	"time"
)

// Payment is the ledger row behind money that actually moved: a room rental
// recorded when a student's booking is confirmed, or the access subscription
// recorded when an admin accepts a payment proof. Rows are append-only
// history, never edited after creation.
type Payment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	PaymentType string  `json:"paymentType" gorm:"size:20;not null;index"` // room_rental, subscription
	PayerID     uint    `json:"payerID" gorm:"not null;index"`
	RecipientID *uint   `json:"recipientID" gorm:"index"` // house owner or reviewing admin
	Amount      float64 `json:"amount" gorm:"not null"`
	Currency    string  `json:"currency" gorm:"size:10;default:'USD'"`
	Method      string  `json:"method" gorm:"size:20"` // ecocash, bank_transfer, cash; empty when unknown
	Status      string  `json:"status" gorm:"size:20;default:'completed'"`
	Reference   string  `json:"reference" gorm:"size:64;index"`

	BookingID *uint `json:"bookingID" gorm:"index"` // room rentals only
	HouseID   *uint `json:"houseID" gorm:"index"`
	RoomID    *uint `json:"roomID" gorm:"index"`

	PaidAt    *time.Time `json:"paidAt"`
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Payer     *User    `json:"payer,omitempty" gorm:"foreignKey:PayerID"`
	Recipient *User    `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Booking   *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

const (
	PaymentRoomRental   = "room_rental"
	PaymentSubscription = "subscription"
)

const PaymentCompleted = "completed"
