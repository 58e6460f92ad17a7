package models

import (
	"time"
)

// PaymentProof is the uploaded evidence a student paid the subscription fee.
// Terminal once reviewed; accepting one refreshes the student's 30-day
// admin-verification window.
type PaymentProof struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"userID" gorm:"not null;index"`
	Reference  string     `json:"reference" gorm:"size:64;uniqueIndex"` // opaque file reference from the upload store
	ImageURL   string     `json:"imageURL" gorm:"size:512"`
	Status     string     `json:"status" gorm:"size:20;default:'pending';index"` // pending, accepted, rejected
	ReviewedBy *uint      `json:"reviewedBy" gorm:"index"`
	ReviewedAt *time.Time `json:"reviewedAt"`
	Comment    string     `json:"comment" gorm:"type:text"`
	UploadedAt time.Time  `json:"uploadedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Student  *User `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
}

const (
	ProofPending  = "pending"
	ProofAccepted = "accepted"
	ProofRejected = "rejected"
)
