package models

import (
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userID" gorm:"index;not null"`
	Type    string `json:"type" gorm:"size:64;index"`
	Title   string `json:"title" gorm:"size:200"`
	Message string `json:"message" gorm:"type:text"`
	RefType string `json:"refType" gorm:"size:64"`
	RefID   uint   `json:"refID"`
	IsRead  bool   `json:"isRead" gorm:"default:false"`
}
