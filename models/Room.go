package models

import (
	"time"

	"gorm.io/gorm"
)

// Room occupancy states. Only the reservation engine mutates State, always
// through a compare-and-swap on State+Version so concurrent holds on the same
// room can never both win.
const (
	RoomAvailable = "available"
	RoomReserved  = "reserved"
	RoomOccupied  = "occupied"
)

type Room struct {
	gorm.Model
	HouseID       uint    `json:"houseID" gorm:"index;not null"`
	RoomNumber    string  `json:"roomNumber" gorm:"size:20;not null"`
	Capacity      int     `json:"capacity" gorm:"not null"` // 1, 2 or 4 people
	PricePerMonth float64 `json:"pricePerMonth" gorm:"not null"`

	State   string `json:"state" gorm:"type:varchar(20);default:available;index"` // available, reserved, occupied
	Version int64  `json:"-" gorm:"default:0"`

	CurrentTenantID    *uint      `json:"currentTenantID"`
	OccupancyStartDate *time.Time `json:"occupancyStartDate"`

	House         *House `json:"house,omitempty" gorm:"foreignKey:HouseID"`
	CurrentTenant *User  `json:"currentTenant,omitempty" gorm:"foreignKey:CurrentTenantID"`
}
