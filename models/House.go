package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResidentialArea groups houses by suburb for browsing and distance display.
type ResidentialArea struct {
	gorm.Model
	Name                  string  `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description           string  `json:"description" gorm:"type:text"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	ApproximateDistanceKm float64 `json:"approximateDistanceKm"`

	Houses []House `json:"houses,omitempty" gorm:"foreignKey:ResidentialAreaID"`
}

type House struct {
	gorm.Model
	HouseNumber   string  `json:"houseNumber" gorm:"size:50;not null"`
	StreetAddress string  `json:"streetAddress" gorm:"size:200;not null"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`

	ResidentialAreaID uint  `json:"residentialAreaID" gorm:"index;not null"`
	OwnerID           *uint `json:"ownerID" gorm:"index"` // nil until an owner claims the house

	IsVerified bool `json:"isVerified" gorm:"default:false"` // admin signs off before listing goes live
	IsActive   bool `json:"isActive" gorm:"default:true"`
	IsFull     bool `json:"isFull" gorm:"default:false"`

	Amenities   datatypes.JSON `json:"amenities"`
	Description string         `json:"description" gorm:"type:text"`
	Rules       string         `json:"rules" gorm:"type:text"`

	ResidentialArea *ResidentialArea `json:"residentialArea,omitempty" gorm:"foreignKey:ResidentialAreaID"`
	Owner           *User            `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Rooms           []Room           `json:"rooms,omitempty" gorm:"foreignKey:HouseID"`
}
