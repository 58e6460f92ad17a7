package services

import (
	"errors"
	"fmt"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// HousekeepingService covers destructive admin maintenance on houses. A house
// with live bookings cannot be removed silently: callers first preview the
// blast radius, then repeat the delete with force set to cancel everything.
type HousekeepingService struct {
	db       *gorm.DB
	ledger   *RoomLedger
	notifier Notifier
	clock    Clock
}

func NewHousekeepingService(db *gorm.DB, ledger *RoomLedger, notifier Notifier, clock Clock) *HousekeepingService {
	return &HousekeepingService{db: db, ledger: ledger, notifier: notifier, clock: clock}
}

// DeleteImpact describes what a forced delete would take down with the house.
type DeleteImpact struct {
	HouseID        uint             `json:"houseID"`
	RoomCount      int64            `json:"roomCount"`
	ActiveBookings []models.Booking `json:"activeBookings"`
	InquiryCount   int64            `json:"inquiryCount"`
}

func (h *HousekeepingService) loadHouse(houseID uint) (*models.House, error) {
	var house models.House
	if err := h.db.First(&house, houseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("house %d: %w", houseID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &house, nil
}

// PreviewDeleteImpact reports the active bookings and related records that a
// forced delete would cancel. Read-only.
func (h *HousekeepingService) PreviewDeleteImpact(houseID uint) (*DeleteImpact, error) {
	if _, err := h.loadHouse(houseID); err != nil {
		return nil, err
	}

	impact := DeleteImpact{HouseID: houseID}
	if err := h.db.Model(&models.Room{}).Where("house_id = ?", houseID).
		Count(&impact.RoomCount).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := h.db.Preload("Student").
		Where("house_id = ? AND booking_type IN ?", houseID,
			[]string{models.BookingReserved, models.BookingConfirmed}).
		Find(&impact.ActiveBookings).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := h.db.Model(&models.BookingInquiry{}).Where("house_id = ?", houseID).
		Count(&impact.InquiryCount).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &impact, nil
}

// DeleteHouse removes a house with its rooms, bookings and inquiries. Without
// force it refuses while any reserved or confirmed booking exists, returning
// the impact wrapped in ErrActiveBookings so the caller can show what blocks
// the delete. With force, active bookings are cancelled (and their students
// notified) before the rows go.
func (h *HousekeepingService) DeleteHouse(houseID uint, force bool) (*DeleteImpact, error) {
	impact, err := h.PreviewDeleteImpact(houseID)
	if err != nil {
		return nil, err
	}

	if len(impact.ActiveBookings) > 0 && !force {
		return impact, fmt.Errorf("%d active bookings: %w", len(impact.ActiveBookings), ErrActiveBookings)
	}

	for i := range impact.ActiveBookings {
		booking := &impact.ActiveBookings[i]
		res := h.db.Model(&models.Booking{}).
			Where("id = ? AND version = ?", booking.ID, booking.Version).
			Updates(map[string]interface{}{
				"booking_type":        models.BookingCancelled,
				"cancellation_reason": "house removed",
				"expires_at":          nil,
				"version":             booking.Version + 1,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
		}
		if h.notifier != nil && res.RowsAffected > 0 {
			h.notifier.BookingCancelled(booking, "house removed")
		}
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("house_id = ?", houseID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("house_id = ?", houseID).Delete(&models.BookingInquiry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("house_id = ?", houseID).Delete(&models.Room{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.House{}, houseID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return impact, nil
}
