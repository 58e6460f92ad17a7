package services

import (
	"errors"
	"fmt"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// RoomLedger is the authoritative source of room availability. Only the
// reservation engine calls it, which keeps the single-writer invariant on
// Room.State. Every transition is a compare-and-swap on state+version so two
// concurrent holds on the same room can never both succeed, even across
// service instances sharing one database.
type RoomLedger struct {
	db *gorm.DB
}

func NewRoomLedger(db *gorm.DB) *RoomLedger {
	return &RoomLedger{db: db}
}

// TryReserve transitions available -> reserved. Non-blocking: a losing racer
// gets ErrRoomNotAvailable immediately rather than waiting on a lock.
func (l *RoomLedger) TryReserve(roomID uint) error {
	var room models.Room
	if err := l.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if room.State != models.RoomAvailable {
		return ErrRoomNotAvailable
	}

	res := l.db.Model(&models.Room{}).
		Where("id = ? AND state = ? AND version = ?", roomID, models.RoomAvailable, room.Version).
		Updates(map[string]interface{}{
			"state":   models.RoomReserved,
			"version": room.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// Someone else won the race since we read the row.
		return ErrRoomNotAvailable
	}
	return nil
}

// Confirm transitions reserved -> occupied and records the tenant.
func (l *RoomLedger) Confirm(roomID uint, tenantID uint) error {
	var room models.Room
	if err := l.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if room.State != models.RoomReserved {
		return ErrInvalidTransition
	}

	res := l.db.Model(&models.Room{}).
		Where("id = ? AND state = ? AND version = ?", roomID, models.RoomReserved, room.Version).
		Updates(map[string]interface{}{
			"state":             models.RoomOccupied,
			"version":           room.Version + 1,
			"current_tenant_id": tenantID,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// Release transitions reserved|occupied -> available and clears tenant info.
// Idempotent: releasing an already-available room is a no-op.
func (l *RoomLedger) Release(roomID uint) error {
	var room models.Room
	if err := l.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if room.State == models.RoomAvailable {
		return nil
	}

	res := l.db.Model(&models.Room{}).
		Where("id = ? AND version = ?", roomID, room.Version).
		Updates(map[string]interface{}{
			"state":                models.RoomAvailable,
			"version":              room.Version + 1,
			"current_tenant_id":    nil,
			"occupancy_start_date": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the version race; re-check whether the other writer already
		// landed on available.
		var fresh models.Room
		if err := l.db.First(&fresh, roomID).Error; err == nil && fresh.State == models.RoomAvailable {
			return nil
		}
		return l.Release(roomID)
	}

	l.refreshHouseFullness(room.HouseID)
	return nil
}

// MarkOccupied stamps the occupancy start on a freshly confirmed room and
// recomputes the parent house's fullness flag.
func (l *RoomLedger) MarkOccupied(roomID uint, tenantID uint, clock Clock) error {
	if err := l.Confirm(roomID, tenantID); err != nil {
		return err
	}
	now := clock.Now()
	l.db.Model(&models.Room{}).Where("id = ?", roomID).
		Update("occupancy_start_date", now)

	var room models.Room
	if err := l.db.First(&room, roomID).Error; err == nil {
		l.refreshHouseFullness(room.HouseID)
	}
	return nil
}

// refreshHouseFullness recomputes House.IsFull from current room states.
// Fullness is advisory for browsing; the ledger CAS is what prevents
// double-booking, so a stale flag here is harmless.
func (l *RoomLedger) refreshHouseFullness(houseID uint) {
	var free int64
	l.db.Model(&models.Room{}).
		Where("house_id = ? AND state = ?", houseID, models.RoomAvailable).
		Count(&free)
	l.db.Model(&models.House{}).Where("id = ?", houseID).
		Update("is_full", free == 0)
}
