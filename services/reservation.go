package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// Actor identifies who is performing a booking operation.
type Actor struct {
	UserID uint
	Role   string // student, house_owner, admin
}

// ReservationEngine drives the booking state machine:
//
//	reserved -(confirm)-> confirmed
//	reserved -(expire|cancel)-> expired|cancelled
//	confirmed -(cancel)-> cancelled
//
// No transition leaves cancelled or expired. Each booking row carries a
// version column; every transition is a compare-and-swap on type+version so
// a confirm racing the expiry sweep resolves to exactly one winner.
type ReservationEngine struct {
	db             *gorm.DB
	ledger         *RoomLedger
	gateway        *AccessGateway
	clock          Clock
	holdDuration   time.Duration
	maxConsecutive int
	changes        *ChangeTracker
}

func NewReservationEngine(db *gorm.DB, ledger *RoomLedger, gateway *AccessGateway, clock Clock, holdDuration time.Duration, maxConsecutive int, changes *ChangeTracker) *ReservationEngine {
	return &ReservationEngine{
		db:             db,
		ledger:         ledger,
		gateway:        gateway,
		clock:          clock,
		holdDuration:   holdDuration,
		maxConsecutive: maxConsecutive,
		changes:        changes,
	}
}

type ReserveInput struct {
	StudentID  uint
	RoomID     uint
	MoveInDate *time.Time
	Notes      string
}

// Reserve places a hold on a room for later payment. The hold expires after
// the configured window unless confirmed. On RoomNotAvailable no partial
// state is created.
func (e *ReservationEngine) Reserve(in ReserveInput) (*models.Booking, error) {
	decision, err := e.gateway.Authorize(in.StudentID, ActionReserve)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%s: %w", decision.Message, ErrNotAuthorized)
	}

	var room models.Room
	if err := e.db.First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room %d: %w", in.RoomID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var profile models.StudentProfile
	hasProfile := e.db.Where("user_id = ?", in.StudentID).First(&profile).Error == nil
	if hasProfile && e.maxConsecutive > 0 && profile.ConsecutiveBookingCount >= e.maxConsecutive {
		return nil, fmt.Errorf("maximum of %d consecutive unpaid holds: %w", e.maxConsecutive, ErrBookingLimitReached)
	}

	if err := e.ledger.TryReserve(in.RoomID); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	expires := now.Add(e.holdDuration)
	booking := models.Booking{
		StudentID:   in.StudentID,
		HouseID:     room.HouseID,
		RoomID:      in.RoomID,
		BookingType: models.BookingReserved,
		ExpiresAt:   &expires,
		MoveInDate:  in.MoveInDate,
		Notes:       in.Notes,
	}
	if err := e.db.Create(&booking).Error; err != nil {
		// Undo the hold so the failed create leaves no partial state.
		e.ledger.Release(in.RoomID)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if hasProfile {
		e.db.Model(&models.StudentProfile{}).Where("id = ?", profile.ID).
			Updates(map[string]interface{}{
				"consecutive_booking_count": profile.ConsecutiveBookingCount + 1,
				"last_booking_date":         now,
			})
	}

	e.changes.Bump(in.StudentID)
	return &booking, nil
}

// Confirm converts a hold into a durable occupancy. Only the owning student
// (or the payment-completion path acting for them) may confirm, and only
// while the hold is still live: expiry is checked here even if the sweep has
// not run yet.
func (e *ReservationEngine) Confirm(bookingID uint, studentID uint) (*models.Booking, error) {
	decision, err := e.gateway.Authorize(studentID, ActionConfirm)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%s: %w", decision.Message, ErrNotAuthorized)
	}

	var booking models.Booking
	if err := e.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if booking.StudentID != studentID {
		return nil, ErrNotAuthorized
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if booking.BookingType != models.BookingReserved {
		return nil, ErrAlreadyTerminal
	}

	now := e.clock.Now()
	if booking.HoldExpired(now) {
		// Lazily finish what the sweep would have done, then report expiry.
		if e.transition(&booking, models.BookingExpired, map[string]interface{}{}) {
			e.ledger.Release(booking.RoomID)
		}
		return nil, ErrReservationExpired
	}

	if !e.transition(&booking, models.BookingConfirmed, map[string]interface{}{
		"is_paid":    true,
		"expires_at": nil,
	}) {
		// Lost the race against the sweep or a cancel.
		var fresh models.Booking
		if err := e.db.First(&fresh, bookingID).Error; err == nil && fresh.BookingType == models.BookingExpired {
			return nil, ErrReservationExpired
		}
		return nil, ErrAlreadyTerminal
	}

	if err := e.ledger.MarkOccupied(booking.RoomID, studentID, e.clock); err != nil {
		return nil, err
	}

	// Paying resets the consecutive unpaid-hold counter.
	e.db.Model(&models.StudentProfile{}).Where("user_id = ?", studentID).
		Update("consecutive_booking_count", 0)

	e.recordRentalPayment(&booking, studentID, now)

	e.changes.Bump(studentID)

	// Re-load into a fresh struct: gorm leaves a populated pointer field
	// untouched when scanning a NULL column, so reusing `booking` would
	// return the stale pre-confirm expiry.
	var confirmed models.Booking
	if err := e.db.First(&confirmed, bookingID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &confirmed, nil
}

// recordRentalPayment writes the room-rental payment ledger row for a
// confirmed booking. Best-effort like the counter reset above: the booking is
// already confirmed, so a failed write must not unwind the transition.
func (e *ReservationEngine) recordRentalPayment(b *models.Booking, studentID uint, now time.Time) {
	var room models.Room
	if err := e.db.First(&room, b.RoomID).Error; err != nil {
		return
	}
	var recipient *uint
	var house models.House
	if err := e.db.First(&house, b.HouseID).Error; err == nil {
		recipient = house.OwnerID
	}
	e.db.Create(&models.Payment{
		PaymentType: models.PaymentRoomRental,
		PayerID:     studentID,
		RecipientID: recipient,
		Amount:      room.PricePerMonth,
		Status:      models.PaymentCompleted,
		BookingID:   &b.ID,
		HouseID:     &b.HouseID,
		RoomID:      &b.RoomID,
		PaidAt:      &now,
	})
}

// Cancel terminates a hold or a confirmed booking and frees the room. Allowed
// for the booking's student, the house owner, or an admin. A second cancel
// reports ErrAlreadyTerminal.
func (e *ReservationEngine) Cancel(bookingID uint, actor Actor, reason string) (*models.Booking, error) {
	var booking models.Booking
	if err := e.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !e.canCancel(&booking, actor) {
		return nil, ErrNotAuthorized
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	if reason == "" {
		reason = "Cancelled by " + actor.Role
	}
	if !e.transition(&booking, models.BookingCancelled, map[string]interface{}{
		"cancellation_reason": reason,
		"expires_at":          nil,
	}) {
		return nil, ErrAlreadyTerminal
	}

	if err := e.ledger.Release(booking.RoomID); err != nil {
		return nil, err
	}

	e.changes.Bump(booking.StudentID)

	// Fresh struct for the same reason as Confirm: the nulled expires_at
	// column would not clear the pointer already held by `booking`.
	var cancelled models.Booking
	if err := e.db.First(&cancelled, bookingID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &cancelled, nil
}

// SweepExpired transitions every lapsed hold to expired and frees its room.
// Safe to run concurrently with Confirm/Cancel: the per-booking CAS means a
// booking swept here can no longer be confirmed, and vice versa.
func (e *ReservationEngine) SweepExpired(now time.Time) ([]models.Booking, error) {
	var lapsed []models.Booking
	err := e.db.Where("booking_type = ? AND expires_at <= ?", models.BookingReserved, now).
		Find(&lapsed).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var swept []models.Booking
	for i := range lapsed {
		b := lapsed[i]
		if !e.transition(&b, models.BookingExpired, map[string]interface{}{}) {
			continue // confirmed or cancelled since we read it
		}
		if err := e.ledger.Release(b.RoomID); err != nil {
			return swept, err
		}
		e.changes.Bump(b.StudentID)
		b.BookingType = models.BookingExpired
		swept = append(swept, b)
	}
	return swept, nil
}

// BookingsForStudent lists a student's bookings, lazily expiring any lapsed
// holds on the way out so readers never see a live-looking dead hold.
func (e *ReservationEngine) BookingsForStudent(studentID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := e.db.Preload("Room").Preload("House").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	e.ExpireLapsed(bookings)
	return bookings, nil
}

// ExpireLapsed applies the lazy-expiry pass to an already loaded slice: every
// lapsed hold is transitioned and its room released, and the in-memory copy is
// marked expired either way. Listings that query bookings directly (owner and
// admin views) run their results through here so a dead hold never renders as
// live.
func (e *ReservationEngine) ExpireLapsed(bookings []models.Booking) {
	now := e.clock.Now()
	for i := range bookings {
		if bookings[i].HoldExpired(now) {
			if e.transition(&bookings[i], models.BookingExpired, map[string]interface{}{}) {
				e.ledger.Release(bookings[i].RoomID)
			}
			bookings[i].BookingType = models.BookingExpired
		}
	}
}

// transition performs the single authoritative CAS for a booking: it succeeds
// only if the row still has the type and version we read.
func (e *ReservationEngine) transition(b *models.Booking, to string, extra map[string]interface{}) bool {
	updates := map[string]interface{}{
		"booking_type": to,
		"version":      b.Version + 1,
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := e.db.Model(&models.Booking{}).
		Where("id = ? AND booking_type = ? AND version = ?", b.ID, b.BookingType, b.Version).
		Updates(updates)
	return res.Error == nil && res.RowsAffected == 1
}

func (e *ReservationEngine) canCancel(b *models.Booking, actor Actor) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if b.StudentID == actor.UserID {
		return true
	}
	if actor.Role == models.RoleHouseOwner {
		var house models.House
		if err := e.db.First(&house, b.HouseID).Error; err == nil &&
			house.OwnerID != nil && *house.OwnerID == actor.UserID {
			return true
		}
	}
	return false
}
