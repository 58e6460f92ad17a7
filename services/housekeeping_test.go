package services

import (
	"errors"
	"testing"

	"github.com/peaceghost-hub/EasyAccomodation/models"
)

func TestPreviewDeleteImpact(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := newTestEngine(db, clock)
	svc := NewHousekeepingService(db, NewRoomLedger(db), nil, clock)

	student := seedVerifiedStudent(t, db, "impact@test.ac.zw")
	house, room := seedHouseWithRoom(t, db, nil)

	booking, err := engine.Reserve(ReserveInput{StudentID: student.ID, RoomID: room.ID})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	impact, err := svc.PreviewDeleteImpact(house.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if impact.RoomCount != 1 {
		t.Fatalf("room count = %d, want 1", impact.RoomCount)
	}
	if len(impact.ActiveBookings) != 1 || impact.ActiveBookings[0].ID != booking.ID {
		t.Fatalf("expected the live hold in the impact, got %+v", impact.ActiveBookings)
	}

	// Preview is read-only.
	var fresh models.Booking
	db.First(&fresh, booking.ID)
	if fresh.BookingType != models.BookingReserved {
		t.Fatalf("preview mutated the booking: %s", fresh.BookingType)
	}
}

func TestDeleteHouseRefusedWithoutForce(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := newTestEngine(db, clock)
	svc := NewHousekeepingService(db, NewRoomLedger(db), nil, clock)

	student := seedVerifiedStudent(t, db, "blocked@test.ac.zw")
	house, room := seedHouseWithRoom(t, db, nil)

	booking, err := engine.Reserve(ReserveInput{StudentID: student.ID, RoomID: room.ID})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := engine.Confirm(booking.ID, student.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	impact, delErr := svc.DeleteHouse(house.ID, false)
	if !errors.Is(delErr, ErrActiveBookings) {
		t.Fatalf("expected ErrActiveBookings, got %v", delErr)
	}
	if impact == nil || len(impact.ActiveBookings) != 1 {
		t.Fatalf("refusal must list the blocking bookings, got %+v", impact)
	}

	// Nothing was deleted.
	var count int64
	db.Model(&models.House{}).Where("id = ?", house.ID).Count(&count)
	if count != 1 {
		t.Fatal("house must survive a refused delete")
	}
}

func TestDeleteHouseWithForce(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := newTestEngine(db, clock)
	notifier := NewNotificationService(db)
	svc := NewHousekeepingService(db, NewRoomLedger(db), notifier, clock)

	student := seedVerifiedStudent(t, db, "forced@test.ac.zw")
	house, room := seedHouseWithRoom(t, db, nil)

	if _, err := engine.Reserve(ReserveInput{StudentID: student.ID, RoomID: room.ID}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	impact, err := svc.DeleteHouse(house.ID, true)
	if err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if len(impact.ActiveBookings) != 1 {
		t.Fatalf("impact should report the cancelled booking, got %d", len(impact.ActiveBookings))
	}

	var houses, rooms, bookings int64
	db.Model(&models.House{}).Where("id = ?", house.ID).Count(&houses)
	db.Model(&models.Room{}).Where("house_id = ?", house.ID).Count(&rooms)
	db.Model(&models.Booking{}).Where("house_id = ?", house.ID).Count(&bookings)
	if houses != 0 || rooms != 0 || bookings != 0 {
		t.Fatalf("force delete left rows behind: houses=%d rooms=%d bookings=%d", houses, rooms, bookings)
	}

	// The affected student got an in-app notification before the rows went.
	var notes int64
	db.Model(&models.Notification{}).Where("user_id = ?", student.ID).Count(&notes)
	if notes == 0 {
		t.Fatal("expected a cancellation notification for the student")
	}
}

func TestDeleteHouseNoBookings(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	svc := NewHousekeepingService(db, NewRoomLedger(db), nil, clock)

	house, _ := seedHouseWithRoom(t, db, nil)

	if _, err := svc.DeleteHouse(house.ID, false); err != nil {
		t.Fatalf("delete without bookings should not need force: %v", err)
	}

	if _, err := svc.PreviewDeleteImpact(house.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
