package services

import (
	"errors"
	"testing"

	"github.com/peaceghost-hub/EasyAccomodation/models"
)

func TestInquiryLifecycle(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	svc := NewInquiryService(db, NewAccessGateway(db, clock), clock)

	student := seedVerifiedStudent(t, db, "asker@test.ac.zw")
	owner := seedOwner(t, db, "answerer@test.ac.zw")
	house, room := seedHouseWithRoom(t, db, &owner.ID)

	inquiry, err := svc.Send(InquiryInput{
		StudentID: student.ID,
		HouseID:   house.ID,
		Subject:   "Water situation",
		Message:   "Does the house have borehole water?",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inquiry.Status != models.InquiryPending {
		t.Fatalf("expected pending, got %s", inquiry.Status)
	}

	// Only the house owner may respond.
	stranger := seedOwner(t, db, "stranger2@test.ac.zw")
	if _, err := svc.Verify(inquiry.ID, Actor{UserID: stranger.ID, Role: models.RoleHouseOwner}, "yes"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	verified, err := svc.Verify(inquiry.ID, Actor{UserID: owner.ID, Role: models.RoleHouseOwner}, "Yes, borehole plus council water.")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Status != models.InquiryVerified {
		t.Fatalf("expected verified, got %s", verified.Status)
	}
	if verified.Response == "" || verified.ResponseDate == nil {
		t.Fatal("response not recorded")
	}

	// Verifying twice is refused.
	if _, err := svc.Verify(inquiry.ID, Actor{UserID: owner.ID, Role: models.RoleHouseOwner}, "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Inquiries never touch room state.
	if state := roomState(t, db, room.ID); state != models.RoomAvailable {
		t.Fatalf("inquiry must not touch rooms, got %s", state)
	}
}

func TestInquiryRequiresVerifiedStudent(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	svc := NewInquiryService(db, NewAccessGateway(db, clock), clock)

	pending := seedUnverifiedStudent(t, db, "pending2@test.ac.zw", true)
	house, _ := seedHouseWithRoom(t, db, nil)

	_, err := svc.Send(InquiryInput{StudentID: pending.ID, HouseID: house.ID, Subject: "s", Message: "m"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestInquiryCancelIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	svc := NewInquiryService(db, NewAccessGateway(db, clock), clock)

	student := seedVerifiedStudent(t, db, "canceller@test.ac.zw")
	house, _ := seedHouseWithRoom(t, db, nil)

	inquiry, err := svc.Send(InquiryInput{StudentID: student.ID, HouseID: house.ID, Subject: "s", Message: "m"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	actor := Actor{UserID: student.ID, Role: models.RoleStudent}
	cancelled, err := svc.Cancel(inquiry.ID, actor)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.InquiryCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	again, err := svc.Cancel(inquiry.ID, actor)
	if err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if again.Status != models.InquiryCancelled {
		t.Fatalf("expected cancelled to stick, got %s", again.Status)
	}
}
