package services

import (
	"testing"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/models"
)

func TestAuthorizeDenyReasons(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	gateway := NewAccessGateway(db, clock)

	noEmail := seedUnverifiedStudent(t, db, "a@test.ac.zw", false)
	emailOnly := seedUnverifiedStudent(t, db, "b@test.ac.zw", true)
	verified := seedVerifiedStudent(t, db, "c@test.ac.zw")

	cases := []struct {
		name       string
		studentID  uint
		action     string
		wantAllow  bool
		wantReason string
	}{
		{"no email verification", noEmail.ID, ActionReserve, false, ReasonEmailNotVerified},
		{"email only", emailOnly.ID, ActionReserve, false, ReasonPendingAdminVerification},
		{"fully verified", verified.ID, ActionReserve, true, ""},
		{"proof upload needs email only", emailOnly.ID, ActionUploadProof, true, ""},
		{"proof upload still needs email", noEmail.ID, ActionUploadProof, false, ReasonEmailNotVerified},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := gateway.Authorize(tc.studentID, tc.action)
			if err != nil {
				t.Fatalf("authorize: %v", err)
			}
			if decision.Allowed != tc.wantAllow {
				t.Fatalf("allowed = %v, want %v", decision.Allowed, tc.wantAllow)
			}
			if decision.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", decision.Reason, tc.wantReason)
			}
			if !decision.Allowed && decision.Message == "" {
				t.Fatal("denials must carry a user-facing message")
			}
		})
	}
}

func TestAuthorizeExpiredWindow(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	gateway := NewAccessGateway(db, clock)
	student := seedVerifiedStudent(t, db, "expiring@test.ac.zw")

	decision, err := gateway.Authorize(student.ID, ActionBrowseProtected)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow inside window, got %+v", decision)
	}

	// The flag in the row still says verified; only the clock moved.
	clock.Advance(31 * 24 * time.Hour)
	decision, err = gateway.Authorize(student.ID, ActionBrowseProtected)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected deny after window lapse")
	}
	if decision.Reason != ReasonSubscriptionExpired {
		t.Fatalf("reason = %q, want %q", decision.Reason, ReasonSubscriptionExpired)
	}

	var user models.User
	db.First(&user, student.ID)
	if !user.AdminVerified {
		t.Fatal("gateway must not mutate the user row")
	}
}
