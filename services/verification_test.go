package services

import (
	"errors"
	"testing"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/models"
)

const testWindow = 30 * 24 * time.Hour

func TestEmailVerifyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedUnverifiedStudent(t, db, "fresh@test.ac.zw", false)

	if err := engine.EmailVerify(student.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}

	var user models.User
	db.First(&user, student.ID)
	if !user.EmailVerified || user.EmailVerifiedAt == nil {
		t.Fatal("email verification not recorded")
	}
	firstStamp := *user.EmailVerifiedAt

	clock.Advance(time.Hour)
	if err := engine.EmailVerify(student.ID); err != nil {
		t.Fatalf("repeat verify: %v", err)
	}

	db.First(&user, student.ID)
	if !user.EmailVerifiedAt.Equal(firstStamp) {
		t.Fatal("repeat verify must keep the original timestamp")
	}
}

func TestReviewProofAcceptStartsWindow(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedUnverifiedStudent(t, db, "payer@test.ac.zw", true)

	proof, err := engine.RecordProof(student.ID, "ref-001", "https://img.example/proof.png")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if proof.Status != models.ProofPending {
		t.Fatalf("expected pending, got %s", proof.Status)
	}

	reviewed, err := engine.ReviewProof(proof.ID, DecisionAccept, 99, "looks good")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.ProofAccepted {
		t.Fatalf("expected accepted, got %s", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != 99 {
		t.Fatal("reviewer not recorded")
	}

	var user models.User
	db.First(&user, student.ID)
	if !user.AdminVerified {
		t.Fatal("acceptance must set admin verification")
	}
	if user.AdminVerifiedExpiresAt == nil || !user.AdminVerifiedExpiresAt.Equal(testBase.Add(testWindow)) {
		t.Fatalf("window must run %v from acceptance, got %v", testWindow, user.AdminVerifiedExpiresAt)
	}

	// Proofs are terminal once reviewed.
	if _, err := engine.ReviewProof(proof.ID, DecisionReject, 99, ""); !errors.Is(err, ErrProofAlreadyReviewed) {
		t.Fatalf("expected ErrProofAlreadyReviewed, got %v", err)
	}
}

func TestReviewProofAcceptRecordsSubscriptionPayment(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedUnverifiedStudent(t, db, "subscriber@test.ac.zw", true)

	proof, err := engine.RecordProof(student.ID, "ref-sub-1", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := engine.ReviewProof(proof.ID, DecisionAccept, 99, ""); err != nil {
		t.Fatalf("review: %v", err)
	}

	var payments []models.Payment
	if err := db.Where("payer_id = ?", student.ID).Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(payments))
	}
	p := payments[0]
	if p.PaymentType != models.PaymentSubscription {
		t.Fatalf("expected subscription, got %s", p.PaymentType)
	}
	if p.Amount != 50 {
		t.Fatalf("expected fee 50, got %v", p.Amount)
	}
	if p.Reference != proof.Reference {
		t.Fatalf("payment must carry the proof reference, got %q", p.Reference)
	}
	if p.RecipientID == nil || *p.RecipientID != 99 {
		t.Fatalf("payment not credited to the reviewing admin: %v", p.RecipientID)
	}

	// A rejected proof leaves no money trail.
	other := seedUnverifiedStudent(t, db, "declined@test.ac.zw", true)
	rejected, _ := engine.RecordProof(other.ID, "ref-sub-2", "")
	if _, err := engine.ReviewProof(rejected.ID, DecisionReject, 99, "unreadable"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	var count int64
	db.Model(&models.Payment{}).Where("payer_id = ?", other.ID).Count(&count)
	if count != 0 {
		t.Fatalf("rejected proof must not create a payment, got %d", count)
	}
}

func TestReviewProofRejectLeavesVerificationAlone(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedUnverifiedStudent(t, db, "rejected@test.ac.zw", true)

	proof, err := engine.RecordProof(student.ID, "ref-002", "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	reviewed, err := engine.ReviewProof(proof.ID, DecisionReject, 99, "unreadable receipt")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.ProofRejected {
		t.Fatalf("expected rejected, got %s", reviewed.Status)
	}
	if reviewed.Comment != "unreadable receipt" {
		t.Fatalf("comment not stored: %q", reviewed.Comment)
	}

	var user models.User
	db.First(&user, student.ID)
	if user.AdminVerified || user.AdminVerifiedExpiresAt != nil {
		t.Fatal("rejection must not grant verification")
	}
}

func TestReAcceptRestartsWindowFromNow(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedUnverifiedStudent(t, db, "renewer@test.ac.zw", true)

	first, _ := engine.RecordProof(student.ID, "ref-r1", "")
	if _, err := engine.ReviewProof(first.ID, DecisionAccept, 99, ""); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	// Renew 20 days in: the window restarts, it does not stack.
	clock.Advance(20 * 24 * time.Hour)
	second, _ := engine.RecordProof(student.ID, "ref-r2", "")
	if _, err := engine.ReviewProof(second.ID, DecisionAccept, 99, ""); err != nil {
		t.Fatalf("second accept: %v", err)
	}

	var user models.User
	db.First(&user, student.ID)
	want := clock.Now().Add(testWindow)
	if user.AdminVerifiedExpiresAt == nil || !user.AdminVerifiedExpiresAt.Equal(want) {
		t.Fatalf("expected window restart at %v, got %v", want, user.AdminVerifiedExpiresAt)
	}
}

func TestIsAccessGrantedDerivesExpiry(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedVerifiedStudent(t, db, "derived@test.ac.zw")

	granted, err := engine.IsAccessGranted(student.ID, testBase)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !granted {
		t.Fatal("expected access inside the window")
	}

	// Past the window the stale AdminVerified flag must not grant access,
	// even though no sweep has cleared it.
	after := testBase.Add(31 * 24 * time.Hour)
	granted, err = engine.IsAccessGranted(student.ID, after)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if granted {
		t.Fatal("expired window must deny access regardless of the flag")
	}
}

func TestToggleAdminVerification(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedVerifiedStudent(t, db, "toggled@test.ac.zw")

	// Disable: all three verification fields are cleared so no stale future
	// expiry can sneak access back in.
	user, err := engine.ToggleAdminVerification(student.ID, 99)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if user.AdminVerified || user.AdminVerifiedAt != nil || user.AdminVerifiedExpiresAt != nil {
		t.Fatalf("toggle off must clear verification fields: %+v", user)
	}
	if granted, _ := engine.IsAccessGranted(student.ID, testBase); granted {
		t.Fatal("access must be denied after toggle off")
	}

	// Enable: a fresh window starts from now.
	user, err = engine.ToggleAdminVerification(student.ID, 99)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !user.AdminVerified {
		t.Fatal("toggle on must set the flag")
	}
	want := clock.Now().Add(testWindow)
	if user.AdminVerifiedExpiresAt == nil || !user.AdminVerifiedExpiresAt.Equal(want) {
		t.Fatalf("expected fresh window to %v, got %v", want, user.AdminVerifiedExpiresAt)
	}
}

func TestSweepLapsedVerifications(t *testing.T) {
	db := newTestDB(t)
	clock := &fakeClock{now: testBase}
	engine := NewVerificationEngine(db, clock, testWindow, 50, nil, nil)
	student := seedVerifiedStudent(t, db, "lapser@test.ac.zw")

	cleared, err := engine.SweepLapsedVerifications(testBase.Add(31 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared, got %d", cleared)
	}

	var user models.User
	db.First(&user, student.ID)
	if user.AdminVerified {
		t.Fatal("sweep must clear the lapsed flag")
	}
}
