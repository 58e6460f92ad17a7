package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// Review decisions for payment proofs.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// VerificationEngine tracks a student's email-verified and admin-verified
// state. Admin verification is a rolling window: accepting a payment proof
// stamps the verified-at time and an expiry, and access derivation always
// re-checks the expiry against the clock instead of trusting the flag.
type VerificationEngine struct {
	db              *gorm.DB
	clock           Clock
	window          time.Duration
	subscriptionFee float64
	notifier        Notifier
	changes         *ChangeTracker
}

func NewVerificationEngine(db *gorm.DB, clock Clock, window time.Duration, subscriptionFee float64, notifier Notifier, changes *ChangeTracker) *VerificationEngine {
	return &VerificationEngine{db: db, clock: clock, window: window, subscriptionFee: subscriptionFee, notifier: notifier, changes: changes}
}

func (v *VerificationEngine) loadUser(userID uint) (*models.User, error) {
	var user models.User
	if err := v.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &user, nil
}

// EmailVerify marks the student's email as verified. Idempotent: repeat calls
// keep the original verified-at timestamp.
func (v *VerificationEngine) EmailVerify(studentID uint) error {
	user, err := v.loadUser(studentID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	now := v.clock.Now()
	res := v.db.Model(&models.User{}).Where("id = ?", studentID).
		Updates(map[string]interface{}{
			"email_verified":    true,
			"email_verified_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}

	v.changes.Bump(studentID)
	return nil
}

// RecordProof stores a freshly uploaded payment proof as pending review. The
// reference is the opaque id handed back by the upload store; the engine
// never sees file bytes.
func (v *VerificationEngine) RecordProof(studentID uint, reference, imageURL string) (*models.PaymentProof, error) {
	if _, err := v.loadUser(studentID); err != nil {
		return nil, err
	}

	proof := models.PaymentProof{
		UserID:     studentID,
		Reference:  reference,
		ImageURL:   imageURL,
		Status:     models.ProofPending,
		UploadedAt: v.clock.Now(),
	}
	if err := v.db.Create(&proof).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &proof, nil
}

// ReviewProof records the reviewer's decision. Accepting sets the student's
// admin verification and restarts the rolling window from now — it does not
// stack onto any previous window. Proofs are terminal once reviewed.
func (v *VerificationEngine) ReviewProof(proofID uint, decision string, reviewerID uint, comment string) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	if err := v.db.First(&proof, proofID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("proof %d: %w", proofID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if proof.Status != models.ProofPending {
		return nil, ErrProofAlreadyReviewed
	}

	now := v.clock.Now()
	status := models.ProofRejected
	if decision == DecisionAccept {
		status = models.ProofAccepted
	} else if decision != DecisionReject {
		return nil, fmt.Errorf("decision must be accept or reject: %w", ErrInvalidTransition)
	}

	// Guard with the pending status so two concurrent reviews resolve to one.
	res := v.db.Model(&models.PaymentProof{}).
		Where("id = ? AND status = ?", proofID, models.ProofPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"comment":     comment,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProofAlreadyReviewed
	}

	user, err := v.loadUser(proof.UserID)
	if err != nil {
		return nil, err
	}

	if status == models.ProofAccepted {
		expires := now.Add(v.window)
		res := v.db.Model(&models.User{}).Where("id = ?", proof.UserID).
			Updates(map[string]interface{}{
				"admin_verified":            true,
				"admin_verified_at":         now,
				"admin_verified_expires_at": expires,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
		}
		// The accepted proof is the completion of the subscription payment;
		// ledger it against the proof's reference. Best-effort: the
		// verification itself is already committed.
		v.db.Create(&models.Payment{
			PaymentType: models.PaymentSubscription,
			PayerID:     proof.UserID,
			RecipientID: &reviewerID,
			Amount:      v.subscriptionFee,
			Status:      models.PaymentCompleted,
			Reference:   proof.Reference,
			PaidAt:      &now,
		})
		if v.notifier != nil {
			v.notifier.StudentVerified(user)
		}
	} else if v.notifier != nil {
		v.notifier.ProofRejected(user, comment)
	}

	v.changes.Bump(proof.UserID)

	if err := v.db.First(&proof, proofID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &proof, nil
}

// IsAccessGranted is the single source of truth for full access:
// email verified AND admin verified AND the window has not lapsed.
func (v *VerificationEngine) IsAccessGranted(studentID uint, now time.Time) (bool, error) {
	user, err := v.loadUser(studentID)
	if err != nil {
		return false, err
	}
	granted := user.EmailVerified &&
		user.AdminVerified &&
		user.AdminVerifiedExpiresAt != nil &&
		now.Before(*user.AdminVerifiedExpiresAt)
	return granted, nil
}

// ToggleAdminVerification is the manual operational override. Enabling starts
// a fresh window from now; disabling clears all three verification fields so
// no stale future expiry can sneak access back in.
func (v *VerificationEngine) ToggleAdminVerification(studentID uint, adminID uint) (*models.User, error) {
	user, err := v.loadUser(studentID)
	if err != nil {
		return nil, err
	}

	now := v.clock.Now()
	var updates map[string]interface{}
	if user.AdminVerified {
		updates = map[string]interface{}{
			"admin_verified":            false,
			"admin_verified_at":         nil,
			"admin_verified_expires_at": nil,
		}
	} else {
		updates = map[string]interface{}{
			"admin_verified":            true,
			"admin_verified_at":         now,
			"admin_verified_expires_at": now.Add(v.window),
		}
	}

	res := v.db.Model(&models.User{}).Where("id = ?", studentID).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}

	v.changes.Bump(studentID)

	return v.loadUser(studentID)
}

// SweepLapsedVerifications clears the admin-verified flag on users whose
// window has passed. Optional and purely for reporting freshness: access
// decisions never rely on it because IsAccessGranted re-derives expiry.
func (v *VerificationEngine) SweepLapsedVerifications(now time.Time) (int64, error) {
	res := v.db.Model(&models.User{}).
		Where("admin_verified = ? AND admin_verified_expires_at <= ?", true, now).
		Update("admin_verified", false)
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
