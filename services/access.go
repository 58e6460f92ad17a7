package services

import (
	"errors"
	"fmt"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// Actions a student can be gated on. Browsing protected listings, reserving
// and confirming all need the full derived grant; uploading a payment proof
// only needs a verified email (that is how an unverified student becomes
// verified in the first place).
const (
	ActionBrowseProtected = "browse_protected"
	ActionReserve         = "reserve"
	ActionConfirm         = "confirm"
	ActionSendInquiry     = "send_inquiry"
	ActionUploadProof     = "upload_proof"
)

// Deny reasons. These are the only place booking-access messaging is decided;
// the HTTP layer renders them verbatim.
const (
	ReasonEmailNotVerified         = "EmailNotVerified"
	ReasonPendingAdminVerification = "PendingAdminVerification"
	ReasonSubscriptionExpired      = "SubscriptionExpired"
)

var denyMessages = map[string]string{
	ReasonEmailNotVerified:         "Please verify your email before accessing booking features.",
	ReasonPendingAdminVerification: "Account pending admin verification. Upload proof of payment and wait for admin approval.",
	ReasonSubscriptionExpired:      "Your verification has expired. Upload a new proof of payment to renew access.",
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Message: denyMessages[reason]}
}

// AccessGateway composes the verification engine's derived state into
// allow/deny decisions for inbound requests.
type AccessGateway struct {
	db    *gorm.DB
	clock Clock
}

func NewAccessGateway(db *gorm.DB, clock Clock) *AccessGateway {
	return &AccessGateway{db: db, clock: clock}
}

// Authorize decides whether the student may perform the action now. The
// admin-verified flag is never trusted on its own: the expiry timestamp is
// re-derived on every call.
func (g *AccessGateway) Authorize(studentID uint, action string) (Decision, error) {
	var user models.User
	if err := g.db.First(&user, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !user.EmailVerified {
		return deny(ReasonEmailNotVerified), nil
	}

	if action == ActionUploadProof {
		return Decision{Allowed: true}, nil
	}

	if !user.AdminVerified || user.AdminVerifiedAt == nil {
		return deny(ReasonPendingAdminVerification), nil
	}
	if user.AdminVerifiedExpiresAt == nil || !g.clock.Now().Before(*user.AdminVerifiedExpiresAt) {
		return deny(ReasonSubscriptionExpired), nil
	}

	return Decision{Allowed: true}, nil
}
