package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/peaceghost-hub/EasyAccomodation/config"
	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// Notifier receives fire-and-forget events from the engines. Delivery
// failures are logged, never propagated: a lost email must not roll back the
// state change that triggered it.
type Notifier interface {
	StudentVerified(user *models.User)
	ProofRejected(user *models.User, comment string)
	EmailVerificationRequested(user *models.User, token string)
	BookingCancelled(booking *models.Booking, reason string)
}

// NotificationService sends email notices over SMTP and records an in-app
// notification row for each event.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (ns *NotificationService) StudentVerified(user *models.User) {
	ns.record(user.ID, "verification_accepted", "Account Verified",
		"Your payment was approved. You now have full access for the next verification period.")
	go ns.sendMail(user.Email, "Account Verified",
		fmt.Sprintf("Hi %s,\r\n\r\nYour proof of payment was approved and your account is now verified.\r\n", user.FullName))
}

func (ns *NotificationService) ProofRejected(user *models.User, comment string) {
	msg := "Your proof of payment was rejected."
	if comment != "" {
		msg += " Reviewer comment: " + comment
	}
	ns.record(user.ID, "verification_rejected", "Payment Proof Rejected", msg)
	go ns.sendMail(user.Email, "Payment Proof Rejected",
		fmt.Sprintf("Hi %s,\r\n\r\n%s\r\n", user.FullName, msg))
}

func (ns *NotificationService) EmailVerificationRequested(user *models.User, token string) {
	link := strings.TrimRight(config.C.FrontendBaseURL, "/") + "/verify-email?token=" + token
	go ns.sendMail(user.Email, "Verify your email",
		fmt.Sprintf("Hi %s,\r\n\r\nPlease verify your email address:\r\n%s\r\n", user.FullName, link))
}

func (ns *NotificationService) BookingCancelled(booking *models.Booking, reason string) {
	ns.record(booking.StudentID, "booking_cancelled", "Booking Cancelled",
		fmt.Sprintf("Your booking #%d was cancelled. %s", booking.ID, reason))
}

func (ns *NotificationService) record(userID uint, notifType, title, message string) {
	n := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if err := ns.db.Create(&n).Error; err != nil {
		log.Printf("Failed to record notification for user %d: %v", userID, err)
	}
}

func (ns *NotificationService) sendMail(to, subject, body string) {
	if config.C.SMTPUser == "" || config.C.SMTPPass == "" {
		log.Printf("SMTP not configured, skipping mail to %s (%s)", to, subject)
		return
	}

	from := config.C.MailFrom
	if from == "" {
		from = config.C.SMTPUser
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := config.C.SMTPHost + ":" + config.C.SMTPPort
	auth := smtp.PlainAuth("", config.C.SMTPUser, config.C.SMTPPass, config.C.SMTPHost)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		log.Printf("Failed to send mail to %s: %v", to, err)
	}
}
