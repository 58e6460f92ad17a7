package services

import (
	"errors"
	"fmt"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/gorm"
)

// InquiryService handles pre-booking questions between students and house
// owners. Inquiries never touch room state; verifying one is purely a
// conversation marker, not a reservation.
type InquiryService struct {
	db      *gorm.DB
	gateway *AccessGateway
	clock   Clock
}

func NewInquiryService(db *gorm.DB, gateway *AccessGateway, clock Clock) *InquiryService {
	return &InquiryService{db: db, gateway: gateway, clock: clock}
}

type InquiryInput struct {
	StudentID uint
	HouseID   uint
	Subject   string
	Message   string
}

func (s *InquiryService) Send(input InquiryInput) (*models.BookingInquiry, error) {
	decision, err := s.gateway.Authorize(input.StudentID, ActionSendInquiry)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%s: %w", decision.Message, ErrNotAuthorized)
	}

	var house models.House
	if err := s.db.First(&house, input.HouseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("house %d: %w", input.HouseID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	inquiry := models.BookingInquiry{
		StudentID: input.StudentID,
		HouseID:   input.HouseID,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    models.InquiryPending,
	}
	if err := s.db.Create(&inquiry).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &inquiry, nil
}

// Verify lets the house owner acknowledge an inquiry with a response.
// Only the owner of the inquiry's house (or an admin) may respond.
func (s *InquiryService) Verify(inquiryID uint, actor Actor, response string) (*models.BookingInquiry, error) {
	inquiry, err := s.load(inquiryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(inquiry, actor); err != nil {
		return nil, err
	}
	if inquiry.Status != models.InquiryPending {
		return nil, fmt.Errorf("inquiry already %s: %w", inquiry.Status, ErrInvalidTransition)
	}

	now := s.clock.Now()
	res := s.db.Model(&models.BookingInquiry{}).
		Where("id = ? AND status = ?", inquiryID, models.InquiryPending).
		Updates(map[string]interface{}{
			"status":        models.InquiryVerified,
			"response":      response,
			"response_date": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	return s.load(inquiryID)
}

// Cancel withdraws an inquiry. The student who sent it, the house owner, or
// an admin may cancel; cancelling an already-cancelled inquiry is a no-op.
func (s *InquiryService) Cancel(inquiryID uint, actor Actor) (*models.BookingInquiry, error) {
	inquiry, err := s.load(inquiryID)
	if err != nil {
		return nil, err
	}

	allowed := actor.Role == models.RoleAdmin || actor.UserID == inquiry.StudentID
	if !allowed {
		if err := s.requireOwner(inquiry, actor); err != nil {
			return nil, err
		}
	}

	if inquiry.Status == models.InquiryCancelled {
		return inquiry, nil
	}

	res := s.db.Model(&models.BookingInquiry{}).
		Where("id = ? AND status <> ?", inquiryID, models.InquiryCancelled).
		Update("status", models.InquiryCancelled)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return s.load(inquiryID)
}

func (s *InquiryService) ForStudent(studentID uint) ([]models.BookingInquiry, error) {
	var inquiries []models.BookingInquiry
	err := s.db.Preload("House").Where("student_id = ?", studentID).
		Order("created_at DESC").Find(&inquiries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return inquiries, nil
}

func (s *InquiryService) ForHouse(houseID uint) ([]models.BookingInquiry, error) {
	var inquiries []models.BookingInquiry
	err := s.db.Preload("Student").Where("house_id = ?", houseID).
		Order("created_at DESC").Find(&inquiries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return inquiries, nil
}

func (s *InquiryService) load(inquiryID uint) (*models.BookingInquiry, error) {
	var inquiry models.BookingInquiry
	if err := s.db.First(&inquiry, inquiryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inquiry %d: %w", inquiryID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &inquiry, nil
}

func (s *InquiryService) requireOwner(inquiry *models.BookingInquiry, actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	var house models.House
	if err := s.db.First(&house, inquiry.HouseID).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if house.OwnerID == nil || *house.OwnerID != actor.UserID {
		return ErrNotAuthorized
	}
	return nil
}
