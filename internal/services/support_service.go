package services

import (
	"errors"
	"time"

	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportServiceDB interface {
	CreateFeedback(feedback *models.Feedback) error
	CreateSupportTicket(ticket *models.SupportTicket) error
	GetSupportTicketByID(id uint) (*models.SupportTicket, error)
	SaveSupportTicket(ticket *models.SupportTicket) error
	ListOpenSupportTickets() ([]models.SupportTicket, error)
}

type DefaultSupportService struct {
	db *gorm.DB
}

func NewSupportServiceDB(db *gorm.DB) SupportServiceDB {
	return &DefaultSupportService{db: db}
}

func (s *DefaultSupportService) CreateFeedback(feedback *models.Feedback) error {
	return s.db.Create(feedback).Error
}

func (s *DefaultSupportService) CreateSupportTicket(ticket *models.SupportTicket) error {
	return s.db.Create(ticket).Error
}

func (s *DefaultSupportService) GetSupportTicketByID(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := s.db.Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *DefaultSupportService) SaveSupportTicket(ticket *models.SupportTicket) error {
	return s.db.Save(ticket).Error
}

func (s *DefaultSupportService) ListOpenSupportTickets() ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := s.db.Where("status = ?", "open").Order("created_at asc").Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// SupportService handles customer feedback and support tickets.
type SupportService struct {
	store SupportServiceDB
}

func NewSupportService(store SupportServiceDB) *SupportService {
	return &SupportService{store: store}
}

func (s *SupportService) SubmitFeedback(accountID uuid.UUID, rating int, comment string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.New400Error("rating must be between 1 and 5")
	}
	feedback := &models.Feedback{AccountID: accountID, Rating: rating, Comment: comment}
	if err := s.store.CreateFeedback(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *SupportService) OpenTicket(email, subject, message string) (*models.SupportTicket, error) {
	if email == "" || subject == "" || message == "" {
		return nil, apperrors.New400Error("email, subject and message are required")
	}
	ticket := &models.SupportTicket{Email: email, Subject: subject, Message: message, Status: "open"}
	if err := s.store.CreateSupportTicket(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *SupportService) ReplyToTicket(ticketID uint, reply string) (*models.SupportTicket, error) {
	if reply == "" {
		return nil, apperrors.New400Error("reply is required")
	}
	ticket, err := s.store.GetSupportTicketByID(ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New404Error("ticket not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	ticket.AdminReply = reply
	ticket.Status = "answered"
	ticket.RepliedAt = &now
	if err := s.store.SaveSupportTicket(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *SupportService) ListOpenTickets() ([]models.SupportTicket, error) {
	return s.store.ListOpenSupportTickets()
}
