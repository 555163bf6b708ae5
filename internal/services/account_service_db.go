package services

import (
	"pet_portrait_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountServiceDB interface {
	GetAccountByAuthID(authID string) (*models.Account, error)
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByID(id uuid.UUID) (*models.Account, error)
	CreateAccount(account *models.Account) error
	SaveAccount(account *models.Account) error
	ListAccountsByStatus(status string) ([]models.Account, error)
}

type DefaultAccountService struct {
	db *gorm.DB
}

func NewAccountServiceDB(db *gorm.DB) AccountServiceDB {
	return &DefaultAccountService{db: db}
}

func (s *DefaultAccountService) GetAccountByAuthID(authID string) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("auth_id = ?", authID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *DefaultAccountService) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *DefaultAccountService) GetAccountByID(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *DefaultAccountService) CreateAccount(account *models.Account) error {
	return s.db.Create(account).Error
}

func (s *DefaultAccountService) SaveAccount(account *models.Account) error {
	return s.db.Save(account).Error
}

func (s *DefaultAccountService) ListAccountsByStatus(status string) ([]models.Account, error) {
	var accounts []models.Account
	query := s.db.Order("created_at desc")
	switch status {
	case "waitlisted":
		query = query.Where("is_waitlisted = ? AND is_admin = ?", true, false)
	case "allowlisted":
		query = query.Where("is_allowlisted = ?", true)
	}
	err := query.Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
