package services_test

import (
	"context"
	"time"

	"pet_portrait_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAccountServiceDB struct {
	mock.Mock
}

func (m *MockAccountServiceDB) GetAccountByAuthID(authID string) (*models.Account, error) {
	args := m.Called(authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountServiceDB) GetAccountByEmail(email string) (*models.Account, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountServiceDB) GetAccountByID(id uuid.UUID) (*models.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountServiceDB) CreateAccount(account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountServiceDB) SaveAccount(account *models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountServiceDB) ListAccountsByStatus(status string) ([]models.Account, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

type MockUsageServiceDB struct {
	mock.Mock
}

func (m *MockUsageServiceDB) GetUsageCounter(identityKey string, day time.Time) (*models.UsageCounter, error) {
	args := m.Called(identityKey, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageCounter), args.Error(1)
}

func (m *MockUsageServiceDB) IncrementUsageCounter(identityKey string, day time.Time, usedAt time.Time) error {
	args := m.Called(identityKey, day, usedAt)
	return args.Error(0)
}

func (m *MockUsageServiceDB) CreateUsageEvent(event *models.UsageEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockUsageServiceDB) ListRecentUsageEvents(limit int) ([]models.UsageEvent, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UsageEvent), args.Error(1)
}

type MockOrderServiceDB struct {
	mock.Mock
}

func (m *MockOrderServiceDB) CreateOrder(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderServiceDB) GetOrderByID(id uuid.UUID) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderServiceDB) GetOrdersByAccountID(accountID uuid.UUID) ([]models.Order, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockImageStyler struct {
	mock.Mock
}

func (m *MockImageStyler) StyleImage(ctx context.Context, imageData []byte, mimeType, styleTag string) ([]byte, string, error) {
	args := m.Called(ctx, imageData, mimeType, styleTag)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
