package services_test

import (
	"fmt"
	"testing"

	"pet_portrait_go_backend/internal/models"
	"pet_portrait_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

const operatorEmail = "operator@example.com"

func newAccessService(accounts *MockAccountServiceDB) *services.AccessService {
	return services.NewAccessService(accounts, []string{operatorEmail}, 10)
}

func TestResolveAuthorization(t *testing.T) {
	t.Run("new email is provisioned waitlisted and denied", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		mockAccounts.On("GetAccountByAuthID", "auth0|123").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("GetAccountByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("CreateAccount", mock.AnythingOfType("*models.Account")).Return(nil).Once()

		status, err := accessService.ResolveAuthorization("auth0|123", "new@example.com", "New User")

		assert.NoError(t, err)
		assert.False(t, status.Allowed)
		assert.True(t, status.IsWaitlisted)
		assert.False(t, status.IsAdmin)
		assert.NotNil(t, status.Account)
		assert.True(t, status.Account.IsWaitlisted)
		assert.False(t, status.Account.IsAllowlisted)
		assert.NotNil(t, status.Account.JoinedWaitlistAt)
		assert.Equal(t, 10, status.Account.DailyGenerationLimit)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("bootstrap admin email is provisioned as admin and allowed", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		mockAccounts.On("GetAccountByAuthID", "auth0|op").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("GetAccountByEmail", operatorEmail).Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("CreateAccount", mock.AnythingOfType("*models.Account")).Return(nil).Once()

		status, err := accessService.ResolveAuthorization("auth0|op", operatorEmail, "Operator")

		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.True(t, status.IsAdmin)
		assert.False(t, status.IsWaitlisted)
		assert.True(t, status.Account.IsAdmin)
		assert.True(t, status.Account.IsAllowlisted)
		assert.False(t, status.Account.IsWaitlisted)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("bootstrap admin self-heals on repeat sign-in", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		existing := &models.Account{ID: uuid.New(), AuthID: "auth0|op", Email: operatorEmail, IsWaitlisted: true}
		mockAccounts.On("GetAccountByAuthID", "auth0|op").Return(existing, nil).Once()
		mockAccounts.On("SaveAccount", existing).Return(nil).Once()

		status, err := accessService.ResolveAuthorization("auth0|op", operatorEmail, "Operator")

		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.True(t, status.IsAdmin)
		assert.True(t, existing.IsAdmin)
		assert.False(t, existing.IsWaitlisted)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("fails closed on store error", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		mockAccounts.On("GetAccountByAuthID", "auth0|123").Return(nil, fmt.Errorf("connection refused")).Once()

		status, err := accessService.ResolveAuthorization("auth0|123", "someone@example.com", "Someone")

		assert.Error(t, err)
		assert.False(t, status.Allowed)
		assert.True(t, status.IsWaitlisted)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("lookup falls back to email when auth id is unknown", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		existing := &models.Account{ID: uuid.New(), Email: "drifted@example.com", IsAllowlisted: true}
		mockAccounts.On("GetAccountByAuthID", "auth0|new-subject").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("GetAccountByEmail", "drifted@example.com").Return(existing, nil).Once()

		status, err := accessService.ResolveAuthorization("auth0|new-subject", "drifted@example.com", "Drifted")

		assert.NoError(t, err)
		assert.True(t, status.Allowed)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("concurrent first contact falls back to the winner's row", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		winner := &models.Account{ID: uuid.New(), Email: "raced@example.com", IsWaitlisted: true}
		mockAccounts.On("GetAccountByAuthID", "auth0|raced").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("GetAccountByEmail", "raced@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
		mockAccounts.On("CreateAccount", mock.AnythingOfType("*models.Account")).Return(gorm.ErrDuplicatedKey).Once()
		mockAccounts.On("GetAccountByEmail", "raced@example.com").Return(winner, nil).Once()

		status, err := accessService.ResolveAuthorization("auth0|raced", "raced@example.com", "Raced")

		assert.NoError(t, err)
		assert.Equal(t, winner, status.Account)
		assert.False(t, status.Allowed)

		mockAccounts.AssertExpectations(t)
	})
}

func TestSetAllowlistStatus(t *testing.T) {
	t.Run("approve then reject then approve ends allowlisted", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		account := &models.Account{ID: uuid.New(), Email: "member@example.com", IsWaitlisted: true}
		mockAccounts.On("GetAccountByID", account.ID).Return(account, nil).Times(3)
		mockAccounts.On("SaveAccount", account).Return(nil).Times(3)

		_, err := accessService.SetAllowlistStatus(account.ID, services.AllowlistActionApprove)
		assert.NoError(t, err)
		_, err = accessService.SetAllowlistStatus(account.ID, services.AllowlistActionReject)
		assert.NoError(t, err)
		assert.False(t, account.IsAllowlisted)
		assert.True(t, account.IsWaitlisted)
		assert.Nil(t, account.ApprovedAt)

		updated, err := accessService.SetAllowlistStatus(account.ID, services.AllowlistActionApprove)
		assert.NoError(t, err)
		assert.True(t, updated.IsAllowlisted)
		assert.False(t, updated.IsWaitlisted)
		assert.NotNil(t, updated.ApprovedAt)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		account := &models.Account{ID: uuid.New(), Email: "member@example.com", IsWaitlisted: true}
		mockAccounts.On("GetAccountByID", account.ID).Return(account, nil).Times(2)
		mockAccounts.On("SaveAccount", account).Return(nil).Times(2)

		first, err := accessService.SetAllowlistStatus(account.ID, services.AllowlistActionApprove)
		assert.NoError(t, err)
		second, err := accessService.SetAllowlistStatus(account.ID, services.AllowlistActionApprove)
		assert.NoError(t, err)

		assert.Equal(t, first.IsAllowlisted, second.IsAllowlisted)
		assert.Equal(t, first.IsWaitlisted, second.IsWaitlisted)

		mockAccounts.AssertExpectations(t)
	})

	t.Run("admin accounts are refused", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		admin := &models.Account{ID: uuid.New(), Email: operatorEmail, IsAdmin: true, IsAllowlisted: true}
		mockAccounts.On("GetAccountByID", admin.ID).Return(admin, nil).Once()

		_, err := accessService.SetAllowlistStatus(admin.ID, services.AllowlistActionReject)

		assert.Error(t, err)
		assert.True(t, admin.IsAllowlisted)
		mockAccounts.AssertNotCalled(t, "SaveAccount", mock.Anything)
	})

	t.Run("unknown action is rejected before any lookup", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		_, err := accessService.SetAllowlistStatus(uuid.New(), "banish")

		assert.Error(t, err)
		mockAccounts.AssertNotCalled(t, "GetAccountByID", mock.Anything)
	})
}

func TestSetDailyLimit(t *testing.T) {
	t.Run("updates within bounds", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		account := &models.Account{ID: uuid.New(), DailyGenerationLimit: 10}
		mockAccounts.On("GetAccountByID", account.ID).Return(account, nil).Once()
		mockAccounts.On("SaveAccount", account).Return(nil).Once()

		updated, err := accessService.SetDailyLimit(account.ID, 0)

		assert.NoError(t, err)
		assert.Equal(t, 0, updated.DailyGenerationLimit)
		mockAccounts.AssertExpectations(t)
	})

	t.Run("rejects out-of-range limits", func(t *testing.T) {
		mockAccounts := new(MockAccountServiceDB)
		accessService := newAccessService(mockAccounts)

		_, err := accessService.SetDailyLimit(uuid.New(), -1)
		assert.Error(t, err)
		_, err = accessService.SetDailyLimit(uuid.New(), 1001)
		assert.Error(t, err)

		mockAccounts.AssertNotCalled(t, "GetAccountByID", mock.Anything)
	})
}
