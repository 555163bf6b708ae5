package services

import (
	"errors"
	"time"

	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	AllowlistActionApprove = "approve"
	AllowlistActionReject  = "reject"
)

// AuthorizationStatus is the answer to "may this principal use gated features?".
type AuthorizationStatus struct {
	Allowed      bool            `json:"allowed"`
	IsAdmin      bool            `json:"is_admin"`
	IsWaitlisted bool            `json:"is_waitlisted"`
	Account      *models.Account `json:"account"`
}

// AccessService owns the waitlist/allowlist/admin state of accounts. New
// accounts are provisioned lazily on first authenticated contact.
type AccessService struct {
	accounts          AccountServiceDB
	bootstrapAdmins   map[string]struct{}
	defaultDailyLimit int
}

func NewAccessService(accounts AccountServiceDB, bootstrapAdminEmails []string, defaultDailyLimit int) *AccessService {
	admins := make(map[string]struct{}, len(bootstrapAdminEmails))
	for _, email := range bootstrapAdminEmails {
		admins[email] = struct{}{}
	}
	return &AccessService{
		accounts:          accounts,
		bootstrapAdmins:   admins,
		defaultDailyLimit: defaultDailyLimit,
	}
}

// ResolveAuthorization looks up the account for a principal, creating it on
// first contact. It fails closed: any unexpected store error yields a denied
// status alongside the error, never a crash and never a silent allow.
func (s *AccessService) ResolveAuthorization(authID, email, name string) (*AuthorizationStatus, error) {
	account, err := s.findAccount(authID, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("email", email).Msg("account lookup failed, denying access")
		return deniedStatus(), err
	}

	if account == nil {
		account, err = s.provisionAccount(authID, email, name)
		if err != nil {
			log.Error().Err(err).Str("email", email).Msg("account provisioning failed, denying access")
			return deniedStatus(), err
		}
		return statusFor(account), nil
	}

	// Bootstrap admins self-heal on every sign-in, so a demoted or
	// pre-existing account for the operator address regains admin rights.
	if _, isBootstrap := s.bootstrapAdmins[account.Email]; isBootstrap && !account.IsAdmin {
		account.IsAdmin = true
		account.IsAllowlisted = true
		account.IsWaitlisted = false
		if err := s.accounts.SaveAccount(account); err != nil {
			log.Error().Err(err).Str("email", email).Msg("bootstrap admin self-heal failed, denying access")
			return deniedStatus(), err
		}
	}

	return statusFor(account), nil
}

func (s *AccessService) findAccount(authID, email string) (*models.Account, error) {
	if authID != "" {
		account, err := s.accounts.GetAccountByAuthID(authID)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	// The identity provider and our store can drift apart; the email is the
	// fallback join key.
	return s.accounts.GetAccountByEmail(email)
}

func (s *AccessService) provisionAccount(authID, email, name string) (*models.Account, error) {
	now := time.Now().UTC()
	account := &models.Account{
		AuthID:               authID,
		Email:                email,
		Name:                 name,
		DailyGenerationLimit: s.defaultDailyLimit,
	}
	if _, isBootstrap := s.bootstrapAdmins[email]; isBootstrap {
		account.IsAdmin = true
		account.IsAllowlisted = true
		account.IsWaitlisted = false
	} else {
		account.IsWaitlisted = true
		account.JoinedWaitlistAt = &now
	}

	err := s.accounts.CreateAccount(account)
	if err == nil {
		return account, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent first-contact request won the insert; read its row.
		return s.accounts.GetAccountByEmail(email)
	}
	return nil, err
}

// SetAllowlistStatus applies an admin moderation action. It is idempotent and
// refuses to touch admin accounts, which are not subject to waitlist gating.
func (s *AccessService) SetAllowlistStatus(accountID uuid.UUID, action string) (*models.Account, error) {
	if action != AllowlistActionApprove && action != AllowlistActionReject {
		return nil, apperrors.New400Error("action must be 'approve' or 'reject'")
	}

	account, err := s.accounts.GetAccountByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New404Error("account not found")
		}
		return nil, err
	}
	if account.IsAdmin {
		return nil, apperrors.New400Error("admin accounts are not subject to waitlist moderation")
	}

	if action == AllowlistActionApprove {
		now := time.Now().UTC()
		account.IsAllowlisted = true
		account.IsWaitlisted = false
		account.ApprovedAt = &now
	} else {
		account.IsAllowlisted = false
		account.IsWaitlisted = true
		account.ApprovedAt = nil
	}

	if err := s.accounts.SaveAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// SetDailyLimit updates an account's daily generation allowance. A limit of 0
// is a real zero: the account is denied generation until an admin raises it.
func (s *AccessService) SetDailyLimit(accountID uuid.UUID, limit int) (*models.Account, error) {
	if limit < 0 || limit > 1000 {
		return nil, apperrors.New400Error("daily_generation_limit must be between 0 and 1000")
	}

	account, err := s.accounts.GetAccountByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New404Error("account not found")
		}
		return nil, err
	}

	account.DailyGenerationLimit = limit
	if err := s.accounts.SaveAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccessService) ListAccounts(status string) ([]models.Account, error) {
	return s.accounts.ListAccountsByStatus(status)
}

func statusFor(account *models.Account) *AuthorizationStatus {
	return &AuthorizationStatus{
		Allowed:      account.IsAllowlisted || account.IsAdmin,
		IsAdmin:      account.IsAdmin,
		IsWaitlisted: account.IsWaitlisted && !account.IsAdmin,
		Account:      account,
	}
}

func deniedStatus() *AuthorizationStatus {
	return &AuthorizationStatus{Allowed: false, IsWaitlisted: true}
}
