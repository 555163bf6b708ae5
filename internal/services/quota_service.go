package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuotaStatus reports one identity's standing against its daily cap.
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	UsedToday int       `json:"used_today"`
	ResetsAt  time.Time `json:"resets_at"`
}

// QuotaService enforces per-identity daily generation caps. Days are UTC
// calendar days regardless of server or client timezone, so resets are
// deterministic across deployment regions.
type QuotaService struct {
	usage UsageServiceDB
	now   func() time.Time
}

func NewQuotaService(usage UsageServiceDB) *QuotaService {
	return &QuotaService{usage: usage, now: time.Now}
}

// NewQuotaServiceWithClock is used by tests that need day rollover control.
func NewQuotaServiceWithClock(usage UsageServiceDB, clock func() time.Time) *QuotaService {
	return &QuotaService{usage: usage, now: clock}
}

// UTCDay truncates a time to UTC midnight.
func UTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func UserIdentityKey(accountID uuid.UUID) string {
	return "user:" + accountID.String()
}

// AnonymousIdentityKey keys anonymous callers by client IP. The namespace is
// disjoint from account keys so anonymous and authenticated usage never mix.
func AnonymousIdentityKey(ip string) string {
	return "ip:" + ip
}

// CheckLimit is a read-only gate and is safe to call repeatedly within one
// request. A store error denies: silently allowing on an outage would expose
// unbounded generator spend.
func (s *QuotaService) CheckLimit(identityKey string, limit int) (*QuotaStatus, error) {
	day := UTCDay(s.now())
	resetsAt := day.Add(24 * time.Hour)

	used := 0
	counter, err := s.usage.GetUsageCounter(identityKey, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return &QuotaStatus{Allowed: false, Remaining: 0, Limit: limit, UsedToday: 0, ResetsAt: resetsAt}, err
	}
	if counter != nil {
		used = counter.Count
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return &QuotaStatus{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Limit:     limit,
		UsedToday: used,
		ResetsAt:  resetsAt,
	}, nil
}

// RecordUsage consumes one unit of today's quota via an atomic
// upsert-increment. Callers only invoke it after a confirmed generation.
func (s *QuotaService) RecordUsage(identityKey string) error {
	now := s.now()
	return s.usage.IncrementUsageCounter(identityKey, UTCDay(now), now)
}
