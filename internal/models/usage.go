package models

import "time"

// UsageCounter holds the number of successful generations for one identity on
// one UTC calendar day. At most one row exists per (identity_key, day) pair.
type UsageCounter struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	IdentityKey string    `gorm:"uniqueIndex:idx_usage_identity_day;not null" json:"identity_key"`
	Day         time.Time `gorm:"uniqueIndex:idx_usage_identity_day;not null" json:"day"`
	Count       int       `gorm:"not null;default:0" json:"count"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

// UsageEvent is an append-only audit row, one per generation attempt.
type UsageEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	IdentityKey string    `gorm:"index" json:"identity_key"`
	APIType     string    `json:"api_type"`
	Operation   string    `json:"operation"`
	Success     bool      `json:"success"`
	ImageCount  int       `json:"image_count"`
	CostCents   int       `json:"cost_cents"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}
