package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AuthID               string         `gorm:"unique;not null" json:"-"`
	Email                string         `gorm:"unique;not null" json:"email"`
	Name                 string         `json:"name"`
	IsAdmin              bool           `gorm:"default:false" json:"is_admin"`
	IsAllowlisted        bool           `gorm:"default:false" json:"is_allowlisted"`
	IsWaitlisted         bool           `gorm:"default:true" json:"is_waitlisted"`
	DailyGenerationLimit int            `gorm:"default:10" json:"daily_generation_limit"`
	ApprovedAt           *time.Time     `json:"approved_at"`
	JoinedWaitlistAt     *time.Time     `json:"joined_waitlist_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}
