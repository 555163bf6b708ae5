package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AccountID       uuid.UUID      `gorm:"type:uuid;index;not null" json:"account_id"`
	StyleTag        string         `gorm:"not null" json:"style_tag"`
	CanvasSize      string         `gorm:"not null" json:"canvas_size"`
	PriceCents      int            `gorm:"not null" json:"price_cents"`
	PetName         string         `json:"pet_name"`
	ShippingName    string         `gorm:"not null" json:"shipping_name"`
	ShippingAddress string         `gorm:"not null" json:"shipping_address"`
	Status          string         `gorm:"default:'pending'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type Feedback struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportTicket struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Email      string     `gorm:"not null" json:"email"`
	Subject    string     `gorm:"not null" json:"subject"`
	Message    string     `gorm:"not null" json:"message"`
	Status     string     `gorm:"default:'open'" json:"status"`
	AdminReply string     `json:"admin_reply"`
	RepliedAt  *time.Time `json:"replied_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
