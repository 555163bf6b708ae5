package services

import (
	"time"

	"pet_portrait_go_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageServiceDB interface {
	GetUsageCounter(identityKey string, day time.Time) (*models.UsageCounter, error)
	IncrementUsageCounter(identityKey string, day time.Time, usedAt time.Time) error
	CreateUsageEvent(event *models.UsageEvent) error
	ListRecentUsageEvents(limit int) ([]models.UsageEvent, error)
}

type DefaultUsageService struct {
	db *gorm.DB
}

func NewUsageServiceDB(db *gorm.DB) UsageServiceDB {
	return &DefaultUsageService{db: db}
}

func (s *DefaultUsageService) GetUsageCounter(identityKey string, day time.Time) (*models.UsageCounter, error) {
	var counter models.UsageCounter
	err := s.db.Where("identity_key = ? AND day = ?", identityKey, day).First(&counter).Error
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

// IncrementUsageCounter bumps today's counter with a single atomic upsert.
// Concurrent increments for the same (identity_key, day) must not lose
// updates, so this is never split into a read followed by a write.
func (s *DefaultUsageService) IncrementUsageCounter(identityKey string, day time.Time, usedAt time.Time) error {
	counter := &models.UsageCounter{
		IdentityKey: identityKey,
		Day:         day,
		Count:       1,
		LastUsedAt:  usedAt,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity_key"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        gorm.Expr("usage_counters.count + 1"),
			"last_used_at": usedAt,
		}),
	}).Create(counter).Error
}

func (s *DefaultUsageService) CreateUsageEvent(event *models.UsageEvent) error {
	return s.db.Create(event).Error
}

func (s *DefaultUsageService) ListRecentUsageEvents(limit int) ([]models.UsageEvent, error) {
	var events []models.UsageEvent
	err := s.db.Order("created_at desc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
