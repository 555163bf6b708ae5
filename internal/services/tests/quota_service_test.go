package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"pet_portrait_go_backend/internal/models"
	"pet_portrait_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeUsageStore is an in-memory UsageServiceDB whose increment is atomic
// under a mutex, mirroring the upsert-increment contract of the real store.
type fakeUsageStore struct {
	mu       sync.Mutex
	counters map[string]*models.UsageCounter
	events   []models.UsageEvent
	getErr   error
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{counters: make(map[string]*models.UsageCounter)}
}

func counterKey(identityKey string, day time.Time) string {
	return fmt.Sprintf("%s|%s", identityKey, day.Format("2006-01-02"))
}

func (f *fakeUsageStore) GetUsageCounter(identityKey string, day time.Time) (*models.UsageCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	counter, ok := f.counters[counterKey(identityKey, day)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := *counter
	return &snapshot, nil
}

func (f *fakeUsageStore) IncrementUsageCounter(identityKey string, day time.Time, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := counterKey(identityKey, day)
	if counter, ok := f.counters[key]; ok {
		counter.Count++
		counter.LastUsedAt = usedAt
		return nil
	}
	f.counters[key] = &models.UsageCounter{IdentityKey: identityKey, Day: day, Count: 1, LastUsedAt: usedAt}
	return nil
}

func (f *fakeUsageStore) CreateUsageEvent(event *models.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeUsageStore) ListRecentUsageEvents(limit int) ([]models.UsageEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) > limit {
		return f.events[len(f.events)-limit:], nil
	}
	return f.events, nil
}

func TestCheckLimit(t *testing.T) {
	t.Run("days are UTC regardless of the clock's zone", func(t *testing.T) {
		store := newFakeUsageStore()
		zone := time.FixedZone("UTC+5", 5*3600)
		// 03:30 on Sep 2 in UTC+5 is still Sep 1 in UTC.
		clock := func() time.Time { return time.Date(2026, 9, 2, 3, 30, 0, 0, zone) }
		quotaService := services.NewQuotaServiceWithClock(store, clock)

		status, err := quotaService.CheckLimit("user:abc", 10)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), status.ResetsAt)
		assert.Equal(t, 10, status.Remaining)
	})

	t.Run("zero limit always denies", func(t *testing.T) {
		store := newFakeUsageStore()
		quotaService := services.NewQuotaService(store)

		status, err := quotaService.CheckLimit("user:abc", 0)

		assert.NoError(t, err)
		assert.False(t, status.Allowed)
		assert.Equal(t, 0, status.Remaining)
		assert.Equal(t, 0, status.UsedToday)
	})

	t.Run("store error denies rather than allowing", func(t *testing.T) {
		store := newFakeUsageStore()
		store.getErr = fmt.Errorf("connection reset")
		quotaService := services.NewQuotaService(store)

		status, err := quotaService.CheckLimit("user:abc", 10)

		assert.Error(t, err)
		assert.False(t, status.Allowed)
		assert.Equal(t, 0, status.Remaining)
	})

	t.Run("remaining never goes negative when the limit is lowered", func(t *testing.T) {
		store := newFakeUsageStore()
		quotaService := services.NewQuotaService(store)

		for i := 0; i < 5; i++ {
			assert.NoError(t, quotaService.RecordUsage("user:abc"))
		}

		status, err := quotaService.CheckLimit("user:abc", 3)

		assert.NoError(t, err)
		assert.False(t, status.Allowed)
		assert.Equal(t, 0, status.Remaining)
		assert.Equal(t, 5, status.UsedToday)
	})
}

func TestRecordUsage(t *testing.T) {
	t.Run("check reflects a record immediately", func(t *testing.T) {
		store := newFakeUsageStore()
		quotaService := services.NewQuotaService(store)

		assert.NoError(t, quotaService.RecordUsage("user:abc"))

		status, err := quotaService.CheckLimit("user:abc", 10)
		assert.NoError(t, err)
		assert.Equal(t, 1, status.UsedToday)
		assert.Equal(t, 9, status.Remaining)
	})

	t.Run("concurrent increments lose no updates", func(t *testing.T) {
		store := newFakeUsageStore()
		quotaService := services.NewQuotaService(store)

		const n = 50
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				assert.NoError(t, quotaService.RecordUsage("user:abc"))
			}()
		}
		wg.Wait()

		status, err := quotaService.CheckLimit("user:abc", 1000)
		assert.NoError(t, err)
		assert.Equal(t, n, status.UsedToday)
	})

	t.Run("anonymous identity resets after UTC midnight", func(t *testing.T) {
		store := newFakeUsageStore()
		now := time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC)
		quotaService := services.NewQuotaServiceWithClock(store, func() time.Time { return now })

		key := services.AnonymousIdentityKey("203.0.113.7")
		assert.NoError(t, quotaService.RecordUsage(key))

		status, err := quotaService.CheckLimit(key, 1)
		assert.NoError(t, err)
		assert.False(t, status.Allowed)

		// Day rolls over; the old counter no longer applies.
		now = now.Add(3 * time.Hour)
		status, err = quotaService.CheckLimit(key, 1)
		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 0, status.UsedToday)
	})
}

func TestIdentityKeys(t *testing.T) {
	// Account and IP namespaces must never collide.
	id := uuid.New()
	assert.Equal(t, "user:"+id.String(), services.UserIdentityKey(id))
	assert.Equal(t, "ip:203.0.113.7", services.AnonymousIdentityKey("203.0.113.7"))
}
