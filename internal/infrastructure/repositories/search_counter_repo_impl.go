package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/infrastructure/models"
)

// SearchCounterRepositoryImpl implements SearchCounterRepository on a single
// durable row, mutated only with an atomic in-database increment.
type SearchCounterRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchCounterRepository(db *gorm.DB) *SearchCounterRepositoryImpl {
	return &SearchCounterRepositoryImpl{db: db}
}

// EnsureRow creates the counter row if it does not exist yet. Called once at
// startup.
func (r *SearchCounterRepositoryImpl) EnsureRow(ctx context.Context) error {
	var m models.SearchCounter
	err := r.db.WithContext(ctx).Where("id = ?", models.CounterRowID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&models.SearchCounter{
			ID:        models.CounterRowID,
			Count:     0,
			UpdatedAt: time.Now(),
		}).Error
	}
	return err
}

func (r *SearchCounterRepositoryImpl) Increment(ctx context.Context) (uint64, error) {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Model(&models.SearchCounter{}).
		Where("id = ?", models.CounterRowID).
		Updates(map[string]interface{}{
			"count":      gorm.Expr("count + ?", 1),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	var m models.SearchCounter
	if err := db.WithContext(ctx).Where("id = ?", models.CounterRowID).First(&m).Error; err != nil {
		return 0, err
	}
	return m.Count, nil
}

func (r *SearchCounterRepositoryImpl) Get(ctx context.Context) (uint64, error) {
	var m models.SearchCounter
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", models.CounterRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.Count, nil
}

// SearchEventRepositoryImpl implements SearchEventRepository
type SearchEventRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchEventRepository(db *gorm.DB) *SearchEventRepositoryImpl {
	return &SearchEventRepositoryImpl{db: db}
}

func (r *SearchEventRepositoryImpl) Create(ctx context.Context, event *entities.SearchEvent) error {
	m := &models.SearchEvent{
		ID:          event.ID,
		TokenAmount: event.TokenAmount,
		QueryHash:   event.QueryHash,
		CreatedAt:   time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}
