package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"sat-search.backend/internal/domain/entities"
	domainerrors "sat-search.backend/internal/domain/errors"
	"sat-search.backend/internal/infrastructure/models"
)

// MintQuoteRepositoryImpl implements MintQuoteRepository
type MintQuoteRepositoryImpl struct {
	db *gorm.DB
}

func NewMintQuoteRepository(db *gorm.DB) *MintQuoteRepositoryImpl {
	return &MintQuoteRepositoryImpl{db: db}
}

func (r *MintQuoteRepositoryImpl) Create(ctx context.Context, q *entities.MintQuote) error {
	m := &models.MintQuote{
		ID:          q.ID,
		Amount:      q.Amount,
		Request:     q.Request,
		PaymentHash: q.PaymentHash,
		State:       string(q.State),
		ExpiresAt:   q.ExpiresAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *MintQuoteRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error) {
	var m models.MintQuote
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// CompareAndSwapState applies the transition only when the row still holds
// the expected previous state. RowsAffected == 0 means another caller won.
func (r *MintQuoteRepositoryImpl) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MintQuote{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]interface{}{
			"state":      string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *MintQuoteRepositoryImpl) MarkIssued(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MintQuote{}).
		Where("id = ? AND state = ?", id, entities.MintQuoteStatePaid).
		Updates(map[string]interface{}{
			"state":      string(entities.MintQuoteStateIssued),
			"issued_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *MintQuoteRepositoryImpl) GetUnpaidUnexpired(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	var ms []models.MintQuote
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("state = ? AND expires_at > ?", entities.MintQuoteStateUnpaid, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *MintQuoteRepositoryImpl) GetExpiredPending(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	var ms []models.MintQuote
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("state IN ? AND expires_at < ?",
			[]string{string(entities.MintQuoteStateUnpaid), string(entities.MintQuoteStatePaid)},
			time.Now()).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *MintQuoteRepositoryImpl) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	// issued quotes are never expired, so the state guard stays in the query
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.MintQuote{}).
		Where("id IN ? AND state IN ?", ids,
			[]string{string(entities.MintQuoteStateUnpaid), string(entities.MintQuoteStatePaid)}).
		Updates(map[string]interface{}{
			"state":      string(entities.MintQuoteStateExpired),
			"updated_at": time.Now(),
		}).Error
}

func (r *MintQuoteRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).
		Where("state = ? AND expires_at < ?", entities.MintQuoteStateExpired, cutoff).
		Delete(&models.MintQuote{})
	return res.RowsAffected, res.Error
}

func (r *MintQuoteRepositoryImpl) toEntities(ms []models.MintQuote) []*entities.MintQuote {
	var quotes []*entities.MintQuote
	for _, m := range ms {
		model := m
		quotes = append(quotes, r.toEntity(&model))
	}
	return quotes
}

func (r *MintQuoteRepositoryImpl) toEntity(m *models.MintQuote) *entities.MintQuote {
	return &entities.MintQuote{
		ID:          m.ID,
		Amount:      m.Amount,
		Request:     m.Request,
		PaymentHash: m.PaymentHash,
		State:       entities.MintQuoteState(m.State),
		ExpiresAt:   m.ExpiresAt,
		IssuedAt:    m.IssuedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
