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

// MeltQuoteRepositoryImpl implements MeltQuoteRepository
type MeltQuoteRepositoryImpl struct {
	db *gorm.DB
}

func NewMeltQuoteRepository(db *gorm.DB) *MeltQuoteRepositoryImpl {
	return &MeltQuoteRepositoryImpl{db: db}
}

func (r *MeltQuoteRepositoryImpl) Create(ctx context.Context, q *entities.MeltQuote) error {
	m := &models.MeltQuote{
		ID:          q.ID,
		Request:     q.Request,
		PaymentHash: q.PaymentHash,
		Amount:      q.Amount,
		FeeReserve:  q.FeeReserve,
		State:       string(q.State),
		ExpiresAt:   q.ExpiresAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *MeltQuoteRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error) {
	var m models.MeltQuote
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *MeltQuoteRepositoryImpl) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MeltQuote{}).
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

func (r *MeltQuoteRepositoryImpl) SetReceived(ctx context.Context, id uuid.UUID, received uint64) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MeltQuote{}).
		Where("id = ? AND state = ?", id, entities.MeltQuoteStatePending).
		Updates(map[string]interface{}{
			"amount_received": received,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *MeltQuoteRepositoryImpl) MarkPaid(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MeltQuote{}).
		Where("id = ? AND state = ?", id, entities.MeltQuoteStatePending).
		Updates(map[string]interface{}{
			"state":            string(entities.MeltQuoteStatePaid),
			"payment_preimage": preimage,
			"fee_paid":         feePaid,
			"change_token":     changeToken,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *MeltQuoteRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, changeToken string) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.MeltQuote{}).
		Where("id = ? AND state = ?", id, entities.MeltQuoteStatePending).
		Updates(map[string]interface{}{
			"state":        string(entities.MeltQuoteStateFailed),
			"change_token": changeToken,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrStateConflict
	}
	return nil
}

func (r *MeltQuoteRepositoryImpl) MarkUnknown(ctx context.Context, id uuid.UUID) error {
	return r.CompareAndSwapState(ctx, id, entities.MeltQuoteStatePending, entities.MeltQuoteStateUnknown)
}

func (r *MeltQuoteRepositoryImpl) GetPending(ctx context.Context, limit int) ([]*entities.MeltQuote, error) {
	var ms []models.MeltQuote
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("state = ?", entities.MeltQuoteStatePending).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var quotes []*entities.MeltQuote
	for _, m := range ms {
		model := m
		quotes = append(quotes, r.toEntity(&model))
	}
	return quotes, nil
}

func (r *MeltQuoteRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).
		Where("state = ? AND expires_at < ?", entities.MeltQuoteStateUnpaid, cutoff).
		Delete(&models.MeltQuote{})
	return res.RowsAffected, res.Error
}

func (r *MeltQuoteRepositoryImpl) toEntity(m *models.MeltQuote) *entities.MeltQuote {
	return &entities.MeltQuote{
		ID:              m.ID,
		Request:         m.Request,
		PaymentHash:     m.PaymentHash,
		Amount:          m.Amount,
		FeeReserve:      m.FeeReserve,
		State:           entities.MeltQuoteState(m.State),
		PaymentPreimage: m.PaymentPreimage,
		FeePaid:         m.FeePaid,
		AmountReceived:  m.AmountReceived,
		ChangeToken:     m.ChangeToken,
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
