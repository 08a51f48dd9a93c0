package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/infrastructure/lightning"
)

type mockMintQuoteRepo struct {
	mock.Mock
}

func (m *mockMintQuoteRepo) Create(ctx context.Context, quote *entities.MintQuote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *mockMintQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MintQuote), args.Error(1)
}

func (m *mockMintQuoteRepo) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockMintQuoteRepo) MarkIssued(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMintQuoteRepo) GetUnpaidUnexpired(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MintQuote), args.Error(1)
}

func (m *mockMintQuoteRepo) GetExpiredPending(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MintQuote), args.Error(1)
}

func (m *mockMintQuoteRepo) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockMintQuoteRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockMeltQuoteRepo struct {
	mock.Mock
}

func (m *mockMeltQuoteRepo) Create(ctx context.Context, quote *entities.MeltQuote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *mockMeltQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MeltQuote), args.Error(1)
}

func (m *mockMeltQuoteRepo) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockMeltQuoteRepo) SetReceived(ctx context.Context, id uuid.UUID, received uint64) error {
	return m.Called(ctx, id, received).Error(0)
}

func (m *mockMeltQuoteRepo) MarkPaid(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error {
	return m.Called(ctx, id, preimage, feePaid, changeToken).Error(0)
}

func (m *mockMeltQuoteRepo) MarkFailed(ctx context.Context, id uuid.UUID, changeToken string) error {
	return m.Called(ctx, id, changeToken).Error(0)
}

func (m *mockMeltQuoteRepo) MarkUnknown(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMeltQuoteRepo) GetPending(ctx context.Context, limit int) ([]*entities.MeltQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MeltQuote), args.Error(1)
}

func (m *mockMeltQuoteRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockMeltResolver struct {
	mock.Mock
}

func (m *mockMeltResolver) Reconcile(ctx context.Context, quote *entities.MeltQuote) error {
	return m.Called(ctx, quote).Error(0)
}

type mockLightningClient struct {
	mock.Mock
}

func (m *mockLightningClient) CreateInvoice(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*lightning.Invoice, error) {
	args := m.Called(ctx, amountSats, memo, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.Invoice), args.Error(1)
}

func (m *mockLightningClient) InvoiceStatus(ctx context.Context, paymentHash string) (lightning.InvoiceState, error) {
	args := m.Called(ctx, paymentHash)
	return args.Get(0).(lightning.InvoiceState), args.Error(1)
}

func (m *mockLightningClient) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats uint64) (*lightning.PaymentResult, error) {
	args := m.Called(ctx, bolt11, maxFeeSats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.PaymentResult), args.Error(1)
}

func (m *mockLightningClient) PaymentStatus(ctx context.Context, paymentHash string) (*lightning.PaymentResult, error) {
	args := m.Called(ctx, paymentHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.PaymentResult), args.Error(1)
}
