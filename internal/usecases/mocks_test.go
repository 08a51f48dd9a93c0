package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/infrastructure/lightning"
	"sat-search.backend/pkg/logger"
)

func init() {
	logger.Init("development")
}

// Mock MintQuoteRepository
type MockMintQuoteRepository struct {
	mock.Mock
}

func (m *MockMintQuoteRepository) Create(ctx context.Context, quote *entities.MintQuote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockMintQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MintQuote), args.Error(1)
}

func (m *MockMintQuoteRepository) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockMintQuoteRepository) MarkIssued(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMintQuoteRepository) GetUnpaidUnexpired(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MintQuote), args.Error(1)
}

func (m *MockMintQuoteRepository) GetExpiredPending(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MintQuote), args.Error(1)
}

func (m *MockMintQuoteRepository) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockMintQuoteRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock MeltQuoteRepository
type MockMeltQuoteRepository struct {
	mock.Mock
}

func (m *MockMeltQuoteRepository) Create(ctx context.Context, quote *entities.MeltQuote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MeltQuote), args.Error(1)
}

func (m *MockMeltQuoteRepository) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) SetReceived(ctx context.Context, id uuid.UUID, received uint64) error {
	args := m.Called(ctx, id, received)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) MarkPaid(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error {
	args := m.Called(ctx, id, preimage, feePaid, changeToken)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) MarkFailed(ctx context.Context, id uuid.UUID, changeToken string) error {
	args := m.Called(ctx, id, changeToken)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) MarkUnknown(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMeltQuoteRepository) GetPending(ctx context.Context, limit int) ([]*entities.MeltQuote, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*entities.MeltQuote), args.Error(1)
}

func (m *MockMeltQuoteRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock SearchCounterRepository
type MockSearchCounterRepository struct {
	mock.Mock
}

func (m *MockSearchCounterRepository) Increment(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockSearchCounterRepository) Get(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// Mock SearchEventRepository
type MockSearchEventRepository struct {
	mock.Mock
}

func (m *MockSearchEventRepository) Create(ctx context.Context, event *entities.SearchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock lightning client
type MockLightningClient struct {
	mock.Mock
}

func (m *MockLightningClient) CreateInvoice(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*lightning.Invoice, error) {
	args := m.Called(ctx, amountSats, memo, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.Invoice), args.Error(1)
}

func (m *MockLightningClient) InvoiceStatus(ctx context.Context, paymentHash string) (lightning.InvoiceState, error) {
	args := m.Called(ctx, paymentHash)
	return args.Get(0).(lightning.InvoiceState), args.Error(1)
}

func (m *MockLightningClient) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats uint64) (*lightning.PaymentResult, error) {
	args := m.Called(ctx, bolt11, maxFeeSats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.PaymentResult), args.Error(1)
}

func (m *MockLightningClient) PaymentStatus(ctx context.Context, paymentHash string) (*lightning.PaymentResult, error) {
	args := m.Called(ctx, paymentHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lightning.PaymentResult), args.Error(1)
}

// Mock token redeemer
type MockRedeemer struct {
	mock.Mock
}

func (m *MockRedeemer) VerifyAndRedeem(ctx context.Context, rawToken string, required uint64) (uint64, error) {
	args := m.Called(ctx, rawToken, required)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockRedeemer) IssueChange(ctx context.Context, amount uint64) (string, error) {
	args := m.Called(ctx, amount)
	return args.String(0), args.Error(1)
}

func (m *MockRedeemer) Decode(rawToken string) (uint64, error) {
	args := m.Called(rawToken)
	return args.Get(0).(uint64), args.Error(1)
}

// Mock search provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.SearchResult), args.Error(1)
}

// Mock price converter
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) SatsForCents(cents uint64) (uint64, error) {
	args := m.Called(cents)
	return args.Get(0).(uint64), args.Error(1)
}
