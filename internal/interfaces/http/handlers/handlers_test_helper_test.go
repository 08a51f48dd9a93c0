package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/infrastructure/lightning"
	"sat-search.backend/pkg/logger"
	"sat-search.backend/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("development")
}

func performRequest(r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func useMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

// Stub repositories and clients with function fields so each test wires only
// the calls it expects.

type stubMintQuoteRepo struct {
	createFn  func(ctx context.Context, quote *entities.MintQuote) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error)
	casFn     func(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error
	issuedFn  func(ctx context.Context, id uuid.UUID) error
}

func (s *stubMintQuoteRepo) Create(ctx context.Context, quote *entities.MintQuote) error {
	if s.createFn != nil {
		return s.createFn(ctx, quote)
	}
	return nil
}

func (s *stubMintQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubMintQuoteRepo) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error {
	if s.casFn != nil {
		return s.casFn(ctx, id, from, to)
	}
	return nil
}

func (s *stubMintQuoteRepo) MarkIssued(ctx context.Context, id uuid.UUID) error {
	if s.issuedFn != nil {
		return s.issuedFn(ctx, id)
	}
	return nil
}

func (s *stubMintQuoteRepo) GetUnpaidUnexpired(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	return nil, nil
}

func (s *stubMintQuoteRepo) GetExpiredPending(ctx context.Context, limit int) ([]*entities.MintQuote, error) {
	return nil, nil
}

func (s *stubMintQuoteRepo) ExpireQuotes(ctx context.Context, ids []uuid.UUID) error {
	return nil
}

func (s *stubMintQuoteRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubMeltQuoteRepo struct {
	createFn      func(ctx context.Context, quote *entities.MeltQuote) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error)
	casFn         func(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error
	setReceivedFn func(ctx context.Context, id uuid.UUID, received uint64) error
	markPaidFn    func(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error
}

func (s *stubMeltQuoteRepo) Create(ctx context.Context, quote *entities.MeltQuote) error {
	if s.createFn != nil {
		return s.createFn(ctx, quote)
	}
	return nil
}

func (s *stubMeltQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubMeltQuoteRepo) CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error {
	if s.casFn != nil {
		return s.casFn(ctx, id, from, to)
	}
	return nil
}

func (s *stubMeltQuoteRepo) SetReceived(ctx context.Context, id uuid.UUID, received uint64) error {
	if s.setReceivedFn != nil {
		return s.setReceivedFn(ctx, id, received)
	}
	return nil
}

func (s *stubMeltQuoteRepo) MarkPaid(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error {
	if s.markPaidFn != nil {
		return s.markPaidFn(ctx, id, preimage, feePaid, changeToken)
	}
	return nil
}

func (s *stubMeltQuoteRepo) MarkFailed(ctx context.Context, id uuid.UUID, changeToken string) error {
	return nil
}

func (s *stubMeltQuoteRepo) MarkUnknown(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubMeltQuoteRepo) GetPending(ctx context.Context, limit int) ([]*entities.MeltQuote, error) {
	return nil, nil
}

func (s *stubMeltQuoteRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubLightningClient struct {
	createInvoiceFn func(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*lightning.Invoice, error)
	payInvoiceFn    func(ctx context.Context, bolt11 string, maxFeeSats uint64) (*lightning.PaymentResult, error)
}

func (s *stubLightningClient) CreateInvoice(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*lightning.Invoice, error) {
	return s.createInvoiceFn(ctx, amountSats, memo, expiry)
}

func (s *stubLightningClient) InvoiceStatus(ctx context.Context, paymentHash string) (lightning.InvoiceState, error) {
	return lightning.InvoiceStateUnpaid, nil
}

func (s *stubLightningClient) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats uint64) (*lightning.PaymentResult, error) {
	return s.payInvoiceFn(ctx, bolt11, maxFeeSats)
}

func (s *stubLightningClient) PaymentStatus(ctx context.Context, paymentHash string) (*lightning.PaymentResult, error) {
	return &lightning.PaymentResult{State: lightning.PaymentStateUnknown}, nil
}

type stubRedeemer struct {
	verifyFn      func(ctx context.Context, rawToken string, required uint64) (uint64, error)
	issueChangeFn func(ctx context.Context, amount uint64) (string, error)
}

func (s *stubRedeemer) VerifyAndRedeem(ctx context.Context, rawToken string, required uint64) (uint64, error) {
	return s.verifyFn(ctx, rawToken, required)
}

func (s *stubRedeemer) IssueChange(ctx context.Context, amount uint64) (string, error) {
	if s.issueChangeFn != nil {
		return s.issueChangeFn(ctx, amount)
	}
	return "", nil
}

func (s *stubRedeemer) Decode(rawToken string) (uint64, error) {
	return 0, nil
}

type stubProvider struct {
	searchFn func(ctx context.Context, query string) ([]entities.SearchResult, error)
}

func (s *stubProvider) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	return s.searchFn(ctx, query)
}

type stubCounterRepo struct {
	count uint64
}

func (s *stubCounterRepo) Increment(ctx context.Context) (uint64, error) {
	s.count++
	return s.count, nil
}

func (s *stubCounterRepo) Get(ctx context.Context) (uint64, error) {
	return s.count, nil
}

type stubEventRepo struct {
	events []*entities.SearchEvent
}

func (s *stubEventRepo) Create(ctx context.Context, event *entities.SearchEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubUnitOfWork struct{}

func (s *stubUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	return f(ctx)
}
