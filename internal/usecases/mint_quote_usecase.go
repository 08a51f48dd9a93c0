package usecases

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/domain/errors"
	domainRepos "sat-search.backend/internal/domain/repositories"
	"sat-search.backend/internal/infrastructure/lightning"
	"sat-search.backend/pkg/metrics"
	"sat-search.backend/pkg/utils"
)

const (
	invoiceRetryAttempts = 3
	invoiceRetryBackoff  = 500 * time.Millisecond
)

type MintQuoteUsecase struct {
	quoteRepo domainRepos.MintQuoteRepository
	lightning lightning.Client
	expiry    time.Duration
	memo      string
	minAmount uint64
	maxAmount uint64
}

func NewMintQuoteUsecase(
	quoteRepo domainRepos.MintQuoteRepository,
	ln lightning.Client,
	expiry time.Duration,
	memo string,
	minAmount uint64,
	maxAmount uint64,
) *MintQuoteUsecase {
	return &MintQuoteUsecase{
		quoteRepo: quoteRepo,
		lightning: ln,
		expiry:    expiry,
		memo:      memo,
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// CreateQuote asks the node for an invoice and records the quote as unpaid
func (uc *MintQuoteUsecase) CreateQuote(ctx context.Context, amount uint64) (*entities.MintQuote, error) {
	if amount < uc.minAmount || amount > uc.maxAmount {
		return nil, errors.BadRequest("amount outside the mintable range")
	}

	var invoice *lightning.Invoice
	err := lightning.Retry(ctx, invoiceRetryAttempts, invoiceRetryBackoff, func() error {
		var invErr error
		invoice, invErr = uc.lightning.CreateInvoice(ctx, amount, uc.memo, uc.expiry)
		return invErr
	})
	if err != nil {
		return nil, errors.ServiceUnavailable("could not create invoice")
	}

	quote := &entities.MintQuote{
		ID:          utils.GenerateUUIDv7(),
		Amount:      amount,
		Request:     invoice.PaymentRequest,
		PaymentHash: invoice.PaymentHash,
		State:       entities.MintQuoteStateUnpaid,
		ExpiresAt:   time.Now().Add(uc.expiry),
	}

	if err := uc.quoteRepo.Create(ctx, quote); err != nil {
		return nil, errors.InternalError(err)
	}

	metrics.MintQuotesCreated.Inc()
	return quote, nil
}

// GetQuote returns the quote, lazily expiring an unpaid quote past its
// deadline so pollers never see a payable state on a dead invoice.
func (uc *MintQuoteUsecase) GetQuote(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error) {
	quote, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NotFound("mint quote not found")
	}

	if quote.State == entities.MintQuoteStateUnpaid && quote.IsExpired(time.Now()) {
		// losing the swap means the poller flipped it to paid first; the
		// re-read below picks up whichever state won
		casErr := uc.quoteRepo.CompareAndSwapState(ctx, id, entities.MintQuoteStateUnpaid, entities.MintQuoteStateExpired)
		if casErr != nil && casErr != errors.ErrStateConflict {
			return nil, errors.InternalError(casErr)
		}
		if quote, err = uc.quoteRepo.GetByID(ctx, id); err != nil {
			return nil, errors.NotFound("mint quote not found")
		}
	}

	return quote, nil
}

// IssueQuote redeems a paid quote into ecash denominations. Exactly one
// caller wins the paid -> issued swap; everyone else gets a conflict.
func (uc *MintQuoteUsecase) IssueQuote(ctx context.Context, id uuid.UUID) (*entities.MintQuote, []uint64, error) {
	quote, err := uc.GetQuote(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch quote.State {
	case entities.MintQuoteStateIssued:
		return nil, nil, errors.Conflict("quote already issued", errors.ErrAlreadyIssued)
	case entities.MintQuoteStateExpired:
		return nil, nil, errors.NewAppError(http.StatusBadRequest, "quote expired", errors.ErrQuoteExpired)
	case entities.MintQuoteStateUnpaid:
		return nil, nil, errors.PaymentRequired("quote not paid", errors.ErrQuoteNotPaid)
	}

	if err := uc.quoteRepo.MarkIssued(ctx, id); err != nil {
		if err == errors.ErrStateConflict {
			return nil, nil, errors.Conflict("quote already issued", errors.ErrAlreadyIssued)
		}
		return nil, nil, errors.InternalError(err)
	}

	quote, err = uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, errors.InternalError(err)
	}

	metrics.MintQuotesIssued.Inc()
	return quote, entities.SplitAmount(quote.Amount), nil
}
