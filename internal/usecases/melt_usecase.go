package usecases

import (
	"context"
	"math"
	"net/http"
	"time"

	decodepay "github.com/nbd-wtf/ln-decodepay"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/domain/errors"
	domainRepos "sat-search.backend/internal/domain/repositories"
	"sat-search.backend/internal/infrastructure/ecash"
	"sat-search.backend/internal/infrastructure/lightning"
	"sat-search.backend/pkg/logger"
	"sat-search.backend/pkg/metrics"
	"sat-search.backend/pkg/utils"
)

var decodeInvoice = decodepay.Decodepay

type MeltUsecase struct {
	quoteRepo  domainRepos.MeltQuoteRepository
	lightning  lightning.Client
	redeemer   ecash.Redeemer
	expiry     time.Duration
	feePercent float64
	feeMinSats uint64
	minAmount  uint64
	maxAmount  uint64
}

func NewMeltUsecase(
	quoteRepo domainRepos.MeltQuoteRepository,
	ln lightning.Client,
	redeemer ecash.Redeemer,
	expiry time.Duration,
	feePercent float64,
	feeMinSats uint64,
	minAmount uint64,
	maxAmount uint64,
) *MeltUsecase {
	return &MeltUsecase{
		quoteRepo:  quoteRepo,
		lightning:  ln,
		redeemer:   redeemer,
		expiry:     expiry,
		feePercent: feePercent,
		feeMinSats: feeMinSats,
		minAmount:  minAmount,
		maxAmount:  maxAmount,
	}
}

// FeeReserve is the worst-case routing fee withheld on top of the invoice
// amount. The difference against the fee actually paid becomes change.
func (uc *MeltUsecase) FeeReserve(amount uint64) uint64 {
	reserve := uint64(math.Ceil(uc.feePercent * float64(amount)))
	if reserve < uc.feeMinSats {
		reserve = uc.feeMinSats
	}
	return reserve
}

// CreateQuote decodes the target invoice and records an unpaid melt quote
func (uc *MeltUsecase) CreateQuote(ctx context.Context, bolt11 string) (*entities.MeltQuote, error) {
	decoded, err := decodeInvoice(bolt11)
	if err != nil {
		return nil, errors.BadRequest("invalid bolt11 invoice")
	}
	if decoded.MSatoshi <= 0 {
		return nil, errors.BadRequest("amountless invoices are not supported")
	}

	amount := uint64(decoded.MSatoshi) / 1000
	if amount < uc.minAmount || amount > uc.maxAmount {
		return nil, errors.BadRequest("invoice amount outside the payable range")
	}

	quote := &entities.MeltQuote{
		ID:          utils.GenerateUUIDv7(),
		Request:     bolt11,
		PaymentHash: decoded.PaymentHash,
		Amount:      amount,
		FeeReserve:  uc.FeeReserve(amount),
		State:       entities.MeltQuoteStateUnpaid,
		ExpiresAt:   time.Now().Add(uc.expiry),
	}

	if err := uc.quoteRepo.Create(ctx, quote); err != nil {
		return nil, errors.InternalError(err)
	}
	return quote, nil
}

func (uc *MeltUsecase) GetQuote(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error) {
	quote, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NotFound("melt quote not found")
	}
	return quote, nil
}

// Pay redeems the token and sends the payment. The quote is swapped to
// pending BEFORE the token is touched, so concurrent calls on the same quote
// burn at most one token; the loser is refused with its token intact. If the
// payment outcome cannot be observed the quote stays pending and the
// reconciler resolves it later. The pay call itself is never retried.
func (uc *MeltUsecase) Pay(ctx context.Context, id uuid.UUID, rawToken string) (*entities.MeltQuote, error) {
	quote, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NotFound("melt quote not found")
	}

	switch quote.State {
	case entities.MeltQuoteStatePaid:
		// already settled; repeating the call changes nothing
		return quote, nil
	case entities.MeltQuoteStatePending:
		return nil, errors.Conflict("payment already in flight", errors.ErrQuotePending)
	case entities.MeltQuoteStateFailed, entities.MeltQuoteStateUnknown:
		return nil, errors.Conflict("quote is no longer payable", errors.ErrStateConflict)
	}

	if quote.IsExpired(time.Now()) {
		return nil, errors.NewAppError(http.StatusBadRequest, "quote expired", errors.ErrQuoteExpired)
	}

	// win the quote before redeeming anything; the loser's token stays whole
	err = uc.quoteRepo.CompareAndSwapState(ctx, id, entities.MeltQuoteStateUnpaid, entities.MeltQuoteStatePending)
	if err != nil {
		if err == errors.ErrStateConflict {
			return nil, errors.Conflict("payment already in flight", errors.ErrQuotePending)
		}
		return nil, errors.InternalError(err)
	}

	required := quote.Amount + quote.FeeReserve
	change, err := uc.redeemer.VerifyAndRedeem(ctx, rawToken, required)
	if err != nil {
		// nothing was redeemed; the quote is spent but the token is not
		if failErr := uc.quoteRepo.MarkFailed(ctx, id, ""); failErr != nil && failErr != errors.ErrStateConflict {
			logger.Error(ctx, "could not fail melt quote after rejected token",
				zap.String("quote_id", id.String()), zap.Error(failErr))
		}
		metrics.MeltPayments.WithLabelValues("failed").Inc()
		return nil, mapRedeemError(err)
	}

	received := required + change
	if err := uc.quoteRepo.SetReceived(ctx, id, received); err != nil {
		// the refund bookkeeping is degraded but the payment must proceed;
		// the token is already burned
		logger.Error(ctx, "could not record redeemed amount",
			zap.String("quote_id", id.String()), zap.Error(err))
	}
	quote.AmountReceived = received

	result, payErr := uc.lightning.PayInvoice(ctx, quote.Request, quote.FeeReserve)
	if payErr != nil {
		// outcome unobservable; leave the quote pending for reconciliation
		logger.Warn(ctx, "melt payment outcome unobservable",
			zap.String("quote_id", id.String()), zap.Error(payErr))
		metrics.MeltPayments.WithLabelValues("pending").Inc()
		quote.State = entities.MeltQuoteStatePending
		return quote, nil
	}

	if err := uc.settle(ctx, quote, result); err != nil {
		return nil, err
	}

	quote, err = uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.InternalError(err)
	}
	return quote, nil
}

// Reconcile resolves a pending quote from the node's payment record. It only
// queries status; the payment is never re-sent. A transport error leaves the
// quote pending for the next pass.
func (uc *MeltUsecase) Reconcile(ctx context.Context, quote *entities.MeltQuote) error {
	if quote.State != entities.MeltQuoteStatePending {
		return nil
	}

	result, err := uc.lightning.PaymentStatus(ctx, quote.PaymentHash)
	if err != nil {
		return err
	}
	return uc.settle(ctx, quote, result)
}

// settle moves a pending quote to its terminal state and issues the change
// owed to the payer: the unused reserve when paid, everything redeemed when
// the payment failed.
func (uc *MeltUsecase) settle(ctx context.Context, quote *entities.MeltQuote, result *lightning.PaymentResult) error {
	switch result.State {
	case lightning.PaymentStatePaid:
		var refund uint64
		if spent := quote.Amount + result.FeePaidSats; quote.AmountReceived > spent {
			refund = quote.AmountReceived - spent
		}
		changeToken := uc.issueChange(ctx, quote.ID, refund)
		if err := uc.quoteRepo.MarkPaid(ctx, quote.ID, result.Preimage, result.FeePaidSats, changeToken); err != nil && err != errors.ErrStateConflict {
			return errors.InternalError(err)
		}
		metrics.MeltPayments.WithLabelValues("paid").Inc()
	case lightning.PaymentStateFailed:
		changeToken := uc.issueChange(ctx, quote.ID, quote.AmountReceived)
		if err := uc.quoteRepo.MarkFailed(ctx, quote.ID, changeToken); err != nil && err != errors.ErrStateConflict {
			return errors.InternalError(err)
		}
		metrics.MeltPayments.WithLabelValues("failed").Inc()
	case lightning.PaymentStateUnknown:
		if err := uc.quoteRepo.MarkUnknown(ctx, quote.ID); err != nil && err != errors.ErrStateConflict {
			return errors.InternalError(err)
		}
		metrics.MeltPayments.WithLabelValues("unknown").Inc()
	default:
		// still in flight at the node; the reconciler picks it up
		metrics.MeltPayments.WithLabelValues("pending").Inc()
	}
	return nil
}

func (uc *MeltUsecase) issueChange(ctx context.Context, id uuid.UUID, amount uint64) string {
	if amount == 0 {
		return ""
	}
	token, err := uc.redeemer.IssueChange(ctx, amount)
	if err != nil {
		// the value is stranded in the service wallet; surface loudly so an
		// operator can reimburse the payer
		logger.Error(ctx, "could not issue change token",
			zap.String("quote_id", id.String()), zap.Uint64("amount", amount), zap.Error(err))
		return ""
	}
	return token
}

func mapRedeemError(err error) error {
	switch err {
	case errors.ErrInvalidToken:
		return errors.BadRequest("invalid ecash token")
	case errors.ErrInsufficientAmount:
		return errors.BadRequest("token amount below amount plus fee reserve")
	case errors.ErrAlreadySpent:
		return errors.Conflict("token already spent", errors.ErrAlreadySpent)
	default:
		return errors.InternalError(err)
	}
}
