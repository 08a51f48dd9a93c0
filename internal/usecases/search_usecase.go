package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/domain/errors"
	domainRepos "sat-search.backend/internal/domain/repositories"
	"sat-search.backend/internal/infrastructure/ecash"
	"sat-search.backend/internal/infrastructure/price"
	"sat-search.backend/internal/infrastructure/search"
	"sat-search.backend/pkg/logger"
	"sat-search.backend/pkg/metrics"
	"sat-search.backend/pkg/redis"
	"sat-search.backend/pkg/utils"
)

// SearchUsecase gates the upstream search provider behind ecash redemption.
// A request with a valid token is charged exactly once: the token redemption,
// the counter increment and the audit event all land before the upstream call
// goes out.
type SearchUsecase struct {
	counterRepo domainRepos.SearchCounterRepository
	eventRepo   domainRepos.SearchEventRepository
	uow         domainRepos.UnitOfWork
	redeemer    ecash.Redeemer
	provider    search.Provider
	mintQuotes  *MintQuoteUsecase
	converter   price.Converter
	priceSats   uint64
	costCents   uint64
	quoteExpiry time.Duration
}

func NewSearchUsecase(
	counterRepo domainRepos.SearchCounterRepository,
	eventRepo domainRepos.SearchEventRepository,
	uow domainRepos.UnitOfWork,
	redeemer ecash.Redeemer,
	provider search.Provider,
	mintQuotes *MintQuoteUsecase,
	converter price.Converter,
	priceSats uint64,
	costCents uint64,
	quoteExpiry time.Duration,
) *SearchUsecase {
	return &SearchUsecase{
		counterRepo: counterRepo,
		eventRepo:   eventRepo,
		uow:         uow,
		redeemer:    redeemer,
		provider:    provider,
		mintQuotes:  mintQuotes,
		converter:   converter,
		priceSats:   priceSats,
		costCents:   costCents,
		quoteExpiry: quoteExpiry,
	}
}

// PricePerSearch is the sat price demanded for one search. With an upstream
// cost configured in cents the price tracks the exchange rate, floored at the
// flat sat price.
func (uc *SearchUsecase) PricePerSearch() (uint64, error) {
	if uc.costCents == 0 || uc.converter == nil {
		return uc.priceSats, nil
	}

	sats, err := uc.converter.SatsForCents(uc.costCents)
	if err != nil {
		return 0, errors.ServiceUnavailable("exchange rate not available")
	}
	if sats < uc.priceSats {
		sats = uc.priceSats
	}
	return sats, nil
}

// Search authorizes the request by redeeming the token, then forwards the
// query upstream exactly once. Redemption is irreversible; an upstream
// failure after a successful redemption is returned as a gateway error
// without refunding the token.
func (uc *SearchUsecase) Search(ctx context.Context, query, rawToken string) ([]entities.SearchResult, error) {
	if query == "" {
		return nil, errors.BadRequest("query must not be empty")
	}

	paid, err := uc.authorize(ctx, query, rawToken)
	if err != nil {
		return nil, err
	}

	results, err := uc.provider.Search(ctx, query)
	if err != nil {
		logger.Error(ctx, "upstream search failed after redemption",
			zap.Uint64("token_amount", paid), zap.Error(err))
		return nil, errors.BadGateway("search provider failed")
	}
	return results, nil
}

// Challenge hands the caller a payment quote for one search, reusing the open
// quote last handed to the same caller when it is still payable.
func (uc *SearchUsecase) Challenge(ctx context.Context, caller string) (*entities.MintQuote, error) {
	amount, err := uc.PricePerSearch()
	if err != nil {
		return nil, err
	}

	metrics.PaymentChallenges.Inc()

	if cached, err := redis.OutstandingQuote(ctx, caller); err == nil && cached != "" {
		if id, parseErr := utils.ParseUUID(cached); parseErr == nil {
			quote, getErr := uc.mintQuotes.GetQuote(ctx, id)
			if getErr == nil && quote.State == entities.MintQuoteStateUnpaid && quote.Amount == amount {
				return quote, nil
			}
		}
		// paid, expired, repriced or unparseable; drop it before minting anew
		if err := redis.ForgetQuote(ctx, caller); err != nil {
			logger.Warn(ctx, "could not drop stale outstanding quote", zap.Error(err))
		}
	}

	quote, err := uc.mintQuotes.CreateQuote(ctx, amount)
	if err != nil {
		return nil, err
	}

	if err := redis.RememberQuote(ctx, caller, quote.ID.String(), uc.quoteExpiry); err != nil {
		logger.Warn(ctx, "could not cache outstanding quote", zap.Error(err))
	}
	return quote, nil
}

// Count returns the all-time number of paid searches
func (uc *SearchUsecase) Count(ctx context.Context) (uint64, error) {
	count, err := uc.counterRepo.Get(ctx)
	if err != nil {
		return 0, errors.InternalError(err)
	}
	return count, nil
}

// authorize redeems the token and durably records the paid search. Returns
// the amount redeemed.
func (uc *SearchUsecase) authorize(ctx context.Context, query, rawToken string) (uint64, error) {
	if rawToken == "" {
		return 0, errors.PaymentRequired("payment required", nil)
	}

	amount, err := uc.PricePerSearch()
	if err != nil {
		return 0, err
	}

	change, err := uc.redeemer.VerifyAndRedeem(ctx, rawToken, amount)
	if err != nil {
		switch err {
		case errors.ErrInvalidToken:
			return 0, errors.PaymentRequired("invalid ecash token", err)
		case errors.ErrInsufficientAmount:
			return 0, errors.PaymentRequired("token amount below price", err)
		case errors.ErrAlreadySpent:
			return 0, errors.PaymentRequired("token already spent", err)
		default:
			return 0, errors.InternalError(err)
		}
	}

	queryHash := sha256.Sum256([]byte(query))
	event := &entities.SearchEvent{
		ID:          utils.GenerateUUIDv7(),
		TokenAmount: amount + change,
		QueryHash:   hex.EncodeToString(queryHash[:]),
	}

	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := uc.counterRepo.Increment(txCtx); err != nil {
			return err
		}
		return uc.eventRepo.Create(txCtx, event)
	})
	if err != nil {
		// the token is already burned; surface loudly, this needs an operator
		logger.Error(ctx, "paid search not recorded", zap.Error(err))
		return 0, errors.InternalError(err)
	}

	metrics.SearchesServed.Inc()
	return amount + change, nil
}
