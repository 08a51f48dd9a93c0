package jobs

import (
	"context"
	"log"
	"time"

	"sat-search.backend/internal/domain/entities"
	domainerrors "sat-search.backend/internal/domain/errors"
	"sat-search.backend/internal/domain/repositories"
	"sat-search.backend/internal/infrastructure/lightning"
)

// MintQuotePollerJob watches outstanding invoices and flips quotes to paid
// once the node reports settlement
type MintQuotePollerJob struct {
	repo      repositories.MintQuoteRepository
	lightning lightning.Client
	interval  time.Duration
	stop      chan struct{}
}

func NewMintQuotePollerJob(repo repositories.MintQuoteRepository, ln lightning.Client, interval time.Duration) *MintQuotePollerJob {
	return &MintQuotePollerJob{
		repo:      repo,
		lightning: ln,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

func (j *MintQuotePollerJob) Start(ctx context.Context) {
	log.Println("🕐 Starting mint quote poller job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Mint quote poller job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Mint quote poller job stopped")
			return
		case <-ticker.C:
			j.pollUnpaidQuotes(ctx)
		}
	}
}

func (j *MintQuotePollerJob) Stop() {
	close(j.stop)
}

func (j *MintQuotePollerJob) pollUnpaidQuotes(ctx context.Context) {
	quotes, err := j.repo.GetUnpaidUnexpired(ctx, 100)
	if err != nil {
		log.Printf("❌ Error fetching unpaid mint quotes: %v", err)
		return
	}

	for _, quote := range quotes {
		state, err := j.lightning.InvoiceStatus(ctx, quote.PaymentHash)
		if err != nil {
			log.Printf("❌ Error checking invoice for quote %s: %v", quote.ID, err)
			continue
		}
		if state != lightning.InvoiceStatePaid {
			continue
		}

		err = j.repo.CompareAndSwapState(ctx, quote.ID, entities.MintQuoteStateUnpaid, entities.MintQuoteStatePaid)
		if err != nil && err != domainerrors.ErrStateConflict {
			log.Printf("❌ Error marking mint quote %s paid: %v", quote.ID, err)
			continue
		}
		if err == nil {
			log.Printf("✅ Mint quote %s paid (%d sats)", quote.ID, quote.Amount)
		}
	}
}
