package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"sat-search.backend/internal/domain/repositories"
)

// QuoteExpiryJob expires mint quotes past their deadline and prunes expired
// mint quotes and stale unpaid melt quotes past the retention window. Melt
// quotes have no expired state; an unpaid one past retention is simply
// deleted, while every other melt state is in flight or a settlement record.
type QuoteExpiryJob struct {
	mintRepo  repositories.MintQuoteRepository
	meltRepo  repositories.MeltQuoteRepository
	interval  time.Duration
	retention time.Duration
	stop      chan struct{}
}

func NewQuoteExpiryJob(mintRepo repositories.MintQuoteRepository, meltRepo repositories.MeltQuoteRepository, interval, retention time.Duration) *QuoteExpiryJob {
	return &QuoteExpiryJob{
		mintRepo:  mintRepo,
		meltRepo:  meltRepo,
		interval:  interval,
		retention: retention,
		stop:      make(chan struct{}),
	}
}

func (j *QuoteExpiryJob) Start(ctx context.Context) {
	log.Println("🕐 Starting quote expiry job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Quote expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Quote expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredQuotes(ctx)
			j.pruneExpiredQuotes(ctx)
		}
	}
}

func (j *QuoteExpiryJob) Stop() {
	close(j.stop)
}

func (j *QuoteExpiryJob) processExpiredQuotes(ctx context.Context) {
	expired, err := j.mintRepo.GetExpiredPending(ctx, 100)
	if err != nil {
		log.Printf("❌ Error fetching expired mint quotes: %v", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	log.Printf("🔄 Processing %d expired mint quotes...", len(expired))

	var ids []uuid.UUID
	for _, quote := range expired {
		ids = append(ids, quote.ID)
	}

	if err := j.mintRepo.ExpireQuotes(ctx, ids); err != nil {
		log.Printf("❌ Error expiring mint quotes: %v", err)
		return
	}

	log.Printf("✅ Expired %d mint quotes", len(expired))
}

func (j *QuoteExpiryJob) pruneExpiredQuotes(ctx context.Context) {
	cutoff := time.Now().Add(-j.retention)

	pruned, err := j.mintRepo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Error pruning expired mint quotes: %v", err)
	} else if pruned > 0 {
		log.Printf("🧹 Pruned %d expired mint quotes", pruned)
	}

	pruned, err = j.meltRepo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Error pruning stale melt quotes: %v", err)
	} else if pruned > 0 {
		log.Printf("🧹 Pruned %d stale melt quotes", pruned)
	}
}
