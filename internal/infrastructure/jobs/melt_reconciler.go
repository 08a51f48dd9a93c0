package jobs

import (
	"context"
	"log"
	"time"

	"sat-search.backend/internal/domain/entities"
	"sat-search.backend/internal/domain/repositories"
)

// MeltResolver settles a pending melt quote from the node's payment record,
// issuing any change owed to the payer. It only queries status; the payment
// itself is never re-sent.
type MeltResolver interface {
	Reconcile(ctx context.Context, quote *entities.MeltQuote) error
}

// MeltReconcilerJob resolves melt quotes stuck in pending by asking the node
// for the true payment outcome.
type MeltReconcilerJob struct {
	repo     repositories.MeltQuoteRepository
	resolver MeltResolver
	interval time.Duration
	stop     chan struct{}
}

func NewMeltReconcilerJob(repo repositories.MeltQuoteRepository, resolver MeltResolver, interval time.Duration) *MeltReconcilerJob {
	return &MeltReconcilerJob{
		repo:     repo,
		resolver: resolver,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *MeltReconcilerJob) Start(ctx context.Context) {
	log.Println("🕐 Starting melt reconciler job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Melt reconciler job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Melt reconciler job stopped")
			return
		case <-ticker.C:
			j.reconcilePending(ctx)
		}
	}
}

func (j *MeltReconcilerJob) Stop() {
	close(j.stop)
}

func (j *MeltReconcilerJob) reconcilePending(ctx context.Context) {
	quotes, err := j.repo.GetPending(ctx, 100)
	if err != nil {
		log.Printf("❌ Error fetching pending melt quotes: %v", err)
		return
	}

	for _, quote := range quotes {
		if err := j.resolver.Reconcile(ctx, quote); err != nil {
			// transient node trouble; the quote stays pending for the next pass
			log.Printf("❌ Error reconciling melt quote %s: %v", quote.ID, err)
			continue
		}
		log.Printf("✅ Reconciled melt quote %s", quote.ID)
	}
}
