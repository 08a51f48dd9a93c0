package price

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"sat-search.backend/pkg/logger"
)

// ErrNoPrice is returned before the first successful rate fetch
var ErrNoPrice = errors.New("btc/usd price not available yet")

const msatsPerBTC = 100_000_000_000

// Converter turns a USD cent amount into satoshis at the current exchange rate
type Converter interface {
	SatsForCents(cents uint64) (uint64, error)
}

// Watcher keeps a cached BTC/USD rate refreshed in the background
type Watcher struct {
	url      string
	interval time.Duration
	client   *http.Client

	mu       sync.RWMutex
	usdPrice float64

	stop chan struct{}
	done chan struct{}
}

func NewWatcher(url string, interval time.Duration) *Watcher {
	return &Watcher{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start fetches the rate once synchronously, then refreshes on a ticker until
// Stop is called. The initial fetch error is returned so startup can fail
// loudly when pricing is required.
func (w *Watcher) Start(ctx context.Context) error {
	err := w.refresh(ctx)

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.refresh(context.Background()); err != nil {
					logger.Warn(ctx, "price refresh failed", zap.Error(err))
				}
			case <-w.stop:
				return
			}
		}
	}()

	return err
}

func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}

// SatsForCents converts a USD cent amount into whole satoshis, rounding up so
// conversion never undercharges.
func (w *Watcher) SatsForCents(cents uint64) (uint64, error) {
	w.mu.RLock()
	usd := w.usdPrice
	w.mu.RUnlock()

	if usd <= 0 {
		return 0, ErrNoPrice
	}

	priceCents := uint64(usd * 100)
	msats := cents * msatsPerBTC / priceCents
	return (msats + 999) / 1000, nil
}

func (w *Watcher) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	usd := gjson.GetBytes(body, "USD").Float()
	if usd <= 0 {
		return fmt.Errorf("price source returned invalid rate %f", usd)
	}

	w.mu.Lock()
	w.usdPrice = usd
	w.mu.Unlock()

	logger.Debug(ctx, "btc/usd rate refreshed", zap.Float64("usd", usd))
	return nil
}
