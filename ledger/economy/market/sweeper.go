package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/mmomarket/marketd/ledger/database/models"
	"github.com/mmomarket/marketd/ledger/logger"
)

// CheckExpiredOffers archives every offer older than the offer duration and
// settles it. It returns how many offers this call archived.
func (s *Service) CheckExpiredOffers(ctx context.Context) (int, error) {
	cutoff := s.unixNow() - s.offerDuration
	expired, err := s.offers.GetExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired offers: %w", err)
	}
	return s.ProcessExpiredOffers(ctx, expired), nil
}

// ProcessExpiredOffers moves each offer to history as Expired and settles
// the ones this call won. Offers already removed elsewhere are skipped.
func (s *Service) ProcessExpiredOffers(ctx context.Context, offers []*models.MarketOffer) int {
	archived := 0
	for _, expired := range offers {
		if ctx.Err() != nil {
			break
		}

		offer, err := s.moveOfferToHistory(ctx, expired.ID, OfferStateExpired)
		if err != nil {
			logger.LogError("Failed to expire offer", err, slog.Int64("offer_id", expired.ID))
			continue
		}
		if offer == nil {
			continue
		}

		archived++
		s.settle(ctx, offer)
	}
	return archived
}

// Sweeper runs CheckExpiredOffers on the task queue at a fixed interval.
// A non-positive interval runs a single sweep.
type Sweeper struct {
	service  *Service
	tasks    TaskSubmitter
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(service *Service, tasks TaskSubmitter, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		tasks:    tasks,
		interval: interval,
	}
}

// Start schedules the first sweep immediately.
func (sw *Sweeper) Start(ctx context.Context) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.done != nil {
		select {
		case <-sw.done:
		default:
			return ErrSweeperRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	sw.cancel = cancel
	sw.done = done

	go func() {
		defer close(done)
		sw.loop(ctx)
	}()

	logger.LogSystem("Expiry sweeper started", slog.Duration("interval", sw.interval))
	return nil
}

// Stop cancels future sweeps and waits for the loop to exit. A sweep already
// handed to the task queue finishes there.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	cancel, done := sw.cancel, sw.done
	sw.cancel = nil
	sw.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.LogSystem("Expiry sweeper stopped")
}

func (sw *Sweeper) Running() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.done == nil {
		return false
	}
	select {
	case <-sw.done:
		return false
	default:
		return true
	}
}

func (sw *Sweeper) loop(ctx context.Context) {
	sw.trigger(ctx)
	if sw.interval <= 0 {
		return
	}

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sw.trigger(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) trigger(ctx context.Context) {
	start := time.Now()
	var archived int
	sweep := func(ctx context.Context) error {
		var err error
		archived, err = sw.service.CheckExpiredOffers(ctx)
		return err
	}
	onComplete := func(err error) {
		if err != nil {
			return
		}
		logger.LogMarket("Expired offers swept",
			slog.Int("archived", archived),
			logger.Elapsed(start))
	}

	if sw.tasks == nil {
		err := sweep(ctx)
		if err != nil {
			logger.LogError("Expiry sweep failed", err)
		}
		onComplete(err)
		return
	}
	if err := sw.tasks.SubmitWithCallback(ctx, "market.check_expired_offers", sweep, onComplete, config.SweepTimeout); err != nil {
		logger.LogError("Failed to schedule expiry sweep", err)
	}
}
