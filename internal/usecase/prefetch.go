package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/whereismatch/internal/platform/logging"
)

// Prefetcher runs best-effort background warmups on a small worker pool.
// Jobs beyond the rate limit or the pool's capacity are dropped, never queued.
type Prefetcher struct {
	pool    *ants.Pool
	limiter *rate.Limiter
	logger  *logging.Logger
	onDrop  func()
	wg      sync.WaitGroup
}

type PrefetcherConfig struct {
	Workers   int
	PerSecond float64
	Logger    *logging.Logger
	// OnDrop is called for each rejected job.
	OnDrop func()
}

func NewPrefetcher(cfg PrefetcherConfig) (*Prefetcher, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	perSecond := cfg.PerSecond
	if perSecond <= 0 {
		perSecond = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	onDrop := cfg.OnDrop
	if onDrop == nil {
		onDrop = func() {}
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create prefetch pool: %w", err)
	}

	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Prefetcher{
		pool:    pool,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
		onDrop:  onDrop,
	}, nil
}

// Submit schedules job and reports whether it was accepted.
func (p *Prefetcher) Submit(ctx context.Context, job func(context.Context)) bool {
	if !p.limiter.Allow() {
		p.logger.DebugContext(ctx, "prefetch dropped", "reason", "rate limited")
		p.onDrop()
		return false
	}

	p.wg.Add(1)
	if err := p.pool.Submit(func() {
		defer p.wg.Done()
		job(ctx)
	}); err != nil {
		p.wg.Done()
		p.logger.DebugContext(ctx, "prefetch dropped", "reason", "pool saturated", "error", err)
		p.onDrop()
		return false
	}
	return true
}

// Wait blocks until every accepted job has finished.
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}

// Close waits for running jobs and releases the pool.
func (p *Prefetcher) Close() {
	p.wg.Wait()
	p.pool.Release()
}
