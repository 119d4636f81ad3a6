package warmer

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-market-cache/internal/config"
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/scheduler"
)

// Warmer periodically refreshes the most requested market data so readers
// rarely pay for an upstream round trip.
type Warmer struct {
	market    interfaces.MarketData
	cfg       config.WarmerConfig
	logger    *zap.Logger
	scheduler *scheduler.Scheduler
	runs      atomic.Int64
}

// New creates a Warmer. Call Start to begin the periodic refresh.
func New(market interfaces.MarketData, cfg config.WarmerConfig, logger *zap.Logger) *Warmer {
	w := &Warmer{
		market: market,
		cfg:    cfg,
		logger: logger,
	}
	w.scheduler = scheduler.New(cfg.Interval, w.WarmUp)
	return w
}

// Start runs one warm-up immediately and then on every interval
func (w *Warmer) Start(ctx context.Context) {
	w.WarmUp(ctx)
	w.scheduler.Start()
	w.logger.Info("Cache warmer started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("top_limit", w.cfg.TopLimit),
		zap.Int("coins", len(w.cfg.CoinIDs)))
}

// Stop halts the periodic refresh and waits for a running pass
func (w *Warmer) Stop() {
	w.scheduler.Stop()
	w.logger.Info("Cache warmer stopped")
}

// Runs returns how many warm-up passes have completed
func (w *Warmer) Runs() int64 {
	return w.runs.Load()
}

// WarmUp refreshes top coins, the global snapshot and each configured coin
// with bounded concurrency.
func (w *Warmer) WarmUp(ctx context.Context) {
	start := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	if w.cfg.Concurrency > 0 {
		g.SetLimit(w.cfg.Concurrency)
	}

	var warmed atomic.Int32

	if w.cfg.TopLimit > 0 {
		g.Go(func() error {
			if coins := w.market.TopCoins(gCtx, w.cfg.TopLimit); len(coins) > 0 {
				warmed.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		if w.market.Global(gCtx) != nil {
			warmed.Add(1)
		}
		return nil
	})

	for _, id := range w.cfg.CoinIDs {
		id := id
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			if w.market.Coin(gCtx, id) != nil {
				warmed.Add(1)
			}
			return nil
		})
	}

	// Market queries absorb their own errors
	_ = g.Wait()
	w.runs.Add(1)

	w.logger.Debug("Cache warm-up finished",
		zap.Int32("warmed", warmed.Load()),
		zap.Duration("duration", time.Since(start)))
}
