// Package sweepers owns background refresh loops. The dashboard sweeper
// keeps an in-memory snapshot of admin dashboard metrics warm so the
// dashboard endpoint never fans out queries on request.
package sweepers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vintagevault/pricing-service/internal/database"
)

// DashboardMetrics is the cached snapshot served to the admin dashboard.
type DashboardMetrics struct {
	PendingDrafts  int       `json:"pending_drafts"`
	ApprovedToday  int       `json:"approved_today"`
	RejectedToday  int       `json:"rejected_today"`
	ActiveProducts int       `json:"active_products"`
	PaidOrders     int       `json:"paid_orders"`
	RevenueCents   int64     `json:"revenue_cents"`
	AvgConfidence  float64   `json:"avg_confidence"`
	FailedWebhooks int       `json:"failed_webhooks"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}

// DashboardSweeper periodically refreshes the dashboard snapshot.
type DashboardSweeper struct {
	db       database.Executor
	logger   *zerolog.Logger
	interval time.Duration
	stopChan chan struct{}

	mu      sync.RWMutex
	current *DashboardMetrics
}

// NewDashboardSweeper creates a sweeper refreshing every interval.
func NewDashboardSweeper(db database.Executor, logger *zerolog.Logger, interval time.Duration) *DashboardSweeper {
	return &DashboardSweeper{
		db:       db,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start refreshes once immediately, then on every tick until the context
// is cancelled or Stop is called.
func (s *DashboardSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting dashboard metrics sweeper")

	if err := s.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial dashboard refresh failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Dashboard sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Dashboard sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to refresh dashboard metrics")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *DashboardSweeper) Stop() {
	close(s.stopChan)
}

// Current returns the latest snapshot, or nil before the first
// successful refresh.
func (s *DashboardSweeper) Current() *DashboardMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh runs the snapshot queries in parallel and swaps in the result
// atomically. A failed refresh leaves the previous snapshot in place.
func (s *DashboardSweeper) Refresh(ctx context.Context) error {
	start := time.Now()
	metrics := &DashboardMetrics{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.count(gctx, &metrics.PendingDrafts,
			`SELECT COUNT(*) FROM ai_generated_products WHERE status = 'PENDING'`)
	})
	g.Go(func() error {
		return s.count(gctx, &metrics.ApprovedToday,
			`SELECT COUNT(*) FROM ai_generated_products WHERE status = 'APPROVED' AND reviewed_at >= CURRENT_DATE`)
	})
	g.Go(func() error {
		return s.count(gctx, &metrics.RejectedToday,
			`SELECT COUNT(*) FROM ai_generated_products WHERE status = 'REJECTED' AND reviewed_at >= CURRENT_DATE`)
	})
	g.Go(func() error {
		return s.count(gctx, &metrics.ActiveProducts,
			`SELECT COUNT(*) FROM products WHERE status = 'ACTIVE'`)
	})
	g.Go(func() error {
		err := s.db.QueryRow(gctx,
			`SELECT COUNT(*), COALESCE(SUM(amount_total), 0) FROM orders WHERE status = 'PAID'`,
		).Scan(&metrics.PaidOrders, &metrics.RevenueCents)
		if err != nil {
			return fmt.Errorf("error querying order totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.QueryRow(gctx,
			`SELECT COALESCE(AVG(confidence), 0) FROM ai_generated_products WHERE status = 'PENDING'`,
		).Scan(&metrics.AvgConfidence)
		if err != nil {
			return fmt.Errorf("error querying average confidence: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.count(gctx, &metrics.FailedWebhooks,
			`SELECT COUNT(*) FROM stripe_webhook_events WHERE processed = false`)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	metrics.RefreshedAt = time.Now()

	s.mu.Lock()
	s.current = metrics
	s.mu.Unlock()

	s.logger.Debug().
		Dur("duration", time.Since(start)).
		Int("pending_drafts", metrics.PendingDrafts).
		Msg("Dashboard metrics refreshed")

	return nil
}

func (s *DashboardSweeper) count(ctx context.Context, dst *int, query string) error {
	if err := s.db.QueryRow(ctx, query).Scan(dst); err != nil {
		return fmt.Errorf("error running dashboard count: %w", err)
	}
	return nil
}
