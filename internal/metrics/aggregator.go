package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SnapshotReader is satisfied by *Repository.
type SnapshotReader interface {
	Snapshot(ctx context.Context, since time.Time) (Snapshot, error)
}

// Aggregator periodically refreshes the delivery gauges from the database
type Aggregator struct {
	repo     SnapshotReader
	logger   *slog.Logger
	interval time.Duration
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// NewAggregator creates a worker that reads a snapshot every interval,
// counting deliveries over the trailing window.
func NewAggregator(repo SnapshotReader, logger *slog.Logger, interval, window time.Duration) *Aggregator {
	if interval <= 0 {
		interval = time.Minute
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	return &Aggregator{
		repo:     repo,
		logger:   logger,
		interval: interval,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs one aggregation immediately, then one per tick until ctx is
// done or Stop is called.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("metrics aggregator started", "interval", a.interval, "window", a.window)

	a.aggregate(ctx)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("metrics aggregator stopped")
			return
		case <-a.done:
			a.logger.Info("metrics aggregator stopped")
			return
		case <-ticker.C:
			a.aggregate(ctx)
		}
	}
}

func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

func (a *Aggregator) aggregate(ctx context.Context) {
	s, err := a.repo.Snapshot(ctx, a.now().Add(-a.window))
	if err != nil {
		// keep the previous values
		a.logger.Error("failed to aggregate delivery metrics", "error", err)
		return
	}

	Endpoints.WithLabelValues("active").Set(float64(s.ActiveEndpoints))
	Endpoints.WithLabelValues("inactive").Set(float64(s.InactiveEndpoints))
	WindowDeliveries.WithLabelValues("success").Set(float64(s.Succeeded))
	WindowDeliveries.WithLabelValues("failed").Set(float64(s.Failed))
	SuccessRatio.Set(s.SuccessRatio())

	a.logger.Debug("delivery metrics aggregated",
		"active_endpoints", s.ActiveEndpoints,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
	)
}
