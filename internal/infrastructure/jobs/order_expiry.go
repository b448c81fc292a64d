package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"problem-hunt.backend/pkg/logger"
)

// orderExpirer is the slice of OrderRepository the sweep needs.
type orderExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderExpiryJob periodically expires pending orders whose deadline passed.
// Verification also checks expiry lazily; the sweep is the safety net for
// orders nobody ever tries to verify.
type OrderExpiryJob struct {
	repo     orderExpirer
	interval time.Duration
	stop     chan struct{}
}

func NewOrderExpiryJob(repo orderExpirer, interval time.Duration) *OrderExpiryJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &OrderExpiryJob{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *OrderExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting order expiry job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "order expiry job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "order expiry job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *OrderExpiryJob) Stop() {
	close(j.stop)
}

func (j *OrderExpiryJob) sweep(ctx context.Context) {
	n, err := j.repo.ExpireStale(ctx, time.Now())
	if err != nil {
		logger.Error(ctx, "expiring stale orders", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "expired stale orders", zap.Int64("count", n))
	}
}
