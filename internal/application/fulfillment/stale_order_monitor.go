package fulfillment

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// StaleOrderMonitor reports orders that have stayed pending longer than
// a threshold, which usually means their job was never enqueued.
// It only reports; nothing is re-enqueued.
type StaleOrderMonitor struct {
	orders trade.OrderRepository
	after  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewStaleOrderMonitor creates a StaleOrderMonitor
func NewStaleOrderMonitor(orders trade.OrderRepository, after time.Duration, logger *zap.Logger) *StaleOrderMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if after <= 0 {
		after = 10 * time.Minute
	}
	return &StaleOrderMonitor{
		orders: orders,
		after:  after,
		logger: logger,
		now:    time.Now,
	}
}

// Check counts stale pending orders and logs a warning when any exist
func (m *StaleOrderMonitor) Check(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.after)
	count, err := m.orders.CountPendingBefore(ctx, cutoff)
	if err != nil {
		m.logger.Error("stale order check failed", zap.Error(err))
		return 0, err
	}
	if count > 0 {
		m.logger.Warn("orders pending without progress",
			zap.Int64("count", count),
			zap.Duration("older_than", m.after),
			zap.Time("cutoff", cutoff),
		)
	}
	return count, nil
}
