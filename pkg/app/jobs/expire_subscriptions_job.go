package jobs

import (
	"context"
	"log/slog"
	"time"

	paymentIn "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
)

const expireSubscriptionsInterval = time.Hour

// ExpireSubscriptionsJob sweeps active subscriptions whose ends_at has
// passed. Lifetime subscriptions (nil ExpiresAt) are never selected.
type ExpireSubscriptionsJob struct {
	subscriptions paymentIn.SubscriptionEngine
	ticker        *time.Ticker
	cancel        context.CancelFunc
	logger        *slog.Logger
}

func NewExpireSubscriptionsJob(subscriptions paymentIn.SubscriptionEngine) *ExpireSubscriptionsJob {
	return &ExpireSubscriptionsJob{
		subscriptions: subscriptions,
		logger:        slog.Default().With("component", "expire_subscriptions_job"),
	}
}

func (j *ExpireSubscriptionsJob) Start(ctx context.Context) {
	if j.ticker != nil {
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.ticker = time.NewTicker(expireSubscriptionsInterval)

	j.run(jobCtx)
	go func() {
		for {
			select {
			case <-jobCtx.Done():
				return
			case <-j.ticker.C:
				j.run(jobCtx)
			}
		}
	}()
}

func (j *ExpireSubscriptionsJob) Stop() {
	if j.ticker == nil {
		return
	}
	j.ticker.Stop()
	j.cancel()
	j.ticker = nil
}

func (j *ExpireSubscriptionsJob) run(ctx context.Context) {
	count, err := j.subscriptions.ExpireDue(ctx)
	if err != nil {
		j.logger.Error("failed to sweep expired subscriptions", "error", err)
		return
	}
	if count > 0 {
		j.logger.Info("expired subscriptions", "count", count)
	}
}
