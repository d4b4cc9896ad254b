package jobs

import (
	"context"
	"log/slog"
	"time"

	paymentIn "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	"github.com/stablepay/gateway/pkg/infra/metrics"
)

const webhookRetryInterval = 2 * time.Minute

// WebhookRetryJob selects due WebhookLog rows and attempts redelivery.
type WebhookRetryJob struct {
	webhooks paymentIn.WebhookEngine
	ticker   *time.Ticker
	cancel   context.CancelFunc
	logger   *slog.Logger
}

func NewWebhookRetryJob(webhooks paymentIn.WebhookEngine) *WebhookRetryJob {
	return &WebhookRetryJob{
		webhooks: webhooks,
		logger:   slog.Default().With("component", "webhook_retry_job"),
	}
}

func (j *WebhookRetryJob) Start(ctx context.Context) {
	if j.ticker != nil {
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.ticker = time.NewTicker(webhookRetryInterval)

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

// Stop halts the scheduler. Unlike the other jobs, the retry sweep does not
// run immediately on Start: a freshly delivered webhook's next_attempt_at is
// always in the future, so an immediate first pass would find nothing.
func (j *WebhookRetryJob) Stop() {
	if j.ticker == nil {
		return
	}
	j.ticker.Stop()
	j.cancel()
	j.ticker = nil
}

func (j *WebhookRetryJob) run(ctx context.Context) {
	delivered, err := j.webhooks.RetryPending(ctx)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		j.logger.Error("failed to retry pending webhooks", "error", err)
		return
	}
	if delivered > 0 {
		metrics.WebhookDeliveries.WithLabelValues("delivered").Add(float64(delivered))
		j.logger.Info("redelivered webhooks", "count", delivered)
	}
}
