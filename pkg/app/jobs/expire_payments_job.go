// Package jobs implements the fixed periodic sweeps this gateway runs
// outside the request path: payment expiry, subscription expiry, webhook
// retries and the OFAC feed refresh. Each job follows the same
// ticker-plus-immediate-run shape as pkg/app/monitor.Monitor.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	paymentOut "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

const expirePaymentsInterval = 5 * time.Minute

// ExpirePaymentsJob is the backstop sweep for payments past their expiry
// window. In the common case the Monitor already catches
// awaiting_confirmation payments on its own 30s tick and unenrolls them;
// this job additionally covers payments still pending (the caller never
// called confirmPaymentSent) and any payment a process restart left
// un-enrolled before the Monitor's bootstrap ran.
type ExpirePaymentsJob struct {
	storage  paymentOut.Storage
	webhooks paymentOut.WebhookPublisher
	ticker   *time.Ticker
	cancel   context.CancelFunc
	logger   *slog.Logger
}

func NewExpirePaymentsJob(storage paymentOut.Storage, webhooks paymentOut.WebhookPublisher) *ExpirePaymentsJob {
	return &ExpirePaymentsJob{
		storage:  storage,
		webhooks: webhooks,
		logger:   slog.Default().With("component", "expire_payments_job"),
	}
}

func (j *ExpirePaymentsJob) Start(ctx context.Context) {
	if j.ticker != nil {
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.ticker = time.NewTicker(expirePaymentsInterval)

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

func (j *ExpirePaymentsJob) Stop() {
	if j.ticker == nil {
		return
	}
	j.ticker.Stop()
	j.cancel()
	j.ticker = nil
}

func (j *ExpirePaymentsJob) run(ctx context.Context) {
	now := time.Now().UTC()
	expired, err := j.storage.ExpiredPayments(ctx, now)
	if err != nil {
		j.logger.Error("failed to load expired payments", "error", err)
		return
	}

	count := 0
	for _, payment := range expired {
		payment.MarkExpired()
		if err := j.storage.SavePayment(ctx, payment); err != nil {
			j.logger.Error("failed to persist expired payment", "payment_id", payment.ID, "error", err)
			continue
		}
		count++
		if j.webhooks != nil {
			if err := j.webhooks.Enqueue(ctx, payment.TenantID, string(entities.WebhookEventPaymentExpired), map[string]any{
				"paymentId":      payment.ID.String(),
				"externalUserId": payment.ExternalUserID,
				"planId":         payment.PlanID.String(),
				"amount":         payment.Amount,
				"token":          payment.Token,
				"network":        payment.Network,
			}); err != nil {
				j.logger.Warn("webhook enqueue failed", "event", "payment.expired", "error", err)
			}
		}
	}
	if count > 0 {
		j.logger.Info("expired pending payments", "count", count)
	}
}
