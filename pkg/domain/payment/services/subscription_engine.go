package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

// SubscriptionEngine implements in.SubscriptionEngine against a Storage
// port and a webhook publisher for the expiry sweep.
type SubscriptionEngine struct {
	storage  out.Storage
	webhooks out.WebhookPublisher
	logger   *slog.Logger
}

var _ in.SubscriptionEngine = (*SubscriptionEngine)(nil)

func NewSubscriptionEngine(storage out.Storage, webhooks out.WebhookPublisher) *SubscriptionEngine {
	return &SubscriptionEngine{
		storage:  storage,
		webhooks: webhooks,
		logger:   slog.Default().With("component", "subscription_engine"),
	}
}

func (e *SubscriptionEngine) Activate(ctx context.Context, payment *entities.Payment, plan *entities.Plan) (*entities.Subscription, error) {
	if err := e.storage.ExpireActiveForUser(ctx, payment.TenantID, payment.ExternalUserID); err != nil {
		return nil, err
	}
	sub := entities.NewSubscription(payment.TenantID, payment.ExternalUserID, plan.ID, payment.ID, plan.PeriodDays)
	if err := e.storage.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (e *SubscriptionEngine) CurrentSubscription(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*in.SubscriptionView, error) {
	sub, err := e.storage.ActiveSubscription(ctx, tenantID, externalUserID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	view := &in.SubscriptionView{Subscription: sub}
	if sub.ExpiresAt != nil {
		days := int(time.Until(*sub.ExpiresAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		view.DaysRemaining = &days
	}
	return view, nil
}

func (e *SubscriptionEngine) IsActive(ctx context.Context, tenantID uuid.UUID, externalUserID string) (bool, error) {
	sub, err := e.storage.ActiveSubscription(ctx, tenantID, externalUserID)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}
	return sub.IsActive(time.Now().UTC()), nil
}

func (e *SubscriptionEngine) History(ctx context.Context, tenantID uuid.UUID, externalUserID string) ([]*entities.Subscription, error) {
	return e.storage.SubscriptionHistory(ctx, tenantID, externalUserID)
}

// ExpireDue sweeps active subscriptions whose ends_at has passed, marking
// each expired and emitting subscription.expired.
func (e *SubscriptionEngine) ExpireDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := e.storage.ExpiredSubscriptions(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, sub := range due {
		sub.MarkExpired()
		if err := e.storage.SaveSubscription(ctx, sub); err != nil {
			e.logger.Error("failed to persist expired subscription", "subscription_id", sub.ID, "error", err)
			continue
		}
		count++
		if e.webhooks != nil {
			if err := e.webhooks.Enqueue(ctx, sub.TenantID, string(entities.WebhookEventSubscriptionExpired), map[string]any{
				"subscriptionId": sub.ID.String(),
				"externalUserId": sub.ExternalUserID,
				"planId":         sub.PlanID.String(),
				"paymentId":      sub.PaymentID.String(),
				"startsAt":       sub.StartedAt.Format(time.RFC3339),
				"endsAt":         formatExpiry(sub.ExpiresAt),
			}); err != nil {
				e.logger.Warn("webhook enqueue failed", "event", "subscription.expired", "error", err)
			}
		}
	}
	return count, nil
}
