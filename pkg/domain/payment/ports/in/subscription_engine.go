package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

// SubscriptionView augments a Subscription with its derived days-remaining.
type SubscriptionView struct {
	*entities.Subscription
	DaysRemaining *int
}

// SubscriptionEngine is the subscription domain's public use-case surface.
type SubscriptionEngine interface {
	Activate(ctx context.Context, payment *entities.Payment, plan *entities.Plan) (*entities.Subscription, error)
	CurrentSubscription(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*SubscriptionView, error)
	IsActive(ctx context.Context, tenantID uuid.UUID, externalUserID string) (bool, error)
	History(ctx context.Context, tenantID uuid.UUID, externalUserID string) ([]*entities.Subscription, error)
	ExpireDue(ctx context.Context) (int, error)
}
