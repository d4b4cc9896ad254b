package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"

	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

// Store composes the per-entity repositories into the single out.Storage
// port the payment domain depends on.
type Store struct {
	*TenantRepository
	*PlanRepository
	*PaymentRepository
	*SubscriptionRepository
	*WebhookRepository
}

var _ out.Storage = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	return &Store{
		TenantRepository:       NewTenantRepository(db),
		PlanRepository:         NewPlanRepository(db),
		PaymentRepository:      NewPaymentRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		WebhookRepository:      NewWebhookRepository(db),
	}
}
