package out

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

// Storage is the persistence contract the payment domain depends on. A
// single implementation backs every entity family; it is split here by
// entity only for readability.
type Storage interface {
	TenantStorage
	PlanStorage
	PaymentStorage
	SubscriptionStorage
	WebhookStorage
}

type TenantStorage interface {
	GetTenantByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
	GetTenantByAPIKeyDigest(ctx context.Context, digest string) (*entities.Tenant, error)
	SaveTenant(ctx context.Context, t *entities.Tenant) error
}

type PlanStorage interface {
	GetPlanByID(ctx context.Context, tenantID, planID uuid.UUID) (*entities.Plan, error)
	GetPlanByKey(ctx context.Context, tenantID uuid.UUID, planKey string) (*entities.Plan, error)
	ListActivePlans(ctx context.Context, tenantID uuid.UUID) ([]*entities.Plan, error)
	SavePlan(ctx context.Context, p *entities.Plan) error
}

type PaymentStorage interface {
	GetPaymentByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*entities.Payment, error)
	// GetPaymentByIDUnscoped loads a payment by id without tenant scoping,
	// for use by the Monitor and confirmation handler which discover the
	// tenant from the row itself.
	GetPaymentByIDUnscoped(ctx context.Context, paymentID uuid.UUID) (*entities.Payment, error)
	// PendingPaymentForUser returns an in-flight (pending or
	// awaiting_confirmation) payment for the user, if any, enforcing I1.
	PendingPaymentForUser(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*entities.Payment, error)
	ExpiredPayments(ctx context.Context, now time.Time) ([]*entities.Payment, error)
	AwaitingConfirmationPayments(ctx context.Context) ([]*entities.Payment, error)
	PaymentByTxHash(ctx context.Context, txHash string) (*entities.Payment, error)
	PaymentHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string, limit int) ([]*entities.Payment, error)
	// CreatePayment persists a new pending payment, failing with a domain
	// conflict error if the unique in-flight/tx-hash constraints are violated.
	CreatePayment(ctx context.Context, p *entities.Payment) error
	SavePayment(ctx context.Context, p *entities.Payment) error
	// ConfirmPayment atomically transitions an awaiting_confirmation payment
	// to confirmed, enforcing the tx_hash uniqueness constraint (I2) at the
	// storage layer. Implementations must reject if another confirmed row
	// already holds txHash.
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, confirmedAt time.Time) error
}

type SubscriptionStorage interface {
	ActiveSubscription(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*entities.Subscription, error)
	SubscriptionHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string) ([]*entities.Subscription, error)
	ExpiredSubscriptions(ctx context.Context, now time.Time) ([]*entities.Subscription, error)
	SaveSubscription(ctx context.Context, s *entities.Subscription) error
	// ExpireActiveForUser marks any currently active subscription for
	// (tenant, user) as expired, used by activate() before inserting a new one.
	ExpireActiveForUser(ctx context.Context, tenantID uuid.UUID, externalUserID string) error
}

type WebhookStorage interface {
	PendingWebhooks(ctx context.Context, now time.Time) ([]*entities.WebhookLog, error)
	SaveWebhookLog(ctx context.Context, w *entities.WebhookLog) error
}
