package out

import (
	"context"

	"github.com/google/uuid"
)

// WebhookPublisher is the narrow surface the payment and subscription
// engines use to emit events, implemented by the webhook engine.
type WebhookPublisher interface {
	Enqueue(ctx context.Context, tenantID uuid.UUID, event string, data map[string]any) error
}

// OfacScreener is the narrow surface the payment engine uses to gate
// payment creation, implemented by the OFAC service.
type OfacScreener interface {
	CheckAddress(ctx context.Context, address string) (isSanctioned bool, sdnName string, err error)
}

// Enroller is the narrow surface the payment engine uses to hand a payment
// to the Monitor once the caller has confirmed sending funds, implemented
// by pkg/app/monitor.Monitor. Enrollment is idempotent.
type Enroller interface {
	Enroll(paymentID uuid.UUID)
}
