package entities

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEventType names the events delivered to tenant webhook endpoints.
type WebhookEventType string

const (
	WebhookEventPaymentCreated        WebhookEventType = "payment.created"
	WebhookEventPaymentConfirmed      WebhookEventType = "payment.confirmed"
	WebhookEventPaymentExpired        WebhookEventType = "payment.expired"
	WebhookEventPaymentFailed         WebhookEventType = "payment.failed"
	WebhookEventSubscriptionActivated WebhookEventType = "subscription.activated"
	WebhookEventSubscriptionExpired   WebhookEventType = "subscription.expired"
)

// WebhookDeliveryStatus tracks a single delivery attempt sequence.
type WebhookDeliveryStatus string

const (
	WebhookDeliveryPending    WebhookDeliveryStatus = "pending"
	WebhookDeliveryDelivered  WebhookDeliveryStatus = "delivered"
	WebhookDeliveryExhausted  WebhookDeliveryStatus = "exhausted"
)

// RetryDelays is the fixed backoff schedule applied between delivery
// attempts, in order. Index i is the wait before attempt i+2.
var RetryDelays = []time.Duration{
	60 * time.Second,
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
}

// WebhookLog records one notification enqueued for a tenant endpoint and
// the history of attempts made to deliver it.
type WebhookLog struct {
	ID        uuid.UUID            `json:"id" bson:"_id"`
	TenantID  uuid.UUID            `json:"tenant_id" bson:"tenant_id"`
	EventType WebhookEventType     `json:"event_type" bson:"event_type"`
	PaymentID uuid.UUID            `json:"payment_id" bson:"payment_id"`
	Payload   map[string]any       `json:"payload" bson:"payload"`
	Status    WebhookDeliveryStatus `json:"status" bson:"status"`
	Attempts  int                  `json:"attempts" bson:"attempts"`
	NextAttemptAt time.Time        `json:"next_attempt_at" bson:"next_attempt_at"`
	LastError string               `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

func (w *WebhookLog) GetID() uuid.UUID { return w.ID }

func NewWebhookLog(tenantID uuid.UUID, eventType WebhookEventType, paymentID uuid.UUID, payload map[string]any) *WebhookLog {
	now := time.Now().UTC()
	return &WebhookLog{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventType:     eventType,
		PaymentID:     paymentID,
		Payload:       payload,
		Status:        WebhookDeliveryPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkDelivered records a successful delivery.
func (w *WebhookLog) MarkDelivered() {
	w.Status = WebhookDeliveryDelivered
	w.UpdatedAt = time.Now().UTC()
}

// ScheduleRetry records a failed attempt and sets the next attempt time per
// RetryDelays, or marks the log exhausted once the schedule is spent.
func (w *WebhookLog) ScheduleRetry(errMsg string) {
	now := time.Now().UTC()
	w.Attempts++
	w.LastError = errMsg
	w.UpdatedAt = now

	idx := w.Attempts - 1
	if idx >= len(RetryDelays) {
		w.Status = WebhookDeliveryExhausted
		return
	}
	w.NextAttemptAt = now.Add(RetryDelays[idx])
}

// IsDue reports whether the next retry is ready to run as of t.
func (w *WebhookLog) IsDue(t time.Time) bool {
	return w.Status == WebhookDeliveryPending && !t.Before(w.NextAttemptAt)
}
