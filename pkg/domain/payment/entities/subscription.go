package entities

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus reflects whether a subscription currently grants access.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is the access grant created when a payment against a
// recurring plan is confirmed. Lifetime plans (PeriodDays == nil) produce a
// subscription with a nil ExpiresAt that never expires.
type Subscription struct {
	ID             uuid.UUID  `json:"id" bson:"_id"`
	TenantID       uuid.UUID  `json:"tenant_id" bson:"tenant_id"`
	ExternalUserID string     `json:"external_user_id" bson:"external_user_id"`
	PlanID         uuid.UUID  `json:"plan_id" bson:"plan_id"`
	PaymentID      uuid.UUID  `json:"payment_id" bson:"payment_id"`
	Status         SubscriptionStatus `json:"status" bson:"status"`
	StartedAt      time.Time  `json:"started_at" bson:"started_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

func (s *Subscription) GetID() uuid.UUID { return s.ID }

// NewSubscription activates a grant from a confirmed payment. periodDays
// nil means lifetime (no expiry).
func NewSubscription(tenantID uuid.UUID, externalUserID string, planID, paymentID uuid.UUID, periodDays *int) *Subscription {
	now := time.Now().UTC()
	s := &Subscription{
		ID:             uuid.New(),
		TenantID:       tenantID,
		ExternalUserID: externalUserID,
		PlanID:         planID,
		PaymentID:      paymentID,
		Status:         SubscriptionStatusActive,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if periodDays != nil {
		expires := now.AddDate(0, 0, *periodDays)
		s.ExpiresAt = &expires
	}
	return s
}

// IsActive reports access validity as of t: status active and (no expiry or
// expiry in the future).
func (s *Subscription) IsActive(t time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	return s.ExpiresAt == nil || t.Before(*s.ExpiresAt)
}

func (s *Subscription) MarkExpired() {
	s.Status = SubscriptionStatusExpired
	s.UpdatedAt = time.Now().UTC()
}
