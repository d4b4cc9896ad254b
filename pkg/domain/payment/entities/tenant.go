package entities

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the configuration envelope for a deployment. The single tenant
// "default" is the common mode; multi-tenant isolation is by TenantID
// foreign key on all owned rows.
type Tenant struct {
	ID             uuid.UUID `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	APIKeyDigest   string    `json:"-" bson:"api_key_digest"`
	WebhookURL     string    `json:"webhook_url,omitempty" bson:"webhook_url,omitempty"`
	WebhookSecret  string    `json:"-" bson:"webhook_secret,omitempty"`
	ReceiverEVM    string    `json:"receiver_evm,omitempty" bson:"receiver_evm,omitempty"`
	ReceiverTron   string    `json:"receiver_tron,omitempty" bson:"receiver_tron,omitempty"`
	Active         bool      `json:"active" bson:"active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *Tenant) GetID() uuid.UUID { return t.ID }

// ReceiverFor returns the tenant's receiver address for the given network,
// or empty if none is configured for it.
func (t *Tenant) ReceiverFor(network Network) string {
	switch network {
	case NetworkTron:
		return t.ReceiverTron
	default:
		return t.ReceiverEVM
	}
}

func NewTenant(name string, apiKeyDigest string) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		ID:           uuid.New(),
		Name:         name,
		APIKeyDigest: apiKeyDigest,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
