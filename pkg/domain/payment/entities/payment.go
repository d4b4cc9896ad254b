package entities

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the closed set of states in the payment lifecycle DFA.
type PaymentStatus string

const (
	PaymentStatusPending               PaymentStatus = "pending"
	PaymentStatusAwaitingConfirmation  PaymentStatus = "awaiting_confirmation"
	PaymentStatusConfirmed             PaymentStatus = "confirmed"
	PaymentStatusExpired               PaymentStatus = "expired"
	PaymentStatusCancelled             PaymentStatus = "cancelled"
	PaymentStatusFailed                PaymentStatus = "failed"
)

const paymentExpiry = 30 * time.Minute

// Payment is a single purchase attempt, settled on one of the supported
// chains. SenderAddressEncrypted and SenderAddressHMAC never expose the raw
// sender address outside of the crypto envelope (pkg/infra/crypto).
type Payment struct {
	ID       uuid.UUID `json:"id" bson:"_id"`
	TenantID uuid.UUID `json:"tenant_id" bson:"tenant_id"`

	ExternalUserID string    `json:"external_user_id" bson:"external_user_id"`
	PlanID         uuid.UUID `json:"plan_id" bson:"plan_id"`
	Amount         string    `json:"amount" bson:"amount"`
	Token          Token     `json:"token" bson:"token"`
	Network        Network   `json:"network" bson:"network"`

	SenderAddressEncrypted string `json:"-" bson:"sender_address_encrypted"`
	SenderAddressHMAC      string `json:"-" bson:"sender_address_hmac"`
	ReceiverAddress        string `json:"receiver_address" bson:"receiver_address"`

	Status PaymentStatus `json:"status" bson:"status"`

	TxHash        string     `json:"tx_hash,omitempty" bson:"tx_hash,omitempty"`
	Confirmations int        `json:"confirmations" bson:"confirmations"`
	TxConfirmedAt *time.Time `json:"tx_confirmed_at,omitempty" bson:"tx_confirmed_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty" bson:"error_message,omitempty"`
	RetryCount    int        `json:"retry_count" bson:"retry_count"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

func (p *Payment) GetID() uuid.UUID { return p.ID }

func NewPayment(tenantID uuid.UUID, externalUserID string, planID uuid.UUID, amount string, token Token, network Network, senderEncrypted, senderHMAC, receiverAddress string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:                     uuid.New(),
		TenantID:               tenantID,
		ExternalUserID:         externalUserID,
		PlanID:                 planID,
		Amount:                 amount,
		Token:                  token,
		Network:                network,
		SenderAddressEncrypted: senderEncrypted,
		SenderAddressHMAC:      senderHMAC,
		ReceiverAddress:        receiverAddress,
		Status:                 PaymentStatusPending,
		CreatedAt:              now,
		UpdatedAt:              now,
		ExpiresAt:              now.Add(paymentExpiry),
	}
}

// IsExpired reports whether the payment's deadline has passed as of t.
func (p *Payment) IsExpired(t time.Time) bool {
	return t.After(p.ExpiresAt)
}

// MarkAwaitingConfirmation transitions pending -> awaiting_confirmation.
// Callers must have already checked the pending/expiry preconditions.
func (p *Payment) MarkAwaitingConfirmation() {
	p.Status = PaymentStatusAwaitingConfirmation
	p.UpdatedAt = time.Now().UTC()
}

// MarkConfirmed records the matching on-chain transfer and transitions to
// the terminal confirmed state. Must only be called from the atomic
// confirmation handler.
func (p *Payment) MarkConfirmed(txHash string, confirmations int) {
	now := time.Now().UTC()
	p.Status = PaymentStatusConfirmed
	p.TxHash = txHash
	p.Confirmations = confirmations
	p.TxConfirmedAt = &now
	p.UpdatedAt = now
}

func (p *Payment) MarkExpired() {
	p.Status = PaymentStatusExpired
	p.UpdatedAt = time.Now().UTC()
}

func (p *Payment) MarkCancelled() {
	p.Status = PaymentStatusCancelled
	p.UpdatedAt = time.Now().UTC()
}

func (p *Payment) MarkFailed(reason string) {
	p.Status = PaymentStatusFailed
	p.ErrorMessage = reason
	p.UpdatedAt = time.Now().UTC()
}

// IsInFlight reports whether the payment still counts against the
// single-in-flight-payment-per-user invariant (I1).
func (p *Payment) IsInFlight() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusAwaitingConfirmation
}

// IsTerminal reports whether no further transition can occur.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusConfirmed, PaymentStatusExpired, PaymentStatusCancelled, PaymentStatusFailed:
		return true
	default:
		return false
	}
}
