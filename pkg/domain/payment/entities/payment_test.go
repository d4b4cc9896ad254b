package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment() *Payment {
	return NewPayment(uuid.New(), "user-1", uuid.New(), "19.99", TokenUSDC, NetworkArbitrum, "enc", "hmac", "0xreceiver")
}

func TestNewPayment_DefaultsToPendingWithExpiry(t *testing.T) {
	before := time.Now().UTC()
	p := newTestPayment()

	require.Equal(t, PaymentStatusPending, p.Status)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.True(t, p.ExpiresAt.After(before))
	assert.Equal(t, 30*time.Minute, p.ExpiresAt.Sub(p.CreatedAt))
	assert.True(t, p.IsInFlight())
	assert.False(t, p.IsTerminal())
}

func TestPayment_IsExpired(t *testing.T) {
	p := newTestPayment()

	assert.False(t, p.IsExpired(p.CreatedAt))
	assert.True(t, p.IsExpired(p.ExpiresAt.Add(time.Second)))
}

func TestPayment_MarkAwaitingConfirmation(t *testing.T) {
	p := newTestPayment()
	p.MarkAwaitingConfirmation()

	assert.Equal(t, PaymentStatusAwaitingConfirmation, p.Status)
	assert.True(t, p.IsInFlight())
	assert.False(t, p.IsTerminal())
}

func TestPayment_MarkConfirmed(t *testing.T) {
	p := newTestPayment()
	p.MarkAwaitingConfirmation()
	p.MarkConfirmed("0xabc123", 5)

	assert.Equal(t, PaymentStatusConfirmed, p.Status)
	assert.Equal(t, "0xabc123", p.TxHash)
	assert.Equal(t, 5, p.Confirmations)
	require.NotNil(t, p.TxConfirmedAt)
	assert.True(t, p.IsTerminal())
	assert.False(t, p.IsInFlight())
}

func TestPayment_MarkExpiredCancelledFailed(t *testing.T) {
	expired := newTestPayment()
	expired.MarkExpired()
	assert.Equal(t, PaymentStatusExpired, expired.Status)
	assert.True(t, expired.IsTerminal())

	cancelled := newTestPayment()
	cancelled.MarkCancelled()
	assert.Equal(t, PaymentStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.IsTerminal())

	failed := newTestPayment()
	failed.MarkFailed("no matching transfer found")
	assert.Equal(t, PaymentStatusFailed, failed.Status)
	assert.Equal(t, "no matching transfer found", failed.ErrorMessage)
	assert.True(t, failed.IsTerminal())
}
