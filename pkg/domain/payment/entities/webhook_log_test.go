package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookLog() *WebhookLog {
	return NewWebhookLog(uuid.New(), WebhookEventPaymentConfirmed, uuid.New(), map[string]any{"paymentId": "x"})
}

func TestNewWebhookLog_StartsPendingAndDueImmediately(t *testing.T) {
	w := newTestWebhookLog()

	require.Equal(t, WebhookDeliveryPending, w.Status)
	assert.True(t, w.IsDue(w.NextAttemptAt))
	assert.Equal(t, 0, w.Attempts)
}

func TestWebhookLog_MarkDelivered(t *testing.T) {
	w := newTestWebhookLog()
	w.MarkDelivered()

	assert.Equal(t, WebhookDeliveryDelivered, w.Status)
	assert.False(t, w.IsDue(time.Now().UTC().Add(time.Hour)))
}

func TestWebhookLog_ScheduleRetry_AdvancesThroughBackoffThenExhausts(t *testing.T) {
	w := newTestWebhookLog()

	for i, delay := range RetryDelays {
		before := time.Now().UTC()
		w.ScheduleRetry("delivery failed")
		assert.Equal(t, i+1, w.Attempts)
		assert.Equal(t, WebhookDeliveryPending, w.Status)
		assert.WithinDuration(t, before.Add(delay), w.NextAttemptAt, time.Second)
	}

	w.ScheduleRetry("delivery failed again")
	assert.Equal(t, WebhookDeliveryExhausted, w.Status)
	assert.False(t, w.IsDue(time.Now().UTC().Add(24*time.Hour)))
}
