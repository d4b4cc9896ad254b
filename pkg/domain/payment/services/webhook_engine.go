package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

const webhookDeliveryTimeout = 10 * time.Second
const maxLoggedResponseBytes = 1000

// Signer computes the X-Webhook-Signature header value for a payload.
type Signer func(secret, payload string) string

// WebhookEngine implements in.WebhookEngine: signed, at-least-once
// delivery with the fixed retry schedule in entities.RetryDelays.
type WebhookEngine struct {
	storage out.Storage
	sign    Signer
	client  *http.Client
	logger  *slog.Logger
}

var _ in.WebhookEngine = (*WebhookEngine)(nil)
var _ out.WebhookPublisher = (*WebhookEngine)(nil)

func NewWebhookEngine(storage out.Storage, sign Signer) *WebhookEngine {
	return &WebhookEngine{
		storage: storage,
		sign:    sign,
		client:  &http.Client{Timeout: webhookDeliveryTimeout},
		logger:  slog.Default().With("component", "webhook_engine"),
	}
}

// Enqueue loads the tenant, builds the deterministic payload, persists a
// pending log row, and attempts delivery immediately.
func (e *WebhookEngine) Enqueue(ctx context.Context, tenantID uuid.UUID, event string, data map[string]any) error {
	tenant, err := e.storage.GetTenantByID(ctx, tenantID)
	if err != nil || tenant == nil {
		return common.NewErrNotFound("tenant", "id", tenantID.String())
	}
	if tenant.WebhookURL == "" {
		e.logger.Info("no webhook_url configured, skipping delivery", "tenant_id", tenantID, "event", event)
		return nil
	}

	payload := map[string]any{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook_engine.Enqueue: marshal payload: %w", err)
	}

	paymentID, _ := extractPaymentID(data)
	log := entities.NewWebhookLog(tenantID, entities.WebhookEventType(event), paymentID, data)
	if err := e.storage.SaveWebhookLog(ctx, log); err != nil {
		return fmt.Errorf("webhook_engine.Enqueue: save log: %w", err)
	}

	e.deliverOnce(ctx, log, tenant, string(body))
	return e.storage.SaveWebhookLog(ctx, log)
}

// deliverOnce performs a single delivery attempt and mutates log in place;
// the caller is responsible for persisting the result.
func (e *WebhookEngine) deliverOnce(ctx context.Context, log *entities.WebhookLog, tenant *entities.Tenant, payloadString string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tenant.WebhookURL, bytes.NewBufferString(payloadString))
	if err != nil {
		log.ScheduleRetry(err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", e.sign(tenant.WebhookSecret, payloadString))

	resp, err := e.client.Do(req)
	if err != nil {
		log.ScheduleRetry(err.Error())
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedResponseBytes))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.MarkDelivered()
		return
	}
	log.ScheduleRetry(fmt.Sprintf("status=%d body=%s", resp.StatusCode, string(respBody)))
}

// RetryPending selects due log rows and attempts delivery again.
func (e *WebhookEngine) RetryPending(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := e.storage.PendingWebhooks(ctx, now)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, log := range due {
		tenant, err := e.storage.GetTenantByID(ctx, log.TenantID)
		if err != nil || tenant == nil {
			e.logger.Error("retry: tenant missing for webhook log", "log_id", log.ID, "error", err)
			continue
		}
		payload, err := json.Marshal(map[string]any{
			"event":     log.EventType,
			"timestamp": log.CreatedAt.Format(time.RFC3339),
			"data":      log.Payload,
		})
		if err != nil {
			continue
		}
		e.deliverOnce(ctx, log, tenant, string(payload))
		if err := e.storage.SaveWebhookLog(ctx, log); err != nil {
			e.logger.Error("retry: failed to persist webhook log", "log_id", log.ID, "error", err)
			continue
		}
		if log.Status == entities.WebhookDeliveryDelivered {
			delivered++
		}
	}
	return delivered, nil
}

func extractPaymentID(data map[string]any) (uuid.UUID, bool) {
	raw, ok := data["paymentId"]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
