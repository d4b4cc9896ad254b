// Package monitor implements the concurrent polling engine that reconciles
// on-chain transfers against payments enrolled while awaiting confirmation.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	paymentin "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
	"github.com/stablepay/gateway/pkg/infra/metrics"
)

const (
	tickInterval   = 30 * time.Second
	maxRetryCount  = 3

	// maxConcurrentChecks bounds how many payments a single tick dispatches
	// to chain adapters at once, so a large enrollment queue doesn't open an
	// unbounded number of outbound HTTP connections against Alchemy/TronGrid.
	maxConcurrentChecks = 16
)

type enrollment struct {
	retryCount  int
	lastChecked time.Time
}

// Envelope is the narrow decrypt surface the Monitor needs to recover the
// plaintext sender address before querying chain adapters.
type Envelope interface {
	Decrypt(envelope string) (string, error)
}

// Monitor holds the single in-process enrollment map and dispatches each
// tick to the adapter matching the payment's network.
type Monitor struct {
	storage  out.Storage
	engine   paymentin.PaymentEngine
	envelope Envelope
	adapters map[entities.Network]out.ChainAdapter
	webhooks out.WebhookPublisher

	mu       sync.Mutex
	enrolled map[uuid.UUID]*enrollment

	ticker *time.Ticker
	cancel context.CancelFunc
	logger *slog.Logger
}

func NewMonitor(storage out.Storage, engine paymentin.PaymentEngine, envelope Envelope, adapters map[entities.Network]out.ChainAdapter, webhooks out.WebhookPublisher) *Monitor {
	return &Monitor{
		storage:  storage,
		engine:   engine,
		envelope: envelope,
		adapters: adapters,
		webhooks: webhooks,
		enrolled: make(map[uuid.UUID]*enrollment),
		logger:   slog.Default().With("component", "monitor"),
	}
}

// Enroll is idempotent: re-enrolling an already-enrolled payment is a no-op.
func (m *Monitor) Enroll(paymentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.enrolled[paymentID]; ok {
		return
	}
	m.enrolled[paymentID] = &enrollment{lastChecked: time.Now().UTC()}
	metrics.MonitorQueueSize.Set(float64(len(m.enrolled)))
}

func (m *Monitor) Unenroll(paymentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.enrolled, paymentID)
	metrics.MonitorQueueSize.Set(float64(len(m.enrolled)))
}

func (m *Monitor) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrolled)
}

func (m *Monitor) InQueue(paymentID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.enrolled[paymentID]
	return ok
}

func (m *Monitor) snapshot() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.enrolled))
	for id := range m.enrolled {
		ids = append(ids, id)
	}
	return ids
}

// StartMonitoring bootstraps the enrollment map from every payment currently
// awaiting_confirmation (so a restart never loses in-flight monitoring),
// then launches the periodic tick. Idempotent: calling twice is a no-op.
func (m *Monitor) StartMonitoring(ctx context.Context) {
	if m.ticker != nil {
		return
	}

	pending, err := m.storage.AwaitingConfirmationPayments(ctx)
	if err != nil {
		m.logger.Error("bootstrap: failed to load awaiting-confirmation payments", "error", err)
	}
	for _, p := range pending {
		m.Enroll(p.ID)
	}
	m.logger.Info("monitor bootstrapped", "enrolled", m.Size())

	tickCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.ticker = time.NewTicker(tickInterval)

	go func() {
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-m.ticker.C:
				m.tick(tickCtx)
			}
		}
	}()
}

// StopMonitoring halts the tick scheduler. In-flight ticks run to
// completion since tick() does not select on ctx mid-loop.
func (m *Monitor) StopMonitoring() {
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	m.cancel()
	m.ticker = nil
}

// tick dispatches every enrolled payment to its chain adapter concurrently,
// bounded by maxConcurrentChecks, so a tick's wall-clock cost is the slowest
// single adapter round-trip rather than the sum of all of them.
func (m *Monitor) tick(ctx context.Context) {
	ids := m.snapshot()
	now := time.Now().UTC()

	sem := make(chan struct{}, maxConcurrentChecks)
	var wg sync.WaitGroup

	for _, paymentID := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(paymentID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()
			m.tickOne(ctx, paymentID, now)
		}(paymentID)
	}

	wg.Wait()
}

func (m *Monitor) tickOne(ctx context.Context, paymentID uuid.UUID, now time.Time) {
	payment, err := m.storage.GetPaymentByIDUnscoped(ctx, paymentID)
	if err != nil || payment == nil || payment.Status != entities.PaymentStatusAwaitingConfirmation {
		m.Unenroll(paymentID)
		return
	}

	if now.After(payment.ExpiresAt) {
		payment.MarkExpired()
		_ = m.storage.SavePayment(ctx, payment)
		m.emit(ctx, payment, entities.WebhookEventPaymentExpired, "")
		metrics.PaymentsFailed.WithLabelValues("expired").Inc()
		m.Unenroll(paymentID)
		return
	}

	m.checkPayment(ctx, payment)
}

func (m *Monitor) checkPayment(ctx context.Context, payment *entities.Payment) {
	adapter, ok := m.adapters[payment.Network]
	if !ok {
		m.logger.Error("no adapter configured for network", "network", payment.Network)
		return
	}

	senderAddress, err := m.envelope.Decrypt(payment.SenderAddressEncrypted)
	if err != nil {
		m.recordFailure(ctx, payment, err)
		return
	}

	result, err := adapter.FindTransfer(ctx, payment, payment.ReceiverAddress, senderAddress)
	if err != nil {
		m.recordFailure(ctx, payment, err)
		return
	}

	if !result.Found {
		m.touch(payment.ID)
		return
	}

	if err := m.engine.HandleConfirmedTransaction(ctx, payment.ID, result.TxHash, result.Confirmations, result.Amount); err != nil {
		if common.IsConflictError(err) {
			m.logger.Warn("duplicate tx_hash at confirmation, treating as exhausted", "payment_id", payment.ID, "error", err)
		} else {
			m.logger.Error("confirmation handler failed", "payment_id", payment.ID, "error", err)
		}
		metrics.PaymentsFailed.WithLabelValues("confirmation_error").Inc()
		m.Unenroll(payment.ID)
		return
	}
	metrics.PaymentsConfirmed.WithLabelValues(string(payment.Network), string(payment.Token)).Inc()
	m.Unenroll(payment.ID)
}

func (m *Monitor) touch(paymentID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrolled[paymentID]; ok {
		e.lastChecked = time.Now().UTC()
	}
}

func (m *Monitor) recordFailure(ctx context.Context, payment *entities.Payment, cause error) {
	m.mu.Lock()
	e, ok := m.enrolled[payment.ID]
	if ok {
		e.retryCount++
	}
	retryCount := 0
	if e != nil {
		retryCount = e.retryCount
	}
	m.mu.Unlock()

	if !ok || retryCount < maxRetryCount {
		m.logger.Warn("transfer lookup failed, will retry", "payment_id", payment.ID, "retry_count", retryCount, "error", cause)
		return
	}

	payment.MarkFailed(cause.Error())
	if err := m.storage.SavePayment(ctx, payment); err != nil {
		m.logger.Error("failed to persist failed payment", "payment_id", payment.ID, "error", err)
	}
	m.emit(ctx, payment, entities.WebhookEventPaymentFailed, cause.Error())
	metrics.PaymentsFailed.WithLabelValues("retries_exhausted").Inc()
	m.Unenroll(payment.ID)
}

func (m *Monitor) emit(ctx context.Context, payment *entities.Payment, event entities.WebhookEventType, errMsg string) {
	if m.webhooks == nil {
		return
	}
	data := map[string]any{
		"paymentId":      payment.ID.String(),
		"externalUserId": payment.ExternalUserID,
		"planId":         payment.PlanID.String(),
		"amount":         payment.Amount,
		"token":          payment.Token,
		"network":        payment.Network,
	}
	if errMsg != "" {
		data["error"] = errMsg
	}
	if err := m.webhooks.Enqueue(ctx, payment.TenantID, string(event), data); err != nil {
		m.logger.Warn("webhook enqueue failed", "event", event, "error", err)
	}
}
