package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

const (
	historyLimitDefault = 50
	qrInstructions      = "Send the exact amount to the receiver address on the selected network before the payment expires. Do not send from an exchange wallet that cannot receive direct transfers."
)

// Envelope is the narrow crypto surface the engine needs, satisfied by
// pkg/infra/crypto.Envelope.
type Envelope interface {
	Encrypt(normalizedAddress string) (string, error)
	Decrypt(envelope string) (string, error)
	HMAC(normalizedAddress string) string
}

// PaymentEngine implements in.PaymentEngine against a Storage port, an
// envelope for address handling, an OFAC screener, a webhook publisher and
// a subscription engine.
type PaymentEngine struct {
	storage      out.Storage
	envelope     Envelope
	ofac         out.OfacScreener
	webhooks     out.WebhookPublisher
	subscriptions in.SubscriptionEngine
	monitor      out.Enroller
	defaultReceiverEVM  string
	defaultReceiverTron string
	logger       *slog.Logger
}

var _ in.PaymentEngine = (*PaymentEngine)(nil)

func NewPaymentEngine(storage out.Storage, envelope Envelope, ofac out.OfacScreener, webhooks out.WebhookPublisher, subscriptions in.SubscriptionEngine, monitor out.Enroller, defaultReceiverEVM, defaultReceiverTron string) *PaymentEngine {
	return &PaymentEngine{
		storage:             storage,
		envelope:            envelope,
		ofac:                ofac,
		webhooks:            webhooks,
		subscriptions:       subscriptions,
		monitor:             monitor,
		defaultReceiverEVM:  defaultReceiverEVM,
		defaultReceiverTron: defaultReceiverTron,
		logger:              slog.Default().With("component", "payment_engine"),
	}
}

func (e *PaymentEngine) CreatePlan(ctx context.Context, tenantID uuid.UUID, spec entities.PlanSpec) (*entities.Plan, error) {
	if existing, err := e.storage.GetPlanByKey(ctx, tenantID, spec.PlanKey); err == nil && existing != nil {
		return nil, common.NewErrConflict("INVALID_PLAN", fmt.Sprintf("plan_key %q already exists for tenant", spec.PlanKey))
	}
	plan := entities.NewPlan(tenantID, spec)
	if err := e.storage.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("payment_engine.CreatePlan: %w", err)
	}
	return plan, nil
}

func (e *PaymentEngine) ListPlans(ctx context.Context, tenantID uuid.UUID) ([]*entities.Plan, error) {
	return e.storage.ListActivePlans(ctx, tenantID)
}

func (e *PaymentEngine) UpdatePlan(ctx context.Context, tenantID, planID uuid.UUID, update in.PlanUpdate) (*entities.Plan, error) {
	plan, err := e.storage.GetPlanByID(ctx, tenantID, planID)
	if err != nil {
		return nil, fmt.Errorf("payment_engine.UpdatePlan: %w", err)
	}
	if plan == nil {
		return nil, common.NewErrNotFound("plan", "id", planID.String())
	}

	if update.Name != nil {
		plan.Name = *update.Name
	}
	if update.Description != nil {
		plan.Description = *update.Description
	}
	if update.Price != nil {
		plan.Price = *update.Price
	}
	if update.Features != nil {
		plan.Features = update.Features
	}
	if update.Active != nil {
		plan.Active = *update.Active
	}
	plan.UpdatedAt = time.Now().UTC()

	if err := e.storage.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("payment_engine.UpdatePlan: %w", err)
	}
	return plan, nil
}

func (e *PaymentEngine) InitiatePayment(ctx context.Context, in2 in.InitiatePaymentInput) (*in.Placement, error) {
	tenant, err := e.storage.GetTenantByID(ctx, in2.TenantID)
	if err != nil || tenant == nil || !tenant.Active {
		return nil, common.NewErrNotFound("tenant", "id", in2.TenantID.String())
	}

	plan, err := e.storage.GetPlanByID(ctx, in2.TenantID, in2.PlanID)
	if err != nil || plan == nil || !plan.Active {
		return nil, common.NewErrValidation("INVALID_PLAN", "plan does not exist or is not active")
	}

	if !entities.IsSupportedNetwork(in2.Network) {
		return nil, common.NewErrValidation("INVALID_NETWORK", "unsupported network")
	}
	if !entities.IsSupportedToken(in2.Token) {
		return nil, common.NewErrValidation("VALIDATION_ERROR", "unsupported token")
	}
	if !ValidateAddress(in2.Network, in2.SenderAddress) {
		return nil, common.NewErrValidation("INVALID_ADDRESS", "sender address is not well-formed for the selected network")
	}

	receiver := tenant.ReceiverFor(in2.Network)
	if receiver == "" {
		receiver = e.defaultReceiverFor(in2.Network)
	}
	if receiver == "" {
		return nil, common.NewErrValidation("INVALID_NETWORK", "no receiver address configured for network")
	}

	if existing, _ := e.storage.PendingPaymentForUser(ctx, in2.TenantID, in2.ExternalUserID); existing != nil {
		return nil, common.NewErrConflict("PENDING_EXISTS", "user already has a payment in flight")
	}

	normalized := NormalizeAddress(in2.Network, in2.SenderAddress)

	if e.ofac != nil {
		sanctioned, sdnName, err := e.ofac.CheckAddress(ctx, normalized)
		if err != nil {
			e.logger.Error("ofac screen failed, blocking payment creation", "error", err)
			return nil, common.NewAPIError(http.StatusInternalServerError, "OFAC_SCREEN_UNAVAILABLE", "compliance screening is temporarily unavailable")
		}
		if sanctioned {
			return nil, common.NewErrSanctioned(in2.SenderAddress, sdnName)
		}
	}

	encrypted, err := e.envelope.Encrypt(normalized)
	if err != nil {
		return nil, fmt.Errorf("payment_engine.InitiatePayment: encrypt sender address: %w", err)
	}
	hmacDigest := e.envelope.HMAC(normalized)

	payment := entities.NewPayment(in2.TenantID, in2.ExternalUserID, in2.PlanID, plan.Price, in2.Token, in2.Network, encrypted, hmacDigest, receiver)

	if err := e.storage.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	e.emit(ctx, tenant.ID, string(entities.WebhookEventPaymentCreated), map[string]any{
		"paymentId":      payment.ID.String(),
		"externalUserId": payment.ExternalUserID,
		"planId":         payment.PlanID.String(),
		"amount":         payment.Amount,
		"token":          payment.Token,
		"network":        payment.Network,
		"status":         payment.Status,
		"expiresAt":      payment.ExpiresAt.Format(time.RFC3339),
	})

	return &in.Placement{
		PaymentID:       payment.ID,
		ReceiverAddress: payment.ReceiverAddress,
		Amount:          payment.Amount,
		Token:           payment.Token,
		Network:         payment.Network,
		ExpiresAt:       payment.ExpiresAt.Format(time.RFC3339),
		ExpiresIn:       int(time.Until(payment.ExpiresAt).Seconds()),
		QRCodeData:      payment.ReceiverAddress,
		Instructions:    qrInstructions,
	}, nil
}

// SetMonitor wires the Monitor in after construction, breaking the
// Monitor/PaymentEngine initialization cycle at the container level: the
// engine is built first (monitor nil), the Monitor is built from the
// engine, then this setter completes the wiring.
func (e *PaymentEngine) SetMonitor(m out.Enroller) {
	e.monitor = m
}

func (e *PaymentEngine) defaultReceiverFor(network entities.Network) string {
	if network == entities.NetworkTron {
		return e.defaultReceiverTron
	}
	return e.defaultReceiverEVM
}

func (e *PaymentEngine) ConfirmPaymentSent(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	payment, err := e.storage.GetPaymentByID(ctx, tenantID, paymentID)
	if err != nil || payment == nil {
		return common.NewErrNotFound("payment", "id", paymentID.String())
	}
	if payment.Status != entities.PaymentStatusPending {
		return common.NewErrInvalidState("INVALID_STATUS", fmt.Sprintf("payment is %s, expected pending", payment.Status))
	}
	now := time.Now().UTC()
	if payment.IsExpired(now) {
		payment.MarkExpired()
		_ = e.storage.SavePayment(ctx, payment)
		return common.NewErrInvalidState("INVALID_STATUS", "payment has expired")
	}
	payment.MarkAwaitingConfirmation()
	if err := e.storage.SavePayment(ctx, payment); err != nil {
		return err
	}
	if e.monitor != nil {
		e.monitor.Enroll(payment.ID)
	}
	return nil
}

func (e *PaymentEngine) GetPaymentStatus(ctx context.Context, tenantID, paymentID uuid.UUID) (*in.PaymentStatusView, error) {
	payment, err := e.storage.GetPaymentByID(ctx, tenantID, paymentID)
	if err != nil || payment == nil {
		return nil, common.NewErrNotFound("payment", "id", paymentID.String())
	}

	view := &in.PaymentStatusView{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		ErrorMessage: payment.ErrorMessage,
	}

	if payment.Status == entities.PaymentStatusPending || payment.Status == entities.PaymentStatusAwaitingConfirmation {
		remaining := int(time.Until(payment.ExpiresAt).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.TimeToExpireS = &remaining
	}

	if payment.Status == entities.PaymentStatusConfirmed {
		view.TxHash = payment.TxHash
		if cfg, ok := entities.GetNetworkConfig(payment.Network); ok {
			view.ExplorerURL = cfg.ExplorerTxURLPrefix + payment.TxHash
		}
	}

	return view, nil
}

func (e *PaymentEngine) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	payment, err := e.storage.GetPaymentByID(ctx, tenantID, paymentID)
	if err != nil || payment == nil {
		return common.NewErrNotFound("payment", "id", paymentID.String())
	}
	if payment.Status != entities.PaymentStatusPending {
		return common.NewErrInvalidState("CANNOT_CANCEL", "payment can only be cancelled while pending")
	}
	payment.MarkCancelled()
	return e.storage.SavePayment(ctx, payment)
}

func (e *PaymentEngine) GetPaymentHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string, limit int) ([]*entities.Payment, error) {
	if limit <= 0 || limit > historyLimitDefault {
		limit = historyLimitDefault
	}
	return e.storage.PaymentHistory(ctx, tenantID, externalUserID, limit)
}

// HandleConfirmedTransaction is the Monitor's entry point into the engine.
// Storage.ConfirmPayment enforces the tx_hash uniqueness constraint (I2)
// atomically; subscription activation happens only after that succeeds.
func (e *PaymentEngine) HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amount string) error {
	payment, err := e.storage.GetPaymentByIDUnscoped(ctx, paymentID)
	if err != nil || payment == nil {
		return common.NewErrNotFound("payment", "id", paymentID.String())
	}
	if payment.Status != entities.PaymentStatusAwaitingConfirmation {
		return common.NewErrInvalidState("INVALID_STATUS", "payment is no longer awaiting confirmation")
	}

	confirmedAt := time.Now().UTC()
	if err := e.storage.ConfirmPayment(ctx, payment.ID, txHash, confirmations, confirmedAt); err != nil {
		return fmt.Errorf("payment_engine.HandleConfirmedTransaction: confirm: %w", err)
	}
	payment.MarkConfirmed(txHash, confirmations)

	plan, err := e.storage.GetPlanByID(ctx, payment.TenantID, payment.PlanID)
	if err != nil || plan == nil {
		e.logger.Error("confirmed payment references missing plan", "payment_id", payment.ID, "plan_id", payment.PlanID)
		return nil
	}

	sub, err := e.subscriptions.Activate(ctx, payment, plan)
	if err != nil {
		e.logger.Error("subscription activation failed after confirmation", "payment_id", payment.ID, "error", err)
		return err
	}

	e.emit(ctx, payment.TenantID, string(entities.WebhookEventPaymentConfirmed), map[string]any{
		"paymentId":      payment.ID.String(),
		"externalUserId": payment.ExternalUserID,
		"planId":         payment.PlanID.String(),
		"amount":         amount,
		"token":          payment.Token,
		"network":        payment.Network,
		"txHash":         txHash,
		"confirmations":  confirmations,
		"confirmedAt":    confirmedAt.Format(time.RFC3339),
	})
	e.emit(ctx, payment.TenantID, string(entities.WebhookEventSubscriptionActivated), map[string]any{
		"subscriptionId": sub.ID.String(),
		"externalUserId": sub.ExternalUserID,
		"planId":         sub.PlanID.String(),
		"paymentId":      sub.PaymentID.String(),
		"startsAt":       sub.StartedAt.Format(time.RFC3339),
		"endsAt":         formatExpiry(sub.ExpiresAt),
	})

	return nil
}

func (e *PaymentEngine) emit(ctx context.Context, tenantID uuid.UUID, event string, data map[string]any) {
	if e.webhooks == nil {
		return
	}
	if err := e.webhooks.Enqueue(ctx, tenantID, event, data); err != nil {
		e.logger.Warn("webhook enqueue failed", "event", event, "error", err)
	}
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
