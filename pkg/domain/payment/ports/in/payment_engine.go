package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

// InitiatePaymentInput is the argument set for PaymentEngine.InitiatePayment.
type InitiatePaymentInput struct {
	TenantID       uuid.UUID
	ExternalUserID string
	PlanID         uuid.UUID
	Network        entities.Network
	Token          entities.Token
	SenderAddress  string
}

// Placement is the result handed back to the caller on successful initiation.
type Placement struct {
	PaymentID    uuid.UUID
	ReceiverAddress string
	Amount       string
	Token        entities.Token
	Network      entities.Network
	ExpiresAt    string
	ExpiresIn    int // seconds
	QRCodeData   string
	Instructions string
}

// PaymentStatusView is the read model returned by GetPaymentStatus.
type PaymentStatusView struct {
	PaymentID      uuid.UUID
	Status         entities.PaymentStatus
	TimeToExpireS  *int
	TxHash         string
	ExplorerURL    string
	ErrorMessage   string
}

// PlanUpdate carries the mutable subset of a plan's fields for
// patchPlan; nil fields are left unchanged.
type PlanUpdate struct {
	Name        *string
	Description *string
	Price       *string
	Features    []string
	Active      *bool
}

// PaymentEngine is the payment domain's public use-case surface.
type PaymentEngine interface {
	CreatePlan(ctx context.Context, tenantID uuid.UUID, spec entities.PlanSpec) (*entities.Plan, error)
	ListPlans(ctx context.Context, tenantID uuid.UUID) ([]*entities.Plan, error)
	UpdatePlan(ctx context.Context, tenantID, planID uuid.UUID, update PlanUpdate) (*entities.Plan, error)
	InitiatePayment(ctx context.Context, in InitiatePaymentInput) (*Placement, error)
	ConfirmPaymentSent(ctx context.Context, tenantID, paymentID uuid.UUID) error
	GetPaymentStatus(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentStatusView, error)
	CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error
	GetPaymentHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string, limit int) ([]*entities.Payment, error)
	// HandleConfirmedTransaction is invoked by the Monitor under a single
	// atomic unit: payment confirmation and subscription activation succeed
	// or fail together.
	HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amount string) error
}
