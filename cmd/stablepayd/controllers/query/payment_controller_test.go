package query_controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

type mockPaymentEngine struct {
	mock.Mock
}

func (m *mockPaymentEngine) CreatePlan(ctx context.Context, tenantID uuid.UUID, spec entities.PlanSpec) (*entities.Plan, error) {
	args := m.Called(ctx, tenantID, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *mockPaymentEngine) ListPlans(ctx context.Context, tenantID uuid.UUID) ([]*entities.Plan, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Plan), args.Error(1)
}

func (m *mockPaymentEngine) UpdatePlan(ctx context.Context, tenantID, planID uuid.UUID, update in.PlanUpdate) (*entities.Plan, error) {
	args := m.Called(ctx, tenantID, planID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *mockPaymentEngine) InitiatePayment(ctx context.Context, input in.InitiatePaymentInput) (*in.Placement, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*in.Placement), args.Error(1)
}

func (m *mockPaymentEngine) ConfirmPaymentSent(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Error(0)
}

func (m *mockPaymentEngine) GetPaymentStatus(ctx context.Context, tenantID, paymentID uuid.UUID) (*in.PaymentStatusView, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*in.PaymentStatusView), args.Error(1)
}

func (m *mockPaymentEngine) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Error(0)
}

func (m *mockPaymentEngine) GetPaymentHistory(ctx context.Context, tenantID uuid.UUID, externalUserID string, limit int) ([]*entities.Payment, error) {
	args := m.Called(ctx, tenantID, externalUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *mockPaymentEngine) HandleConfirmedTransaction(ctx context.Context, paymentID uuid.UUID, txHash string, confirmations int, amount string) error {
	args := m.Called(ctx, paymentID, txHash, confirmations, amount)
	return args.Error(0)
}

func requestWithTenant(method, path string, tenantID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := context.WithValue(req.Context(), common.TenantIDKey, tenantID)
	return req.WithContext(ctx)
}

func TestPaymentController_GetStatus_Success(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	paymentID := uuid.New()
	view := &in.PaymentStatusView{PaymentID: paymentID, Status: entities.PaymentStatusPending}
	engine.On("GetPaymentStatus", mock.Anything, tenantID, paymentID).Return(view, nil)

	req := requestWithTenant(http.MethodGet, "/payments/"+paymentID.String()+"/status", tenantID)
	req = mux.SetURLVars(req, map[string]string{"id": paymentID.String()})
	rr := httptest.NewRecorder()

	ctrl.GetStatus(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp in.PaymentStatusView
	require := assert.New(t)
	require.NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(paymentID, resp.PaymentID)
}

func TestPaymentController_GetHistory_RequiresExternalUserID(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	req := requestWithTenant(http.MethodGet, "/payments/history", uuid.New())
	rr := httptest.NewRecorder()

	ctrl.GetHistory(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	engine.AssertNotCalled(t, "GetPaymentHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentController_GetHistory_CapsLimitAtDefault(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	engine.On("GetPaymentHistory", mock.Anything, tenantID, "user-1", historyDefaultLimit).
		Return([]*entities.Payment{}, nil)

	req := requestWithTenant(http.MethodGet, "/payments/history?externalUserId=user-1&limit=500", tenantID)
	rr := httptest.NewRecorder()

	ctrl.GetHistory(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	engine.AssertExpectations(t)
}

func TestPaymentController_GetHistory_InvalidLimit(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	req := requestWithTenant(http.MethodGet, "/payments/history?externalUserId=user-1&limit=-3", uuid.New())
	rr := httptest.NewRecorder()

	ctrl.GetHistory(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
