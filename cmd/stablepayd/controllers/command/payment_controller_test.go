package cmd_controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"
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

func requestWithTenant(method, path string, body []byte, tenantID uuid.UUID) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	ctx := context.WithValue(req.Context(), common.TenantIDKey, tenantID)
	return req.WithContext(ctx)
}

func TestPaymentController_InitiatePayment_Success(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	planID := uuid.New()
	placement := &in.Placement{PaymentID: uuid.New(), Amount: "19.99"}
	engine.On("InitiatePayment", mock.Anything, mock.MatchedBy(func(input in.InitiatePaymentInput) bool {
		return input.TenantID == tenantID && input.PlanID == planID
	})).Return(placement, nil)

	body, _ := json.Marshal(map[string]string{
		"externalUserId": "user-1",
		"planId":         planID.String(),
		"network":        "arbitrum",
		"token":          "USDT",
		"senderAddress":  "0xsender",
	})
	req := requestWithTenant(http.MethodPost, "/payments", body, tenantID)
	rr := httptest.NewRecorder()

	ctrl.InitiatePayment(context.Background())(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp in.Placement
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, placement.PaymentID, resp.PaymentID)
}

func TestPaymentController_InitiatePayment_MissingTenant(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(nil))
	rr := httptest.NewRecorder()

	ctrl.InitiatePayment(context.Background())(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	engine.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
}

func TestPaymentController_InitiatePayment_InvalidPlanID(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	body, _ := json.Marshal(map[string]string{"planId": "not-a-uuid"})
	req := requestWithTenant(http.MethodPost, "/payments", body, uuid.New())
	rr := httptest.NewRecorder()

	ctrl.InitiatePayment(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentController_ConfirmPaymentSent_Success(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	paymentID := uuid.New()
	engine.On("ConfirmPaymentSent", mock.Anything, tenantID, paymentID).Return(nil)

	req := requestWithTenant(http.MethodPost, "/payments/"+paymentID.String()+"/confirm", nil, tenantID)
	req = mux.SetURLVars(req, map[string]string{"id": paymentID.String()})
	rr := httptest.NewRecorder()

	ctrl.ConfirmPaymentSent(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	engine.AssertExpectations(t)
}

func TestPaymentController_CancelPayment_PropagatesEngineError(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PaymentController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	paymentID := uuid.New()
	engine.On("CancelPayment", mock.Anything, tenantID, paymentID).
		Return(common.NewErrNotFound("payment", "id", paymentID))

	req := requestWithTenant(http.MethodDelete, "/payments/"+paymentID.String(), nil, tenantID)
	req = mux.SetURLVars(req, map[string]string{"id": paymentID.String()})
	rr := httptest.NewRecorder()

	ctrl.CancelPayment(context.Background())(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
