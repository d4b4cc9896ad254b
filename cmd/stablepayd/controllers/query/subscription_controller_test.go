package query_controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

type mockSubscriptionEngine struct {
	mock.Mock
}

func (m *mockSubscriptionEngine) Activate(ctx context.Context, payment *entities.Payment, plan *entities.Plan) (*entities.Subscription, error) {
	args := m.Called(ctx, payment, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

func (m *mockSubscriptionEngine) CurrentSubscription(ctx context.Context, tenantID uuid.UUID, externalUserID string) (*in.SubscriptionView, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*in.SubscriptionView), args.Error(1)
}

func (m *mockSubscriptionEngine) IsActive(ctx context.Context, tenantID uuid.UUID, externalUserID string) (bool, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionEngine) History(ctx context.Context, tenantID uuid.UUID, externalUserID string) ([]*entities.Subscription, error) {
	args := m.Called(ctx, tenantID, externalUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Subscription), args.Error(1)
}

func (m *mockSubscriptionEngine) ExpireDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func requestWithQuery(method, path string, tenantID uuid.UUID, externalUserID string) *http.Request {
	req := requestWithTenant(method, path+"?externalUserId="+externalUserID, tenantID)
	return req
}

func TestSubscriptionController_Current_Success(t *testing.T) {
	engine := new(mockSubscriptionEngine)
	ctrl := &SubscriptionController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	view := &in.SubscriptionView{Subscription: &entities.Subscription{TenantID: tenantID}}
	engine.On("CurrentSubscription", mock.Anything, tenantID, "user-1").Return(view, nil)

	req := requestWithQuery(http.MethodGet, "/subscriptions/current", tenantID, "user-1")
	rr := httptest.NewRecorder()

	ctrl.Current(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSubscriptionController_Current_RequiresExternalUserID(t *testing.T) {
	engine := new(mockSubscriptionEngine)
	ctrl := &SubscriptionController{engine: engine, help: controllers.NewHelper()}

	req := requestWithTenant(http.MethodGet, "/subscriptions/current", uuid.New())
	rr := httptest.NewRecorder()

	ctrl.Current(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubscriptionController_Active_ReturnsBooleanPayload(t *testing.T) {
	engine := new(mockSubscriptionEngine)
	ctrl := &SubscriptionController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	engine.On("IsActive", mock.Anything, tenantID, "user-1").Return(true, nil)

	req := requestWithQuery(http.MethodGet, "/subscriptions/active", tenantID, "user-1")
	rr := httptest.NewRecorder()

	ctrl.Active(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"active":true}`, rr.Body.String())
}

func TestSubscriptionController_History_PropagatesEngineError(t *testing.T) {
	engine := new(mockSubscriptionEngine)
	ctrl := &SubscriptionController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	engine.On("History", mock.Anything, tenantID, "user-1").Return(nil, assert.AnError)

	req := requestWithQuery(http.MethodGet, "/subscriptions/history", tenantID, "user-1")
	rr := httptest.NewRecorder()

	ctrl.History(context.Background())(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
