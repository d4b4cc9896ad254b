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

	"github.com/stablepay/gateway/pkg/domain/payment/entities"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

func TestPlanController_CreatePlan_Success(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PlanController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	plan := &entities.Plan{ID: uuid.New(), TenantID: tenantID, PlanKey: "pro"}
	engine.On("CreatePlan", mock.Anything, tenantID, mock.MatchedBy(func(spec entities.PlanSpec) bool {
		return spec.PlanKey == "pro"
	})).Return(plan, nil)

	body, _ := json.Marshal(map[string]string{"planKey": "pro", "name": "Pro", "price": "9.99"})
	req := requestWithTenant(http.MethodPost, "/plans", body, tenantID)
	rr := httptest.NewRecorder()

	ctrl.CreatePlan(context.Background())(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	engine.AssertExpectations(t)
}

func TestPlanController_CreatePlan_InvalidBody(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PlanController{engine: engine, help: controllers.NewHelper()}

	req := requestWithTenant(http.MethodPost, "/plans", []byte("not json"), uuid.New())
	rr := httptest.NewRecorder()

	ctrl.CreatePlan(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	engine.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanController_UpdatePlan_Success(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PlanController{engine: engine, help: controllers.NewHelper()}

	tenantID := uuid.New()
	planID := uuid.New()
	updated := &entities.Plan{ID: planID, TenantID: tenantID}
	engine.On("UpdatePlan", mock.Anything, tenantID, planID, mock.Anything).Return(updated, nil)

	body, _ := json.Marshal(map[string]any{"name": "Renamed"})
	req := requestWithTenant(http.MethodPatch, "/plans/"+planID.String(), body, tenantID)
	req = mux.SetURLVars(req, map[string]string{"id": planID.String()})
	rr := httptest.NewRecorder()

	ctrl.UpdatePlan(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPlanController_UpdatePlan_InvalidID(t *testing.T) {
	engine := new(mockPaymentEngine)
	ctrl := &PlanController{engine: engine, help: controllers.NewHelper()}

	req := requestWithTenant(http.MethodPatch, "/plans/bad-id", bytes.NewBufferString("{}").Bytes(), uuid.New())
	req = mux.SetURLVars(req, map[string]string{"id": "bad-id"})
	rr := httptest.NewRecorder()

	ctrl.UpdatePlan(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
