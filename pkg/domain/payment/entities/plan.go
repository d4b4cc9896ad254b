package entities

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a purchasable item. Uniqueness is enforced on (TenantID, PlanKey)
// at the storage layer.
type Plan struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	TenantID    uuid.UUID `json:"tenant_id" bson:"tenant_id"`
	PlanKey     string    `json:"plan_key" bson:"plan_key"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Price       string    `json:"price" bson:"price"` // decimal(18,6), kept as a string to avoid float rounding
	Currency    Token     `json:"currency" bson:"currency"`
	PeriodDays  *int      `json:"period_days,omitempty" bson:"period_days,omitempty"`
	Features    []string  `json:"features,omitempty" bson:"features,omitempty"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Plan) GetID() uuid.UUID { return p.ID }

// PlanSpec is the input shape for createPlan.
type PlanSpec struct {
	PlanKey     string
	Name        string
	Description string
	Price       string
	Currency    Token
	PeriodDays  *int
	Features    []string
}

func NewPlan(tenantID uuid.UUID, spec PlanSpec) *Plan {
	now := time.Now().UTC()
	return &Plan{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PlanKey:     spec.PlanKey,
		Name:        spec.Name,
		Description: spec.Description,
		Price:       spec.Price,
		Currency:    spec.Currency,
		PeriodDays:  spec.PeriodDays,
		Features:    spec.Features,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsLifetime reports whether the plan has no renewal period.
func (p *Plan) IsLifetime() bool {
	return p.PeriodDays == nil
}
