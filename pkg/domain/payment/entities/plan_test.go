package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan_DefaultsToActive(t *testing.T) {
	days := 30
	spec := PlanSpec{
		PlanKey:    "pro-monthly",
		Name:       "Pro Monthly",
		Price:      "19.99",
		Currency:   TokenUSDC,
		PeriodDays: &days,
		Features:   []string{"feature-a"},
	}

	p := NewPlan(uuid.New(), spec)

	require.True(t, p.Active)
	assert.Equal(t, "pro-monthly", p.PlanKey)
	assert.False(t, p.IsLifetime())
}

func TestPlan_IsLifetime_WhenPeriodDaysNil(t *testing.T) {
	p := NewPlan(uuid.New(), PlanSpec{PlanKey: "lifetime", Price: "99.00", Currency: TokenUSDT})

	assert.True(t, p.IsLifetime())
}
