package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// TRAVEL ALLOWANCE BRACKETS
// =============================================================================

func TestBracketSchedule_BoundaryValues(t *testing.T) {
	// Lower-bound inclusive steps: 49.99 km pays nothing, 50 km pays
	// the first band, 130 km the top band.
	s := engine.DefaultTravelBrackets()

	cases := []struct {
		km     float64
		amount int64
	}{
		{0, 0},
		{49.99, 0},
		{50, 20000},
		{69.99, 20000},
		{70, 30000},
		{89.99, 30000},
		{90, 40000},
		{109.99, 40000},
		{110, 50000},
		{129.99, 50000},
		{130, 60000},
		{500, 60000},
	}
	for _, tc := range cases {
		got := s.Amount(engine.Km(tc.km))
		assert.True(t, got.Equal(engine.Won(tc.amount)), "bracket(%v) = %s, want %d", tc.km, got, tc.amount)
	}
}

func TestBracketSchedule_MonotonicallyNonDecreasing(t *testing.T) {
	s := engine.DefaultTravelBrackets()
	prev := engine.Won(0)
	for km := 0.0; km <= 200; km += 2.5 {
		cur := s.Amount(engine.Km(km))
		assert.False(t, cur.LessThan(prev), "amount dropped at %v km", km)
		prev = cur
	}
}

// =============================================================================
// RATE CONFIG
// =============================================================================

func TestRateConfig_SessionRatePerRole(t *testing.T) {
	rc := engine.DefaultRateConfig()
	assert.True(t, rc.SessionRate(engine.RoleLead).Equal(rc.LeadRate))
	assert.True(t, rc.SessionRate(engine.RoleAssistant).Equal(rc.AssistantRate))
	assert.True(t, rc.LeadRate.GreaterThan(rc.AssistantRate))
}

func TestInstructor_DailyLimitOverride(t *testing.T) {
	rc := engine.DefaultRateConfig()

	plain := engine.Instructor{ID: "i-1"}
	assert.Equal(t, rc.DefaultDailySessionLimit, plain.DailyLimit(rc.DefaultDailySessionLimit))

	limit := 8
	overridden := engine.Instructor{ID: "i-2", DailyLimitOverride: &limit}
	assert.Equal(t, 8, overridden.DailyLimit(rc.DefaultDailySessionLimit))
}
