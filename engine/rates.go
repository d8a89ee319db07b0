/*
rates.go - Rate schedule and travel allowance brackets

PURPOSE:
  RateConfig is the complete pay ruleset for a settlement run: session
  rates per role, per-session allowances, daily/monthly flat fees and
  caps, the withholding tax rate, and the stepped travel allowance
  schedule. It also carries the city->zone map the eligibility
  validator uses for PARTIAL-mode programs.

  The config is plain data: administrators tune it through the JSON
  factory (factory/rates.go) without code changes.

BRACKET SCHEDULE:
  Stepped, non-overlapping, lower-bound inclusive:
    <  50 km  ->      0
    >= 50 km  -> 20,000
    >= 70 km  -> 30,000
    >= 90 km  -> 40,000
    >= 110 km -> 50,000
    >= 130 km -> 60,000
  Amount(km) is pure and monotonically non-decreasing in km.

SEE ALSO:
  - settlement/daily.go: consumes the per-session rates
  - factory/rates.go: JSON -> RateConfig
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRAVEL ALLOWANCE BRACKETS
// =============================================================================

// TravelBracket pays Amount for any daily distance >= MinKm (until the
// next bracket takes over).
type TravelBracket struct {
	MinKm  decimal.Decimal
	Amount Money
}

// BracketSchedule is ordered ascending by MinKm.
type BracketSchedule []TravelBracket

// Amount maps a total daily distance to its stepped allowance.
func (s BracketSchedule) Amount(km decimal.Decimal) Money {
	amount := ZeroWon()
	for _, b := range s {
		if km.GreaterThanOrEqual(b.MinKm) {
			amount = b.Amount
		} else {
			break
		}
	}
	return amount
}

// DefaultTravelBrackets returns the standard schedule.
func DefaultTravelBrackets() BracketSchedule {
	return BracketSchedule{
		{MinKm: Km(0), Amount: Won(0)},
		{MinKm: Km(50), Amount: Won(20000)},
		{MinKm: Km(70), Amount: Won(30000)},
		{MinKm: Km(90), Amount: Won(40000)},
		{MinKm: Km(110), Amount: Won(50000)},
		{MinKm: Km(130), Amount: Won(60000)},
	}
}

// =============================================================================
// RATE CONFIG - The complete pay ruleset
// =============================================================================

type RateConfig struct {
	// Per-session teaching fees
	LeadRate      Money
	AssistantRate Money

	// Per-session allowances
	RemoteIslandAllowance Money
	SpecialEduAllowance   Money
	WeekendAllowance      Money

	// Lead-only allowance for teaching a large class without an
	// assistant present.
	SoloLargeClassAllowance Money
	LargeClassThreshold     int

	// Flat per-day fee when any activity carries the transport flag
	EquipmentTransportDaily Money

	// Monthly ceiling on summed equipment-transport fees
	EquipmentTransportMonthlyCap Money

	// Event participation, per hour
	EventHourlyRate Money

	// Withholding tax rate applied once at the monthly level
	TaxRate decimal.Decimal

	// Global default per-day session limit (per-instructor override
	// wins when set)
	DefaultDailySessionLimit int

	TravelBrackets BracketSchedule

	// City -> zone for the PARTIAL-mode assignment check
	ZoneByCity map[string]string
}

// SessionRate returns the per-session teaching fee for a role.
func (rc RateConfig) SessionRate(role Role) Money {
	if role == RoleAssistant {
		return rc.AssistantRate
	}
	return rc.LeadRate
}

// Zone resolves an instructor's home city to its administrative zone.
func (rc RateConfig) Zone(city string) (string, bool) {
	zone, ok := rc.ZoneByCity[city]
	return zone, ok
}

// DefaultRateConfig returns the standard schedule. Amounts are the
// baseline rates; deployments override them via the JSON factory.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		LeadRate:                     Won(40000),
		AssistantRate:                Won(25000),
		RemoteIslandAllowance:        Won(10000),
		SpecialEduAllowance:          Won(10000),
		WeekendAllowance:             Won(10000),
		SoloLargeClassAllowance:      Won(10000),
		LargeClassThreshold:          15,
		EquipmentTransportDaily:      Won(20000),
		EquipmentTransportMonthlyCap: Won(200000),
		EventHourlyRate:              Won(20000),
		TaxRate:                      decimal.NewFromFloat(0.033),
		DefaultDailySessionLimit:     6,
		TravelBrackets:               DefaultTravelBrackets(),
		ZoneByCity:                   map[string]string{},
	}
}
