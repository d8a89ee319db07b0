/*
Package factory provides JSON to Go rate-schedule conversion.

PURPOSE:
  Converts JSON rate-schedule documents into engine.RateConfig. This
  enables pay-rule configuration without code changes - administrators
  can adjust session rates, allowances, caps, the travel bracket table
  and the city/zone map in JSON, and the factory produces a validated
  config.

JSON SCHEMA:
  {
    "lead_rate": 40000,
    "assistant_rate": 25000,
    "remote_island_allowance": 10000,
    "special_edu_allowance": 10000,
    "weekend_allowance": 10000,
    "solo_large_class_allowance": 10000,
    "large_class_threshold": 15,
    "equipment_transport_daily": 20000,
    "equipment_transport_monthly_cap": 200000,
    "event_hourly_rate": 20000,
    "tax_rate": "0.033",
    "default_daily_session_limit": 6,
    "travel_brackets": [
      {"min_km": 50, "amount": 20000},
      {"min_km": 70, "amount": 30000}
    ],
    "zones": {"Jeonju": "jeonbuk", "Gunsan": "jeonbuk"}
  }

KEY FEATURES:
  - Omitted fields fall back to the engine defaults
  - Rejects negative amounts, out-of-range tax rates, and bracket
    tables that are unsorted or pay less for longer distances
  - tax_rate is a JSON string so the exact decimal survives parsing

USAGE:
  cfg, err := factory.ParseRateConfig(jsonDoc)
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kedu/settlement-engine/engine"
)

var (
	ErrNegativeAmount  = errors.New("rate amounts must not be negative")
	ErrBadTaxRate      = errors.New("tax rate must be between 0 and 1")
	ErrBadBracketTable = errors.New("travel brackets must be sorted by min_km with non-decreasing amounts")
)

// =============================================================================
// JSON DOCUMENT SHAPE
// =============================================================================

type rateDoc struct {
	LeadRate                     *int64       `json:"lead_rate"`
	AssistantRate                *int64       `json:"assistant_rate"`
	RemoteIslandAllowance        *int64       `json:"remote_island_allowance"`
	SpecialEduAllowance          *int64       `json:"special_edu_allowance"`
	WeekendAllowance             *int64       `json:"weekend_allowance"`
	SoloLargeClassAllowance      *int64       `json:"solo_large_class_allowance"`
	LargeClassThreshold          *int         `json:"large_class_threshold"`
	EquipmentTransportDaily      *int64       `json:"equipment_transport_daily"`
	EquipmentTransportMonthlyCap *int64       `json:"equipment_transport_monthly_cap"`
	EventHourlyRate              *int64       `json:"event_hourly_rate"`
	TaxRate                      *string      `json:"tax_rate"`
	DefaultDailySessionLimit     *int         `json:"default_daily_session_limit"`
	TravelBrackets               []bracketDoc `json:"travel_brackets"`
	Zones                        map[string]string `json:"zones"`
}

type bracketDoc struct {
	MinKm  float64 `json:"min_km"`
	Amount int64   `json:"amount"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseRateConfig builds a validated RateConfig from a JSON document,
// starting from the engine defaults.
func ParseRateConfig(doc []byte) (engine.RateConfig, error) {
	cfg := engine.DefaultRateConfig()

	var d rateDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return engine.RateConfig{}, fmt.Errorf("parse rate config: %w", err)
	}

	setMoney := func(dst *engine.Money, src *int64) {
		if src != nil {
			*dst = engine.Won(*src)
		}
	}
	setMoney(&cfg.LeadRate, d.LeadRate)
	setMoney(&cfg.AssistantRate, d.AssistantRate)
	setMoney(&cfg.RemoteIslandAllowance, d.RemoteIslandAllowance)
	setMoney(&cfg.SpecialEduAllowance, d.SpecialEduAllowance)
	setMoney(&cfg.WeekendAllowance, d.WeekendAllowance)
	setMoney(&cfg.SoloLargeClassAllowance, d.SoloLargeClassAllowance)
	setMoney(&cfg.EquipmentTransportDaily, d.EquipmentTransportDaily)
	setMoney(&cfg.EquipmentTransportMonthlyCap, d.EquipmentTransportMonthlyCap)
	setMoney(&cfg.EventHourlyRate, d.EventHourlyRate)

	if d.LargeClassThreshold != nil {
		cfg.LargeClassThreshold = *d.LargeClassThreshold
	}
	if d.DefaultDailySessionLimit != nil {
		cfg.DefaultDailySessionLimit = *d.DefaultDailySessionLimit
	}
	if d.TaxRate != nil {
		rate, err := decimal.NewFromString(*d.TaxRate)
		if err != nil {
			return engine.RateConfig{}, fmt.Errorf("parse tax_rate: %w", err)
		}
		cfg.TaxRate = rate
	}
	if len(d.TravelBrackets) > 0 {
		schedule := engine.BracketSchedule{}
		// An implicit zero bracket keeps short trips unpaid unless the
		// document says otherwise.
		if d.TravelBrackets[0].MinKm > 0 {
			schedule = append(schedule, engine.TravelBracket{MinKm: engine.Km(0), Amount: engine.Won(0)})
		}
		for _, b := range d.TravelBrackets {
			schedule = append(schedule, engine.TravelBracket{
				MinKm:  engine.Km(b.MinKm),
				Amount: engine.Won(b.Amount),
			})
		}
		cfg.TravelBrackets = schedule
	}
	if d.Zones != nil {
		cfg.ZoneByCity = d.Zones
	}

	if err := validate(cfg); err != nil {
		return engine.RateConfig{}, err
	}
	return cfg, nil
}

func validate(cfg engine.RateConfig) error {
	amounts := []engine.Money{
		cfg.LeadRate, cfg.AssistantRate,
		cfg.RemoteIslandAllowance, cfg.SpecialEduAllowance,
		cfg.WeekendAllowance, cfg.SoloLargeClassAllowance,
		cfg.EquipmentTransportDaily, cfg.EquipmentTransportMonthlyCap,
		cfg.EventHourlyRate,
	}
	for _, a := range amounts {
		if a.IsNegative() {
			return ErrNegativeAmount
		}
	}

	one := decimal.NewFromInt(1)
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(one) {
		return ErrBadTaxRate
	}

	for i := 1; i < len(cfg.TravelBrackets); i++ {
		prev, cur := cfg.TravelBrackets[i-1], cfg.TravelBrackets[i]
		if !cur.MinKm.GreaterThan(prev.MinKm) || cur.Amount.LessThan(prev.Amount) {
			return ErrBadBracketTable
		}
	}
	return nil
}
