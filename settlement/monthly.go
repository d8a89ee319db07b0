/*
monthly.go - Monthly settlement aggregator

PURPOSE:
  Sums one instructor's daily settlements for a calendar month, clamps
  the equipment-transport total at the monthly ceiling, withholds tax,
  and derives net pay.

ROUNDING:
  tax = round(gross x taxRate), applied ONCE at the monthly level.
  Rounding per day would accumulate drift; the only rounding in the
  whole settlement path happens here.

CAP:
  When summed daily equipment-transport fees exceed the ceiling the
  total is clamped and EquipmentCapApplied is set. The excess is
  dropped, never carried to another month.
*/
package settlement

import (
	"github.com/kedu/settlement-engine/engine"
)

// MonthlySettlement is derived, recomputed on demand.
type MonthlySettlement struct {
	InstructorID   engine.InstructorID
	InstructorName string
	Month          engine.Month

	Days int

	BaseTotal               engine.Money
	AllowanceTotal          engine.Money
	TravelTotal             engine.Money
	EquipmentTransportTotal engine.Money
	EquipmentCapApplied     bool
	EventTotal              engine.Money

	GrossTotal engine.Money
	Tax        engine.Money
	NetTotal   engine.Money

	CancelledSessions int
	CancelledPreview  engine.Money
}

// ComputeMonthly aggregates one instructor's daily settlements for one
// calendar month. Dailies spanning instructors or months are a
// consistency violation.
func ComputeMonthly(dailies []*DailySettlement, rates engine.RateConfig) (*MonthlySettlement, error) {
	if len(dailies) == 0 {
		return nil, engine.ErrMixedSettlements
	}

	ms := &MonthlySettlement{
		InstructorID:            dailies[0].InstructorID,
		InstructorName:          dailies[0].InstructorName,
		Month:                   dailies[0].Date.MonthKey(),
		BaseTotal:               engine.ZeroWon(),
		AllowanceTotal:          engine.ZeroWon(),
		TravelTotal:             engine.ZeroWon(),
		EquipmentTransportTotal: engine.ZeroWon(),
		EventTotal:              engine.ZeroWon(),
		CancelledPreview:        engine.ZeroWon(),
	}

	for _, d := range dailies {
		if d.InstructorID != ms.InstructorID || d.Date.MonthKey() != ms.Month {
			return nil, engine.ErrMixedSettlements
		}
		ms.Days++
		ms.BaseTotal = ms.BaseTotal.Add(d.BaseTotal)
		ms.AllowanceTotal = ms.AllowanceTotal.Add(d.AllowanceTotal)
		ms.TravelTotal = ms.TravelTotal.Add(d.TravelAllowance)
		ms.EquipmentTransportTotal = ms.EquipmentTransportTotal.Add(d.EquipmentTransport)
		ms.EventTotal = ms.EventTotal.Add(d.EventPay)
		ms.CancelledSessions += d.CancelledSessions
		ms.CancelledPreview = ms.CancelledPreview.Add(d.CancelledPreview)
	}

	if ms.EquipmentTransportTotal.GreaterThan(rates.EquipmentTransportMonthlyCap) {
		ms.EquipmentTransportTotal = rates.EquipmentTransportMonthlyCap
		ms.EquipmentCapApplied = true
	}

	ms.GrossTotal = ms.BaseTotal.
		Add(ms.AllowanceTotal).
		Add(ms.TravelTotal).
		Add(ms.EquipmentTransportTotal).
		Add(ms.EventTotal)

	ms.Tax = ms.GrossTotal.Mul(rates.TaxRate).RoundWon()
	ms.NetTotal = ms.GrossTotal.Sub(ms.Tax)

	return ms, nil
}
