/*
daily.go - Daily settlement calculator

PURPOSE:
  Computes everything one instructor is owed for one date, with a full
  calculation trace: every allowance component is itemized with its
  per-session rate, session count, and triggering reason so the audit
  display can show exactly where each won came from.

COMPUTATION (per the pay ruleset):
  Per class:   base = sessionRate(role) x sessions
  Per session: remote-island, special-education, weekend (voided on
               event activities), and lead-only no-assistant
               large-class allowances
  Per day:     one flat equipment-transport fee (any activity flags it),
               event pay = hours x hourly rate, and ONE travel
               allowance from the day's single route

  Cancelled activities are excluded from every payable amount; their
  session count and a preview of the forfeited base fee stay on the
  record for display only.
*/
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// CALCULATION TRACE TYPES
// =============================================================================

type AllowanceKind string

const (
	AllowanceRemoteIsland   AllowanceKind = "remote_island"
	AllowanceSpecialEdu     AllowanceKind = "special_education"
	AllowanceWeekend        AllowanceKind = "weekend"
	AllowanceSoloLargeClass AllowanceKind = "solo_large_class"
)

// AllowanceItem is one itemized allowance line in the trace.
type AllowanceItem struct {
	Kind       AllowanceKind
	Reason     string
	PerSession engine.Money
	Sessions   int
	Amount     engine.Money
}

// ClassCalculation is the per-activity breakdown.
type ClassCalculation struct {
	InstitutionID   engine.InstitutionID
	InstitutionName string
	Role            engine.Role
	Sessions        int
	SessionRate     engine.Money
	BaseAmount      engine.Money
	Allowances      []AllowanceItem
	AllowanceTotal  engine.Money
}

// DailySettlement is derived, never stored as source of truth; it is
// recomputed on demand from the activity log.
type DailySettlement struct {
	InstructorID   engine.InstructorID
	InstructorName string
	Date           engine.Date

	Classes        []ClassCalculation
	BaseTotal      engine.Money
	AllowanceTotal engine.Money

	Route           Route
	TravelKm        decimal.Decimal
	TravelAllowance engine.Money

	EquipmentTransport engine.Money
	EventPay           engine.Money

	GrossTotal engine.Money

	// Cancelled sessions: never payable, always visible.
	CancelledSessions int
	CancelledPreview  engine.Money
}

// =============================================================================
// DAILY CALCULATOR
// =============================================================================

// ComputeDaily settles one instructor-day. The activities slice holds
// every row for that (instructor, date) pair, cancelled rows included;
// rows for a different instructor or date are a consistency violation
// and fail the whole computation.
func ComputeDaily(
	instructor engine.Instructor,
	date engine.Date,
	activities []engine.DailyActivity,
	institutions engine.InstitutionIndex,
	matrix *engine.DistanceMatrix,
	rates engine.RateConfig,
) (*DailySettlement, error) {
	ds := &DailySettlement{
		InstructorID:       instructor.ID,
		InstructorName:     instructor.Name,
		Date:               date,
		BaseTotal:          engine.ZeroWon(),
		AllowanceTotal:     engine.ZeroWon(),
		TravelAllowance:    engine.ZeroWon(),
		EquipmentTransport: engine.ZeroWon(),
		EventPay:           engine.ZeroWon(),
		GrossTotal:         engine.ZeroWon(),
		CancelledPreview:   engine.ZeroWon(),
	}

	var active []engine.DailyActivity
	for _, a := range activities {
		if a.InstructorID != instructor.ID || !a.Date.Equal(date) {
			return nil, engine.ErrMixedActivityRows
		}
		if a.Cancelled {
			ds.CancelledSessions += a.Sessions
			ds.CancelledPreview = ds.CancelledPreview.Add(rates.SessionRate(a.Role).MulInt(a.Sessions))
			continue
		}
		active = append(active, a)
	}

	transportPerformed := false
	for _, a := range active {
		inst, err := institutions.Lookup(a.InstitutionID)
		if err != nil {
			return nil, err
		}

		calc := ClassCalculation{
			InstitutionID:   inst.ID,
			InstitutionName: inst.Name,
			Role:            a.Role,
			Sessions:        a.Sessions,
			SessionRate:     rates.SessionRate(a.Role),
			AllowanceTotal:  engine.ZeroWon(),
		}
		calc.BaseAmount = calc.SessionRate.MulInt(a.Sessions)

		for _, item := range allowancesFor(a, inst, date, rates) {
			calc.Allowances = append(calc.Allowances, item)
			calc.AllowanceTotal = calc.AllowanceTotal.Add(item.Amount)
		}

		ds.Classes = append(ds.Classes, calc)
		ds.BaseTotal = ds.BaseTotal.Add(calc.BaseAmount)
		ds.AllowanceTotal = ds.AllowanceTotal.Add(calc.AllowanceTotal)

		if a.EquipmentTransport {
			transportPerformed = true
		}
		if a.IsEvent() {
			ds.EventPay = ds.EventPay.Add(rates.EventHourlyRate.Mul(a.EventHours))
		}
	}

	// One flat fee for the whole day's transport duty, not per class.
	if transportPerformed {
		ds.EquipmentTransport = rates.EquipmentTransportDaily
	}

	route, err := BuildRoute(instructor.HomeCity, active, institutions, matrix)
	if err != nil {
		return nil, err
	}
	ds.Route = route
	ds.TravelKm = route.TotalKm
	ds.TravelAllowance = rates.TravelBrackets.Amount(route.TotalKm)

	ds.GrossTotal = ds.BaseTotal.
		Add(ds.AllowanceTotal).
		Add(ds.EquipmentTransport).
		Add(ds.EventPay).
		Add(ds.TravelAllowance)

	return ds, nil
}

// allowancesFor itemizes the per-session allowances one activity earns.
func allowancesFor(
	a engine.DailyActivity,
	inst engine.Institution,
	date engine.Date,
	rates engine.RateConfig,
) []AllowanceItem {
	var items []AllowanceItem

	add := func(kind AllowanceKind, reason string, perSession engine.Money) {
		items = append(items, AllowanceItem{
			Kind:       kind,
			Reason:     reason,
			PerSession: perSession,
			Sessions:   a.Sessions,
			Amount:     perSession.MulInt(a.Sessions),
		})
	}

	if inst.RemoteIsland {
		add(AllowanceRemoteIsland, "institution on remote island", rates.RemoteIslandAllowance)
	}
	if inst.Level == engine.LevelSpecial || a.SpecialClass {
		add(AllowanceSpecialEdu, "special-education class", rates.SpecialEduAllowance)
	}
	// Weekend and event allowances are mutually exclusive per session.
	if date.IsWeekend() && !a.IsEvent() {
		add(AllowanceWeekend, "weekend session", rates.WeekendAllowance)
	}
	if a.Role == engine.RoleLead && a.Students >= rates.LargeClassThreshold && !a.AssistantPresent {
		add(AllowanceSoloLargeClass, "15+ students with no assistant", rates.SoloLargeClassAllowance)
	}
	return items
}
