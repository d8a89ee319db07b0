/*
Package settlement computes what an instructor is owed for work
performed: the daily route and travel allowance, per-class fees and
allowances, daily gross totals, and the monthly aggregate with the
equipment-transport cap and withholding tax.

All computations are pure functions over snapshots of the activity
log. Nothing here mutates shared state; concurrent runs for different
instructors are independent.

FILES:
  route.go   - Daily route builder (home -> stops -> home)
  daily.go   - Daily settlement calculator with full trace
  monthly.go - Monthly aggregator, cap, tax, net
  runner.go  - Batch runner with per-instructor error isolation
*/
package settlement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// DAILY ROUTE - One route, and therefore one travel allowance, per day
// =============================================================================

// Leg is one segment of the day's round trip.
type Leg struct {
	FromCity string
	ToCity   string
	Km       decimal.Decimal
}

// Stop is one institution visit, in travel order.
type Stop struct {
	InstitutionID   engine.InstitutionID
	InstitutionName string
	City            string
	StartTime       engine.TimeOfDay
}

// Route is the full round trip for one instructor-day:
// home -> stop1 -> ... -> stopN -> home.
//
// Travel cost is a property of the DAY, not of any individual class:
// exactly one route exists per (instructor, date) no matter how many
// separate program activities the day holds.
type Route struct {
	HomeCity string
	Stops    []Stop
	Legs     []Leg
	TotalKm  decimal.Decimal
}

// BuildRoute orders the day's institution visits by class start time
// (not record insertion order) and sums consecutive-pair distances.
//
// Edge cases: zero stops yield 0 km; stops all in the home city yield
// 0 km regardless of stop count; a day visiting a single city yields
// the home<->city matrix distance counted ONCE, not doubled — the
// day's one allowance already reflects the round trip as a single
// banded payment. Multi-city days sum the full loop including the
// return leg.
func BuildRoute(
	homeCity string,
	activities []engine.DailyActivity,
	institutions engine.InstitutionIndex,
	matrix *engine.DistanceMatrix,
) (Route, error) {
	route := Route{HomeCity: homeCity, TotalKm: decimal.Zero}
	if len(activities) == 0 {
		return route, nil
	}

	ordered := make([]engine.DailyActivity, len(activities))
	copy(ordered, activities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime < ordered[j].StartTime
	})

	for _, a := range ordered {
		inst, err := institutions.Lookup(a.InstitutionID)
		if err != nil {
			return Route{}, err
		}
		route.Stops = append(route.Stops, Stop{
			InstitutionID:   inst.ID,
			InstitutionName: inst.Name,
			City:            inst.City,
			StartTime:       a.StartTime,
		})
	}

	// Collapse consecutive repeats: several classes in the same city
	// in a row are one travel segment.
	var distinct []string
	for _, s := range route.Stops {
		if len(distinct) == 0 || distinct[len(distinct)-1] != s.City {
			distinct = append(distinct, s.City)
		}
	}

	if len(distinct) == 1 {
		// Single-city day: the matrix distance stands in for the whole
		// round trip and is counted once.
		km, err := matrix.Distance(homeCity, distinct[0])
		if err != nil {
			return Route{}, err
		}
		if !km.IsZero() {
			route.Legs = append(route.Legs, Leg{FromCity: homeCity, ToCity: distinct[0], Km: km})
		}
		route.TotalKm = km
		return route, nil
	}

	// home -> city1 -> ... -> cityN -> home
	cities := make([]string, 0, len(distinct)+2)
	cities = append(cities, homeCity)
	cities = append(cities, distinct...)
	cities = append(cities, homeCity)

	for i := 0; i+1 < len(cities); i++ {
		km, err := matrix.Distance(cities[i], cities[i+1])
		if err != nil {
			return Route{}, err
		}
		route.Legs = append(route.Legs, Leg{FromCity: cities[i], ToCity: cities[i+1], Km: km})
		route.TotalKm = route.TotalKm.Add(km)
	}
	return route, nil
}
