package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DISTANCE MATRIX - Symmetric inter-city distance lookup
// =============================================================================

// DistanceMatrix maps unordered city pairs to kilometres. Entries are
// stored under a canonical key ordering, so Distance(a, b) and
// Distance(b, a) always agree no matter how rows were loaded.
type DistanceMatrix struct {
	km map[cityPair]decimal.Decimal
}

type cityPair struct {
	a, b string
}

func newCityPair(a, b string) cityPair {
	if b < a {
		a, b = b, a
	}
	return cityPair{a: a, b: b}
}

func NewDistanceMatrix() *DistanceMatrix {
	return &DistanceMatrix{km: make(map[cityPair]decimal.Decimal)}
}

// Km is a convenience constructor for kilometre figures.
func Km(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Set records the distance between two cities. Order is irrelevant.
func (m *DistanceMatrix) Set(cityA, cityB string, km decimal.Decimal) {
	m.km[newCityPair(cityA, cityB)] = km
}

// Distance returns the kilometres between two cities.
// Identical cities are 0 even without an explicit self-entry. A
// missing pair is a typed failure; callers must propagate rather than
// default to zero (free unknown travel corrupts payroll).
func (m *DistanceMatrix) Distance(cityA, cityB string) (decimal.Decimal, error) {
	if cityA == cityB {
		return decimal.Zero, nil
	}
	km, ok := m.km[newCityPair(cityA, cityB)]
	if !ok {
		return decimal.Zero, &UnknownCityPairError{CityA: cityA, CityB: cityB}
	}
	return km, nil
}

// Len returns the number of distinct pairs loaded.
func (m *DistanceMatrix) Len() int { return len(m.km) }
