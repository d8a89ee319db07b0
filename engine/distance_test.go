package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedu/settlement-engine/engine"
)

func newTestMatrix() *engine.DistanceMatrix {
	m := engine.NewDistanceMatrix()
	m.Set("Jeonju", "Gunsan", engine.Km(52))
	m.Set("Iksan", "Jeonju", engine.Km(20)) // loaded in reverse order on purpose
	m.Set("Gunsan", "Iksan", engine.Km(25))
	return m
}

func TestDistance_Symmetric(t *testing.T) {
	// GIVEN: a matrix loaded with pairs in arbitrary order
	// THEN:  distance(a,b) == distance(b,a) for every pair

	m := newTestMatrix()
	for _, pair := range [][2]string{
		{"Jeonju", "Gunsan"},
		{"Jeonju", "Iksan"},
		{"Gunsan", "Iksan"},
	} {
		ab, err := m.Distance(pair[0], pair[1])
		require.NoError(t, err)
		ba, err := m.Distance(pair[1], pair[0])
		require.NoError(t, err)
		assert.True(t, ab.Equal(ba), "%s<->%s", pair[0], pair[1])
	}
}

func TestDistance_SameCityIsZero(t *testing.T) {
	// No explicit self-entry exists, yet distance(a,a) must be 0.
	m := newTestMatrix()
	km, err := m.Distance("Jeonju", "Jeonju")
	require.NoError(t, err)
	assert.True(t, km.IsZero())
}

func TestDistance_UnknownPair_Propagates(t *testing.T) {
	// Silently treating an unknown route as free travel would corrupt
	// payroll, so the lookup must fail with a typed error.
	m := newTestMatrix()
	_, err := m.Distance("Jeonju", "Mokpo")
	assert.ErrorIs(t, err, engine.ErrUnknownCityPair)

	var ucp *engine.UnknownCityPairError
	require.ErrorAs(t, err, &ucp)
	assert.Equal(t, "Jeonju", ucp.CityA)
	assert.Equal(t, "Mokpo", ucp.CityB)
}
