package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/settlement"
)

func computeDay(t *testing.T, date string, activities ...engine.DailyActivity) *settlement.DailySettlement {
	t.Helper()
	ds, err := settlement.ComputeDaily(
		testInstructor(),
		engine.MustDate(date),
		activities,
		testInstitutions(),
		testMatrix(),
		engine.DefaultRateConfig(),
	)
	require.NoError(t, err)
	return ds
}

func TestComputeDaily_WeekdayBaseline(t *testing.T) {
	// GIVEN: 4 lead sessions at Gunsan Middle on a Monday, 52 km out
	// THEN:  base = 4 x 40,000; travel band >= 50 km pays 20,000;
	//        no per-session allowance applies

	ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 4))

	require.Len(t, ds.Classes, 1)
	assert.True(t, ds.BaseTotal.Equal(engine.Won(160000)), "base %s", ds.BaseTotal)
	assert.True(t, ds.AllowanceTotal.IsZero())
	assert.True(t, ds.TravelAllowance.Equal(engine.Won(20000)))
	assert.True(t, ds.EquipmentTransport.IsZero())
	assert.True(t, ds.EventPay.IsZero())
	assert.True(t, ds.GrossTotal.Equal(engine.Won(180000)), "gross %s", ds.GrossTotal)
}

func TestComputeDaily_AssistantRate(t *testing.T) {
	ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-home", "10:00", 3, asAssistant))

	assert.True(t, ds.BaseTotal.Equal(engine.Won(75000)), "base %s", ds.BaseTotal)
	assert.True(t, ds.TravelAllowance.IsZero(), "home-city day earns no travel")
}

func TestComputeDaily_RemoteIslandAllowance(t *testing.T) {
	// Wido Elementary (Buan, 95 km) is flagged remote-island: every
	// session there earns the island allowance on top of base.
	ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-island", "10:00", 2))

	require.Len(t, ds.Classes, 1)
	require.Len(t, ds.Classes[0].Allowances, 1)
	item := ds.Classes[0].Allowances[0]
	assert.Equal(t, settlement.AllowanceRemoteIsland, item.Kind)
	assert.Equal(t, 2, item.Sessions)
	assert.True(t, item.Amount.Equal(engine.Won(20000)))
	assert.True(t, ds.TravelAllowance.Equal(engine.Won(40000)), "95 km falls in the >= 90 band")
}

func TestComputeDaily_SpecialEducation_ByLevelOrFlag(t *testing.T) {
	t.Run("special school level", func(t *testing.T) {
		ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-special", "10:00", 2))
		require.Len(t, ds.Classes[0].Allowances, 1)
		assert.Equal(t, settlement.AllowanceSpecialEdu, ds.Classes[0].Allowances[0].Kind)
	})

	t.Run("special class at a regular school", func(t *testing.T) {
		a := act("2025-03-10", "inst-gunsan", "10:00", 2)
		a.SpecialClass = true
		ds := computeDay(t, "2025-03-10", a)
		require.Len(t, ds.Classes[0].Allowances, 1)
		assert.Equal(t, settlement.AllowanceSpecialEdu, ds.Classes[0].Allowances[0].Kind)
	})
}

func TestComputeDaily_WeekendAllowance(t *testing.T) {
	// 2025-03-08 is a Saturday.
	ds := computeDay(t, "2025-03-08", act("2025-03-08", "inst-gunsan", "10:00", 2))

	require.Len(t, ds.Classes[0].Allowances, 1)
	assert.Equal(t, settlement.AllowanceWeekend, ds.Classes[0].Allowances[0].Kind)
	assert.True(t, ds.AllowanceTotal.Equal(engine.Won(20000)))
}

func TestComputeDaily_EventVoidsWeekendAllowance(t *testing.T) {
	// GIVEN: a Saturday activity that is an event (3 hours)
	// THEN:  event pay replaces the weekend allowance for its sessions;
	//        the two never stack

	ds := computeDay(t, "2025-03-08", act("2025-03-08", "inst-gunsan", "10:00", 2, withEventHours(3)))

	assert.Empty(t, ds.Classes[0].Allowances)
	assert.True(t, ds.EventPay.Equal(engine.Won(60000)), "event pay %s", ds.EventPay)
}

func TestComputeDaily_EventOnlyVoidsItsOwnActivity(t *testing.T) {
	// A weekend day mixing a regular class and an event: the regular
	// class keeps its weekend allowance.
	ds := computeDay(t, "2025-03-08",
		act("2025-03-08", "inst-gunsan", "09:00", 2),
		act("2025-03-08", "inst-gunsan", "14:00", 1, withEventHours(2)),
	)

	require.Len(t, ds.Classes, 2)
	assert.Len(t, ds.Classes[0].Allowances, 1)
	assert.Empty(t, ds.Classes[1].Allowances)
	assert.True(t, ds.EventPay.Equal(engine.Won(40000)))
}

func TestComputeDaily_SoloLargeClassAllowance(t *testing.T) {
	t.Run("lead with 15 students and no assistant", func(t *testing.T) {
		ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 2, withStudents(15)))
		require.Len(t, ds.Classes[0].Allowances, 1)
		assert.Equal(t, settlement.AllowanceSoloLargeClass, ds.Classes[0].Allowances[0].Kind)
	})

	t.Run("assistant present suppresses it", func(t *testing.T) {
		ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 2, withStudents(20), withAssistant))
		assert.Empty(t, ds.Classes[0].Allowances)
	})

	t.Run("assistant role never earns it", func(t *testing.T) {
		ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 2, withStudents(20), asAssistant))
		assert.Empty(t, ds.Classes[0].Allowances)
	})

	t.Run("14 students is below the threshold", func(t *testing.T) {
		ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 2, withStudents(14)))
		assert.Empty(t, ds.Classes[0].Allowances)
	})
}

func TestComputeDaily_EquipmentTransportFlatPerDay(t *testing.T) {
	// Two activities both flagging transport still pay the flat daily
	// fee exactly once.
	ds := computeDay(t, "2025-03-10",
		act("2025-03-10", "inst-gunsan", "09:00", 2, withTransport),
		act("2025-03-10", "inst-iksan", "14:00", 2, withTransport),
	)
	assert.True(t, ds.EquipmentTransport.Equal(engine.Won(20000)))
}

func TestComputeDaily_TwoInstitutionDay(t *testing.T) {
	// GIVEN: Gunsan AM, Iksan PM
	// THEN:  one route 52+25+20 = 97 km -> single 40,000 travel
	//        allowance for the whole day

	ds := computeDay(t, "2025-03-10",
		act("2025-03-10", "inst-gunsan", "09:00", 2),
		act("2025-03-10", "inst-iksan", "14:00", 2),
	)

	assert.True(t, ds.TravelKm.Equal(km(97)), "km %s", ds.TravelKm)
	assert.True(t, ds.TravelAllowance.Equal(engine.Won(40000)))
	assert.True(t, ds.BaseTotal.Equal(engine.Won(160000)))
}

func TestComputeDaily_CancelledActivity(t *testing.T) {
	// GIVEN: one live class and one cancelled class on the same day
	// THEN:  the cancelled sessions contribute nothing payable but
	//        remain visible as a forfeited-fee preview; the route skips
	//        the cancelled stop

	ds := computeDay(t, "2025-03-10",
		act("2025-03-10", "inst-home", "09:00", 2),
		act("2025-03-10", "inst-gunsan", "14:00", 3, cancelled),
	)

	require.Len(t, ds.Classes, 1)
	assert.Equal(t, 3, ds.CancelledSessions)
	assert.True(t, ds.CancelledPreview.Equal(engine.Won(120000)))
	assert.True(t, ds.TravelKm.IsZero(), "cancelled stop must not generate travel")
	assert.True(t, ds.GrossTotal.Equal(engine.Won(80000)))
}

func TestComputeDaily_AllCancelled(t *testing.T) {
	ds := computeDay(t, "2025-03-10", act("2025-03-10", "inst-gunsan", "10:00", 4, cancelled))

	assert.Empty(t, ds.Classes)
	assert.Equal(t, 4, ds.CancelledSessions)
	assert.True(t, ds.GrossTotal.IsZero())
}

func TestComputeDaily_RejectsMixedRows(t *testing.T) {
	stray := act("2025-03-11", "inst-gunsan", "10:00", 2)
	_, err := settlement.ComputeDaily(
		testInstructor(),
		engine.MustDate("2025-03-10"),
		[]engine.DailyActivity{stray},
		testInstitutions(),
		testMatrix(),
		engine.DefaultRateConfig(),
	)
	assert.ErrorIs(t, err, engine.ErrMixedActivityRows)
}
