package eligibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedu/settlement-engine/eligibility"
	"github.com/kedu/settlement-engine/engine"
)

func TestSessionsByMonth_ExplicitLessonDatesWin(t *testing.T) {
	// GIVEN: lesson dates clustered in March (3) and April (1), plus a
	//        period that would prorate differently
	// THEN:  the lesson-date grouping is used; the period is ignored

	start := engine.MustDate("2025-03-01")
	end := engine.MustDate("2025-06-30")
	p := engine.Program{
		ID: "prog-1",
		Lessons: []engine.Lesson{
			lesson("2025-03-10", "10:00", "11:00"),
			lesson("2025-03-12", "10:00", "11:00"),
			lesson("2025-03-14", "10:00", "11:00"),
			lesson("2025-04-02", "10:00", "11:00"),
		},
		TotalSessions: 40,
		PeriodStart:   &start,
		PeriodEnd:     &end,
	}

	byMonth, err := eligibility.SessionsByMonth(p)
	require.NoError(t, err)

	assert.Equal(t, map[engine.Month]int{
		{Year: 2025, Month: time.March}: 3,
		{Year: 2025, Month: time.April}: 1,
	}, byMonth)
}

func TestSessionsByMonth_ProrationFallback(t *testing.T) {
	// 10 sessions over March-May: base 3 per month, remainder 1 to the
	// earliest month.
	start := engine.MustDate("2025-03-01")
	end := engine.MustDate("2025-05-31")
	p := engine.Program{ID: "prog-1", TotalSessions: 10, PeriodStart: &start, PeriodEnd: &end}

	byMonth, err := eligibility.SessionsByMonth(p)
	require.NoError(t, err)

	assert.Equal(t, map[engine.Month]int{
		{Year: 2025, Month: time.March}: 4,
		{Year: 2025, Month: time.April}: 3,
		{Year: 2025, Month: time.May}:   3,
	}, byMonth)
}

func TestSessionsByMonth_SingleMonthPeriod(t *testing.T) {
	start := engine.MustDate("2025-03-05")
	end := engine.MustDate("2025-03-28")
	p := engine.Program{ID: "prog-1", TotalSessions: 7, PeriodStart: &start, PeriodEnd: &end}

	byMonth, err := eligibility.SessionsByMonth(p)
	require.NoError(t, err)
	assert.Equal(t, map[engine.Month]int{{Year: 2025, Month: time.March}: 7}, byMonth)
}

func TestSessionsByMonth_NoDatesNoPeriodIsBrokenInput(t *testing.T) {
	_, err := eligibility.SessionsByMonth(engine.Program{ID: "prog-1", TotalSessions: 5})
	assert.ErrorIs(t, err, engine.ErrProgramPeriodUnknown)

	start := engine.MustDate("2025-03-01")
	end := engine.MustDate("2025-03-31")
	_, err = eligibility.SessionsByMonth(engine.Program{ID: "prog-1", PeriodStart: &start, PeriodEnd: &end})
	assert.ErrorIs(t, err, engine.ErrProgramPeriodUnknown, "zero sessions with a period is equally broken")
}
