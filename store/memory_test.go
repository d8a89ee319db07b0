package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/store"
)

func TestMemory_CancelActivity(t *testing.T) {
	mem := store.NewMemory()
	a := engine.DailyActivity{
		InstructorID:  "lee-01",
		Date:          engine.MustDate("2025-03-10"),
		InstitutionID: "inst-gunsan",
		Role:          engine.RoleLead,
		StartTime:     engine.MustTimeOfDay("10:00"),
		Sessions:      2,
	}
	mem.AppendActivity(a)

	n := mem.CancelActivity("lee-01", engine.MustDate("2025-03-10"), "inst-gunsan")
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, mem.CancelActivity("lee-01", engine.MustDate("2025-03-10"), "inst-gunsan"),
		"already-cancelled rows are not flipped twice")

	day, err := mem.ActivitiesOn(context.Background(), "lee-01", engine.MustDate("2025-03-10"))
	require.NoError(t, err)
	require.Len(t, day, 1, "the log keeps cancelled rows")
	assert.True(t, day[0].Cancelled)
}

func TestMemory_ActivitiesInMonthSortedByDate(t *testing.T) {
	mem := store.NewMemory()
	for _, date := range []string{"2025-03-20", "2025-03-05", "2025-04-01", "2025-03-12"} {
		mem.AppendActivity(engine.DailyActivity{
			InstructorID:  "lee-01",
			Date:          engine.MustDate(date),
			InstitutionID: "inst-gunsan",
			Role:          engine.RoleLead,
			StartTime:     engine.MustTimeOfDay("10:00"),
			Sessions:      1,
		})
	}

	march, err := mem.ActivitiesInMonth(context.Background(), "lee-01", engine.Month{Year: 2025, Month: time.March})
	require.NoError(t, err)
	require.Len(t, march, 3)
	assert.Equal(t, "2025-03-05", march[0].Date.String())
	assert.Equal(t, "2025-03-20", march[2].Date.String())
}
