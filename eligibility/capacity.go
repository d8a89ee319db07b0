package eligibility

import (
	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// MONTHLY SESSION CAPACITY - Per-month session counts for a program
// =============================================================================

// SessionsByMonth groups a program's sessions by calendar month.
//
// Explicit lesson dates win when available. The equal-distribution
// fallback (total sessions spread across the months the program's
// period spans, remainder to the earliest months) only applies to
// programs captured without lesson dates; a program with neither is
// broken input.
func SessionsByMonth(p engine.Program) (map[engine.Month]int, error) {
	if len(p.Lessons) > 0 {
		byMonth := make(map[engine.Month]int, 2)
		for _, l := range p.Lessons {
			byMonth[l.Date.MonthKey()]++
		}
		return byMonth, nil
	}

	if p.TotalSessions <= 0 || p.PeriodStart == nil || p.PeriodEnd == nil {
		return nil, engine.ErrProgramPeriodUnknown
	}

	months := engine.MonthsSpanned(*p.PeriodStart, *p.PeriodEnd)
	byMonth := make(map[engine.Month]int, len(months))
	base := p.TotalSessions / len(months)
	rem := p.TotalSessions % len(months)
	for i, m := range months {
		byMonth[m] = base
		if i < rem {
			byMonth[m]++
		}
	}
	return byMonth, nil
}

// assignedSessionsByMonth sums the sessions an instructor already
// holds for one role, grouped by month, across all existing
// assignments.
func assignedSessionsByMonth(existing []engine.Assignment, role engine.Role) (map[engine.Month]int, error) {
	total := make(map[engine.Month]int)
	for _, a := range existing {
		if a.Role != role {
			continue
		}
		byMonth, err := SessionsByMonth(a.Program)
		if err != nil {
			return nil, err
		}
		for m, n := range byMonth {
			total[m] += n
		}
	}
	return total, nil
}
