/*
runner.go - Batch settlement with per-instructor error isolation

PURPOSE:
  Settles a whole month for many instructors in one pass. One
  instructor's broken data (unknown institution, missing distance row)
  must never block the others: failures are collected per instructor
  and reported alongside the successful settlements.
*/
package settlement

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kedu/settlement-engine/engine"
)

// InstructorError pairs a failed instructor with the cause.
type InstructorError struct {
	InstructorID engine.InstructorID
	Err          error
}

func (e InstructorError) Error() string {
	return string(e.InstructorID) + ": " + e.Err.Error()
}

// RunReport is the outcome of one batch run.
type RunReport struct {
	RunID       string
	Month       engine.Month
	Settlements []*MonthlySettlement
	Failures    []InstructorError
}

// Runner wires the stores and rate schedule for batch runs.
type Runner struct {
	Activities engine.ActivityStore
	Reference  engine.ReferenceStore
	Rates      engine.RateConfig
}

// SettleMonth recomputes one instructor's monthly settlement from the
// activity log: group the month's rows by date, settle each day, then
// aggregate.
func (r *Runner) SettleMonth(ctx context.Context, instructor engine.Instructor, month engine.Month) (*MonthlySettlement, error) {
	institutions, err := r.Reference.Institutions(ctx)
	if err != nil {
		return nil, err
	}
	matrix, err := r.Reference.Distances(ctx)
	if err != nil {
		return nil, err
	}
	return r.settleMonth(ctx, instructor, month, institutions, matrix)
}

func (r *Runner) settleMonth(
	ctx context.Context,
	instructor engine.Instructor,
	month engine.Month,
	institutions engine.InstitutionIndex,
	matrix *engine.DistanceMatrix,
) (*MonthlySettlement, error) {
	activities, err := r.Activities.ActivitiesInMonth(ctx, instructor.ID, month)
	if err != nil {
		return nil, err
	}

	byDate := make(map[engine.Date][]engine.DailyActivity)
	var dates []engine.Date
	for _, a := range activities {
		if _, seen := byDate[a.Date]; !seen {
			dates = append(dates, a.Date)
		}
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var dailies []*DailySettlement
	for _, date := range dates {
		d, err := ComputeDaily(instructor, date, byDate[date], institutions, matrix, r.Rates)
		if err != nil {
			return nil, err
		}
		dailies = append(dailies, d)
	}
	if len(dailies) == 0 {
		// A month with no activity settles to zero rather than erroring.
		return &MonthlySettlement{
			InstructorID:            instructor.ID,
			InstructorName:          instructor.Name,
			Month:                   month,
			BaseTotal:               engine.ZeroWon(),
			AllowanceTotal:          engine.ZeroWon(),
			TravelTotal:             engine.ZeroWon(),
			EquipmentTransportTotal: engine.ZeroWon(),
			EventTotal:              engine.ZeroWon(),
			GrossTotal:              engine.ZeroWon(),
			Tax:                     engine.ZeroWon(),
			NetTotal:                engine.ZeroWon(),
			CancelledPreview:        engine.ZeroWon(),
		}, nil
	}
	return ComputeMonthly(dailies, r.Rates)
}

// RunMonth settles every given instructor for the month, isolating
// failures. The returned error covers infrastructure problems only
// (reference data unavailable); per-instructor data errors land in
// the report's Failures list.
func (r *Runner) RunMonth(ctx context.Context, instructors []engine.Instructor, month engine.Month) (*RunReport, error) {
	institutions, err := r.Reference.Institutions(ctx)
	if err != nil {
		return nil, err
	}
	matrix, err := r.Reference.Distances(ctx)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID: uuid.NewString(),
		Month: month,
	}
	for _, instructor := range instructors {
		ms, err := r.settleMonth(ctx, instructor, month, institutions, matrix)
		if err != nil {
			report.Failures = append(report.Failures, InstructorError{
				InstructorID: instructor.ID,
				Err:          err,
			})
			continue
		}
		report.Settlements = append(report.Settlements, ms)
	}
	return report, nil
}
