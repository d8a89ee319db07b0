/*
store.go - Store interfaces the core reads through

PURPOSE:
  The computation core never touches persistence directly. It reads
  snapshots through these interfaces and stays trivially testable with
  the in-memory implementations in store/. Writes (new applications,
  activity cancellation) belong to the store layer, not the core: a
  settlement or validation run performs at most one logical read
  followed by pure arithmetic, so no lock is ever held across a
  computation.

IMPLEMENTATIONS:
  - store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite-backed production store

SEE ALSO:
  - settlement/runner.go: Batch consumer of these interfaces
  - api/handlers.go: HTTP consumer
*/
package engine

import "context"

// ActivityStore reads the append-only daily activity log.
type ActivityStore interface {
	// ActivitiesOn returns all activity rows for one instructor-day,
	// including cancelled rows (the calculator excludes them from pay
	// but keeps their forfeited preview).
	ActivitiesOn(ctx context.Context, id InstructorID, date Date) ([]DailyActivity, error)

	// ActivitiesInMonth returns all activity rows for one instructor
	// within a calendar month, ordered by date.
	ActivitiesInMonth(ctx context.Context, id InstructorID, month Month) ([]DailyActivity, error)
}

// ApplicationStore reads instructor applications.
type ApplicationStore interface {
	// ApplicationsFor returns every application for a (program, role)
	// seat, any status.
	ApplicationsFor(ctx context.Context, programID ProgramID, role Role) ([]Application, error)

	// AssignmentsFor returns the (program, role) pairs an instructor
	// already holds, with full program lesson data.
	AssignmentsFor(ctx context.Context, instructorName string) ([]Assignment, error)
}

// ReferenceStore reads static reference data.
type ReferenceStore interface {
	Instructor(ctx context.Context, id InstructorID) (Instructor, error)
	Instructors(ctx context.Context) ([]Instructor, error)
	Institutions(ctx context.Context) (InstitutionIndex, error)
	Distances(ctx context.Context) (*DistanceMatrix, error)
}
