/*
Package engine provides the core data model for the instructor
settlement and assignment-eligibility engine.

PURPOSE:
  This package contains the domain-neutral building blocks shared by
  the settlement path (route -> daily -> monthly) and the eligibility
  path (rule chain over a candidate assignment). It has no persistence
  and no I/O: everything here is plain values plus pure functions.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A won amount backed by decimal.Decimal
  - Role: lead vs assistant instructor
  - Instructor / Institution: reference records
  - DailyActivity: the atomic unit of performed work

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
     in payroll arithmetic. No float64 ever touches a won amount.
  2. Purity: Records are snapshots; settlement and validation re-derive
     everything from them on each invocation.
  3. Loud failures: Missing reference data is a typed error, never a
     silent zero (a free unknown route would corrupt payroll).

SEE ALSO:
  - time.go: Date / TimeOfDay / TimeRange with format normalization
  - rates.go: RateConfig and the travel allowance bracket schedule
  - errors.go: Sentinel and structured error types
  - store.go: Read-only store interfaces the core consumes
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Won amount with exact arithmetic
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func Won(v int64) Money {
	return Money{Value: decimal.NewFromInt(v)}
}

func ZeroWon() Money {
	return Money{Value: decimal.Zero}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func (m Money) Add(o Money) Money            { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money            { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money                   { return Money{Value: m.Value.Neg()} }
func (m Money) MulInt(n int) Money           { return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) Mul(d decimal.Decimal) Money  { return Money{Value: m.Value.Mul(d)} }
func (m Money) IsZero() bool                 { return m.Value.IsZero() }
func (m Money) IsNegative() bool             { return m.Value.IsNegative() }
func (m Money) IsPositive() bool             { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool           { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool     { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool        { return m.Value.LessThan(o.Value) }
func (m Money) Min(o Money) Money            { if m.LessThan(o) { return m }; return o }
func (m Money) String() string               { return m.Value.String() }

// RoundWon rounds to a whole won, half away from zero. Withholding tax
// is the only place rounding happens, and only at the monthly level.
func (m Money) RoundWon() Money {
	return Money{Value: m.Value.Round(0)}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS AND ENUMS
// =============================================================================

type InstructorID string
type InstitutionID string
type ProgramID string

// Role distinguishes the lead instructor from the assistant instructor
// for a class session. Session rates and monthly caps differ per role.
type Role string

const (
	RoleLead      Role = "lead"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleLead || r == RoleAssistant }

// SchoolLevel classifies an institution. LevelSpecial triggers the
// special-education allowance for every session taught there.
type SchoolLevel string

const (
	LevelElementary SchoolLevel = "elementary"
	LevelMiddle     SchoolLevel = "middle"
	LevelHigh       SchoolLevel = "high"
	LevelSpecial    SchoolLevel = "special"
)

// =============================================================================
// INSTRUCTOR - Reference record, immutable during a settlement run
// =============================================================================

type Instructor struct {
	ID       InstructorID
	Name     string
	HomeCity string

	// Monthly session caps, per role
	MaxMonthlyLead      int
	MaxMonthlyAssistant int

	// Optional per-instructor daily session limit. nil = use the
	// global default from RateConfig.
	DailyLimitOverride *int
}

// MonthlyCap returns the session cap for the requested role.
func (i Instructor) MonthlyCap(role Role) int {
	if role == RoleAssistant {
		return i.MaxMonthlyAssistant
	}
	return i.MaxMonthlyLead
}

// DailyLimit returns the per-day session limit, preferring the
// per-instructor override when set.
func (i Instructor) DailyLimit(globalDefault int) int {
	if i.DailyLimitOverride != nil {
		return *i.DailyLimitOverride
	}
	return globalDefault
}

// =============================================================================
// INSTITUTION - Static reference data
// =============================================================================

type Institution struct {
	ID           InstitutionID
	Name         string
	City         string
	Level        SchoolLevel
	RemoteIsland bool
}

// InstitutionIndex resolves institution ids during settlement. A plain
// map keeps the calculators pure; stores build one per computation.
type InstitutionIndex map[InstitutionID]Institution

func (idx InstitutionIndex) Lookup(id InstitutionID) (Institution, error) {
	inst, ok := idx[id]
	if !ok {
		return Institution{}, &UnknownInstitutionError{ID: id}
	}
	return inst, nil
}

// =============================================================================
// DAILY ACTIVITY - Atomic unit of performed work (append-only log)
// =============================================================================

// DailyActivity is one row per (instructor, date, institution, role).
// Rows are never mutated after creation except to mark cancellation.
type DailyActivity struct {
	InstructorID  InstructorID
	Date          Date
	InstitutionID InstitutionID
	Role          Role

	// Start time of the first class session; the daily route orders
	// stops by this, not by record insertion order.
	StartTime TimeOfDay

	Sessions         int
	Students         int
	AssistantPresent bool
	SpecialClass     bool

	// Event participation hours. Positive hours make this an event
	// activity, which voids the weekend allowance for its sessions.
	EventHours decimal.Decimal

	EquipmentTransport bool
	Cancelled          bool
}

func (a DailyActivity) IsEvent() bool { return a.EventHours.IsPositive() }

// =============================================================================
// PROGRAM / LESSON - Eligibility-path reference data
// =============================================================================

type ProgramStatus string

const (
	ProgramOpen   ProgramStatus = "open"
	ProgramClosed ProgramStatus = "closed"
)

// AssignmentMode controls the zone check: FULL programs accept any
// zone, PARTIAL programs only instructors whose zone matches Region.
type AssignmentMode string

const (
	ModeFull    AssignmentMode = "FULL"
	ModePartial AssignmentMode = "PARTIAL"
)

type Lesson struct {
	Date          Date
	Time          TimeRange
	LeadName      string
	AssistantName string
}

type Program struct {
	ID       ProgramID
	Name     string
	Region   string
	Mode     AssignmentMode
	Deadline Date
	Status   ProgramStatus

	Lessons []Lesson

	// Proration fallback for programs captured without explicit lesson
	// dates: TotalSessions spread across [PeriodStart, PeriodEnd].
	// Explicit lesson dates always win when present.
	TotalSessions int
	PeriodStart   *Date
	PeriodEnd     *Date
}

// SessionCount returns the number of sessions the program carries.
func (p Program) SessionCount() int {
	if len(p.Lessons) > 0 {
		return len(p.Lessons)
	}
	return p.TotalSessions
}

// =============================================================================
// APPLICATION / ASSIGNMENT
// =============================================================================

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is an instructor's request for a (program, role) seat.
// Invariant: at most one accepted application per (program, role);
// among pending ones the earliest application date has priority.
type Application struct {
	ProgramID      ProgramID
	Role           Role
	InstructorName string
	AppliedOn      Date
	Status         ApplicationStatus
}

// Assignment is a (program, role) an instructor already holds. The
// eligibility validator counts its sessions against monthly caps and
// its lessons against schedule conflicts and daily limits.
type Assignment struct {
	Program Program
	Role    Role
}
