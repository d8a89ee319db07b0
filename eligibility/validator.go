/*
Package eligibility decides whether a candidate instructor-to-program
assignment is legal.

PURPOSE:
  Validate runs an ORDERED chain of rule checks over a snapshot of the
  instructor's existing assignments and the seat's applications. The
  first failing check short-circuits: later checks are not evaluated,
  so the reported reason is the root cause, never a downstream symptom.

RULE ORDER:
  1. program_status    - applications must be open
  2. deadline          - today must not be past the deadline
  3. zone              - PARTIAL programs require a zone match
  4. monthly_capacity  - per-role monthly session caps
  5. schedule_conflict - no overlapping lesson time ranges on a date
  6. daily_limit       - per-day session ceiling (override or default)
  7. role_exclusivity  - earliest other applicant holds the seat

REJECTIONS ARE VALUES:
  A failed check is a normal Result{Valid: false, Rule, Reason}, never
  an error. Errors are reserved for broken input (unknown zone, a
  program with no dates and no period). The validator has no side
  effects, so a rejection never partially applies anything.
*/
package eligibility

import (
	"fmt"
	"sort"

	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// INPUT / OUTPUT TYPES
// =============================================================================

// Candidate is the assignment under consideration.
type Candidate struct {
	Instructor engine.Instructor
	Program    engine.Program
	Role       engine.Role
}

// Snapshot is the read-only world state the rules run against.
type Snapshot struct {
	// Today is the validation date (deadline check).
	Today engine.Date

	// Existing assignments the instructor already holds.
	Existing []engine.Assignment

	// Applications for the candidate (program, role) seat.
	Applications []engine.Application
}

// Result is the validation outcome. Valid results carry no reason;
// rejections name the violated rule and a displayable reason.
type Result struct {
	Valid  bool
	Rule   string
	Reason string
}

func Accept() Result { return Result{Valid: true} }

func Reject(rule, reason string) Result {
	return Result{Valid: false, Rule: rule, Reason: reason}
}

// =============================================================================
// RULE CHAIN
// =============================================================================

type ruleFunc func(c Candidate, s Snapshot, cfg engine.RateConfig) (string, error)

type rule struct {
	name  string
	check ruleFunc
}

// Order matters: the first rejection is the one reported.
var rules = []rule{
	{"program_status", checkProgramStatus},
	{"deadline", checkDeadline},
	{"zone", checkZone},
	{"monthly_capacity", checkMonthlyCapacity},
	{"schedule_conflict", checkScheduleConflict},
	{"daily_limit", checkDailyLimit},
	{"role_exclusivity", checkRoleExclusivity},
}

// Validate runs the chain. The returned error is reserved for broken
// input; every business outcome, accept or reject, is in the Result.
func Validate(c Candidate, s Snapshot, cfg engine.RateConfig) (Result, error) {
	for _, r := range rules {
		reason, err := r.check(c, s, cfg)
		if err != nil {
			return Result{}, err
		}
		if reason != "" {
			return Reject(r.name, reason), nil
		}
	}
	return Accept(), nil
}

// =============================================================================
// RULES
// =============================================================================

func checkProgramStatus(c Candidate, _ Snapshot, _ engine.RateConfig) (string, error) {
	if c.Program.Status != engine.ProgramOpen {
		return fmt.Sprintf("program %q is closed to applications", c.Program.Name), nil
	}
	return "", nil
}

func checkDeadline(c Candidate, s Snapshot, _ engine.RateConfig) (string, error) {
	if s.Today.After(c.Program.Deadline) {
		return fmt.Sprintf("application deadline %s has passed", c.Program.Deadline), nil
	}
	return "", nil
}

func checkZone(c Candidate, _ Snapshot, cfg engine.RateConfig) (string, error) {
	if c.Program.Mode != engine.ModePartial {
		return "", nil
	}
	zone, ok := cfg.Zone(c.Instructor.HomeCity)
	if !ok {
		return "", fmt.Errorf("%w: %s", engine.ErrUnknownZone, c.Instructor.HomeCity)
	}
	if zone != c.Program.Region {
		return fmt.Sprintf("restricted program: instructor zone %q does not match program region %q",
			zone, c.Program.Region), nil
	}
	return "", nil
}

func checkMonthlyCapacity(c Candidate, s Snapshot, _ engine.RateConfig) (string, error) {
	candidate, err := SessionsByMonth(c.Program)
	if err != nil {
		return "", err
	}
	assigned, err := assignedSessionsByMonth(s.Existing, c.Role)
	if err != nil {
		return "", err
	}

	cap := c.Instructor.MonthlyCap(c.Role)
	for month, sessions := range candidate {
		if assigned[month]+sessions > cap {
			return fmt.Sprintf("monthly %s capacity exceeded for %s: %d assigned + %d requested > %d cap",
				c.Role, month, assigned[month], sessions, cap), nil
		}
	}
	return "", nil
}

func checkScheduleConflict(c Candidate, s Snapshot, _ engine.RateConfig) (string, error) {
	for _, candidate := range c.Program.Lessons {
		for _, held := range s.Existing {
			for _, existing := range held.Program.Lessons {
				if !candidate.Date.Equal(existing.Date) {
					continue
				}
				if candidate.Time.Overlaps(existing.Time) {
					return fmt.Sprintf("schedule conflict on %s: %s overlaps %s (%s)",
						candidate.Date, candidate.Time, existing.Time, held.Program.Name), nil
				}
			}
		}
	}
	return "", nil
}

func checkDailyLimit(c Candidate, s Snapshot, cfg engine.RateConfig) (string, error) {
	limit := c.Instructor.DailyLimit(cfg.DefaultDailySessionLimit)

	perDay := make(map[engine.Date]int)
	for _, held := range s.Existing {
		for _, l := range held.Program.Lessons {
			perDay[l.Date]++
		}
	}

	var worst *engine.Date
	for _, l := range c.Program.Lessons {
		perDay[l.Date]++
		if perDay[l.Date] > limit {
			if worst == nil || l.Date.Before(*worst) {
				d := l.Date
				worst = &d
			}
		}
	}
	if worst != nil {
		return fmt.Sprintf("daily session limit %d exceeded on %s (%d sessions)",
			limit, *worst, perDay[*worst]), nil
	}
	return "", nil
}

func checkRoleExclusivity(c Candidate, s Snapshot, _ engine.RateConfig) (string, error) {
	// Only OTHER instructors block the seat. Re-validating one's own
	// earlier application is not a conflict.
	var others []engine.Application
	for _, a := range s.Applications {
		if a.InstructorName != c.Instructor.Name {
			others = append(others, a)
		}
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].AppliedOn.Before(others[j].AppliedOn) })

	slot := SlotFor(others, c.Program.ID, c.Role)
	switch slot.State {
	case SlotFilled:
		return fmt.Sprintf("%s seat already filled by %s (applied %s)",
			c.Role, slot.Holder.InstructorName, slot.Holder.AppliedOn), nil
	case SlotPending:
		return fmt.Sprintf("%s seat already requested by %s (applied %s, first come first served)",
			c.Role, slot.Holder.InstructorName, slot.Holder.AppliedOn), nil
	}
	return "", nil
}
