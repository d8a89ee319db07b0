package eligibility

import (
	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// ROLE SLOT - Explicit state per (program, role) seat
// =============================================================================

// SlotState tags the seat for one (program, role) pair. Modeling this
// explicitly replaces ad hoc application scans: a seat is Open,
// Pending behind the earliest applicant, or Filled by an accepted one.
type SlotState string

const (
	SlotOpen    SlotState = "open"
	SlotPending SlotState = "pending"
	SlotFilled  SlotState = "filled"
)

// RoleSlot is the derived seat state. Holder is meaningful for
// SlotPending (earliest pending applicant) and SlotFilled (accepted
// applicant).
type RoleSlot struct {
	State  SlotState
	Holder engine.Application
}

// SlotFor derives the seat state from every application for the
// (program, role) pair. An accepted application wins outright; among
// pending ones the earliest application date has priority, with
// instructor name as a deterministic tiebreak.
func SlotFor(apps []engine.Application, programID engine.ProgramID, role engine.Role) RoleSlot {
	var earliest *engine.Application
	for i := range apps {
		a := apps[i]
		if a.ProgramID != programID || a.Role != role {
			continue
		}
		switch a.Status {
		case engine.ApplicationAccepted:
			return RoleSlot{State: SlotFilled, Holder: a}
		case engine.ApplicationPending:
			if earliest == nil ||
				a.AppliedOn.Before(earliest.AppliedOn) ||
				(a.AppliedOn.Equal(earliest.AppliedOn) && a.InstructorName < earliest.InstructorName) {
				earliest = &apps[i]
			}
		}
	}
	if earliest != nil {
		return RoleSlot{State: SlotPending, Holder: *earliest}
	}
	return RoleSlot{State: SlotOpen}
}
