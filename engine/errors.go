/*
errors.go - Centralized error types for the engine

PURPOSE:
  All input-error types in one place for consistency and
  discoverability. The settlement and eligibility packages wrap these
  with additional context where needed.

ERROR CATEGORIES:
  1. Reference errors - Missing instructor/institution/city-pair data
  2. Format errors    - Date or time literals in no recognized format
  3. Consistency errors - Records that contradict their inputs

NOT ERRORS:
  Eligibility rejections are normal result values (eligibility.Result),
  never errors. Only broken inputs surface through this file.

USAGE:
  if errors.Is(err, engine.ErrUnknownCityPair) { ... }

  var ucp *engine.UnknownCityPairError
  if errors.As(err, &ucp) { log.Printf("no distance for %s-%s", ucp.CityA, ucp.CityB) }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCityPair is returned when the distance matrix has no
	// entry for a city pair. Callers must propagate: treating an
	// unknown route as free travel would misstate payroll.
	ErrUnknownCityPair = errors.New("unknown city pair")

	// ErrUnknownInstitution is returned when an activity references an
	// institution the reference table does not know.
	ErrUnknownInstitution = errors.New("institution not found")

	// ErrUnknownInstructor is returned when a referenced instructor
	// does not exist.
	ErrUnknownInstructor = errors.New("instructor not found")

	// ErrUnknownZone is returned when an instructor's home city has no
	// zone mapping and a PARTIAL-mode program needs one.
	ErrUnknownZone = errors.New("no zone mapping for city")

	// ErrMalformedDate is returned for date literals in neither the
	// dot- nor dash-separated format.
	ErrMalformedDate = errors.New("malformed date")

	// ErrMalformedTime is returned for time literals not in HH:MM form.
	ErrMalformedTime = errors.New("malformed time")

	// ErrMixedActivityRows is returned when a daily computation is
	// handed activity rows for a different instructor or date.
	ErrMixedActivityRows = errors.New("activity rows do not match instructor/date")

	// ErrMixedSettlements is returned when a monthly aggregation is
	// handed daily settlements spanning instructors or months.
	ErrMixedSettlements = errors.New("daily settlements span instructors or months")

	// ErrProgramPeriodUnknown is returned when a program has neither
	// explicit lesson dates nor a period to prorate sessions across.
	ErrProgramPeriodUnknown = errors.New("program has no lesson dates and no period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type UnknownCityPairError struct {
	CityA string
	CityB string
}

func (e *UnknownCityPairError) Error() string {
	return fmt.Sprintf("unknown city pair: %s <-> %s", e.CityA, e.CityB)
}

func (e *UnknownCityPairError) Unwrap() error { return ErrUnknownCityPair }

type UnknownInstitutionError struct {
	ID InstitutionID
}

func (e *UnknownInstitutionError) Error() string {
	return fmt.Sprintf("institution not found: %s", e.ID)
}

func (e *UnknownInstitutionError) Unwrap() error { return ErrUnknownInstitution }

type MalformedDateError struct {
	Input string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: expected 2006.01.02 or 2006-01-02", e.Input)
}

func (e *MalformedDateError) Unwrap() error { return ErrMalformedDate }

type MalformedTimeError struct {
	Input string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed time %q: expected HH:MM", e.Input)
}

func (e *MalformedTimeError) Unwrap() error { return ErrMalformedTime }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError reports whether the error stems from broken input data
// rather than an internal failure. Batch settlement uses this to
// isolate one instructor's bad records from blocking the rest.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownCityPair) ||
		errors.Is(err, ErrUnknownInstitution) ||
		errors.Is(err, ErrUnknownInstructor) ||
		errors.Is(err, ErrUnknownZone) ||
		errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrMalformedTime) ||
		errors.Is(err, ErrMixedActivityRows) ||
		errors.Is(err, ErrProgramPeriodUnknown)
}
