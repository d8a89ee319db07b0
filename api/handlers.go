/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the settlement and eligibility core via REST. Handles HTTP
  request/response, JSON serialization and DTO validation, and
  delegates every decision to the domain packages.

ENDPOINTS:
  Settlements:
    POST /api/settlements/daily    Settle one instructor-day
    POST /api/settlements/monthly  Settle one instructor-month
    POST /api/settlements/run      Batch-settle a month for everyone

  Eligibility:
    POST /api/validate             Validate a candidate assignment

  Reference:
    GET  /api/instructors          List instructors
    GET  /api/institutions         List institutions

ERROR HANDLING:
  - 400: Malformed JSON, DTO validation failures, broken input data
  - 404: Unknown instructor/program
  - 500: Everything else
  Eligibility REJECTIONS are not errors: they return 200 with
  {"valid": false, "rule": ..., "reason": ...} for the UI to display.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kedu/settlement-engine/eligibility"
	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/settlement"
)

// Store is everything the handlers need from persistence.
type Store interface {
	engine.ActivityStore
	engine.ApplicationStore
	engine.ReferenceStore
	Program(ctx context.Context, id engine.ProgramID) (engine.Program, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Rates    engine.RateConfig
	validate *validator.Validate
}

// NewHandler creates a handler over the given store and rate schedule.
func NewHandler(store Store, rates engine.RateConfig) *Handler {
	return &Handler{
		Store:    store,
		Rates:    rates,
		validate: validator.New(),
	}
}

func (h *Handler) runner() *settlement.Runner {
	return &settlement.Runner{Activities: h.Store, Reference: h.Store, Rates: h.Rates}
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

func (h *Handler) ComputeDailySettlement(w http.ResponseWriter, r *http.Request) {
	var req DailySettlementRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	instructor, err := h.Store.Instructor(ctx, engine.InstructorID(req.InstructorID))
	if err != nil {
		respondError(w, err)
		return
	}
	activities, err := h.Store.ActivitiesOn(ctx, instructor.ID, date)
	if err != nil {
		respondError(w, err)
		return
	}
	institutions, err := h.Store.Institutions(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	matrix, err := h.Store.Distances(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	ds, err := settlement.ComputeDaily(instructor, date, activities, institutions, matrix, h.Rates)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDailyDTO(ds))
}

func (h *Handler) ComputeMonthlySettlement(w http.ResponseWriter, r *http.Request) {
	var req MonthlySettlementRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	instructor, err := h.Store.Instructor(ctx, engine.InstructorID(req.InstructorID))
	if err != nil {
		respondError(w, err)
		return
	}

	month := engine.Month{Year: req.Year, Month: time.Month(req.Month)}
	ms, err := h.runner().SettleMonth(ctx, instructor, month)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMonthlyDTO(ms))
}

func (h *Handler) RunMonthlySettlements(w http.ResponseWriter, r *http.Request) {
	var req RunMonthRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	instructors, err := h.Store.Instructors(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	month := engine.Month{Year: req.Year, Month: time.Month(req.Month)}
	report, err := h.runner().RunMonth(ctx, instructors, month)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRunReportDTO(report))
}

// =============================================================================
// ELIGIBILITY HANDLER
// =============================================================================

func (h *Handler) ValidateAssignment(w http.ResponseWriter, r *http.Request) {
	var req ValidateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	today := engine.Today()
	if req.Today != "" {
		var err error
		if today, err = engine.ParseDate(req.Today); err != nil {
			respondError(w, err)
			return
		}
	}

	ctx := r.Context()
	instructor, err := h.Store.Instructor(ctx, engine.InstructorID(req.InstructorID))
	if err != nil {
		respondError(w, err)
		return
	}
	program, err := h.Store.Program(ctx, engine.ProgramID(req.ProgramID))
	if err != nil {
		respondError(w, err)
		return
	}
	role := engine.Role(req.Role)

	existing, err := h.Store.AssignmentsFor(ctx, instructor.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	applications, err := h.Store.ApplicationsFor(ctx, program.ID, role)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := eligibility.Validate(
		eligibility.Candidate{Instructor: instructor, Program: program, Role: role},
		eligibility.Snapshot{Today: today, Existing: existing, Applications: applications},
		h.Rates,
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toValidationDTO(result))
}

// =============================================================================
// REFERENCE HANDLERS
// =============================================================================

func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.Store.Instructors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]InstructorDTO, 0, len(instructors))
	for _, i := range instructors {
		out = append(out, toInstructorDTO(i))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	idx, err := h.Store.Institutions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]InstitutionDTO, 0, len(idx))
	for _, inst := range idx {
		out = append(out, InstitutionDTO{
			ID:           string(inst.ID),
			Name:         inst.Name,
			City:         inst.City,
			Level:        string(inst.Level),
			RemoteIsland: inst.RemoteIsland,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUnknownInstructor):
		status = http.StatusNotFound
	case engine.IsInputError(err):
		status = http.StatusBadRequest
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
