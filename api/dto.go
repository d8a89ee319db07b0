/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model from the external contract. Amounts render as
  plain numeric strings; dates use the canonical dash form.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

VALIDATION:
  Request structs carry validator/v10 tags; handlers run the shared
  validator before touching domain logic. Date strings are accepted in
  both recognized literal forms and normalized at ingestion.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/time.go: Date normalization
*/
package api

import (
	"github.com/kedu/settlement-engine/eligibility"
	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/settlement"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type DailySettlementRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
}

type MonthlySettlementRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=2000,max=2100"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
}

type RunMonthRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

type ValidateAssignmentRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
	ProgramID    string `json:"program_id" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=lead assistant"`

	// Optional validation date; defaults to today.
	Today string `json:"today,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type AllowanceItemDTO struct {
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	PerSession string `json:"per_session"`
	Sessions   int    `json:"sessions"`
	Amount     string `json:"amount"`
}

type ClassCalculationDTO struct {
	InstitutionID   string             `json:"institution_id"`
	InstitutionName string             `json:"institution_name"`
	Role            string             `json:"role"`
	Sessions        int                `json:"sessions"`
	SessionRate     string             `json:"session_rate"`
	BaseAmount      string             `json:"base_amount"`
	Allowances      []AllowanceItemDTO `json:"allowances,omitempty"`
	AllowanceTotal  string             `json:"allowance_total"`
}

type LegDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
	Km   string `json:"km"`
}

type DailySettlementDTO struct {
	InstructorID       string                `json:"instructor_id"`
	InstructorName     string                `json:"instructor_name"`
	Date               string                `json:"date"`
	Classes            []ClassCalculationDTO `json:"classes,omitempty"`
	BaseTotal          string                `json:"base_total"`
	AllowanceTotal     string                `json:"allowance_total"`
	Legs               []LegDTO              `json:"route,omitempty"`
	TravelKm           string                `json:"travel_km"`
	TravelAllowance    string                `json:"travel_allowance"`
	EquipmentTransport string                `json:"equipment_transport"`
	EventPay           string                `json:"event_pay"`
	GrossTotal         string                `json:"gross_total"`
	CancelledSessions  int                   `json:"cancelled_sessions"`
	CancelledPreview   string                `json:"cancelled_preview"`
}

type MonthlySettlementDTO struct {
	InstructorID            string `json:"instructor_id"`
	InstructorName          string `json:"instructor_name"`
	Month                   string `json:"month"`
	Days                    int    `json:"days"`
	BaseTotal               string `json:"base_total"`
	AllowanceTotal          string `json:"allowance_total"`
	TravelTotal             string `json:"travel_total"`
	EquipmentTransportTotal string `json:"equipment_transport_total"`
	EquipmentCapApplied     bool   `json:"equipment_cap_applied"`
	EventTotal              string `json:"event_total"`
	GrossTotal              string `json:"gross_total"`
	Tax                     string `json:"tax"`
	NetTotal                string `json:"net_total"`
	CancelledSessions       int    `json:"cancelled_sessions"`
	CancelledPreview        string `json:"cancelled_preview"`
}

type RunFailureDTO struct {
	InstructorID string `json:"instructor_id"`
	Error        string `json:"error"`
}

type RunReportDTO struct {
	RunID       string                 `json:"run_id"`
	Month       string                 `json:"month"`
	Settlements []MonthlySettlementDTO `json:"settlements"`
	Failures    []RunFailureDTO        `json:"failures,omitempty"`
}

type ValidationResultDTO struct {
	Valid  bool   `json:"valid"`
	Rule   string `json:"rule,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type InstructorDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	HomeCity            string `json:"home_city"`
	MaxMonthlyLead      int    `json:"max_monthly_lead"`
	MaxMonthlyAssistant int    `json:"max_monthly_assistant"`
	DailyLimitOverride  *int   `json:"daily_limit_override,omitempty"`
}

type InstitutionDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Level        string `json:"level"`
	RemoteIsland bool   `json:"remote_island"`
}

// =============================================================================
// DOMAIN -> DTO CONVERTERS
// =============================================================================

func toDailyDTO(d *settlement.DailySettlement) DailySettlementDTO {
	dto := DailySettlementDTO{
		InstructorID:       string(d.InstructorID),
		InstructorName:     d.InstructorName,
		Date:               d.Date.String(),
		BaseTotal:          d.BaseTotal.String(),
		AllowanceTotal:     d.AllowanceTotal.String(),
		TravelKm:           d.TravelKm.String(),
		TravelAllowance:    d.TravelAllowance.String(),
		EquipmentTransport: d.EquipmentTransport.String(),
		EventPay:           d.EventPay.String(),
		GrossTotal:         d.GrossTotal.String(),
		CancelledSessions:  d.CancelledSessions,
		CancelledPreview:   d.CancelledPreview.String(),
	}
	for _, c := range d.Classes {
		cdto := ClassCalculationDTO{
			InstitutionID:   string(c.InstitutionID),
			InstitutionName: c.InstitutionName,
			Role:            string(c.Role),
			Sessions:        c.Sessions,
			SessionRate:     c.SessionRate.String(),
			BaseAmount:      c.BaseAmount.String(),
			AllowanceTotal:  c.AllowanceTotal.String(),
		}
		for _, a := range c.Allowances {
			cdto.Allowances = append(cdto.Allowances, AllowanceItemDTO{
				Kind:       string(a.Kind),
				Reason:     a.Reason,
				PerSession: a.PerSession.String(),
				Sessions:   a.Sessions,
				Amount:     a.Amount.String(),
			})
		}
		dto.Classes = append(dto.Classes, cdto)
	}
	for _, l := range d.Route.Legs {
		dto.Legs = append(dto.Legs, LegDTO{From: l.FromCity, To: l.ToCity, Km: l.Km.String()})
	}
	return dto
}

func toMonthlyDTO(m *settlement.MonthlySettlement) MonthlySettlementDTO {
	return MonthlySettlementDTO{
		InstructorID:            string(m.InstructorID),
		InstructorName:          m.InstructorName,
		Month:                   m.Month.String(),
		Days:                    m.Days,
		BaseTotal:               m.BaseTotal.String(),
		AllowanceTotal:          m.AllowanceTotal.String(),
		TravelTotal:             m.TravelTotal.String(),
		EquipmentTransportTotal: m.EquipmentTransportTotal.String(),
		EquipmentCapApplied:     m.EquipmentCapApplied,
		EventTotal:              m.EventTotal.String(),
		GrossTotal:              m.GrossTotal.String(),
		Tax:                     m.Tax.String(),
		NetTotal:                m.NetTotal.String(),
		CancelledSessions:       m.CancelledSessions,
		CancelledPreview:        m.CancelledPreview.String(),
	}
}

func toRunReportDTO(r *settlement.RunReport) RunReportDTO {
	dto := RunReportDTO{RunID: r.RunID, Month: r.Month.String()}
	for _, s := range r.Settlements {
		dto.Settlements = append(dto.Settlements, toMonthlyDTO(s))
	}
	for _, f := range r.Failures {
		dto.Failures = append(dto.Failures, RunFailureDTO{
			InstructorID: string(f.InstructorID),
			Error:        f.Err.Error(),
		})
	}
	return dto
}

func toValidationDTO(r eligibility.Result) ValidationResultDTO {
	return ValidationResultDTO{Valid: r.Valid, Rule: r.Rule, Reason: r.Reason}
}

func toInstructorDTO(i engine.Instructor) InstructorDTO {
	return InstructorDTO{
		ID:                  string(i.ID),
		Name:                i.Name,
		HomeCity:            i.HomeCity,
		MaxMonthlyLead:      i.MaxMonthlyLead,
		MaxMonthlyAssistant: i.MaxMonthlyAssistant,
		DailyLimitOverride:  i.DailyLimitOverride,
	}
}
