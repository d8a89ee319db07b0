/*
seed.go - Reference data seeding

PURPOSE:
  Loads a JSON seed document (instructors, institutions, distance
  rows, programs, applications, assignments) into the store at
  startup. Dates may use either recognized literal form; they are
  normalized at ingestion so only the canonical dash form reaches
  storage.

SEED DOCUMENT SHAPE:
  {
    "instructors":  [{"id": ..., "name": ..., "home_city": ...,
                      "max_monthly_lead": 20, "max_monthly_assistant": 20,
                      "daily_limit_override": 4}],
    "institutions": [{"id": ..., "name": ..., "city": ..., "level": "middle",
                      "remote_island": false}],
    "distances":    [{"city_a": ..., "city_b": ..., "km": 52}],
    "programs":     [{"id": ..., "name": ..., "region": ..., "mode": "FULL",
                      "deadline": "2025.03.31", "status": "open",
                      "lessons": [{"date": ..., "start": "10:00", "end": "12:00"}],
                      "total_sessions": 12, "period_start": ..., "period_end": ...}],
    "applications": [{"program_id": ..., "role": "lead", "instructor_name": ...,
                      "applied_on": ..., "status": "pending"}],
    "assignments":  [{"instructor_name": ..., "program_id": ..., "role": "lead"}]
  }
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/store/sqlite"
)

type seedDoc struct {
	Instructors []struct {
		ID                  string `json:"id"`
		Name                string `json:"name"`
		HomeCity            string `json:"home_city"`
		MaxMonthlyLead      int    `json:"max_monthly_lead"`
		MaxMonthlyAssistant int    `json:"max_monthly_assistant"`
		DailyLimitOverride  *int   `json:"daily_limit_override"`
	} `json:"instructors"`

	Institutions []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		City         string `json:"city"`
		Level        string `json:"level"`
		RemoteIsland bool   `json:"remote_island"`
	} `json:"institutions"`

	Distances []struct {
		CityA string  `json:"city_a"`
		CityB string  `json:"city_b"`
		Km    float64 `json:"km"`
	} `json:"distances"`

	Programs []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Region   string `json:"region"`
		Mode     string `json:"mode"`
		Deadline string `json:"deadline"`
		Status   string `json:"status"`
		Lessons  []struct {
			Date          string `json:"date"`
			Start         string `json:"start"`
			End           string `json:"end"`
			LeadName      string `json:"lead_name"`
			AssistantName string `json:"assistant_name"`
		} `json:"lessons"`
		TotalSessions int     `json:"total_sessions"`
		PeriodStart   *string `json:"period_start"`
		PeriodEnd     *string `json:"period_end"`
	} `json:"programs"`

	Applications []struct {
		ProgramID      string `json:"program_id"`
		Role           string `json:"role"`
		InstructorName string `json:"instructor_name"`
		AppliedOn      string `json:"applied_on"`
		Status         string `json:"status"`
	} `json:"applications"`

	Assignments []struct {
		InstructorName string `json:"instructor_name"`
		ProgramID      string `json:"program_id"`
		Role           string `json:"role"`
	} `json:"assignments"`
}

// loadSeed reads the seed document at path and writes it to the store.
func loadSeed(ctx context.Context, st *sqlite.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var doc seedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, i := range doc.Instructors {
		err := st.PutInstructor(ctx, engine.Instructor{
			ID:                  engine.InstructorID(i.ID),
			Name:                i.Name,
			HomeCity:            i.HomeCity,
			MaxMonthlyLead:      i.MaxMonthlyLead,
			MaxMonthlyAssistant: i.MaxMonthlyAssistant,
			DailyLimitOverride:  i.DailyLimitOverride,
		})
		if err != nil {
			return fmt.Errorf("seed instructor %s: %w", i.ID, err)
		}
	}

	for _, inst := range doc.Institutions {
		err := st.PutInstitution(ctx, engine.Institution{
			ID:           engine.InstitutionID(inst.ID),
			Name:         inst.Name,
			City:         inst.City,
			Level:        engine.SchoolLevel(inst.Level),
			RemoteIsland: inst.RemoteIsland,
		})
		if err != nil {
			return fmt.Errorf("seed institution %s: %w", inst.ID, err)
		}
	}

	for _, d := range doc.Distances {
		if err := st.SetDistance(ctx, d.CityA, d.CityB, engine.Km(d.Km)); err != nil {
			return fmt.Errorf("seed distance %s-%s: %w", d.CityA, d.CityB, err)
		}
	}

	for _, p := range doc.Programs {
		program := engine.Program{
			ID:            engine.ProgramID(p.ID),
			Name:          p.Name,
			Region:        p.Region,
			Mode:          engine.AssignmentMode(p.Mode),
			Status:        engine.ProgramStatus(p.Status),
			TotalSessions: p.TotalSessions,
		}
		if program.Deadline, err = engine.ParseDate(p.Deadline); err != nil {
			return fmt.Errorf("seed program %s: %w", p.ID, err)
		}
		if p.PeriodStart != nil {
			d, err := engine.ParseDate(*p.PeriodStart)
			if err != nil {
				return fmt.Errorf("seed program %s: %w", p.ID, err)
			}
			program.PeriodStart = &d
		}
		if p.PeriodEnd != nil {
			d, err := engine.ParseDate(*p.PeriodEnd)
			if err != nil {
				return fmt.Errorf("seed program %s: %w", p.ID, err)
			}
			program.PeriodEnd = &d
		}
		for _, l := range p.Lessons {
			date, err := engine.ParseDate(l.Date)
			if err != nil {
				return fmt.Errorf("seed program %s lesson: %w", p.ID, err)
			}
			start, err := engine.ParseTimeOfDay(l.Start)
			if err != nil {
				return fmt.Errorf("seed program %s lesson: %w", p.ID, err)
			}
			end, err := engine.ParseTimeOfDay(l.End)
			if err != nil {
				return fmt.Errorf("seed program %s lesson: %w", p.ID, err)
			}
			program.Lessons = append(program.Lessons, engine.Lesson{
				Date:          date,
				Time:          engine.NewTimeRange(start, end),
				LeadName:      l.LeadName,
				AssistantName: l.AssistantName,
			})
		}
		if err := st.PutProgram(ctx, program); err != nil {
			return fmt.Errorf("seed program %s: %w", p.ID, err)
		}
	}

	for _, a := range doc.Applications {
		applied, err := engine.ParseDate(a.AppliedOn)
		if err != nil {
			return fmt.Errorf("seed application %s/%s: %w", a.ProgramID, a.InstructorName, err)
		}
		err = st.AppendApplication(ctx, engine.Application{
			ProgramID:      engine.ProgramID(a.ProgramID),
			Role:           engine.Role(a.Role),
			InstructorName: a.InstructorName,
			AppliedOn:      applied,
			Status:         engine.ApplicationStatus(a.Status),
		})
		if err != nil {
			return fmt.Errorf("seed application %s/%s: %w", a.ProgramID, a.InstructorName, err)
		}
	}

	for _, a := range doc.Assignments {
		err := st.PutAssignment(ctx, a.InstructorName, engine.ProgramID(a.ProgramID), engine.Role(a.Role))
		if err != nil {
			return fmt.Errorf("seed assignment %s/%s: %w", a.InstructorName, a.ProgramID, err)
		}
	}
	return nil
}
