// Package store provides in-memory implementations of the engine's
// store interfaces, used by tests and the dev server. The activity
// log is append-only: the single permitted mutation is marking a row
// cancelled.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kedu/settlement-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	instructors  map[engine.InstructorID]engine.Instructor
	institutions engine.InstitutionIndex
	matrix       *engine.DistanceMatrix
	activities   []engine.DailyActivity
	applications []engine.Application
	assignments  map[string][]engine.Assignment // by instructor name
	programs     map[engine.ProgramID]engine.Program
}

var _ engine.ActivityStore = (*Memory)(nil)
var _ engine.ApplicationStore = (*Memory)(nil)
var _ engine.ReferenceStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		instructors:  make(map[engine.InstructorID]engine.Instructor),
		institutions: make(engine.InstitutionIndex),
		matrix:       engine.NewDistanceMatrix(),
		assignments:  make(map[string][]engine.Assignment),
		programs:     make(map[engine.ProgramID]engine.Program),
	}
}

// =============================================================================
// WRITES - The core never calls these; seeders and handlers do.
// =============================================================================

func (m *Memory) PutInstructor(i engine.Instructor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instructors[i.ID] = i
}

func (m *Memory) PutInstitution(inst engine.Institution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.institutions[inst.ID] = inst
}

func (m *Memory) SetDistance(cityA, cityB string, km float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matrix.Set(cityA, cityB, engine.Km(km))
}

// AppendActivity adds one row to the append-only activity log.
func (m *Memory) AppendActivity(a engine.DailyActivity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, a)
}

// CancelActivity marks matching rows cancelled. This is the only
// mutation the log permits.
func (m *Memory) CancelActivity(id engine.InstructorID, date engine.Date, institution engine.InstitutionID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.activities {
		a := &m.activities[i]
		if a.InstructorID == id && a.Date.Equal(date) && a.InstitutionID == institution && !a.Cancelled {
			a.Cancelled = true
			n++
		}
	}
	return n
}

func (m *Memory) AppendApplication(a engine.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications = append(m.applications, a)
}

func (m *Memory) PutAssignment(instructorName string, a engine.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[instructorName] = append(m.assignments[instructorName], a)
}

func (m *Memory) PutProgram(p engine.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[p.ID] = p
}

func (m *Memory) Program(_ context.Context, id engine.ProgramID) (engine.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.programs[id]
	if !ok {
		return engine.Program{}, fmt.Errorf("program not found: %s", id)
	}
	return p, nil
}

// =============================================================================
// ACTIVITY STORE
// =============================================================================

func (m *Memory) ActivitiesOn(_ context.Context, id engine.InstructorID, date engine.Date) ([]engine.DailyActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.DailyActivity
	for _, a := range m.activities {
		if a.InstructorID == id && a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) ActivitiesInMonth(_ context.Context, id engine.InstructorID, month engine.Month) ([]engine.DailyActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.DailyActivity
	for _, a := range m.activities {
		if a.InstructorID == id && month.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// APPLICATION STORE
// =============================================================================

func (m *Memory) ApplicationsFor(_ context.Context, programID engine.ProgramID, role engine.Role) ([]engine.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Application
	for _, a := range m.applications {
		if a.ProgramID == programID && a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) AssignmentsFor(_ context.Context, instructorName string) ([]engine.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Assignment, len(m.assignments[instructorName]))
	copy(out, m.assignments[instructorName])
	return out, nil
}

// =============================================================================
// REFERENCE STORE
// =============================================================================

func (m *Memory) Instructor(_ context.Context, id engine.InstructorID) (engine.Instructor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.instructors[id]
	if !ok {
		return engine.Instructor{}, fmt.Errorf("%w: %s", engine.ErrUnknownInstructor, id)
	}
	return i, nil
}

func (m *Memory) Instructors(_ context.Context) ([]engine.Instructor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Instructor, 0, len(m.instructors))
	for _, i := range m.instructors {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Institutions(_ context.Context) (engine.InstitutionIndex, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := make(engine.InstitutionIndex, len(m.institutions))
	for id, inst := range m.institutions {
		idx[id] = inst
	}
	return idx, nil
}

func (m *Memory) Distances(_ context.Context) (*engine.DistanceMatrix, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matrix, nil
}
