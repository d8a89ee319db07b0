/*
Package sqlite provides a SQLite-backed implementation of the store
interfaces.

PURPOSE:
  Implements engine.ActivityStore, engine.ApplicationStore and
  engine.ReferenceStore using SQLite. The computation core never sees
  SQL; it reads snapshots through the interfaces and stays pure.

KEY TABLES:
  instructors:   Reference records with monthly caps
  institutions:  Static reference data (city, level, remote flag)
  distances:     Symmetric city-pair kilometre rows
  activities:    Append-only daily activity log
  programs:      Program header rows (region, mode, deadline, status)
  lessons:       Per-program lesson dates and time ranges
  applications:  Instructor applications per (program, role)
  assignments:   Accepted (instructor, program, role) links

APPEND-ONLY LOG:
  The activities table is never deleted from. The single permitted
  UPDATE sets the cancelled flag; every other column is immutable
  after insert.

DATE/TIME STORAGE:
  Dates are TEXT in the canonical dash form ("2025-03-10"); ingestion
  normalizes the dot form before rows reach this store. Lesson times
  are INTEGER minutes since midnight. Won amounts never appear here -
  settlements are derived, not stored.

WAL MODE:
  Opened with _journal_mode=WAL so concurrent settlement reads don't
  block log writes.

USAGE:
  st, err := sqlite.New("./data/settlement.db")
  if err != nil { log.Fatal(err) }
  defer st.Close()

SEE ALSO:
  - engine/store.go: Interface definitions
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/kedu/settlement-engine/engine"
)

// Store implements the engine store interfaces using SQLite.
type Store struct {
	db *sql.DB
}

var _ engine.ActivityStore = (*Store)(nil)
var _ engine.ApplicationStore = (*Store)(nil)
var _ engine.ReferenceStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS instructors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_city TEXT NOT NULL,
		max_monthly_lead INTEGER NOT NULL,
		max_monthly_assistant INTEGER NOT NULL,
		daily_limit_override INTEGER
	);

	CREATE TABLE IF NOT EXISTS institutions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		level TEXT NOT NULL,
		remote_island BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- One row per unordered pair; city_a < city_b canonically.
	CREATE TABLE IF NOT EXISTS distances (
		city_a TEXT NOT NULL,
		city_b TEXT NOT NULL,
		km TEXT NOT NULL,
		PRIMARY KEY (city_a, city_b)
	);

	-- Append-only activity log. cancelled is the only mutable column.
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instructor_id TEXT NOT NULL,
		date TEXT NOT NULL,
		institution_id TEXT NOT NULL,
		role TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		sessions INTEGER NOT NULL,
		students INTEGER NOT NULL,
		assistant_present BOOLEAN NOT NULL DEFAULT FALSE,
		special_class BOOLEAN NOT NULL DEFAULT FALSE,
		event_hours TEXT NOT NULL DEFAULT '0',
		equipment_transport BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_activities_instructor_date
		ON activities(instructor_id, date);

	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT NOT NULL,
		mode TEXT NOT NULL,
		deadline TEXT NOT NULL,
		status TEXT NOT NULL,
		total_sessions INTEGER NOT NULL DEFAULT 0,
		period_start TEXT,
		period_end TEXT
	);

	CREATE TABLE IF NOT EXISTS lessons (
		program_id TEXT NOT NULL REFERENCES programs(id),
		date TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		lead_name TEXT NOT NULL DEFAULT '',
		assistant_name TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_program ON lessons(program_id);

	CREATE TABLE IF NOT EXISTS applications (
		program_id TEXT NOT NULL REFERENCES programs(id),
		role TEXT NOT NULL,
		instructor_name TEXT NOT NULL,
		applied_on TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_applications_seat
		ON applications(program_id, role);

	-- At most one accepted application per (program, role)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_one_accepted
		ON applications(program_id, role)
		WHERE status = 'accepted';

	CREATE TABLE IF NOT EXISTS assignments (
		instructor_name TEXT NOT NULL,
		program_id TEXT NOT NULL REFERENCES programs(id),
		role TEXT NOT NULL,
		PRIMARY KEY (instructor_name, program_id, role)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES - Seeding and the mutations the core delegates to storage
// =============================================================================

func (s *Store) PutInstructor(ctx context.Context, i engine.Instructor) error {
	var override sql.NullInt64
	if i.DailyLimitOverride != nil {
		override = sql.NullInt64{Int64: int64(*i.DailyLimitOverride), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO instructors (id, name, home_city, max_monthly_lead, max_monthly_assistant, daily_limit_override)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			home_city = excluded.home_city,
			max_monthly_lead = excluded.max_monthly_lead,
			max_monthly_assistant = excluded.max_monthly_assistant,
			daily_limit_override = excluded.daily_limit_override`,
		i.ID, i.Name, i.HomeCity, i.MaxMonthlyLead, i.MaxMonthlyAssistant, override)
	return err
}

func (s *Store) PutInstitution(ctx context.Context, inst engine.Institution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institutions (id, name, city, level, remote_island)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			city = excluded.city,
			level = excluded.level,
			remote_island = excluded.remote_island`,
		inst.ID, inst.Name, inst.City, inst.Level, inst.RemoteIsland)
	return err
}

func (s *Store) SetDistance(ctx context.Context, cityA, cityB string, km decimal.Decimal) error {
	if cityB < cityA {
		cityA, cityB = cityB, cityA
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO distances (city_a, city_b, km) VALUES (?, ?, ?)
		ON CONFLICT(city_a, city_b) DO UPDATE SET km = excluded.km`,
		cityA, cityB, km.String())
	return err
}

// AppendActivity inserts one log row. There is no update or delete.
func (s *Store) AppendActivity(ctx context.Context, a engine.DailyActivity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (instructor_id, date, institution_id, role, start_time,
			sessions, students, assistant_present, special_class, event_hours,
			equipment_transport, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.InstructorID, a.Date.String(), a.InstitutionID, a.Role, int(a.StartTime),
		a.Sessions, a.Students, a.AssistantPresent, a.SpecialClass, a.EventHours.String(),
		a.EquipmentTransport, a.Cancelled)
	return err
}

// CancelActivity flips the cancelled flag on matching rows, the single
// mutation the append-only log permits. Returns affected row count.
func (s *Store) CancelActivity(ctx context.Context, id engine.InstructorID, date engine.Date, institution engine.InstitutionID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities SET cancelled = TRUE
		WHERE instructor_id = ? AND date = ? AND institution_id = ? AND cancelled = FALSE`,
		id, date.String(), institution)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) PutProgram(ctx context.Context, p engine.Program) error {
	var start, end sql.NullString
	if p.PeriodStart != nil {
		start = sql.NullString{String: p.PeriodStart.String(), Valid: true}
	}
	if p.PeriodEnd != nil {
		end = sql.NullString{String: p.PeriodEnd.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO programs (id, name, region, mode, deadline, status, total_sessions, period_start, period_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			region = excluded.region,
			mode = excluded.mode,
			deadline = excluded.deadline,
			status = excluded.status,
			total_sessions = excluded.total_sessions,
			period_start = excluded.period_start,
			period_end = excluded.period_end`,
		p.ID, p.Name, p.Region, p.Mode, p.Deadline.String(), p.Status,
		p.TotalSessions, start, end)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE program_id = ?`, p.ID); err != nil {
		return err
	}
	for _, l := range p.Lessons {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO lessons (program_id, date, start_time, end_time, lead_name, assistant_name)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, l.Date.String(), int(l.Time.Start), int(l.Time.End), l.LeadName, l.AssistantName)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AppendApplication(ctx context.Context, a engine.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (program_id, role, instructor_name, applied_on, status)
		VALUES (?, ?, ?, ?, ?)`,
		a.ProgramID, a.Role, a.InstructorName, a.AppliedOn.String(), a.Status)
	return err
}

func (s *Store) PutAssignment(ctx context.Context, instructorName string, programID engine.ProgramID, role engine.Role) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (instructor_name, program_id, role) VALUES (?, ?, ?)
		ON CONFLICT(instructor_name, program_id, role) DO NOTHING`,
		instructorName, programID, role)
	return err
}

// =============================================================================
// ACTIVITY STORE
// =============================================================================

const activityColumns = `instructor_id, date, institution_id, role, start_time,
	sessions, students, assistant_present, special_class, event_hours,
	equipment_transport, cancelled`

func (s *Store) ActivitiesOn(ctx context.Context, id engine.InstructorID, date engine.Date) ([]engine.DailyActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities
		 WHERE instructor_id = ? AND date = ? ORDER BY start_time`,
		id, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (s *Store) ActivitiesInMonth(ctx context.Context, id engine.InstructorID, month engine.Month) ([]engine.DailyActivity, error) {
	prefix := month.String() + "-%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities
		 WHERE instructor_id = ? AND date LIKE ? ORDER BY date, start_time`,
		id, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]engine.DailyActivity, error) {
	var out []engine.DailyActivity
	for rows.Next() {
		var (
			a         engine.DailyActivity
			date      string
			startTime int
			hours     string
		)
		if err := rows.Scan(&a.InstructorID, &date, &a.InstitutionID, &a.Role, &startTime,
			&a.Sessions, &a.Students, &a.AssistantPresent, &a.SpecialClass, &hours,
			&a.EquipmentTransport, &a.Cancelled); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(date)
		if err != nil {
			return nil, err
		}
		a.Date = d
		a.StartTime = engine.TimeOfDay(startTime)
		a.EventHours = engine.MustParseDecimal(hours)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// APPLICATION STORE
// =============================================================================

func (s *Store) ApplicationsFor(ctx context.Context, programID engine.ProgramID, role engine.Role) ([]engine.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT program_id, role, instructor_name, applied_on, status
		 FROM applications WHERE program_id = ? AND role = ? ORDER BY applied_on`,
		programID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Application
	for rows.Next() {
		var (
			a       engine.Application
			applied string
		)
		if err := rows.Scan(&a.ProgramID, &a.Role, &a.InstructorName, &applied, &a.Status); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(applied)
		if err != nil {
			return nil, err
		}
		a.AppliedOn = d
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AssignmentsFor(ctx context.Context, instructorName string) ([]engine.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT program_id, role FROM assignments WHERE instructor_name = ?`,
		instructorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type seat struct {
		program engine.ProgramID
		role    engine.Role
	}
	var seats []seat
	for rows.Next() {
		var st seat
		if err := rows.Scan(&st.program, &st.role); err != nil {
			return nil, err
		}
		seats = append(seats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []engine.Assignment
	for _, st := range seats {
		p, err := s.Program(ctx, st.program)
		if err != nil {
			return nil, err
		}
		out = append(out, engine.Assignment{Program: p, Role: st.role})
	}
	return out, nil
}

// Program loads one program with its lessons.
func (s *Store) Program(ctx context.Context, id engine.ProgramID) (engine.Program, error) {
	var (
		p          engine.Program
		deadline   string
		start, end sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, region, mode, deadline, status, total_sessions, period_start, period_end
		 FROM programs WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Region, &p.Mode, &deadline, &p.Status, &p.TotalSessions, &start, &end)
	if err != nil {
		return engine.Program{}, err
	}
	if p.Deadline, err = engine.ParseDate(deadline); err != nil {
		return engine.Program{}, err
	}
	if start.Valid {
		d, err := engine.ParseDate(start.String)
		if err != nil {
			return engine.Program{}, err
		}
		p.PeriodStart = &d
	}
	if end.Valid {
		d, err := engine.ParseDate(end.String)
		if err != nil {
			return engine.Program{}, err
		}
		p.PeriodEnd = &d
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, start_time, end_time, lead_name, assistant_name
		 FROM lessons WHERE program_id = ? ORDER BY date, start_time`, id)
	if err != nil {
		return engine.Program{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l        engine.Lesson
			date     string
			from, to int
		)
		if err := rows.Scan(&date, &from, &to, &l.LeadName, &l.AssistantName); err != nil {
			return engine.Program{}, err
		}
		if l.Date, err = engine.ParseDate(date); err != nil {
			return engine.Program{}, err
		}
		l.Time = engine.NewTimeRange(engine.TimeOfDay(from), engine.TimeOfDay(to))
		p.Lessons = append(p.Lessons, l)
	}
	return p, rows.Err()
}

// =============================================================================
// REFERENCE STORE
// =============================================================================

func (s *Store) Instructor(ctx context.Context, id engine.InstructorID) (engine.Instructor, error) {
	i, err := scanInstructor(s.db.QueryRowContext(ctx,
		`SELECT id, name, home_city, max_monthly_lead, max_monthly_assistant, daily_limit_override
		 FROM instructors WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return engine.Instructor{}, fmt.Errorf("%w: %s", engine.ErrUnknownInstructor, id)
	}
	return i, err
}

func (s *Store) Instructors(ctx context.Context) ([]engine.Instructor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, home_city, max_monthly_lead, max_monthly_assistant, daily_limit_override
		 FROM instructors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Instructor
	for rows.Next() {
		i, err := scanInstructor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstructor(row rowScanner) (engine.Instructor, error) {
	var (
		i        engine.Instructor
		override sql.NullInt64
	)
	if err := row.Scan(&i.ID, &i.Name, &i.HomeCity, &i.MaxMonthlyLead, &i.MaxMonthlyAssistant, &override); err != nil {
		return engine.Instructor{}, err
	}
	if override.Valid {
		limit := int(override.Int64)
		i.DailyLimitOverride = &limit
	}
	return i, nil
}

func (s *Store) Institutions(ctx context.Context) (engine.InstitutionIndex, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, city, level, remote_island FROM institutions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := make(engine.InstitutionIndex)
	for rows.Next() {
		var inst engine.Institution
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.City, &inst.Level, &inst.RemoteIsland); err != nil {
			return nil, err
		}
		idx[inst.ID] = inst
	}
	return idx, rows.Err()
}

func (s *Store) Distances(ctx context.Context) (*engine.DistanceMatrix, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT city_a, city_b, km FROM distances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matrix := engine.NewDistanceMatrix()
	for rows.Next() {
		var a, b, km string
		if err := rows.Scan(&a, &b, &km); err != nil {
			return nil, err
		}
		matrix.Set(a, b, engine.MustParseDecimal(km))
	}
	return matrix, rows.Err()
}
