package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedu/settlement-engine/api"
	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/store"
)

// =============================================================================
// TEST SERVER
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()

	mem.PutInstructor(engine.Instructor{
		ID: "lee-01", Name: "Lee Seo-yeon", HomeCity: "Jeonju",
		MaxMonthlyLead: 20, MaxMonthlyAssistant: 20,
	})
	mem.PutInstitution(engine.Institution{
		ID: "inst-gunsan", Name: "Gunsan Middle", City: "Gunsan", Level: engine.LevelMiddle,
	})
	mem.PutInstitution(engine.Institution{
		ID: "inst-home", Name: "Jeonju High", City: "Jeonju", Level: engine.LevelHigh,
	})
	mem.SetDistance("Jeonju", "Gunsan", 52)

	rates := engine.DefaultRateConfig()
	rates.ZoneByCity = map[string]string{"Jeonju": "north"}

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(mem, rates)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// =============================================================================
// SETTLEMENT ENDPOINTS
// =============================================================================

func TestComputeDailySettlement_HTTP(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.AppendActivity(engine.DailyActivity{
		InstructorID:  "lee-01",
		Date:          engine.MustDate("2025-03-10"),
		InstitutionID: "inst-gunsan",
		Role:          engine.RoleLead,
		StartTime:     engine.MustTimeOfDay("10:00"),
		Sessions:      4,
	})

	resp := postJSON(t, srv.URL+"/api/settlements/daily", map[string]string{
		"instructor_id": "lee-01",
		"date":          "2025.03.10", // dot form must normalize
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.DailySettlementDTO
	decodeBody(t, resp, &dto)
	assert.Equal(t, "2025-03-10", dto.Date)
	assert.Equal(t, "160000", dto.BaseTotal)
	assert.Equal(t, "20000", dto.TravelAllowance)
	assert.Equal(t, "180000", dto.GrossTotal)
	require.Len(t, dto.Classes, 1)
	assert.Equal(t, "Gunsan Middle", dto.Classes[0].InstitutionName)
}

func TestComputeDailySettlement_UnknownInstructorIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/settlements/daily", map[string]string{
		"instructor_id": "nobody",
		"date":          "2025-03-10",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComputeDailySettlement_MalformedDateIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/settlements/daily", map[string]string{
		"instructor_id": "lee-01",
		"date":          "March 10th",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeDailySettlement_MissingFieldIs400(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/settlements/daily", map[string]string{
		"instructor_id": "lee-01",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeMonthlySettlement_HTTP(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.AppendActivity(engine.DailyActivity{
		InstructorID:  "lee-01",
		Date:          engine.MustDate("2025-03-10"),
		InstitutionID: "inst-home",
		Role:          engine.RoleLead,
		StartTime:     engine.MustTimeOfDay("10:00"),
		Sessions:      2,
	})

	resp := postJSON(t, srv.URL+"/api/settlements/monthly", map[string]any{
		"instructor_id": "lee-01",
		"year":          2025,
		"month":         3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.MonthlySettlementDTO
	decodeBody(t, resp, &dto)
	assert.Equal(t, "2025-03", dto.Month)
	assert.Equal(t, 1, dto.Days)
	assert.Equal(t, "80000", dto.GrossTotal)
	assert.Equal(t, "2640", dto.Tax)
	assert.Equal(t, "77360", dto.NetTotal)
}

func TestRunMonthlySettlements_HTTP(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.PutInstructor(engine.Instructor{
		ID: "park-02", Name: "Park Ji-ho", HomeCity: "Jeonju",
		MaxMonthlyLead: 20, MaxMonthlyAssistant: 20,
	})
	mem.AppendActivity(engine.DailyActivity{
		InstructorID:  "park-02",
		Date:          engine.MustDate("2025-03-12"),
		InstitutionID: "inst-ghost", // unknown: this instructor must fail in isolation
		Role:          engine.RoleLead,
		StartTime:     engine.MustTimeOfDay("10:00"),
		Sessions:      1,
	})

	resp := postJSON(t, srv.URL+"/api/settlements/run", map[string]int{
		"year": 2025, "month": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.RunReportDTO
	decodeBody(t, resp, &dto)
	assert.NotEmpty(t, dto.RunID)
	assert.Equal(t, "2025-03", dto.Month)
	require.Len(t, dto.Settlements, 1, "healthy instructor settles")
	assert.Equal(t, "lee-01", dto.Settlements[0].InstructorID)
	require.Len(t, dto.Failures, 1)
	assert.Equal(t, "park-02", dto.Failures[0].InstructorID)
}

// =============================================================================
// ELIGIBILITY ENDPOINT
// =============================================================================

func seedProgram(mem *store.Memory) {
	mem.PutProgram(engine.Program{
		ID:       "prog-1",
		Name:     "Spring Coding Camp",
		Region:   "north",
		Mode:     engine.ModeFull,
		Deadline: engine.MustDate("2025-03-31"),
		Status:   engine.ProgramOpen,
		Lessons: []engine.Lesson{{
			Date: engine.MustDate("2025-03-10"),
			Time: engine.NewTimeRange(engine.MustTimeOfDay("10:00"), engine.MustTimeOfDay("12:00")),
		}},
	})
}

func TestValidateAssignment_Accepts(t *testing.T) {
	srv, mem := newTestServer(t)
	seedProgram(mem)

	resp := postJSON(t, srv.URL+"/api/validate", map[string]string{
		"instructor_id": "lee-01",
		"program_id":    "prog-1",
		"role":          "lead",
		"today":         "2025-03-01",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.ValidationResultDTO
	decodeBody(t, resp, &dto)
	assert.True(t, dto.Valid)
}

func TestValidateAssignment_RejectionIsA200Value(t *testing.T) {
	// A taken seat is a business outcome for the UI, not an HTTP error.
	srv, mem := newTestServer(t)
	seedProgram(mem)
	mem.AppendApplication(engine.Application{
		ProgramID:      "prog-1",
		Role:           engine.RoleLead,
		InstructorName: "Park Ji-ho",
		AppliedOn:      engine.MustDate("2025-02-20"),
		Status:         engine.ApplicationAccepted,
	})

	resp := postJSON(t, srv.URL+"/api/validate", map[string]string{
		"instructor_id": "lee-01",
		"program_id":    "prog-1",
		"role":          "lead",
		"today":         "2025-03-01",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.ValidationResultDTO
	decodeBody(t, resp, &dto)
	assert.False(t, dto.Valid)
	assert.Equal(t, "role_exclusivity", dto.Rule)
	assert.Contains(t, dto.Reason, "Park Ji-ho")
}

func TestValidateAssignment_BadRoleIs400(t *testing.T) {
	srv, mem := newTestServer(t)
	seedProgram(mem)

	resp := postJSON(t, srv.URL+"/api/validate", map[string]string{
		"instructor_id": "lee-01",
		"program_id":    "prog-1",
		"role":          "principal",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// REFERENCE ENDPOINTS
// =============================================================================

func TestListInstructors_HTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/instructors")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []api.InstructorDTO
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "lee-01", out[0].ID)
	assert.Equal(t, "Jeonju", out[0].HomeCity)
}

func TestListInstitutions_HTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/institutions")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []api.InstitutionDTO
	decodeBody(t, resp, &out)
	assert.Len(t, out, 2)
}
