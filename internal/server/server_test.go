package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/config"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/server/ratelimit"
	"github.com/jonathan/talent-manager/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	*Server
	store   *fakeStore
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		Auth: config.AuthConfig{
			JWTSecret:          testJWTSecret,
			JWTExpirationHours: 24,
			BcryptCost:         10,
		},
		RateLimit: ratelimit.Config{Enabled: false},
	}
}

func newTestServerWith(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	store := newFakeStore()
	s, err := New(cfg, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, store: store, handler: s.Handler()}
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, testConfig())
}

// do sends a request through the full middleware chain. body may be nil, a string or any value
// that is marshalled to JSON.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// login creates a user with role directly in the store and returns its ID and a token.
func (ts *testServer) login(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	u, err := ts.store.CreateUser(t.Context(), &db.User{
		Name:  "Test " + role,
		Email: role + "-" + uuid.NewString()[:8] + "@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	token, err := ts.jwtService.GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return u.ID, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func seniorPythonJob() map[string]any {
	return map[string]any{
		"title":            "Senior Backend Engineer",
		"department":       "Engineering",
		"location":         "Remote",
		"experience_level": "Senior",
		"description":      "Build the hiring platform",
		"skills":           []string{"Python", "Django", "PostgreSQL", "AWS"},
		"status":           "active",
		"openings":         2,
	}
}

func (ts *testServer) createJob(t *testing.T, token string, body map[string]any) types.JobRequisition {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/jobs", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.JobRequisition](t, w)
}

func (ts *testServer) createCandidate(t *testing.T, token string, jobID uuid.UUID) types.CandidateProfile {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/candidates", map[string]any{
		"first_name":   "Ada",
		"last_name":    "Lovelace",
		"email":        "Ada@Example.com",
		"source":       "referral",
		"experience":   6,
		"skills":       []string{"python", "django"},
		"education":    []map[string]any{{"degree": "BSc", "institution": "London", "year": 2015}},
		"resume":       map[string]any{"url": "https://files.example.com/ada.pdf", "filename": "ada.pdf"},
		"cover_letter": "I would love to join.",
		"job_id":       jobID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.CandidateProfile](t, w)
}

// hire walks a candidate through the pipeline to hired.
func (ts *testServer) hire(t *testing.T, token string, id uuid.UUID) {
	t.Helper()
	for _, status := range []types.CandidateStatus{
		types.CandidateScreening, types.CandidateInterviewScheduled, types.CandidateInterviewed,
		types.CandidateOfferExtended, types.CandidateHired,
	} {
		w := ts.do(t, http.MethodPatch, "/api/candidates/"+id.String()+"/status", map[string]any{"status": status}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	ts.store.pingErr = errors.New("connection refused")
	w = ts.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	_, err := New(cfg, newFakeStore(), nil)
	assert.ErrorContains(t, err, "JWT_SECRET")

	cfg = testConfig()
	cfg.Auth.BcryptCost = 4
	_, err = New(cfg, newFakeStore(), nil)
	assert.ErrorContains(t, err, "bcrypt cost")

	cfg = testConfig()
	cfg.Onboarding.ChecklistTemplate = "/does/not/exist.json"
	_, err = New(cfg, newFakeStore(), nil)
	assert.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodOptions, "/api/jobs", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Grace Hopper", "email": "Grace@Example.com", "password": "s3cure-pass", "role": "hr_manager",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[types.LoginResponse](t, w)
	assert.Equal(t, "grace@example.com", registered.User.Email)
	assert.Equal(t, types.RoleHRManager, registered.User.Role)
	assert.NotEmpty(t, registered.Token)
	assert.NotContains(t, w.Body.String(), "password")

	t.Run("duplicate email", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"name": "Other", "email": "grace@example.com", "password": "another-pass",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"name": "Short", "email": "short@example.com", "password": "123",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation error: Password - min", errorBody(t, w))
	})

	t.Run("default role", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
			"name": "New Hire", "email": "hire@example.com", "password": "password1",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, types.RoleEmployee, decode[types.LoginResponse](t, w).User.Role)
	})

	t.Run("login", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email": "GRACE@example.com", "password": "s3cure-pass",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[types.LoginResponse](t, w)
		assert.Equal(t, registered.User.ID, resp.User.ID)

		w = ts.do(t, http.MethodGet, "/api/auth/me", nil, resp.Token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Grace Hopper", decode[types.User](t, w).Name)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		w1 := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "grace@example.com", "password": "nope"}, "")
		w2 := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "nobody@example.com", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w1.Code)
		assert.Equal(t, http.StatusUnauthorized, w2.Code)
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})
}

func TestRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/jobs"},
		{http.MethodPost, "/api/jobs"},
		{http.MethodGet, "/api/candidates"},
		{http.MethodGet, "/api/onboarding"},
		{http.MethodGet, "/api/dashboard/stats"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := ts.do(t, p.method, p.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := ts.do(t, http.MethodGet, "/api/jobs", nil, "forged-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEmployeeCannotManageJobs(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleEmployee)

	w := ts.do(t, http.MethodPost, "/api/jobs", seniorPythonJob(), token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/jobs", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJobLifecycle(t *testing.T) {
	ts := newTestServer(t)
	actor, token := ts.login(t, types.RoleHRManager)

	job := ts.createJob(t, token, seniorPythonJob())
	assert.Equal(t, types.ExperienceSenior, job.ExperienceLevel)
	assert.Equal(t, types.EmploymentFullTime, job.EmploymentType)
	assert.Equal(t, types.PostingBoth, job.PostingType)
	assert.Equal(t, "USD", job.SalaryRange.Currency)
	require.NotNil(t, job.PostedBy)
	assert.Equal(t, actor, *job.PostedBy)

	t.Run("get", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, job.Title, decode[types.JobRequisition](t, w).Title)
	})

	t.Run("invalid and unknown IDs", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/jobs/not-a-uuid", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodGet, "/api/jobs/"+uuid.NewString(), nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list with filters", func(t *testing.T) {
		draft := seniorPythonJob()
		draft["title"] = "Recruiter"
		draft["status"] = "draft"
		ts.createJob(t, token, draft)

		w := ts.do(t, http.MethodGet, "/api/jobs?status=active&limit=10", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[types.ListResponse[types.JobRequisition]](t, w)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 10, resp.Limit)

		w = ts.do(t, http.MethodGet, "/api/jobs?status=archived", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("experience level is fixed", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{"experience_level": "Lead"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "experience_level")

		w = ts.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{
			"experience_level": "Senior", "title": "Staff Backend Engineer",
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Staff Backend Engineer", decode[types.JobRequisition](t, w).Title)
	})

	t.Run("salary range", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{
			"salary_range": map[string]any{"min": 200000, "max": 100000},
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("applications count is derived", func(t *testing.T) {
		ts.createCandidate(t, token, job.ID)
		w := ts.do(t, http.MethodGet, "/api/jobs/"+job.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[types.JobRequisition](t, w).ApplicationsCount)

		w = ts.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{"applications_count": 99}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete with candidates conflicts", func(t *testing.T) {
		w := ts.do(t, http.MethodDelete, "/api/jobs/"+job.ID.String(), nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		empty := ts.createJob(t, token, seniorPythonJob())
		w := ts.do(t, http.MethodDelete, "/api/jobs/"+empty.ID.String(), nil, token)
		assert.Equal(t, http.StatusOK, w.Code)

		w = ts.do(t, http.MethodDelete, "/api/jobs/"+empty.ID.String(), nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateCandidate_ScoresAgainstJob(t *testing.T) {
	ts := newTestServer(t)
	recruiter, token := ts.login(t, types.RoleRecruitmentSpecialist)
	job := ts.createJob(t, token, seniorPythonJob())

	c := ts.createCandidate(t, token, job.ID)

	// experience 30 + skills 40*2/4 + education 15 + resume 10 + cover letter 5
	assert.Equal(t, 80, c.FitScore)
	assert.NotNil(t, c.ScoredAt)
	assert.Equal(t, types.CandidateNew, c.Status)
	assert.Equal(t, "ada@example.com", c.Email)
	require.NotNil(t, c.AssignedTo)
	assert.Equal(t, recruiter, *c.AssignedTo)

	t.Run("unknown job", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/candidates", map[string]any{
			"first_name": "No", "last_name": "Job", "email": "nojob@example.com", "job_id": uuid.New(),
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "job_id")
	})

	t.Run("fit score cannot be supplied", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/candidates", map[string]any{
			"first_name": "Eve", "last_name": "X", "email": "eve@example.com", "job_id": job.ID, "fit_score": 100,
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("job lookup failure degrades to zero", func(t *testing.T) {
		ts.store.jobErr = errors.New("timeout")
		defer func() { ts.store.jobErr = nil }()

		w := ts.do(t, http.MethodPost, "/api/candidates", map[string]any{
			"first_name": "Zed", "last_name": "Zero", "email": "zed@example.com", "job_id": job.ID,
			"experience": 6, "skills": []string{"python"},
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, 0, decode[types.CandidateProfile](t, w).FitScore)
	})
}

func TestCandidateScoreSnapshotAndRescore(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)
	require.Equal(t, 80, c.FitScore)

	w := ts.do(t, http.MethodPut, "/api/jobs/"+job.ID.String(), map[string]any{"skills": []string{"Python", "Django"}}, token)
	require.Equal(t, http.StatusOK, w.Code)

	// snapshot mode: a profile edit keeps the stored score
	w = ts.do(t, http.MethodPut, "/api/candidates/"+c.ID.String(), map[string]any{"phone": "555-0100"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 80, decode[types.CandidateProfile](t, w).FitScore)

	w = ts.do(t, http.MethodGet, "/api/candidates/"+c.ID.String()+"/score", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	breakdown := decode[map[string]any](t, w)
	assert.EqualValues(t, 100, breakdown["total"])
	assert.EqualValues(t, 40, breakdown["skills"])

	w = ts.do(t, http.MethodPost, "/api/candidates/"+c.ID.String()+"/rescore", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, decode[types.CandidateProfile](t, w).FitScore)
}

func TestCandidateUpdate_RecomputeMode(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.Mode = "recompute"
	ts := newTestServerWith(t, cfg)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)

	w := ts.do(t, http.MethodPut, "/api/candidates/"+c.ID.String(), map[string]any{
		"skills": []string{"python", "django", "postgresql", "aws"},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 100, decode[types.CandidateProfile](t, w).FitScore)

	w = ts.do(t, http.MethodPut, "/api/candidates/"+c.ID.String(), map[string]any{"status": "hired"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCandidateStatusTransitions(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)
	path := "/api/candidates/" + c.ID.String() + "/status"

	w := ts.do(t, http.MethodPatch, path, map[string]any{"status": "hired"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid status transition: new -> hired", errorBody(t, w))

	w = ts.do(t, http.MethodPatch, path, map[string]any{"status": "promoted"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, path, map[string]any{"status": "screening"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.CandidateScreening, decode[types.CandidateProfile](t, w).Status)

	w = ts.do(t, http.MethodPatch, path, map[string]any{"status": "withdrawn"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPatch, path, map[string]any{"status": "screening"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPatch, "/api/candidates/"+uuid.NewString()+"/status", map[string]any{"status": "screening"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCandidateNotesAndInterviews(t *testing.T) {
	ts := newTestServer(t)
	actor, token := ts.login(t, types.RoleRecruitmentSpecialist)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)

	w := ts.do(t, http.MethodPost, "/api/candidates/"+c.ID.String()+"/notes", map[string]any{"text": "Strong Python background"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	withNote := decode[types.CandidateProfile](t, w)
	require.Len(t, withNote.Notes, 1)
	assert.Equal(t, "Strong Python background", withNote.Notes[0].Text)
	require.NotNil(t, withNote.Notes[0].AddedBy)
	assert.Equal(t, actor, *withNote.Notes[0].AddedBy)

	w = ts.do(t, http.MethodPost, "/api/candidates/"+c.ID.String()+"/notes", map[string]any{"text": "   "}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	at := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	w = ts.do(t, http.MethodPost, "/api/candidates/"+c.ID.String()+"/interviews", map[string]any{
		"scheduled_at": at, "type": "video", "interviewer": actor,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	scheduled := decode[types.CandidateProfile](t, w)
	assert.Equal(t, types.CandidateInterviewScheduled, scheduled.Status)
	require.Len(t, scheduled.Interviews, 1)
	assert.Equal(t, types.InterviewScheduled, scheduled.Interviews[0].Status)
	assert.True(t, at.Equal(scheduled.Interviews[0].ScheduledAt))

	w = ts.do(t, http.MethodPost, "/api/candidates/"+c.ID.String()+"/interviews", map[string]any{
		"scheduled_at": at, "type": "carrier-pigeon",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShortlist(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	first := ts.createCandidate(t, token, job.ID)
	second := ts.createCandidate(t, token, job.ID)
	ts.hire(t, token, second.ID)
	missing := uuid.New()

	w := ts.do(t, http.MethodPost, "/api/candidates/shortlist", map[string]any{
		"candidate_ids": []uuid.UUID{first.ID, second.ID, missing},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Shortlisted int               `json:"shortlisted"`
		Failed      int               `json:"failed"`
		Results     []ShortlistResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Shortlisted)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, types.CandidateShortlisted, resp.Results[0].Status)
	require.NotNil(t, resp.Results[0].PreviousStatus)
	assert.Equal(t, types.CandidateNew, *resp.Results[0].PreviousStatus)
	assert.Contains(t, resp.Results[1].Error, "invalid status transition")
	assert.Contains(t, resp.Results[2].Error, "not found")

	w = ts.do(t, http.MethodPost, "/api/candidates/shortlist", map[string]any{"candidate_ids": []uuid.UUID{}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCandidateListAndDelete(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)

	w := ts.do(t, http.MethodGet, "/api/candidates?job_id="+job.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[types.ListResponse[types.CandidateProfile]](t, w).Total)

	w = ts.do(t, http.MethodGet, "/api/candidates?job_id=nope", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/candidates/"+c.ID.String(), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/candidates/"+c.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOnboardingLifecycle(t *testing.T) {
	ts := newTestServer(t)
	actor, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)
	start := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)
	createBody := map[string]any{"candidate_id": c.ID, "start_date": start}

	w := ts.do(t, http.MethodPost, "/api/onboarding", createBody, token)
	assert.Equal(t, http.StatusConflict, w.Code, "candidate not hired yet")

	ts.hire(t, token, c.ID)

	w = ts.do(t, http.MethodPost, "/api/onboarding", createBody, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[types.OnboardingRecord](t, w)
	assert.Equal(t, "EMP00001", rec.EmployeeID)
	assert.Equal(t, job.Title, rec.Position)
	assert.Equal(t, "Engineering", rec.Department)
	require.Len(t, rec.Checklist, 8)
	assert.Equal(t, 0, rec.CompletionPercentage)
	assert.Equal(t, types.OnboardingNotStarted, rec.OverallStatus)

	t.Run("duplicate", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/onboarding", createBody, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("candidate with onboarding cannot be deleted", func(t *testing.T) {
		w := ts.do(t, http.MethodDelete, "/api/candidates/"+c.ID.String(), nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	itemPath := func(itemID uuid.UUID) string {
		return fmt.Sprintf("/api/onboarding/%s/checklist/%s", rec.ID, itemID)
	}

	t.Run("complete an item", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, itemPath(rec.Checklist[0].ID), map[string]any{"status": "completed"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[types.OnboardingRecord](t, w)
		assert.Equal(t, 13, updated.CompletionPercentage)
		assert.Equal(t, types.OnboardingInProgress, updated.OverallStatus)
		item := updated.Checklist[0]
		require.NotNil(t, item.CompletedBy)
		assert.Equal(t, actor, *item.CompletedBy)
		assert.NotNil(t, item.CompletedDate)
	})

	t.Run("reopen clears the stamp", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, itemPath(rec.Checklist[0].ID), map[string]any{"status": "pending"}, token)
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[types.OnboardingRecord](t, w)
		assert.Nil(t, updated.Checklist[0].CompletedBy)
		assert.Equal(t, types.OnboardingNotStarted, updated.OverallStatus)
	})

	t.Run("complete everything", func(t *testing.T) {
		var last types.OnboardingRecord
		for _, item := range rec.Checklist {
			w := ts.do(t, http.MethodPut, itemPath(item.ID), map[string]any{"status": "completed"}, token)
			require.Equal(t, http.StatusOK, w.Code)
			last = decode[types.OnboardingRecord](t, w)
		}
		assert.Equal(t, 100, last.CompletionPercentage)
		assert.Equal(t, types.OnboardingCompleted, last.OverallStatus)
	})

	t.Run("bad item requests", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, itemPath(uuid.New()), map[string]any{"status": "completed"}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = ts.do(t, http.MethodPut, itemPath(rec.Checklist[0].ID), map[string]any{"status": "done"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/onboarding/%s/checklist/%s", uuid.New(), rec.Checklist[0].ID),
			map[string]any{"status": "completed"}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("derived fields are not writable", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/onboarding/"+rec.ID.String(), map[string]any{"completion_percentage": 0}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodPut, "/api/onboarding/"+rec.ID.String(), map[string]any{"position": "Staff Engineer"}, token)
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[types.OnboardingRecord](t, w)
		assert.Equal(t, "Staff Engineer", updated.Position)
		assert.Equal(t, 100, updated.CompletionPercentage)
	})

	t.Run("documents", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/onboarding/"+rec.ID.String()+"/documents", map[string]any{
			"name": "I-9", "type": "tax", "url": "https://files.example.com/i9.pdf",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		docs := decode[types.OnboardingRecord](t, w).Documents
		require.Len(t, docs, 1)
		assert.Equal(t, types.DocumentSubmitted, docs[0].Status)

		w = ts.do(t, http.MethodPost, "/api/onboarding/"+rec.ID.String()+"/documents", map[string]any{
			"name": "I-9", "type": "tax", "url": "not a url",
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list by status", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/onboarding?status=completed", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[types.ListResponse[types.OnboardingRecord]](t, w).Total)

		w = ts.do(t, http.MethodGet, "/api/onboarding?status=paused", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateOnboarding_CustomChecklist(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleAdmin)
	job := ts.createJob(t, token, seniorPythonJob())
	c := ts.createCandidate(t, token, job.ID)
	ts.hire(t, token, c.ID)

	w := ts.do(t, http.MethodPost, "/api/onboarding", map[string]any{
		"candidate_id": c.ID,
		"start_date":   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		"position":     "Platform Engineer",
		"checklist": []map[string]any{
			{"task": "Laptop", "assigned_to": "IT", "status": "completed"},
			{"task": "Contract", "assigned_to": "HR"},
			{"task": "Team lunch", "assigned_to": "Manager"},
		},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[types.OnboardingRecord](t, w)
	assert.Equal(t, "Platform Engineer", rec.Position)
	require.Len(t, rec.Checklist, 3)
	assert.Equal(t, 33, rec.CompletionPercentage)
	assert.Equal(t, types.OnboardingInProgress, rec.OverallStatus)

	w = ts.do(t, http.MethodPost, "/api/onboarding", map[string]any{
		"candidate_id": uuid.New(),
		"start_date":   time.Now(),
		"checklist":    []map[string]any{{"task": "x", "assigned_to": "Finance"}},
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmployeeChecklistAccess(t *testing.T) {
	ts := newTestServer(t)
	_, staffToken := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, staffToken, seniorPythonJob())
	c := ts.createCandidate(t, staffToken, job.ID)
	ts.hire(t, staffToken, c.ID)

	w := ts.do(t, http.MethodPost, "/api/onboarding", map[string]any{
		"candidate_id": c.ID, "start_date": time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC),
	}, staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[types.OnboardingRecord](t, w)

	var own, other *types.ChecklistItem
	for i := range rec.Checklist {
		switch item := &rec.Checklist[i]; {
		case item.AssignedTo == types.OwnerEmployee && own == nil:
			own = item
		case item.AssignedTo != types.OwnerEmployee && other == nil:
			other = item
		}
	}
	require.NotNil(t, own)
	require.NotNil(t, other)

	employee, token := ts.login(t, types.RoleEmployee)
	itemPath := func(itemID uuid.UUID) string {
		return fmt.Sprintf("/api/onboarding/%s/checklist/%s", rec.ID, itemID)
	}

	tests := []struct {
		name       string
		itemID     uuid.UUID
		wantStatus int
	}{
		{"item owned by another team", other.ID, http.StatusForbidden},
		{"item owned by the employee", own.ID, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPut, itemPath(tt.itemID), map[string]any{"status": "completed"}, token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	w = ts.do(t, http.MethodGet, "/api/onboarding/"+rec.ID.String(), nil, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.OnboardingRecord](t, w)
	for _, item := range got.Checklist {
		switch item.ID {
		case own.ID:
			assert.Equal(t, types.ItemCompleted, item.Status)
			require.NotNil(t, item.CompletedBy)
			assert.Equal(t, employee, *item.CompletedBy)
		case other.ID:
			assert.Equal(t, types.ItemPending, item.Status)
		}
	}

	t.Run("staff-only onboarding routes", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/onboarding/"+rec.ID.String(), map[string]any{"position": "Lead"}, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)
	job := ts.createJob(t, token, seniorPythonJob())
	ts.createCandidate(t, token, job.ID)

	w := ts.do(t, http.MethodGet, "/api/dashboard/stats", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[types.DashboardStats](t, w)
	require.NotNil(t, stats.Jobs)
	require.NotNil(t, stats.Candidates)
	require.NotNil(t, stats.Onboarding)
	assert.Equal(t, 1, stats.Jobs.Active)
	assert.Equal(t, 2, stats.Jobs.TotalOpenings)
	assert.Equal(t, 1, stats.Candidates.Total)

	for _, path := range []string{"/api/jobs/stats/overview", "/api/candidates/stats/overview", "/api/onboarding/stats/overview"} {
		w := ts.do(t, http.MethodGet, path, nil, token)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	ts.store.statsErr = errStatsUnavailable
	w = ts.do(t, http.MethodGet, "/api/dashboard/stats", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", errorBody(t, w))
}

func TestDecodeJSONErrors(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, types.RoleHRManager)

	w := ts.do(t, http.MethodPost, "/api/jobs", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is empty", errorBody(t, w))

	w = ts.do(t, http.MethodPost, "/api/jobs", "{not json", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/api/auth/login", Method: http.MethodPost, Limit: 2, Window: time.Minute, Burst: 2},
		},
	}
	ts := newTestServerWith(t, cfg)
	body := map[string]any{"email": "nobody@example.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(t, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, w)["error"])

	w = ts.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
