package server

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/types"
)

// fakeStore is an in-memory Store with the same not-found and constraint behavior as *db.DB.
type fakeStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*db.User
	jobs        map[uuid.UUID]*types.JobRequisition
	candidates  map[uuid.UUID]*types.CandidateProfile
	onboardings map[uuid.UUID]*types.OnboardingRecord
	employeeSeq int64

	pingErr  error
	jobErr   error
	statsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*db.User),
		jobs:        make(map[uuid.UUID]*types.JobRequisition),
		candidates:  make(map[uuid.UUID]*types.CandidateProfile),
		onboardings: make(map[uuid.UUID]*types.OnboardingRecord),
	}
}

func copyJob(j *types.JobRequisition) *types.JobRequisition {
	out := *j
	return &out
}

func copyCandidate(c *types.CandidateProfile) *types.CandidateProfile {
	out := *c
	out.Notes = slices.Clone(c.Notes)
	out.Interviews = slices.Clone(c.Interviews)
	return &out
}

func copyOnboarding(r *types.OnboardingRecord) *types.OnboardingRecord {
	out := *r
	out.Checklist = slices.Clone(r.Checklist)
	out.Documents = slices.Clone(r.Documents)
	return &out
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, u *db.User) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == strings.ToLower(u.Email) {
			return nil, db.ErrDuplicate
		}
	}
	created := *u
	created.ID = uuid.New()
	created.Email = strings.ToLower(u.Email)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.users[created.ID] = &created
	out := created
	return &out, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) applicationsCount(jobID uuid.UUID) int {
	n := 0
	for _, c := range f.candidates {
		if c.JobID == jobID {
			n++
		}
	}
	return n
}

func (f *fakeStore) CreateJob(_ context.Context, j *types.JobRequisition) (*types.JobRequisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := copyJob(j)
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.jobs[created.ID] = created
	return copyJob(created), nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.JobRequisition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	out := copyJob(j)
	out.ApplicationsCount = f.applicationsCount(id)
	return out, nil
}

func (f *fakeStore) ListJobs(_ context.Context, filter db.JobFilter) ([]types.JobRequisition, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.JobRequisition
	for _, j := range f.jobs {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.Department != "" && j.Department != filter.Department {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.Search)) {
			continue
		}
		item := *copyJob(j)
		item.ApplicationsCount = f.applicationsCount(j.ID)
		out = append(out, item)
	}
	return window(out, filter.Page), len(out), nil
}

func window[T any](items []T, p db.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(len(items), p.Offset+p.Limit)
	return items[p.Offset:end]
}

func (f *fakeStore) UpdateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error) {
	f.mu.Lock()
	existing, ok := f.jobs[j.ID]
	if !ok {
		f.mu.Unlock()
		return nil, nil
	}
	updated := copyJob(j)
	updated.ExperienceLevel = existing.ExperienceLevel
	updated.UpdatedAt = time.Now()
	f.jobs[j.ID] = updated
	f.mu.Unlock()
	return f.GetJob(ctx, j.ID)
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return false, nil
	}
	if f.applicationsCount(id) > 0 {
		return false, db.ErrInUse
	}
	delete(f.jobs, id)
	return true, nil
}

func (f *fakeStore) CreateCandidate(_ context.Context, c *types.CandidateProfile) (*types.CandidateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[c.JobID]; !ok {
		return nil, db.ErrInUse
	}
	created := copyCandidate(c)
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.candidates[created.ID] = created
	return copyCandidate(created), nil
}

func (f *fakeStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return nil, nil
	}
	return copyCandidate(c), nil
}

func (f *fakeStore) ListCandidates(_ context.Context, filter db.CandidateFilter) ([]types.CandidateProfile, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.CandidateProfile
	for _, c := range f.candidates {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.JobID != nil && c.JobID != *filter.JobID {
			continue
		}
		if filter.Source != "" && c.Source != filter.Source {
			continue
		}
		out = append(out, *copyCandidate(c))
	}
	slices.SortFunc(out, func(a, b types.CandidateProfile) int { return b.FitScore - a.FitScore })
	return window(out, filter.Page), len(out), nil
}

func (f *fakeStore) UpdateCandidate(ctx context.Context, c *types.CandidateProfile, withScore bool) (*types.CandidateProfile, error) {
	f.mu.Lock()
	existing, ok := f.candidates[c.ID]
	if !ok {
		f.mu.Unlock()
		return nil, nil
	}
	updated := copyCandidate(c)
	updated.Status = existing.Status
	updated.Notes = existing.Notes
	updated.Interviews = existing.Interviews
	if !withScore {
		updated.FitScore = existing.FitScore
		updated.ScoredAt = existing.ScoredAt
	}
	updated.UpdatedAt = time.Now()
	f.candidates[c.ID] = updated
	f.mu.Unlock()
	return f.GetCandidate(ctx, c.ID)
}

func (f *fakeStore) UpdateCandidateScore(_ context.Context, id uuid.UUID, score int, scoredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.candidates[id]; ok {
		c.FitScore = score
		c.ScoredAt = &scoredAt
	}
	return nil
}

func (f *fakeStore) UpdateCandidateStatus(_ context.Context, id uuid.UUID, from, to types.CandidateStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (f *fakeStore) AppendCandidateNote(_ context.Context, id uuid.UUID, note types.Note) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return false, nil
	}
	c.Notes = append(c.Notes, note)
	return true, nil
}

func (f *fakeStore) AddCandidateInterview(_ context.Context, id uuid.UUID, interview types.Interview, from, to types.CandidateStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Interviews = append(c.Interviews, interview)
	c.Status = to
	return true, nil
}

func (f *fakeStore) DeleteCandidate(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.candidates[id]; !ok {
		return false, nil
	}
	for _, rec := range f.onboardings {
		if rec.CandidateID == id {
			return false, db.ErrInUse
		}
	}
	delete(f.candidates, id)
	return true, nil
}

func (f *fakeStore) CreateOnboarding(_ context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.onboardings {
		if existing.CandidateID == rec.CandidateID {
			return nil, db.ErrDuplicate
		}
	}
	created := copyOnboarding(rec)
	onboarding.Apply(created)
	f.employeeSeq++
	created.ID = uuid.New()
	created.EmployeeID = db.FormatEmployeeID(f.employeeSeq)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.onboardings[created.ID] = created
	return copyOnboarding(created), nil
}

func (f *fakeStore) GetOnboarding(_ context.Context, id uuid.UUID) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.onboardings[id]
	if !ok {
		return nil, nil
	}
	return copyOnboarding(rec), nil
}

func (f *fakeStore) GetOnboardingByCandidate(_ context.Context, candidateID uuid.UUID) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.onboardings {
		if rec.CandidateID == candidateID {
			return copyOnboarding(rec), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListOnboarding(_ context.Context, filter db.OnboardingFilter) ([]types.OnboardingRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.OnboardingRecord
	for _, rec := range f.onboardings {
		if filter.Status != "" && rec.OverallStatus != filter.Status {
			continue
		}
		out = append(out, *copyOnboarding(rec))
	}
	return window(out, filter.Page), len(out), nil
}

func (f *fakeStore) UpdateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	existing, ok := f.onboardings[rec.ID]
	if !ok {
		f.mu.Unlock()
		return nil, nil
	}
	existing.Position = rec.Position
	existing.Department = rec.Department
	existing.StartDate = rec.StartDate
	existing.Manager = rec.Manager
	existing.Buddy = rec.Buddy
	existing.Orientation = rec.Orientation
	f.mu.Unlock()
	return f.GetOnboarding(ctx, rec.ID)
}

func (f *fakeStore) UpdateChecklistItem(_ context.Context, onboardingID, itemID uuid.UUID, fn func(*types.ChecklistItem) error) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.onboardings[onboardingID]
	if !ok {
		return nil, nil
	}
	item := onboarding.FindItem(rec.Checklist, itemID)
	if item == nil {
		return nil, db.ErrChecklistItemNotFound
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	onboarding.Apply(rec)
	return copyOnboarding(rec), nil
}

func (f *fakeStore) AddOnboardingDocument(_ context.Context, onboardingID uuid.UUID, doc types.Document) (*types.OnboardingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.onboardings[onboardingID]
	if !ok {
		return nil, nil
	}
	rec.Documents = append(rec.Documents, doc)
	return copyOnboarding(rec), nil
}

var errStatsUnavailable = errors.New("stats unavailable")

func (f *fakeStore) JobStats(context.Context) (*types.JobStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	stats := &types.JobStats{Total: len(f.jobs), TotalApplications: len(f.candidates)}
	for _, j := range f.jobs {
		if j.Status == types.JobActive {
			stats.Active++
			stats.TotalOpenings += j.Openings
		}
	}
	return stats, nil
}

func (f *fakeStore) CandidateStats(context.Context) (*types.CandidateStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &types.CandidateStats{Total: len(f.candidates)}
	for _, c := range f.candidates {
		if c.Status == types.CandidateHired {
			stats.Hired++
		}
	}
	return stats, nil
}

func (f *fakeStore) OnboardingStats(context.Context) (*types.OnboardingStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &types.OnboardingStats{Total: len(f.onboardings)}
	for _, rec := range f.onboardings {
		switch rec.OverallStatus {
		case types.OnboardingNotStarted:
			stats.NotStarted++
		case types.OnboardingInProgress:
			stats.InProgress++
		case types.OnboardingCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

var _ Store = (*fakeStore)(nil)
