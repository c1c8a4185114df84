package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/config"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/scoring"
	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
)

// Store is the subset of the storage layer seeding writes through.
type Store interface {
	CreateUser(ctx context.Context, u *db.User) (*db.User, error)
	CreateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error)
	CreateCandidate(ctx context.Context, c *types.CandidateProfile) (*types.CandidateProfile, error)
	CreateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error)
}

var _ Store = (*db.DB)(nil)

// Summary counts the records a seed run created
type Summary struct {
	Users      int `json:"users"`
	Jobs       int `json:"jobs"`
	Candidates int `json:"candidates"`
	Onboarding int `json:"onboarding"`
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d users, %d jobs, %d candidates, %d onboarding records",
		s.Users, s.Jobs, s.Candidates, s.Onboarding)
}

// seeder carries the IDs assigned to earlier records so later ones can reference them.
type seeder struct {
	store      Store
	passwords  *config.PasswordConfig
	template   onboarding.Template
	log        *zap.Logger
	now        time.Time
	users      map[string]uuid.UUID
	jobs       map[string]*types.JobRequisition
	candidates map[string]*types.CandidateProfile
}

// Seed writes f in dependency order: users, jobs, candidates (scored against their job) and
// onboarding records. It does not clear existing data.
func Seed(ctx context.Context, store Store, f *File, passwords *config.PasswordConfig, log *zap.Logger) (*Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &seeder{
		store:      store,
		passwords:  passwords,
		template:   onboarding.DefaultTemplate(),
		log:        log,
		now:        time.Now().UTC(),
		users:      make(map[string]uuid.UUID, len(f.Users)),
		jobs:       make(map[string]*types.JobRequisition, len(f.Jobs)),
		candidates: make(map[string]*types.CandidateProfile, len(f.Candidates)),
	}

	sum := &Summary{}
	for i := range f.Users {
		if err := s.user(ctx, &f.Users[i]); err != nil {
			return sum, err
		}
		sum.Users++
	}
	for i := range f.Jobs {
		if err := s.job(ctx, &f.Jobs[i]); err != nil {
			return sum, err
		}
		sum.Jobs++
	}
	for i := range f.Candidates {
		if err := s.candidate(ctx, &f.Candidates[i]); err != nil {
			return sum, err
		}
		sum.Candidates++
	}
	for i := range f.Onboarding {
		if err := s.onboarding(ctx, &f.Onboarding[i]); err != nil {
			return sum, err
		}
		sum.Onboarding++
	}

	log.Info("seed complete",
		zap.Int("users", sum.Users),
		zap.Int("jobs", sum.Jobs),
		zap.Int("candidates", sum.Candidates),
		zap.Int("onboarding", sum.Onboarding),
	)
	return sum, nil
}

// userID resolves an optional email reference.
func (s *seeder) userID(email string) *uuid.UUID {
	if email == "" {
		return nil
	}
	id, ok := s.users[normalizeEmail(email)]
	if !ok {
		return nil
	}
	return &id
}

func (s *seeder) user(ctx context.Context, u *User) error {
	hash, err := s.passwords.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
	}
	created, err := s.store.CreateUser(ctx, &db.User{
		Name:         u.Name,
		Email:        normalizeEmail(u.Email),
		PasswordHash: hash,
		Role:         u.Role,
		Department:   u.Department,
	})
	if err != nil {
		return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
	}
	s.users[normalizeEmail(u.Email)] = created.ID
	return nil
}

func (s *seeder) job(ctx context.Context, j *Job) error {
	req := j.CreateJobRequest
	req.ApplyDefaults()
	req.HiringManager = s.userID(j.HiringManager)

	created, err := s.store.CreateJob(ctx, req.ToJob(s.userID(j.PostedBy)))
	if err != nil {
		return fmt.Errorf("failed to seed job %s: %w", j.Key, err)
	}
	s.jobs[j.Key] = created
	s.log.Debug("seeded job", zap.String("key", j.Key), zap.String("job_id", created.ID.String()))
	return nil
}

func (s *seeder) candidate(ctx context.Context, c *Candidate) error {
	job, ok := s.jobs[c.Job]
	if !ok {
		return fmt.Errorf("failed to seed candidate %s: unknown job %s", c.Email, c.Job)
	}

	req := c.CreateCandidateRequest
	req.Email = normalizeEmail(req.Email)
	req.JobID = job.ID
	profile := req.ToCandidate()
	if c.Status != "" {
		profile.Status = c.Status
	}
	profile.FitScore = scoring.Score(profile, job)
	scoredAt := s.now
	profile.ScoredAt = &scoredAt

	created, err := s.store.CreateCandidate(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to seed candidate %s: %w", c.Email, err)
	}
	s.candidates[req.Email] = created
	s.log.Debug("seeded candidate",
		zap.String("candidate_id", created.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Int("fit_score", created.FitScore),
	)
	return nil
}

func (s *seeder) onboarding(ctx context.Context, o *Onboarding) error {
	candidate, ok := s.candidates[normalizeEmail(o.Candidate)]
	if !ok {
		return fmt.Errorf("failed to seed onboarding: unknown candidate %s", o.Candidate)
	}

	checklist, err := onboarding.BuildChecklist(o.Checklist, s.template, s.userID(o.Manager), s.now)
	if err != nil {
		return fmt.Errorf("failed to seed onboarding for %s: %w", o.Candidate, err)
	}

	rec := &types.OnboardingRecord{
		CandidateID: candidate.ID,
		Position:    o.Position,
		Department:  o.Department,
		StartDate:   o.StartDate,
		Manager:     s.userID(o.Manager),
		Buddy:       s.userID(o.Buddy),
		Checklist:   checklist,
		Orientation: o.Orientation,
		Documents:   []types.Document{},
	}
	if job, ok := s.jobByID(candidate.JobID); ok {
		if rec.Position == "" {
			rec.Position = job.Title
		}
		if rec.Department == "" {
			rec.Department = job.Department
		}
	}

	created, err := s.store.CreateOnboarding(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to seed onboarding for %s: %w", o.Candidate, err)
	}
	s.log.Debug("seeded onboarding",
		zap.String("onboarding_id", created.ID.String()),
		zap.String("employee_id", created.EmployeeID),
		zap.Int("completion_percentage", created.CompletionPercentage),
	)
	return nil
}

func (s *seeder) jobByID(id uuid.UUID) (*types.JobRequisition, bool) {
	for _, j := range s.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return nil, false
}
