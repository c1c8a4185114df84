package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/types"
)

// Store is the persistence the API needs. *db.DB implements it; tests use an in-memory fake.
// Lookups that find nothing return (nil, nil).
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *db.User) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)

	CreateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.JobRequisition, error)
	ListJobs(ctx context.Context, f db.JobFilter) ([]types.JobRequisition, int, error)
	UpdateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error)
	DeleteJob(ctx context.Context, id uuid.UUID) (bool, error)

	CreateCandidate(ctx context.Context, c *types.CandidateProfile) (*types.CandidateProfile, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error)
	ListCandidates(ctx context.Context, f db.CandidateFilter) ([]types.CandidateProfile, int, error)
	UpdateCandidate(ctx context.Context, c *types.CandidateProfile, withScore bool) (*types.CandidateProfile, error)
	UpdateCandidateScore(ctx context.Context, id uuid.UUID, score int, scoredAt time.Time) error
	UpdateCandidateStatus(ctx context.Context, id uuid.UUID, from, to types.CandidateStatus) (bool, error)
	AppendCandidateNote(ctx context.Context, id uuid.UUID, note types.Note) (bool, error)
	AddCandidateInterview(ctx context.Context, id uuid.UUID, interview types.Interview, from, to types.CandidateStatus) (bool, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error)

	CreateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error)
	GetOnboarding(ctx context.Context, id uuid.UUID) (*types.OnboardingRecord, error)
	GetOnboardingByCandidate(ctx context.Context, candidateID uuid.UUID) (*types.OnboardingRecord, error)
	ListOnboarding(ctx context.Context, f db.OnboardingFilter) ([]types.OnboardingRecord, int, error)
	UpdateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error)
	UpdateChecklistItem(ctx context.Context, onboardingID, itemID uuid.UUID, fn func(*types.ChecklistItem) error) (*types.OnboardingRecord, error)
	AddOnboardingDocument(ctx context.Context, onboardingID uuid.UUID, doc types.Document) (*types.OnboardingRecord, error)

	JobStats(ctx context.Context) (*types.JobStats, error)
	CandidateStats(ctx context.Context) (*types.CandidateStats, error)
	OnboardingStats(ctx context.Context) (*types.OnboardingStats, error)
}

var _ Store = (*db.DB)(nil)
