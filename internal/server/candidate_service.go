package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/logger"
	"github.com/jonathan/talent-manager/internal/scoring"
	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
)

// CandidateService manages applications and keeps their fit scores.
type CandidateService struct {
	store Store
	mode  scoring.Mode
	log   *zap.Logger
	now   func() time.Time
}

// NewCandidateService creates a CandidateService scoring in the given mode.
func NewCandidateService(store Store, mode scoring.Mode, log *zap.Logger) *CandidateService {
	if mode == "" {
		mode = scoring.ModeSnapshot
	}
	return &CandidateService{store: store, mode: mode, log: logger.OrNop(log), now: time.Now}
}

// ShortlistResult is the outcome of shortlisting one candidate.
type ShortlistResult struct {
	ID             uuid.UUID              `json:"id"`
	PreviousStatus *types.CandidateStatus `json:"previous_status,omitempty"`
	Status         types.CandidateStatus  `json:"status,omitempty"`
	FitScore       *int                   `json:"fit_score,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// scoreAgainst looks up the candidate's job and scores against it.
func (s *CandidateService) scoreAgainst(ctx context.Context, c *types.CandidateProfile) {
	job, err := s.store.GetJob(ctx, c.JobID)
	s.applyScore(c, job, err)
}

// applyScore stamps c with its score against job. A missing job or a failed lookup leaves the
// score at 0.
func (s *CandidateService) applyScore(c *types.CandidateProfile, job *types.JobRequisition, lookupErr error) {
	now := s.now()
	c.ScoredAt = &now
	c.FitScore = 0

	log := logger.WithFields(s.log,
		zap.String(logger.FieldCandidateID, c.ID.String()),
		zap.String(logger.FieldJobID, c.JobID.String()))
	switch {
	case lookupErr != nil:
		log.Warn("job lookup failed, fit score left at 0", zap.Error(lookupErr))
	case job == nil:
		log.Warn("job not found, fit score left at 0")
	default:
		c.FitScore = scoring.Score(c, job)
	}
}

// Create stores a new application scored against its job. The caller becomes the assigned
// recruiter when the request names none.
func (s *CandidateService) Create(ctx context.Context, req *types.CreateCandidateRequest, actor *uuid.UUID) (*types.CandidateProfile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	c := req.ToCandidate()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.AssignedTo == nil {
		c.AssignedTo = actor
	}

	// An application must reference an existing job, so a missing job is rejected here
	// instead of being stored with a zero score. A failed lookup still stores the
	// application unscored (see applyScore).
	job, err := s.store.GetJob(ctx, c.JobID)
	if err == nil && job == nil {
		return nil, &ErrValidation{Field: "job_id", Message: "job does not exist"}
	}
	s.applyScore(c, job, err)

	created, err := s.store.CreateCandidate(ctx, c)
	if err != nil {
		if errors.Is(err, db.ErrInUse) {
			return nil, &ErrValidation{Field: "job_id", Message: "job does not exist"}
		}
		return nil, wrapStore("create candidate", err)
	}
	logger.WithFields(s.log,
		zap.String(logger.FieldCandidateID, created.ID.String()),
		zap.String(logger.FieldJobID, created.JobID.String())).
		Info("candidate created", zap.Int("fit_score", created.FitScore))
	return created, nil
}

// Get returns the candidate or ErrNotFound.
func (s *CandidateService) Get(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		return nil, wrapStore("get candidate", err)
	}
	if c == nil {
		return nil, &ErrNotFound{Resource: "candidate", ID: id}
	}
	return c, nil
}

// List returns one page of candidates, best fit first.
func (s *CandidateService) List(ctx context.Context, f db.CandidateFilter) (*types.ListResponse[types.CandidateProfile], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, &ErrValidation{Field: "status", Message: "unknown candidate status"}
	}
	f.Page = f.Page.Normalize()
	items, total, err := s.store.ListCandidates(ctx, f)
	if err != nil {
		return nil, wrapStore("list candidates", err)
	}
	return &types.ListResponse[types.CandidateProfile]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Update merges the profile fields of req. In recompute mode the score is refreshed too.
func (s *CandidateService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateCandidateRequest) (*types.CandidateProfile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(c)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	rescore := s.mode.RescoreOnUpdate()
	if rescore {
		s.scoreAgainst(ctx, c)
	}

	updated, err := s.store.UpdateCandidate(ctx, c, rescore)
	if err != nil {
		return nil, wrapStore("update candidate", err)
	}
	if updated == nil {
		return nil, &ErrNotFound{Resource: "candidate", ID: id}
	}
	return updated, nil
}

// UpdateStatus moves the candidate along the pipeline. The write only succeeds if nobody
// changed the status since it was read.
func (s *CandidateService) UpdateStatus(ctx context.Context, id uuid.UUID, to types.CandidateStatus) (*types.CandidateProfile, error) {
	if !to.Valid() {
		return nil, &ErrValidation{Field: "status", Message: "unknown candidate status"}
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Status.Transition(to); err != nil {
		return nil, err
	}

	ok, err := s.store.UpdateCandidateStatus(ctx, id, c.Status, to)
	if err != nil {
		return nil, wrapStore("update candidate status", err)
	}
	if !ok {
		return nil, &ErrConflict{Message: "candidate status changed concurrently, reload and retry"}
	}
	s.log.Info("candidate status changed",
		zap.String(logger.FieldCandidateID, id.String()),
		zap.String("from", string(c.Status)),
		zap.String("to", string(to)))
	return s.Get(ctx, id)
}

// AddNote appends a note written by actor.
func (s *CandidateService) AddNote(ctx context.Context, id uuid.UUID, req *types.AddNoteRequest, actor *uuid.UUID) (*types.CandidateProfile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &ErrValidation{Field: "Text", Message: "required"}
	}

	ok, err := s.store.AppendCandidateNote(ctx, id, types.Note{Text: text, AddedBy: actor, AddedAt: s.now()})
	if err != nil {
		return nil, wrapStore("add note", err)
	}
	if !ok {
		return nil, &ErrNotFound{Resource: "candidate", ID: id}
	}
	return s.Get(ctx, id)
}

// ScheduleInterview records an interview and moves the candidate to interview_scheduled.
func (s *CandidateService) ScheduleInterview(ctx context.Context, id uuid.UUID, req *types.ScheduleInterviewRequest) (*types.CandidateProfile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Status.Transition(types.CandidateInterviewScheduled); err != nil {
		return nil, err
	}

	interview := types.Interview{
		ID:          uuid.New(),
		ScheduledAt: req.ScheduledAt,
		Interviewer: req.Interviewer,
		Type:        req.Type,
		Location:    req.Location,
	}
	interview.Status = interview.DeriveStatus()

	ok, err := s.store.AddCandidateInterview(ctx, id, interview, c.Status, types.CandidateInterviewScheduled)
	if err != nil {
		return nil, wrapStore("schedule interview", err)
	}
	if !ok {
		return nil, &ErrConflict{Message: "candidate status changed concurrently, reload and retry"}
	}
	return s.Get(ctx, id)
}

// Rescore refreshes the stored fit score against the candidate's current job.
func (s *CandidateService) Rescore(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.scoreAgainst(ctx, c)
	if err := s.store.UpdateCandidateScore(ctx, id, c.FitScore, *c.ScoredAt); err != nil {
		return nil, wrapStore("update candidate score", err)
	}
	return s.Get(ctx, id)
}

// Explain returns the per-band breakdown of the candidate's score against its job as it is now.
// The stored fit score is not touched.
func (s *CandidateService) Explain(ctx context.Context, id uuid.UUID) (*scoring.Breakdown, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, c.JobID)
	if err != nil {
		return nil, wrapStore("get job", err)
	}
	b := scoring.Explain(c, job)
	return &b, nil
}

// Shortlist moves every listed candidate to shortlisted. Failures are reported per candidate
// and do not stop the others.
func (s *CandidateService) Shortlist(ctx context.Context, req *types.ShortlistRequest) ([]ShortlistResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	results := make([]ShortlistResult, 0, len(req.CandidateIDs))
	for _, id := range req.CandidateIDs {
		res := ShortlistResult{ID: id}
		before, err := s.Get(ctx, id)
		if err == nil {
			from := before.Status
			res.PreviousStatus = &from
			var updated *types.CandidateProfile
			updated, err = s.UpdateStatus(ctx, id, types.CandidateShortlisted)
			if err == nil {
				res.Status = updated.Status
				res.FitScore = &updated.FitScore
			}
		}
		if err != nil {
			if HTTPStatus(err) == http.StatusInternalServerError {
				return nil, err
			}
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// Delete removes a candidate that has no onboarding record.
func (s *CandidateService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteCandidate(ctx, id)
	if err != nil {
		return wrapStore("delete candidate", conflictFromStore(err, "candidate has an onboarding record and cannot be deleted"))
	}
	if !deleted {
		return &ErrNotFound{Resource: "candidate", ID: id}
	}
	s.log.Info("candidate deleted", zap.String(logger.FieldCandidateID, id.String()))
	return nil
}

// Stats returns the candidate overview counters.
func (s *CandidateService) Stats(ctx context.Context) (*types.CandidateStats, error) {
	stats, err := s.store.CandidateStats(ctx)
	if err != nil {
		return nil, wrapStore("load candidate stats", err)
	}
	return stats, nil
}
