package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/logger"
	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
)

// JobService manages job requisitions.
type JobService struct {
	store Store
	log   *zap.Logger
}

// NewJobService creates a JobService.
func NewJobService(store Store, log *zap.Logger) *JobService {
	return &JobService{store: store, log: logger.OrNop(log)}
}

func checkSalary(r *types.SalaryRange) error {
	if r.Min != nil && *r.Min < 0 {
		return &ErrValidation{Field: "salary_range.min", Message: "must not be negative"}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return &ErrValidation{Field: "salary_range", Message: "min must not exceed max"}
	}
	return nil
}

// Create validates the request and stores a new requisition posted by actor.
func (s *JobService) Create(ctx context.Context, req *types.CreateJobRequest, actor *uuid.UUID) (*types.JobRequisition, error) {
	req.ApplyDefaults()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := checkSalary(&req.SalaryRange); err != nil {
		return nil, err
	}

	job, err := s.store.CreateJob(ctx, req.ToJob(actor))
	if err != nil {
		return nil, wrapStore("create job", err)
	}
	logger.WithFields(s.log, zap.String(logger.FieldJobID, job.ID.String())).
		Info("job created", zap.String("title", job.Title), zap.String("status", string(job.Status)))
	return job, nil
}

// Get returns the requisition or ErrNotFound.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*types.JobRequisition, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, wrapStore("get job", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", ID: id}
	}
	return job, nil
}

// List returns one page of requisitions matching f.
func (s *JobService) List(ctx context.Context, f db.JobFilter) (*types.ListResponse[types.JobRequisition], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, &ErrValidation{Field: "status", Message: "unknown job status"}
	}
	f.Page = f.Page.Normalize()
	jobs, total, err := s.store.ListJobs(ctx, f)
	if err != nil {
		return nil, wrapStore("list jobs", err)
	}
	return &types.ListResponse[types.JobRequisition]{Items: jobs, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Update merges req into the requisition. The experience level is fixed at creation.
func (s *JobService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateJobRequest) (*types.JobRequisition, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ExperienceLevel != nil && *req.ExperienceLevel != job.ExperienceLevel {
		return nil, &ErrValidation{Field: "experience_level", Message: "cannot be changed after creation"}
	}

	req.Apply(job)
	if err := checkSalary(&job.SalaryRange); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateJob(ctx, job)
	if err != nil {
		return nil, wrapStore("update job", err)
	}
	if updated == nil {
		return nil, &ErrNotFound{Resource: "job", ID: id}
	}
	return updated, nil
}

// Delete removes a requisition that no candidate references.
func (s *JobService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteJob(ctx, id)
	if err != nil {
		return wrapStore("delete job", conflictFromStore(err, "job has candidates and cannot be deleted"))
	}
	if !deleted {
		return &ErrNotFound{Resource: "job", ID: id}
	}
	s.log.Info("job deleted", zap.String(logger.FieldJobID, id.String()))
	return nil
}

// Stats returns the job overview counters.
func (s *JobService) Stats(ctx context.Context) (*types.JobStats, error) {
	stats, err := s.store.JobStats(ctx)
	if err != nil {
		return nil, wrapStore("load job stats", err)
	}
	return stats, nil
}
