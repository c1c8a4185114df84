package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/logger"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
)

// OnboardingService manages onboarding records and their checklists.
type OnboardingService struct {
	store    Store
	template onboarding.Template
	log      *zap.Logger
	now      func() time.Time
}

// NewOnboardingService creates an OnboardingService. An empty template means the default one.
func NewOnboardingService(store Store, tmpl onboarding.Template, log *zap.Logger) *OnboardingService {
	if len(tmpl) == 0 {
		tmpl = onboarding.DefaultTemplate()
	}
	return &OnboardingService{store: store, template: tmpl, log: logger.OrNop(log), now: time.Now}
}

// Create opens an onboarding record for a hired candidate. Position and department default to
// the candidate's job.
func (s *OnboardingService) Create(ctx context.Context, req *types.CreateOnboardingRequest, actor *uuid.UUID) (*types.OnboardingRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	candidate, err := s.store.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, wrapStore("get candidate", err)
	}
	if candidate == nil {
		return nil, &ErrValidation{Field: "candidate_id", Message: "candidate does not exist"}
	}
	if candidate.Status != types.CandidateHired {
		return nil, &ErrConflict{Message: "candidate must be hired before onboarding starts"}
	}

	checklist, err := onboarding.BuildChecklist(req.Checklist, s.template, actor, s.now())
	if err != nil {
		return nil, &ErrValidation{Field: "checklist", Message: err.Error()}
	}

	rec := &types.OnboardingRecord{
		CandidateID: req.CandidateID,
		Position:    req.Position,
		Department:  req.Department,
		StartDate:   req.StartDate,
		Manager:     req.Manager,
		Buddy:       req.Buddy,
		Checklist:   checklist,
		Orientation: req.Orientation,
		Documents:   []types.Document{},
	}
	if rec.Position == "" || rec.Department == "" {
		job, err := s.store.GetJob(ctx, candidate.JobID)
		if err != nil {
			return nil, wrapStore("get job", err)
		}
		if job != nil {
			if rec.Position == "" {
				rec.Position = job.Title
			}
			if rec.Department == "" {
				rec.Department = job.Department
			}
		}
	}

	created, err := s.store.CreateOnboarding(ctx, rec)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrConflict{Message: "candidate already has an onboarding record"}
		}
		return nil, wrapStore("create onboarding record", err)
	}
	logger.WithFields(s.log,
		zap.String(logger.FieldOnboardingID, created.ID.String()),
		zap.String(logger.FieldCandidateID, created.CandidateID.String())).
		Info("onboarding started",
			zap.String("employee_id", created.EmployeeID),
			zap.Int("checklist_items", len(created.Checklist)))
	return created, nil
}

// Get returns the record or ErrNotFound.
func (s *OnboardingService) Get(ctx context.Context, id uuid.UUID) (*types.OnboardingRecord, error) {
	rec, err := s.store.GetOnboarding(ctx, id)
	if err != nil {
		return nil, wrapStore("get onboarding record", err)
	}
	if rec == nil {
		return nil, &ErrNotFound{Resource: "onboarding record", ID: id}
	}
	return rec, nil
}

// List returns one page of records, latest start date first.
func (s *OnboardingService) List(ctx context.Context, f db.OnboardingFilter) (*types.ListResponse[types.OnboardingRecord], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, &ErrValidation{Field: "status", Message: "unknown onboarding status"}
	}
	f.Page = f.Page.Normalize()
	items, total, err := s.store.ListOnboarding(ctx, f)
	if err != nil {
		return nil, wrapStore("list onboarding records", err)
	}
	return &types.ListResponse[types.OnboardingRecord]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Update changes the descriptive fields of a record. The checklist and derived progress are
// not writable here.
func (s *OnboardingService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateOnboardingRequest) (*types.OnboardingRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(rec)

	updated, err := s.store.UpdateOnboarding(ctx, rec)
	if err != nil {
		return nil, wrapStore("update onboarding record", err)
	}
	if updated == nil {
		return nil, &ErrNotFound{Resource: "onboarding record", ID: id}
	}
	return updated, nil
}

// UpdateChecklistItem moves one item to a new status on behalf of actor and returns the
// record with its recomputed progress. Staff may update any item; other roles only the
// items assigned to the Employee.
func (s *OnboardingService) UpdateChecklistItem(ctx context.Context, id, itemID uuid.UUID, req *types.UpdateChecklistItemRequest, actor *uuid.UUID, role string) (*types.OnboardingRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	rec, err := s.store.UpdateChecklistItem(ctx, id, itemID, func(item *types.ChecklistItem) error {
		if !slices.Contains(staffRoles, role) && item.AssignedTo != types.OwnerEmployee {
			return &ErrForbidden{Message: fmt.Sprintf("role %q may only update items assigned to the Employee", role)}
		}
		return onboarding.Transition(item, req.Status, actor, now)
	})
	if err != nil {
		if errors.Is(err, db.ErrChecklistItemNotFound) {
			return nil, &ErrNotFound{Resource: "checklist item", ID: itemID}
		}
		return nil, wrapStore("update checklist item", err)
	}
	if rec == nil {
		return nil, &ErrNotFound{Resource: "onboarding record", ID: id}
	}

	logger.WithFields(s.log, zap.String(logger.FieldOnboardingID, id.String())).
		Info("checklist item updated",
			zap.String("item_id", itemID.String()),
			zap.String("status", string(req.Status)),
			zap.Int("completion_percentage", rec.CompletionPercentage),
			zap.String("overall_status", string(rec.OverallStatus)))
	return rec, nil
}

// SubmitDocument records a document reference in submitted state.
func (s *OnboardingService) SubmitDocument(ctx context.Context, id uuid.UUID, req *types.SubmitDocumentRequest) (*types.OnboardingRecord, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	rec, err := s.store.AddOnboardingDocument(ctx, id, types.Document{
		Name:       req.Name,
		Type:       req.Type,
		URL:        req.URL,
		Status:     types.DocumentSubmitted,
		UploadedAt: s.now(),
	})
	if err != nil {
		return nil, wrapStore("submit document", err)
	}
	if rec == nil {
		return nil, &ErrNotFound{Resource: "onboarding record", ID: id}
	}
	return rec, nil
}

// Stats returns the onboarding overview counters.
func (s *OnboardingService) Stats(ctx context.Context) (*types.OnboardingStats, error) {
	stats, err := s.store.OnboardingStats(ctx)
	if err != nil {
		return nil, wrapStore("load onboarding stats", err)
	}
	return stats, nil
}
