//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ChecklistStatus is the state of a single onboarding task.
type ChecklistStatus string

// Checklist item states
const (
	ItemPending    ChecklistStatus = "pending"
	ItemInProgress ChecklistStatus = "in_progress"
	ItemCompleted  ChecklistStatus = "completed"
)

// Valid reports whether s is a known checklist status.
func (s ChecklistStatus) Valid() bool {
	switch s {
	case ItemPending, ItemInProgress, ItemCompleted:
		return true
	}
	return false
}

// OnboardingStatus is the overall state derived from a checklist.
type OnboardingStatus string

// Overall onboarding states
const (
	OnboardingNotStarted OnboardingStatus = "not_started"
	OnboardingInProgress OnboardingStatus = "in_progress"
	OnboardingCompleted  OnboardingStatus = "completed"
)

// Valid reports whether s is a known overall status.
func (s OnboardingStatus) Valid() bool {
	switch s {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingCompleted:
		return true
	}
	return false
}

// Owner is the party responsible for a checklist task.
type Owner string

// Checklist task owners
const (
	OwnerIT       Owner = "IT"
	OwnerHR       Owner = "HR"
	OwnerTraining Owner = "Training"
	OwnerManager  Owner = "Manager"
	OwnerEmployee Owner = "Employee"
)

// Valid reports whether o is a known owner.
func (o Owner) Valid() bool {
	switch o {
	case OwnerIT, OwnerHR, OwnerTraining, OwnerManager, OwnerEmployee:
		return true
	}
	return false
}

// ChecklistItem is one onboarding task
type ChecklistItem struct {
	ID            uuid.UUID       `json:"id"`
	Task          string          `json:"task"`
	Description   string          `json:"description,omitempty"`
	AssignedTo    Owner           `json:"assigned_to"`
	Status        ChecklistStatus `json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CompletedDate *time.Time      `json:"completed_date,omitempty"`
	CompletedBy   *uuid.UUID      `json:"completed_by,omitempty"`
}

// Orientation describes the new hire's orientation session
type Orientation struct {
	Date        *time.Time `json:"date,omitempty"`
	Location    string     `json:"location,omitempty"`
	Coordinator *uuid.UUID `json:"coordinator,omitempty"`
	Completed   bool       `json:"completed"`
}

// Document submission states
const (
	DocumentSubmitted = "submitted"
	DocumentApproved  = "approved"
	DocumentRejected  = "rejected"
)

// Document is a file the new hire submitted during onboarding
type Document struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// OnboardingRecord tracks one hired candidate becoming an employee.
// CompletionPercentage and OverallStatus are always derived from Checklist.
type OnboardingRecord struct {
	ID                   uuid.UUID        `json:"id"`
	CandidateID          uuid.UUID        `json:"candidate_id"`
	EmployeeID           string           `json:"employee_id"`
	Position             string           `json:"position,omitempty"`
	Department           string           `json:"department,omitempty"`
	StartDate            time.Time        `json:"start_date"`
	Manager              *uuid.UUID       `json:"manager,omitempty"`
	Buddy                *uuid.UUID       `json:"buddy,omitempty"`
	Checklist            []ChecklistItem  `json:"checklist"`
	Orientation          *Orientation     `json:"orientation,omitempty"`
	Documents            []Document       `json:"documents"`
	CompletionPercentage int              `json:"completion_percentage"`
	OverallStatus        OnboardingStatus `json:"overall_status"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// ChecklistItemInput is a task supplied when creating a record with a custom checklist
type ChecklistItemInput struct {
	Task        string          `json:"task" validate:"required"`
	Description string          `json:"description,omitempty"`
	AssignedTo  Owner           `json:"assigned_to" validate:"required,oneof=IT HR Training Manager Employee"`
	Status      ChecklistStatus `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// CreateOnboardingRequest is the body of POST /api/onboarding. An absent checklist means the
// configured default template is used.
type CreateOnboardingRequest struct {
	CandidateID uuid.UUID            `json:"candidate_id" validate:"required"`
	Position    string               `json:"position,omitempty"`
	Department  string               `json:"department,omitempty"`
	StartDate   time.Time            `json:"start_date" validate:"required"`
	Manager     *uuid.UUID           `json:"manager,omitempty"`
	Buddy       *uuid.UUID           `json:"buddy,omitempty"`
	Checklist   []ChecklistItemInput `json:"checklist,omitempty" validate:"omitempty,dive"`
	Orientation *Orientation         `json:"orientation,omitempty"`
}

// UpdateOnboardingRequest is the body of PUT /api/onboarding/{id}. The checklist and the
// derived fields cannot be changed here.
type UpdateOnboardingRequest struct {
	Position    *string      `json:"position,omitempty"`
	Department  *string      `json:"department,omitempty"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	Manager     *uuid.UUID   `json:"manager,omitempty"`
	Buddy       *uuid.UUID   `json:"buddy,omitempty"`
	Orientation *Orientation `json:"orientation,omitempty"`
}

// Apply merges the request into rec.
func (r *UpdateOnboardingRequest) Apply(rec *OnboardingRecord) {
	setString(&rec.Position, r.Position)
	setString(&rec.Department, r.Department)
	if r.StartDate != nil {
		rec.StartDate = *r.StartDate
	}
	if r.Manager != nil {
		rec.Manager = r.Manager
	}
	if r.Buddy != nil {
		rec.Buddy = r.Buddy
	}
	if r.Orientation != nil {
		rec.Orientation = r.Orientation
	}
}

// UpdateChecklistItemRequest is the body of PUT /api/onboarding/{id}/checklist/{item_id}
type UpdateChecklistItemRequest struct {
	Status ChecklistStatus `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// SubmitDocumentRequest is the body of POST /api/onboarding/{id}/documents
type SubmitDocumentRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}
