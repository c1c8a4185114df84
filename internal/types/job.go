// Package types provides type definitions for the records exchanged between the talent-manager
// API, its storage layer and the scoring/onboarding calculators.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel is the seniority band a job requisition is opened for.
type ExperienceLevel string

// Experience levels accepted on a job requisition
const (
	ExperienceEntry     ExperienceLevel = "Entry"
	ExperienceMid       ExperienceLevel = "Mid"
	ExperienceSenior    ExperienceLevel = "Senior"
	ExperienceLead      ExperienceLevel = "Lead"
	ExperienceExecutive ExperienceLevel = "Executive"
)

// Valid reports whether l is one of the known experience levels.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead, ExperienceExecutive:
		return true
	}
	return false
}

// JobStatus is the publication lifecycle of a requisition.
type JobStatus string

// Job lifecycle states
const (
	JobDraft  JobStatus = "draft"
	JobActive JobStatus = "active"
	JobClosed JobStatus = "closed"
	JobOnHold JobStatus = "on-hold"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobDraft, JobActive, JobClosed, JobOnHold:
		return true
	}
	return false
}

// Employment types
const (
	EmploymentFullTime   = "Full-time"
	EmploymentPartTime   = "Part-time"
	EmploymentContract   = "Contract"
	EmploymentInternship = "Internship"
)

// Posting types
const (
	PostingInternal = "internal"
	PostingExternal = "external"
	PostingBoth     = "both"
)

// SalaryRange is an optional compensation band
type SalaryRange struct {
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// JobRequisition is an open (or draft, closed...) position candidates apply to.
// ApplicationsCount is derived from the candidates that reference the job and is never
// written directly.
type JobRequisition struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Department        string          `json:"department"`
	Location          string          `json:"location"`
	EmploymentType    string          `json:"employment_type"`
	ExperienceLevel   ExperienceLevel `json:"experience_level"`
	Description       string          `json:"description"`
	Requirements      []string        `json:"requirements"`
	Responsibilities  []string        `json:"responsibilities"`
	Skills            []string        `json:"skills"`
	Benefits          []string        `json:"benefits"`
	SalaryRange       SalaryRange     `json:"salary_range"`
	PostingType       string          `json:"posting_type"`
	Status            JobStatus       `json:"status"`
	Openings          int             `json:"openings"`
	Deadline          *time.Time      `json:"deadline,omitempty"`
	PostedBy          *uuid.UUID      `json:"posted_by,omitempty"`
	HiringManager     *uuid.UUID      `json:"hiring_manager,omitempty"`
	ApplicationsCount int             `json:"applications_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateJobRequest is the body of POST /api/jobs
type CreateJobRequest struct {
	Title            string          `json:"title" validate:"required"`
	Department       string          `json:"department" validate:"required"`
	Location         string          `json:"location" validate:"required"`
	EmploymentType   string          `json:"employment_type" validate:"omitempty,oneof=Full-time Part-time Contract Internship"`
	ExperienceLevel  ExperienceLevel `json:"experience_level" validate:"required,oneof=Entry Mid Senior Lead Executive"`
	Description      string          `json:"description" validate:"required"`
	Requirements     []string        `json:"requirements"`
	Responsibilities []string        `json:"responsibilities"`
	Skills           []string        `json:"skills"`
	Benefits         []string        `json:"benefits"`
	SalaryRange      SalaryRange     `json:"salary_range"`
	PostingType      string          `json:"posting_type" validate:"omitempty,oneof=internal external both"`
	Status           JobStatus       `json:"status" validate:"omitempty,oneof=draft active closed on-hold"`
	Openings         int             `json:"openings" validate:"omitempty,min=1"`
	Deadline         *time.Time      `json:"deadline,omitempty"`
	HiringManager    *uuid.UUID      `json:"hiring_manager,omitempty"`
}

// ApplyDefaults fills the optional fields the original form left blank.
func (r *CreateJobRequest) ApplyDefaults() {
	if r.EmploymentType == "" {
		r.EmploymentType = EmploymentFullTime
	}
	if r.PostingType == "" {
		r.PostingType = PostingBoth
	}
	if r.Status == "" {
		r.Status = JobDraft
	}
	if r.Openings == 0 {
		r.Openings = 1
	}
	if r.SalaryRange.Currency == "" {
		r.SalaryRange.Currency = "USD"
	}
}

// ToJob builds the requisition described by the request.
func (r *CreateJobRequest) ToJob(postedBy *uuid.UUID) *JobRequisition {
	return &JobRequisition{
		Title:            r.Title,
		Department:       r.Department,
		Location:         r.Location,
		EmploymentType:   r.EmploymentType,
		ExperienceLevel:  r.ExperienceLevel,
		Description:      r.Description,
		Requirements:     nonNil(r.Requirements),
		Responsibilities: nonNil(r.Responsibilities),
		Skills:           nonNil(r.Skills),
		Benefits:         nonNil(r.Benefits),
		SalaryRange:      r.SalaryRange,
		PostingType:      r.PostingType,
		Status:           r.Status,
		Openings:         r.Openings,
		Deadline:         r.Deadline,
		PostedBy:         postedBy,
		HiringManager:    r.HiringManager,
	}
}

// UpdateJobRequest is the body of PUT /api/jobs/{id}. Nil fields are left untouched.
// ExperienceLevel is accepted only so that a change can be rejected explicitly.
type UpdateJobRequest struct {
	Title            *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Department       *string          `json:"department,omitempty" validate:"omitempty,min=1"`
	Location         *string          `json:"location,omitempty" validate:"omitempty,min=1"`
	EmploymentType   *string          `json:"employment_type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Internship"`
	ExperienceLevel  *ExperienceLevel `json:"experience_level,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Requirements     []string         `json:"requirements,omitempty"`
	Responsibilities []string         `json:"responsibilities,omitempty"`
	Skills           []string         `json:"skills,omitempty"`
	Benefits         []string         `json:"benefits,omitempty"`
	SalaryRange      *SalaryRange     `json:"salary_range,omitempty"`
	PostingType      *string          `json:"posting_type,omitempty" validate:"omitempty,oneof=internal external both"`
	Status           *JobStatus       `json:"status,omitempty" validate:"omitempty,oneof=draft active closed on-hold"`
	Openings         *int             `json:"openings,omitempty" validate:"omitempty,min=1"`
	Deadline         *time.Time       `json:"deadline,omitempty"`
	HiringManager    *uuid.UUID       `json:"hiring_manager,omitempty"`
}

// Apply merges the request into job.
func (r *UpdateJobRequest) Apply(job *JobRequisition) {
	setString(&job.Title, r.Title)
	setString(&job.Department, r.Department)
	setString(&job.Location, r.Location)
	setString(&job.EmploymentType, r.EmploymentType)
	setString(&job.Description, r.Description)
	setString(&job.PostingType, r.PostingType)
	if r.Requirements != nil {
		job.Requirements = r.Requirements
	}
	if r.Responsibilities != nil {
		job.Responsibilities = r.Responsibilities
	}
	if r.Skills != nil {
		job.Skills = r.Skills
	}
	if r.Benefits != nil {
		job.Benefits = r.Benefits
	}
	if r.SalaryRange != nil {
		job.SalaryRange = *r.SalaryRange
	}
	if r.Status != nil {
		job.Status = *r.Status
	}
	if r.Openings != nil {
		job.Openings = *r.Openings
	}
	if r.Deadline != nil {
		job.Deadline = r.Deadline
	}
	if r.HiringManager != nil {
		job.HiringManager = r.HiringManager
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
