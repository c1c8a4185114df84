//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CandidateStatus is the hiring-pipeline stage of an application.
type CandidateStatus string

// Candidate pipeline stages
const (
	CandidateNew                CandidateStatus = "new"
	CandidateScreening          CandidateStatus = "screening"
	CandidateShortlisted        CandidateStatus = "shortlisted"
	CandidateInterviewScheduled CandidateStatus = "interview_scheduled"
	CandidateInterviewed        CandidateStatus = "interviewed"
	CandidateOfferExtended      CandidateStatus = "offer_extended"
	CandidateHired              CandidateStatus = "hired"
	CandidateRejected           CandidateStatus = "rejected"
	CandidateWithdrawn          CandidateStatus = "withdrawn"
)

// candidateTransitions lists, for every status, the statuses it may move to.
// Rejected and withdrawn are reachable from every non-terminal stage.
var candidateTransitions = map[CandidateStatus][]CandidateStatus{
	CandidateNew:                {CandidateScreening, CandidateShortlisted, CandidateInterviewScheduled},
	CandidateScreening:          {CandidateShortlisted, CandidateInterviewScheduled},
	CandidateShortlisted:        {CandidateInterviewScheduled},
	CandidateInterviewScheduled: {CandidateInterviewScheduled, CandidateInterviewed},
	CandidateInterviewed:        {CandidateInterviewScheduled, CandidateOfferExtended},
	CandidateOfferExtended:      {CandidateHired},
	CandidateHired:              nil,
	CandidateRejected:           nil,
	CandidateWithdrawn:          nil,
}

// Valid reports whether s is a known candidate status.
func (s CandidateStatus) Valid() bool {
	_, ok := candidateTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s CandidateStatus) Terminal() bool {
	switch s {
	case CandidateHired, CandidateRejected, CandidateWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether a candidate in status s may move to next.
func (s CandidateStatus) CanTransition(next CandidateStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == CandidateRejected || next == CandidateWithdrawn {
		return true
	}
	for _, allowed := range candidateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned when a status change is not allowed by the pipeline.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Transition checks that s may move to next.
func (s CandidateStatus) Transition(next CandidateStatus) error {
	if !s.CanTransition(next) {
		return &ErrInvalidTransition{From: string(s), To: string(next)}
	}
	return nil
}

// Candidate sources
const (
	SourceLinkedIn   = "linkedin"
	SourceIndeed     = "indeed"
	SourceReferral   = "referral"
	SourceWebsite    = "website"
	SourceCareerFair = "career_fair"
	SourceOther      = "other"
)

// Education is a single degree entry on an application
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
}

// Resume references an uploaded resume artifact
type Resume struct {
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Present reports whether the resume points at an uploaded artifact.
func (r *Resume) Present() bool {
	return r != nil && strings.TrimSpace(r.URL) != ""
}

// Note is an append-only recruiter comment
type Note struct {
	Text    string     `json:"text"`
	AddedBy *uuid.UUID `json:"added_by,omitempty"`
	AddedAt time.Time  `json:"added_at"`
}

// InterviewStatus is derived from an interview's recorded data, never stored.
type InterviewStatus string

// Interview states
const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview is a scheduled conversation with the candidate
type Interview struct {
	ID          uuid.UUID       `json:"id"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Interviewer *uuid.UUID      `json:"interviewer,omitempty"`
	Type        string          `json:"type,omitempty"` // phone, video, onsite, technical
	Location    string          `json:"location,omitempty"`
	Feedback    string          `json:"feedback,omitempty"`
	Rating      int             `json:"rating,omitempty"`
	Cancelled   bool            `json:"cancelled,omitempty"`
	Status      InterviewStatus `json:"status"`
}

// DeriveStatus computes the interview status from cancellation and feedback.
func (i *Interview) DeriveStatus() InterviewStatus {
	switch {
	case i.Cancelled:
		return InterviewCancelled
	case strings.TrimSpace(i.Feedback) != "" || i.Rating > 0:
		return InterviewCompleted
	default:
		return InterviewScheduled
	}
}

// CandidateProfile is an application from one person to one job requisition.
// FitScore is a snapshot taken when the application was created.
type CandidateProfile struct {
	ID              uuid.UUID       `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	Source          string          `json:"source"`
	CurrentCompany  string          `json:"current_company,omitempty"`
	CurrentPosition string          `json:"current_position,omitempty"`
	Experience      int             `json:"experience"`
	Skills          []string        `json:"skills"`
	Education       []Education     `json:"education"`
	Resume          *Resume         `json:"resume,omitempty"`
	CoverLetter     string          `json:"cover_letter,omitempty"`
	JobID           uuid.UUID       `json:"job_id"`
	Status          CandidateStatus `json:"status"`
	Notes           []Note          `json:"notes"`
	Interviews      []Interview     `json:"interviews"`
	AssignedTo      *uuid.UUID      `json:"assigned_to,omitempty"`
	FitScore        int             `json:"fit_score"`
	ScoredAt        *time.Time      `json:"scored_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// FullName returns "First Last"
func (c *CandidateProfile) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CreateCandidateRequest is the body of POST /api/candidates
type CreateCandidateRequest struct {
	FirstName       string      `json:"first_name" validate:"required"`
	LastName        string      `json:"last_name" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Phone           string      `json:"phone,omitempty"`
	Source          string      `json:"source" validate:"omitempty,oneof=linkedin indeed referral website career_fair other"`
	CurrentCompany  string      `json:"current_company,omitempty"`
	CurrentPosition string      `json:"current_position,omitempty"`
	Experience      int         `json:"experience" validate:"min=0"`
	Skills          []string    `json:"skills"`
	Education       []Education `json:"education" validate:"dive"`
	Resume          *Resume     `json:"resume,omitempty"`
	CoverLetter     string      `json:"cover_letter,omitempty"`
	JobID           uuid.UUID   `json:"job_id" validate:"required"`
	AssignedTo      *uuid.UUID  `json:"assigned_to,omitempty"`
}

// ToCandidate builds a new-status candidate from the request.
func (r *CreateCandidateRequest) ToCandidate() *CandidateProfile {
	source := r.Source
	if source == "" {
		source = SourceWebsite
	}
	education := r.Education
	if education == nil {
		education = []Education{}
	}
	return &CandidateProfile{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		Source:          source,
		CurrentCompany:  r.CurrentCompany,
		CurrentPosition: r.CurrentPosition,
		Experience:      r.Experience,
		Skills:          nonNil(r.Skills),
		Education:       education,
		Resume:          r.Resume,
		CoverLetter:     r.CoverLetter,
		JobID:           r.JobID,
		Status:          CandidateNew,
		Notes:           []Note{},
		Interviews:      []Interview{},
		AssignedTo:      r.AssignedTo,
	}
}

// UpdateCandidateRequest is the body of PUT /api/candidates/{id}. Status changes go through
// the dedicated status endpoint so the transition table is always enforced.
type UpdateCandidateRequest struct {
	FirstName       *string     `json:"first_name,omitempty" validate:"omitempty,min=1"`
	LastName        *string     `json:"last_name,omitempty" validate:"omitempty,min=1"`
	Email           *string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string     `json:"phone,omitempty"`
	CurrentCompany  *string     `json:"current_company,omitempty"`
	CurrentPosition *string     `json:"current_position,omitempty"`
	Experience      *int        `json:"experience,omitempty" validate:"omitempty,min=0"`
	Skills          []string    `json:"skills,omitempty"`
	Education       []Education `json:"education,omitempty" validate:"dive"`
	Resume          *Resume     `json:"resume,omitempty"`
	CoverLetter     *string     `json:"cover_letter,omitempty"`
	AssignedTo      *uuid.UUID  `json:"assigned_to,omitempty"`
}

// Apply merges the request into c.
func (r *UpdateCandidateRequest) Apply(c *CandidateProfile) {
	setString(&c.FirstName, r.FirstName)
	setString(&c.LastName, r.LastName)
	setString(&c.Email, r.Email)
	setString(&c.Phone, r.Phone)
	setString(&c.CurrentCompany, r.CurrentCompany)
	setString(&c.CurrentPosition, r.CurrentPosition)
	setString(&c.CoverLetter, r.CoverLetter)
	if r.Experience != nil {
		c.Experience = *r.Experience
	}
	if r.Skills != nil {
		c.Skills = r.Skills
	}
	if r.Education != nil {
		c.Education = r.Education
	}
	if r.Resume != nil {
		c.Resume = r.Resume
	}
	if r.AssignedTo != nil {
		c.AssignedTo = r.AssignedTo
	}
}

// UpdateCandidateStatusRequest is the body of PATCH /api/candidates/{id}/status
type UpdateCandidateStatusRequest struct {
	Status CandidateStatus `json:"status" validate:"required"`
}

// AddNoteRequest is the body of POST /api/candidates/{id}/notes
type AddNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

// ScheduleInterviewRequest is the body of POST /api/candidates/{id}/interviews
type ScheduleInterviewRequest struct {
	ScheduledAt time.Time  `json:"scheduled_at" validate:"required"`
	Interviewer *uuid.UUID `json:"interviewer,omitempty"`
	Type        string     `json:"type,omitempty" validate:"omitempty,oneof=phone video onsite technical"`
	Location    string     `json:"location,omitempty"`
}

// ShortlistRequest is the body of POST /api/candidates/shortlist
type ShortlistRequest struct {
	CandidateIDs []uuid.UUID `json:"candidate_ids" validate:"required,min=1"`
}
