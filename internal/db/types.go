package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/types"
)

// Pagination bounds for list queries
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is the limit/offset window of a list query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window to [1, MaxLimit] rows and a non-negative offset.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)
	p.Offset = max(p.Offset, 0)
	return p
}

// JobFilter narrows GET /api/jobs. Empty fields match everything.
type JobFilter struct {
	Status      types.JobStatus
	Department  string
	PostingType string
	Search      string
	Page
}

// CandidateFilter narrows GET /api/candidates.
type CandidateFilter struct {
	Status types.CandidateStatus
	JobID  *uuid.UUID
	Source string
	Search string
	Page
}

// OnboardingFilter narrows GET /api/onboarding.
type OnboardingFilter struct {
	Status types.OnboardingStatus
	Page
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends a condition. clause uses %[1]d for the placeholder number of arg.
func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// paginate returns the LIMIT/OFFSET suffix and its arguments appended to w's.
func (w *whereBuilder) paginate(p Page) (string, []any) {
	p = p.Normalize()
	n := len(w.args)
	args := append(append([]any{}, w.args...), p.Limit, p.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(s))
	return "%" + s + "%"
}

func jobWhere(f JobFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add("j.status = $%[1]d", string(f.Status))
	}
	if f.Department != "" {
		w.add("j.department = $%[1]d", f.Department)
	}
	if f.PostingType != "" {
		w.add("j.posting_type = $%[1]d", f.PostingType)
	}
	if strings.TrimSpace(f.Search) != "" {
		w.add("(j.title ILIKE $%[1]d OR j.description ILIKE $%[1]d OR j.department ILIKE $%[1]d)", likePattern(f.Search))
	}
	return w
}

func candidateWhere(f CandidateFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add("c.status = $%[1]d", string(f.Status))
	}
	if f.JobID != nil {
		w.add("c.job_id = $%[1]d", *f.JobID)
	}
	if f.Source != "" {
		w.add("c.source = $%[1]d", f.Source)
	}
	if strings.TrimSpace(f.Search) != "" {
		w.add("(c.first_name ILIKE $%[1]d OR c.last_name ILIKE $%[1]d OR c.email ILIKE $%[1]d)", likePattern(f.Search))
	}
	return w
}

func onboardingWhere(f OnboardingFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add("o.overall_status = $%[1]d", string(f.Status))
	}
	return w
}

// FormatEmployeeID renders a sequence value as an employee identifier, e.g. 7 -> EMP00007.
func FormatEmployeeID(seq int64) string {
	return fmt.Sprintf("EMP%05d", seq)
}
