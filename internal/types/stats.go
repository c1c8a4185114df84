//nolint:revive // types is a standard Go package name pattern
package types

// KeyCount is one bucket of a grouped count
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// JobStats summarizes the requisitions.
type JobStats struct {
	Total             int        `json:"total"`
	Active            int        `json:"active"`
	Draft             int        `json:"draft"`
	Closed            int        `json:"closed"`
	OnHold            int        `json:"on_hold"`
	TotalOpenings     int        `json:"total_openings"`
	TotalApplications int        `json:"total_applications"`
	ByDepartment      []KeyCount `json:"by_department"`
}

// CandidateStats summarizes the applications.
type CandidateStats struct {
	Total           int        `json:"total"`
	ByStatus        []KeyCount `json:"by_status"`
	BySource        []KeyCount `json:"by_source"`
	AverageFitScore float64    `json:"average_fit_score"`
	Hired           int        `json:"hired"`
}

// OnboardingStats summarizes onboarding progress.
type OnboardingStats struct {
	Total             int     `json:"total"`
	NotStarted        int     `json:"not_started"`
	InProgress        int     `json:"in_progress"`
	Completed         int     `json:"completed"`
	AverageCompletion float64 `json:"average_completion"`
}

// DashboardStats aggregates every overview for the dashboard
type DashboardStats struct {
	Jobs       *JobStats        `json:"jobs"`
	Candidates *CandidateStats  `json:"candidates"`
	Onboarding *OnboardingStats `json:"onboarding"`
}

// ListResponse wraps a page of results with the unpaginated total.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
