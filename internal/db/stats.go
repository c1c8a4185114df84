package db

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-manager/internal/types"
)

func (db *DB) groupCount(ctx context.Context, query string) ([]types.KeyCount, error) {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []types.KeyCount{}
	for rows.Next() {
		var kc types.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, kc)
	}
	return counts, rows.Err()
}

// JobStats counts requisitions by status and department.
func (db *DB) JobStats(ctx context.Context) (*types.JobStats, error) {
	var s types.JobStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'active'),
		        COUNT(*) FILTER (WHERE status = 'draft'),
		        COUNT(*) FILTER (WHERE status = 'closed'),
		        COUNT(*) FILTER (WHERE status = 'on-hold'),
		        COALESCE(SUM(openings) FILTER (WHERE status = 'active'), 0),
		        (SELECT COUNT(*) FROM candidates)
		 FROM jobs`,
	).Scan(&s.Total, &s.Active, &s.Draft, &s.Closed, &s.OnHold, &s.TotalOpenings, &s.TotalApplications)
	if err != nil {
		return nil, fmt.Errorf("failed to compute job stats: %w", err)
	}

	if s.ByDepartment, err = db.groupCount(ctx,
		`SELECT department, COUNT(*) FROM jobs GROUP BY department ORDER BY COUNT(*) DESC, department`,
	); err != nil {
		return nil, fmt.Errorf("failed to count jobs by department: %w", err)
	}
	return &s, nil
}

// CandidateStats counts applications by status and source and averages the fit score.
func (db *DB) CandidateStats(ctx context.Context) (*types.CandidateStats, error) {
	var s types.CandidateStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'hired'),
		        COALESCE(ROUND(AVG(fit_score), 1), 0)::float8
		 FROM candidates`,
	).Scan(&s.Total, &s.Hired, &s.AverageFitScore)
	if err != nil {
		return nil, fmt.Errorf("failed to compute candidate stats: %w", err)
	}

	if s.ByStatus, err = db.groupCount(ctx,
		`SELECT status, COUNT(*) FROM candidates GROUP BY status ORDER BY COUNT(*) DESC, status`,
	); err != nil {
		return nil, fmt.Errorf("failed to count candidates by status: %w", err)
	}
	if s.BySource, err = db.groupCount(ctx,
		`SELECT source, COUNT(*) FROM candidates GROUP BY source ORDER BY COUNT(*) DESC, source`,
	); err != nil {
		return nil, fmt.Errorf("failed to count candidates by source: %w", err)
	}
	return &s, nil
}

// OnboardingStats counts records by overall status and averages completion.
func (db *DB) OnboardingStats(ctx context.Context) (*types.OnboardingStats, error) {
	var s types.OnboardingStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE overall_status = 'not_started'),
		        COUNT(*) FILTER (WHERE overall_status = 'in_progress'),
		        COUNT(*) FILTER (WHERE overall_status = 'completed'),
		        COALESCE(ROUND(AVG(completion_percentage), 1), 0)::float8
		 FROM onboarding_records`,
	).Scan(&s.Total, &s.NotStarted, &s.InProgress, &s.Completed, &s.AverageCompletion)
	if err != nil {
		return nil, fmt.Errorf("failed to compute onboarding stats: %w", err)
	}
	return &s, nil
}
