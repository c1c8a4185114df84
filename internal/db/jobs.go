package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-manager/internal/types"
)

// -----------------------------------------------------------------------------
// Job Requisition Methods
// -----------------------------------------------------------------------------

const jobColumns = `j.id, j.title, j.department, j.location, j.employment_type, j.experience_level,
	j.description, j.requirements, j.responsibilities, j.skills, j.benefits,
	j.salary_min, j.salary_max, j.salary_currency, j.posting_type, j.status, j.openings,
	j.deadline, j.posted_by, j.hiring_manager,
	(SELECT COUNT(*) FROM candidates c WHERE c.job_id = j.id) AS applications_count,
	j.created_at, j.updated_at`

func scanJob(row pgx.Row) (*types.JobRequisition, error) {
	var j types.JobRequisition
	var requirements, responsibilities, skills, benefits []byte
	if err := row.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.EmploymentType, &j.ExperienceLevel,
		&j.Description, &requirements, &responsibilities, &skills, &benefits,
		&j.SalaryRange.Min, &j.SalaryRange.Max, &j.SalaryRange.Currency, &j.PostingType, &j.Status, &j.Openings,
		&j.Deadline, &j.PostedBy, &j.HiringManager, &j.ApplicationsCount,
		&j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}

	j.Requirements, j.Responsibilities, j.Skills, j.Benefits = []string{}, []string{}, []string{}, []string{}
	for _, f := range []struct {
		data []byte
		dst  *[]string
	}{
		{requirements, &j.Requirements},
		{responsibilities, &j.Responsibilities},
		{skills, &j.Skills},
		{benefits, &j.Benefits},
	} {
		if err := unmarshalJSONB(f.data, f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode job list column: %w", err)
		}
	}
	return &j, nil
}

type jobLists struct {
	requirements, responsibilities, skills, benefits []byte
}

func marshalJobLists(j *types.JobRequisition) (*jobLists, error) {
	var l jobLists
	var err error
	if l.requirements, err = jsonb(j.Requirements); err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}
	if l.responsibilities, err = jsonb(j.Responsibilities); err != nil {
		return nil, fmt.Errorf("failed to marshal responsibilities: %w", err)
	}
	if l.skills, err = jsonb(j.Skills); err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if l.benefits, err = jsonb(j.Benefits); err != nil {
		return nil, fmt.Errorf("failed to marshal benefits: %w", err)
	}
	return &l, nil
}

// CreateJob inserts a requisition and returns it as stored.
func (db *DB) CreateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error) {
	lists, err := marshalJobLists(j)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, department, location, employment_type, experience_level, description,
		                   requirements, responsibilities, skills, benefits,
		                   salary_min, salary_max, salary_currency, posting_type, status, openings,
		                   deadline, posted_by, hiring_manager)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id`,
		j.Title, j.Department, j.Location, j.EmploymentType, string(j.ExperienceLevel), j.Description,
		lists.requirements, lists.responsibilities, lists.skills, lists.benefits,
		j.SalaryRange.Min, j.SalaryRange.Max, j.SalaryRange.Currency, j.PostingType, string(j.Status), j.Openings,
		j.Deadline, j.PostedBy, j.HiringManager,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", mapConstraintError(err))
	}
	return db.GetJob(ctx, id)
}

// GetJob returns the requisition with id, or nil.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.JobRequisition, error) {
	j, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs returns one page of requisitions, newest first, and the number matching the filter.
func (db *DB) ListJobs(ctx context.Context, f JobFilter) ([]types.JobRequisition, int, error) {
	w := jobWhere(f)

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	suffix, args := w.paginate(f.Page)
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs j`+w.String()+` ORDER BY j.created_at DESC, j.id`+suffix,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.JobRequisition{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, total, nil
}

// UpdateJob writes every editable column of j. The experience level is never written.
// It returns nil when the job does not exist.
func (db *DB) UpdateJob(ctx context.Context, j *types.JobRequisition) (*types.JobRequisition, error) {
	lists, err := marshalJobLists(j)
	if err != nil {
		return nil, err
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, department = $3, location = $4, employment_type = $5, description = $6,
		                 requirements = $7, responsibilities = $8, skills = $9, benefits = $10,
		                 salary_min = $11, salary_max = $12, salary_currency = $13, posting_type = $14,
		                 status = $15, openings = $16, deadline = $17, hiring_manager = $18,
		                 updated_at = NOW()
		 WHERE id = $1`,
		j.ID, j.Title, j.Department, j.Location, j.EmploymentType, j.Description,
		lists.requirements, lists.responsibilities, lists.skills, lists.benefits,
		j.SalaryRange.Min, j.SalaryRange.Max, j.SalaryRange.Currency, j.PostingType,
		string(j.Status), j.Openings, j.Deadline, j.HiringManager,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return db.GetJob(ctx, j.ID)
}

// DeleteJob removes a requisition. It reports false when none existed and ErrInUse when
// candidates still reference it.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", mapConstraintError(err))
	}
	return tag.RowsAffected() > 0, nil
}
