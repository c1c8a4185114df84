package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-manager/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

const candidateColumns = `c.id, c.first_name, c.last_name, c.email, c.phone, c.source,
	c.current_company, c.current_position, c.experience, c.skills, c.education, c.resume,
	c.cover_letter, c.job_id, c.status, c.notes, c.interviews, c.assigned_to,
	c.fit_score, c.scored_at, c.created_at, c.updated_at`

func scanCandidate(row pgx.Row) (*types.CandidateProfile, error) {
	var c types.CandidateProfile
	var skills, education, resume, notes, interviews []byte
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Source,
		&c.CurrentCompany, &c.CurrentPosition, &c.Experience, &skills, &education, &resume,
		&c.CoverLetter, &c.JobID, &c.Status, &notes, &interviews, &c.AssignedTo,
		&c.FitScore, &c.ScoredAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	c.Skills = []string{}
	c.Education = []types.Education{}
	c.Notes = []types.Note{}
	c.Interviews = []types.Interview{}
	if err := unmarshalJSONB(skills, &c.Skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	if err := unmarshalJSONB(education, &c.Education); err != nil {
		return nil, fmt.Errorf("failed to decode education: %w", err)
	}
	if err := unmarshalJSONB(resume, &c.Resume); err != nil {
		return nil, fmt.Errorf("failed to decode resume: %w", err)
	}
	if err := unmarshalJSONB(notes, &c.Notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	if err := unmarshalJSONB(interviews, &c.Interviews); err != nil {
		return nil, fmt.Errorf("failed to decode interviews: %w", err)
	}
	for i := range c.Interviews {
		c.Interviews[i].Status = c.Interviews[i].DeriveStatus()
	}
	return &c, nil
}

type candidateDocs struct {
	skills, education, resume, notes, interviews []byte
}

func marshalCandidateDocs(c *types.CandidateProfile) (*candidateDocs, error) {
	var d candidateDocs
	var err error
	if d.skills, err = jsonb(c.Skills); err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if d.education, err = jsonb(c.Education); err != nil {
		return nil, fmt.Errorf("failed to marshal education: %w", err)
	}
	if c.Resume != nil {
		if d.resume, err = jsonb(c.Resume); err != nil {
			return nil, fmt.Errorf("failed to marshal resume: %w", err)
		}
	}
	if d.notes, err = jsonb(c.Notes); err != nil {
		return nil, fmt.Errorf("failed to marshal notes: %w", err)
	}
	if d.interviews, err = jsonb(c.Interviews); err != nil {
		return nil, fmt.Errorf("failed to marshal interviews: %w", err)
	}
	return &d, nil
}

// CreateCandidate inserts an application, including its fit score, and returns it as stored.
func (db *DB) CreateCandidate(ctx context.Context, c *types.CandidateProfile) (*types.CandidateProfile, error) {
	docs, err := marshalCandidateDocs(c)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (first_name, last_name, email, phone, source, current_company,
		                         current_position, experience, skills, education, resume, cover_letter,
		                         job_id, status, notes, interviews, assigned_to, fit_score, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Source, c.CurrentCompany,
		c.CurrentPosition, c.Experience, docs.skills, docs.education, docs.resume, c.CoverLetter,
		c.JobID, string(c.Status), docs.notes, docs.interviews, c.AssignedTo, c.FitScore, c.ScoredAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", mapConstraintError(err))
	}
	return db.GetCandidate(ctx, id)
}

// GetCandidate returns the application with id, or nil.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns one page of applications, best fit first, and the number matching the filter.
func (db *DB) ListCandidates(ctx context.Context, f CandidateFilter) ([]types.CandidateProfile, int, error) {
	w := candidateWhere(f)

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates c`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	suffix, args := w.paginate(f.Page)
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates c`+w.String()+
			` ORDER BY c.fit_score DESC, c.created_at DESC, c.id`+suffix,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.CandidateProfile{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, total, nil
}

// UpdateCandidate writes the profile fields of c. The fit score and scored_at are written
// only when withScore is set, so an edit never clobbers a score stored by a concurrent
// rescore. Status, notes and interviews have their own methods. It returns nil when the
// candidate does not exist.
func (db *DB) UpdateCandidate(ctx context.Context, c *types.CandidateProfile, withScore bool) (*types.CandidateProfile, error) {
	docs, err := marshalCandidateDocs(c)
	if err != nil {
		return nil, err
	}

	query := `UPDATE candidates SET first_name = $2, last_name = $3, email = $4, phone = $5,
	                                current_company = $6, current_position = $7, experience = $8,
	                                skills = $9, education = $10, resume = $11, cover_letter = $12,
	                                assigned_to = $13, updated_at = NOW()`
	args := []any{
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.CurrentCompany, c.CurrentPosition, c.Experience,
		docs.skills, docs.education, docs.resume, c.CoverLetter,
		c.AssignedTo,
	}
	if withScore {
		query += `, fit_score = $14, scored_at = $15`
		args = append(args, c.FitScore, c.ScoredAt)
	}
	query += ` WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return db.GetCandidate(ctx, c.ID)
}

// UpdateCandidateScore stores a freshly computed fit score.
func (db *DB) UpdateCandidateScore(ctx context.Context, id uuid.UUID, score int, scoredAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE candidates SET fit_score = $2, scored_at = $3, updated_at = NOW() WHERE id = $1`,
		id, score, scoredAt)
	if err != nil {
		return fmt.Errorf("failed to update candidate score: %w", err)
	}
	return nil
}

// UpdateCandidateStatus moves a candidate from one status to another. It reports false when
// the candidate is no longer in status from, so a concurrent change is never overwritten.
func (db *DB) UpdateCandidateStatus(ctx context.Context, id uuid.UUID, from, to types.CandidateStatus) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update candidate status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AppendCandidateNote adds a note without rewriting the existing ones. It reports false
// when the candidate does not exist.
func (db *DB) AppendCandidateNote(ctx context.Context, id uuid.UUID, note types.Note) (bool, error) {
	data, err := jsonb([]types.Note{note})
	if err != nil {
		return false, fmt.Errorf("failed to marshal note: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET notes = notes || $2::jsonb, updated_at = NOW() WHERE id = $1`,
		id, data)
	if err != nil {
		return false, fmt.Errorf("failed to append note: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddCandidateInterview appends an interview and moves the candidate from status from to
// status to in one statement. It reports false when the candidate is missing or no longer in from.
func (db *DB) AddCandidateInterview(ctx context.Context, id uuid.UUID, interview types.Interview, from, to types.CandidateStatus) (bool, error) {
	data, err := jsonb([]types.Interview{interview})
	if err != nil {
		return false, fmt.Errorf("failed to marshal interview: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET interviews = interviews || $2::jsonb, status = $4, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, data, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to add interview: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteCandidate removes an application. It reports false when none existed and ErrInUse
// when an onboarding record references it.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", mapConstraintError(err))
	}
	return tag.RowsAffected() > 0, nil
}
