package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/types"
)

// -----------------------------------------------------------------------------
// Onboarding Methods
// -----------------------------------------------------------------------------

const onboardingColumns = `o.id, o.candidate_id, o.employee_id, o.position, o.department, o.start_date,
	o.manager, o.buddy, o.orientation, o.documents, o.completion_percentage, o.overall_status,
	o.created_at, o.updated_at`

const checklistColumns = `id, task, description, assigned_to, status, due_date, completed_date, completed_by`

func scanOnboarding(row pgx.Row) (*types.OnboardingRecord, error) {
	var r types.OnboardingRecord
	var orientation, documents []byte
	if err := row.Scan(&r.ID, &r.CandidateID, &r.EmployeeID, &r.Position, &r.Department, &r.StartDate,
		&r.Manager, &r.Buddy, &orientation, &documents, &r.CompletionPercentage, &r.OverallStatus,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	r.Documents = []types.Document{}
	r.Checklist = []types.ChecklistItem{}
	if err := unmarshalJSONB(orientation, &r.Orientation); err != nil {
		return nil, fmt.Errorf("failed to decode orientation: %w", err)
	}
	if err := unmarshalJSONB(documents, &r.Documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return &r, nil
}

func scanChecklistItem(row pgx.Row) (*types.ChecklistItem, error) {
	var item types.ChecklistItem
	if err := row.Scan(&item.ID, &item.Task, &item.Description, &item.AssignedTo, &item.Status,
		&item.DueDate, &item.CompletedDate, &item.CompletedBy); err != nil {
		return nil, err
	}
	return &item, nil
}

func loadChecklist(ctx context.Context, q querier, onboardingID uuid.UUID) ([]types.ChecklistItem, error) {
	rows, err := q.Query(ctx,
		`SELECT `+checklistColumns+` FROM checklist_items WHERE onboarding_id = $1 ORDER BY position`,
		onboardingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist: %w", err)
	}
	defer rows.Close()

	items := []types.ChecklistItem{}
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist: %w", err)
	}
	return items, nil
}

func getOnboarding(ctx context.Context, q querier, id uuid.UUID) (*types.OnboardingRecord, error) {
	rec, err := scanOnboarding(q.QueryRow(ctx,
		`SELECT `+onboardingColumns+` FROM onboarding_records o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get onboarding record: %w", err)
	}

	if rec.Checklist, err = loadChecklist(ctx, q, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateOnboarding stores a record with its checklist in one transaction. The employee ID is
// drawn from the database sequence and the derived fields are recomputed from the checklist.
// A second record for the same candidate fails with ErrDuplicate.
func (db *DB) CreateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error) {
	onboarding.Apply(rec)

	var orientation []byte
	var err error
	if rec.Orientation != nil {
		if orientation, err = jsonb(rec.Orientation); err != nil {
			return nil, fmt.Errorf("failed to marshal orientation: %w", err)
		}
	}
	documents, err := jsonb(rec.Documents)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal documents: %w", err)
	}

	var created *types.OnboardingRecord
	err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('employee_id_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to allocate employee id: %w", err)
		}

		var id uuid.UUID
		if err := tx.QueryRow(ctx,
			`INSERT INTO onboarding_records (candidate_id, employee_id, position, department, start_date,
			                                 manager, buddy, orientation, documents,
			                                 completion_percentage, overall_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id`,
			rec.CandidateID, FormatEmployeeID(seq), rec.Position, rec.Department, rec.StartDate,
			rec.Manager, rec.Buddy, orientation, documents,
			rec.CompletionPercentage, string(rec.OverallStatus),
		).Scan(&id); err != nil {
			return mapConstraintError(err)
		}

		batch := &pgx.Batch{}
		for i, item := range rec.Checklist {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			batch.Queue(
				`INSERT INTO checklist_items (id, onboarding_id, position, task, description, assigned_to,
				                              status, due_date, completed_date, completed_by)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				item.ID, id, i, item.Task, item.Description, string(item.AssignedTo),
				string(item.Status), item.DueDate, item.CompletedDate, item.CompletedBy,
			)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("failed to insert checklist: %w", mapConstraintError(err))
			}
		}

		var err error
		created, err = getOnboarding(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create onboarding record: %w", err)
	}
	return created, nil
}

// GetOnboarding returns the record with id and its ordered checklist, or nil.
func (db *DB) GetOnboarding(ctx context.Context, id uuid.UUID) (*types.OnboardingRecord, error) {
	return getOnboarding(ctx, db.pool, id)
}

// GetOnboardingByCandidate returns the record for a candidate, or nil.
func (db *DB) GetOnboardingByCandidate(ctx context.Context, candidateID uuid.UUID) (*types.OnboardingRecord, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx, `SELECT id FROM onboarding_records WHERE candidate_id = $1`, candidateID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get onboarding by candidate: %w", err)
	}
	return db.GetOnboarding(ctx, id)
}

// ListOnboarding returns one page of records, most recent start date first, with their checklists.
func (db *DB) ListOnboarding(ctx context.Context, f OnboardingFilter) ([]types.OnboardingRecord, int, error) {
	w := onboardingWhere(f)

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM onboarding_records o`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count onboarding records: %w", err)
	}

	suffix, args := w.paginate(f.Page)
	rows, err := db.pool.Query(ctx,
		`SELECT `+onboardingColumns+` FROM onboarding_records o`+w.String()+
			` ORDER BY o.start_date DESC, o.id`+suffix,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list onboarding records: %w", err)
	}

	records := []types.OnboardingRecord{}
	index := map[uuid.UUID]int{}
	ids := []string{}
	for rows.Next() {
		rec, err := scanOnboarding(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan onboarding record: %w", err)
		}
		index[rec.ID] = len(records)
		ids = append(ids, rec.ID.String())
		records = append(records, *rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating onboarding records: %w", err)
	}
	if len(records) == 0 {
		return records, total, nil
	}

	itemRows, err := db.pool.Query(ctx,
		`SELECT onboarding_id, `+checklistColumns+` FROM checklist_items
		 WHERE onboarding_id = ANY($1::text[]::uuid[])
		 ORDER BY onboarding_id, position`,
		ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load checklists: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var onboardingID uuid.UUID
		var item types.ChecklistItem
		if err := itemRows.Scan(&onboardingID, &item.ID, &item.Task, &item.Description, &item.AssignedTo,
			&item.Status, &item.DueDate, &item.CompletedDate, &item.CompletedBy); err != nil {
			return nil, 0, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		i := index[onboardingID]
		records[i].Checklist = append(records[i].Checklist, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating checklist items: %w", err)
	}
	return records, total, nil
}

// UpdateOnboarding writes the editable fields of rec. The checklist and derived fields are
// untouched. It returns nil when the record does not exist.
func (db *DB) UpdateOnboarding(ctx context.Context, rec *types.OnboardingRecord) (*types.OnboardingRecord, error) {
	var orientation []byte
	var err error
	if rec.Orientation != nil {
		if orientation, err = jsonb(rec.Orientation); err != nil {
			return nil, fmt.Errorf("failed to marshal orientation: %w", err)
		}
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE onboarding_records SET position = $2, department = $3, start_date = $4,
		                               manager = $5, buddy = $6, orientation = $7, updated_at = NOW()
		 WHERE id = $1`,
		rec.ID, rec.Position, rec.Department, rec.StartDate, rec.Manager, rec.Buddy, orientation)
	if err != nil {
		return nil, fmt.Errorf("failed to update onboarding record: %w", mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return db.GetOnboarding(ctx, rec.ID)
}

// UpdateChecklistItem applies fn to one checklist item while holding a row lock on the parent
// record, then recomputes and stores the record's derived fields from all item statuses.
// It returns nil when the record does not exist and ErrChecklistItemNotFound when the item
// is not part of it. An error from fn aborts the update.
func (db *DB) UpdateChecklistItem(ctx context.Context, onboardingID, itemID uuid.UUID, fn func(*types.ChecklistItem) error) (*types.OnboardingRecord, error) {
	var updated *types.OnboardingRecord
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM onboarding_records WHERE id = $1 FOR UPDATE`, onboardingID,
		).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to lock onboarding record: %w", err)
		}

		items, err := loadChecklist(ctx, tx, onboardingID)
		if err != nil {
			return err
		}
		item := onboarding.FindItem(items, itemID)
		if item == nil {
			return ErrChecklistItemNotFound
		}
		if err := fn(item); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE checklist_items SET status = $2, completed_date = $3, completed_by = $4 WHERE id = $1`,
			item.ID, string(item.Status), item.CompletedDate, item.CompletedBy,
		); err != nil {
			return fmt.Errorf("failed to update checklist item: %w", mapConstraintError(err))
		}

		progress := onboarding.Recompute(items)
		if _, err := tx.Exec(ctx,
			`UPDATE onboarding_records SET completion_percentage = $2, overall_status = $3, updated_at = NOW()
			 WHERE id = $1`,
			onboardingID, progress.Percentage, string(progress.Status),
		); err != nil {
			return fmt.Errorf("failed to store onboarding progress: %w", err)
		}

		updated, err = getOnboarding(ctx, tx, onboardingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddOnboardingDocument appends a submitted document. It returns nil when the record does not exist.
func (db *DB) AddOnboardingDocument(ctx context.Context, onboardingID uuid.UUID, doc types.Document) (*types.OnboardingRecord, error) {
	data, err := jsonb([]types.Document{doc})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE onboarding_records SET documents = documents || $2::jsonb, updated_at = NOW() WHERE id = $1`,
		onboardingID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to add document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return db.GetOnboarding(ctx, onboardingID)
}
