// Package db provides PostgreSQL persistence for users, job requisitions, candidates and
// onboarding records.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Errors reported for constraint violations. Lookups that find nothing return (nil, nil).
var (
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse is returned when a row cannot be deleted because other rows reference it.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrChecklistItemNotFound is returned when a checklist item is not part of the record.
	ErrChecklistItemNotFound = errors.New("checklist item not found")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Reset deletes every row and restarts the employee ID sequence. Used by the seed command.
func (db *DB) Reset(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx,
		`TRUNCATE checklist_items, onboarding_records, candidates, jobs, users CASCADE`); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	if _, err := db.pool.Exec(ctx, `ALTER SEQUENCE employee_id_seq RESTART WITH 1`); err != nil {
		return fmt.Errorf("failed to restart employee id sequence: %w", err)
	}
	return nil
}

// mapConstraintError converts unique and foreign key violations into ErrDuplicate and ErrInUse.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

// jsonb marshals v for a JSONB column. Nil slices are stored as empty arrays.
func jsonb(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

// unmarshalJSONB decodes a JSONB column, ignoring NULL.
func unmarshalJSONB(data []byte, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}
