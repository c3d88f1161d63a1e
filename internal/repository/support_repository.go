package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

// SupportRepository manages support signals and the atomic pairing with the
// grievance support counter.
type SupportRepository struct {
	db     *sqlx.DB
	events *EventRepository
}

// NewSupportRepository constructs a new repository.
func NewSupportRepository(db *sqlx.DB, events *EventRepository) *SupportRepository {
	return &SupportRepository{db: db, events: events}
}

// Add inserts the signal row, bumps the counter and appends the ledger entry
// in one transaction. The composite primary key turns a duplicate add into a
// Conflict instead of an overwrite.
func (r *SupportRepository) Add(ctx context.Context, signal *models.SupportSignal, event *models.GrievanceEvent) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add support: %w", err)
	}
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}
	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO support_signals (grievance_id, citizen_id, created_at) VALUES (:grievance_id, :citizen_id, :created_at)",
		signal)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return 0, appErrors.Clone(appErrors.ErrConflict, "grievance already supported")
		}
		return 0, fmt.Errorf("add support signal: %w", err)
	}
	var count int
	err = tx.QueryRowxContext(ctx,
		"UPDATE grievances SET support_count = support_count + 1, updated_at = $1 WHERE id = $2 RETURNING support_count",
		signal.CreatedAt, signal.GrievanceID).Scan(&count)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("increment support count: %w", err)
	}
	if err := r.events.InsertTx(ctx, tx, event); err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add support: %w", err)
	}
	return count, nil
}

// Remove deletes the signal row and decrements the counter in one
// transaction. Removing a signal that does not exist is NotFound.
func (r *SupportRepository) Remove(ctx context.Context, grievanceID, citizenID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin remove support: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM support_signals WHERE grievance_id = $1 AND citizen_id = $2", grievanceID, citizenID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("remove support signal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("remove support signal: %w", err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return 0, appErrors.Clone(appErrors.ErrNotFound, "support signal not found")
	}
	var count int
	err = tx.QueryRowxContext(ctx,
		"UPDATE grievances SET support_count = support_count - 1, updated_at = $1 WHERE id = $2 AND support_count > 0 RETURNING support_count",
		time.Now().UTC(), grievanceID).Scan(&count)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("decrement support count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit remove support: %w", err)
	}
	return count, nil
}

// Exists reports whether the citizen already supports the grievance.
func (r *SupportRepository) Exists(ctx context.Context, grievanceID, citizenID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM support_signals WHERE grievance_id = $1 AND citizen_id = $2)",
		grievanceID, citizenID)
	if err != nil {
		return false, fmt.Errorf("check support signal: %w", err)
	}
	return exists, nil
}
