package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

const eventColumns = "id, seq, grievance_id, event_type, actor_id, actor_role, payload, created_at"

// uniqueViolation is the PostgreSQL class 23 code raised on primary-key
// collisions; for the ledger that means a duplicate deterministic event ID.
const uniqueViolation = "23505"

// EventRepository manages the append-only grievance ledger. It exposes no
// update or delete paths; entries are created once and read forever.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs a new repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends one ledger entry outside any enclosing transaction.
func (r *EventRepository) Insert(ctx context.Context, event *models.GrievanceEvent) error {
	return r.insert(ctx, r.db, event)
}

// InsertTx appends one ledger entry within the caller's transaction so the
// entry commits or rolls back together with the grievance mutation it pairs.
func (r *EventRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, event *models.GrievanceEvent) error {
	return r.insert(ctx, tx, event)
}

func (r *EventRepository) insert(ctx context.Context, ext sqlx.ExtContext, event *models.GrievanceEvent) error {
	const query = `INSERT INTO grievance_events (id, grievance_id, event_type, actor_id, actor_role, payload, created_at)
VALUES (:id, :grievance_id, :event_type, :actor_id, :actor_role, :payload, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, event); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "duplicate ledger event")
		}
		return fmt.Errorf("append ledger event %s: %w", event.Type, err)
	}
	return nil
}

// ListByGrievance returns the full ledger for one grievance in creation
// order; seq breaks timestamp ties so the order is total.
func (r *EventRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]models.GrievanceEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM grievance_events WHERE grievance_id = $1 ORDER BY created_at ASC, seq ASC", eventColumns)
	var events []models.GrievanceEvent
	if err := r.db.SelectContext(ctx, &events, query, grievanceID); err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	return events, nil
}

// CountByType aggregates ledger entries per event type.
func (r *EventRepository) CountByType(ctx context.Context) (map[models.EventType]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT event_type, COUNT(*) FROM grievance_events GROUP BY event_type")
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer rows.Close()
	out := make(map[models.EventType]int)
	for rows.Next() {
		var eventType models.EventType
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("count events by type: %w", err)
		}
		out[eventType] = count
	}
	return out, rows.Err()
}
