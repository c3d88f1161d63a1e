package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

const grievanceColumns = `id, category, title, description, address, ward, pincode, lat, lng, privacy, status,
sla_deadline_at, sla_status, citizen_id, department_id, officer_id, support_count, reopen_count,
created_at, updated_at, closed_at`

// GrievanceRepository manages persistence for grievances and the transactional
// pairing between grievance mutations and their ledger entries.
type GrievanceRepository struct {
	db     *sqlx.DB
	events *EventRepository
}

// NewGrievanceRepository constructs a new repository.
func NewGrievanceRepository(db *sqlx.DB, events *EventRepository) *GrievanceRepository {
	return &GrievanceRepository{db: db, events: events}
}

// NextID reserves the next tracking ID for the given year.
func (r *GrievanceRepository) NextID(ctx context.Context, year int) (string, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, "SELECT nextval('grievance_seq')"); err != nil {
		return "", fmt.Errorf("next grievance sequence: %w", err)
	}
	return models.FormatGrievanceID(year, seq), nil
}

// Create inserts a new grievance and its filing event in one transaction.
func (r *GrievanceRepository) Create(ctx context.Context, g *models.Grievance, event *models.GrievanceEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create grievance: %w", err)
	}
	const query = `INSERT INTO grievances (id, category, title, description, address, ward, pincode, lat, lng, privacy, status,
sla_deadline_at, sla_status, citizen_id, department_id, officer_id, support_count, reopen_count, created_at, updated_at, closed_at)
VALUES (:id, :category, :title, :description, :address, :ward, :pincode, :lat, :lng, :privacy, :status,
:sla_deadline_at, :sla_status, :citizen_id, :department_id, :officer_id, :support_count, :reopen_count, :created_at, :updated_at, :closed_at)`
	if _, err := tx.NamedExecContext(ctx, query, g); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create grievance: %w", err)
	}
	if err := r.events.InsertTx(ctx, tx, event); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create grievance: %w", err)
	}
	return nil
}

// FindByID loads one grievance.
func (r *GrievanceRepository) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	var g models.Grievance
	query := fmt.Sprintf("SELECT %s FROM grievances WHERE id = $1", grievanceColumns)
	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns grievances per provided filter.
func (r *GrievanceRepository) List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.CitizenID != "" {
		where = append(where, fmt.Sprintf("citizen_id = $%d", len(args)+1))
		args = append(args, filter.CitizenID)
	}
	if filter.DepartmentID != "" {
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.SLAStatus != "" {
		where = append(where, fmt.Sprintf("sla_status = $%d", len(args)+1))
		args = append(args, filter.SLAStatus)
	}
	if filter.PublicOnly {
		where = append(where, fmt.Sprintf("privacy = $%d", len(args)+1))
		args = append(args, models.PrivacyPublic)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf("SELECT %s FROM grievances WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		grievanceColumns, whereClause, size, offset)
	var grievances []models.Grievance
	if err := r.db.SelectContext(ctx, &grievances, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grievances: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM grievances WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grievances: %w", err)
	}
	return grievances, total, nil
}

// UpdateWithEvent persists changed grievance fields and appends exactly one
// ledger entry in the same transaction. The update is guarded on the
// grievance's previous updated_at: a concurrent writer makes the guard miss
// and the whole pair fails with Conflict, never a partial application.
func (r *GrievanceRepository) UpdateWithEvent(ctx context.Context, g *models.Grievance, prevUpdatedAt time.Time, event *models.GrievanceEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grievance update: %w", err)
	}
	const query = `UPDATE grievances SET status = :status, sla_deadline_at = :sla_deadline_at, sla_status = :sla_status,
officer_id = :officer_id, department_id = :department_id, reopen_count = :reopen_count,
updated_at = :updated_at, closed_at = :closed_at
WHERE id = :id AND updated_at = :prev_updated_at`
	arg := struct {
		models.Grievance
		PrevUpdatedAt time.Time `db:"prev_updated_at"`
	}{Grievance: *g, PrevUpdatedAt: prevUpdatedAt}
	res, err := tx.NamedExecContext(ctx, query, arg)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update grievance %s: %w", g.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update grievance %s: %w", g.ID, err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return appErrors.Clone(appErrors.ErrConflict, "grievance was modified concurrently")
	}
	if err := r.events.InsertTx(ctx, tx, event); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grievance update: %w", err)
	}
	return nil
}

// ListBreachCandidates returns grievances past deadline that have not yet
// been marked breached, bounded to limit rows.
func (r *GrievanceRepository) ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]models.Grievance, error) {
	query := fmt.Sprintf(`SELECT %s FROM grievances
WHERE sla_status != $1 AND status NOT IN ($2, $3) AND sla_deadline_at < $4
ORDER BY sla_deadline_at ASC LIMIT $5`, grievanceColumns)
	var grievances []models.Grievance
	err := r.db.SelectContext(ctx, &grievances, query,
		models.SLABreached, models.StatusClosed, models.StatusFinalClosed, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list breach candidates: %w", err)
	}
	return grievances, nil
}

// MarkBreached flips one grievance to breached and appends its SLA_BREACHED
// event in a single transaction. The sla_status guard doubles as the
// exclusion predicate for concurrent sweeps: an already-breached row is
// skipped, not double-processed.
func (r *GrievanceRepository) MarkBreached(ctx context.Context, id string, now time.Time, event *models.GrievanceEvent) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin mark breached: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE grievances SET sla_status = $1, updated_at = $2 WHERE id = $3 AND sla_status != $1`,
		models.SLABreached, now, id)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return false, fmt.Errorf("mark breached %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return false, fmt.Errorf("mark breached %s: %w", id, err)
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return false, nil
	}
	if err := r.events.InsertTx(ctx, tx, event); err != nil {
		tx.Rollback() //nolint:errcheck
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit mark breached: %w", err)
	}
	return true, nil
}

// CountByStatus aggregates grievance counts per lifecycle status.
func (r *GrievanceRepository) CountByStatus(ctx context.Context) (map[models.GrievanceStatus]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT status, COUNT(*) FROM grievances GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	out := make(map[models.GrievanceStatus]int)
	for rows.Next() {
		var status models.GrievanceStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("count by status: %w", err)
		}
		out[status] = count
	}
	return out, rows.Err()
}

// CountByCategory aggregates grievance counts per category.
func (r *GrievanceRepository) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT category, COUNT(*) FROM grievances GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()
	out := make(map[models.Category]int)
	for rows.Next() {
		var category models.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("count by category: %w", err)
		}
		out[category] = count
	}
	return out, rows.Err()
}

// BreachStats returns total and breached grievance counts.
func (r *GrievanceRepository) BreachStats(ctx context.Context) (total, breached int, err error) {
	row := r.db.QueryRowxContext(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE sla_status = $1) FROM grievances", models.SLABreached)
	if err := row.Scan(&total, &breached); err != nil {
		return 0, 0, fmt.Errorf("breach stats: %w", err)
	}
	return total, breached, nil
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
func IsNoRows(err error) bool {
	return err == sql.ErrNoRows
}
