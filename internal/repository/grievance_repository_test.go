package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

func newGrievanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func grievanceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "category", "title", "description", "address", "ward", "pincode", "lat", "lng",
		"privacy", "status", "sla_deadline_at", "sla_status", "citizen_id", "department_id",
		"officer_id", "support_count", "reopen_count", "created_at", "updated_at", "closed_at",
	})
}

func sampleGrievance(now time.Time) *models.Grievance {
	return &models.Grievance{
		ID:            "JM-2025-000001",
		Category:      models.CategoryRoads,
		Title:         "Pothole on MG Road",
		Description:   "Large pothole near the bus stop",
		Address:       "MG Road, Ward 12",
		Privacy:       models.PrivacyPublic,
		Status:        models.StatusSubmitted,
		SLADeadlineAt: now.Add(168 * time.Hour),
		SLAStatus:     models.SLAOnTrack,
		CitizenID:     "citizen-1",
		DepartmentID:  "public-works",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func sampleEvent(t *testing.T, now time.Time) *models.GrievanceEvent {
	t.Helper()
	ev, err := models.NewGrievanceEvent("JM-2025-000001", models.Actor{ID: "citizen-1", Role: models.RoleCitizen},
		models.StatusChangePayload{Status: models.StatusSubmitted, Type: models.EventComplaintFiled}, now)
	require.NoError(t, err)
	return ev
}

func TestGrievanceRepositoryNextID(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))

	mock.ExpectQuery("SELECT nextval").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(42)))

	id, err := repo.NextID(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, "JM-2025-000042", id)
	assert.True(t, models.ValidGrievanceID(id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryCreatePairsFilingEvent(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO grievances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), sampleGrievance(now), sampleEvent(t, now))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryCreateRollsBackOnEventFailure(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO grievances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleGrievance(now), sampleEvent(t, now))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryUpdateWithEvent(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()
	g := sampleGrievance(now)
	g.Status = models.StatusRouted

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateWithEvent(context.Background(), g, now, sampleEvent(t, now))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryUpdateWithEventConflict(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateWithEvent(context.Background(), sampleGrievance(now), now, sampleEvent(t, now))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryUpdateWithEventRollsBackOnEventFailure(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.UpdateWithEvent(context.Background(), sampleGrievance(now), now, sampleEvent(t, now))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	rows := grievanceRows().AddRow(
		"JM-2025-000001", "roads", "Pothole on MG Road", "Large pothole near the bus stop",
		"MG Road, Ward 12", "", "", nil, nil, "public", "submitted",
		now.Add(168*time.Hour), "on_track", "citizen-1", "public-works",
		nil, 0, 0, now, now, nil)
	mock.ExpectQuery("SELECT (.+) FROM grievances WHERE id").
		WithArgs("JM-2025-000001").
		WillReturnRows(rows)

	g, err := repo.FindByID(context.Background(), "JM-2025-000001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, g.Status)
	assert.Equal(t, models.CategoryRoads, g.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))

	mock.ExpectQuery("SELECT (.+) FROM grievances WHERE id").
		WithArgs("JM-2025-999999").
		WillReturnRows(grievanceRows())

	_, err := repo.FindByID(context.Background(), "JM-2025-999999")
	require.Error(t, err)
	assert.True(t, IsNoRows(err))
}

func TestGrievanceRepositoryMarkBreached(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()
	ev, err := models.NewGrievanceEvent("JM-2025-000001", models.SystemActor,
		models.BreachPayload{DeadlineAt: now.Add(-2 * time.Hour), OverdueBy: "0d2h"}, now)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET sla_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	marked, err := repo.MarkBreached(context.Background(), "JM-2025-000001", now, ev)
	require.NoError(t, err)
	assert.True(t, marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryMarkBreachedSkipsAlreadyBreached(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()
	ev, err := models.NewGrievanceEvent("JM-2025-000001", models.SystemActor,
		models.BreachPayload{DeadlineAt: now.Add(-2 * time.Hour), OverdueBy: "0d2h"}, now)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grievances SET sla_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	marked, err := repo.MarkBreached(context.Background(), "JM-2025-000001", now, ev)
	require.NoError(t, err)
	assert.False(t, marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrievanceRepositoryListBreachCandidates(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewGrievanceRepository(db, NewEventRepository(db))
	now := time.Now().UTC()

	rows := grievanceRows().AddRow(
		"JM-2025-000007", "drainage", "Blocked drain", "Overflowing since last week",
		"Ward 3", "", "", nil, nil, "public", "in_progress",
		now.Add(-3*time.Hour), "at_risk", "citizen-2", "water-sanitation",
		nil, 2, 0, now.Add(-200*time.Hour), now.Add(-4*time.Hour), nil)
	mock.ExpectQuery("SELECT (.+) FROM grievances").
		WithArgs(string(models.SLABreached), string(models.StatusClosed), string(models.StatusFinalClosed), now, 100).
		WillReturnRows(rows)

	candidates, err := repo.ListBreachCandidates(context.Background(), now, 100)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "JM-2025-000007", candidates[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
