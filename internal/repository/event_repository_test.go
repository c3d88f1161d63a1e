package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

func TestEventRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewEventRepository(db)
	now := time.Now().UTC()

	ev, err := models.NewGrievanceEvent("JM-2025-000001", models.Actor{ID: "officer-1", Role: models.RoleOfficer},
		models.NotePayload{Note: "crew dispatched", Type: models.EventUpdateProvided}, now)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryInsertDuplicateIsConflict(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewEventRepository(db)
	now := time.Now().UTC()

	ev, err := models.NewGrievanceEvent("JM-2025-000001", models.Actor{ID: "officer-1", Role: models.RoleOfficer},
		models.NotePayload{Note: "crew dispatched", Type: models.EventUpdateProvided}, now)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO grievance_events").
		WillReturnError(&pq.Error{Code: "23505"})

	err = repo.Insert(context.Background(), ev)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByGrievance(t *testing.T) {
	db, mock, cleanup := newGrievanceMock(t)
	defer cleanup()
	repo := NewEventRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "seq", "grievance_id", "event_type", "actor_id", "actor_role", "payload", "created_at"}).
		AddRow("ev-1", int64(1), "JM-2025-000001", "COMPLAINT_FILED", "citizen-1", "citizen", []byte(`{}`), now.Add(-2*time.Hour)).
		AddRow("ev-2", int64(2), "JM-2025-000001", "ROUTED_TO_DEPARTMENT", "admin-1", "dept_admin", []byte(`{}`), now.Add(-time.Hour)).
		AddRow("ev-3", int64(3), "JM-2025-000001", "OFFICER_ASSIGNED", "admin-1", "dept_admin", []byte(`{}`), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM grievance_events WHERE grievance_id (.+) ORDER BY created_at ASC, seq ASC").
		WithArgs("JM-2025-000001").
		WillReturnRows(rows)

	events, err := repo.ListByGrievance(context.Background(), "JM-2025-000001")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventComplaintFiled, events[0].Type)
	assert.Equal(t, models.EventRoutedToDepartment, events[1].Type)
	// Equal timestamps keep seq order.
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, int64(3), events[2].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
