package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type mockEventStore struct {
	inserted  []*models.GrievanceEvent
	insertErr error
	events    []models.GrievanceEvent
}

func (m *mockEventStore) Insert(ctx context.Context, event *models.GrievanceEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, event)
	return nil
}

func (m *mockEventStore) ListByGrievance(ctx context.Context, grievanceID string) ([]models.GrievanceEvent, error) {
	return m.events, nil
}

type recordingAnchorer struct {
	anchored []*models.GrievanceEvent
}

func (r *recordingAnchorer) Anchor(event *models.GrievanceEvent) {
	r.anchored = append(r.anchored, event)
}

func newLedgerService(events *mockEventStore, store *mockGrievanceStore, anchor Anchorer) *LedgerService {
	svc := NewLedgerService(events, store, anchor, nil, nil)
	svc.now = fixedNow
	return svc
}

func TestAppendEventCitizenFeedback(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	anchor := &recordingAnchorer{}
	svc := newLedgerService(events, store, anchor)
	seedGrievance(store, models.StatusInProgress)

	ev, err := svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "CITIZEN_FEEDBACK", Note: "thanks for the quick response"})
	require.NoError(t, err)

	assert.Equal(t, models.EventCitizenFeedback, ev.Type)
	assert.Equal(t, models.EventID("JM-2025-000001", models.EventCitizenFeedback, fixedNow()), ev.ID)
	require.Len(t, events.inserted, 1)
	require.Len(t, anchor.anchored, 1)
	assert.Equal(t, ev.ID, anchor.anchored[0].ID)

	var payload models.NotePayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "thanks for the quick response", payload.Note)
}

func TestAppendEventRejections(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)
	seedGrievance(store, models.StatusInProgress)

	_, err := svc.AppendEvent(context.Background(), models.Actor{}, "JM-2025-000001",
		AppendEventRequest{EventType: "CITIZEN_FEEDBACK"})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	actor := models.Actor{ID: "citizen-1", Role: models.RoleCitizen}

	_, err = svc.AppendEvent(context.Background(), actor, "JM-2025-000001", AppendEventRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AppendEvent(context.Background(), actor, "JM-2025-000001",
		AppendEventRequest{EventType: "STATUS_UPDATED"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AppendEvent(context.Background(), actor, "JM-2025-000001",
		AppendEventRequest{EventType: "ESCALATED"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.AppendEvent(context.Background(),
		models.Actor{ID: "admin-1", Role: models.RoleDeptAdmin}, "JM-2025-000001",
		AppendEventRequest{EventType: "OVERRIDE", Reason: "cleanup"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	assert.Empty(t, events.inserted)
}

func TestAppendEventSystemAdminOverride(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)
	seedGrievance(store, models.StatusInProgress)

	ev, err := svc.AppendEvent(context.Background(),
		models.Actor{ID: "root-1", Role: models.RoleSystemAdmin}, "JM-2025-000001",
		AppendEventRequest{EventType: "OVERRIDE", Reason: "data correction", Detail: "wrong ward recorded"})
	require.NoError(t, err)
	assert.Equal(t, models.EventOverride, ev.Type)

	var payload models.OverridePayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "data correction", payload.Reason)
}

func TestAppendEventReopenedIncrementsCounter(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)
	seedGrievance(store, models.StatusClosed)

	ev, err := svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "REOPENED", Reason: "issue persists"})
	require.NoError(t, err)
	assert.Equal(t, models.EventReopened, ev.Type)

	// The counter bump rides the grievance update, not a bare insert.
	assert.Empty(t, events.inserted)
	require.Len(t, store.updated, 1)
	assert.Equal(t, 1, store.items["JM-2025-000001"].ReopenCount)

	var payload models.ReopenPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, 1, payload.ReopenCount)
}

func TestAppendEventEnforcesReadPolicy(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)
	g := seedGrievance(store, models.StatusInProgress)
	g.Privacy = models.PrivacyPrivate

	stranger := models.Actor{ID: "citizen-999", Role: models.RoleCitizen}

	_, err := svc.AppendEvent(context.Background(), stranger, "JM-2025-000001",
		AppendEventRequest{EventType: "CITIZEN_FEEDBACK", Note: "n"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, events.inserted)

	// Staff read private grievances, so an officer note still lands.
	_, err = svc.AppendEvent(context.Background(),
		models.Actor{ID: "officer-1", Role: models.RoleOfficer}, "JM-2025-000001",
		AppendEventRequest{EventType: "UPDATE_PROVIDED", Note: "site visited"})
	require.NoError(t, err)
	assert.Len(t, events.inserted, 1)
}

func TestAppendEventReopenedRejections(t *testing.T) {
	events := &mockEventStore{}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)

	// A stranger cannot request a reopen on someone else's closed grievance.
	seedGrievance(store, models.StatusClosed)
	_, err := svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-999", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "REOPENED", Reason: "r"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	// The filer cannot reopen a grievance that is still open.
	seedGrievance(store, models.StatusInProgress)
	_, err = svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "REOPENED", Reason: "r"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	seedGrievance(store, models.StatusFinalClosed)
	_, err = svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "REOPENED", Reason: "r"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	assert.Empty(t, store.updated)
	assert.Equal(t, 0, store.items["JM-2025-000001"].ReopenCount)
}

func TestAppendEventDuplicateIsConflict(t *testing.T) {
	events := &mockEventStore{insertErr: appErrors.Clone(appErrors.ErrConflict, "duplicate ledger event")}
	store := &mockGrievanceStore{}
	anchor := &recordingAnchorer{}
	svc := newLedgerService(events, store, anchor)
	seedGrievance(store, models.StatusInProgress)

	_, err := svc.AppendEvent(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001",
		AppendEventRequest{EventType: "CITIZEN_FEEDBACK", Note: "n"})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, anchor.anchored)
}

func TestListEventsEnforcesReadPolicy(t *testing.T) {
	now := fixedNow()
	events := &mockEventStore{events: []models.GrievanceEvent{
		{ID: "ev-1", Type: models.EventComplaintFiled, CreatedAt: now.Add(-time.Hour)},
		{ID: "ev-2", Type: models.EventRoutedToDepartment, CreatedAt: now},
	}}
	store := &mockGrievanceStore{}
	svc := newLedgerService(events, store, nil)
	g := seedGrievance(store, models.StatusRouted)
	g.Privacy = models.PrivacyPrivate

	_, err := svc.ListEvents(context.Background(), models.Actor{}, "JM-2025-000001")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	got, err := svc.ListEvents(context.Background(),
		models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, "JM-2025-000001")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
