package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type mockSupportStore struct {
	addCount   int
	addErr     error
	addedEvent *models.GrievanceEvent
	removed    []string
	removeErr  error
}

func (m *mockSupportStore) Add(ctx context.Context, signal *models.SupportSignal, event *models.GrievanceEvent) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.addedEvent = event
	return m.addCount, nil
}

func (m *mockSupportStore) Remove(ctx context.Context, grievanceID, citizenID string) (int, error) {
	if m.removeErr != nil {
		return 0, m.removeErr
	}
	m.removed = append(m.removed, citizenID)
	return m.addCount - 1, nil
}

func newSupportService(repo *mockSupportStore, store *mockGrievanceStore) *SupportService {
	svc := NewSupportService(repo, store, nil, nil)
	svc.now = fixedNow
	return svc
}

func TestSupportServiceAdd(t *testing.T) {
	repo := &mockSupportStore{addCount: 3}
	store := &mockGrievanceStore{}
	svc := newSupportService(repo, store)
	g := seedGrievance(store, models.StatusInProgress)
	g.SupportCount = 2

	count, err := svc.Add(context.Background(),
		models.Actor{ID: "citizen-2", Role: models.RoleCitizen}, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NotNil(t, repo.addedEvent)
	assert.Equal(t, models.EventSupportAdded, repo.addedEvent.Type)
	assert.Equal(t, "citizen-2", repo.addedEvent.ActorID)
}

func TestSupportServiceAddRejections(t *testing.T) {
	repo := &mockSupportStore{addCount: 1}
	store := &mockGrievanceStore{}
	svc := newSupportService(repo, store)
	g := seedGrievance(store, models.StatusInProgress)

	_, err := svc.Add(context.Background(), models.Actor{}, g.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Add(context.Background(), models.Actor{ID: "officer-1", Role: models.RoleOfficer}, g.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden), "support is a citizen-only signal")

	_, err = svc.Add(context.Background(), models.Actor{ID: "citizen-1", Role: models.RoleCitizen}, g.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden), "owners cannot support their own filing")

	g.Privacy = models.PrivacyPrivate
	_, err = svc.Add(context.Background(), models.Actor{ID: "citizen-2", Role: models.RoleCitizen}, g.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestSupportServiceAddDuplicateIsConflict(t *testing.T) {
	repo := &mockSupportStore{addErr: appErrors.Clone(appErrors.ErrConflict, "grievance already supported")}
	store := &mockGrievanceStore{}
	svc := newSupportService(repo, store)
	seedGrievance(store, models.StatusInProgress)

	_, err := svc.Add(context.Background(),
		models.Actor{ID: "citizen-2", Role: models.RoleCitizen}, "JM-2025-000001")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestSupportServiceRemove(t *testing.T) {
	repo := &mockSupportStore{addCount: 3}
	store := &mockGrievanceStore{}
	svc := newSupportService(repo, store)
	seedGrievance(store, models.StatusInProgress)

	count, err := svc.Remove(context.Background(),
		models.Actor{ID: "citizen-2", Role: models.RoleCitizen}, "JM-2025-000001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"citizen-2"}, repo.removed)
}

func TestSupportServiceRemoveMissingIsNotFound(t *testing.T) {
	repo := &mockSupportStore{removeErr: appErrors.Clone(appErrors.ErrNotFound, "support signal not found")}
	store := &mockGrievanceStore{}
	svc := newSupportService(repo, store)
	seedGrievance(store, models.StatusInProgress)

	_, err := svc.Remove(context.Background(),
		models.Actor{ID: "citizen-2", Role: models.RoleCitizen}, "JM-2025-000001")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
