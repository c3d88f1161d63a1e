package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/policy"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type supportStore interface {
	Add(ctx context.Context, signal *models.SupportSignal, event *models.GrievanceEvent) (int, error)
	Remove(ctx context.Context, grievanceID, citizenID string) (int, error)
}

type supportGrievanceReader interface {
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
}

// SupportService handles citizen support signals: one-time endorsements
// whose add/remove atomically adjusts the grievance's support counter.
type SupportService struct {
	repo       supportStore
	grievances supportGrievanceReader
	logger     *zap.Logger
	metrics    *MetricsService
	now        func() time.Time
}

// NewSupportService constructs the service.
func NewSupportService(repo supportStore, grievances supportGrievanceReader, logger *zap.Logger, metrics *MetricsService) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{
		repo:       repo,
		grievances: grievances,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Add records one support signal. A second add for the same pair fails with
// Conflict and leaves the count untouched; owners cannot support their own
// grievance.
func (s *SupportService) Add(ctx context.Context, actor models.Actor, grievanceID string) (int, error) {
	if actor.ID == "" {
		return 0, appErrors.ErrUnauthorized
	}
	if !policy.CanAuthorEvent(actor.Role, models.EventSupportAdded) {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "role cannot author event type")
	}
	g, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return 0, err
	}
	if !policy.CanRead(actor, g.CitizenID, g.Privacy) {
		return 0, appErrors.ErrForbidden
	}
	if g.CitizenID == actor.ID {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "cannot support your own grievance")
	}

	now := s.now()
	event, err := models.NewGrievanceEvent(g.ID, actor, models.SupportPayload{SupportCount: g.SupportCount + 1}, now)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build support event")
	}

	count, err := s.repo.Add(ctx, &models.SupportSignal{
		GrievanceID: g.ID,
		CitizenID:   actor.ID,
		CreatedAt:   now,
	}, event)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return 0, err
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add support")
	}

	if s.metrics != nil {
		s.metrics.ObserveSupport("add")
		s.metrics.ObserveLedgerAppend(event.Type)
	}
	return count, nil
}

// Remove withdraws the actor's support signal; the counter decrements in the
// same transaction. Removing an absent signal is NotFound.
func (s *SupportService) Remove(ctx context.Context, actor models.Actor, grievanceID string) (int, error) {
	if actor.ID == "" {
		return 0, appErrors.ErrUnauthorized
	}
	g, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.Remove(ctx, g.ID, actor.ID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return 0, err
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove support")
	}

	if s.metrics != nil {
		s.metrics.ObserveSupport("remove")
	}
	return count, nil
}

func (s *SupportService) loadGrievance(ctx context.Context, id string) (*models.Grievance, error) {
	if !models.ValidGrievanceID(id) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "malformed grievance id")
	}
	g, err := s.grievances.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grievance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievance")
	}
	return g, nil
}
