package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/policy"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type eventStore interface {
	Insert(ctx context.Context, event *models.GrievanceEvent) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]models.GrievanceEvent, error)
}

type grievanceReader interface {
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	UpdateWithEvent(ctx context.Context, g *models.Grievance, prevUpdatedAt time.Time, event *models.GrievanceEvent) error
}

// AppendEventRequest describes a non-transition ledger append.
type AppendEventRequest struct {
	EventType   string     `json:"event_type"`
	Note        string     `json:"note"`
	Attachments []string   `json:"attachments"`
	Reason      string     `json:"reason"`
	Detail      string     `json:"detail"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// LedgerService reads and appends the grievance event ledger for events that
// do not drive status transitions: feedback, proof and delay notes, reopen
// requests, overrides.
type LedgerService struct {
	events     eventStore
	grievances grievanceReader
	anchor     Anchorer
	logger     *zap.Logger
	metrics    *MetricsService
	now        func() time.Time
}

// NewLedgerService constructs the service.
func NewLedgerService(events eventStore, grievances grievanceReader, anchor Anchorer, logger *zap.Logger, metrics *MetricsService) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if anchor == nil {
		anchor = NoopAnchorer{}
	}
	return &LedgerService{
		events:     events,
		grievances: grievances,
		anchor:     anchor,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListEvents returns the ordered ledger for a grievance, enforcing read
// policy against the grievance itself.
func (s *LedgerService) ListEvents(ctx context.Context, actor models.Actor, grievanceID string) ([]models.GrievanceEvent, error) {
	g, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, g.CitizenID, g.Privacy) {
		return nil, appErrors.ErrForbidden
	}
	events, err := s.events.ListByGrievance(ctx, grievanceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger events")
	}
	return events, nil
}

// AppendEvent validates and appends one role-gated ledger entry. No
// grievance field changes except the reopen counter, which a REOPENED
// request increments in the same transaction as its entry.
func (s *LedgerService) AppendEvent(ctx context.Context, actor models.Actor, grievanceID string, req AppendEventRequest) (*models.GrievanceEvent, error) {
	if actor.ID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if req.EventType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event type is required")
	}
	eventType := models.EventType(req.EventType)
	if !eventType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event type")
	}
	if !policy.CanAuthorEvent(actor.Role, eventType) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot author event type")
	}

	g, err := s.loadGrievance(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, g.CitizenID, g.Privacy) {
		return nil, appErrors.ErrForbidden
	}
	if eventType == models.EventReopened {
		if actor.Role != models.RoleSystemAdmin && g.CitizenID != actor.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the filer may request a reopen")
		}
		if g.Status != models.StatusClosed {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grievance is not closed")
		}
	}

	now := s.now()
	payload := payloadFor(eventType, req, g)
	event, err := models.NewGrievanceEvent(g.ID, actor, payload, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build ledger event")
	}

	if eventType == models.EventReopened {
		// A reopen request mutates exactly one grievance field; the counter
		// bump and the entry commit or fail together.
		prevUpdatedAt := g.UpdatedAt
		g.ReopenCount++
		g.UpdatedAt = now
		if err := s.grievances.UpdateWithEvent(ctx, g, prevUpdatedAt, event); err != nil {
			if appErrors.Is(err, appErrors.ErrConflict) {
				return nil, err
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record reopen request")
		}
	} else {
		if err := s.events.Insert(ctx, event); err != nil {
			if appErrors.Is(err, appErrors.ErrConflict) {
				return nil, err
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append ledger event")
		}
	}

	s.logger.Info("ledger event appended",
		zap.String("grievance_id", g.ID),
		zap.String("event_type", string(eventType)),
		zap.String("actor_role", string(actor.Role)),
	)
	if s.metrics != nil {
		s.metrics.ObserveLedgerAppend(eventType)
	}
	s.anchor.Anchor(event)
	return event, nil
}

func payloadFor(eventType models.EventType, req AppendEventRequest, g *models.Grievance) models.EventPayload {
	switch eventType {
	case models.EventReopened:
		return models.ReopenPayload{Reason: req.Reason, ReopenCount: g.ReopenCount + 1}
	case models.EventOverride:
		return models.OverridePayload{Reason: req.Reason, Detail: req.Detail}
	default:
		return models.NotePayload{Note: req.Note, Attachments: req.Attachments, Type: eventType}
	}
}

func (s *LedgerService) loadGrievance(ctx context.Context, id string) (*models.Grievance, error) {
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
