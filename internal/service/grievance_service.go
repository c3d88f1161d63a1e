package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/policy"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/sla"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type grievanceStore interface {
	NextID(ctx context.Context, year int) (string, error)
	Create(ctx context.Context, g *models.Grievance, event *models.GrievanceEvent) error
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	List(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, int, error)
	UpdateWithEvent(ctx context.Context, g *models.Grievance, prevUpdatedAt time.Time, event *models.GrievanceEvent) error
}

type departmentRouter interface {
	RouteCategory(category models.Category) string
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// SubmitGrievanceRequest describes a new complaint filing.
type SubmitGrievanceRequest struct {
	Category    string   `json:"category" validate:"required"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	Ward        string   `json:"ward"`
	Pincode     string   `json:"pincode" validate:"omitempty,len=6,numeric"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Privacy     string   `json:"privacy" validate:"omitempty,oneof=public restricted private"`
}

// StatusChangeRequest carries a staff transition and its metadata.
type StatusChangeRequest struct {
	Status                  string     `json:"status" validate:"required"`
	Note                    string     `json:"note"`
	EstimatedResolutionDate *time.Time `json:"estimated_resolution_date"`
	OfficerID               string     `json:"officer_id"`
	DepartmentID            string     `json:"department_id"`
}

// ReopenRequest carries a citizen reopen.
type ReopenRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// SLAOptions carries the tunable durations of the lifecycle engine.
type SLAOptions struct {
	DefaultWindow       time.Duration
	EscalationExtension time.Duration
}

// GrievanceService owns the grievance lifecycle: submission, the status
// state machine, and the atomic pairing of every mutation with its ledger
// entry.
type GrievanceService struct {
	repo        grievanceStore
	departments departmentRouter
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	opts        SLAOptions
	now         func() time.Time
}

// NewGrievanceService constructs the service.
func NewGrievanceService(repo grievanceStore, departments departmentRouter, opts SLAOptions, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *GrievanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultWindow <= 0 {
		opts.DefaultWindow = 168 * time.Hour
	}
	if opts.EscalationExtension <= 0 {
		opts.EscalationExtension = 72 * time.Hour
	}
	return &GrievanceService{
		repo:        repo,
		departments: departments,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit files a new grievance: routes its category to a department, stamps
// the SLA deadline from the department's window, and writes the grievance
// plus its COMPLAINT_FILED ledger entry in one transaction.
func (s *GrievanceService) Submit(ctx context.Context, actor models.Actor, req SubmitGrievanceRequest) (*models.Grievance, error) {
	if actor.ID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if !policy.CanAuthorEvent(actor.Role, models.EventComplaintFiled) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot file grievances")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grievance payload")
	}

	now := s.now()
	category := models.NormalizeCategory(req.Category)
	departmentID := s.departments.RouteCategory(category)

	window := s.opts.DefaultWindow
	if dept, err := s.departments.FindByID(ctx, departmentID); err == nil && dept.SLAHours > 0 {
		window = dept.SLAWindow()
	}

	id, err := s.repo.NextID(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "could not allocate grievance id")
	}

	privacy := models.PrivacyLevel(req.Privacy)
	if privacy == "" {
		privacy = models.PrivacyPublic
	}

	g := &models.Grievance{
		ID:            id,
		Category:      category,
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		Ward:          req.Ward,
		Pincode:       req.Pincode,
		Lat:           req.Lat,
		Lng:           req.Lng,
		Privacy:       privacy,
		Status:        models.StatusSubmitted,
		SLADeadlineAt: now.Add(window),
		SLAStatus:     models.SLAOnTrack,
		CitizenID:     actor.ID,
		DepartmentID:  departmentID,
		SupportCount:  0,
		ReopenCount:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	event, err := models.NewGrievanceEvent(id, actor, models.StatusChangePayload{
		Status: models.StatusSubmitted,
		Type:   models.EventComplaintFiled,
	}, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build filing event")
	}

	if err := s.repo.Create(ctx, g, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grievance")
	}

	s.logger.Info("grievance filed",
		zap.String("grievance_id", g.ID),
		zap.String("category", string(g.Category)),
		zap.String("department_id", g.DepartmentID),
	)
	if s.metrics != nil {
		s.metrics.ObserveLedgerAppend(event.Type)
	}
	return g, nil
}

// Get loads one grievance, enforcing read policy.
func (s *GrievanceService) Get(ctx context.Context, actor models.Actor, id string) (*models.Grievance, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, g.CitizenID, g.Privacy) {
		return nil, appErrors.ErrForbidden
	}
	return g, nil
}

// GetSLA returns the clock snapshot for one grievance.
func (s *GrievanceService) GetSLA(ctx context.Context, actor models.Actor, id string) (*sla.Snapshot, error) {
	g, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	window := s.opts.DefaultWindow
	if dept, err := s.departments.FindByID(ctx, g.DepartmentID); err == nil && dept.SLAHours > 0 {
		window = dept.SLAWindow()
	}
	snap := sla.Compute(g.SLADeadlineAt, window, s.now())
	return &snap, nil
}

// List returns grievances the actor may see. Citizens see their own filings
// plus anything public; staff see everything matching the filter.
func (s *GrievanceService) List(ctx context.Context, actor models.Actor, filter models.GrievanceFilter) ([]models.Grievance, *models.Pagination, error) {
	if !policy.IsStaff(actor.Role) {
		if filter.CitizenID == "" || filter.CitizenID != actor.ID {
			filter.CitizenID = ""
			filter.PublicOnly = true
		}
	}
	grievances, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grievances")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return grievances, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ApplyStatusChange drives the state machine for staff actors. The grievance
// update and its ledger entry commit in one transaction; concurrent writers
// surface as Conflict.
func (s *GrievanceService) ApplyStatusChange(ctx context.Context, actor models.Actor, id string, req StatusChangeRequest) (*models.Grievance, *models.GrievanceEvent, error) {
	if actor.ID == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if !policy.IsStaff(actor.Role) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only staff may change grievance status")
	}
	if req.Status == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status is required")
	}
	newStatus := models.GrievanceStatus(req.Status)
	if !newStatus.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	g, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	// system_admin override authority bypasses adjacency, not the enum.
	if actor.Role != models.RoleSystemAdmin && !models.AllowedTransition(g.Status, newStatus) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status transition")
	}

	eventType, err := models.EventForStatus(newStatus)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unmapped status")
	}
	if !policy.CanAuthorEvent(actor.Role, eventType) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot author event type")
	}

	now := s.now()
	prevUpdatedAt := g.UpdatedAt
	g.Status = newStatus
	g.UpdatedAt = now

	switch {
	case newStatus.Terminal():
		g.ClosedAt = &now
		if now.Before(g.SLADeadlineAt) {
			g.SLAStatus = models.SLAOnTrack
		} else {
			g.SLAStatus = models.SLABreached
		}
	case newStatus == models.StatusEscalated:
		g.SLADeadlineAt = sla.ExtendDeadline(g.SLADeadlineAt, now, s.opts.EscalationExtension)
		g.SLAStatus = models.SLAOnTrack
	case newStatus == models.StatusReopened:
		g.ClosedAt = nil
		g.ReopenCount++
	}

	if newStatus == models.StatusAssigned && req.OfficerID != "" {
		officerID := req.OfficerID
		g.OfficerID = &officerID
	}
	if newStatus == models.StatusRouted && req.DepartmentID != "" {
		g.DepartmentID = req.DepartmentID
	}

	event, err := models.NewGrievanceEvent(g.ID, actor, models.StatusChangePayload{
		Status:                  newStatus,
		Note:                    req.Note,
		EstimatedResolutionDate: req.EstimatedResolutionDate,
		Type:                    eventType,
	}, now)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build transition event")
	}

	if err := s.repo.UpdateWithEvent(ctx, g, prevUpdatedAt, event); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return nil, nil, err
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply status change")
	}

	s.logger.Info("status changed",
		zap.String("grievance_id", g.ID),
		zap.String("status", string(newStatus)),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)
	if s.metrics != nil {
		s.metrics.ObserveTransition(newStatus)
		s.metrics.ObserveLedgerAppend(event.Type)
	}
	return g, event, nil
}

// Reopen is the citizen-facing re-entry into active handling. Only the owner
// of a closed grievance may reopen it; the grievance re-enters handling at
// in_progress, its reopen counter increments, and the REOPENED ledger entry
// commits with the status change.
func (s *GrievanceService) Reopen(ctx context.Context, actor models.Actor, id string, req ReopenRequest) (*models.Grievance, error) {
	if actor.ID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reason is required")
	}
	if !policy.CanAuthorEvent(actor.Role, models.EventReopened) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot author event type")
	}

	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.CitizenID != actor.ID && actor.Role != models.RoleSystemAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the filing citizen may reopen")
	}
	if g.Status != models.StatusClosed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only closed grievances can be reopened")
	}

	now := s.now()
	prevUpdatedAt := g.UpdatedAt
	g.Status = models.ReopenSuccessor
	g.ReopenCount++
	g.ClosedAt = nil
	g.UpdatedAt = now

	event, err := models.NewGrievanceEvent(g.ID, actor, models.ReopenPayload{
		Reason:      req.Reason,
		ReopenCount: g.ReopenCount,
	}, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build reopen event")
	}

	if err := s.repo.UpdateWithEvent(ctx, g, prevUpdatedAt, event); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reopen grievance")
	}

	s.logger.Info("grievance reopened",
		zap.String("grievance_id", g.ID),
		zap.Int("reopen_count", g.ReopenCount),
	)
	if s.metrics != nil {
		s.metrics.ObserveTransition(models.ReopenSuccessor)
		s.metrics.ObserveLedgerAppend(event.Type)
	}
	return g, nil
}

func (s *GrievanceService) load(ctx context.Context, id string) (*models.Grievance, error) {
	if !models.ValidGrievanceID(id) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "malformed grievance id")
	}
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grievance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grievance")
	}
	return g, nil
}
