package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type dashboardStats interface {
	CountByStatus(ctx context.Context) (map[models.GrievanceStatus]int, error)
	CountByCategory(ctx context.Context) (map[models.Category]int, error)
	BreachStats(ctx context.Context) (total, breached int, err error)
}

type departmentStats interface {
	HealthCounts(ctx context.Context) (map[models.DepartmentHealth]int, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardSummary is the public outcomes view.
type DashboardSummary struct {
	TotalGrievances   int                               `json:"total_grievances"`
	Breached          int                               `json:"breached"`
	BreachRatePercent int                               `json:"breach_rate_percent"`
	ByStatus          map[models.GrievanceStatus]int    `json:"by_status"`
	ByCategory        map[models.Category]int           `json:"by_category"`
	DepartmentHealth  map[models.DepartmentHealth]int   `json:"department_health"`
	GeneratedAt       time.Time                         `json:"generated_at"`
}

// DashboardService aggregates grievance outcomes for the public dashboard,
// serving from Redis when warm and from SQL otherwise.
type DashboardService struct {
	grievances  dashboardStats
	departments departmentStats
	cache       summaryCache
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(grievances dashboardStats, departments departmentStats, cache summaryCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		grievances:  grievances,
		departments: departments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the aggregate view, cached for the configured TTL.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		var cached DashboardSummary
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	byStatus, err := s.grievances.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate statuses")
	}
	byCategory, err := s.grievances.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate categories")
	}
	total, breached, err := s.grievances.BreachStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate breaches")
	}
	health, err := s.departments.HealthCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate department health")
	}

	summary := &DashboardSummary{
		TotalGrievances:  total,
		Breached:         breached,
		ByStatus:         byStatus,
		ByCategory:       byCategory,
		DepartmentHealth: health,
		GeneratedAt:      s.now(),
	}
	if total > 0 {
		summary.BreachRatePercent = breached * 100 / total
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}
