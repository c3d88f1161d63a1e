package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
)

type sweepStore interface {
	ListBreachCandidates(ctx context.Context, now time.Time, limit int) ([]models.Grievance, error)
	MarkBreached(ctx context.Context, id string, now time.Time, event *models.GrievanceEvent) (bool, error)
}

// SweepOptions configures the periodic breach sweep.
type SweepOptions struct {
	Interval  time.Duration
	BatchSize int
}

// SweepService is the periodic batch process that finds grievances past
// deadline and marks them breached, one SLA_BREACHED ledger entry each.
// Best-effort: failures are logged and retried naturally on the next run.
type SweepService struct {
	repo    sweepStore
	logger  *zap.Logger
	metrics *MetricsService
	opts    SweepOptions

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweepService constructs the service.
func NewSweepService(repo sweepStore, opts SweepOptions, logger *zap.Logger, metrics *MetricsService) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &SweepService{repo: repo, logger: logger, metrics: metrics, opts: opts}
}

// RunOnce executes a single sweep pass at the given instant and returns how
// many grievances were marked breached. The sla_status guard inside
// MarkBreached makes concurrent passes skip rather than double-process.
func (s *SweepService) RunOnce(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.repo.ListBreachCandidates(ctx, now, s.opts.BatchSize)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to query breach candidates")
	}

	marked := 0
	for i := range candidates {
		g := &candidates[i]
		overdue := now.Sub(g.SLADeadlineAt)
		payload := models.BreachPayload{
			DeadlineAt: g.SLADeadlineAt,
			OverdueBy:  formatOverdue(overdue),
		}
		event, err := models.NewGrievanceEvent(g.ID, models.SystemActor, payload, now)
		if err != nil {
			s.logger.Error("sweep: build breach event failed", zap.String("grievance_id", g.ID), zap.Error(err))
			continue
		}
		ok, err := s.repo.MarkBreached(ctx, g.ID, now, event)
		if err != nil {
			// Log and skip; the next scheduled run re-finds this grievance.
			s.logger.Error("sweep: mark breached failed", zap.String("grievance_id", g.ID), zap.Error(err))
			continue
		}
		if ok {
			marked++
			if s.metrics != nil {
				s.metrics.ObserveBreach()
			}
		}
	}

	if marked > 0 {
		s.logger.Info("sla sweep completed", zap.Int("marked_breached", marked), zap.Int("candidates", len(candidates)))
	}
	return marked, nil
}

// Start launches the ticker loop. Safe to call once; Stop ends it.
func (s *SweepService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx, time.Now().UTC()); err != nil {
					s.logger.Error("sla sweep run failed", zap.Error(err))
				}
			}
		}
	}()
	s.logger.Info("sla sweep scheduled", zap.Duration("interval", s.opts.Interval), zap.Int("batch_size", s.opts.BatchSize))
}

// Stop halts the ticker loop and waits for the in-flight pass to finish.
func (s *SweepService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func formatOverdue(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	return fmt.Sprintf("%dd%dh", days, hours)
}
