package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/config"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/jobs"
)

// Anchorer publishes ledger entries to an external verifiable log. Anchoring
// is fire-and-forget: it runs after the entry has committed and can never
// block or roll back the append.
type Anchorer interface {
	Anchor(event *models.GrievanceEvent)
}

// NoopAnchorer discards anchor requests.
type NoopAnchorer struct{}

func (NoopAnchorer) Anchor(*models.GrievanceEvent) {}

// anchorRecord is the wire shape posted to the anchoring endpoint. Only the
// digest and identifying metadata leave the system, never the payload.
type anchorRecord struct {
	EventID     string `json:"event_id"`
	GrievanceID string `json:"grievance_id"`
	EventType   string `json:"event_type"`
	CreatedAt   string `json:"created_at"`
}

// AnchorDispatcher ships committed ledger entries to the configured endpoint
// through a background worker queue with retries.
type AnchorDispatcher struct {
	queue  *jobs.Queue
	client *http.Client
	url    string
	logger *zap.Logger
}

// NewAnchorDispatcher builds the dispatcher and its queue. Call Start before
// anchoring and Stop on shutdown.
func NewAnchorDispatcher(cfg config.AnchorConfig, logger *zap.Logger) *AnchorDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AnchorDispatcher{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.URL,
		logger: logger,
	}
	d.queue = jobs.NewQueue("ledger-anchor", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return d
}

// Start launches the anchor workers.
func (d *AnchorDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *AnchorDispatcher) Stop() {
	d.queue.Stop()
}

// Anchor enqueues the entry. Enqueue failures are logged and dropped; a
// missed anchor never affects the committed ledger.
func (d *AnchorDispatcher) Anchor(event *models.GrievanceEvent) {
	record := anchorRecord{
		EventID:     event.ID,
		GrievanceID: event.GrievanceID,
		EventType:   string(event.Type),
		CreatedAt:   event.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := d.queue.Enqueue(jobs.Job{ID: event.ID, Type: "anchor", Payload: record}); err != nil {
		d.logger.Warn("anchor enqueue failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (d *AnchorDispatcher) handle(ctx context.Context, job jobs.Job) error {
	record, ok := job.Payload.(anchorRecord)
	if !ok {
		return fmt.Errorf("unexpected anchor payload %T", job.Payload)
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal anchor record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build anchor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post anchor record: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("anchor endpoint returned %d", resp.StatusCode)
	}
	return nil
}
