package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
)

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deadline time.Time
		want     models.SLAStatus
	}{
		{"deadline equal to now is breached", now, models.SLABreached},
		{"deadline in the past is breached", now.Add(-time.Second), models.SLABreached},
		{"one second before the 24h threshold is at risk", now.Add(24*time.Hour - time.Second), models.SLAAtRisk},
		{"one hour left is at risk", now.Add(time.Hour), models.SLAAtRisk},
		{"exactly 24h left is on track", now.Add(24 * time.Hour), models.SLAOnTrack},
		{"seven days left is on track", now.Add(7 * 24 * time.Hour), models.SLAOnTrack},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.deadline, now))
		})
	}
}

func TestComputeOverdueMagnitude(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(-(2*24*time.Hour + 5*time.Hour))

	snap := Compute(deadline, 7*24*time.Hour, now)
	assert.Equal(t, models.SLABreached, snap.Status)
	assert.Equal(t, 2, snap.OverdueDays)
	assert.Equal(t, 5, snap.OverdueHours)
	assert.Equal(t, 100, snap.ProgressPercent)
}

func TestComputeProgressClamped(t *testing.T) {
	window := 7 * 24 * time.Hour
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	deadline := created.Add(window)

	halfway := Compute(deadline, window, created.Add(window/2))
	assert.Equal(t, 50, halfway.ProgressPercent)
	assert.Equal(t, models.SLAOnTrack, halfway.Status)

	beforeStart := Compute(deadline, window, created.Add(-time.Hour))
	assert.Equal(t, 0, beforeStart.ProgressPercent)

	past := Compute(deadline, window, created.Add(2*window))
	assert.Equal(t, 100, past.ProgressPercent)
	assert.Zero(t, Compute(deadline, 0, created).ProgressPercent)
}

func TestComputeAtRiskEndToEndWindow(t *testing.T) {
	// Grievance filed at T0 with a 7 day window must read at_risk at
	// T0+6d23h and breached after the deadline passes.
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := t0.Add(7 * 24 * time.Hour)

	assert.Equal(t, models.SLAAtRisk, Classify(deadline, t0.Add(6*24*time.Hour+23*time.Hour)))
	assert.Equal(t, models.SLABreached, Classify(deadline, t0.Add(7*24*time.Hour+time.Hour)))
}

func TestExtendDeadlineNeverShortens(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	far := now.Add(10 * 24 * time.Hour)
	assert.Equal(t, far, ExtendDeadline(far, now, 72*time.Hour))

	near := now.Add(time.Hour)
	assert.Equal(t, now.Add(72*time.Hour), ExtendDeadline(near, now, 72*time.Hour))

	past := now.Add(-time.Hour)
	assert.Equal(t, now.Add(72*time.Hour), ExtendDeadline(past, now, 72*time.Hour))
}
