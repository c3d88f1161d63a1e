// Package sla provides the pure deadline arithmetic used by the grievance
// lifecycle: risk classification relative to an SLA deadline and the
// presentational progress snapshot.
package sla

import (
	"time"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
)

// AtRiskThreshold is how close to the deadline a grievance must be before it
// is classified at risk.
const AtRiskThreshold = 24 * time.Hour

// Classify returns the three-state risk classification of a deadline at the
// given instant. A deadline exactly at now is already breached.
func Classify(deadline, now time.Time) models.SLAStatus {
	diff := deadline.Sub(now)
	switch {
	case diff <= 0:
		return models.SLABreached
	case diff < AtRiskThreshold:
		return models.SLAAtRisk
	default:
		return models.SLAOnTrack
	}
}

// Snapshot is the read-side view of a grievance's SLA position.
type Snapshot struct {
	Status models.SLAStatus `json:"status"`
	// OverdueDays and OverdueHours split the overdue magnitude into whole
	// days plus remaining whole hours. Both are zero unless breached.
	OverdueDays  int `json:"overdue_days"`
	OverdueHours int `json:"overdue_hours"`
	// ProgressPercent is elapsed/window clamped to [0,100]. Presentational
	// only; classification is deadline-relative and never reads it.
	ProgressPercent int `json:"progress_percent"`
}

// Compute builds the snapshot for a deadline and the SLA window that was in
// force at creation.
func Compute(deadline time.Time, window time.Duration, now time.Time) Snapshot {
	snap := Snapshot{Status: Classify(deadline, now)}

	if snap.Status == models.SLABreached {
		overdue := now.Sub(deadline)
		snap.OverdueDays = int(overdue / (24 * time.Hour))
		snap.OverdueHours = int((overdue % (24 * time.Hour)) / time.Hour)
	}

	if window > 0 {
		elapsed := now.Sub(deadline.Add(-window))
		pct := int(elapsed * 100 / window)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		snap.ProgressPercent = pct
	}

	return snap
}

// ExtendDeadline applies the escalation extension: the deadline moves to
// now+extension, but never backwards. Escalation is the only transition
// allowed to touch the deadline.
func ExtendDeadline(current, now time.Time, extension time.Duration) time.Time {
	extended := now.Add(extension)
	if extended.Before(current) {
		return current
	}
	return extended
}
