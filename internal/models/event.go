package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// EventType enumerates every action the ledger can record.
type EventType string

const (
	EventComplaintFiled      EventType = "COMPLAINT_FILED"
	EventRoutedToDepartment  EventType = "ROUTED_TO_DEPARTMENT"
	EventOfficerAssigned     EventType = "OFFICER_ASSIGNED"
	EventOfficerAcknowledged EventType = "OFFICER_ACKNOWLEDGED"
	EventUpdateProvided      EventType = "UPDATE_PROVIDED"
	EventProofSubmitted      EventType = "PROOF_SUBMITTED"
	EventDelayReported       EventType = "DELAY_REPORTED"
	EventEscalated           EventType = "ESCALATED"
	EventComplaintClosed     EventType = "COMPLAINT_CLOSED"
	EventFinalClosed         EventType = "FINAL_CLOSED"
	EventReopened            EventType = "REOPENED"
	EventCitizenFeedback     EventType = "CITIZEN_FEEDBACK"
	EventSupportAdded        EventType = "SUPPORT_ADDED"
	EventSLABreached         EventType = "SLA_BREACHED"
	EventOverride            EventType = "OVERRIDE"
)

// Valid reports whether the event type belongs to the closed set.
func (t EventType) Valid() bool {
	switch t {
	case EventComplaintFiled, EventRoutedToDepartment, EventOfficerAssigned,
		EventOfficerAcknowledged, EventUpdateProvided, EventProofSubmitted,
		EventDelayReported, EventEscalated, EventComplaintClosed, EventFinalClosed,
		EventReopened, EventCitizenFeedback, EventSupportAdded, EventSLABreached,
		EventOverride:
		return true
	default:
		return false
	}
}

// EventForStatus maps a lifecycle status to its canonical ledger event type.
// The switch is exhaustive over the status set; an unknown status yields an
// error rather than a silent generic event.
func EventForStatus(status GrievanceStatus) (EventType, error) {
	switch status {
	case StatusSubmitted:
		return EventComplaintFiled, nil
	case StatusRouted:
		return EventRoutedToDepartment, nil
	case StatusAssigned:
		return EventOfficerAssigned, nil
	case StatusAcknowledged:
		return EventOfficerAcknowledged, nil
	case StatusInProgress:
		return EventUpdateProvided, nil
	case StatusEscalated:
		return EventEscalated, nil
	case StatusClosed:
		return EventComplaintClosed, nil
	case StatusReopened:
		return EventReopened, nil
	case StatusFinalClosed:
		return EventFinalClosed, nil
	}
	return "", fmt.Errorf("no ledger event mapped for status %q", status)
}

// EventPayload is the tagged union carried by a ledger entry. Each variant
// belongs to one event type; the type tag travels on the event row itself.
type EventPayload interface {
	PayloadType() EventType
}

// StatusChangePayload accompanies transition events.
type StatusChangePayload struct {
	Status                  GrievanceStatus `json:"status"`
	Note                    string          `json:"note,omitempty"`
	EstimatedResolutionDate *time.Time      `json:"estimated_resolution_date,omitempty"`
	Type                    EventType       `json:"-"`
}

func (p StatusChangePayload) PayloadType() EventType { return p.Type }

// NotePayload accompanies non-transition commentary events such as citizen
// feedback, officer proof and delay notes.
type NotePayload struct {
	Note        string    `json:"note"`
	Attachments []string  `json:"attachments,omitempty"`
	Type        EventType `json:"-"`
}

func (p NotePayload) PayloadType() EventType { return p.Type }

// ReopenPayload accompanies a citizen reopen request.
type ReopenPayload struct {
	Reason      string `json:"reason"`
	ReopenCount int    `json:"reopen_count"`
}

func (p ReopenPayload) PayloadType() EventType { return EventReopened }

// SupportPayload accompanies support-signal events.
type SupportPayload struct {
	SupportCount int `json:"support_count"`
}

func (p SupportPayload) PayloadType() EventType { return EventSupportAdded }

// BreachPayload accompanies sweep-generated breach events.
type BreachPayload struct {
	DeadlineAt time.Time `json:"deadline_at"`
	OverdueBy  string    `json:"overdue_by"`
}

func (p BreachPayload) PayloadType() EventType { return EventSLABreached }

// OverridePayload accompanies system-admin override events.
type OverridePayload struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (p OverridePayload) PayloadType() EventType { return EventOverride }

// GrievanceEvent is an immutable ledger entry. Once created it is never
// mutated or removed; the ledger ordered by (created_at, seq) is the
// authoritative history of its grievance.
type GrievanceEvent struct {
	ID          string          `db:"id" json:"id"`
	Seq         int64           `db:"seq" json:"seq"`
	GrievanceID string          `db:"grievance_id" json:"grievance_id"`
	Type        EventType       `db:"event_type" json:"event_type"`
	ActorID     string          `db:"actor_id" json:"actor_id"`
	ActorRole   Role            `db:"actor_role" json:"actor_role"`
	Payload     json.RawMessage `db:"payload" json:"payload,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// NewGrievanceEvent builds a ledger entry with its deterministic ID. The ID
// is a digest over (grievance, type, instant) so an accidental duplicate
// create collides on the primary key instead of silently doubling history.
func NewGrievanceEvent(grievanceID string, actor Actor, payload EventPayload, at time.Time) (*GrievanceEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	at = at.UTC()
	return &GrievanceEvent{
		ID:          EventID(grievanceID, payload.PayloadType(), at),
		GrievanceID: grievanceID,
		Type:        payload.PayloadType(),
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Payload:     raw,
		CreatedAt:   at,
	}, nil
}

// EventID derives the deterministic ledger-entry identifier.
func EventID(grievanceID string, eventType EventType, at time.Time) string {
	sum := sha256.Sum256([]byte(grievanceID + "|" + string(eventType) + "|" + at.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
