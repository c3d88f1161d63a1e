// Package policy holds the role- and ownership-based access rules consumed
// by the grievance services and read paths.
package policy

import (
	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
)

// IsStaff reports whether the role may drive general status transitions.
func IsStaff(role models.Role) bool {
	switch role {
	case models.RoleOfficer, models.RoleDeptAdmin, models.RoleSystemAdmin:
		return true
	default:
		return false
	}
}

// CanRead decides read access to a grievance. The owner and staff always
// see it; everyone else only when the grievance is public.
func CanRead(actor models.Actor, citizenID string, privacy models.PrivacyLevel) bool {
	if actor.ID != "" && actor.ID == citizenID {
		return true
	}
	if IsStaff(actor.Role) {
		return true
	}
	return privacy == models.PrivacyPublic
}

// roleEvents is the fixed role -> authorable event type table. An event type
// absent from a role's set is rejected; system_admin additionally holds the
// union of every role's set plus OVERRIDE.
var roleEvents = map[models.Role]map[models.EventType]struct{}{
	models.RoleCitizen: {
		models.EventComplaintFiled:  {},
		models.EventCitizenFeedback: {},
		models.EventSupportAdded:    {},
		models.EventReopened:        {},
	},
	models.RoleOfficer: {
		models.EventOfficerAcknowledged: {},
		models.EventUpdateProvided:      {},
		models.EventProofSubmitted:      {},
		models.EventDelayReported:       {},
		models.EventEscalated:           {},
		models.EventComplaintClosed:     {},
	},
	models.RoleDeptAdmin: {
		models.EventRoutedToDepartment: {},
		models.EventOfficerAssigned:    {},
		models.EventEscalated:          {},
		models.EventComplaintClosed:    {},
		models.EventFinalClosed:        {},
		models.EventReopened:           {},
	},
	models.RoleSystem: {
		models.EventSLABreached: {},
	},
}

// CanAuthorEvent reports whether the role may author the given event type.
// Unknown roles and unknown event types are both denied.
func CanAuthorEvent(role models.Role, eventType models.EventType) bool {
	if !eventType.Valid() {
		return false
	}
	if role == models.RoleSystemAdmin {
		return true
	}
	if eventType == models.EventOverride {
		return false
	}
	allowed, ok := roleEvents[role]
	if !ok {
		return false
	}
	_, ok = allowed[eventType]
	return ok
}
