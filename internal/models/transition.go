package models

// statusSuccessors is the grievance lifecycle adjacency table. Reopened
// grievances re-enter active handling at in_progress rather than restarting
// the intake flow.
var statusSuccessors = map[GrievanceStatus][]GrievanceStatus{
	StatusSubmitted:    {StatusRouted},
	StatusRouted:       {StatusAssigned},
	StatusAssigned:     {StatusAcknowledged},
	StatusAcknowledged: {StatusInProgress, StatusEscalated},
	StatusInProgress:   {StatusEscalated, StatusClosed},
	StatusEscalated:    {StatusInProgress, StatusClosed},
	StatusClosed:       {StatusReopened, StatusFinalClosed},
	StatusReopened:     {StatusInProgress},
	StatusFinalClosed:  {},
}

// AllowedTransition reports whether the lifecycle permits moving from one
// status directly to another.
func AllowedTransition(from, to GrievanceStatus) bool {
	for _, next := range statusSuccessors[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReopenSuccessor is the status a reopened grievance lands in once it
// re-enters handling.
const ReopenSuccessor = StatusInProgress
