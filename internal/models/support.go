package models

import "time"

// SupportSignal is a citizen's one-time endorsement of a grievance. The
// composite (grievance, citizen) key is the primary key, so a second create
// attempt surfaces as a uniqueness conflict rather than an overwrite.
type SupportSignal struct {
	GrievanceID string    `db:"grievance_id" json:"grievance_id"`
	CitizenID   string    `db:"citizen_id" json:"citizen_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
