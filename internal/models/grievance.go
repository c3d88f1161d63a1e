package models

import (
	"fmt"
	"regexp"
	"time"
)

// GrievanceStatus tracks a grievance through its lifecycle.
type GrievanceStatus string

const (
	StatusSubmitted    GrievanceStatus = "submitted"
	StatusRouted       GrievanceStatus = "routed"
	StatusAssigned     GrievanceStatus = "assigned"
	StatusAcknowledged GrievanceStatus = "acknowledged"
	StatusInProgress   GrievanceStatus = "in_progress"
	StatusEscalated    GrievanceStatus = "escalated"
	StatusClosed       GrievanceStatus = "closed"
	StatusReopened     GrievanceStatus = "reopened"
	StatusFinalClosed  GrievanceStatus = "final_closed"
)

// Valid reports whether the status belongs to the closed status set.
func (s GrievanceStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusRouted, StatusAssigned, StatusAcknowledged,
		StatusInProgress, StatusEscalated, StatusClosed, StatusReopened, StatusFinalClosed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status retains the grievance for audit only.
func (s GrievanceStatus) Terminal() bool {
	return s == StatusClosed || s == StatusFinalClosed
}

// SLAStatus classifies a grievance against its deadline.
type SLAStatus string

const (
	SLAOnTrack  SLAStatus = "on_track"
	SLAAtRisk   SLAStatus = "at_risk"
	SLABreached SLAStatus = "breached"
)

// PrivacyLevel controls who may read a grievance. Immutable after creation.
type PrivacyLevel string

const (
	PrivacyPublic     PrivacyLevel = "public"
	PrivacyRestricted PrivacyLevel = "restricted"
	PrivacyPrivate    PrivacyLevel = "private"
)

// Valid reports whether the privacy level is a member of the closed set.
func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyRestricted, PrivacyPrivate:
		return true
	default:
		return false
	}
}

// Category is the closed set of grievance categories. Input that matches no
// category maps to CategoryOther and routes to the fallback department.
type Category string

const (
	CategoryRoads          Category = "roads"
	CategoryWaterSupply    Category = "water_supply"
	CategoryElectricity    Category = "electricity"
	CategorySanitation     Category = "sanitation"
	CategoryDrainage       Category = "drainage"
	CategoryStreetLighting Category = "street_lighting"
	CategoryPublicHealth   Category = "public_health"
	CategoryParks          Category = "parks"
	CategoryEncroachment   Category = "encroachment"
	CategoryTransport      Category = "transport"
	CategoryOther          Category = "other"
)

// NormalizeCategory maps arbitrary input onto the closed category set.
func NormalizeCategory(raw string) Category {
	c := Category(raw)
	switch c {
	case CategoryRoads, CategoryWaterSupply, CategoryElectricity, CategorySanitation,
		CategoryDrainage, CategoryStreetLighting, CategoryPublicHealth, CategoryParks,
		CategoryEncroachment, CategoryTransport:
		return c
	default:
		return CategoryOther
	}
}

// grievanceIDPattern matches the civic tracking format JM-YYYY-NNNNNN.
var grievanceIDPattern = regexp.MustCompile(`^JM-\d{4}-\d{6}$`)

// ValidGrievanceID reports whether id matches the JM-YYYY-NNNNNN format.
func ValidGrievanceID(id string) bool {
	return grievanceIDPattern.MatchString(id)
}

// FormatGrievanceID builds a tracking ID from a year and sequence value.
func FormatGrievanceID(year int, seq int64) string {
	return fmt.Sprintf("JM-%04d-%06d", year, seq)
}

// Location is the free-text plus optional structured location of a grievance.
type Location struct {
	Address string   `json:"address"`
	Ward    string   `json:"ward,omitempty"`
	Pincode string   `json:"pincode,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Grievance is the mutable aggregate root. It is mutated exclusively through
// state-machine transitions and never hard-deleted.
type Grievance struct {
	ID            string          `db:"id" json:"id"`
	Category      Category        `db:"category" json:"category"`
	Title         string          `db:"title" json:"title"`
	Description   string          `db:"description" json:"description"`
	Address       string          `db:"address" json:"address"`
	Ward          string          `db:"ward" json:"ward,omitempty"`
	Pincode       string          `db:"pincode" json:"pincode,omitempty"`
	Lat           *float64        `db:"lat" json:"lat,omitempty"`
	Lng           *float64        `db:"lng" json:"lng,omitempty"`
	Privacy       PrivacyLevel    `db:"privacy" json:"privacy"`
	Status        GrievanceStatus `db:"status" json:"status"`
	SLADeadlineAt time.Time       `db:"sla_deadline_at" json:"sla_deadline_at"`
	SLAStatus     SLAStatus       `db:"sla_status" json:"sla_status"`
	CitizenID     string          `db:"citizen_id" json:"citizen_id"`
	DepartmentID  string          `db:"department_id" json:"department_id"`
	OfficerID     *string         `db:"officer_id" json:"officer_id,omitempty"`
	SupportCount  int             `db:"support_count" json:"support_count"`
	ReopenCount   int             `db:"reopen_count" json:"reopen_count"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	ClosedAt      *time.Time      `db:"closed_at" json:"closed_at,omitempty"`
}

// GrievanceFilter narrows grievance list queries.
type GrievanceFilter struct {
	CitizenID    string
	DepartmentID string
	Status       GrievanceStatus
	Category     Category
	SLAStatus    SLAStatus
	PublicOnly   bool
	Page         int
	PageSize     int
}
