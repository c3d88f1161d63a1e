package models

import "time"

// DepartmentHealth is a governance classification derived from aggregate
// statistics outside this core; it is stored and served, never computed here.
type DepartmentHealth string

const (
	DepartmentStable      DepartmentHealth = "stable"
	DepartmentUnderStrain DepartmentHealth = "under_strain"
	DepartmentCritical    DepartmentHealth = "critical"
)

// Department is an administrative routing target for grievances.
type Department struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	SLAHours    int              `db:"sla_hours" json:"sla_hours"`
	Health      DepartmentHealth `db:"health" json:"health"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// SLAWindow returns the department's default SLA window as a duration.
func (d Department) SLAWindow() time.Duration {
	return time.Duration(d.SLAHours) * time.Hour
}
