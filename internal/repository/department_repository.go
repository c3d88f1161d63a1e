package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
)

// FallbackDepartmentID receives grievances whose category matches no
// dedicated routing entry.
const FallbackDepartmentID = "general-administration"

// categoryRouting assigns each grievance category to its owning department.
var categoryRouting = map[models.Category]string{
	models.CategoryRoads:          "public-works",
	models.CategoryWaterSupply:    "water-board",
	models.CategoryElectricity:    "electricity-board",
	models.CategorySanitation:     "sanitation",
	models.CategoryDrainage:       "public-works",
	models.CategoryStreetLighting: "electricity-board",
	models.CategoryPublicHealth:   "health",
	models.CategoryParks:          "horticulture",
	models.CategoryEncroachment:   "town-planning",
	models.CategoryTransport:      "transport",
	models.CategoryOther:          FallbackDepartmentID,
}

// DepartmentRepository manages the administrative routing targets.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a new repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// RouteCategory returns the department ID owning the category.
func (r *DepartmentRepository) RouteCategory(category models.Category) string {
	if id, ok := categoryRouting[category]; ok {
		return id
	}
	return FallbackDepartmentID
}

// FindByID loads one department.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	const query = "SELECT id, name, description, sla_hours, health, created_at, updated_at FROM departments WHERE id = $1"
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	const query = "SELECT id, name, description, sla_hours, health, created_at, updated_at FROM departments ORDER BY name ASC"
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// HealthCounts aggregates departments per governance classification.
func (r *DepartmentRepository) HealthCounts(ctx context.Context) (map[models.DepartmentHealth]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT health, COUNT(*) FROM departments GROUP BY health")
	if err != nil {
		return nil, fmt.Errorf("department health counts: %w", err)
	}
	defer rows.Close()
	out := make(map[models.DepartmentHealth]int)
	for rows.Next() {
		var health models.DepartmentHealth
		var count int
		if err := rows.Scan(&health, &count); err != nil {
			return nil, fmt.Errorf("department health counts: %w", err)
		}
		out[health] = count
	}
	return out, rows.Err()
}
