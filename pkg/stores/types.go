package stores

import (
	"context"
	"time"

	"github.com/blockplan/blockplan/pkg/planner"
)

// PlanRecord is a stored plan with its source layout path.
type PlanRecord struct {
	ID         string    `json:"id"`
	LayoutPath string    `json:"layout_path"`
	StepCount  int       `json:"step_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists computed plans for later inspection.
type Store interface {
	// Init opens the backing database and applies migrations.
	Init(ctx context.Context) error

	// SavePlan persists a computed plan.
	SavePlan(ctx context.Context, plan *planner.Plan, layoutPath string) error

	// GetPlan retrieves a plan by id.
	GetPlan(ctx context.Context, id string) (*planner.Plan, error)

	// ListPlans returns stored plan records, most recent first.
	ListPlans(ctx context.Context, limit int) ([]PlanRecord, error)

	// Close releases the store's resources.
	Close() error
}
