package store

import (
	"context"

	"github.com/me/dayplan/pkg/model"
)

// Store defines the persistence layer for plan runs served by the API.
// The allocator itself never touches a Store; only the server does.
type Store interface {
	CreatePlanRun(ctx context.Context, run *model.PlanRun) error
	GetPlanRun(ctx context.Context, id string) (*model.PlanRun, error)
	ListPlanRuns(ctx context.Context, opts model.ListOptions) ([]*model.PlanRun, int, error)
	DeletePlanRun(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
