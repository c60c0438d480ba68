// Package persistence abstracts storage of workflow definitions.
package persistence

import (
	"context"

	"github.com/plumehq/plume/pkg/models"
)

// ListWorkflowsOptions controls filtering, sorting and pagination.
type ListWorkflowsOptions struct {
	Limit  int
	Offset int

	OwnerID         string
	WorkflowGroupID string
	Status          *models.WorkflowStatus

	SortBy    string // created_at, updated_at, title
	SortOrder string // asc, desc
}

// WorkflowListResult is one page of workflows plus pagination metadata.
type WorkflowListResult struct {
	Workflows   []*models.Workflow
	TotalCount  int64
	HasNextPage bool
}

// WorkflowRepository stores workflow definitions. GetByID returns (nil, nil)
// when no workflow exists under the id; callers map that to their own
// not-found error.
type WorkflowRepository interface {
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
