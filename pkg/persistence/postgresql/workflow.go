package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/persistence"
)

// WorkflowRepository stores workflow definitions in the workflows table.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger.With("repository", "workflow"),
	}
}

const workflowColumns = `id, title, description, status, workflow_group_id, owner,
	blocks, edges, parameters, created_at, updated_at, published_at, deleted_at`

// ListWorkflows filters, sorts and paginates at the database level.
func (wr *WorkflowRepository) ListWorkflows(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}

	// Sort input is interpolated into SQL, so it must come from the allowlist.
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	where := "WHERE deleted_at IS NULL"
	args := []any{}

	if opts.OwnerID != "" {
		args = append(args, opts.OwnerID)
		where += fmt.Sprintf(" AND owner = $%d", len(args))
	}

	if opts.WorkflowGroupID != "" {
		args = append(args, opts.WorkflowGroupID)
		where += fmt.Sprintf(" AND workflow_group_id = $%d", len(args))
	}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var totalCount int64
	if err := wr.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows "+where, args...).Scan(&totalCount); err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}

	query := fmt.Sprintf("SELECT %s FROM workflows %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		workflowColumns, where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := wr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewWorkflowError("ListWorkflows", "", err)
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

// GetByID loads one workflow. Missing rows yield (nil, nil).
func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := wr.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM workflows WHERE id = $1 AND deleted_at IS NULL", workflowColumns), id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// Save upserts the whole definition document.
func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	blocks, err := json.Marshal(workflow.Blocks)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	edges, err := json.Marshal(workflow.Edges)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	parameters, err := json.Marshal(workflow.Parameters)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, title, description, status, workflow_group_id, owner,
			blocks, edges, parameters, created_at, updated_at, published_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			workflow_group_id = EXCLUDED.workflow_group_id,
			owner = EXCLUDED.owner,
			blocks = EXCLUDED.blocks,
			edges = EXCLUDED.edges,
			parameters = EXCLUDED.parameters,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at,
			deleted_at = EXCLUDED.deleted_at`,
		workflow.ID, workflow.Title, workflow.Description, string(workflow.Status),
		workflow.WorkflowGroupID, workflow.Owner, blocks, edges, parameters,
		workflow.CreatedAt, workflow.UpdatedAt, workflow.PublishedAt, workflow.DeletedAt)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes by stamping deleted_at. Deleting a missing row is a
// no-op.
func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := wr.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		status      string
		blocksRaw   []byte
		edgesRaw    []byte
		paramsRaw   []byte
		publishedAt sql.NullTime
		deletedAt   sql.NullTime
	)

	err := row.Scan(&workflow.ID, &workflow.Title, &workflow.Description, &status,
		&workflow.WorkflowGroupID, &workflow.Owner, &blocksRaw, &edgesRaw, &paramsRaw,
		&workflow.CreatedAt, &workflow.UpdatedAt, &publishedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatus(status)

	if err := json.Unmarshal(blocksRaw, &workflow.Blocks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blocks: %w", err)
	}

	if err := json.Unmarshal(edgesRaw, &workflow.Edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}

	if err := json.Unmarshal(paramsRaw, &workflow.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	if publishedAt.Valid {
		workflow.PublishedAt = &publishedAt.Time
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}
