package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/persistence/postgresql"
	"github.com/plumehq/plume/pkg/testutil"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("plume_test"),
			postgres.WithUsername("plume"),
			postgres.WithPassword("plume"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDB(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestNewPersistence_SaveAndRetrieveWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	block := testutil.CreateTestTaskBlock(
		testutil.WithLabel("open_site"),
		testutil.WithNavigationGoal("navigate to {{ target_url }}"),
		testutil.WithParameterKeys("target_url"),
	)
	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(block),
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	workflow.Edges = []*models.Edge{{SourceBlockID: block.ID, TargetBlockID: block.ID}}

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)
	assert.False(t, workflow.CreatedAt.IsZero())
	assert.False(t, workflow.UpdatedAt.IsZero())

	retrieved, err := p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, workflow.ID, retrieved.ID)
	assert.Equal(t, workflow.Title, retrieved.Title)
	assert.Equal(t, workflow.WorkflowGroupID, retrieved.WorkflowGroupID)
	assert.Equal(t, workflow.Status, retrieved.Status)
	assert.Equal(t, workflow.Owner, retrieved.Owner)

	// JSONB round trip preserves the typed block and parameter variants.
	require.Len(t, retrieved.Blocks, 1)

	task, ok := retrieved.Blocks[0].(*models.TaskBlock)
	require.True(t, ok)
	assert.Equal(t, "navigate to {{ target_url }}", task.NavigationGoal)
	assert.Equal(t, []string{"target_url"}, task.Keys)

	require.Len(t, retrieved.Parameters, 1)

	input, ok := retrieved.Parameters[0].(*models.WorkflowInputParameter)
	require.True(t, ok)
	assert.Equal(t, "target_url", input.Key)

	require.Len(t, retrieved.Edges, 1)
	assert.Equal(t, block.ID, retrieved.Edges[0].SourceBlockID)

	// Missing rows yield (nil, nil).
	missing, err := p.WorkflowRepository().GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNewPersistence_UpdateWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := testutil.CreateTestWorkflow()

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	initialUpdatedAt := workflow.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	workflow.Title = "Updated Test Workflow"
	workflow.Description = "An updated test workflow"
	workflow.Status = models.WorkflowStatusPublished

	err = p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	retrieved, err := p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, "Updated Test Workflow", retrieved.Title)
	assert.Equal(t, "An updated test workflow", retrieved.Description)
	assert.Equal(t, models.WorkflowStatusPublished, retrieved.Status)
	assert.True(t, retrieved.UpdatedAt.After(initialUpdatedAt))
}

func TestNewPersistence_ListWorkflows(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	draft := testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.Title = "Draft Flow"
		w.Owner = "alice"
	})
	published := testutil.CreateTestWorkflow(
		testutil.WithStatus(models.WorkflowStatusPublished),
		func(w *models.Workflow) {
			w.Title = "Published Flow"
			w.Owner = "bob"
		},
	)

	for _, workflow := range []*models.Workflow{draft, published} {
		err := p.WorkflowRepository().Save(ctx, workflow)
		require.NoError(t, err)
	}

	result, err := p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Workflows, 2)
	assert.Equal(t, int64(2), result.TotalCount)
	assert.False(t, result.HasNextPage)

	status := models.WorkflowStatusPublished
	result, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{Status: &status})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, "Published Flow", result.Workflows[0].Title)

	result, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, "Draft Flow", result.Workflows[0].Title)

	result, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		WorkflowGroupID: published.WorkflowGroupID,
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, "Published Flow", result.Workflows[0].Title)

	result, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		SortBy:    "title",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, "Draft Flow", result.Workflows[0].Title)

	_, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{SortBy: "owner; DROP TABLE workflows"})
	require.ErrorIs(t, err, persistence.ErrInvalidSortField)
}

func TestNewPersistence_ListWorkflows_Pagination(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	for _, title := range []string{"alpha", "bravo", "charlie"} {
		workflow := testutil.CreateTestWorkflow(func(w *models.Workflow) {
			w.Title = title
		})

		err := p.WorkflowRepository().Save(ctx, workflow)
		require.NoError(t, err)
	}

	result, err := p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Limit:     2,
		SortBy:    "title",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 2)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.True(t, result.HasNextPage)
	assert.Equal(t, "alpha", result.Workflows[0].Title)

	result, err = p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Limit:     2,
		Offset:    2,
		SortBy:    "title",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.False(t, result.HasNextPage)
	assert.Equal(t, "charlie", result.Workflows[0].Title)
}

func TestNewPersistence_DeleteWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := testutil.CreateTestWorkflow()

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	err = p.WorkflowRepository().Delete(ctx, workflow.ID)
	require.NoError(t, err)

	// Soft deleted rows are invisible to reads.
	deleted, err := p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	result, err := p.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Workflows)

	err = p.WorkflowRepository().Delete(ctx, uuid.NewString())
	assert.NoError(t, err)
}
