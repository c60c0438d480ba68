package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/persistence/file"
	"github.com/plumehq/plume/pkg/testutil"
)

func setupPublishingService(t *testing.T) (*Publishing, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return NewPublishing(p, nil), p
}

func draftWithBlocks() *models.Workflow {
	return testutil.CreateTestWorkflow(
		testutil.WithBlocks(testutil.CreateTestTaskBlock(testutil.WithLabel("open"))),
	)
}

func TestPublishing_PublishWorkflow(t *testing.T) {
	service, p := setupPublishingService(t)

	draft := draftWithBlocks()
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), draft))

	published, err := service.PublishWorkflow(t.Context(), draft.ID)
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
}

func TestPublishing_PublishWorkflow_RetiresPreviousVersion(t *testing.T) {
	service, p := setupPublishingService(t)

	groupID := "group-1"

	old := draftWithBlocks()
	old.WorkflowGroupID = groupID
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), old))

	_, err := service.PublishWorkflow(t.Context(), old.ID)
	require.NoError(t, err)

	next := draftWithBlocks()
	next.WorkflowGroupID = groupID
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), next))

	_, err = service.PublishWorkflow(t.Context(), next.ID)
	require.NoError(t, err)

	retired, err := p.WorkflowRepository().GetByID(t.Context(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusUnpublished, retired.Status)

	current, err := service.GetPublishedWorkflow(t.Context(), groupID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)
}

func TestPublishing_PublishWorkflow_RetiresPreviousVersion_ManyGroups(t *testing.T) {
	service, p := setupPublishingService(t)

	groupID := "group-under-test"

	// The group's current published version is the oldest published workflow
	// in the store.
	old := draftWithBlocks()
	old.WorkflowGroupID = groupID
	old.Status = models.WorkflowStatusPublished
	old.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), old))

	// Bury it under published versions of many other groups so the lookup
	// cannot rely on it appearing in the first page of results.
	for i := range 120 {
		other := draftWithBlocks()
		other.Status = models.WorkflowStatusPublished
		other.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, i, time.UTC)
		require.NoError(t, p.WorkflowRepository().Save(t.Context(), other))
	}

	next := draftWithBlocks()
	next.WorkflowGroupID = groupID
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), next))

	_, err := service.PublishWorkflow(t.Context(), next.ID)
	require.NoError(t, err)

	retired, err := p.WorkflowRepository().GetByID(t.Context(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusUnpublished, retired.Status)

	// Exactly one published version remains in the group.
	status := models.WorkflowStatusPublished
	result, err := p.WorkflowRepository().ListWorkflows(t.Context(), persistence.ListWorkflowsOptions{
		Status:          &status,
		WorkflowGroupID: groupID,
	})
	require.NoError(t, err)
	require.Len(t, result.Workflows, 1)
	assert.Equal(t, next.ID, result.Workflows[0].ID)

	current, err := service.GetPublishedWorkflow(t.Context(), groupID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)
}

func TestPublishing_PublishWorkflow_Validation(t *testing.T) {
	service, p := setupPublishingService(t)

	// No blocks.
	empty := testutil.CreateTestWorkflow()
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), empty))

	_, err := service.PublishWorkflow(t.Context(), empty.ID)
	assert.ErrorIs(t, err, ErrBlocksRequired)

	// Already published.
	published := draftWithBlocks()
	published.Status = models.WorkflowStatusPublished
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), published))

	_, err = service.PublishWorkflow(t.Context(), published.ID)
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	// Missing workflow.
	_, err = service.PublishWorkflow(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestPublishing_CreateDraftFromPublished(t *testing.T) {
	service, p := setupPublishingService(t)

	draft := draftWithBlocks()
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), draft))

	published, err := service.PublishWorkflow(t.Context(), draft.ID)
	require.NoError(t, err)

	draftCopy, err := service.CreateDraftFromPublished(t.Context(), published.WorkflowGroupID)
	require.NoError(t, err)

	assert.NotEqual(t, published.ID, draftCopy.ID)
	assert.Equal(t, published.WorkflowGroupID, draftCopy.WorkflowGroupID)
	assert.Equal(t, models.WorkflowStatusDraft, draftCopy.Status)
	assert.Nil(t, draftCopy.PublishedAt)
	assert.Equal(t, published.Title, draftCopy.Title)
	require.Len(t, draftCopy.Blocks, 1)
}

func TestPublishing_CreateDraftFromPublished_NoPublishedVersion(t *testing.T) {
	service, _ := setupPublishingService(t)

	_, err := service.CreateDraftFromPublished(t.Context(), "group-without-published")
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrPublishedWorkflowNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestPublishing_GetPublishedWorkflow_NotFound(t *testing.T) {
	service, _ := setupPublishingService(t)

	_, err := service.GetPublishedWorkflow(t.Context(), "missing-group")
	assert.ErrorIs(t, err, persistence.ErrPublishedWorkflowNotFound)
}
