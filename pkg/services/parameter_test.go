package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/plumehq/plume/pkg/eventbus"
	"github.com/plumehq/plume/pkg/events"
	"github.com/plumehq/plume/pkg/identifier"
	"github.com/plumehq/plume/pkg/mocks"
	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/parameters"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/persistence/file"
	"github.com/plumehq/plume/pkg/testutil"
)

func setupParameterService(t *testing.T) (*Parameter, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return NewParameter(p, nil, nil), p
}

func seedWorkflow(t *testing.T, p persistence.Persistence, workflow *models.Workflow) {
	t.Helper()
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))
}

func TestParameter_Add(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow()
	seedWorkflow(t, p, workflow)

	created, err := service.Add(t.Context(), workflow.ID, testutil.CreateTestInputParameter("target_url"))
	require.NoError(t, err)
	assert.Equal(t, "target_url", created.ParameterKey())

	params, err := service.List(t.Context(), workflow.ID)
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "target_url", params[0].ParameterKey())
}

func TestParameter_Add_TrimsKey(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow()
	seedWorkflow(t, p, workflow)

	created, err := service.Add(t.Context(), workflow.ID, testutil.CreateTestInputParameter("  padded  "))
	require.NoError(t, err)
	assert.Equal(t, "padded", created.ParameterKey())
}

func TestParameter_Add_InvalidKey(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow()
	seedWorkflow(t, p, workflow)

	tests := []struct {
		key     string
		wantErr error
	}{
		{"3abc", identifier.ErrLeadingDigit},
		{"my key", identifier.ErrWhitespace},
		{"my-key", identifier.ErrDash},
		{"true", identifier.ErrReservedKeyword},
	}

	for _, tt := range tests {
		_, err := service.Add(t.Context(), workflow.ID, testutil.CreateTestInputParameter(tt.key))
		assert.ErrorIs(t, err, tt.wantErr, tt.key)
		assert.True(t, IsValidationError(err), tt.key)
	}
}

func TestParameter_Add_DuplicateKey(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	_, err := service.Add(t.Context(), workflow.ID, testutil.CreateTestInputParameter("Target_URL"))
	require.ErrorIs(t, err, identifier.ErrDuplicate)
}

func TestParameter_Add_RefusedOnPublished(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(testutil.WithStatus(models.WorkflowStatusPublished))
	seedWorkflow(t, p, workflow)

	_, err := service.Add(t.Context(), workflow.ID, testutil.CreateTestInputParameter("target_url"))
	assert.ErrorIs(t, err, ErrCannotModifyPublished)
}

func TestParameter_Add_WorkflowNotFound(t *testing.T) {
	service, _ := setupParameterService(t)

	_, err := service.Add(t.Context(), "missing", testutil.CreateTestInputParameter("target_url"))
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestParameter_Rename_PropagatesAndPersists(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(
			testutil.CreateTestTaskBlock(
				testutil.WithLabel("open"),
				testutil.WithNavigationGoal("navigate to {{ target_url }}"),
			),
			testutil.CreateTestTaskBlock(
				testutil.WithLabel("fill"),
				testutil.WithParameterKeys("target_url"),
			),
			testutil.CreateTestTaskBlock(testutil.WithLabel("done")),
		),
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	renamed, err := service.Rename(t.Context(), workflow.ID, "target_url", "site_url")
	require.NoError(t, err)
	assert.Equal(t, "site_url", renamed.ParameterKey())

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, "navigate to {{ site_url }}", loaded.Blocks[0].TextFields()[1])
	assert.Equal(t, []string{"site_url"}, loaded.Blocks[1].ParameterKeys())
	require.Len(t, loaded.Parameters, 1)
	assert.Equal(t, "site_url", loaded.Parameters[0].ParameterKey())
}

func TestParameter_Rename_EmitsEventWithAffectedBlocks(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	bus := &mocks.MockEventBus{}
	service := NewParameter(p, bus, nil)

	b1 := testutil.CreateTestTaskBlock(
		testutil.WithLabel("open"),
		testutil.WithNavigationGoal("navigate to {{ target_url }}"),
	)
	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(b1),
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	bus.On("Publish", mock.Anything, workflow.ID, mock.MatchedBy(func(event eventbus.Event) bool {
		renamed, ok := event.(events.ParameterRenamed)

		return ok &&
			renamed.OldKey == "target_url" &&
			renamed.NewKey == "site_url" &&
			len(renamed.AffectedBlockIDs) == 1 &&
			renamed.AffectedBlockIDs[0] == b1.ID
	})).Return(nil)

	_, err := service.Rename(t.Context(), workflow.ID, "target_url", "site_url")
	require.NoError(t, err)

	bus.AssertExpectations(t)
}

func TestParameter_Rename_InvalidNewKeyLeavesWorkflowUntouched(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(
			testutil.CreateTestTaskBlock(
				testutil.WithLabel("open"),
				testutil.WithNavigationGoal("navigate to {{ target_url }}"),
			),
		),
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	_, err := service.Rename(t.Context(), workflow.ID, "target_url", "my key")
	require.ErrorIs(t, err, identifier.ErrWhitespace)

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "navigate to {{ target_url }}", loaded.Blocks[0].TextFields()[1])
	assert.Equal(t, "target_url", loaded.Parameters[0].ParameterKey())
}

func TestParameter_Remove_PropagatesAndPersists(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(
			testutil.CreateTestTaskBlock(
				testutil.WithLabel("open"),
				testutil.WithNavigationGoal("go to {{ target_url }} now"),
				testutil.WithParameterKeys("target_url", "username"),
			),
		),
		testutil.WithParameters(
			testutil.CreateTestInputParameter("target_url"),
			testutil.CreateTestInputParameter("username"),
		),
	)
	seedWorkflow(t, p, workflow)

	require.NoError(t, service.Remove(t.Context(), workflow.ID, "target_url"))

	loaded, err := p.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, "go to  now", loaded.Blocks[0].TextFields()[1])
	assert.Equal(t, []string{"username"}, loaded.Blocks[0].ParameterKeys())
	require.Len(t, loaded.Parameters, 1)
	assert.Equal(t, "username", loaded.Parameters[0].ParameterKey())
}

func TestParameter_Remove_RefusedWhileSourced(t *testing.T) {
	service, p := setupParameterService(t)

	derived := &models.ContextParameter{
		ParameterBase: models.ParameterBase{
			Key:           "derived",
			ParameterType: models.ParameterTypeContext,
		},
		SourceParameterKey: "target_url",
	}
	workflow := testutil.CreateTestWorkflow(
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url"), derived),
	)
	seedWorkflow(t, p, workflow)

	err := service.Remove(t.Context(), workflow.ID, "target_url")
	require.ErrorIs(t, err, parameters.ErrParameterInUse)
	assert.True(t, IsConflictError(err))
}

func TestParameter_Update(t *testing.T) {
	service, p := setupParameterService(t)

	workflow := testutil.CreateTestWorkflow(
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	replacement := testutil.CreateTestInputParameter("target_url")
	replacement.Description = "the page under test"

	updated, err := service.Update(t.Context(), workflow.ID, "target_url", replacement)
	require.NoError(t, err)
	assert.Equal(t, "target_url", updated.ParameterKey())

	// Update must not smuggle in a key change, not even a case-only one.
	_, err = service.Update(t.Context(), workflow.ID, "target_url", testutil.CreateTestInputParameter("other"))
	require.ErrorIs(t, err, parameters.ErrDuplicateKey)

	_, err = service.Update(t.Context(), workflow.ID, "target_url", testutil.CreateTestInputParameter("Target_URL"))
	require.ErrorIs(t, err, parameters.ErrDuplicateKey)

	reloaded, err := p.WorkflowRepository().GetByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "target_url", reloaded.Parameters[0].ParameterKey())
}

func TestParameter_AffectedBlocks(t *testing.T) {
	service, p := setupParameterService(t)

	b1 := testutil.CreateTestTaskBlock(
		testutil.WithLabel("open"),
		testutil.WithNavigationGoal("{{ target_url }}"),
	)
	b2 := testutil.CreateTestTaskBlock(
		testutil.WithLabel("fill"),
		testutil.WithParameterKeys("target_url"),
	)
	workflow := testutil.CreateTestWorkflow(
		testutil.WithBlocks(b1, b2, testutil.CreateTestTaskBlock(testutil.WithLabel("done"))),
		testutil.WithParameters(testutil.CreateTestInputParameter("target_url")),
	)
	seedWorkflow(t, p, workflow)

	affected, err := service.AffectedBlocks(t.Context(), workflow.ID, "target_url")
	require.NoError(t, err)
	require.Len(t, affected, 2)
	assert.Equal(t, b1.ID, affected[0].BlockID)
	assert.Equal(t, "open", affected[0].Label)
	assert.Equal(t, b2.ID, affected[1].BlockID)
}
