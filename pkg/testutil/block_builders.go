// Package testutil provides test data builders for workflow definitions.
package testutil

import (
	"github.com/google/uuid"

	"github.com/plumehq/plume/pkg/models"
)

// CreateTestTaskBlock creates a task block with default values that can be
// overridden.
func CreateTestTaskBlock(overrides ...func(*models.TaskBlock)) *models.TaskBlock {
	block := &models.TaskBlock{
		BlockBase: models.BlockBase{
			ID:        uuid.New().String(),
			BlockType: models.BlockTypeTask,
			Label:     "test_task",
		},
		URL:            "https://example.com",
		NavigationGoal: "Open the landing page",
		Keys:           []string{},
	}

	for _, override := range overrides {
		override(block)
	}

	return block
}

// WithLabel sets the block label.
func WithLabel(label string) func(*models.TaskBlock) {
	return func(b *models.TaskBlock) {
		b.Label = label
	}
}

// WithNavigationGoal sets the free-text navigation goal.
func WithNavigationGoal(goal string) func(*models.TaskBlock) {
	return func(b *models.TaskBlock) {
		b.NavigationGoal = goal
	}
}

// WithParameterKeys sets the block's parameter-key list.
func WithParameterKeys(keys ...string) func(*models.TaskBlock) {
	return func(b *models.TaskBlock) {
		b.Keys = keys
	}
}

// CreateTestWorkflow creates a draft workflow with default values that can be
// overridden.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:              uuid.New().String(),
		Title:           "Test Workflow",
		Description:     "A workflow for testing",
		Status:          models.WorkflowStatusDraft,
		WorkflowGroupID: uuid.New().String(),
		Blocks:          models.BlockList{},
		Edges:           []*models.Edge{},
		Parameters:      models.ParameterList{},
		Owner:           "tester",
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithBlocks sets the workflow's block collection.
func WithBlocks(blocks ...models.Block) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Blocks = blocks
	}
}

// WithParameters sets the workflow's parameter collection.
func WithParameters(params ...models.Parameter) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Parameters = params
	}
}

// CreateTestInputParameter creates a workflow input parameter under key.
func CreateTestInputParameter(key string) *models.WorkflowInputParameter {
	return &models.WorkflowInputParameter{
		ParameterBase: models.ParameterBase{
			Key:           key,
			ParameterType: models.ParameterTypeWorkflowInput,
		},
		DataType: models.WorkflowInputTypeString,
	}
}
