package registry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumehq/plume/pkg/models"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	return NewRegistry(slog.Default())
}

func TestNewRegistry_LoadsBuiltinSchemas(t *testing.T) {
	r := newTestRegistry(t)

	types := r.BlockTypes()
	assert.Equal(t, models.AllBlockTypes, types)

	for _, blockType := range models.AllBlockTypes {
		_, ok := r.Schema(blockType)
		assert.True(t, ok, blockType)
	}
}

func TestRegistry_ValidateBlock(t *testing.T) {
	r := newTestRegistry(t)

	block := &models.TaskBlock{
		BlockBase: models.BlockBase{
			ID:        "b1",
			BlockType: models.BlockTypeTask,
			Label:     "open_page",
		},
		URL: "https://example.com",
	}

	assert.NoError(t, r.ValidateBlock(block))
}

func TestRegistry_ValidateBlock_BadLabel(t *testing.T) {
	r := newTestRegistry(t)

	block := &models.TaskBlock{
		BlockBase: models.BlockBase{
			ID:        "b1",
			BlockType: models.BlockTypeTask,
			Label:     "open page",
		},
	}

	err := r.ValidateBlock(block)
	require.Error(t, err)

	var validationErr *BlockValidationError

	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "b1", validationErr.BlockID)
	assert.NotEmpty(t, validationErr.Details)
}

func TestRegistry_ValidateBlock_UnknownType(t *testing.T) {
	r := NewRegistry(slog.Default())
	delete(r.schemas, models.BlockTypeTask)

	block := &models.TaskBlock{
		BlockBase: models.BlockBase{ID: "b1", BlockType: models.BlockTypeTask, Label: "x"},
	}

	assert.ErrorIs(t, r.ValidateBlock(block), ErrUnknownBlockType)
}

func TestRegistry_ValidateWorkflow_DuplicateLabels(t *testing.T) {
	r := newTestRegistry(t)

	workflow := &models.Workflow{
		Title:  "Test",
		Status: models.WorkflowStatusDraft,
		Blocks: models.BlockList{
			&models.TaskBlock{
				BlockBase: models.BlockBase{ID: "b1", BlockType: models.BlockTypeTask, Label: "login"},
			},
			&models.TaskBlock{
				BlockBase: models.BlockBase{ID: "b2", BlockType: models.BlockTypeTask, Label: "Login"},
			},
		},
	}

	err := r.ValidateWorkflow(workflow)
	require.Error(t, err)

	var validationErr *BlockValidationError

	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "b2", validationErr.BlockID)
}

func TestRegistry_ValidateWorkflow_Valid(t *testing.T) {
	r := newTestRegistry(t)

	workflow := &models.Workflow{
		Title:  "Test",
		Status: models.WorkflowStatusDraft,
		Blocks: models.BlockList{
			&models.TaskBlock{
				BlockBase: models.BlockBase{ID: "b1", BlockType: models.BlockTypeTask, Label: "login"},
			},
			&models.PrintPageBlock{
				BlockBase: models.BlockBase{ID: "b2", BlockType: models.BlockTypePrintPage, Label: "snapshot"},
			},
		},
	}

	assert.NoError(t, r.ValidateWorkflow(workflow))
}

func TestRegistry_RegisterSchema_Invalid(t *testing.T) {
	r := newTestRegistry(t)

	err := r.RegisterSchema(models.BlockTypeTask, []byte(`{"type": 42}`))
	assert.Error(t, err)
}

func TestRegistry_HealthCheck(t *testing.T) {
	r := newTestRegistry(t)

	msg, ok := r.HealthCheck()
	assert.True(t, ok)
	assert.Contains(t, msg, "healthy")
}
