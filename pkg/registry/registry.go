// Package registry holds the block-type catalogue: one JSON schema per block
// variant. The editor fetches the schemas to build its palette and forms; the
// services validate incoming block documents against them before saving.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/plumehq/plume/pkg/models"
)

var ErrUnknownBlockType = errors.New("unknown block type")

// BlockValidationError reports schema violations for one block.
type BlockValidationError struct {
	BlockID string
	Details []string
}

func (e *BlockValidationError) Error() string {
	return fmt.Sprintf("block %s is invalid: %s", e.BlockID, strings.Join(e.Details, "; "))
}

type Registry struct {
	logger  *slog.Logger
	schemas map[models.BlockType]*gojsonschema.Schema
	rawJSON map[models.BlockType]json.RawMessage
}

// NewRegistry builds a registry preloaded with the built-in block schemas.
// Panics on a malformed built-in schema, which is a programming error.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		logger:  logger.With("module", "registry"),
		schemas: make(map[models.BlockType]*gojsonschema.Schema),
		rawJSON: make(map[models.BlockType]json.RawMessage),
	}

	for blockType, schema := range builtinSchemas() {
		if err := r.RegisterSchema(blockType, []byte(schema)); err != nil {
			panic(fmt.Errorf("invalid builtin schema for %s: %w", blockType, err))
		}
	}

	return r
}

// RegisterSchema compiles and stores the schema for a block type, replacing
// any previous registration.
func (r *Registry) RegisterSchema(blockType models.BlockType, schemaJSON []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("failed to compile schema for %s: %w", blockType, err)
	}

	r.schemas[blockType] = schema
	r.rawJSON[blockType] = json.RawMessage(schemaJSON)

	return nil
}

// Schema returns the raw schema document for a block type.
func (r *Registry) Schema(blockType models.BlockType) (json.RawMessage, bool) {
	raw, ok := r.rawJSON[blockType]

	return raw, ok
}

// BlockTypes returns the registered types in palette order.
func (r *Registry) BlockTypes() []models.BlockType {
	types := make([]models.BlockType, 0, len(r.schemas))

	for _, blockType := range models.AllBlockTypes {
		if _, ok := r.schemas[blockType]; ok {
			types = append(types, blockType)
		}
	}

	return types
}

// ValidateBlock checks one block document against its type's schema.
func (r *Registry) ValidateBlock(block models.Block) error {
	schema, ok := r.schemas[block.Type()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, block.Type())
	}

	document, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block %s: %w", block.BlockID(), err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to validate block %s: %w", block.BlockID(), err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		details = append(details, resultError.String())
	}

	return &BlockValidationError{BlockID: block.BlockID(), Details: details}
}

// ValidateWorkflow checks every block against its schema and verifies block
// labels are unique (case-insensitively); labels name blocks inside template
// expressions, so a duplicate would make references ambiguous.
func (r *Registry) ValidateWorkflow(workflow *models.Workflow) error {
	seen := make(map[string]string, len(workflow.Blocks))

	for _, block := range workflow.Blocks {
		if err := r.ValidateBlock(block); err != nil {
			return err
		}

		lower := strings.ToLower(block.BlockLabel())
		if other, ok := seen[lower]; ok {
			return &BlockValidationError{
				BlockID: block.BlockID(),
				Details: []string{fmt.Sprintf("label %q is already used by block %s", block.BlockLabel(), other)},
			}
		}

		seen[lower] = block.BlockID()
	}

	return nil
}

// HealthCheck reports whether the registry is ready to validate.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.schemas) == 0 {
		return "Registry has no block schemas", false
	}

	return fmt.Sprintf("Registry is healthy (%d block types)", len(r.schemas)), true
}
