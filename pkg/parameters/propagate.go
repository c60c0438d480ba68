package parameters

import (
	"fmt"

	"github.com/plumehq/plume/pkg/identifier"
	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/references"
)

// Rename changes a parameter's key and rewrites every place the old key
// appears: inline {{ oldKey }} references, block parameter-key lists, and the
// source key of any context parameter deriving from it. The returned block
// collection preserves the identity of untouched blocks.
func (s *Store) Rename(blocks []models.Block, oldKey, newKey string) ([]models.Block, error) {
	i, ok := s.indexOf(oldKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, oldKey)
	}

	trimmed, err := identifier.ValidateKey(newKey, s.Keys(), oldKey)
	if err != nil {
		return nil, err
	}

	oldKey = s.params[i].ParameterKey()
	if trimmed == oldKey {
		return blocks, nil
	}

	s.params[i] = s.params[i].WithKey(trimmed)

	for j, p := range s.params {
		cp, ok := p.(*models.ContextParameter)
		if !ok || cp.SourceParameterKey != oldKey {
			continue
		}

		fixed := *cp
		fixed.SourceParameterKey = trimmed
		s.params[j] = &fixed
	}

	blocks = references.Rename(blocks, oldKey, trimmed)
	blocks = references.RenameInKeyLists(blocks, oldKey, trimmed)

	return blocks, nil
}

// Delete removes a parameter and propagates the removal through both
// reference representations. A parameter that a context parameter still
// sources cannot be deleted; the context parameter has to be removed or
// repointed first.
func (s *Store) Delete(blocks []models.Block, key string) ([]models.Block, error) {
	i, ok := s.indexOf(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, key)
	}

	key = s.params[i].ParameterKey()

	for _, p := range s.params {
		if cp, ok := p.(*models.ContextParameter); ok && cp.SourceParameterKey == key {
			return nil, fmt.Errorf("%w: %q sources %q", ErrParameterInUse, cp.Key, key)
		}
	}

	if err := s.Remove(key); err != nil {
		return nil, err
	}

	blocks = references.Remove(blocks, key)
	blocks = references.RemoveFromKeyLists(blocks, key)

	return blocks, nil
}
