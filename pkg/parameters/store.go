// Package parameters implements the ordered parameter collection of a
// workflow and the propagation of parameter renames and deletions across the
// block collection. A rename or deletion is one logical unit: the parameter
// entry, every inline {{ key }} reference, every parameter-key list entry and
// every context-parameter source key change together, never separately.
package parameters

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/plumehq/plume/pkg/models"
)

var (
	// ErrDuplicateKey indicates the collection already holds the key
	// (compared case-insensitively).
	ErrDuplicateKey = errors.New("parameter key already exists")

	// ErrParameterNotFound indicates no parameter with the given key exists.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrParameterInUse indicates a context parameter still derives its value
	// from the parameter being deleted.
	ErrParameterInUse = errors.New("parameter is the source of a context parameter")

	// ErrNilParameter indicates a nil parameter was passed to the store.
	ErrNilParameter = errors.New("parameter is nil")
)

// Store is the ordered collection of a workflow's parameter definitions.
// Keys are unique case-insensitively; insertion order is preserved across
// updates.
type Store struct {
	params []models.Parameter
}

// NewStore builds a store from an existing collection, verifying key
// uniqueness.
func NewStore(params ...models.Parameter) (*Store, error) {
	store := &Store{params: make([]models.Parameter, 0, len(params))}

	for _, p := range params {
		if err := store.Add(p); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Add appends a parameter. The caller is expected to have run the key through
// identifier.ValidateKey already; the store only enforces uniqueness.
func (s *Store) Add(p models.Parameter) error {
	if p == nil {
		return ErrNilParameter
	}

	if _, ok := s.indexOf(p.ParameterKey()); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, p.ParameterKey())
	}

	s.params = append(s.params, p)

	return nil
}

// Update replaces the definition stored under key in place, preserving the
// collection order. The replacement must keep the same key; renames go
// through Rename so that reference propagation cannot be skipped.
func (s *Store) Update(key string, def models.Parameter) error {
	if def == nil {
		return ErrNilParameter
	}

	i, ok := s.indexOf(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrParameterNotFound, key)
	}

	// Byte-exact comparison against the stored key: a case-only change is
	// still a rename and must propagate through the blocks.
	if stored := s.params[i].ParameterKey(); def.ParameterKey() != stored {
		return fmt.Errorf("%w: update cannot change key %q to %q, use Rename", ErrDuplicateKey, stored, def.ParameterKey())
	}

	s.params[i] = def

	return nil
}

// Remove deletes the parameter stored under key. Reference propagation is the
// caller's responsibility; Delete performs both as one unit.
func (s *Store) Remove(key string) error {
	i, ok := s.indexOf(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrParameterNotFound, key)
	}

	s.params = slices.Delete(s.params, i, i+1)

	return nil
}

// Get returns the parameter stored under key.
func (s *Store) Get(key string) (models.Parameter, bool) {
	i, ok := s.indexOf(key)
	if !ok {
		return nil, false
	}

	return s.params[i], true
}

// List returns the parameters in insertion order. The slice is a copy; the
// elements are the stored definitions.
func (s *Store) List() []models.Parameter {
	return slices.Clone(s.params)
}

// Keys returns the parameter keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.params))
	for i, p := range s.params {
		keys[i] = p.ParameterKey()
	}

	return keys
}

// Len returns the number of parameters.
func (s *Store) Len() int {
	return len(s.params)
}

func (s *Store) indexOf(key string) (int, bool) {
	for i, p := range s.params {
		if strings.EqualFold(p.ParameterKey(), key) {
			return i, true
		}
	}

	return 0, false
}
