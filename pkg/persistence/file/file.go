// Package file provides file-based persistence for workflow definitions. It
// is the default provider; each workflow is one JSON document on disk.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/plumehq/plume/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts either a bare path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs cleanup. Nothing to release for file persistence.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
