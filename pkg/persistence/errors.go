package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrPublishedWorkflowNotFound indicates no published workflow exists for the given group.
	ErrPublishedWorkflowNotFound = errors.New("published workflow not found")

	// ErrDraftWorkflowNotFound indicates no draft workflow exists for the given group.
	ErrDraftWorkflowNotFound = errors.New("draft workflow not found")

	// ErrInvalidSortField indicates a sort field outside the allowlist.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// WorkflowError wraps workflow storage errors with operation context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g. "GetByID", "Save")
	WorkflowID string
	GroupID    string
	Err        error
}

func (e *WorkflowError) Error() string {
	target := e.WorkflowID
	if e.GroupID != "" {
		target = "group " + e.GroupID
	}

	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, target, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NewWorkflowGroupError creates a workflow error for group operations.
func NewWorkflowGroupError(op, groupID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:      op,
		GroupID: groupID,
		Err:     err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsPublishedWorkflowNotFound checks if an error indicates no published version exists.
func IsPublishedWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrPublishedWorkflowNotFound)
}

// IsDraftWorkflowNotFound checks if an error indicates no draft version exists.
func IsDraftWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrDraftWorkflowNotFound)
}

// IsInvalidSortField checks if an error indicates a disallowed sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
