// Package services implements the editor's use cases on top of the domain
// packages: workflow CRUD, publishing, and parameter editing with reference
// propagation.
package services

import (
	"errors"
	"fmt"

	"github.com/plumehq/plume/pkg/identifier"
	"github.com/plumehq/plume/pkg/parameters"
	"github.com/plumehq/plume/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid workflow status")
	ErrEmptyOwnerID     = errors.New("owner ID cannot be empty")

	// Publishing validation errors (400 Bad Request).
	ErrWorkflowTitleRequired = errors.New("workflow title is required")
	ErrBlocksRequired        = errors.New("workflow must have at least one block")
	ErrWorkflowNil           = errors.New("workflow cannot be nil")

	// Business logic conflicts (409 Conflict).
	ErrCannotModifyPublished   = errors.New("cannot modify published workflow")
	ErrCannotModifyUnpublished = errors.New("cannot modify unpublished workflow")
	ErrAlreadyPublished        = errors.New("workflow is already published")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400. Identifier rejections count: a bad parameter key or block
// label is a client mistake, not a server fault.
func IsValidationError(err error) bool {
	var identErr *identifier.ValidationError
	if errors.As(err, &identErr) {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrWorkflowTitleRequired) ||
		errors.Is(err, ErrBlocksRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, parameters.ErrNilParameter)
}

// IsConflictError checks if an error is a business logic conflict that should
// return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished) ||
		errors.Is(err, ErrCannotModifyUnpublished) ||
		errors.Is(err, ErrAlreadyPublished) ||
		errors.Is(err, parameters.ErrDuplicateKey) ||
		errors.Is(err, parameters.ErrParameterInUse)
}

// IsNotFoundError checks if an error means the requested resource does not
// exist and should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, persistence.ErrPublishedWorkflowNotFound) ||
		errors.Is(err, parameters.ErrParameterNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
