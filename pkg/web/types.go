// Package web provides HTTP request and response types for the workflow editor API.
package web

import (
	"fmt"

	"github.com/plumehq/plume/pkg/models"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Title       string `json:"title"       validate:"required,min=3"`
	Description string `json:"description"`
	Owner       string `json:"owner"       validate:"required"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates; blocks and
// edges are replaced wholesale when present.
type UpdateWorkflowRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=3"`
	Description *string          `json:"description,omitempty"`
	Blocks      models.BlockList `json:"blocks,omitempty"`
	Edges       []*models.Edge   `json:"edges,omitempty"`
}

// ParameterRequest represents the request body for creating or updating a
// parameter. Only the fields of the requested parameter_type are read.
type ParameterRequest struct {
	Key           string `json:"key"            validate:"required,min=1"`
	ParameterType string `json:"parameter_type" validate:"required,oneof=workflow_input credential context secret credit_card_data"`
	Description   string `json:"description,omitempty"`

	// workflow_input
	DataType     string `json:"data_type,omitempty" validate:"omitempty,oneof=string integer float boolean file_url json"`
	DefaultValue any    `json:"default_value,omitempty"`

	// credential, credit_card_data
	CredentialID string `json:"credential_id,omitempty"`

	// context
	SourceParameterKey string `json:"source_parameter_key,omitempty"`

	// secret
	SecretID string `json:"secret_id,omitempty"`
}

// RenameParameterRequest represents the request body for renaming a parameter.
type RenameParameterRequest struct {
	NewKey string `json:"new_key" validate:"required,min=1"`
}

// ToParameter builds the domain parameter the request describes.
func (r ParameterRequest) ToParameter() (models.Parameter, error) {
	base := models.ParameterBase{
		Key:           r.Key,
		ParameterType: models.ParameterType(r.ParameterType),
		Description:   r.Description,
	}

	switch base.ParameterType {
	case models.ParameterTypeWorkflowInput:
		return &models.WorkflowInputParameter{
			ParameterBase: base,
			DataType:      models.WorkflowInputDataType(r.DataType),
			DefaultValue:  r.DefaultValue,
		}, nil
	case models.ParameterTypeCredential:
		return &models.CredentialParameter{
			ParameterBase: base,
			CredentialID:  r.CredentialID,
		}, nil
	case models.ParameterTypeContext:
		return &models.ContextParameter{
			ParameterBase:      base,
			SourceParameterKey: r.SourceParameterKey,
		}, nil
	case models.ParameterTypeSecret:
		return &models.SecretParameter{
			ParameterBase: base,
			SecretID:      r.SecretID,
		}, nil
	case models.ParameterTypeCreditCardData:
		return &models.CreditCardDataParameter{
			ParameterBase: base,
			CredentialID:  r.CredentialID,
		}, nil
	default:
		return nil, fmt.Errorf("unknown parameter type %q", r.ParameterType)
	}
}
