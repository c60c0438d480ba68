// Package models defines the domain model for browser-automation workflow definitions.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Current active version
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical version
)

// Workflow is a browser-automation workflow definition: a flat collection of
// typed blocks, the edges connecting them, and the named parameters a run can
// be supplied with. Blocks and edges reference each other by opaque id only;
// there is no owned tree.
type Workflow struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"              validate:"required,min=3"`
	Description     string         `json:"description"`
	Status          WorkflowStatus `json:"status"             validate:"required"`
	WorkflowGroupID string         `json:"workflow_group_id"` // Stable ID linking all versions
	Blocks          BlockList      `json:"blocks"`
	Edges           []*Edge        `json:"edges"`
	Parameters      ParameterList  `json:"parameters"`
	Owner           string         `json:"owner"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	PublishedAt     *time.Time     `json:"published_at,omitempty"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty"`
}

// Edge connects two blocks by id (fully normalized adjacency list entry).
type Edge struct {
	ID            string `json:"id"`
	SourceBlockID string `json:"source_block_id" validate:"required"`
	TargetBlockID string `json:"target_block_id" validate:"required"`
}
