// Package events defines the events emitted when workflow definitions change
// in the editor. Downstream consumers (the debugger/timeline service, audit
// log) subscribe through the event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Event bus topic for definition changes.
const Topic = "plume.editor.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowCreatedEvent     EventType = "workflow.created"
	WorkflowUpdatedEvent     EventType = "workflow.updated"
	WorkflowDeletedEvent     EventType = "workflow.deleted"
	WorkflowPublishedEvent   EventType = "workflow.published"
	WorkflowUnpublishedEvent EventType = "workflow.unpublished"

	// Parameter lifecycle events.
	ParameterAddedEvent   EventType = "parameter.added"
	ParameterUpdatedEvent EventType = "parameter.updated"
	ParameterRenamedEvent EventType = "parameter.renamed"
	ParameterRemovedEvent EventType = "parameter.removed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope for the given workflow.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type WorkflowCreated struct {
	BaseEvent

	Title string `json:"title"`
}

func (e WorkflowCreated) GetType() EventType { return WorkflowCreatedEvent }

type WorkflowUpdated struct {
	BaseEvent

	Title string `json:"title"`
}

func (e WorkflowUpdated) GetType() EventType { return WorkflowUpdatedEvent }

type WorkflowDeleted struct {
	BaseEvent
}

func (e WorkflowDeleted) GetType() EventType { return WorkflowDeletedEvent }

type WorkflowPublished struct {
	BaseEvent

	WorkflowGroupID string `json:"workflow_group_id"`
}

func (e WorkflowPublished) GetType() EventType { return WorkflowPublishedEvent }

type WorkflowUnpublished struct {
	BaseEvent

	WorkflowGroupID string `json:"workflow_group_id"`
}

func (e WorkflowUnpublished) GetType() EventType { return WorkflowUnpublishedEvent }

type ParameterAdded struct {
	BaseEvent

	Key           string `json:"key"`
	ParameterType string `json:"parameter_type"`
}

func (e ParameterAdded) GetType() EventType { return ParameterAddedEvent }

type ParameterUpdated struct {
	BaseEvent

	Key string `json:"key"`
}

func (e ParameterUpdated) GetType() EventType { return ParameterUpdatedEvent }

// ParameterRenamed records a key rename and the blocks the propagation
// touched, in node-collection order.
type ParameterRenamed struct {
	BaseEvent

	OldKey           string   `json:"old_key"`
	NewKey           string   `json:"new_key"`
	AffectedBlockIDs []string `json:"affected_block_ids"`
}

func (e ParameterRenamed) GetType() EventType { return ParameterRenamedEvent }

type ParameterRemoved struct {
	BaseEvent

	Key              string   `json:"key"`
	AffectedBlockIDs []string `json:"affected_block_ids"`
}

func (e ParameterRemoved) GetType() EventType { return ParameterRemovedEvent }
