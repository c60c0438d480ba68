package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plumehq/plume/pkg/eventbus"
	"github.com/plumehq/plume/pkg/events"
	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/persistence"
)

// Publishing handles the workflow version lifecycle: a draft becomes the
// published version, the previously published version of the same group is
// retired to unpublished, and editing resumes on a fresh draft copy.
type Publishing struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
}

// NewPublishing creates a new workflow publishing service.
func NewPublishing(persistence persistence.Persistence, eventBus eventbus.EventBus) *Publishing {
	return &Publishing{
		persistence: persistence,
		eventBus:    eventBus,
	}
}

// PublishWorkflow promotes a draft to published and retires the group's
// previously published version.
func (p *Publishing) PublishWorkflow(ctx context.Context, workflowID string) (*models.Workflow, error) {
	repo := p.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	if workflow.Status == models.WorkflowStatusPublished {
		return nil, ErrAlreadyPublished
	}

	if err := p.validateForPublishing(workflow); err != nil {
		return nil, err
	}

	current, err := p.publishedInGroup(ctx, workflow.WorkflowGroupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if current != nil && current.ID != workflow.ID {
		current.Status = models.WorkflowStatusUnpublished
		current.UpdatedAt = now

		if err := repo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to retire published workflow: %w", err)
		}

		p.publish(ctx, current.ID, events.WorkflowUnpublished{
			BaseEvent:       events.NewBaseEvent(events.WorkflowUnpublishedEvent, current.ID),
			WorkflowGroupID: current.WorkflowGroupID,
		})
	}

	workflow.Status = models.WorkflowStatusPublished
	workflow.PublishedAt = &now
	workflow.UpdatedAt = now

	if err := repo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to publish workflow: %w", err)
	}

	p.publish(ctx, workflow.ID, events.WorkflowPublished{
		BaseEvent:       events.NewBaseEvent(events.WorkflowPublishedEvent, workflow.ID),
		WorkflowGroupID: workflow.WorkflowGroupID,
	})

	return workflow, nil
}

// GetPublishedWorkflow returns the published version of a workflow group.
func (p *Publishing) GetPublishedWorkflow(ctx context.Context, workflowGroupID string) (*models.Workflow, error) {
	workflow, err := p.publishedInGroup(ctx, workflowGroupID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowGroupError("GetPublishedWorkflow", workflowGroupID, persistence.ErrPublishedWorkflowNotFound)
	}

	return workflow, nil
}

// CreateDraftFromPublished copies the group's published version into a new
// draft so editing can continue without touching the live definition.
func (p *Publishing) CreateDraftFromPublished(ctx context.Context, workflowGroupID string) (*models.Workflow, error) {
	published, err := p.GetPublishedWorkflow(ctx, workflowGroupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	draft := *published
	draft.ID = uuid.New().String()
	draft.Status = models.WorkflowStatusDraft
	draft.PublishedAt = nil
	draft.CreatedAt = now
	draft.UpdatedAt = now

	if err := p.persistence.WorkflowRepository().Save(ctx, &draft); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	p.publish(ctx, draft.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, draft.ID),
		Title:     draft.Title,
	})

	return &draft, nil
}

// validateForPublishing ensures a workflow is ready to be published.
func (p *Publishing) validateForPublishing(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if strings.TrimSpace(workflow.Title) == "" {
		return ErrWorkflowTitleRequired
	}

	if len(workflow.Blocks) == 0 {
		return ErrBlocksRequired
	}

	return nil
}

func (p *Publishing) publishedInGroup(ctx context.Context, workflowGroupID string) (*models.Workflow, error) {
	status := models.WorkflowStatusPublished

	result, err := p.persistence.WorkflowRepository().ListWorkflows(ctx, persistence.ListWorkflowsOptions{
		Limit:           1,
		Status:          &status,
		WorkflowGroupID: workflowGroupID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list published workflows: %w", err)
	}

	if len(result.Workflows) == 0 {
		return nil, nil
	}

	return result.Workflows[0], nil
}

func (p *Publishing) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if p.eventBus == nil {
		return
	}

	_ = p.eventBus.Publish(ctx, workflowID, event)
}
