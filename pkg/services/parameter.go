package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/plumehq/plume/pkg/eventbus"
	"github.com/plumehq/plume/pkg/events"
	"github.com/plumehq/plume/pkg/identifier"
	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/otelhelper"
	"github.com/plumehq/plume/pkg/parameters"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/references"
)

// Parameter edits the parameter collection of draft workflows. Every
// destructive edit (rename, remove) propagates through the workflow's blocks
// and persists as one unit: the parameter entry, the inline {{ key }}
// references and the block key lists never go out of sync.
type Parameter struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
}

// NewParameter creates a new parameter service. tracer may be nil when
// tracing is not configured.
func NewParameter(persistence persistence.Persistence, eventBus eventbus.EventBus, tracer trace.Tracer) *Parameter {
	return &Parameter{
		persistence: persistence,
		eventBus:    eventBus,
		tracer:      tracer,
	}
}

// List returns the workflow's parameters in collection order.
func (p *Parameter) List(ctx context.Context, workflowID string) ([]models.Parameter, error) {
	workflow, err := p.draft(ctx, workflowID, false)
	if err != nil {
		return nil, err
	}

	return workflow.Parameters, nil
}

// AffectedBlocks returns the blocks that reference key through either an
// inline {{ key }} token or their parameter-key list, in collection order.
// Pure read; the UI calls it to build the confirmation dialog before a rename
// or delete.
func (p *Parameter) AffectedBlocks(ctx context.Context, workflowID, key string) ([]references.BlockRef, error) {
	workflow, err := p.draft(ctx, workflowID, false)
	if err != nil {
		return nil, err
	}

	return references.AffectedBlocks(workflow.Blocks, key), nil
}

// Add validates the key and appends the parameter to the draft.
func (p *Parameter) Add(ctx context.Context, workflowID string, param models.Parameter) (models.Parameter, error) {
	ctx, span := p.startSpan(ctx, "parameter.add", workflowID)
	defer span.End()

	if param == nil {
		return nil, parameters.ErrNilParameter
	}

	workflow, err := p.draft(ctx, workflowID, true)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	store, err := parameters.NewStore(workflow.Parameters...)
	if err != nil {
		return nil, fmt.Errorf("workflow %s has an inconsistent parameter collection: %w", workflowID, err)
	}

	key, err := identifier.ValidateKey(param.ParameterKey(), store.Keys(), "")
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	param = param.WithKey(key)

	if err := store.Add(param); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	workflow.Parameters = store.List()

	if err := p.save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ParameterKeyKey, key))
	p.publish(ctx, workflowID, events.ParameterAdded{
		BaseEvent:     events.NewBaseEvent(events.ParameterAddedEvent, workflowID),
		Key:           key,
		ParameterType: string(param.Type()),
	})

	return param, nil
}

// Update replaces the definition stored under key without changing the key.
// Key changes go through Rename so reference propagation cannot be skipped.
func (p *Parameter) Update(ctx context.Context, workflowID, key string, param models.Parameter) (models.Parameter, error) {
	ctx, span := p.startSpan(ctx, "parameter.update", workflowID)
	defer span.End()

	workflow, err := p.draft(ctx, workflowID, true)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	store, err := parameters.NewStore(workflow.Parameters...)
	if err != nil {
		return nil, fmt.Errorf("workflow %s has an inconsistent parameter collection: %w", workflowID, err)
	}

	if err := store.Update(key, param); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	workflow.Parameters = store.List()

	if err := p.save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ParameterKeyKey, key))
	p.publish(ctx, workflowID, events.ParameterUpdated{
		BaseEvent: events.NewBaseEvent(events.ParameterUpdatedEvent, workflowID),
		Key:       key,
	})

	return param, nil
}

// Rename changes a parameter's key and rewrites every reference to it across
// the draft's blocks. The emitted event carries the ids of the blocks the
// propagation touched.
func (p *Parameter) Rename(ctx context.Context, workflowID, oldKey, newKey string) (models.Parameter, error) {
	ctx, span := p.startSpan(ctx, "parameter.rename", workflowID)
	defer span.End()

	workflow, err := p.draft(ctx, workflowID, true)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	store, err := parameters.NewStore(workflow.Parameters...)
	if err != nil {
		return nil, fmt.Errorf("workflow %s has an inconsistent parameter collection: %w", workflowID, err)
	}

	affected := references.AffectedBlocks(workflow.Blocks, oldKey)

	blocks, err := store.Rename(workflow.Blocks, oldKey, newKey)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	workflow.Blocks = blocks
	workflow.Parameters = store.List()

	if err := p.save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	renamed, _ := store.Get(newKey)

	span.SetAttributes(
		attribute.String(otelhelper.ParameterKeyKey, renamed.ParameterKey()),
		attribute.Int("plume.blocks.affected", len(affected)),
	)
	p.publish(ctx, workflowID, events.ParameterRenamed{
		BaseEvent:        events.NewBaseEvent(events.ParameterRenamedEvent, workflowID),
		OldKey:           oldKey,
		NewKey:           renamed.ParameterKey(),
		AffectedBlockIDs: blockIDs(affected),
	})

	return renamed, nil
}

// Remove deletes a parameter and strips every reference to it from the
// draft's blocks.
func (p *Parameter) Remove(ctx context.Context, workflowID, key string) error {
	ctx, span := p.startSpan(ctx, "parameter.remove", workflowID)
	defer span.End()

	workflow, err := p.draft(ctx, workflowID, true)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	store, err := parameters.NewStore(workflow.Parameters...)
	if err != nil {
		return fmt.Errorf("workflow %s has an inconsistent parameter collection: %w", workflowID, err)
	}

	affected := references.AffectedBlocks(workflow.Blocks, key)

	blocks, err := store.Delete(workflow.Blocks, key)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	workflow.Blocks = blocks
	workflow.Parameters = store.List()

	if err := p.save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	span.SetAttributes(
		attribute.String(otelhelper.ParameterKeyKey, key),
		attribute.Int("plume.blocks.affected", len(affected)),
	)
	p.publish(ctx, workflowID, events.ParameterRemoved{
		BaseEvent:        events.NewBaseEvent(events.ParameterRemovedEvent, workflowID),
		Key:              key,
		AffectedBlockIDs: blockIDs(affected),
	})

	return nil
}

// draft loads a workflow. When forEdit is set the workflow must be a draft;
// reads are allowed on any version.
func (p *Parameter) draft(ctx context.Context, workflowID string, forEdit bool) (*models.Workflow, error) {
	workflow, err := p.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	if !forEdit {
		return workflow, nil
	}

	switch workflow.Status {
	case models.WorkflowStatusPublished:
		return nil, ErrCannotModifyPublished
	case models.WorkflowStatusUnpublished:
		return nil, ErrCannotModifyUnpublished
	default:
		return workflow, nil
	}
}

func (p *Parameter) save(ctx context.Context, workflow *models.Workflow) error {
	if err := p.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (p *Parameter) startSpan(ctx context.Context, name, workflowID string) (context.Context, trace.Span) {
	if p.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}

	return otelhelper.StartSpan(ctx, p.tracer, name,
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
}

func (p *Parameter) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if p.eventBus == nil {
		return
	}

	_ = p.eventBus.Publish(ctx, workflowID, event)
}

func blockIDs(refs []references.BlockRef) []string {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.BlockID
	}

	return ids
}
