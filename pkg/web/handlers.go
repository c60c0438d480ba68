// Package web provides HTTP handlers and REST API endpoints for the workflow editor.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/plumehq/plume/pkg/models"
	"github.com/plumehq/plume/pkg/persistence"
	"github.com/plumehq/plume/pkg/registry"
	"github.com/plumehq/plume/pkg/services"
)

type APIHandlers struct {
	workflowService   *services.Workflow
	publishingService *services.Publishing
	parameterService  *services.Parameter
	validator         *validator.Validate
	registry          *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	publishingService *services.Publishing,
	parameterService *services.Parameter,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService:   workflowService,
		publishingService: publishingService,
		parameterService:  parameterService,
		validator:         validator,
		registry:          registry,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListWorkflowsRequest parses and validates query parameters for listing workflows.
func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.OwnerID = c.Query("owner_id")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Plume API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Plume API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		Title:       req.Title,
		Description: req.Description,
		Owner:       req.Owner,
		Blocks:      models.BlockList{},
		Edges:       []*models.Edge{},
		Parameters:  models.ParameterList{},
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	// Apply partial updates; parameters are managed through their own endpoints
	if req.Title != nil {
		existing.Title = *req.Title
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Blocks != nil {
		existing.Blocks = req.Blocks
	}

	if req.Edges != nil {
		existing.Edges = req.Edges
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	published, err := h.publishingService.PublishWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) CreateDraftFromPublished(c fiber.Ctx) error {
	groupID := c.Params("groupId")
	if groupID == "" {
		return badRequest(c, "Workflow group ID is required")
	}

	draft, err := h.publishingService.CreateDraftFromPublished(c.Context(), groupID)
	if err != nil {
		if persistence.IsPublishedWorkflowNotFound(err) {
			return notFound(c, "Published workflow not found")
		}

		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(draft)
}

// GetBlockTypes returns the block palette: every registered type with its schema.
func (h *APIHandlers) GetBlockTypes(c fiber.Ctx) error {
	types := h.registry.BlockTypes()
	palette := make([]fiber.Map, 0, len(types))

	for _, blockType := range types {
		schema, _ := h.registry.Schema(blockType)
		palette = append(palette, fiber.Map{
			"block_type": blockType,
			"schema":     schema,
		})
	}

	return c.JSON(fiber.Map{"block_types": palette})
}

func (h *APIHandlers) GetParameters(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	params, err := h.parameterService.List(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"parameters": params})
}

func (h *APIHandlers) CreateParameter(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ParameterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	param, err := req.ToParameter()
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.parameterService.Add(c.Context(), id, param)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateParameter(c fiber.Ctx) error {
	id := c.Params("id")
	key := c.Params("key")

	if id == "" || key == "" {
		return badRequest(c, "Workflow ID and parameter key are required")
	}

	var req ParameterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	param, err := req.ToParameter()
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.parameterService.Update(c.Context(), id, key, param)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// RenameParameter changes a parameter's key and propagates the rename through
// every block that references it.
func (h *APIHandlers) RenameParameter(c fiber.Ctx) error {
	id := c.Params("id")
	key := c.Params("key")

	if id == "" || key == "" {
		return badRequest(c, "Workflow ID and parameter key are required")
	}

	var req RenameParameterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	renamed, err := h.parameterService.Rename(c.Context(), id, key, req.NewKey)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(renamed)
}

func (h *APIHandlers) DeleteParameter(c fiber.Ctx) error {
	id := c.Params("id")
	key := c.Params("key")

	if id == "" || key == "" {
		return badRequest(c, "Workflow ID and parameter key are required")
	}

	if err := h.parameterService.Remove(c.Context(), id, key); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetAffectedBlocks returns the blocks referencing a parameter, for the
// confirmation dialog shown before a rename or delete.
func (h *APIHandlers) GetAffectedBlocks(c fiber.Ctx) error {
	id := c.Params("id")
	key := c.Params("key")

	if id == "" || key == "" {
		return badRequest(c, "Workflow ID and parameter key are required")
	}

	affected, err := h.parameterService.AffectedBlocks(c.Context(), id, key)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"affected_blocks": affected})
}
