package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/api/metrics"
	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service   ports.TaskService
	validator *echoValidator
}

func NewTaskHandler(service ports.TaskService, validator *echoValidator) *TaskHandler {
	return &TaskHandler{service: service, validator: validator}
}

// List handles GET /api/tasks.
//
// @Summary      List tasks
// @Description  Newest first. Filters are combined with AND; search matches title, description or client name.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending | in_progress | completed"
// @Param        category  query     string  false  "Category id"
// @Param        priority  query     string  false  "low | medium | high"
// @Param        search    query     string  false  "Case-insensitive substring"
// @Param        limit     query     int     false  "Maximum number of tasks (capped at 500)"
// @Success      200       {object}  taskListEnvelope
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	filter := ports.TaskFilter{
		Status:   domain.TaskStatus(c.QueryParam("status")),
		Category: c.QueryParam("category"),
		Priority: domain.TaskPriority(c.QueryParam("priority")),
		Search:   c.QueryParam("search"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
		}
		filter.Limit = n
	}

	tasks, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskListEnvelope{
		Success: true,
		Tasks:   toTaskResponses(tasks, h.service.Today()),
	})
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskEnvelope{Success: true, Task: toTaskResponse(task, h.service.Today())})
}

// Create handles POST /api/tasks. The technician is always the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload(err)
	}
	if err := h.validator.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), toCreateInput(&req), identity.UserID)
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.WithLabelValues(task.Category).Inc()
	return c.JSON(http.StatusCreated, taskEnvelope{Success: true, Task: toTaskResponse(task, h.service.Today())})
}

// Update handles PUT /api/tasks/:id. Only the keys present in the body are
// changed; unknown keys are rejected.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	var req updateTaskRequest
	if err := decodeStrict(c.Request().Body, &req); err != nil {
		return err
	}

	patch, err := toPatch(&req, h.validator)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}

	metrics.TasksUpdatedTotal.WithLabelValues(string(task.Status)).Inc()
	return c.JSON(http.StatusOK, taskEnvelope{Success: true, Task: toTaskResponse(task, h.service.Today())})
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "task deleted"})
}

// decodeStrict decodes a single JSON object, refusing keys the target does
// not declare.
func decodeStrict(body io.Reader, dst any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: could not read body", domain.ErrValidation)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return fmt.Errorf("%w: unknown field %s", domain.ErrValidation, field)
		}
		return invalidPayload(err)
	}
	return nil
}

func invalidPayload(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return he
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: malformed JSON", domain.ErrValidation)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Errorf("%w: %s has the wrong type", domain.ErrValidation, typeErr.Field)
	}
	return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
}
