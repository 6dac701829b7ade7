package tasks

import (
	"context"
	"errors"

	"taskboard/cmd/server/handlers/handlerutil"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/services/tasks"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for tasks service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req tasks.CreateTaskRequest) (*tasks.Task, error)
	List(ctx context.Context, userID bson.ObjectID, req tasks.ListTasksRequest) ([]*tasks.Task, error)
	Get(ctx context.Context, userID, taskID bson.ObjectID) (*tasks.Task, error)
	Update(ctx context.Context, userID, taskID bson.ObjectID, req tasks.UpdateTaskRequest) (*tasks.Task, error)
	Delete(ctx context.Context, userID, taskID bson.ObjectID) error
	Stats(ctx context.Context, userID bson.ObjectID) (*tasks.Stats, error)
}

// Handlers contains the tasks HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new tasks handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{service: service, validator: validator}
}

// Create handles task creation
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body tasks.CreateTaskRequest true "Create task request"
// @Success 201 {object} tasks.Task
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /tasks [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req tasks.CreateTaskRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateTask"); err != nil {
		return err
	}

	task, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return mapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// List handles task listing
// @Summary List tasks, newest first
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param status query string false "todo|in-progress|review|done"
// @Param priority query string false "low|medium|high|critical"
// @Success 200 {array} tasks.Task
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /tasks [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req tasks.ListTasksRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListTasks"); err != nil {
		return err
	}

	list, err := h.service.List(c.UserContext(), userID, req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(list)
}

// Get returns one task
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param id path string true "Task ID"
// @Success 200 {object} tasks.Task
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /tasks/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := handlerutil.ExtractID(c, "GetTask", httperr.ErrTaskNotFound)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.UserContext(), userID, taskID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(task)
}

// Update handles partial task updates
// @Summary Update a task
// @Description Only present fields change. "dueDate": null clears the due date.
// @Tags tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Task ID"
// @Param request body tasks.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} tasks.Task
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /tasks/{id} [put]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := handlerutil.ExtractID(c, "UpdateTask", httperr.ErrTaskNotFound)
	if err != nil {
		return err
	}

	var req tasks.UpdateTaskRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateTask"); err != nil {
		return err
	}

	task, err := h.service.Update(c.UserContext(), userID, taskID, req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(task)
}

// Delete handles task deletion
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security Bearer
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /tasks/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := handlerutil.ExtractID(c, "DeleteTask", httperr.ErrTaskNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), userID, taskID); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// Stats summarizes the caller's tasks
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Security Bearer
// @Success 200 {object} tasks.Stats
// @Failure 401 {object} httperr.E
// @Router /tasks/stats/overview [get]
func (h *Handlers) Stats(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(stats)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		return httperr.Fail(httperr.ErrTaskNotFound)
	case errors.Is(err, tasks.ErrInvalidTitle):
		return httperr.Field("title", "is required")
	default:
		return httperr.Fail(httperr.Internal(err))
	}
}
