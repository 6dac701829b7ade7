package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"taskboard/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles task business logic
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a new tasks service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// CreateTaskRequest represents a task creation request. Status and
// priority default to todo and medium.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200" example:"Ship the release"`
	Description string  `json:"description" validate:"max=10000" example:"Tag, build, announce"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in-progress review done" example:"todo"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high critical" example:"medium"`
	DueDate     DueDate `json:"dueDate" swaggertype:"string" example:"2025-07-01"`
}

// UpdateTaskRequest is a partial update; "dueDate": null clears the date.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200" example:"Ship the release"`
	Description *string `json:"description" validate:"omitnil,max=10000" example:"Tag, build, announce"`
	Status      *string `json:"status" validate:"omitnil,oneof=todo in-progress review done" example:"in-progress"`
	Priority    *string `json:"priority" validate:"omitnil,oneof=low medium high critical" example:"high"`
	DueDate     DueDate `json:"dueDate" swaggertype:"string" example:"2025-07-01T17:00:00Z"`
}

// ListTasksRequest represents a list tasks request
type ListTasksRequest struct {
	Status   string `query:"status"   validate:"omitempty,oneof=todo in-progress review done" example:"todo"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high critical" example:"high"`
}

// Create creates a new task
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateTaskRequest) (*Task, error) {
	title := sanitize.Line(req.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	now := s.now().UTC()
	task := &Task{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		Title:       title,
		Description: sanitize.Clean(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Time,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = StatusTodo
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.log.Error(ErrCreateTask.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateTask
	}
	return task, nil
}

// List returns the user's tasks, newest first.
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListTasksRequest) ([]*Task, error) {
	list, err := s.repo.List(ctx, userID, ListFilter(req))
	if err != nil {
		s.log.Error(ErrListTasks.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListTasks
	}
	if list == nil {
		list = []*Task{}
	}
	return list, nil
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, userID, taskID bson.ObjectID) (*Task, error) {
	task, err := s.repo.Get(ctx, userID, taskID)
	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) {
			s.log.Error("failed to get task", "error", err, "user_id", userID.Hex(), "task_id", taskID.Hex())
		}
		return nil, err
	}
	return task, nil
}

// Update applies the present fields of req.
func (s *Service) Update(ctx context.Context, userID, taskID bson.ObjectID, req UpdateTaskRequest) (*Task, error) {
	patch := UpdateTask{
		Status:   req.Status,
		Priority: req.Priority,
	}
	if req.Title != nil {
		title := sanitize.Line(*req.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		patch.Title = &title
	}
	if req.Description != nil {
		desc := sanitize.Clean(*req.Description)
		patch.Description = &desc
	}
	if req.DueDate.Set {
		patch.DueDate = req.DueDate.Time
		patch.ClearDueDate = req.DueDate.Time == nil
	}

	task, err := s.repo.Update(ctx, userID, taskID, patch)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, err
		}
		s.log.Error(ErrUpdateTask.Error(), "error", err, "user_id", userID.Hex(), "task_id", taskID.Hex())
		return nil, ErrUpdateTask
	}
	return task, nil
}

// Delete deletes a task
func (s *Service) Delete(ctx context.Context, userID, taskID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return err
		}
		s.log.Error(ErrDeleteTask.Error(), "error", err, "user_id", userID.Hex(), "task_id", taskID.Hex())
		return ErrDeleteTask
	}
	return nil
}

// Stats returns totals with every status and priority present, zero or not.
func (s *Service) Stats(ctx context.Context, userID bson.ObjectID) (*Stats, error) {
	raw, err := s.repo.Stats(ctx, userID, s.now().UTC())
	if err != nil {
		s.log.Error(ErrTaskStats.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrTaskStats
	}

	out := &Stats{
		Total:      raw.Total,
		ByStatus:   make(map[string]int64, len(Statuses)),
		ByPriority: make(map[string]int64, len(Priorities)),
		Overdue:    raw.Overdue,
	}
	for _, st := range Statuses {
		out.ByStatus[st] = raw.ByStatus[st]
	}
	for _, p := range Priorities {
		out.ByPriority[p] = raw.ByPriority[p]
	}
	return out, nil
}
