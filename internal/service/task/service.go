// Package task covers the assignee-facing task operations.
package task

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrNotYourTask   = errors.New("Not your task")
	ErrInvalidStatus = errors.New("status must be todo|doing|done|blocked")
	ErrInvalidHours  = errors.New("actualHours must be >= 0")
)

type Service struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func NewService(tasks repository.TaskRepository, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, logger: logger}
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Update applies patch. Unassigned tasks may be updated by anyone who reaches this call.
func (s *Service) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}
	if patch.ActualHours != nil && *patch.ActualHours < 0 {
		return nil, ErrInvalidHours
	}

	current, err := s.tasks.Get(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if current.AssigneeID != nil && *current.AssigneeID != userID {
		return nil, ErrNotYourTask
	}

	updated, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	logger.WithTrace(ctx, s.logger).Info("Task updated", zap.String("task_id", taskID), zap.String("status", updated.Status))
	return updated, nil
}

func validStatus(s string) bool {
	switch s {
	case model.TaskTodo, model.TaskDoing, model.TaskDone, model.TaskBlocked:
		return true
	}
	return false
}
