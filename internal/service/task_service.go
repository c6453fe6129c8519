package service

import (
	"context"
	"strings"
	"time"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
	"daily-todo/internal/repository"
)

// TaskService implements the task store contract on top of the repository.
type TaskService struct {
	taskRepo *repository.TaskRepository
	now      func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, now: time.Now}
}

// Create stores a new open task. created_at and updated_at are equal.
func (s *TaskService) Create(ctx context.Context, title string) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("title is required")
	}
	now := s.now().UTC()
	task := model.Task{
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.List(ctx)
}

// Update overwrites title and completion and stamps updated_at. A task
// deleted concurrently stays deleted and the update reports not found.
func (s *TaskService) Update(ctx context.Context, id uint, title string, completed bool) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("title is required")
	}
	return s.taskRepo.Update(ctx, id, title, completed, s.now().UTC())
}

// Delete removes a task. A repeated delete of the same id is not found.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.taskRepo.Delete(ctx, id)
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.taskRepo.Ping(ctx)
}
