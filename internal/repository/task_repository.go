package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return classify("create task", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, classify("list tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, classify(fmt.Sprintf("find task %d", id), err)
	}
	return &task, nil
}

// Update sets title, completion and updated_at on an existing row and
// returns the stored task. An absent id reports apperr.ErrNotFound; the row is
// never recreated.
func (r *TaskRepository) Update(ctx context.Context, id uint, title string, completed bool, updatedAt time.Time) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(map[string]any{
		"title":      title,
		"completed":  completed,
		"updated_at": updatedAt,
	})
	if res.Error != nil {
		return nil, classify(fmt.Sprintf("update task %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update task %d: %w", id, apperr.ErrNotFound)
	}
	return r.FindByID(ctx, id)
}

// Delete removes a task. Deleting an absent id reports apperr.ErrNotFound.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return classify("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Ping checks the underlying connection.
func (r *TaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperr.Persistence("ping db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Persistence("ping db", err)
	}
	return nil
}
