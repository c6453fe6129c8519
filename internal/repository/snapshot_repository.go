package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
)

// SnapshotRepository stores immutable snapshots. There is no update path.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *model.Snapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return classify("create snapshot", err)
	}
	return nil
}

// List returns every snapshot, newest id first.
func (r *SnapshotRepository) List(ctx context.Context) ([]model.Snapshot, error) {
	var snapshots []model.Snapshot
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&snapshots).Error; err != nil {
		return nil, classify("list snapshots", err)
	}
	return snapshots, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Snapshot{}, id)
	if res.Error != nil {
		return classify("delete snapshot", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete snapshot %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
