package service

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
)

// SnapshotStore is the persistence backend for snapshots, either the
// repository itself or its cache wrapper.
type SnapshotStore interface {
	Create(ctx context.Context, snapshot *model.Snapshot) error
	List(ctx context.Context) ([]model.Snapshot, error)
	Delete(ctx context.Context, id uint) error
}

// SnapshotService implements the snapshot store contract.
type SnapshotService struct {
	store  SnapshotStore
	logger *log.Logger
	now    func() time.Time
}

func NewSnapshotService(store SnapshotStore, logger *log.Logger) *SnapshotService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SnapshotService{store: store, logger: logger, now: time.Now}
}

// Create validates and stores an immutable snapshot. items must be non-nil;
// an empty list is a valid capture.
func (s *SnapshotService) Create(ctx context.Context, title string, items []model.SnapshotItem) (*model.SnapshotEntry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if items == nil {
		return nil, apperr.Validation("todos must be a list")
	}
	payload, err := model.EncodeItems(items)
	if err != nil {
		return nil, apperr.Validation("todos: %v", err)
	}
	snapshot := model.Snapshot{
		Title:     title,
		Todos:     payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, &snapshot); err != nil {
		return nil, err
	}
	entry := model.SnapshotEntry{
		ID:        snapshot.ID,
		Title:     snapshot.Title,
		Items:     append([]model.SnapshotItem{}, items...),
		CreatedAt: snapshot.CreatedAt,
	}
	return &entry, nil
}

// History lists snapshots newest first with payloads decoded. A payload that
// cannot be decoded is logged and replaced by an empty list.
func (s *SnapshotService) History(ctx context.Context) ([]model.SnapshotEntry, error) {
	snapshots, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]model.SnapshotEntry, 0, len(snapshots))
	for _, snap := range snapshots {
		items, err := snap.Items()
		if err != nil {
			s.logger.WithError(err).WithField("snapshot_id", snap.ID).Warn("snapshot payload unreadable, showing empty list")
			items = []model.SnapshotItem{}
		}
		entries = append(entries, model.SnapshotEntry{
			ID:        snap.ID,
			Title:     snap.Title,
			Items:     items,
			CreatedAt: snap.CreatedAt,
		})
	}
	return entries, nil
}

func (s *SnapshotService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}
