package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"daily-todo/internal/model"
)

type taskLister interface {
	List(ctx context.Context) ([]model.Task, error)
}

type snapshotCreator interface {
	Create(ctx context.Context, title string, items []model.SnapshotItem) (*model.SnapshotEntry, error)
}

// AutoSnapshot captures the task list once a day under the date title.
type AutoSnapshot struct {
	tasks     taskLister
	snapshots snapshotCreator
	loc       *time.Location
	logger    *log.Logger
	now       func() time.Time
	timeout   time.Duration
}

func NewAutoSnapshot(tasks taskLister, snapshots snapshotCreator, loc *time.Location, logger *log.Logger) *AutoSnapshot {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AutoSnapshot{
		tasks:     tasks,
		snapshots: snapshots,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
		timeout:   30 * time.Second,
	}
}

// Capture stores the current tasks as a snapshot titled with today's date.
// It returns nil without error when there is nothing to capture.
func (a *AutoSnapshot) Capture(ctx context.Context) (*model.SnapshotEntry, error) {
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	title := model.DateTitle(a.now().In(a.loc))
	return a.snapshots.Create(ctx, title, model.ItemsFromTasks(tasks))
}

// Job adapts Capture for the scheduler.
func (a *AutoSnapshot) Job() func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		entry, err := a.Capture(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			a.logger.Warn("auto snapshot cancelled")
		case err != nil:
			a.logger.WithError(err).Error("auto snapshot failed")
		case entry == nil:
			a.logger.Debug("auto snapshot skipped, no tasks")
		default:
			a.logger.WithFields(log.Fields{
				"snapshot_id": entry.ID,
				"title":       entry.Title,
				"items":       len(entry.Items),
			}).Info("auto snapshot saved")
		}
	}
}
