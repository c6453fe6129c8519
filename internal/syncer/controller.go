// Package syncer keeps a client-side mirror of the server's task list and
// reconciles it after every mutation.
package syncer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
)

// TaskAPI is the remote task store.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title string) (model.Task, error)
	UpdateTask(ctx context.Context, id uint, title string, completed bool) (model.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

// SnapshotAPI is the remote snapshot store.
type SnapshotAPI interface {
	CreateSnapshot(ctx context.Context, title string, items []model.SnapshotItem) (model.SnapshotEntry, error)
}

// Renderer draws the current task list. It receives a copy it may keep.
type Renderer interface {
	Render(tasks []model.Task)
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Notify(msg string)
	Alert(msg string, err error)
}

// Controller owns the mirror. All reads and writes go through its methods.
//
// Network calls are made without holding the lock, so a slow request does
// not block rendering. Every request resolves its task by persistent id at
// the moment it is issued.
type Controller struct {
	tasks     TaskAPI
	snapshots SnapshotAPI
	renderer  Renderer
	notifier  Notifier
	logger    *log.Logger
	now       func() time.Time

	mu     sync.Mutex
	mirror []model.Task
}

func New(tasks TaskAPI, snapshots SnapshotAPI, renderer Renderer, notifier Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{
		tasks:     tasks,
		snapshots: snapshots,
		renderer:  renderer,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Tasks returns a copy of the mirror in display order.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Load replaces the mirror with the server's task list.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.tasks.ListTasks(ctx)
	if err != nil {
		c.fail("Could not load tasks", err)
		return err
	}
	c.mu.Lock()
	c.mirror = append([]model.Task(nil), tasks...)
	view := c.copyLocked()
	c.mu.Unlock()
	c.render(view)
	return nil
}

// Add creates a task and appends the server's record. Blank text is ignored.
func (c *Controller) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	task, err := c.tasks.CreateTask(ctx, text)
	if err != nil {
		c.fail("Could not add task", err)
		return err
	}
	c.mu.Lock()
	c.mirror = append(c.mirror, task)
	view := c.copyLocked()
	c.mu.Unlock()
	c.render(view)
	return nil
}

// Toggle flips completion optimistically and then persists it. A failed
// update is logged and reported but not rolled back.
func (c *Controller) Toggle(ctx context.Context, id uint) error {
	c.mu.Lock()
	pos := c.indexLocked(id)
	if pos < 0 {
		c.mu.Unlock()
		return fmt.Errorf("toggle task %d: %w", id, apperr.ErrNotFound)
	}
	c.mirror[pos].Completed = !c.mirror[pos].Completed
	title, completed := c.mirror[pos].Title, c.mirror[pos].Completed
	view := c.copyLocked()
	c.mu.Unlock()
	c.render(view)

	updated, err := c.tasks.UpdateTask(ctx, id, title, completed)
	if err != nil {
		c.fail("Could not save task state", err)
		return err
	}
	// Completion stays as the user left it; a later toggle may already be
	// in flight. Only server-owned fields are taken from the response.
	c.reconcile(id, func(t *model.Task) {
		t.UpdatedAt = updated.UpdatedAt
	})
	return nil
}

// ToggleAt toggles the task currently shown at pos.
func (c *Controller) ToggleAt(ctx context.Context, pos int) error {
	id, err := c.idAt(pos)
	if err != nil {
		return err
	}
	return c.Toggle(ctx, id)
}

// Edit renames a task once the server has accepted the new title.
func (c *Controller) Edit(ctx context.Context, id uint, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("title is required")
	}
	c.mu.Lock()
	pos := c.indexLocked(id)
	if pos < 0 {
		c.mu.Unlock()
		return fmt.Errorf("edit task %d: %w", id, apperr.ErrNotFound)
	}
	completed := c.mirror[pos].Completed
	c.mu.Unlock()

	updated, err := c.tasks.UpdateTask(ctx, id, text, completed)
	if err != nil {
		c.fail("Could not rename task", err)
		return err
	}
	c.reconcile(id, func(t *model.Task) {
		t.Title = updated.Title
		t.UpdatedAt = updated.UpdatedAt
	})
	return nil
}

// Remove deletes a task on the server and only then drops it from the
// mirror. On failure the mirror is left untouched.
func (c *Controller) Remove(ctx context.Context, id uint) error {
	c.mu.Lock()
	known := c.indexLocked(id) >= 0
	c.mu.Unlock()
	if !known {
		return fmt.Errorf("remove task %d: %w", id, apperr.ErrNotFound)
	}

	if err := c.tasks.DeleteTask(ctx, id); err != nil {
		c.fail("Could not delete task", err)
		return err
	}

	c.mu.Lock()
	if pos := c.indexLocked(id); pos >= 0 {
		c.mirror = append(c.mirror[:pos], c.mirror[pos+1:]...)
	}
	view := c.copyLocked()
	c.mu.Unlock()
	c.render(view)
	return nil
}

// RemoveAt removes the task currently shown at pos.
func (c *Controller) RemoveAt(ctx context.Context, pos int) error {
	id, err := c.idAt(pos)
	if err != nil {
		return err
	}
	return c.Remove(ctx, id)
}

// Capture saves a deep copy of the mirror as a snapshot. A blank title
// defaults to today's date.
func (c *Controller) Capture(ctx context.Context, title string) (model.SnapshotEntry, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DateTitle(c.now())
	}
	c.mu.Lock()
	items := model.ItemsFromTasks(c.mirror)
	c.mu.Unlock()

	entry, err := c.snapshots.CreateSnapshot(ctx, title, items)
	if err != nil {
		c.fail("Could not save snapshot", err)
		return model.SnapshotEntry{}, err
	}
	if c.notifier != nil {
		c.notifier.Notify("Snapshot saved!")
	}
	return entry, nil
}

func (c *Controller) idAt(pos int) (uint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.mirror) {
		return 0, fmt.Errorf("position %d: %w", pos, apperr.ErrNotFound)
	}
	return c.mirror[pos].ID, nil
}

func (c *Controller) reconcile(id uint, apply func(t *model.Task)) {
	c.mu.Lock()
	pos := c.indexLocked(id)
	if pos < 0 {
		c.mu.Unlock()
		return
	}
	apply(&c.mirror[pos])
	view := c.copyLocked()
	c.mu.Unlock()
	c.render(view)
}

func (c *Controller) indexLocked(id uint) int {
	for i := range c.mirror {
		if c.mirror[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) copyLocked() []model.Task {
	return append([]model.Task(nil), c.mirror...)
}

func (c *Controller) render(view []model.Task) {
	if c.renderer != nil {
		c.renderer.Render(view)
	}
}

func (c *Controller) fail(msg string, err error) {
	c.logger.WithError(err).Warn(strings.ToLower(msg))
	if c.notifier != nil {
		c.notifier.Alert(msg, err)
	}
}
