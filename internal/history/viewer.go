// Package history shows saved snapshots as a strip of cards.
package history

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"daily-todo/internal/model"
)

// SnapshotAPI is the remote snapshot store as seen by the viewer.
type SnapshotAPI interface {
	ListSnapshots(ctx context.Context) ([]model.SnapshotEntry, error)
	DeleteSnapshot(ctx context.Context, id uint) error
}

// Presenter draws the card strip.
type Presenter interface {
	Show(cards []Card)
	Hide()
}

// Card is one snapshot as displayed. Items are never edited.
type Card struct {
	SnapshotID uint
	Title      string
	Items      []model.SnapshotItem
}

// Viewer holds the cards currently on screen in the order the store
// returned them.
type Viewer struct {
	snapshots SnapshotAPI
	presenter Presenter
	logger    *log.Logger

	mu      sync.Mutex
	cards   []Card
	visible bool
}

func NewViewer(snapshots SnapshotAPI, presenter Presenter, logger *log.Logger) *Viewer {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Viewer{snapshots: snapshots, presenter: presenter, logger: logger}
}

// Open fetches every snapshot and shows one card per snapshot.
func (v *Viewer) Open(ctx context.Context) error {
	entries, err := v.snapshots.ListSnapshots(ctx)
	if err != nil {
		v.logger.WithError(err).Warn("could not load history")
		return err
	}
	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		items := e.Items
		if items == nil {
			items = []model.SnapshotItem{}
		}
		cards = append(cards, Card{SnapshotID: e.ID, Title: e.Title, Items: items})
	}

	v.mu.Lock()
	v.cards = cards
	v.visible = true
	view := v.copyLocked()
	v.mu.Unlock()
	v.show(view)
	return nil
}

// CloseCard deletes a snapshot and drops its card once the store confirms.
func (v *Viewer) CloseCard(ctx context.Context, snapshotID uint) error {
	if err := v.snapshots.DeleteSnapshot(ctx, snapshotID); err != nil {
		v.logger.WithError(err).WithField("snapshot_id", snapshotID).Warn("could not delete snapshot")
		return err
	}

	v.mu.Lock()
	for i := range v.cards {
		if v.cards[i].SnapshotID == snapshotID {
			v.cards = append(v.cards[:i], v.cards[i+1:]...)
			break
		}
	}
	visible := v.visible
	view := v.copyLocked()
	v.mu.Unlock()
	if visible {
		v.show(view)
	}
	return nil
}

// Dismiss hides the viewer. Nothing is deleted.
func (v *Viewer) Dismiss() {
	v.mu.Lock()
	v.visible = false
	v.mu.Unlock()
	if v.presenter != nil {
		v.presenter.Hide()
	}
}

// Cards returns the cards currently held by the viewer.
func (v *Viewer) Cards() []Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyLocked()
}

func (v *Viewer) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *Viewer) copyLocked() []Card {
	return append([]Card(nil), v.cards...)
}

func (v *Viewer) show(cards []Card) {
	if v.presenter != nil {
		v.presenter.Show(cards)
	}
}
