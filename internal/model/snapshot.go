package model

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"daily-todo/internal/apperr"
)

// Snapshot is an immutable capture of the task list under a title.
// Todos holds the encoded items and is opaque to the store.
type Snapshot struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Todos     string `gorm:"type:text"`
	CreatedAt time.Time
}

func (Snapshot) TableName() string { return "snapshots" }

// SnapshotItem is the frozen form of a task inside a snapshot.
type SnapshotItem struct {
	Text      string `json:"text"`
	Completed Bit    `json:"completed"`
}

// SnapshotEntry is a snapshot with its payload decoded, as shown in history.
type SnapshotEntry struct {
	ID        uint
	Title     string
	Items     []SnapshotItem
	CreatedAt time.Time
}

// Items decodes the stored payload. Callers that render history should use
// ItemsOrEmpty instead.
func (s Snapshot) Items() ([]SnapshotItem, error) {
	return DecodeItems(s.Todos)
}

// ItemsOrEmpty decodes the stored payload and degrades to an empty list.
func (s Snapshot) ItemsOrEmpty() []SnapshotItem {
	items, err := DecodeItems(s.Todos)
	if err != nil {
		return []SnapshotItem{}
	}
	return items
}

// EncodeItems renders items into the payload stored with a snapshot.
func EncodeItems(items []SnapshotItem) (string, error) {
	if items == nil {
		items = []SnapshotItem{}
	}
	data, err := sonic.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode snapshot items: %w", err)
	}
	return string(data), nil
}

// DecodeItems parses a stored payload. Absent, null or malformed payloads
// yield a *apperr.DecodeError.
func DecodeItems(payload string) ([]SnapshotItem, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &apperr.DecodeError{Payload: payload, Err: errors.New("payload is not a list")}
	}
	var items []SnapshotItem
	if err := sonic.Unmarshal(trimmed, &items); err != nil {
		return nil, &apperr.DecodeError{Payload: payload, Err: err}
	}
	if items == nil {
		items = []SnapshotItem{}
	}
	return items, nil
}

// ParseItems validates a client supplied todos value. It must be a JSON list
// of objects; an empty list is allowed.
func ParseItems(raw []byte) ([]SnapshotItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apperr.Validation("todos must be a list")
	}
	var items []SnapshotItem
	if err := sonic.Unmarshal(trimmed, &items); err != nil {
		return nil, apperr.Validation("todos must be a list of {text, completed}: %v", err)
	}
	if items == nil {
		items = []SnapshotItem{}
	}
	return items, nil
}

// ItemsFromTasks freezes tasks into snapshot items, preserving order.
func ItemsFromTasks(tasks []Task) []SnapshotItem {
	items := make([]SnapshotItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, SnapshotItem{Text: t.Title, Completed: Bit(t.Completed)})
	}
	return items
}

// DateTitle formats the default snapshot title, e.g. 25/06/01.
func DateTitle(t time.Time) string {
	return t.Format("06/01/02")
}
