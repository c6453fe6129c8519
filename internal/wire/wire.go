// Package wire holds the JSON bodies exchanged between the REST server and
// its clients. completed travels as 0/1.
package wire

import (
	"encoding/json"
	"time"

	"daily-todo/internal/model"
)

const (
	MsgTodoDeleted      = "Todo deleted successfully"
	MsgSnapshotDeleted  = "Snapshot deleted successfully"
	MsgTodoNotFound     = "Todo not found"
	MsgSnapshotNotFound = "Snapshot not found"
)

type Task struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Completed model.Bit  `json:"completed"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func FromTask(t model.Task) Task {
	created := t.CreatedAt
	return Task{
		ID:        t.ID,
		Title:     t.Title,
		Completed: model.Bit(t.Completed),
		CreatedAt: &created,
		UpdatedAt: t.UpdatedAt,
	}
}

// FromUpdatedTask is the PUT response shape, which omits created_at.
func FromUpdatedTask(t model.Task) Task {
	out := FromTask(t)
	out.CreatedAt = nil
	return out
}

func (t Task) Model() model.Task {
	out := model.Task{
		ID:        t.ID,
		Title:     t.Title,
		Completed: bool(t.Completed),
		UpdatedAt: t.UpdatedAt,
	}
	if t.CreatedAt != nil {
		out.CreatedAt = *t.CreatedAt
	}
	return out
}

type CreateTaskRequest struct {
	Title string `json:"title"`
}

type UpdateTaskRequest struct {
	Title     string    `json:"title"`
	Completed model.Bit `json:"completed"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSnapshotRequest keeps todos raw so the server can check its shape.
type CreateSnapshotRequest struct {
	Title string          `json:"title"`
	Todos json.RawMessage `json:"todos"`
}

// CreatedSnapshot echoes the saved todos as a list.
type CreatedSnapshot struct {
	ID        uint                 `json:"id"`
	Title     string               `json:"title"`
	Todos     []model.SnapshotItem `json:"todos"`
	CreatedAt time.Time            `json:"created_at"`
}

// Snapshot is a history row; todos is the encoded payload string.
type Snapshot struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Todos     string    `json:"todos"`
	CreatedAt time.Time `json:"created_at"`
}

func FromEntry(e model.SnapshotEntry) (Snapshot, error) {
	payload, err := model.EncodeItems(e.Items)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: e.ID, Title: e.Title, Todos: payload, CreatedAt: e.CreatedAt}, nil
}

// Entry decodes the row, degrading an unreadable payload to an empty list.
// The decode error is returned alongside for logging.
func (s Snapshot) Entry() (model.SnapshotEntry, error) {
	items, err := model.DecodeItems(s.Todos)
	if err != nil {
		items = []model.SnapshotItem{}
	}
	return model.SnapshotEntry{ID: s.ID, Title: s.Title, Items: items, CreatedAt: s.CreatedAt}, err
}
