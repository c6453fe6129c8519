// Package client is the REST client used by every front-end to reach the
// task and snapshot stores.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
	"daily-todo/internal/wire"
)

// StatusError is a non-2xx response. It unwraps to the matching apperr
// sentinel so callers can use errors.Is.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusBadRequest:
		return apperr.ErrValidation
	default:
		return apperr.ErrPersistence
	}
}

// Client wraps http.Client with typed calls for the REST surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *log.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Logger:  log.StandardLogger(),
	}
}

func (c *Client) CreateTask(ctx context.Context, title string) (model.Task, error) {
	var out wire.Task
	if err := c.do(ctx, http.MethodPost, "/todos", wire.CreateTaskRequest{Title: title}, &out); err != nil {
		return model.Task{}, err
	}
	return out.Model(), nil
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var rows []wire.Task
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &rows); err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.Model())
	}
	return tasks, nil
}

// UpdateTask returns the server's view of the task. created_at is not part
// of the response and is left zero.
func (c *Client) UpdateTask(ctx context.Context, id uint, title string, completed bool) (model.Task, error) {
	var out wire.Task
	body := wire.UpdateTaskRequest{Title: title, Completed: model.Bit(completed)}
	if err := c.do(ctx, http.MethodPut, "/todos/"+formatID(id), body, &out); err != nil {
		return model.Task{}, err
	}
	return out.Model(), nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+formatID(id), nil, nil)
}

func (c *Client) CreateSnapshot(ctx context.Context, title string, items []model.SnapshotItem) (model.SnapshotEntry, error) {
	if items == nil {
		items = []model.SnapshotItem{}
	}
	raw, err := sonic.Marshal(items)
	if err != nil {
		return model.SnapshotEntry{}, fmt.Errorf("encode todos: %w", err)
	}
	var out wire.CreatedSnapshot
	if err := c.do(ctx, http.MethodPost, "/snapshots", wire.CreateSnapshotRequest{Title: title, Todos: raw}, &out); err != nil {
		return model.SnapshotEntry{}, err
	}
	return model.SnapshotEntry{ID: out.ID, Title: out.Title, Items: out.Todos, CreatedAt: out.CreatedAt}, nil
}

// ListSnapshots returns history newest first. A row whose payload cannot be
// decoded is kept with an empty item list.
func (c *Client) ListSnapshots(ctx context.Context) ([]model.SnapshotEntry, error) {
	var rows []wire.Snapshot
	if err := c.do(ctx, http.MethodGet, "/snapshots", nil, &rows); err != nil {
		return nil, err
	}
	entries := make([]model.SnapshotEntry, 0, len(rows))
	for _, r := range rows {
		entry, err := r.Entry()
		if err != nil && c.Logger != nil {
			c.Logger.WithError(err).WithField("snapshot_id", r.ID).Warn("snapshot payload unreadable")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) DeleteSnapshot(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/snapshots/"+formatID(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody wire.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = sonic.Unmarshal(data, &errBody)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: errBody.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
