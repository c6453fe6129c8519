package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
	"daily-todo/internal/wire"
)

func TestTaskLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/todos", `{"title":"Buy milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"completed":0`) {
		t.Fatalf("completed must be sent as 0: %s", rec.Body.String())
	}
	var created wire.Task
	decode(t, rec, &created)
	if created.ID == 0 || created.Title != "Buy milk" || created.CreatedAt == nil {
		t.Fatalf("unexpected created task %+v", created)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at and updated_at differ: %v %v", created.CreatedAt, created.UpdatedAt)
	}

	path := "/todos/" + itoa(created.ID)
	rec = do(t, e, http.MethodPut, path, `{"title":"Buy milk","completed":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "created_at") {
		t.Fatalf("PUT response must not carry created_at: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"completed":1`) {
		t.Fatalf("completed must be sent as 1: %s", rec.Body.String())
	}

	rec = do(t, e, http.MethodGet, "/todos", "")
	var list []wire.Task
	decode(t, rec, &list)
	if len(list) != 1 || !bool(list[0].Completed) || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = do(t, e, http.MethodDelete, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	var deleted wire.DeleteResponse
	decode(t, rec, &deleted)
	if deleted.Message != wire.MsgTodoDeleted || deleted.ID != created.ID {
		t.Fatalf("unexpected delete body %+v", deleted)
	}

	rec = do(t, e, http.MethodDelete, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
	var errBody wire.ErrorResponse
	decode(t, rec, &errBody)
	if errBody.Error != wire.MsgTodoNotFound {
		t.Fatalf("unexpected error body %+v", errBody)
	}
}

func TestUpdateAcceptsBooleanCompleted(t *testing.T) {
	e := newTestServer(t)
	var created wire.Task
	decode(t, do(t, e, http.MethodPost, "/todos", `{"title":"x"}`), &created)

	rec := do(t, e, http.MethodPut, "/todos/"+itoa(created.ID), `{"title":"x","completed":true}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"completed":1`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestTaskNotFoundAndBadInput(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"update missing", http.MethodPut, "/todos/99", `{"title":"x","completed":0}`, http.StatusNotFound},
		{"update non numeric", http.MethodPut, "/todos/abc", `{"title":"x"}`, http.StatusNotFound},
		{"delete non numeric", http.MethodDelete, "/todos/abc", "", http.StatusNotFound},
		{"create invalid json", http.MethodPost, "/todos", `{"title":`, http.StatusBadRequest},
		{"create blank title", http.MethodPost, "/todos", `{"title":"  "}`, http.StatusBadRequest},
		{"update bad completed", http.MethodPut, "/todos/1", `{"title":"x","completed":"yes"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, e, tt.method, tt.path, tt.body); rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/snapshots", `{"title":"25/06/01","todos":[{"id":1,"text":"Buy milk","completed":true}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create snapshot: %d %s", rec.Code, rec.Body.String())
	}
	var created wire.CreatedSnapshot
	decode(t, rec, &created)
	if created.Title != "25/06/01" || len(created.Todos) != 1 || created.Todos[0].Text != "Buy milk" {
		t.Fatalf("unexpected created snapshot %+v", created)
	}

	rec = do(t, e, http.MethodPost, "/snapshots", `{"title":"25/06/02","todos":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create second snapshot: %d", rec.Code)
	}

	rec = do(t, e, http.MethodGet, "/snapshots", "")
	var rows []wire.Snapshot
	decode(t, rec, &rows)
	if len(rows) != 2 || rows[0].Title != "25/06/02" || rows[1].ID != created.ID {
		t.Fatalf("expected newest first, got %+v", rows)
	}
	if rows[1].Todos != `[{"text":"Buy milk","completed":1}]` {
		t.Fatalf("todos should be an encoded string, got %q", rows[1].Todos)
	}

	rec = do(t, e, http.MethodDelete, "/snapshots/"+itoa(created.ID), "")
	var deleted wire.DeleteResponse
	decode(t, rec, &deleted)
	if rec.Code != http.StatusOK || deleted.Message != wire.MsgSnapshotDeleted {
		t.Fatalf("unexpected delete response %d %+v", rec.Code, deleted)
	}
	rec = do(t, e, http.MethodDelete, "/snapshots/"+itoa(created.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestCreateSnapshotValidation(t *testing.T) {
	e := newTestServer(t)
	for _, body := range []string{
		`{"title":"t"}`,
		`{"title":"t","todos":null}`,
		`{"title":"t","todos":"[]"}`,
		`{"title":"t","todos":{"text":"a"}}`,
		`{"title":"","todos":[]}`,
		`not json`,
	} {
		if rec := do(t, e, http.MethodPost, "/snapshots", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
	var rows []wire.Snapshot
	decode(t, do(t, e, http.MethodGet, "/snapshots", ""), &rows)
	if len(rows) != 0 {
		t.Fatalf("rejected snapshots must not be stored, got %d", len(rows))
	}
}

type failingTasks struct{}

func (failingTasks) Create(context.Context, string) (*model.Task, error) {
	return nil, apperr.Persistence("create task", errors.New("disk full"))
}

func (failingTasks) List(context.Context) ([]model.Task, error) {
	return nil, apperr.Persistence("list tasks", errors.New("disk full"))
}

func (failingTasks) Update(context.Context, uint, string, bool) (*model.Task, error) {
	return nil, apperr.Persistence("save task", errors.New("disk full"))
}

func (failingTasks) Delete(context.Context, uint) error {
	return apperr.Persistence("delete task", errors.New("disk full"))
}

type failingSnapshots struct{}

func (failingSnapshots) Create(context.Context, string, []model.SnapshotItem) (*model.SnapshotEntry, error) {
	return nil, apperr.Persistence("create snapshot", errors.New("disk full"))
}

func (failingSnapshots) History(context.Context) ([]model.SnapshotEntry, error) {
	return nil, apperr.Persistence("list snapshots", errors.New("disk full"))
}

func (failingSnapshots) Delete(context.Context, uint) error {
	return apperr.Persistence("delete snapshot", errors.New("disk full"))
}

func TestPersistenceFailuresAre500(t *testing.T) {
	e := New(Options{AllowedOrigins: testOrigins}, failingTasks{}, failingSnapshots{}, quietLogger())
	tests := []struct{ method, path, body string }{
		{http.MethodPost, "/todos", `{"title":"x"}`},
		{http.MethodGet, "/todos", ""},
		{http.MethodPut, "/todos/1", `{"title":"x","completed":1}`},
		{http.MethodDelete, "/todos/1", ""},
		{http.MethodPost, "/snapshots", `{"title":"x","todos":[]}`},
		{http.MethodGet, "/snapshots", ""},
		{http.MethodDelete, "/snapshots/1", ""},
	}
	for _, tt := range tests {
		if rec := do(t, e, tt.method, tt.path, tt.body); rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestHealthzReportsFailure(t *testing.T) {
	e := New(Options{Health: func(context.Context) error { return errors.New("down") }}, failingTasks{}, failingSnapshots{}, quietLogger())
	if rec := do(t, e, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
