package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"daily-todo/internal/apperr"
	"daily-todo/internal/model"
	"daily-todo/internal/wire"
)

func createTask(tasks TaskStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req wire.CreateTaskRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, err)
		}
		task, err := tasks.Create(c.Request().Context(), req.Title)
		if err != nil {
			return respondError(c, err, wire.MsgTodoNotFound)
		}
		return c.JSON(http.StatusOK, wire.FromTask(*task))
	}
}

func listTasks(tasks TaskStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := tasks.List(c.Request().Context())
		if err != nil {
			return respondError(c, err, wire.MsgTodoNotFound)
		}
		out := make([]wire.Task, 0, len(list))
		for _, t := range list {
			out = append(out, wire.FromTask(t))
		}
		return c.JSON(http.StatusOK, out)
	}
}

func updateTask(tasks TaskStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, wire.ErrorResponse{Error: wire.MsgTodoNotFound})
		}
		var req wire.UpdateTaskRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, err)
		}
		task, err := tasks.Update(c.Request().Context(), id, req.Title, bool(req.Completed))
		if err != nil {
			return respondError(c, err, wire.MsgTodoNotFound)
		}
		return c.JSON(http.StatusOK, wire.FromUpdatedTask(*task))
	}
}

func deleteTask(tasks TaskStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, wire.ErrorResponse{Error: wire.MsgTodoNotFound})
		}
		if err := tasks.Delete(c.Request().Context(), id); err != nil {
			return respondError(c, err, wire.MsgTodoNotFound)
		}
		return c.JSON(http.StatusOK, wire.DeleteResponse{Message: wire.MsgTodoDeleted, ID: id})
	}
}

func createSnapshot(snapshots SnapshotStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req wire.CreateSnapshotRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, err)
		}
		items, err := model.ParseItems(req.Todos)
		if err != nil {
			return respondError(c, err, wire.MsgSnapshotNotFound)
		}
		entry, err := snapshots.Create(c.Request().Context(), req.Title, items)
		if err != nil {
			return respondError(c, err, wire.MsgSnapshotNotFound)
		}
		return c.JSON(http.StatusOK, wire.CreatedSnapshot{
			ID:        entry.ID,
			Title:     entry.Title,
			Todos:     entry.Items,
			CreatedAt: entry.CreatedAt,
		})
	}
}

func listSnapshots(snapshots SnapshotStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := snapshots.History(c.Request().Context())
		if err != nil {
			return respondError(c, err, wire.MsgSnapshotNotFound)
		}
		out := make([]wire.Snapshot, 0, len(entries))
		for _, e := range entries {
			row, err := wire.FromEntry(e)
			if err != nil {
				return respondError(c, err, wire.MsgSnapshotNotFound)
			}
			out = append(out, row)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func deleteSnapshot(snapshots SnapshotStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, wire.ErrorResponse{Error: wire.MsgSnapshotNotFound})
		}
		if err := snapshots.Delete(c.Request().Context(), id); err != nil {
			return respondError(c, err, wire.MsgSnapshotNotFound)
		}
		return c.JSON(http.StatusOK, wire.DeleteResponse{Message: wire.MsgSnapshotDeleted, ID: id})
	}
}

func healthz(check func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				c.Set(ctxKeyErr, err)
				return c.JSON(http.StatusServiceUnavailable, wire.ErrorResponse{Error: "unhealthy"})
			}
		}
		return c.NoContent(http.StatusOK)
	}
}

// pathID parses the :id segment. Ids that cannot exist are reported as
// not found, matching what a lookup would return.
func pathID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badRequest(c echo.Context, err error) error {
	c.Set(ctxKeyErr, err)
	return c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: "invalid JSON body"})
}

func respondError(c echo.Context, err error, notFoundMsg string) error {
	c.Set(ctxKeyErr, err)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, wire.ErrorResponse{Error: notFoundMsg})
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Error: err.Error()})
	}
}
