package api

import (
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"daily-todo/internal/model"
)

const maxBodySize = 1 << 20

// TaskStore is the task store contract served under /todos.
type TaskStore interface {
	Create(ctx context.Context, title string) (*model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, id uint, title string, completed bool) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
}

// SnapshotStore is the snapshot store contract served under /snapshots.
type SnapshotStore interface {
	Create(ctx context.Context, title string, items []model.SnapshotItem) (*model.SnapshotEntry, error)
	History(ctx context.Context) ([]model.SnapshotEntry, error)
	Delete(ctx context.Context, id uint) error
}

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists the browser origins accepted by the server.
	// "*" accepts any origin.
	AllowedOrigins []string
	// Health is called by /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
}

// New builds an Echo instance with middleware and all routes registered.
func New(opts Options, tasks TaskStore, snapshots SnapshotStore, logger *log.Logger) *echo.Echo {
	if logger == nil {
		logger = log.StandardLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(originGuard(opts.AllowedOrigins))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	Register(e, opts, tasks, snapshots)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, opts Options, tasks TaskStore, snapshots SnapshotStore) {
	e.POST("/todos", createTask(tasks))
	e.GET("/todos", listTasks(tasks))
	e.PUT("/todos/:id", updateTask(tasks))
	e.DELETE("/todos/:id", deleteTask(tasks))

	e.POST("/snapshots", createSnapshot(snapshots))
	e.GET("/snapshots", listSnapshots(snapshots))
	e.DELETE("/snapshots/:id", deleteSnapshot(snapshots))

	e.GET("/healthz", healthz(opts.Health))
}

type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxBodySize))
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
