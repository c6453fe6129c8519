package service

import (
	"io"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"

	"daily-todo/internal/repository"
)

func newTestServices(t *testing.T) (*TaskService, *SnapshotService) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "todo.db"), quietLogger())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewTaskService(repository.NewTaskRepository(db)),
		NewSnapshotService(repository.NewSnapshotRepository(db), quietLogger())
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
