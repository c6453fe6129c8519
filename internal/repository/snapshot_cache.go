package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"daily-todo/internal/model"
)

const (
	snapshotListKey = "daily-todo:snapshots"
	snapshotGenKey  = "daily-todo:snapshots:gen"
)

type snapshotBackend interface {
	Create(ctx context.Context, snapshot *model.Snapshot) error
	List(ctx context.Context) ([]model.Snapshot, error)
	Delete(ctx context.Context, id uint) error
}

// SnapshotCache wraps a snapshot backend with a Redis-backed copy of the
// history list. Writes go to the backend first, then bump a generation counter
// and evict the list. A fill only lands if the generation it read before
// querying the backend is still current.
type SnapshotCache struct {
	base  snapshotBackend
	redis *redis.Client
	ttl   time.Duration
}

// NewSnapshotCache creates a caching wrapper. A nil client disables caching.
func NewSnapshotCache(base snapshotBackend, client *redis.Client, ttl time.Duration) *SnapshotCache {
	if base == nil {
		panic("repository.NewSnapshotCache: base is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &SnapshotCache{base: base, redis: client, ttl: ttl}
}

func (c *SnapshotCache) Create(ctx context.Context, snapshot *model.Snapshot) error {
	if err := c.base.Create(ctx, snapshot); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *SnapshotCache) List(ctx context.Context) ([]model.Snapshot, error) {
	if snapshots, ok := c.load(ctx); ok {
		return snapshots, nil
	}
	gen, genOK := c.generation(ctx)
	snapshots, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}
	if genOK {
		c.store(ctx, gen, snapshots)
	}
	return snapshots, nil
}

func (c *SnapshotCache) Delete(ctx context.Context, id uint) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *SnapshotCache) load(ctx context.Context) ([]model.Snapshot, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, snapshotListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, snapshotListKey).Err()
		}
		return nil, false
	}
	var snapshots []model.Snapshot
	if err := sonic.Unmarshal(data, &snapshots); err != nil {
		_ = c.redis.Del(ctx, snapshotListKey).Err()
		return nil, false
	}
	return snapshots, true
}

// generation reads the write counter. ok is false when Redis is unavailable.
func (c *SnapshotCache) generation(ctx context.Context) (int64, bool) {
	if c.redis == nil {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, snapshotGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return gen, true
}

// store caches snapshots unless a write has bumped the generation since gen
// was read.
func (c *SnapshotCache) store(ctx context.Context, gen int64, snapshots []model.Snapshot) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	if snapshots == nil {
		snapshots = []model.Snapshot{}
	}
	data, err := sonic.Marshal(snapshots)
	if err != nil {
		return
	}
	// A write that lands between the check and EXEC aborts the transaction.
	_ = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, snapshotGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, snapshotListKey, data, c.ttl)
			return nil
		})
		return err
	}, snapshotGenKey)
}

func (c *SnapshotCache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, snapshotGenKey)
		pipe.Del(ctx, snapshotListKey)
		return nil
	})
}
