package app

import (
	"context"
	"fmt"
	"io"

	"github.com/lclrke/dawa-dashboard/internal/clients/redis"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
	"github.com/lclrke/dawa-dashboard/internal/platform/objectstore"
	"github.com/lclrke/dawa-dashboard/internal/platform/openai"
	"github.com/lclrke/dawa-dashboard/internal/services"
)

type Clients struct {
	ObjectStore  objectstore.Store
	OpenaiClient openai.Client
	ExportLocker services.ExportLocker
	RedisLocker  *redis.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := resolveObjectStore(ctx, log, cfg.ObjectStorageMode)
	if err != nil {
		return Clients{}, err
	}

	ai, err := openai.NewClient(log, openai.ConfigFromEnv())
	if err != nil {
		closeStore(store)
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	out := Clients{ObjectStore: store, OpenaiClient: ai, ExportLocker: services.NoopLocker{}}
	switch cfg.ExportLockMode {
	case "", "none":
	case "redis":
		locker, err := redis.NewLocker(ctx, log, redis.ConfigFromEnv())
		if err != nil {
			closeStore(store)
			return Clients{}, fmt.Errorf("init export lock: %w", err)
		}
		out.RedisLocker = locker
		out.ExportLocker = locker
	default:
		closeStore(store)
		return Clients{}, fmt.Errorf("unsupported EXPORT_LOCK_MODE %q (allowed: none, redis)", cfg.ExportLockMode)
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.RedisLocker != nil {
		_ = c.RedisLocker.Close()
	}
	closeStore(c.ObjectStore)
}

func closeStore(store objectstore.Store) {
	if cl, ok := store.(io.Closer); ok {
		_ = cl.Close()
	}
}
