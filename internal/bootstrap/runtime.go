// Package bootstrap opens the stores a process needs and prepares them.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SyncGroups writes the embedded permission groups.
	SyncGroups bool
	// SkipRedis leaves the Redis client nil, for one-off admin commands.
	SkipRedis bool
}

// Runtime holds the opened stores.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to the database and Redis and prepares the schema.
// Redis is optional; an unreachable server yields a nil client.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt := &Runtime{DB: db}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			rt.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SyncGroups {
		if err := SyncGroups(ctx, db); err != nil {
			rt.Close()
			return nil, err
		}
	}

	if !opts.SkipRedis {
		rt.Redis = cache.Connect(ctx, cfg.RedisURL)
	}
	return rt, nil
}

// SyncGroups writes the embedded permission groups to the database.
func SyncGroups(ctx context.Context, db *gorm.DB) error {
	defs := service.DefaultGroups()
	if err := repository.NewGroupRepository(db).Sync(ctx, defs); err != nil {
		return fmt.Errorf("sync permission groups: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "permission groups synced", slog.Int("groups", len(defs)))
	return nil
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() {
	if sqlDB, err := rt.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}
