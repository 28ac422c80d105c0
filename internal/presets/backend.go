package presets

import (
	"context"
	"fmt"

	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/database"
	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
)

// OpenStorage builds the storage backend named by cfg.Presets.Backend. The
// returned close function releases any connection the backend opened.
func OpenStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (Storage, func() error, error) {
	noop := func() error { return nil }
	pc := cfg.Presets

	switch pc.Backend {
	case config.PresetBackendFile, "":
		return NewFileStorage(pc.Directory, pc.StorageKey), noop, nil

	case config.PresetBackendMemory:
		return NewMemoryStorage(nil), noop, nil

	case config.PresetBackendRedis:
		rc := database.NewRedis(cfg.Database.Redis)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, errors.NewDatabaseConnectionFailedError(err)
		}
		log.Info("Redis preset backend connected", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"key":     pc.StorageKey,
		})
		return NewRedisStorage(rc.Client, pc.StorageKey), rc.Close, nil

	case config.PresetBackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, errors.NewDatabaseConnectionFailedError(err)
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, errors.NewDatabaseConnectionFailedError(err)
		}
		storage := NewPostgresStorage(pg.DB, pc.Table, pc.StorageKey)
		if err := storage.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, errors.NewPresetPersistenceFailedError(storage.Name(), err)
		}
		log.Info("Postgres preset backend connected", map[string]interface{}{
			"host":  cfg.Database.Postgres.Host,
			"table": pc.Table,
		})
		return storage, pg.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown preset backend %q", pc.Backend)
	}
}

// Open builds the store for cfg, or returns nil when presets are disabled.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, func() error, error) {
	if !cfg.Presets.Enabled {
		return nil, func() error { return nil }, nil
	}
	storage, closeFn, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return NewStore(ctx, storage, log), closeFn, nil
}
