// Package registry содержит реализации постоянного реестра пользователей.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"telegram-gateway-bot/internal/pkg/config"
	"telegram-gateway-bot/internal/ports"
)

// Open создает реестр в соответствии с настройкой storage.driver.
// Недоступное хранилище считается ошибкой конфигурации.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (ports.UserRegistry, error) {
	log = log.With(slog.String("component", "registry"), slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.StorageSQLite:
		return NewSQLiteRegistry(cfg.SQLitePath, log)
	case config.StorageRedis:
		client, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("redis registry connected", slog.String("addr", cfg.RedisAddr))
		return NewRedisRegistry(client, cfg.RedisPrefix, log), nil
	case config.StorageMemory:
		log.Warn("using in-memory registry, users will be lost on restart")
		return NewMemoryRegistry(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
