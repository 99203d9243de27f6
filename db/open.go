package db

import (
	"fmt"

	"soundcatalog/config"
	"soundcatalog/logger"
)

// Open 根据 STORE_DRIVER 打开对应的键值存储
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		client, err := ConnectRedis(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis",
			logger.String("addr", fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)),
			logger.Int("db", cfg.RedisDB))
		return NewRedisStore(client, cfg.RedisKeyPrefix), nil
	case config.StoreMySQL, config.StoreSQLite:
		gormDB, err := ConnectGormDB(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to SQL store", logger.String("driver", cfg.StoreDriver))
		return NewGormStore(gormDB)
	case config.StoreMemory:
		logger.Warn("Using in-memory store, records are lost on exit")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
