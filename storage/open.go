package storage

import (
	"context"
	"fmt"

	"soundcatalog/config"
	"soundcatalog/logger"
)

// Open 根据 OBJECTS_DRIVER 创建对象存储
func Open(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.ObjectsDriver {
	case config.ObjectsMinio:
		return NewMinioStore(ctx, cfg)
	case config.ObjectsGCS:
		store, err := NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.ObjectPublicURL)
		if err != nil {
			return nil, err
		}
		logger.Info("GCS client ready", logger.String("bucket", cfg.GCSBucket))
		return store, nil
	case config.ObjectsMemory:
		logger.Warn("Using in-memory object store, uploads are lost on exit")
		return NewMemoryStore(cfg.MinioBucket, cfg.ObjectPublicURL), nil
	default:
		return nil, fmt.Errorf("unknown objects driver %q", cfg.ObjectsDriver)
	}
}
