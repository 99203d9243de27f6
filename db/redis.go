package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"soundcatalog/config"
	"soundcatalog/model"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis 初始化Redis连接
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisStore 每张表对应一个 Hash：field 为 uid，value 为 JSON 编码的记录
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. prefix namespaces the table hashes.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tableKey(table string) string {
	if s.prefix == "" {
		return table
	}
	return s.prefix + ":" + table
}

func (s *RedisStore) GetItem(ctx context.Context, table, uid string) (model.Record, error) {
	data, err := s.client.HGet(ctx, s.tableKey(table), uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStoreError("GetItem", table, err)
	}
	return decodeRecord("GetItem", table, data)
}

func (s *RedisStore) PutItem(ctx context.Context, table string, record model.Record) error {
	uid, err := recordKey(table, record)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return model.NewStoreError("PutItem", table, err)
	}
	if err := s.client.HSet(ctx, s.tableKey(table), uid, data).Err(); err != nil {
		return model.NewStoreError("PutItem", table, err)
	}
	return nil
}

func (s *RedisStore) DeleteItem(ctx context.Context, table, uid string) error {
	if err := s.client.HDel(ctx, s.tableKey(table), uid).Err(); err != nil {
		return model.NewStoreError("DeleteItem", table, err)
	}
	return nil
}

// Scan 主键过滤时用 HMGET 直接取，否则 HGETALL 后在本地过滤
func (s *RedisStore) Scan(ctx context.Context, table string, filter *Filter) ([]model.Record, error) {
	if filter.OnKey() {
		return s.scanKeys(ctx, table, filter)
	}

	entries, err := s.client.HGetAll(ctx, s.tableKey(table)).Result()
	if err != nil {
		return nil, model.NewStoreError("Scan", table, err)
	}

	records := make([]model.Record, 0, len(entries))
	for _, data := range entries {
		r, err := decodeRecord("Scan", table, []byte(data))
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.Match(r) {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RedisStore) scanKeys(ctx context.Context, table string, filter *Filter) ([]model.Record, error) {
	uids := distinct(filter.Values)
	if len(uids) == 0 {
		return []model.Record{}, nil
	}

	values, err := s.client.HMGet(ctx, s.tableKey(table), uids...).Result()
	if err != nil {
		return nil, model.NewStoreError("Scan", table, err)
	}

	records := make([]model.Record, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue // 字段不存在时为 nil
		}
		r, err := decodeRecord("Scan", table, []byte(data))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Ping 检查连接并做一次写读删往返
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return model.NewStoreError("Ping", s.prefix, err)
	}

	key := s.tableKey("healthcheck")
	if err := s.client.Set(ctx, key, "ok", time.Minute).Err(); err != nil {
		return model.NewStoreError("Ping", key, err)
	}
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return model.NewStoreError("Ping", key, err)
	}
	if val != "ok" {
		return model.NewStoreError("Ping", key, fmt.Errorf("unexpected value from Redis: got %s", val))
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return model.NewStoreError("Ping", key, err)
	}
	return nil
}

// Close 关闭Redis连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
