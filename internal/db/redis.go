package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// metricsKeyPrefix namespaces inventory metrics hashes in Redis.
const metricsKeyPrefix = "promometrics:"

// MetricsStore keeps small numeric per-site mappings in Redis hashes, one
// hash per cache key. It implements inventory.MetricsCache.
type MetricsStore struct {
	Client *redis.Client
}

// InitRedis initializes a Redis client and returns a MetricsStore.
func InitRedis(addr string) (*MetricsStore, error) {
	ms := &MetricsStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(ms.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := ms.Client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return ms, nil
}

// NewMetricsStore wraps an existing client. Used by tests with miniredis.
func NewMetricsStore(client *redis.Client) *MetricsStore {
	return &MetricsStore{Client: client}
}

// Get returns the stored values for the requested fields under key. Fields
// with no stored value are absent from the result; callers treat absence as
// zero.
func (m *MetricsStore) Get(ctx context.Context, key string, fields []string) (map[string]int64, error) {
	if len(fields) == 0 {
		return map[string]int64{}, nil
	}
	vals, err := m.Client.HMGet(ctx, metricsKeyPrefix+key, fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget %s: %w", key, err)
	}
	ret := make(map[string]int64, len(fields))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse cached value for %s.%s: %w", key, fields[i], err)
		}
		ret[fields[i]] = n
	}
	return ret, nil
}

// Set replaces the mapping stored under key wholesale. The delete and write
// run in one transaction so readers never observe a partially written hash.
func (m *MetricsStore) Set(ctx context.Context, key string, values map[string]int64) error {
	pipe := m.Client.TxPipeline()
	pipe.Del(ctx, metricsKeyPrefix+key)
	if len(values) > 0 {
		flat := make([]interface{}, 0, len(values)*2)
		for field, v := range values {
			flat = append(flat, field, strconv.FormatInt(v, 10))
		}
		pipe.HSet(ctx, metricsKeyPrefix+key, flat...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write metrics %s: %w", key, err)
	}
	return nil
}

// Close shuts down the Redis client.
func (m *MetricsStore) Close() {
	if m != nil && m.Client != nil {
		if err := m.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
