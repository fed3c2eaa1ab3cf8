package cache

import (
	"context"
	"encoding/json"
	"time"

	"outreach/pkg/types"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const detailTTL = 30 * time.Second

// Redis backs the cache with a shared store so multiple server instances see
// the same speculative state. Failures are logged and swallowed; the store of
// record stays the database.
type Redis struct {
	client *redis.Client
	logger *logrus.Logger
}

var _ Cache = (*Redis)(nil)

func NewRedis(client *redis.Client, logger *logrus.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) GetRequest(ctx context.Context, key Key) (*types.Request, bool) {
	data, err := r.client.Get(ctx, string(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}

	var request types.Request
	if err := json.Unmarshal(data, &request); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("cache entry corrupt, dropping")
		r.client.Del(ctx, string(key))
		return nil, false
	}

	return &request, true
}

func (r *Redis) Snapshot(ctx context.Context, key Key) Snapshot {
	request, ok := r.GetRequest(ctx, key)
	return Snapshot{Key: key, Request: request, Existed: ok}
}

func (r *Redis) SpeculativeWrite(ctx context.Context, key Key, request *types.Request) {
	data, err := json.Marshal(request)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}

	if err := r.client.Set(ctx, string(key), data, detailTTL).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (r *Redis) Rollback(ctx context.Context, snapshot Snapshot) {
	if !snapshot.Existed {
		r.Invalidate(ctx, snapshot.Key)
		return
	}
	r.SpeculativeWrite(ctx, snapshot.Key, snapshot.Request)
}

func (r *Redis) Invalidate(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}

	raw := make([]string, len(keys))
	for i, key := range keys {
		raw[i] = string(key)
	}

	if err := r.client.Del(ctx, raw...).Err(); err != nil {
		r.logger.WithError(err).Warn("cache invalidate failed")
	}
}
