package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

const (
	keyPhase   = "indora:phase"
	keyOrderID = "indora:order_id"
	keyToken   = "indora:access_token"
)

// RedisStore persists the three state strings in redis, keeping them
// durable across agent restarts the way the browser app kept them in
// local storage.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string) *RedisStore {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{client: c}
}

func (r *RedisStore) Close() error { return r.client.Close() }

func (r *RedisStore) LoadSession(ctx context.Context) (SessionRecord, bool, error) {
	vals, err := r.client.MGet(ctx, keyPhase, keyOrderID).Result()
	if err != nil {
		return SessionRecord{}, false, err
	}
	phase, _ := vals[0].(string)
	orderID, _ := vals[1].(string)
	if phase == "" {
		return SessionRecord{}, false, nil
	}
	return SessionRecord{Phase: models.Phase(phase), OrderID: orderID}, true, nil
}

func (r *RedisStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, keyPhase, string(rec.Phase), 0)
		p.Set(ctx, keyOrderID, rec.OrderID, 0)
		return nil
	})
	return err
}

func (r *RedisStore) ClearSession(ctx context.Context) error {
	return r.client.Del(ctx, keyPhase, keyOrderID).Err()
}

func (r *RedisStore) LoadToken(ctx context.Context) (string, error) {
	v, err := r.client.Get(ctx, keyToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *RedisStore) SaveToken(ctx context.Context, token string) error {
	return r.client.Set(ctx, keyToken, token, 0).Err()
}

func (r *RedisStore) ClearToken(ctx context.Context) error {
	return r.client.Del(ctx, keyToken).Err()
}
