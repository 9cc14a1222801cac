package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisQueue keeps pending notifications in a Redis list so they
// survive a restart. LPUSH on enqueue, BRPOP on dequeue (FIFO).
type RedisQueue struct {
	rdb  *redis.Client
	key  string
	poll time.Duration
}

func NewRedisQueue(ctx context.Context, cfg config.RedisConfig) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &RedisQueue{rdb: rdb, key: cfg.QueueKey, poll: time.Second}, nil
}

func (q *RedisQueue) Push(ctx context.Context, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, b).Err()
}

func (q *RedisQueue) Pop(ctx context.Context) (Notification, error) {
	for {
		res, err := q.rdb.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return Notification{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Notification{}, ctx.Err()
			}
			return Notification{}, err
		}
		// res = [key, value]
		var n Notification
		if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
			return Notification{}, fmt.Errorf("decode queued notification: %w", err)
		}
		return n, nil
	}
}

func (q *RedisQueue) Close() error { return q.rdb.Close() }
