package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arkadyv/railbooking/config"
	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client       *redis.Client
	schedulesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, schedulesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		schedulesTTL: schedulesTTL,
	}
}

func (c *RedisCache) GetSchedules(ctx context.Context) ([]domain.Schedule, error) {
	data, err := c.client.Get(ctx, schedulesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var schedules []domain.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *RedisCache) SetSchedules(ctx context.Context, schedules []domain.Schedule) error {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, schedulesKey(), payload, c.schedulesTTL).Err()
}

// AcquireSegmentLock takes a short SetNX lock per (schedule, seat) so
// concurrent bookers fail fast before reaching the database transaction.
func (c *RedisCache) AcquireSegmentLock(ctx context.Context, scheduleID, seatID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, segmentLockKey(scheduleID, seatID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSegmentLock(ctx context.Context, scheduleID, seatID int64) error {
	return c.client.Del(ctx, segmentLockKey(scheduleID, seatID)).Err()
}

func schedulesKey() string {
	return "cache:schedules"
}

func segmentLockKey(scheduleID, seatID int64) string {
	return fmt.Sprintf("lock:schedule:%d:seat:%d", scheduleID, seatID)
}
