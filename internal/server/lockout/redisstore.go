package lockout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ventas:lockout:"

// incrementScript bumps the counter and derives the blocked flag in one step.
// KEYS[1] lockout hash, ARGV[1] threshold, ARGV[2] failure time (unix nanos).
var incrementScript = redis.NewScript(`
local count = redis.call("HINCRBY", KEYS[1], "failed_attempts", 1)
local blocked = 0
if count >= tonumber(ARGV[1]) then
	blocked = 1
end
redis.call("HSET", KEYS[1], "is_blocked", blocked, "last_failure_at", ARGV[2])
return {count, blocked}
`)

// resetScript zeroes the counter of an unblocked salesperson.
var resetScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "is_blocked") == "1" then
	return 0
end
if redis.call("EXISTS", KEYS[1]) == 1 then
	redis.call("HSET", KEYS[1], "failed_attempts", 0)
end
return 1
`)

// RedisStore keeps lockout state in one Redis hash per salesperson.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) key(seller string) string { return redisKeyPrefix + seller }

func (s *RedisStore) Increment(ctx context.Context, seller string, threshold int, at time.Time) (models.LockoutState, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.key(seller)}, threshold, at.UnixNano()).Int64Slice()
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("redis error: %w", err)
	}
	if len(res) != 2 {
		return models.LockoutState{}, fmt.Errorf("redis error: unexpected script reply %v", res)
	}
	last := at.UTC()
	return models.LockoutState{
		SalespersonID:  seller,
		FailedAttempts: int(res[0]),
		IsBlocked:      res[1] == 1,
		LastFailureAt:  &last,
	}, nil
}

func (s *RedisStore) Reset(ctx context.Context, seller string) error {
	if err := resetScript.Run(ctx, s.client, []string{s.key(seller)}).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, seller string) (models.LockoutState, error) {
	vals, err := s.client.HGetAll(ctx, s.key(seller)).Result()
	if err != nil {
		return models.LockoutState{}, fmt.Errorf("redis error: %w", err)
	}

	st := models.LockoutState{SalespersonID: seller}
	if len(vals) == 0 {
		return st, nil
	}
	if st.FailedAttempts, err = strconv.Atoi(vals["failed_attempts"]); err != nil {
		return models.LockoutState{}, fmt.Errorf("redis error: bad counter: %w", err)
	}
	st.IsBlocked = vals["is_blocked"] == "1"
	if raw, ok := vals["last_failure_at"]; ok && raw != "" {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.LockoutState{}, fmt.Errorf("redis error: bad timestamp: %w", err)
		}
		last := time.Unix(0, nanos).UTC()
		st.LastFailureAt = &last
	}
	return st, nil
}

func (s *RedisStore) Clear(ctx context.Context, seller string) error {
	if err := s.client.Del(ctx, s.key(seller)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
