package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldUserID       = "user_id"
	fieldStation      = "station"
	fieldCreatedAt    = "created_at"
	fieldLastActivity = "last_activity"
)

// touchScript and stationScript leave a missing key alone, so a session
// deleted by logout or expiry cannot be written back by a late request.
var (
	touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
local last = tonumber(redis.call("HGET", KEYS[1], "last_activity") or "0")
if tonumber(ARGV[1]) > last then
	redis.call("HSET", KEYS[1], "last_activity", ARGV[1])
end
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`)

	stationScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "station", ARGV[1])
local last = tonumber(redis.call("HGET", KEYS[1], "last_activity") or "0")
if tonumber(ARGV[2]) > last then
	redis.call("HSET", KEYS[1], "last_activity", ARGV[2])
end
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)
)

// RedisStore keeps sessions in Redis hashes so several server instances
// share them. Keys expire after the idle timeout, so DeleteExpired has
// nothing to do.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func NewRedisClient(ctx context.Context, addr string, password string, database int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (store *RedisStore) Create(ctx context.Context, session Session) error {
	key := store.key(session.ID)
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldUserID:       strconv.FormatUint(uint64(session.UserID), 10),
			fieldStation:      session.Station,
			fieldCreatedAt:    strconv.FormatInt(session.CreatedAt.UnixMilli(), 10),
			fieldLastActivity: strconv.FormatInt(session.LastActivity.UnixMilli(), 10),
		})
		pipe.PExpire(ctx, key, store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (store *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	fields, err := store.client.HGetAll(ctx, store.key(id)).Result()
	if err != nil {
		return Session{}, err
	}
	if len(fields) == 0 {
		return Session{}, ErrNotFound
	}

	userID, err := strconv.ParseUint(fields[fieldUserID], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("decode session user: %w", err)
	}
	createdAt, err := parseMillis(fields[fieldCreatedAt])
	if err != nil {
		return Session{}, fmt.Errorf("decode session created_at: %w", err)
	}
	lastActivity, err := parseMillis(fields[fieldLastActivity])
	if err != nil {
		return Session{}, fmt.Errorf("decode session last_activity: %w", err)
	}

	return Session{
		ID:           id,
		UserID:       uint(userID),
		Station:      fields[fieldStation],
		CreatedAt:    createdAt,
		LastActivity: lastActivity,
	}, nil
}

func (store *RedisStore) Touch(ctx context.Context, id string, at time.Time) error {
	updated, err := touchScript.Run(ctx, store.client, []string{store.key(id)},
		at.UnixMilli(), store.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (store *RedisStore) SetStation(ctx context.Context, id string, station string, at time.Time) error {
	updated, err := stationScript.Run(ctx, store.client, []string{store.key(id)},
		station, at.UnixMilli(), store.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("set session station: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (store *RedisStore) Delete(ctx context.Context, id string) error {
	return store.client.Del(ctx, store.key(id)).Err()
}

func (store *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (store *RedisStore) key(id string) string {
	return store.keyPrefix + id
}

func parseMillis(raw string) (time.Time, error) {
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}
