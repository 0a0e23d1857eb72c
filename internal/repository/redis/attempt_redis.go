package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"
	"github.com/redis/go-redis/v9"
)

// RedisAttemptRepository implements AttemptRepository using Redis so lockouts
// are shared by every adapter replica.
type RedisAttemptRepository struct {
	client *redis.Client
}

// Helper to construct failure counter key
func makeFailuresKey(username string) string {
	return fmt.Sprintf("login_failures:%s", username)
}

// Helper to construct lock key
func makeLockKey(username string) string {
	return fmt.Sprintf("login_lock:%s", username)
}

func NewRedisAttemptRepository(client *redis.Client) repository.AttemptRepository {
	return &RedisAttemptRepository{
		client: client,
	}
}

// RecordFailure increments the counter. The first failure of a window creates
// the key with its TTL in the same transaction, so a counter never outlives
// its window.
func (r *RedisAttemptRepository) RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	if username == "" {
		return 0, errors.New("username must be set")
	}

	key := makeFailuresKey(username)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis failure counter update failed: %w", err)
	}

	return incr.Val(), nil
}

// StoreLock saves the lock as JSON with a TTL matching its expiry.
func (r *RedisAttemptRepository) StoreLock(ctx context.Context, lock *models.LoginLock) error {
	if lock == nil || lock.Username == "" {
		return errors.New("invalid lock data: username must be set")
	}

	ttl := time.Until(lock.Until)
	if ttl <= 0 {
		return nil
	}

	jsonData, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := r.client.Set(ctx, makeLockKey(lock.Username), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed for lock: %w", err)
	}
	return nil
}

// GetLock returns ErrLockNotFound once Redis has expired the key or the
// decoded lock is past its Until time.
func (r *RedisAttemptRepository) GetLock(ctx context.Context, username string) (*models.LoginLock, error) {
	lockKey := makeLockKey(username)

	jsonData, err := r.client.Get(ctx, lockKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var lock models.LoginLock
	if err := json.Unmarshal(jsonData, &lock); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if lock.IsExpired(time.Now().UTC()) {
		r.client.Del(ctx, lockKey)
		return nil, repository.ErrLockNotFound
	}

	return &lock, nil
}

// Reset removes both the counter and the lock.
func (r *RedisAttemptRepository) Reset(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, makeFailuresKey(username), makeLockKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
