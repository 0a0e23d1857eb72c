package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"
)

type failureWindow struct {
	count   int64
	expires time.Time
}

// MemoryAttemptRepository implements AttemptRepository in memory. Lockouts are
// local to one process.
type MemoryAttemptRepository struct {
	failures      map[string]failureWindow
	locks         map[string]models.LoginLock
	mutex         sync.Mutex
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	now           func() time.Time
}

// NewMemoryAttemptRepository creates a new in-memory attempt repository.
// cleanupInterval defines how often expired counters and locks are removed.
func NewMemoryAttemptRepository(cleanupInterval time.Duration) *MemoryAttemptRepository {
	r := &MemoryAttemptRepository{
		failures:      make(map[string]failureWindow),
		locks:         make(map[string]models.LoginLock),
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
		now:           func() time.Time { return time.Now().UTC() },
	}
	go r.startCleanup()
	return r
}

var _ repository.AttemptRepository = (*MemoryAttemptRepository)(nil)

func (r *MemoryAttemptRepository) startCleanup() {
	for {
		select {
		case <-r.cleanupTicker.C:
			r.cleanupExpired()
		case <-r.stopCleanup:
			r.cleanupTicker.Stop()
			return
		}
	}
}

func (r *MemoryAttemptRepository) cleanupExpired() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	for username, w := range r.failures {
		if !now.Before(w.expires) {
			delete(r.failures, username)
		}
	}
	for username, lock := range r.locks {
		if lock.IsExpired(now) {
			delete(r.locks, username)
		}
	}
}

// StopCleanup stops the background cleanup task.
func (r *MemoryAttemptRepository) StopCleanup() {
	close(r.stopCleanup)
}

func (r *MemoryAttemptRepository) RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	if username == "" {
		return 0, errors.New("username must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	w, ok := r.failures[username]
	if !ok || !now.Before(w.expires) {
		w = failureWindow{expires: now.Add(window)}
	}
	w.count++
	r.failures[username] = w
	return w.count, nil
}

func (r *MemoryAttemptRepository) StoreLock(ctx context.Context, lock *models.LoginLock) error {
	if lock == nil || lock.Username == "" {
		return errors.New("invalid lock data: username must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.locks[lock.Username] = *lock
	return nil
}

func (r *MemoryAttemptRepository) GetLock(ctx context.Context, username string) (*models.LoginLock, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	lock, ok := r.locks[username]
	if !ok || lock.IsExpired(r.now()) {
		return nil, repository.ErrLockNotFound
	}
	return &lock, nil
}

func (r *MemoryAttemptRepository) Reset(ctx context.Context, username string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.failures, username)
	delete(r.locks, username)
	return nil
}
