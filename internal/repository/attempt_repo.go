package repository

import (
	"context"
	"errors"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
)

// ErrLockNotFound is returned when a username is not locked or its lock has expired.
var ErrLockNotFound = errors.New("login lock not found or expired")

// AttemptRepository tracks failed credential checks per username.
type AttemptRepository interface {
	// RecordFailure counts a failed check and returns the number of failures
	// inside the current window. The window starts at the first failure.
	RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error)
	// StoreLock saves a lock that expires at lock.Until.
	StoreLock(ctx context.Context, lock *models.LoginLock) error
	// GetLock returns the active lock for username.
	// It should return ErrLockNotFound if there is none.
	GetLock(ctx context.Context, username string) (*models.LoginLock, error)
	// Reset clears the failure counter and any lock.
	Reset(ctx context.Context, username string) error
}
