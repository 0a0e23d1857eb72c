package models

import (
	"time"
)

// LoginLock records a username locked out after repeated failed credential
// checks.
type LoginLock struct {
	Username string    `json:"username"`
	Failures int64     `json:"failures"`
	LockedAt time.Time `json:"lockedAt"`
	Until    time.Time `json:"until"`
}

// IsExpired checks if the lock has run out at now.
func (l *LoginLock) IsExpired(now time.Time) bool {
	return !now.Before(l.Until)
}
