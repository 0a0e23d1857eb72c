package mocks

import (
	"context"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAttemptRepository is a mock implementation of the AttemptRepository interface.
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) RecordFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	args := m.Called(ctx, username, window)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

func (m *MockAttemptRepository) StoreLock(ctx context.Context, lock *models.LoginLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

// GetLock provides a mock function for retrieving a lock. Handles a nil lock.
func (m *MockAttemptRepository) GetLock(ctx context.Context, username string) (*models.LoginLock, error) {
	args := m.Called(ctx, username)
	lock, _ := args.Get(0).(*models.LoginLock)
	return lock, args.Error(1)
}

func (m *MockAttemptRepository) Reset(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
