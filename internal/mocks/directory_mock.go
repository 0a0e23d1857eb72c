package mocks

import (
	"context"
	"iter"
	"slices"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of the service.Directory interface.
// Search results are configured as []models.UserEntity.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) LookupByID(ctx context.Context, id string) (models.UserEntity, bool) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(models.UserEntity)
	return user, args.Bool(1)
}

func (m *MockDirectory) LookupByUsername(ctx context.Context, username string) (models.UserEntity, bool) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(models.UserEntity)
	return user, args.Bool(1)
}

func (m *MockDirectory) LookupByEmail(ctx context.Context, email string) (models.UserEntity, bool) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(models.UserEntity)
	return user, args.Bool(1)
}

func (m *MockDirectory) Search(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) iter.Seq[models.UserEntity] {
	args := m.Called(ctx, criteria, firstResult, maxResults)
	users, _ := args.Get(0).([]models.UserEntity)
	return slices.Values(users)
}

func (m *MockDirectory) SearchByAttribute(ctx context.Context, name, value string) iter.Seq[models.UserEntity] {
	args := m.Called(ctx, name, value)
	users, _ := args.Get(0).([]models.UserEntity)
	return slices.Values(users)
}

func (m *MockDirectory) VerifyCredential(ctx context.Context, username, secret string) bool {
	args := m.Called(ctx, username, secret)
	return args.Bool(0)
}

func (m *MockDirectory) SupportsCredentialType(credentialType string) bool {
	args := m.Called(credentialType)
	return args.Bool(0)
}

func (m *MockDirectory) IsConfiguredFor(credentialType string) bool {
	args := m.Called(credentialType)
	return args.Bool(0)
}
