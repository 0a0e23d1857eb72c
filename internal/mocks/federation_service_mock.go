package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/stretchr/testify/mock"
)

// MockFederationProvider is a mock implementation of the FederationProvider interface.
type MockFederationProvider struct {
	mock.Mock
}

func (m *MockFederationProvider) GetUser(ctx context.Context, id string) (*models.UserEntity, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.UserEntity)
	return user, args.Error(1)
}

func (m *MockFederationProvider) GetUserByUsername(ctx context.Context, username string) (*models.UserEntity, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.UserEntity)
	return user, args.Error(1)
}

func (m *MockFederationProvider) GetUserByEmail(ctx context.Context, email string) (*models.UserEntity, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.UserEntity)
	return user, args.Error(1)
}

func (m *MockFederationProvider) SearchUsers(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) []models.UserEntity {
	args := m.Called(ctx, criteria, firstResult, maxResults)
	users, _ := args.Get(0).([]models.UserEntity)
	return users
}

func (m *MockFederationProvider) SearchUsersByAttribute(ctx context.Context, name, value string) []models.UserEntity {
	args := m.Called(ctx, name, value)
	users, _ := args.Get(0).([]models.UserEntity)
	return users
}

func (m *MockFederationProvider) ValidateCredential(ctx context.Context, req models.CredentialValidationRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockFederationProvider) SupportsCredentialType(credentialType string) bool {
	args := m.Called(credentialType)
	return args.Bool(0)
}
