package service

import (
	"context"
	"iter"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
)

// Directory is the user store behind the federation API.
// *directory.Adapter implements it.
type Directory interface {
	LookupByID(ctx context.Context, id string) (models.UserEntity, bool)
	LookupByUsername(ctx context.Context, username string) (models.UserEntity, bool)
	LookupByEmail(ctx context.Context, email string) (models.UserEntity, bool)
	Search(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) iter.Seq[models.UserEntity]
	SearchByAttribute(ctx context.Context, name, value string) iter.Seq[models.UserEntity]
	VerifyCredential(ctx context.Context, username, secret string) bool
	SupportsCredentialType(credentialType string) bool
	IsConfiguredFor(credentialType string) bool
}

// FederationProvider serves the host's federation requests.
type FederationProvider interface {
	// GetUser resolves an opaque user id. It returns ErrUserNotFound for
	// unknown, malformed or foreign ids.
	GetUser(ctx context.Context, id string) (*models.UserEntity, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserEntity, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserEntity, error)
	// SearchUsers never fails; a storage failure yields an empty list.
	SearchUsers(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) []models.UserEntity
	SearchUsersByAttribute(ctx context.Context, name, value string) []models.UserEntity
	// ValidateCredential reports whether the presented credential is valid.
	// It returns ErrUnsupportedCredentialType or ErrAccountLocked when the
	// check was not attempted.
	ValidateCredential(ctx context.Context, req models.CredentialValidationRequest) (bool, error)
	SupportsCredentialType(credentialType string) bool
}
