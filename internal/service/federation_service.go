package service

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/config"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/logger"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/metrics"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"
	"github.com/rs/zerolog"
)

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrUnsupportedCredentialType = errors.New("unsupported credential type")
	ErrAccountLocked             = errors.New("account temporarily locked")
)

type FederationService struct {
	directory   Directory
	attemptRepo repository.AttemptRepository
	lockout     config.LockoutConfig
	log         zerolog.Logger
	now         func() time.Time
}

var _ FederationProvider = (*FederationService)(nil)

// NewFederationService creates a FederationService. A nil attemptRepo or a
// zero lockout.MaxFailures disables lockout.
func NewFederationService(directory Directory, attemptRepo repository.AttemptRepository, lockout config.LockoutConfig) *FederationService {
	return &FederationService{
		directory:   directory,
		attemptRepo: attemptRepo,
		lockout:     lockout,
		log:         logger.Component("federation"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *FederationService) GetUser(ctx context.Context, id string) (*models.UserEntity, error) {
	return s.lookup("lookupById", func() (models.UserEntity, bool) {
		return s.directory.LookupByID(ctx, id)
	})
}

func (s *FederationService) GetUserByUsername(ctx context.Context, username string) (*models.UserEntity, error) {
	return s.lookup("lookupByUsername", func() (models.UserEntity, bool) {
		return s.directory.LookupByUsername(ctx, username)
	})
}

func (s *FederationService) GetUserByEmail(ctx context.Context, email string) (*models.UserEntity, error) {
	return s.lookup("lookupByEmail", func() (models.UserEntity, bool) {
		return s.directory.LookupByEmail(ctx, email)
	})
}

func (s *FederationService) lookup(op string, fn func() (models.UserEntity, bool)) (*models.UserEntity, error) {
	start := time.Now()
	user, ok := fn()
	if !ok {
		metrics.RecordOperation(op, metrics.OutcomeNotFound, start)
		return nil, ErrUserNotFound
	}
	metrics.RecordOperation(op, metrics.OutcomeFound, start)
	return &user, nil
}

func (s *FederationService) SearchUsers(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) []models.UserEntity {
	start := time.Now()
	users := collect(s.directory.Search(ctx, criteria, firstResult, maxResults))
	metrics.RecordOperation("search", metrics.OutcomeOK, start)
	return users
}

func (s *FederationService) SearchUsersByAttribute(ctx context.Context, name, value string) []models.UserEntity {
	start := time.Now()
	users := collect(s.directory.SearchByAttribute(ctx, name, value))
	metrics.RecordOperation("searchByAttribute", metrics.OutcomeOK, start)
	return users
}

func (s *FederationService) SupportsCredentialType(credentialType string) bool {
	return s.directory.SupportsCredentialType(credentialType)
}

func (s *FederationService) ValidateCredential(ctx context.Context, req models.CredentialValidationRequest) (bool, error) {
	const op = "verifyCredential"
	start := time.Now()

	if !s.directory.IsConfiguredFor(req.Type) {
		metrics.RecordCredentialCheck(metrics.CredentialUnsupported)
		metrics.RecordOperation(op, metrics.OutcomeRejected, start)
		return false, ErrUnsupportedCredentialType
	}

	if s.lockoutEnabled() && s.isLocked(ctx, req.Username) {
		s.log.Warn().Str("username", req.Username).Msg("Credential check refused for locked account")
		metrics.RecordCredentialCheck(metrics.CredentialLocked)
		metrics.RecordOperation(op, metrics.OutcomeLocked, start)
		return false, ErrAccountLocked
	}

	valid := s.directory.VerifyCredential(ctx, req.Username, req.Value)
	if valid {
		s.clearFailures(ctx, req.Username)
		metrics.RecordCredentialCheck(metrics.CredentialValid)
		metrics.RecordOperation(op, metrics.OutcomeOK, start)
		return true, nil
	}

	s.recordFailure(ctx, req.Username)
	metrics.RecordCredentialCheck(metrics.CredentialInvalid)
	metrics.RecordOperation(op, metrics.OutcomeInvalid, start)
	return false, nil
}

func (s *FederationService) lockoutEnabled() bool {
	return s.attemptRepo != nil && s.lockout.MaxFailures > 0
}

// isLocked treats an unreadable attempt store as unlocked; the credential
// check itself still decides the outcome.
func (s *FederationService) isLocked(ctx context.Context, username string) bool {
	lock, err := s.attemptRepo.GetLock(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrLockNotFound) {
			s.log.Error().Err(err).Str("username", username).Msg("Failed to read login lock")
		}
		return false
	}
	return !lock.IsExpired(s.now())
}

func (s *FederationService) recordFailure(ctx context.Context, username string) {
	if !s.lockoutEnabled() || username == "" {
		return
	}

	failures, err := s.attemptRepo.RecordFailure(ctx, username, s.lockout.Window)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("Failed to record credential failure")
		return
	}
	if failures < s.lockout.MaxFailures {
		return
	}

	now := s.now()
	lock := &models.LoginLock{
		Username: username,
		Failures: failures,
		LockedAt: now,
		Until:    now.Add(s.lockout.Duration),
	}
	if err := s.attemptRepo.StoreLock(ctx, lock); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("Failed to store login lock")
		return
	}
	metrics.RecordLockout()
	s.log.Warn().Str("username", username).Int64("failures", failures).Time("until", lock.Until).Msg("Account locked after repeated credential failures")
}

func (s *FederationService) clearFailures(ctx context.Context, username string) {
	if !s.lockoutEnabled() {
		return
	}
	if err := s.attemptRepo.Reset(ctx, username); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("Failed to reset credential failures")
	}
}

func collect(seq iter.Seq[models.UserEntity]) []models.UserEntity {
	users := slices.Collect(seq)
	if users == nil {
		users = []models.UserEntity{}
	}
	return users
}
