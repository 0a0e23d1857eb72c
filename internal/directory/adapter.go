// Package directory answers the host's user lookups, searches and credential
// checks from the external user store.
//
// Every operation is fail-quiet: malformed ids, foreign instance ids and
// storage failures are logged and reported to the caller as "not found",
// an empty result or an invalid credential.
package directory

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/credential"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/identity"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/logger"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"
	"github.com/rs/zerolog"
)

// Adapter is safe for concurrent use; it keeps no state between calls.
type Adapter struct {
	querier      repository.Querier
	builder      *query.Builder
	instanceID   string
	queryTimeout time.Duration
	log          zerolog.Logger
}

type Option func(*Adapter)

// WithQueryTimeout bounds each storage call. Zero leaves only the caller's
// deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.queryTimeout = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) {
		a.log = l
	}
}

func NewAdapter(querier repository.Querier, builder *query.Builder, instanceID string, opts ...Option) *Adapter {
	a := &Adapter{
		querier:    querier,
		builder:    builder,
		instanceID: instanceID,
		log:        logger.Component("directory"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) LookupByID(ctx context.Context, id string) (models.UserEntity, bool) {
	nativeKey, err := identity.Decode(id, a.instanceID)
	if err != nil {
		ev := a.log.Debug()
		if errors.Is(err, identity.ErrMalformedIdentity) {
			ev = a.log.Warn()
		}
		ev.Err(err).Str("operation", "lookupById").Str("id", id).Msg("Rejected user id")
		return models.UserEntity{}, false
	}
	return a.lookupOne(ctx, "lookupById", a.builder.ByNativeKey(nativeKey))
}

func (a *Adapter) LookupByUsername(ctx context.Context, username string) (models.UserEntity, bool) {
	return a.lookupOne(ctx, "lookupByUsername", a.builder.ByUsername(username))
}

func (a *Adapter) LookupByEmail(ctx context.Context, email string) (models.UserEntity, bool) {
	return a.lookupOne(ctx, "lookupByEmail", a.builder.ByEmail(email))
}

// Search returns the users matching criteria in ascending username order.
// firstResult and maxResults replace any pagination on criteria, zero or less
// meaning unset; criteria itself is not modified. Rows are read before Search
// returns so the connection is released even if the sequence is never
// consumed.
func (a *Adapter) Search(ctx context.Context, criteria *query.Criteria, firstResult, maxResults int) iter.Seq[models.UserEntity] {
	plan := a.builder.Build(criteria.WithPagination(firstResult, maxResults))
	users, _ := a.fetch(ctx, "search", plan, -1)
	return slices.Values(users)
}

// SearchByAttribute returns the users whose custom attribute name equals value.
func (a *Adapter) SearchByAttribute(ctx context.Context, name, value string) iter.Seq[models.UserEntity] {
	if name == "" || query.IsRecognized(name) {
		return slices.Values([]models.UserEntity(nil))
	}
	criteria := query.NewCriteria().Set(name, value).SetBool(query.KeyExact, true)
	users, _ := a.fetch(ctx, "searchByAttribute", a.builder.Build(criteria), -1)
	return slices.Values(users)
}

// VerifyCredential reports whether secret matches the stored password hash of
// username. A missing user, a missing hash or a storage failure is false.
func (a *Adapter) VerifyCredential(ctx context.Context, username, secret string) bool {
	if username == "" {
		return false
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	plan := a.builder.PasswordHash(username)
	rows, err := a.querier.Query(ctx, plan.SQL(), plan.Args...)
	if err != nil {
		a.logStorageFailure("verifyCredential", err)
		return false
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			a.logStorageFailure("verifyCredential", err)
		}
		return false
	}

	var hash *string
	if err := rows.Scan(&hash); err != nil {
		a.logStorageFailure("verifyCredential", err)
		return false
	}
	if hash == nil || *hash == "" {
		a.log.Debug().Str("operation", "verifyCredential").Msg("No credential record")
		return false
	}
	return credential.Verify(secret, *hash)
}

// SupportsCredentialType reports whether credentialType can be verified.
func (a *Adapter) SupportsCredentialType(credentialType string) bool {
	return credential.Supports(credentialType)
}

// IsConfiguredFor reports whether users of this store can use credentialType.
// Every stored user may carry a password hash, so it matches
// SupportsCredentialType.
func (a *Adapter) IsConfiguredFor(credentialType string) bool {
	return credential.Supports(credentialType)
}

func (a *Adapter) lookupOne(ctx context.Context, op string, plan query.Plan) (models.UserEntity, bool) {
	users, err := a.fetch(ctx, op, plan, 1)
	if err != nil || len(users) == 0 {
		return models.UserEntity{}, false
	}
	return users[0], true
}

// fetch runs plan and maps up to limit rows; a negative limit reads all.
// Errors are already logged when returned.
func (a *Adapter) fetch(ctx context.Context, op string, plan query.Plan, limit int) ([]models.UserEntity, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.querier.Query(ctx, plan.SQL(), plan.Args...)
	if err != nil {
		a.logStorageFailure(op, err)
		return nil, err
	}
	defer rows.Close()

	var users []models.UserEntity
	for (limit < 0 || len(users) < limit) && rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			a.logStorageFailure(op, err)
			return nil, err
		}
		users = append(users, MapRecord(rec, a.instanceID))
	}
	if err := rows.Err(); err != nil {
		a.logStorageFailure(op, err)
		return nil, err
	}
	return users, nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.queryTimeout > 0 {
		return context.WithTimeout(ctx, a.queryTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *Adapter) logStorageFailure(op string, err error) {
	a.log.Error().Err(err).Str("operation", op).Msg("Storage operation failed")
}

// scanRecord reads one row of the user column list. NULL text is "" and NULL
// flags are false.
func scanRecord(rows repository.Rows) (models.ExternalUserRecord, error) {
	var (
		id, username, email, firstName, lastName *string
		enabled, emailVerified                   *bool
	)
	if err := rows.Scan(&id, &username, &email, &firstName, &lastName, &enabled, &emailVerified); err != nil {
		return models.ExternalUserRecord{}, err
	}
	return models.ExternalUserRecord{
		NativeKey:     deref(id),
		Username:      deref(username),
		Email:         deref(email),
		FirstName:     deref(firstName),
		LastName:      deref(lastName),
		Enabled:       deref(enabled),
		EmailVerified: deref(emailVerified),
	}, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
