package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

const (
	DefaultAccessTokenTTL    = 15 * time.Minute
	DefaultRefreshTokenTTL   = 7 * 24 * time.Hour
	DefaultMaxFailedAttempts = 10
	DefaultLockoutDuration   = 15 * time.Minute
)

// PasswordVerifier compares a candidate password against a stored hash.
type PasswordVerifier func(password, hash string) error

// TokenPair is what a successful authentication hands to the transport.
type TokenPair struct {
	AccessToken      string
	AccessJTI        string
	AccessExpiresIn  time.Duration
	RefreshToken     string
	RefreshExpiresIn time.Duration
}

// Authenticator drives the credential workflow: login with lockout tracking,
// refresh rotation, logout revocation, and registration.
type Authenticator struct {
	users         *repository.Async[*domain.User]
	roles         *repository.Async[*domain.Role]
	refreshTokens *repository.Async[*domain.RefreshToken]
	tokenService  *TokenService

	accessTTL    time.Duration
	refreshTTL   time.Duration
	maxAttempts  int
	lockDuration time.Duration

	verify PasswordVerifier
	now    func() time.Time
	logger glog.Logger
}

func NewAuthenticator(
	users *repository.Async[*domain.User],
	roles *repository.Async[*domain.Role],
	refreshTokens *repository.Async[*domain.RefreshToken],
	tokenService *TokenService,
) *Authenticator {
	return &Authenticator{
		users:         users,
		roles:         roles,
		refreshTokens: refreshTokens,
		tokenService:  tokenService,
		accessTTL:     DefaultAccessTokenTTL,
		refreshTTL:    DefaultRefreshTokenTTL,
		maxAttempts:   DefaultMaxFailedAttempts,
		lockDuration:  DefaultLockoutDuration,
		verify:        ComparePasswordAndHash,
		now:           time.Now,
		logger:        glog.NewLogger(glog.WithName("auth")).GetLogger("authenticator"),
	}
}

func (a *Authenticator) WithTokenTTLs(access, refresh time.Duration) *Authenticator {
	if access > 0 {
		a.accessTTL = access
	}
	if refresh > 0 {
		a.refreshTTL = refresh
	}
	return a
}

func (a *Authenticator) WithLockoutPolicy(maxAttempts int, duration time.Duration) *Authenticator {
	if maxAttempts > 0 {
		a.maxAttempts = maxAttempts
	}
	if duration > 0 {
		a.lockDuration = duration
	}
	return a
}

func (a *Authenticator) WithPasswordVerifier(verify PasswordVerifier) *Authenticator {
	if verify != nil {
		a.verify = verify
	}
	return a
}

func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	if now != nil {
		a.now = now
	}
	return a
}

func (a *Authenticator) WithLogger(logger glog.Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// AccessTokenTTL exposes the configured access token lifetime.
func (a *Authenticator) AccessTokenTTL() time.Duration { return a.accessTTL }

// RefreshTokenTTL exposes the configured refresh token lifetime.
func (a *Authenticator) RefreshTokenTTL() time.Duration { return a.refreshTTL }

// Login authenticates an email/password pair. A lookup miss and an empty
// stored hash both burn one dummy compare so response timing does not reveal
// whether the account exists.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := a.users.Find(ctx, repository.Filter{"email": email}).Await(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			a.verify(password, DummyHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.StorageError(err)
	}

	if user.PasswordHash == "" {
		a.verify(password, DummyHash())
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrInactiveAccount
	}

	now := a.now()
	if user.Locked(now) {
		a.logger.Warn("login rejected, account locked",
			"user_id", user.ID.String(),
			"lock_until", user.LockUntil,
		)
		return nil, domain.AccountLockedError(*user.LockUntil)
	}

	if verr := a.verify(password, user.PasswordHash); verr != nil {
		return nil, a.trackFailedAttempt(ctx, user, now)
	}

	user.FailedAttempts = 0
	user.LockUntil = nil
	user.Touch(now)
	if _, err := a.users.Save(ctx, user).Await(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	a.logger.Debug("login succeeded", "user_id", user.ID.String())
	return a.issuePair(ctx, user, now)
}

// trackFailedAttempt bumps the counter, locking the account when the attempt
// that failed is the one that reaches the threshold.
func (a *Authenticator) trackFailedAttempt(ctx context.Context, user *domain.User, now time.Time) error {
	user.FailedAttempts++

	var out *errors.Error = domain.ErrInvalidCredentials
	if user.FailedAttempts >= a.maxAttempts {
		until := now.Add(a.lockDuration)
		user.LockUntil = &until
		out = domain.AccountLockedError(until)
		a.logger.Warn("account locked after repeated failures",
			"user_id", user.ID.String(),
			"failed_attempts", user.FailedAttempts,
			"lock_until", until,
		)
	}

	user.Touch(now)
	if _, err := a.users.Save(ctx, user).Await(ctx); err != nil {
		return domain.StorageError(err)
	}
	return out
}

// Refresh exchanges a live refresh token for a brand-new pair, revoking the
// presented one. A revoked, expired, or unknown token never rotates.
func (a *Authenticator) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := a.tokenService.Verify(token, AudienceRefresh)
	if err != nil {
		return nil, err
	}

	row, err := a.refreshTokens.Find(ctx, repository.Filter{"jti": claims.ID}).Await(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, domain.StorageError(err)
	}

	now := a.now()
	if !row.Live(now) {
		a.logger.Warn("refresh rejected, token not live",
			"jti", row.JTI,
			"revoked", row.Revoked,
		)
		return nil, domain.ErrTokenInvalid
	}

	row.Revoked = true
	if _, err := a.refreshTokens.Save(ctx, row).Await(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := a.users.Find(ctx, repository.Filter{"id": userID}).Await(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, domain.StorageError(err)
	}
	if !user.Active {
		return nil, domain.ErrInactiveAccount
	}

	return a.issuePair(ctx, user, now)
}

// Logout revokes the refresh token's row. Unknown or malformed tokens are
// ignored so the operation stays idempotent.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	claims, err := a.tokenService.Verify(token, AudienceRefresh)
	if err != nil {
		return nil
	}

	row, err := a.refreshTokens.Find(ctx, repository.Filter{"jti": claims.ID}).Await(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return domain.StorageError(err)
	}
	if row.Revoked {
		return nil
	}

	row.Revoked = true
	if _, err := a.refreshTokens.Save(ctx, row).Await(ctx); err != nil {
		return domain.StorageError(err)
	}
	return nil
}

// Register creates a user with a freshly hashed password. The email must not
// be taken.
func (a *Authenticator) Register(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	taken, err := a.users.Exists(ctx, repository.Filter{"email": user.Email}).Await(ctx)
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if taken {
		return nil, domain.ErrAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := a.now()
	user.PasswordHash = hash
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := a.users.Save(ctx, user).Await(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	a.logger.Info("user registered", "user_id", user.ID.String())
	return user, nil
}

func (a *Authenticator) issuePair(ctx context.Context, user *domain.User, now time.Time) (*TokenPair, error) {
	roleName := ""
	if user.RoleID != nil {
		role, err := a.roles.Find(ctx, repository.Filter{"id": *user.RoleID}).Await(ctx)
		switch {
		case err == nil:
			roleName = role.Name
		case !repository.IsRecordNotFound(err):
			return nil, domain.StorageError(err)
		}
	}

	access, accessJTI, err := a.tokenService.Issue(user.ID.String(), AudienceAccess, a.accessTTL, roleName)
	if err != nil {
		return nil, err
	}

	refresh, refreshJTI, err := a.tokenService.Issue(user.ID.String(), AudienceRefresh, a.refreshTTL, "")
	if err != nil {
		return nil, err
	}

	row := &domain.RefreshToken{
		JTI:       refreshJTI,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.refreshTTL),
	}
	if _, err := a.refreshTokens.Save(ctx, row).Await(ctx); err != nil {
		return nil, domain.StorageError(err)
	}

	return &TokenPair{
		AccessToken:      access,
		AccessJTI:        accessJTI,
		AccessExpiresIn:  a.accessTTL,
		RefreshToken:     refresh,
		RefreshExpiresIn: a.refreshTTL,
	}, nil
}
