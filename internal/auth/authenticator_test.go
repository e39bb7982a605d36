package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
	"github.com/schoolgate/identity/internal/store"
)

type authFixture struct {
	auther *auth.Authenticator
	store  *store.Manager
	svc    *auth.TokenService
	clock  *fakeClock
}

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*domain.Role)(nil),
		(*domain.User)(nil),
		(*domain.RefreshToken)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	pool := repository.NewPool(4, 16)
	t.Cleanup(pool.Shutdown)

	mgr := store.NewManager(db, pool)
	svc := newTokenService(t)
	clock := &fakeClock{current: time.Now().UTC()}

	auther := auth.NewAuthenticator(mgr.Users(), mgr.Roles(), mgr.RefreshTokens(), svc).
		WithTokenTTLs(15*time.Minute, 24*time.Hour).
		WithLockoutPolicy(10, 15*time.Minute).
		WithClock(clock.Now)

	return &authFixture{auther: auther, store: mgr, svc: svc, clock: clock}
}

func (f *authFixture) seedUser(t *testing.T, email, password string, active bool) *domain.User {
	t.Helper()

	hash := ""
	if password != "" {
		var err error
		hash, err = auth.HashPasswordCost(password, bcrypt.MinCost)
		require.NoError(t, err)
	}

	user := &domain.User{
		Email:        email,
		FullName:     "Test Person",
		PasswordHash: hash,
		Active:       active,
		CreatedAt:    f.clock.current,
		UpdatedAt:    f.clock.current,
	}
	_, err := f.store.Users().Save(context.Background(), user).Await(context.Background())
	require.NoError(t, err)
	return user
}

func (f *authFixture) reloadUser(t *testing.T, id uuid.UUID) *domain.User {
	t.Helper()
	user, err := f.store.Users().Find(context.Background(), repository.Filter{"id": id}).Await(context.Background())
	require.NoError(t, err)
	return user
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessJTI, "")

	claims, err := f.svc.Verify(pair.AccessToken, auth.AudienceAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Contains(t, claims.Audience, auth.AudienceAccess)
	assert.Equal(t, 15*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	refreshClaims, err := f.svc.Verify(pair.RefreshToken, auth.AudienceRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestLoginIncludesRoleClaim(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	role := &domain.Role{Name: "admin", CreatedAt: f.clock.current, UpdatedAt: f.clock.current}
	_, err := f.store.Roles().Save(ctx, role).Await(ctx)
	require.NoError(t, err)

	user := f.seedUser(t, "ada@example.com", "s3cret", true)
	user.RoleID = &role.ID
	_, err = f.store.Users().Save(ctx, user).Await(ctx)
	require.NoError(t, err)

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	claims, err := f.svc.Verify(pair.AccessToken, auth.AudienceAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	calls := 0
	f.auther.WithPasswordVerifier(func(password, hash string) error {
		calls++
		return auth.ComparePasswordAndHash(password, hash)
	})

	_, err := f.auther.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidCredentials(err))
	assert.Equal(t, 1, calls)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "s3cret", true)

	calls := 0
	f.auther.WithPasswordVerifier(func(password, hash string) error {
		calls++
		return auth.ComparePasswordAndHash(password, hash)
	})

	_, err := f.auther.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidCredentials(err))
	assert.Equal(t, 1, calls)

	assert.Equal(t, 1, f.reloadUser(t, user.ID).FailedAttempts)
}

func TestLoginEmptyStoredHash(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "sso-only@example.com", "", true)

	_, err := f.auther.Login(context.Background(), "sso-only@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidCredentials(err))
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "s3cret", false)

	_, err := f.auther.Login(context.Background(), "ada@example.com", "s3cret")
	require.Error(t, err)
	assert.True(t, domain.IsInactiveAccount(err))
}

func TestLoginLockoutScenario(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	// Nine misses report plain credential failures.
	for i := 0; i < 9; i++ {
		_, err := f.auther.Login(ctx, "ada@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, domain.IsInvalidCredentials(err), "attempt %d", i+1)
	}

	// The tenth miss trips the threshold and reports the lock.
	_, err := f.auther.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsAccountLocked(err))

	locked := f.reloadUser(t, user.ID)
	assert.Equal(t, 10, locked.FailedAttempts)
	require.NotNil(t, locked.LockUntil)

	// The right password is refused while the lock holds.
	_, err = f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.Error(t, err)
	assert.True(t, domain.IsAccountLocked(err))
}

func TestLoginSucceedsAfterLockExpires(t *testing.T) {
	f := newAuthFixture(t)
	f.auther.WithLockoutPolicy(3, 15*time.Minute)
	user := f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.auther.Login(ctx, "ada@example.com", "wrong")
		require.Error(t, err)
	}
	_, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	assert.True(t, domain.IsAccountLocked(err))

	f.clock.Advance(15*time.Minute + time.Second)

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	reloaded := f.reloadUser(t, user.ID)
	assert.Equal(t, 0, reloaded.FailedAttempts)
	assert.Nil(t, reloaded.LockUntil)
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	rotated, err := f.auther.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	oldClaims, err := f.svc.Verify(pair.RefreshToken, auth.AudienceRefresh)
	require.NoError(t, err)
	newClaims, err := f.svc.Verify(rotated.RefreshToken, auth.AudienceRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldClaims.ID, newClaims.ID)

	// The rotated-out token is spent.
	_, err = f.auther.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))

	// The replacement still works.
	_, err = f.auther.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = f.auther.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Well-signed but never persisted.
	orphan, _, err := f.svc.Issue(uuid.NewString(), auth.AudienceRefresh, time.Hour, "")
	require.NoError(t, err)

	_, err = f.auther.Refresh(ctx, orphan)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
}

func TestRefreshRejectsInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	user = f.reloadUser(t, user.ID)
	user.Active = false
	_, err = f.store.Users().Save(ctx, user).Await(ctx)
	require.NoError(t, err)

	_, err = f.auther.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsInactiveAccount(err))
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ada@example.com", "s3cret", true)
	ctx := context.Background()

	pair, err := f.auther.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.auther.Logout(ctx, pair.RefreshToken))

	_, err = f.auther.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))

	// Idempotent, and garbage is swallowed.
	assert.NoError(t, f.auther.Logout(ctx, pair.RefreshToken))
	assert.NoError(t, f.auther.Logout(ctx, "not-a-token"))
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.auther.Register(ctx, &domain.User{
		Email:    "new@example.com",
		FullName: "New Person",
	}, "initial-pass")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Active)
	assert.NoError(t, auth.ComparePasswordAndHash("initial-pass", created.PasswordHash))

	_, err = f.auther.Register(ctx, &domain.User{Email: "new@example.com"}, "other-pass")
	require.Error(t, err)
	assert.True(t, domain.IsAlreadyExists(err))
}
