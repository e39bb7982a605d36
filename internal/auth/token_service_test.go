package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/domain"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService("test-secret-at-least-32-bytes-long", "HS256", "identity-test")
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := auth.NewTokenService("", "HS256", "identity-test")
		assert.Error(t, err)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := auth.NewTokenService("secret", "HS999", "identity-test")
		assert.Error(t, err)
	})

	t.Run("rejects non-HMAC algorithm", func(t *testing.T) {
		_, err := auth.NewTokenService("secret", "RS256", "identity-test")
		assert.Error(t, err)
	})

	t.Run("accepts HS512", func(t *testing.T) {
		_, err := auth.NewTokenService("secret", "HS512", "identity-test")
		assert.NoError(t, err)
	})
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTokenService(t)
	ttl := 15 * time.Minute

	token, jti, err := svc.Issue("subject-1", auth.AudienceAccess, ttl, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := svc.Verify(token, auth.AudienceAccess)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "identity-test", claims.Issuer)
	assert.Contains(t, claims.Audience, auth.AudienceAccess)
	assert.Equal(t, ttl, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestIssueGeneratesFreshJTIs(t *testing.T) {
	svc := newTokenService(t)

	_, first, err := svc.Issue("subject-1", auth.AudienceAccess, time.Minute, "")
	require.NoError(t, err)
	_, second, err := svc.Issue("subject-1", auth.AudienceAccess, time.Minute, "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyAudienceIsolation(t *testing.T) {
	svc := newTokenService(t)

	refresh, _, err := svc.Issue("subject-1", auth.AudienceRefresh, time.Hour, "")
	require.NoError(t, err)

	_, err = svc.Verify(refresh, auth.AudienceAccess)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
	assert.False(t, domain.IsTokenExpired(err))

	access, _, err := svc.Issue("subject-1", auth.AudienceAccess, time.Hour, "")
	require.NoError(t, err)

	_, err = svc.Verify(access, auth.AudienceRefresh)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newTokenService(t)

	token, _, err := svc.Issue("subject-1", auth.AudienceAccess, -time.Minute, "")
	require.NoError(t, err)

	_, err = svc.Verify(token, auth.AudienceAccess)
	require.Error(t, err)
	assert.True(t, domain.IsTokenExpired(err))
	assert.False(t, domain.IsTokenInvalid(err))
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newTokenService(t)
	other, err := auth.NewTokenService("a-completely-different-signing-key", "HS256", "identity-test")
	require.NoError(t, err)

	token, _, err := other.Issue("subject-1", auth.AudienceAccess, time.Minute, "")
	require.NoError(t, err)

	_, err = svc.Verify(token, auth.AudienceAccess)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTokenService(t)

	_, err := svc.Verify("not.a.token", auth.AudienceAccess)
	require.Error(t, err)
	assert.True(t, domain.IsTokenInvalid(err))
}
