package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/domain"
)

func TestHashPasswordCost(t *testing.T) {
	hash, err := auth.HashPasswordCost("sup3r-secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-secret", hash)

	assert.NoError(t, auth.ComparePasswordAndHash("sup3r-secret", hash))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}

func TestComparePasswordMismatch(t *testing.T) {
	hash, err := auth.HashPasswordCost("correct", bcrypt.MinCost)
	require.NoError(t, err)

	err = auth.ComparePasswordAndHash("wrong", hash)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidCredentials(err))
}

func TestComparePasswordGarbageHash(t *testing.T) {
	err := auth.ComparePasswordAndHash("whatever", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, domain.IsInvalidCredentials(err))
}

func TestDummyHashIsStable(t *testing.T) {
	first := auth.DummyHash()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, auth.DummyHash())

	// No password should ever match the throwaway secret.
	assert.Error(t, auth.ComparePasswordAndHash("password123", first))
}
