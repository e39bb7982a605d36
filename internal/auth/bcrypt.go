package auth

import (
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolgate/identity/internal/domain"
)

// DefaultHashCost balances verify latency against brute-force resistance.
const DefaultHashCost = 12

func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultHashCost)
}

func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(hash), nil
}

// ComparePasswordAndHash reports a credential failure on mismatch so callers
// never need to interpret bcrypt internals.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return errors.Wrap(err, errors.CategoryInternal, "password comparison failed")
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// DummyHash returns a hash of a throwaway secret at the default cost. It
// exists so a lookup miss can burn the same compare work as a real mismatch.
func DummyHash() string {
	dummyOnce.Do(func() {
		hash, err := HashPassword(uuid.NewString())
		if err != nil {
			panic(err)
		}
		dummyHash = hash
	})
	return dummyHash
}
