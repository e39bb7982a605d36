package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
)

// Token audiences. Every token carries exactly one, pinned at verification,
// so an access token can never pass as a refresh token or the reverse.
const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"
)

// Claims is the payload the service signs into every token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies JWTs with a single shared secret.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
}

func NewTokenService(secret, algorithm, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("signing secret must not be empty", errors.CategoryValidation)
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, errors.New("unknown signing algorithm: "+algorithm, errors.CategoryValidation)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("shared-secret signing requires an HMAC algorithm", errors.CategoryValidation)
	}

	return &TokenService{
		secret: []byte(secret),
		method: method,
		issuer: issuer,
	}, nil
}

// Issue signs a token for the subject with a fresh jti and returns both.
func (s *TokenService) Issue(subject, audience string, ttl time.Duration, role string) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}
	return signed, jti, nil
}

// Verify checks signature, temporal claims, and audience. Audience mismatch
// always reads as an invalid token; expiry of an otherwise well-targeted
// token reads as expired.
func (s *TokenService) Verify(token, expectedAudience string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithAudience(expectedAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, domain.ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, errors.Wrap(err, domain.ErrTokenInvalid.Category, domain.ErrTokenInvalid.Message).
				WithTextCode(domain.TextCodeTokenInvalid).
				WithCode(errors.CodeUnauthorized)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
