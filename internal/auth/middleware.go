package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

// Request-local keys populated by RequireAuth.
const (
	LocalUserKey   = "auth:user"
	LocalClaimsKey = "auth:claims"
)

// RequireAuth enforces a bearer access token and an existing, active subject.
// Errors bubble to the app error handler for status mapping.
func RequireAuth(tokenService *TokenService, users *repository.Async[*domain.User]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return domain.ErrTokenInvalid
		}

		claims, err := tokenService.Verify(raw, AudienceAccess)
		if err != nil {
			return err
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return domain.ErrTokenInvalid
		}

		user, err := users.Find(c.UserContext(), repository.Filter{"id": userID}).Await(c.UserContext())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return domain.ErrTokenInvalid
			}
			return domain.StorageError(err)
		}
		if !user.Active {
			return domain.ErrInactiveAccount
		}

		c.Locals(LocalUserKey, user)
		c.Locals(LocalClaimsKey, claims)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(LocalUserKey).(*domain.User)
	return user, ok
}

// CurrentClaims returns the verified access claims stored by RequireAuth.
func CurrentClaims(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(LocalClaimsKey).(*Claims)
	return claims, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
