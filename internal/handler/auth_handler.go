package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/domain"
)

// RefreshCookieName is where the refresh token travels. It never appears in
// a response body.
const RefreshCookieName = "refresh_token"

// CookieSettings controls the refresh cookie attributes that vary by
// environment.
type CookieSettings struct {
	Secure   bool
	SameSite string
}

type tokenPayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	JTI         string `json:"jti"`
}

type AuthHandler struct {
	auther  *auth.Authenticator
	cookies CookieSettings
	logger  glog.Logger
}

func NewAuthHandler(auther *auth.Authenticator, cookies CookieSettings, logger glog.Logger) *AuthHandler {
	return &AuthHandler{auther: auther, cookies: cookies, logger: logger}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var payload RegisterPayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	created, err := h.auther.Register(c.UserContext(), payload.toUser(), payload.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload LoginPayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	pair, err := h.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresIn)
	return c.JSON(h.tokenPayload(pair))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(RefreshCookieName)
	if token == "" {
		return domain.ErrTokenInvalid
	}

	pair, err := h.auther.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresIn)
	return c.JSON(h.tokenPayload(pair))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(RefreshCookieName); token != "" {
		if err := h.auther.Logout(c.UserContext(), token); err != nil {
			return err
		}
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) tokenPayload(pair *auth.TokenPair) tokenPayload {
	return tokenPayload{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(pair.AccessExpiresIn.Seconds()),
		JTI:         pair.AccessJTI,
	}
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
}
