package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-logger/glog"

	"github.com/schoolgate/identity/internal/auth"
	"github.com/schoolgate/identity/internal/domain"
)

type UserHandler struct {
	logger glog.Logger
}

func NewUserHandler(logger glog.Logger) *UserHandler {
	return &UserHandler{logger: logger}
}

// Me returns the authenticated user loaded by the auth middleware.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return domain.ErrTokenInvalid
	}
	return c.JSON(user)
}
