package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

type RoleHandler struct {
	roles  *repository.Async[*domain.Role]
	now    nowFunc
	logger glog.Logger
}

func NewRoleHandler(roles *repository.Async[*domain.Role], now nowFunc, logger glog.Logger) *RoleHandler {
	return &RoleHandler{roles: roles, now: now, logger: logger}
}

// Health reports whether the role store answers queries.
func (h *RoleHandler) Health(c *fiber.Ctx) error {
	ids, err := h.roles.ListIDs(c.UserContext()).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok", "roles": len(ids)})
}

func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.roles.FindAll(c.UserContext()).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("invalid role id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	role, err := h.roles.Find(c.UserContext(), repository.Filter{"id": id}).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(role)
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var payload RoleCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	taken, err := h.roles.Exists(ctx, repository.Filter{"name": payload.Name}).Await(ctx)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrAlreadyExists
	}

	now := h.now()
	role := &domain.Role{
		Name:        payload.Name,
		Description: payload.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := h.roles.Save(ctx, role).Await(ctx); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}
