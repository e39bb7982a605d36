package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

type GuardianHandler struct {
	guardians *repository.Async[*domain.Guardian]
	now       nowFunc
	logger    glog.Logger
}

func NewGuardianHandler(guardians *repository.Async[*domain.Guardian], now nowFunc, logger glog.Logger) *GuardianHandler {
	return &GuardianHandler{guardians: guardians, now: now, logger: logger}
}

func (h *GuardianHandler) List(c *fiber.Ctx) error {
	guardians, err := h.guardians.FindAll(c.UserContext()).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(guardians)
}

func (h *GuardianHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	guardian, err := h.guardians.Find(c.UserContext(), repository.Filter{"id": id}).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(guardian)
}

func (h *GuardianHandler) Create(c *fiber.Ctx) error {
	var payload GuardianCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	now := h.now()
	guardian := &domain.Guardian{
		FullName:       payload.FullName,
		DocumentType:   payload.DocumentType,
		DocumentNumber: payload.DocumentNumber,
		Phone:          payload.Phone,
		Email:          payload.Email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := h.guardians.Save(c.UserContext(), guardian).Await(c.UserContext()); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(guardian)
}

func (h *GuardianHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var payload GuardianUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	guardian, err := h.guardians.Find(ctx, repository.Filter{"id": id}).Await(ctx)
	if err != nil {
		return err
	}

	if payload.FullName != nil {
		guardian.FullName = *payload.FullName
	}
	if payload.DocumentType != nil {
		guardian.DocumentType = *payload.DocumentType
	}
	if payload.DocumentNumber != nil {
		guardian.DocumentNumber = *payload.DocumentNumber
	}
	if payload.Phone != nil {
		guardian.Phone = *payload.Phone
	}
	if payload.Email != nil {
		guardian.Email = *payload.Email
	}
	guardian.UpdatedAt = h.now()

	if _, err := h.guardians.Save(ctx, guardian).Await(ctx); err != nil {
		return err
	}
	return c.JSON(guardian)
}

func (h *GuardianHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	removed, err := h.guardians.Delete(c.UserContext(), repository.Filter{"id": id}).Await(c.UserContext())
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
