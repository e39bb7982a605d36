package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/schoolgate/identity/internal/domain"
	"github.com/schoolgate/identity/internal/repository"
)

type StudentHandler struct {
	students  *repository.Async[*domain.Student]
	guardians *repository.Async[*domain.Guardian]
	now       nowFunc
	logger    glog.Logger
}

func NewStudentHandler(
	students *repository.Async[*domain.Student],
	guardians *repository.Async[*domain.Guardian],
	now nowFunc,
	logger glog.Logger,
) *StudentHandler {
	return &StudentHandler{students: students, guardians: guardians, now: now, logger: logger}
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.students.FindAll(c.UserContext()).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(students)
}

func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	student, err := h.students.Find(c.UserContext(), repository.Filter{"id": id}).Await(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(student)
}

func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var payload StudentCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	guardianID, err := h.resolveGuardian(ctx, payload.GuardianID)
	if err != nil {
		return err
	}

	now := h.now()
	student := &domain.Student{
		FullName:       payload.FullName,
		DocumentType:   payload.DocumentType,
		DocumentNumber: payload.DocumentNumber,
		GuardianID:     guardianID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := h.students.Save(ctx, student).Await(ctx); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(student)
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var payload StudentUpdatePayload
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	student, err := h.students.Find(ctx, repository.Filter{"id": id}).Await(ctx)
	if err != nil {
		return err
	}

	if payload.FullName != nil {
		student.FullName = *payload.FullName
	}
	if payload.DocumentType != nil {
		student.DocumentType = *payload.DocumentType
	}
	if payload.DocumentNumber != nil {
		student.DocumentNumber = *payload.DocumentNumber
	}
	if payload.GuardianID != nil {
		guardianID, err := h.resolveGuardian(ctx, *payload.GuardianID)
		if err != nil {
			return err
		}
		student.GuardianID = guardianID
	}
	student.UpdatedAt = h.now()

	if _, err := h.students.Save(ctx, student).Await(ctx); err != nil {
		return err
	}
	return c.JSON(student)
}

func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	removed, err := h.students.Delete(c.UserContext(), repository.Filter{"id": id}).Await(c.UserContext())
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// resolveGuardian validates that the referenced guardian exists. An empty id
// detaches the student.
func (h *StudentHandler) resolveGuardian(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New("invalid guardian id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	exists, err := h.guardians.Exists(ctx, repository.Filter{"id": id}).Await(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound.Clone().WithMetadata(map[string]any{"guardian_id": raw})
	}
	return &id, nil
}
