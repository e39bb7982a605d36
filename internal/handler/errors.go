package handler

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler maps rich errors onto HTTP responses. Clients get a stable
// kind and a human message; internals stay in the logs.
func ErrorHandler(logger glog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: errorDetail{
				Kind:    "VALIDATION",
				Message: verrs.Error(),
			}})
		}

		var rich *errors.Error
		if errors.As(err, &rich) {
			status := rich.Code
			if status < fiber.StatusBadRequest {
				status = statusForCategory(rich.Category)
			}

			detail := errorDetail{
				Kind:    rich.TextCode,
				Message: rich.Message,
			}
			if detail.Kind == "" {
				detail.Kind = string(rich.Category)
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error("request failed", "status", status, "error", rich)
				detail.Message = "internal server error"
			} else if len(rich.Metadata) > 0 {
				detail.Details = rich.Metadata
			}
			return c.Status(status).JSON(errorBody{Error: detail})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorBody{Error: errorDetail{
				Kind:    "HTTP_ERROR",
				Message: fiberErr.Message,
			}})
		}

		logger.Error("unhandled request error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: errorDetail{
			Kind:    "INTERNAL",
			Message: "internal server error",
		}})
	}
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
