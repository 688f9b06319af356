package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"reasonmed-be/pkg/apperrors"
)

var validate = validator.New()

// ValidateRequest checks the validate tags on a request DTO.
func ValidateRequest(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return apperrors.NewValidationError("%s", err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware maps the error taxonomy onto HTTP status codes:
// caller mistakes are 400, upstream collaborator failures are 502,
// everything else is 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Error()})
		}

		var providerErr *apperrors.ProviderError
		if errors.As(err, &providerErr) {
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": providerErr.Error()})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
