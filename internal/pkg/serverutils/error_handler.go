package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// InternalErrorMessage is the only detail an uncaught fault exposes
const InternalErrorMessage = "An internal error occurred while processing your request."

// ErrorHandlerMiddleware turns handler errors into the JSON envelope
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		case errors.Is(err, ErrValidation):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, ValidationMessage(err)))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, InternalErrorMessage))
		}
	}
}
