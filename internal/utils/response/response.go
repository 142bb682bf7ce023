package response

import (
	"errors"

	kerrors "kopa/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

// DomainError maps a domain error kind onto its HTTP status. Unknown
// errors surface as a generic 500 without leaking internals.
func DomainError(c *fiber.Ctx, err error) error {
	var domainErr *kerrors.DomainError
	if !errors.As(err, &domainErr) {
		return ServerError(c, "internal server error")
	}

	status := fiber.StatusInternalServerError
	switch domainErr.Kind {
	case kerrors.KindValidation:
		status = fiber.StatusBadRequest
	case kerrors.KindNotFound:
		status = fiber.StatusNotFound
	case kerrors.KindInsufficientBalance:
		status = fiber.StatusUnprocessableEntity
	case kerrors.KindExternalProvider:
		status = fiber.StatusBadGateway
	case kerrors.KindDecryption, kerrors.KindPersistence:
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"error": domainErr.Message,
		"code":  domainErr.Code,
	})
}
