package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

const (
	MessageNotFound      = "Endpoint not found"
	MessageInternalError = "Internal server error"
)

// StatusError is implemented by domain errors that know their HTTP status.
type StatusError interface {
	error
	StatusCode() int
}

// ResolveError maps an error to a status code and the message shown to the
// client. Server side failures never expose their details.
func ResolveError(err error) (int, string) {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var statusErr StatusError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &statusErr):
		code = statusErr.StatusCode()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	switch {
	case code == fiber.StatusNotFound:
		message = MessageNotFound
	case code >= fiber.StatusInternalServerError:
		message = MessageInternalError
	}
	return code, message
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return FiberErrorHandler(ctx, err)
	}
}

// FiberErrorHandler is used as fiber.Config.ErrorHandler for errors raised
// outside the middleware chain, such as an oversized body.
func FiberErrorHandler(ctx *fiber.Ctx, err error) error {
	code, message := ResolveError(err)
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// NotFoundHandler answers any route that nothing else matched.
func NotFoundHandler(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, MessageNotFound))
}
