package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/logging"
	"github.com/i474232898/city-weather/internal/weather"
)

// statusFor maps a weather.Service error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrEmptyCity), errors.Is(err, weather.ErrUnsupportedProvider):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return fiber.StatusRequestTimeout
	}

	if _, ok := weather.AsProviderUnavailable(err); ok {
		return fiber.StatusBadGateway
	}
	if _, ok := weather.AsTransportError(err); ok {
		return fiber.StatusBadGateway
	}
	if _, ok := weather.AsDecodeError(err); ok {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// apiError carries a public message while keeping the cause for logs.
type apiError struct {
	code    int
	message string
	cause   error
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) Unwrap() error { return e.cause }

// serviceError converts a weather.Service error into a handler error. Upstream failures get a
// generic message; their detail only reaches the logs.
func serviceError(err error) error {
	code := statusFor(err)
	switch code {
	case fiber.StatusBadGateway:
		return &apiError{code: code, message: "weather provider unavailable", cause: err}
	case fiber.StatusGatewayTimeout:
		return &apiError{code: code, message: "weather provider timed out", cause: err}
	case fiber.StatusInternalServerError:
		return &apiError{code: code, message: "failed to fetch weather data", cause: err}
	}
	return fiber.NewError(code, err.Error())
}

// errorStatus returns the HTTP status an error handler will answer err with.
func errorStatus(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"error": true, "message": ...}. Server-side failures are
// logged with the request ID.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	logger = logging.OrNop(logger)
	return func(c *fiber.Ctx, err error) error {
		code := errorStatus(err)

		if code >= fiber.StatusInternalServerError {
			detail := err
			var ae *apiError
			if errors.As(err, &ae) && ae.cause != nil {
				detail = ae.cause
			}
			logger.Error("request failed",
				zap.String(logging.FieldRequestID, requestID(c)),
				zap.String("path", c.Path()),
				zap.Int(logging.FieldStatusCode, code),
				zap.Error(detail),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}
