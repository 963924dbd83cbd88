package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const requestIDHeader = fiber.HeaderXRequestID

// HTTPRecorder receives per-request measurements.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// RequestID tags each request with an X-Request-ID, keeping one supplied by the caller.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    requestIDHeader,
		Generator: uuid.NewString,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(requestIDHeader)
}

// Metrics records method, route template, status and latency for every request.
func Metrics(rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rec == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		rec.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
