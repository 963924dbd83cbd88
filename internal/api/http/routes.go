package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

// WeatherProcessor answers current-weather lookups.
type WeatherProcessor interface {
	Process(ctx context.Context, city string, provider weather.Provider) (weather.Result, error)
}

// ProbeReader exposes stored probe outcomes.
type ProbeReader interface {
	GetLatest(p weather.Provider) (store.ProbeResult, error)
	GetRange(p weather.Provider, from, to time.Time) ([]store.ProbeResult, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. probes may be nil, in which case
// the probe endpoints are not mounted.
func RegisterRoutes(app *fiber.App, service WeatherProcessor, probes ProbeReader) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var req weatherQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.Process(c.UserContext(), req.City, req.provider)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(result)
	})

	if probes == nil {
		return
	}

	v1.Get("/probes/:provider/latest", func(c *fiber.Ctx) error {
		p, err := weather.ParseProvider(c.Params("provider"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := probes.GetLatest(p)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe results for requested provider")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe results")
		}

		return c.JSON(toProbeView(res))
	})

	v1.Get("/probes/:provider", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := probes.GetRange(req.provider, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe results for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch probe results")
		}

		views := make([]probeView, 0, len(results))
		for _, r := range results {
			views = append(views, toProbeView(r))
		}
		return c.JSON(fiber.Map{
			"provider": req.provider.String(),
			"from":     req.From,
			"to":       req.To,
			"probes":   views,
		})
	})
}

// weatherQuery holds query parameters for the weather endpoint.
type weatherQuery struct {
	City     string `validate:"required"`
	Provider string `validate:"omitempty,max=32"`

	provider weather.Provider
}

func (q *weatherQuery) bind(c *fiber.Ctx) error {
	q.City = strings.TrimSpace(c.Query("city"))
	q.Provider = strings.TrimSpace(c.Query("provider"))

	if err := validate.Struct(q); err != nil {
		return err
	}

	// Omitting the provider selects the primary one.
	if q.Provider == "" {
		q.provider = weather.ProviderPrimary
		return nil
	}
	p, err := weather.ParseProvider(q.Provider)
	if err != nil {
		return err
	}
	q.provider = p
	return nil
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`

	provider weather.Provider
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	p, err := weather.ParseProvider(c.Params("provider"))
	if err != nil {
		return err
	}
	h.provider = p

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

type probeView struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	City       string          `json:"city"`
	At         time.Time       `json:"at"`
	DurationMS int64           `json:"durationMs"`
	OK         bool            `json:"ok"`
	Error      string          `json:"error,omitempty"`
	Result     *weather.Result `json:"result,omitempty"`
}

func toProbeView(r store.ProbeResult) probeView {
	return probeView{
		ID:         r.ID,
		Provider:   r.Provider.String(),
		City:       r.City,
		At:         r.At,
		DurationMS: r.Duration.Milliseconds(),
		OK:         r.OK,
		Error:      r.Error,
		Result:     r.Result,
	}
}
