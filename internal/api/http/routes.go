package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/weather"
)

var validate = validator.New()

// ClimateSource serves normalized climate series.
type ClimateSource interface {
	Series(ctx context.Context, d climate.Dataset) ([]climate.Entry, error)
}

// WeatherSource serves composite weather reports.
type WeatherSource interface {
	Report(ctx context.Context, city string) (weather.Report, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, climateSrc ClimateSource, weatherSrc WeatherSource, log *zap.Logger) {
	v1 := app.Group("/api/v1")

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		return c.JSON(climate.Catalog())
	})

	v1.Get("/climate/:dataset", func(c *fiber.Ctx) error {
		info, err := climate.Lookup(c.Params("dataset"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}

		var q seriesQuery
		if err := q.bind(c, info.DefaultStartYear); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entries, err := climateSrc.Series(c.UserContext(), info.Dataset)
		if err != nil {
			if errors.Is(err, climate.ErrUnknownDataset) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			withRequest(log, c).Warn("climate series unavailable", zap.String("dataset", string(info.Dataset)), zap.Error(err))
			return fiber.NewError(fiber.StatusBadGateway, "data unavailable")
		}

		entries = climate.Last(climate.FromYear(entries, q.From), q.Last)
		return c.JSON(fiber.Map{
			"dataset": info.Dataset,
			"title":   info.Title,
			"unit":    info.Unit,
			"series":  info.Series,
			"from":    q.From,
			"count":   len(entries),
			"entries": entries,
		})
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{City: strings.TrimSpace(c.Query("city"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := weatherSrc.Report(c.UserContext(), q.City)
		if err != nil {
			withRequest(log, c).Warn("weather report unavailable", zap.String("city", q.City), zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "weather service is currently unavailable")
		}
		return c.JSON(report)
	})
}

// seriesQuery holds query parameters for the climate series endpoint.
type seriesQuery struct {
	From int `validate:"gte=0,lte=9999"`
	Last int `validate:"gte=0"`
}

func (q *seriesQuery) bind(c *fiber.Ctx, defaultFrom int) error {
	q.From = defaultFrom
	if s := c.Query("from"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("from must be a year")
		}
		q.From = n
	}
	if s := c.Query("last"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("last must be a number of entries")
		}
		q.Last = n
	}
	return validate.Struct(q)
}

// weatherQuery holds query parameters for the weather endpoint. An empty city
// means the device location.
type weatherQuery struct {
	City string `validate:"omitempty,max=100"`
}

func withRequest(log *zap.Logger, c *fiber.Ctx) *zap.Logger {
	return log.With(zap.String("requestId", requestID(c)))
}
