package weather

import (
	"context"
	"errors"
)

var (
	// ErrLocationUnavailable is returned by a Locator that cannot determine
	// the device position (denied, unsupported or timed out).
	ErrLocationUnavailable = errors.New("device location unavailable")

	// ErrMalformedResponse reports an upstream answer missing the fields a
	// report needs, such as an empty data array.
	ErrMalformedResponse = errors.New("malformed weather response")
)

// CityResolver turns a city name into coordinates.
type CityResolver interface {
	Resolve(ctx context.Context, city string) (Coordinates, error)
}

// Provider abstracts a weather data source.
type Provider interface {
	Name() string
	Current(ctx context.Context, at Coordinates) (Observation, error)
	Forecast(ctx context.Context, at Coordinates, days int) ([]DayForecast, error)
}

// Locator reports the position of the device running the dashboard.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to a Locator.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// StaticLocator always reports the same configured position.
type StaticLocator Coordinates

func (l StaticLocator) Locate(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return Coordinates(l), nil
}

// NoLocator is used when the device position is unknown. Every lookup
// fails, so requests without a city fall back to the default city.
type NoLocator struct{}

func (NoLocator) Locate(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrLocationUnavailable
}
