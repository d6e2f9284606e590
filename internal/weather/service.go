package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/cache"
)

const (
	// DefaultCity is used when the device location cannot be determined.
	DefaultCity = "Rome"

	// ForecastDays is the length of the daily forecast in a Report.
	ForecastDays = 7

	DefaultCacheTTL      = time.Hour
	DefaultLocateTimeout = 10 * time.Second
)

// Service resolves a weather subject, fetches current conditions and the
// forecast for it, and caches the combined Report.
type Service struct {
	resolver      CityResolver
	provider      Provider
	locator       Locator
	cache         *cache.Cache
	ttl           time.Duration
	defaultCity   string
	locateTimeout time.Duration
	warmCities    []string
	logger        *zap.Logger
}

type ServiceOption func(*Service)

func WithLocator(l Locator) ServiceOption {
	return func(s *Service) { s.locator = l }
}

func WithDefaultCity(city string) ServiceOption {
	return func(s *Service) {
		if city = strings.TrimSpace(city); city != "" {
			s.defaultCity = city
		}
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithLocateTimeout bounds how long a device location lookup may take
// before the default city is used.
func WithLocateTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.locateTimeout = d }
}

// WithWarmCities adds cities refreshed by Warm next to the device location.
func WithWarmCities(cities ...string) ServiceOption {
	return func(s *Service) { s.warmCities = append(s.warmCities, cities...) }
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new Service. Without WithLocator the device location
// is unknown and lookups without a city use the default city.
func NewService(resolver CityResolver, provider Provider, c *cache.Cache, opts ...ServiceOption) *Service {
	s := &Service{
		resolver:      resolver,
		provider:      provider,
		locator:       NoLocator{},
		cache:         c,
		ttl:           DefaultCacheTTL,
		defaultCity:   DefaultCity,
		locateTimeout: DefaultLocateTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report returns the composite weather for city, or for the device location
// when city is empty. Results are cached per subject.
func (s *Service) Report(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	return cache.Get(ctx, s.cache, CacheKey(city), s.ttl, func(ctx context.Context) (Report, error) {
		return s.fetch(ctx, city)
	})
}

func (s *Service) fetch(ctx context.Context, city string) (Report, error) {
	at, name, err := s.locate(ctx, city)
	if err != nil {
		return Report{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg          sync.WaitGroup
		obs         Observation
		forecast    []DayForecast
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		obs, currentErr = s.provider.Current(ctx, at)
		if currentErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.provider.Forecast(ctx, at, ForecastDays)
		if forecastErr != nil {
			cancel()
		}
	}()
	wg.Wait()

	// Prefer the error that caused the cancellation over the one it induced.
	switch {
	case currentErr != nil && !errors.Is(currentErr, context.Canceled):
		return Report{}, fmt.Errorf("current conditions: %w", currentErr)
	case forecastErr != nil && !errors.Is(forecastErr, context.Canceled):
		return Report{}, fmt.Errorf("forecast: %w", forecastErr)
	case currentErr != nil:
		return Report{}, fmt.Errorf("current conditions: %w", currentErr)
	case forecastErr != nil:
		return Report{}, fmt.Errorf("forecast: %w", forecastErr)
	}

	if obs.City != "" {
		name = obs.City
	}
	s.logger.Info("fetched weather report",
		zap.String("city", name),
		zap.String("provider", s.provider.Name()),
		zap.Int("forecastDays", len(forecast)))

	return Report{City: name, Current: obs.Current, Forecast: forecast}, nil
}

// locate resolves the subject to coordinates. An explicit city must resolve;
// a failed device lookup falls back to the default city.
func (s *Service) locate(ctx context.Context, city string) (Coordinates, string, error) {
	if city != "" {
		at, err := s.resolver.Resolve(ctx, city)
		if err != nil {
			return Coordinates{}, "", fmt.Errorf("resolve city %q: %w", city, err)
		}
		return at, city, nil
	}

	lctx, cancel := context.WithTimeout(ctx, s.locateTimeout)
	at, err := s.locator.Locate(lctx)
	cancel()
	if err == nil {
		return at, "", nil
	}
	if ctx.Err() != nil {
		return Coordinates{}, "", ctx.Err()
	}

	s.logger.Info("device location unavailable, using default city",
		zap.String("city", s.defaultCity), zap.Error(err))
	at, err = s.resolver.Resolve(ctx, s.defaultCity)
	if err != nil {
		return Coordinates{}, "", fmt.Errorf("resolve default city %q: %w", s.defaultCity, err)
	}
	return at, s.defaultCity, nil
}

// Name identifies the service to the scheduler.
func (s *Service) Name() string {
	return "weather"
}

// Warm refreshes the device-location report and every configured city.
func (s *Service) Warm(ctx context.Context) error {
	subjects := append([]string{""}, s.warmCities...)

	var errs []error
	for _, city := range subjects {
		if _, err := s.Report(ctx, city); err != nil {
			s.logger.Warn("weather warm-up failed", zap.String("key", CacheKey(city)), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", CacheKey(city), err))
		}
	}
	return errors.Join(errs...)
}
