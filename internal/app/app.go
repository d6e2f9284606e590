package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/cache"
	"github.com/i474232898/climate-dashboard/internal/climate"
	climateproviders "github.com/i474232898/climate-dashboard/internal/climate/providers"
	"github.com/i474232898/climate-dashboard/internal/config"
	"github.com/i474232898/climate-dashboard/internal/kv"
	"github.com/i474232898/climate-dashboard/internal/metrics"
	"github.com/i474232898/climate-dashboard/internal/scheduler"
	"github.com/i474232898/climate-dashboard/internal/upstream"
	"github.com/i474232898/climate-dashboard/internal/weather"
	weatherproviders "github.com/i474232898/climate-dashboard/internal/weather/providers"
)

const metricsNamespace = "climate_dashboard"

// App wires the store, caches, upstream clients and services shared by the
// server and the CLI.
type App struct {
	Config  *config.AppConfig
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Store   kv.Store

	Climate *climate.Service
	Weather *weather.Service

	climateCache *cache.Cache
	weatherCache *cache.Cache
}

// New builds an App from configuration. Close releases the store.
func New(cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := kv.Open(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	return NewWithStore(cfg, logger, store), nil
}

// NewWithStore builds an App over an already opened store.
func NewWithStore(cfg *config.AppConfig, logger *zap.Logger, store kv.Store) *App {
	m := metrics.New(metricsNamespace)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	backoff := upstream.DefaultBackoff
	backoff.MaxRetries = cfg.UpstreamRetries
	clientOpts := []upstream.Option{
		upstream.WithBackoff(backoff),
		upstream.WithLogger(logger.Named("upstream")),
		upstream.WithMetrics(m),
	}

	climateCache := cache.New(store,
		cache.WithName("climate"),
		cache.WithLogger(logger.Named("cache")),
		cache.WithMetrics(m))
	weatherCache := cache.New(store,
		cache.WithName("weather"),
		cache.WithLogger(logger.Named("cache")),
		cache.WithMetrics(m))

	fetcher := climateproviders.NewGlobalWarming(
		upstream.New("global-warming", httpClient, clientOpts...),
		cfg.ClimateBaseURL)
	climateSvc := climate.NewService(fetcher, climateCache,
		climate.WithCacheTTL(cfg.ClimateCacheTTL),
		climate.WithLogger(logger.Named("climate")))

	weatherbit := weatherproviders.NewWeatherbit(
		upstream.New("weatherbit", httpClient, clientOpts...),
		cfg.WeatherbitBaseURL,
		cfg.WeatherbitAPIKey)

	var resolver weather.CityResolver = weatherbit
	if cfg.GeocoderAPIKey != "" {
		resolver = weatherproviders.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	weatherOpts := []weather.ServiceOption{
		weather.WithCacheTTL(cfg.WeatherCacheTTL),
		weather.WithDefaultCity(cfg.DefaultCity),
		weather.WithLocateTimeout(cfg.GeolocationTimeout),
		weather.WithWarmCities(cfg.WeatherCities...),
		weather.WithLogger(logger.Named("weather")),
	}
	if loc := cfg.DeviceLocation; loc != nil {
		weatherOpts = append(weatherOpts, weather.WithLocator(weather.StaticLocator{Lat: loc.Lat, Lon: loc.Lon}))
	}
	weatherSvc := weather.NewService(resolver, weatherbit, weatherCache, weatherOpts...)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      m,
		Store:        store,
		Climate:      climateSvc,
		Weather:      weatherSvc,
		climateCache: climateCache,
		weatherCache: weatherCache,
	}
}

// Warmers lists the services refreshed by the scheduler.
func (a *App) Warmers() []scheduler.Warmer {
	return []scheduler.Warmer{a.Climate, a.Weather}
}

// CacheEntry describes one cached record.
type CacheEntry struct {
	Key   string
	Age   string
	Valid bool
}

// CacheEntries lists the cached records with their age. It needs a store
// that can enumerate keys.
func (a *App) CacheEntries(ctx context.Context) ([]CacheEntry, error) {
	lister, ok := a.Store.(kv.Lister)
	if !ok {
		return nil, fmt.Errorf("store %T cannot list keys", a.Store)
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]CacheEntry, 0, len(keys))
	for _, key := range keys {
		entry := CacheEntry{Key: key, Age: "-"}
		if age, ok := a.cacheFor(key).Age(ctx, key); ok {
			entry.Age = age.Round(time.Second).String()
			entry.Valid = true
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Invalidate removes the cached record under key.
func (a *App) Invalidate(ctx context.Context, key string) error {
	return a.cacheFor(key).Invalidate(ctx, key)
}

func (a *App) cacheFor(key string) *cache.Cache {
	if strings.HasPrefix(key, weather.CacheKeyPrefix) {
		return a.weatherCache
	}
	return a.climateCache
}

func (a *App) Close() error {
	return a.Store.Close()
}
