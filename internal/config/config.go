package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/climate-dashboard/internal/common"
	"github.com/i474232898/climate-dashboard/internal/kv"
)

type AppConfig struct {
	Port string

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration

	WeatherbitAPIKey string
	// GeocoderAPIKey enables Google geocoding for city lookups; without it
	// cities are resolved through Weatherbit.
	GeocoderAPIKey string

	ClimateBaseURL    string
	WeatherbitBaseURL string

	ClimateCacheTTL time.Duration
	WeatherCacheTTL time.Duration

	// UpstreamRetries is the retry budget of each outbound request.
	UpstreamRetries int

	// RefreshInterval controls how often cached data is warmed (0 disables).
	RefreshInterval time.Duration

	StoreBackend kv.Backend
	StorePath    string

	DefaultCity   string
	WeatherCities []string

	// DeviceLocation is the dashboard host position, nil when unknown.
	DeviceLocation     *Coordinates
	GeolocationTimeout time.Duration

	LogLevel  string
	LogFormat string

	// DotEnvLoaded reports whether a .env file was read.
	DotEnvLoaded bool
}

type Coordinates struct {
	Lat float64
	Lon float64
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	envErr := godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = envErr == nil
	return cfg, nil
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		WeatherbitAPIKey:  os.Getenv("WEATHERBIT_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		ClimateBaseURL:    getenvDefault("CLIMATE_BASE_URL", "https://global-warming.org/api"),
		WeatherbitBaseURL: getenvDefault("WEATHERBIT_BASE_URL", "https://api.weatherbit.io/v2.0"),
		StoreBackend:      kv.Backend(strings.ToLower(getenvDefault("STORE_BACKEND", string(kv.BackendSQLite)))),
		StorePath:         getenvDefault("STORE_PATH", kv.DefaultSQLitePath),
		DefaultCity:       getenvDefault("DEFAULT_CITY", "Rome"),
		WeatherCities:     common.SplitList(os.Getenv("WEATHER_CITIES")),
		UpstreamRetries:   getenvInt("UPSTREAM_RETRIES", 3),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "json"),
	}

	var errs []error
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"CLIMATE_CACHE_TTL", "5m", &cfg.ClimateCacheTTL},
		{"WEATHER_CACHE_TTL", "1h", &cfg.WeatherCacheTTL},
		{"REFRESH_INTERVAL", "5m", &cfg.RefreshInterval},
		{"GEOLOCATION_TIMEOUT", "10s", &cfg.GeolocationTimeout},
	}
	for _, d := range durations {
		v, err := getenvDuration(d.key, d.def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*d.dst = v
	}

	switch cfg.StoreBackend {
	case kv.BackendMemory, kv.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("invalid STORE_BACKEND %q: want %q or %q", cfg.StoreBackend, kv.BackendMemory, kv.BackendSQLite))
	}

	if cfg.UpstreamRetries < 0 {
		errs = append(errs, fmt.Errorf("invalid UPSTREAM_RETRIES %d", cfg.UpstreamRetries))
	}

	loc, err := loadDeviceLocation()
	if err != nil {
		errs = append(errs, err)
	}
	cfg.DeviceLocation = loc

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDeviceLocation reads DEVICE_LAT/DEVICE_LON. Both or neither must be set.
func loadDeviceLocation() (*Coordinates, error) {
	latStr, lonStr := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("DEVICE_LAT and DEVICE_LON must be set together")
	}

	lat, err := getenvFloat("DEVICE_LAT", 0)
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("DEVICE_LON", 0)
	if err != nil {
		return nil, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("device location %v,%v out of range", lat, lon)
	}
	return &Coordinates{Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, d)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
