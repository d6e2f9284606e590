package climate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/climate-dashboard/internal/cache"
)

// DefaultCacheTTL is how long a normalized series is served from cache.
const DefaultCacheTTL = 5 * time.Minute

// Fetcher retrieves the raw upstream payload for each dataset.
type Fetcher interface {
	FetchCO2(ctx context.Context) ([]CO2Record, error)
	FetchMethane(ctx context.Context) ([]GasRecord, error)
	FetchNitrousOxide(ctx context.Context) ([]GasRecord, error)
	FetchTemperature(ctx context.Context) ([]TemperatureRecord, error)
	FetchOcean(ctx context.Context) (OceanPayload, error)
	FetchPolarIce(ctx context.Context) (ArcticPayload, error)
}

// Service serves normalized climate series, memoized per dataset.
type Service struct {
	fetcher Fetcher
	cache   *cache.Cache
	ttl     time.Duration
	ttls    map[Dataset]time.Duration
	logger  *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCacheTTL sets the TTL used for every dataset without an override.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithDatasetTTL overrides the TTL of a single dataset.
func WithDatasetTTL(d Dataset, ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttls[d] = ttl }
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, c *cache.Cache, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher: fetcher,
		cache:   c,
		ttl:     DefaultCacheTTL,
		ttls:    make(map[Dataset]time.Duration),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Series returns the full normalized series for d, from cache while fresh.
func (s *Service) Series(ctx context.Context, d Dataset) ([]Entry, error) {
	if _, err := Lookup(string(d)); err != nil {
		return nil, err
	}

	return cache.Get(ctx, s.cache, string(d), s.ttlFor(d), func(ctx context.Context) ([]Entry, error) {
		started := time.Now()
		entries, err := s.load(ctx, d)
		if err != nil {
			return nil, err
		}
		s.logger.Info("fetched climate series",
			zap.String("dataset", string(d)),
			zap.Int("entries", len(entries)),
			zap.Duration("took", time.Since(started)))
		return entries, nil
	})
}

// SeriesFrom returns the entries of d whose year is at least fromYear.
func (s *Service) SeriesFrom(ctx context.Context, d Dataset, fromYear int) ([]Entry, error) {
	entries, err := s.Series(ctx, d)
	if err != nil {
		return nil, err
	}
	return FromYear(entries, fromYear), nil
}

func (s *Service) CO2(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetCO2)
}

func (s *Service) Methane(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetMethane)
}

func (s *Service) NitrousOxide(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetNitrousOxide)
}

func (s *Service) Temperature(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetTemperature)
}

func (s *Service) OceanWarming(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetOcean)
}

func (s *Service) PolarIce(ctx context.Context) ([]Entry, error) {
	return s.Series(ctx, DatasetPolarIce)
}

// Name identifies the service to the scheduler.
func (s *Service) Name() string {
	return "climate"
}

// Warm loads every dataset, refetching the stale ones. It keeps going after
// a failure and returns all failures joined.
func (s *Service) Warm(ctx context.Context) error {
	var errs []error
	for _, info := range catalog {
		if _, err := s.Series(ctx, info.Dataset); err != nil {
			s.logger.Warn("climate warm-up failed", zap.String("dataset", string(info.Dataset)), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", info.Dataset, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) ttlFor(d Dataset) time.Duration {
	if ttl, ok := s.ttls[d]; ok {
		return ttl
	}
	return s.ttl
}

func (s *Service) load(ctx context.Context, d Dataset) ([]Entry, error) {
	switch d {
	case DatasetCO2:
		raw, err := s.fetcher.FetchCO2(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizeCO2(raw)
	case DatasetMethane:
		raw, err := s.fetcher.FetchMethane(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizeGas(d, raw)
	case DatasetNitrousOxide:
		raw, err := s.fetcher.FetchNitrousOxide(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizeGas(d, raw)
	case DatasetTemperature:
		raw, err := s.fetcher.FetchTemperature(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizeTemperature(raw)
	case DatasetOcean:
		raw, err := s.fetcher.FetchOcean(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizeOcean(raw)
	case DatasetPolarIce:
		raw, err := s.fetcher.FetchPolarIce(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d, err)
		}
		return NormalizePolarIce(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, d)
	}
}
