package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-dashboard/internal/cache"
	"github.com/i474232898/climate-dashboard/internal/kv"
)

var (
	rome  = Coordinates{Lat: 41.89, Lon: 12.48}
	paris = Coordinates{Lat: 48.85, Lon: 2.35}
)

type fakeResolver struct {
	mu      sync.Mutex
	cities  map[string]Coordinates
	queries []string
}

func (r *fakeResolver) Resolve(_ context.Context, city string) (Coordinates, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, city)
	at, ok := r.cities[city]
	if !ok {
		return Coordinates{}, errors.New("city not found")
	}
	return at, nil
}

type fakeProvider struct {
	mu          sync.Mutex
	currentAt   []Coordinates
	forecastAt  []Coordinates
	currentErr  error
	forecastErr error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(_ context.Context, at Coordinates) (Observation, error) {
	p.mu.Lock()
	p.currentAt = append(p.currentAt, at)
	p.mu.Unlock()
	if p.currentErr != nil {
		return Observation{}, p.currentErr
	}
	return Observation{
		City:    "Somewhere",
		Current: Current{Temp: 21.5, Description: "Few clouds", Icon: "c02d", Condition: ConditionCloudy},
	}, nil
}

func (p *fakeProvider) Forecast(ctx context.Context, at Coordinates, days int) ([]DayForecast, error) {
	p.mu.Lock()
	p.forecastAt = append(p.forecastAt, at)
	p.mu.Unlock()
	if p.forecastErr != nil {
		return nil, p.forecastErr
	}
	out := make([]DayForecast, days)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = DayForecast{Date: base.AddDate(0, 0, i).Format("2006-01-02"), Min: 10, Max: 20, Icon: "c01d"}
	}
	return out, nil
}

func newTestService(p Provider, opts ...ServiceOption) (*Service, *fakeResolver, *kv.MemoryStore) {
	r := &fakeResolver{cities: map[string]Coordinates{"Rome": rome, "Paris": paris}}
	store := kv.NewMemoryStore()
	return NewService(r, p, cache.New(store), opts...), r, store
}

func TestReportForCity(t *testing.T) {
	p := &fakeProvider{}
	svc, _, store := newTestService(p)

	report, err := svc.Report(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, "Somewhere", report.City)
	assert.Equal(t, 21.5, report.Current.Temp)
	assert.Len(t, report.Forecast, ForecastDays)
	assert.Equal(t, []Coordinates{paris}, p.currentAt)
	assert.Equal(t, []Coordinates{paris}, p.forecastAt)

	keys, err := store.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"weather-Paris"}, keys)
}

func TestReportIsCached(t *testing.T) {
	p := &fakeProvider{}
	svc, r, _ := newTestService(p)
	ctx := context.Background()

	first, err := svc.Report(ctx, "Paris")
	require.NoError(t, err)
	second, err := svc.Report(ctx, " Paris ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, p.currentAt, 1)
	assert.Equal(t, []string{"Paris"}, r.queries)
}

func TestReportFallsBackToDefaultCityWhenLocationDenied(t *testing.T) {
	p := &fakeProvider{}
	denied := LocatorFunc(func(context.Context) (Coordinates, error) {
		return Coordinates{}, ErrLocationUnavailable
	})
	svc, r, store := newTestService(p, WithLocator(denied))

	_, err := svc.Report(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultCity}, r.queries)
	assert.Equal(t, []Coordinates{rome}, p.currentAt)
	assert.Equal(t, []Coordinates{rome}, p.forecastAt)

	keys, _ := store.Keys(context.Background())
	assert.Equal(t, []string{"weather-current"}, keys)
}

func TestReportFallsBackWhenLocationTimesOut(t *testing.T) {
	p := &fakeProvider{}
	slow := LocatorFunc(func(ctx context.Context) (Coordinates, error) {
		<-ctx.Done()
		return Coordinates{}, ctx.Err()
	})
	svc, _, _ := newTestService(p,
		WithLocator(slow),
		WithLocateTimeout(10*time.Millisecond),
		WithDefaultCity("Paris"),
	)

	report, err := svc.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", report.City)
	assert.Equal(t, []Coordinates{paris}, p.currentAt)
}

func TestReportUsesDeviceLocation(t *testing.T) {
	p := &fakeProvider{}
	here := Coordinates{Lat: 1, Lon: 2}
	svc, r, _ := newTestService(p, WithLocator(StaticLocator(here)))

	_, err := svc.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, r.queries)
	assert.Equal(t, []Coordinates{here}, p.forecastAt)
}

func TestReportUnknownCityFails(t *testing.T) {
	p := &fakeProvider{}
	svc, _, store := newTestService(p)

	_, err := svc.Report(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Empty(t, p.currentAt, "no weather calls without coordinates")
	assert.Equal(t, 0, store.Len())
}

func TestReportHasNoPartialResult(t *testing.T) {
	boom := errors.New("forecast upstream down")
	p := &fakeProvider{forecastErr: boom}
	svc, _, store := newTestService(p)

	_, err := svc.Report(context.Background(), "Rome")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())

	p.forecastErr = nil
	p.currentErr = boom
	_, err = svc.Report(context.Background(), "Rome")
	require.ErrorIs(t, err, boom)
}

func TestReportCancelledWhileLocating(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	locator := LocatorFunc(func(context.Context) (Coordinates, error) {
		cancel()
		return Coordinates{}, ErrLocationUnavailable
	})
	p := &fakeProvider{}
	svc, r, _ := newTestService(p, WithLocator(locator))

	_, err := svc.Report(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.queries)
}

func TestWarmCoversDeviceAndCities(t *testing.T) {
	p := &fakeProvider{}
	svc, _, store := newTestService(p, WithWarmCities("Paris", "Atlantis"))

	err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather-Atlantis")

	keys, _ := store.Keys(context.Background())
	assert.Equal(t, []string{"weather-Paris", "weather-current"}, keys)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "weather-current", CacheKey(""))
	assert.Equal(t, "weather-current", CacheKey("  "))
	assert.Equal(t, "weather-New York", CacheKey(" New York"))
}

func TestConditionFromCode(t *testing.T) {
	cases := map[int]Condition{
		201: ConditionStorm,
		300: ConditionRain,
		522: ConditionRain,
		610: ConditionSnow,
		741: ConditionMist,
		800: ConditionClear,
		803: ConditionCloudy,
		900: ConditionUnknown,
		0:   ConditionUnknown,
	}
	for code, want := range cases {
		assert.Equal(t, want, ConditionFromCode(code), code)
	}
}

func TestNoLocator(t *testing.T) {
	_, err := NoLocator{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
