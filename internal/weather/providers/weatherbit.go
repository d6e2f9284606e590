package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/climate-dashboard/internal/upstream"
	"github.com/i474232898/climate-dashboard/internal/weather"
)

const DefaultWeatherbitBaseURL = "https://api.weatherbit.io/v2.0"

var (
	errMissingAPIKey = errors.New("weatherbit api key is not configured")
	errEmptyCity     = errors.New("city is empty")
)

// Weatherbit implements weather.Provider and weather.CityResolver for the
// Weatherbit v2.0 API. All values are requested in metric units.
type Weatherbit struct {
	name    string
	apiKey  string
	baseURL string
	client  *upstream.Client
}

var (
	_ weather.Provider     = &Weatherbit{}
	_ weather.CityResolver = &Weatherbit{}
)

func NewWeatherbit(client *upstream.Client, baseURL, apiKey string) *Weatherbit {
	if baseURL == "" {
		baseURL = DefaultWeatherbitBaseURL
	}
	return &Weatherbit{
		name:    "weatherbit",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *Weatherbit) Name() string {
	return p.name
}

type weatherbitConditions struct {
	Icon        string `json:"icon"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Resolve looks the city up through the current-conditions endpoint and
// returns the coordinates Weatherbit associates with it.
func (p *Weatherbit) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return weather.Coordinates{}, errEmptyCity
	}

	values := url.Values{}
	values.Set("city", city)

	var payload struct {
		Data []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"data"`
	}
	if err := p.get(ctx, "current", values, &payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload.Data) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: no match for city %q", weather.ErrMalformedResponse, city)
	}
	return weather.Coordinates{Lat: payload.Data[0].Lat, Lon: payload.Data[0].Lon}, nil
}

func (p *Weatherbit) Current(ctx context.Context, at weather.Coordinates) (weather.Observation, error) {
	var payload struct {
		Data []struct {
			CityName string               `json:"city_name"`
			Temp     float64              `json:"temp"`
			Weather  weatherbitConditions `json:"weather"`
		} `json:"data"`
	}
	if err := p.get(ctx, "current", coordinates(at), &payload); err != nil {
		return weather.Observation{}, err
	}
	if len(payload.Data) == 0 {
		return weather.Observation{}, fmt.Errorf("%w: empty current conditions", weather.ErrMalformedResponse)
	}

	d := payload.Data[0]
	return weather.Observation{
		City: d.CityName,
		Current: weather.Current{
			Temp:        d.Temp,
			Description: d.Weather.Description,
			Icon:        d.Weather.Icon,
			Condition:   weather.ConditionFromCode(d.Weather.Code),
		},
	}, nil
}

func (p *Weatherbit) Forecast(ctx context.Context, at weather.Coordinates, days int) ([]weather.DayForecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	values := coordinates(at)
	values.Set("days", strconv.Itoa(days))

	var payload struct {
		Data []struct {
			ValidDate string               `json:"valid_date"`
			MinTemp   float64              `json:"min_temp"`
			MaxTemp   float64              `json:"max_temp"`
			Weather   weatherbitConditions `json:"weather"`
		} `json:"data"`
	}
	if err := p.get(ctx, "forecast/daily", values, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%w: empty forecast", weather.ErrMalformedResponse)
	}

	forecast := make([]weather.DayForecast, 0, len(payload.Data))
	for _, d := range payload.Data {
		forecast = append(forecast, weather.DayForecast{
			Date:        d.ValidDate,
			Min:         d.MinTemp,
			Max:         d.MaxTemp,
			Icon:        d.Weather.Icon,
			Description: d.Weather.Description,
			Condition:   weather.ConditionFromCode(d.Weather.Code),
		})
	}
	return forecast, nil
}

func (p *Weatherbit) get(ctx context.Context, path string, values url.Values, out any) error {
	if p.apiKey == "" {
		return errMissingAPIKey
	}
	values.Set("key", p.apiKey)
	values.Set("units", "M")

	u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
	return p.client.GetJSON(ctx, u, out)
}

func coordinates(at weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	return values
}
