package providers

import (
	"context"
	"strings"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/upstream"
)

// DefaultGlobalWarmingBaseURL is the public global-warming.org API root.
const DefaultGlobalWarmingBaseURL = "https://global-warming.org/api"

// GlobalWarming implements climate.Fetcher against global-warming.org.
// Every endpoint wraps its records in a dataset-specific top-level key; a
// missing key is reported as a malformed response.
type GlobalWarming struct {
	baseURL string
	client  *upstream.Client
}

var _ climate.Fetcher = &GlobalWarming{}

// NewGlobalWarming creates a fetcher rooted at baseURL.
func NewGlobalWarming(client *upstream.Client, baseURL string) *GlobalWarming {
	if baseURL == "" {
		baseURL = DefaultGlobalWarmingBaseURL
	}
	return &GlobalWarming{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *GlobalWarming) endpoint(path string) string {
	return p.baseURL + "/" + path
}

func (p *GlobalWarming) FetchCO2(ctx context.Context) ([]climate.CO2Record, error) {
	var payload struct {
		CO2 []climate.CO2Record `json:"co2"`
	}
	if err := p.client.GetJSON(ctx, p.endpoint("co2-api"), &payload); err != nil {
		return nil, err
	}
	if payload.CO2 == nil {
		return nil, missingKey(climate.DatasetCO2, "co2")
	}
	return payload.CO2, nil
}

func (p *GlobalWarming) FetchMethane(ctx context.Context) ([]climate.GasRecord, error) {
	var payload struct {
		Methane []climate.GasRecord `json:"methane"`
	}
	if err := p.client.GetJSON(ctx, p.endpoint("methane-api"), &payload); err != nil {
		return nil, err
	}
	if payload.Methane == nil {
		return nil, missingKey(climate.DatasetMethane, "methane")
	}
	return payload.Methane, nil
}

func (p *GlobalWarming) FetchNitrousOxide(ctx context.Context) ([]climate.GasRecord, error) {
	var payload struct {
		Nitrous []climate.GasRecord `json:"nitrous"`
	}
	if err := p.client.GetJSON(ctx, p.endpoint("nitrous-oxide-api"), &payload); err != nil {
		return nil, err
	}
	if payload.Nitrous == nil {
		return nil, missingKey(climate.DatasetNitrousOxide, "nitrous")
	}
	return payload.Nitrous, nil
}

func (p *GlobalWarming) FetchTemperature(ctx context.Context) ([]climate.TemperatureRecord, error) {
	var payload struct {
		Result []climate.TemperatureRecord `json:"result"`
	}
	if err := p.client.GetJSON(ctx, p.endpoint("temperature-api"), &payload); err != nil {
		return nil, err
	}
	if payload.Result == nil {
		return nil, missingKey(climate.DatasetTemperature, "result")
	}
	return payload.Result, nil
}

func (p *GlobalWarming) FetchOcean(ctx context.Context) (climate.OceanPayload, error) {
	var payload struct {
		Result climate.OceanPayload `json:"result"`
	}
	if err := p.client.GetJSON(ctx, p.endpoint("ocean-warming-api"), &payload); err != nil {
		return nil, err
	}
	if payload.Result == nil {
		return nil, missingKey(climate.DatasetOcean, "result")
	}
	return payload.Result, nil
}

// FetchPolarIce returns the arctic payload as sent; its provider error flag
// is checked during normalization.
func (p *GlobalWarming) FetchPolarIce(ctx context.Context) (climate.ArcticPayload, error) {
	var payload climate.ArcticPayload
	if err := p.client.GetJSON(ctx, p.endpoint("arctic-api"), &payload); err != nil {
		return climate.ArcticPayload{}, err
	}
	if payload.ArcticData == nil && (payload.Error == nil || *payload.Error == "") {
		return climate.ArcticPayload{}, missingKey(climate.DatasetPolarIce, "arcticData")
	}
	return payload, nil
}

func missingKey(d climate.Dataset, key string) error {
	return &climate.MalformedResponseError{Dataset: d, Index: -1, Field: key}
}
