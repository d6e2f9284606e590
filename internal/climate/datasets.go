package climate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownDataset is returned for a dataset name outside the catalog.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Dataset identifies one upstream climate series. Its string value doubles
// as the cache key.
type Dataset string

const (
	DatasetCO2          Dataset = "co2"
	DatasetMethane      Dataset = "methane"
	DatasetNitrousOxide Dataset = "nitrous-oxide"
	DatasetTemperature  Dataset = "temperature"
	DatasetOcean        Dataset = "ocean-warming"
	DatasetPolarIce     Dataset = "polar-ice"
)

// Info describes a dataset for the chart front end.
type Info struct {
	Dataset          Dataset  `json:"dataset"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Unit             string   `json:"unit"`
	Series           []string `json:"series"`
	DefaultStartYear int      `json:"defaultStartYear"`
}

var catalog = []Info{
	{
		Dataset:          DatasetCO2,
		Title:            "Atmospheric CO₂ Levels",
		Description:      "Daily carbon dioxide measurements; trend is the smoothed long-term series, cycle includes seasonal variation.",
		Unit:             "ppm",
		Series:           []string{"trend", "cycle"},
		DefaultStartYear: 2015,
	},
	{
		Dataset:          DatasetMethane,
		Title:            "Atmospheric Methane (CH₄)",
		Description:      "Monthly methane concentrations; trend shows long-term change, average includes seasonal cycles.",
		Unit:             "ppb",
		Series:           []string{"trend", "average"},
		DefaultStartYear: 1985,
	},
	{
		Dataset:          DatasetNitrousOxide,
		Title:            "Atmospheric Nitrous Oxide (N₂O)",
		Description:      "Monthly nitrous oxide levels; trend is long-term, average is short-term.",
		Unit:             "ppb",
		Series:           []string{"trend", "average"},
		DefaultStartYear: 2002,
	},
	{
		Dataset:          DatasetTemperature,
		Title:            "Global Temperature Anomaly",
		Description:      "Monthly land temperature anomaly relative to the 1951-1980 average.",
		Unit:             "°C",
		Series:           []string{"land", "station"},
		DefaultStartYear: 1880,
	},
	{
		Dataset:          DatasetOcean,
		Title:            "Ocean Warming Anomaly",
		Description:      "Yearly ocean temperature anomaly.",
		Unit:             "°C",
		Series:           []string{"anomaly"},
		DefaultStartYear: 1880,
	},
	{
		Dataset:          DatasetPolarIce,
		Title:            "Global Polar Ice Extent",
		Description:      "Measured sea ice extent against the 1991-2020 monthly baseline.",
		Unit:             "million km²",
		Series:           []string{"value", "monthlyMean"},
		DefaultStartYear: 1990,
	},
}

// Catalog returns every known dataset in display order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a dataset by name, case-insensitively.
func Lookup(name string) (Info, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range catalog {
		if string(info.Dataset) == name {
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}
