package weather

import "strings"

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// ConditionFromCode maps a Weatherbit weather code onto a Condition.
// Codes are grouped by hundreds: 2xx thunderstorm, 3xx drizzle, 5xx rain,
// 6xx snow, 7xx atmosphere, 800 clear sky, 80x clouds.
func ConditionFromCode(code int) Condition {
	switch {
	case code >= 200 && code < 300:
		return ConditionStorm
	case code >= 300 && code < 400, code >= 500 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code < 800:
		return ConditionMist
	case code == 800:
		return ConditionClear
	case code > 800 && code < 900:
		return ConditionCloudy
	default:
		return ConditionUnknown
	}
}

// Coordinates is a resolved position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Current holds the present conditions at a location. Temp is in °C.
type Current struct {
	Temp        float64   `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"condition"`
}

// Observation is a provider's current-conditions answer, including the city
// name it associates with the coordinates.
type Observation struct {
	City    string
	Current Current
}

// DayForecast is one day of the daily forecast. Date is "2006-01-02".
type DayForecast struct {
	Date        string    `json:"date"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Icon        string    `json:"icon"`
	Description string    `json:"description,omitempty"`
	Condition   Condition `json:"condition"`
}

// Report is the composite weather result for one resolved location: current
// conditions plus the daily forecast, ordered by date.
type Report struct {
	City     string        `json:"city"`
	Current  Current       `json:"current"`
	Forecast []DayForecast `json:"forecast"`
}

// CacheKeyPrefix starts every weather cache key.
const CacheKeyPrefix = "weather-"

// CacheKey returns the cache key of a weather subject: "weather-<city>", or
// "weather-current" for a device-location lookup.
func CacheKey(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return CacheKeyPrefix + "current"
	}
	return CacheKeyPrefix + city
}
