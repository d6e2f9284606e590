package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NumericString holds a number the upstream API may send either as a JSON
// string ("414.50") or as a bare number. Null decodes to "".
type NumericString string

func (n *NumericString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return fmt.Errorf("numeric field: %w", err)
		}
		*n = NumericString(num.String())
		return nil
	}
}

// CO2Record is a daily CO₂ reading with a year/month/day date.
type CO2Record struct {
	Year  NumericString `json:"year"`
	Month NumericString `json:"month"`
	Day   NumericString `json:"day"`
	Cycle NumericString `json:"cycle"`
	Trend NumericString `json:"trend"`
}

// GasRecord is a monthly methane or nitrous oxide reading dated by a
// decimal year.
type GasRecord struct {
	Date       NumericString `json:"date"`
	Average    NumericString `json:"average"`
	Trend      NumericString `json:"trend"`
	AverageUnc NumericString `json:"averageUnc"`
	TrendUnc   NumericString `json:"trendUnc"`
}

// TemperatureRecord is a global temperature anomaly dated by a decimal year.
type TemperatureRecord struct {
	Time    NumericString `json:"time"`
	Station NumericString `json:"station"`
	Land    NumericString `json:"land"`
}

// OceanValue is one year of the ocean warming series.
type OceanValue struct {
	Anomaly NumericString `json:"anomaly"`
}

// OceanPayload maps a plain year ("1985") to its anomaly.
type OceanPayload map[string]OceanValue

// ArcticValue is one month of the polar ice series.
type ArcticValue struct {
	Value       NumericString `json:"value"`
	Anom        NumericString `json:"anom"`
	MonthlyMean NumericString `json:"monthlyMean"`
}

// ArcticDescription carries the series metadata returned with the data.
type ArcticDescription struct {
	Title        string  `json:"title"`
	BasePeriod   string  `json:"basePeriod"`
	Units        string  `json:"units"`
	AnnualMean   float64 `json:"annualMean"`
	DecadalTrend float64 `json:"decadalTrend"`
	Missing      float64 `json:"missing"`
}

// ArcticData maps "YYYYMM" keys to monthly values.
type ArcticData struct {
	Description ArcticDescription      `json:"description"`
	Data        map[string]ArcticValue `json:"data"`
}

// ArcticPayload is the polar ice response. A non-empty Error is the
// provider's own failure flag.
type ArcticPayload struct {
	Error      *string     `json:"error"`
	ArcticData *ArcticData `json:"arcticData"`
}
