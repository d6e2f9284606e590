package climate

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Label layouts for the chart axis.
const (
	dayLabelLayout   = "Jan 2, 2006"
	monthLabelLayout = "Jan 2006"
)

var (
	errEmpty      = errors.New("empty value")
	errNotFinite  = errors.New("value is not a finite number")
	errOutOfRange = errors.New("value out of range")
)

// NormalizeCO2 converts daily CO₂ records dated by separate year, month and
// day fields. Fields: trend, cycle.
func NormalizeCO2(records []CO2Record) ([]Entry, error) {
	out := make([]Entry, 0, len(records))
	for i, r := range records {
		date, err := parseTripleDate(string(r.Year), string(r.Month), string(r.Day))
		if err != nil {
			return nil, malformed(DatasetCO2, i, "date", string(r.Year)+"-"+string(r.Month)+"-"+string(r.Day), err)
		}

		values, err := numericFields(DatasetCO2, i, []field{
			{name: "trend", raw: r.Trend},
			{name: "cycle", raw: r.Cycle},
		})
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Label:  date.Format(dayLabelLayout),
			Year:   date.Year(),
			Values: values,
		})
	}
	return out, nil
}

// NormalizeGas converts monthly methane or nitrous oxide records dated by a
// decimal year. Fields: average, trend, and averageUnc/trendUnc when present.
func NormalizeGas(d Dataset, records []GasRecord) ([]Entry, error) {
	out := make([]Entry, 0, len(records))
	for i, r := range records {
		year, date, err := parseDecimalYear(string(r.Date))
		if err != nil {
			return nil, malformed(d, i, "date", string(r.Date), err)
		}

		values, err := numericFields(d, i, []field{
			{name: "average", raw: r.Average},
			{name: "trend", raw: r.Trend},
			{name: "averageUnc", raw: r.AverageUnc, optional: true},
			{name: "trendUnc", raw: r.TrendUnc, optional: true},
		})
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Label:  date.Format(monthLabelLayout),
			Year:   year,
			Values: values,
		})
	}
	return out, nil
}

// NormalizeTemperature converts temperature anomaly records dated by a
// decimal year. Fields: land, and station when present.
func NormalizeTemperature(records []TemperatureRecord) ([]Entry, error) {
	out := make([]Entry, 0, len(records))
	for i, r := range records {
		year, date, err := parseDecimalYear(string(r.Time))
		if err != nil {
			return nil, malformed(DatasetTemperature, i, "time", string(r.Time), err)
		}

		values, err := numericFields(DatasetTemperature, i, []field{
			{name: "land", raw: r.Land},
			{name: "station", raw: r.Station, optional: true},
		})
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Label:  date.Format(monthLabelLayout),
			Year:   year,
			Values: values,
		})
	}
	return out, nil
}

// NormalizeOcean converts the year-keyed ocean warming payload. The label is
// the raw year key. Field: anomaly.
func NormalizeOcean(payload OceanPayload) ([]Entry, error) {
	keys := sortedKeys(payload)
	out := make([]Entry, 0, len(keys))
	for i, key := range keys {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, malformed(DatasetOcean, i, "year", key, err)
		}

		values, err := numericFields(DatasetOcean, i, []field{
			{name: "anomaly", raw: payload[key].Anomaly},
		})
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Label:  key,
			Year:   year,
			Values: values,
		})
	}
	return out, nil
}

// NormalizePolarIce converts the "YYYYMM"-keyed arctic payload. Fields:
// value, monthlyMean, anom.
func NormalizePolarIce(payload ArcticPayload) ([]Entry, error) {
	if payload.Error != nil && *payload.Error != "" {
		return nil, malformed(DatasetPolarIce, -1, "error", *payload.Error, errors.New("provider reported an error"))
	}
	if payload.ArcticData == nil || payload.ArcticData.Data == nil {
		return nil, malformed(DatasetPolarIce, -1, "arcticData.data", "", errEmpty)
	}

	data := payload.ArcticData.Data
	keys := sortedKeys(data)
	out := make([]Entry, 0, len(keys))
	for i, key := range keys {
		date, err := parseYearMonthKey(key)
		if err != nil {
			return nil, malformed(DatasetPolarIce, i, "key", key, err)
		}

		v := data[key]
		values, err := numericFields(DatasetPolarIce, i, []field{
			{name: "value", raw: v.Value},
			{name: "monthlyMean", raw: v.MonthlyMean},
			{name: "anom", raw: v.Anom, optional: true},
		})
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{
			Label:  date.Format(monthLabelLayout),
			Year:   date.Year(),
			Values: values,
		})
	}
	return out, nil
}

type field struct {
	name     string
	raw      NumericString
	optional bool
}

func numericFields(d Dataset, index int, fields []field) (map[string]float64, error) {
	values := make(map[string]float64, len(fields))
	for _, f := range fields {
		if f.optional && strings.TrimSpace(string(f.raw)) == "" {
			continue
		}
		v, err := parseNumber(string(f.raw))
		if err != nil {
			return nil, malformed(d, index, f.name, string(f.raw), err)
		}
		values[f.name] = v
	}
	return values, nil
}

// parseNumber parses a finite float. NaN and ±Inf are rejected.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	return strconv.Atoi(s)
}

// parseTripleDate builds a calendar date from separate year, 1-based month
// and day strings. Impossible dates such as Feb 30 are rejected.
func parseTripleDate(year, month, day string) (time.Time, error) {
	y, err := parseInt(year)
	if err != nil {
		return time.Time{}, err
	}
	m, err := parseInt(month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := parseInt(day)
	if err != nil {
		return time.Time{}, err
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, errOutOfRange
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(m) || date.Day() != d {
		return time.Time{}, errOutOfRange
	}
	return date, nil
}

// parseDecimalYear splits "<year>.<fraction>" into the integer year and an
// approximate month: round(0.<fraction> * 12) as a 0-based month index.
//
// The index is not clamped. A fraction close to 1 rounds to 12, which
// time.Date normalizes to January of the following year; the returned year
// is still the integer part ("2020.999" -> 2020, Jan 2021).
func parseDecimalYear(s string) (int, time.Time, error) {
	s = strings.TrimSpace(s)
	yearStr, fracStr, _ := strings.Cut(s, ".")

	year, err := parseInt(yearStr)
	if err != nil {
		return 0, time.Time{}, err
	}

	var frac float64
	if fracStr != "" {
		for _, r := range fracStr {
			if r < '0' || r > '9' {
				return 0, time.Time{}, errOutOfRange
			}
		}
		frac, err = strconv.ParseFloat("0."+fracStr, 64)
		if err != nil {
			return 0, time.Time{}, err
		}
	}

	monthIndex := int(math.Round(frac * 12))
	date := time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC)
	return year, date, nil
}

// parseYearMonthKey reads a "YYYYMM" key: four year digits followed by a
// 1-based month.
func parseYearMonthKey(key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if len(key) < 5 {
		return time.Time{}, errOutOfRange
	}
	y, err := parseInt(key[:4])
	if err != nil {
		return time.Time{}, err
	}
	m, err := parseInt(key[4:])
	if err != nil {
		return time.Time{}, err
	}
	if m < 1 || m > 12 {
		return time.Time{}, errOutOfRange
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), nil
}

// sortedKeys returns map keys in ascending order. Year and year-month keys
// are fixed width, so this matches numeric order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
