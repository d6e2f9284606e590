package climate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCO2(t *testing.T) {
	records := []CO2Record{
		{Year: "2023", Month: "3", Day: "5", Cycle: "420.10", Trend: "419.05"},
		{Year: "2021", Month: "12", Day: "31", Cycle: "416.9", Trend: "416.20"},
	}
	before := append([]CO2Record(nil), records...)

	entries, err := NormalizeCO2(records)
	require.NoError(t, err)
	require.Len(t, entries, len(records))
	assert.Equal(t, before, records, "input must not be mutated")

	assert.Equal(t, "Mar 5, 2023", entries[0].Label)
	assert.Equal(t, 2023, entries[0].Year)
	assert.Equal(t, map[string]float64{"trend": 419.05, "cycle": 420.10}, entries[0].Values)

	// Order follows the input, not the date.
	assert.Equal(t, "Dec 31, 2021", entries[1].Label)
	assert.Equal(t, 2021, entries[1].Year)
}

func TestNormalizeCO2RejectsBadFields(t *testing.T) {
	cases := map[string]CO2Record{
		"non numeric trend": {Year: "2020", Month: "1", Day: "1", Cycle: "1", Trend: "n/a"},
		"empty cycle":       {Year: "2020", Month: "1", Day: "1", Cycle: "", Trend: "1"},
		"nan trend":         {Year: "2020", Month: "1", Day: "1", Cycle: "1", Trend: "NaN"},
		"bad year":          {Year: "20x0", Month: "1", Day: "1", Cycle: "1", Trend: "1"},
		"month 13":          {Year: "2020", Month: "13", Day: "1", Cycle: "1", Trend: "1"},
		"feb 30":            {Year: "2021", Month: "2", Day: "30", Cycle: "1", Trend: "1"},
	}

	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			good := CO2Record{Year: "2020", Month: "1", Day: "1", Cycle: "1", Trend: "1"}
			_, err := NormalizeCO2([]CO2Record{good, rec})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)

			var me *MalformedResponseError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, DatasetCO2, me.Dataset)
			assert.Equal(t, 1, me.Index)
		})
	}
}

func TestParseDecimalYear(t *testing.T) {
	cases := []struct {
		in        string
		wantYear  int
		wantLabel string
	}{
		{"2020.0", 2020, "Jan 2020"},
		{"2020", 2020, "Jan 2020"},
		{"2020.5", 2020, "Jul 2020"},
		{"1983.542", 1983, "Aug 1983"},
		{"2020.958", 2020, "Dec 2020"},
		// 0.999*12 rounds to month index 12, which rolls into January of the
		// next year. The year field stays 2020.
		{"2020.999", 2020, "Jan 2021"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			year, date, err := parseDecimalYear(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantYear, year)
			assert.Equal(t, tc.wantLabel, date.Format(monthLabelLayout))
		})
	}
}

func TestParseDecimalYearMonthIndex(t *testing.T) {
	_, date, err := parseDecimalYear("2020.0")
	require.NoError(t, err)
	assert.Equal(t, time.January, date.Month())

	_, date, err = parseDecimalYear("2020.999")
	require.NoError(t, err)
	assert.Equal(t, time.January, date.Month())
	assert.Equal(t, 2021, date.Year())
}

func TestParseDecimalYearRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "2020.5x", "20.20.1", ".5"} {
		_, _, err := parseDecimalYear(in)
		assert.Error(t, err, in)
	}
}

func TestNormalizeGas(t *testing.T) {
	records := []GasRecord{
		{Date: "1983.542", Average: "1625.9", Trend: "1635.1", AverageUnc: "2.1", TrendUnc: "1.4"},
		{Date: "2024.042", Average: "1930.2", Trend: "1925.3"},
	}

	entries, err := NormalizeGas(DatasetMethane, records)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Aug 1983", entries[0].Label)
	assert.Equal(t, 1983, entries[0].Year)
	assert.Equal(t, map[string]float64{
		"average": 1625.9, "trend": 1635.1, "averageUnc": 2.1, "trendUnc": 1.4,
	}, entries[0].Values)

	// 0.042*12 = 0.504 rounds up to February.
	assert.Equal(t, "Feb 2024", entries[1].Label)
	assert.Equal(t, map[string]float64{"average": 1930.2, "trend": 1925.3}, entries[1].Values)
}

func TestNormalizeGasReportsDataset(t *testing.T) {
	_, err := NormalizeGas(DatasetNitrousOxide, []GasRecord{{Date: "2001.1", Average: "", Trend: "316"}})

	var me *MalformedResponseError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, DatasetNitrousOxide, me.Dataset)
	assert.Equal(t, "average", me.Field)
}

func TestNormalizeTemperature(t *testing.T) {
	entries, err := NormalizeTemperature([]TemperatureRecord{
		{Time: "1880.04", Station: "-0.3", Land: "-0.19"},
		{Time: "2023.96", Land: "1.37"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Jan 1880", entries[0].Label)
	assert.Equal(t, map[string]float64{"land": -0.19, "station": -0.3}, entries[0].Values)

	// 0.96*12 = 11.52 rounds to 12.
	assert.Equal(t, "Jan 2024", entries[1].Label)
	assert.Equal(t, 2023, entries[1].Year)
}

func TestNormalizeOcean(t *testing.T) {
	payload := OceanPayload{
		"1991": {Anomaly: "0.25"},
		"1990": {Anomaly: "0.21"},
		"2005": {Anomaly: "-0.02"},
	}

	entries, err := NormalizeOcean(payload)
	require.NoError(t, err)
	require.Len(t, entries, len(payload))

	labels := []string{entries[0].Label, entries[1].Label, entries[2].Label}
	assert.Equal(t, []string{"1990", "1991", "2005"}, labels)
	assert.Equal(t, 1990, entries[0].Year)
	assert.Equal(t, map[string]float64{"anomaly": -0.02}, entries[2].Values)

	_, err = NormalizeOcean(OceanPayload{"year": {Anomaly: "1"}})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNormalizePolarIce(t *testing.T) {
	payload := ArcticPayload{
		ArcticData: &ArcticData{
			Data: map[string]ArcticValue{
				"202303": {Value: "14.4", Anom: "-0.6", MonthlyMean: "15.0"},
				"197901": {Value: "15.4", Anom: "0.3", MonthlyMean: "15.1"},
			},
		},
	}

	entries, err := NormalizePolarIce(payload)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Jan 1979", entries[0].Label)
	assert.Equal(t, 2023, entries[1].Year)
	assert.Equal(t, "Mar 2023", entries[1].Label)
	assert.Equal(t, map[string]float64{"value": 14.4, "anom": -0.6, "monthlyMean": 15.0}, entries[1].Values)
}

func TestParseYearMonthKey(t *testing.T) {
	date, err := parseYearMonthKey("202303")
	require.NoError(t, err)
	assert.Equal(t, 2023, date.Year())
	assert.Equal(t, time.March, date.Month())
	assert.Equal(t, 2, int(date.Month())-1, "0-based month index")

	for _, bad := range []string{"2023", "202313", "202300", "abcd01", "2023xx"} {
		_, err := parseYearMonthKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNormalizePolarIceProviderError(t *testing.T) {
	msg := "service unavailable"
	_, err := NormalizePolarIce(ArcticPayload{Error: &msg})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = NormalizePolarIce(ArcticPayload{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNormalizersOnEmptyInput(t *testing.T) {
	co2, err := NormalizeCO2(nil)
	require.NoError(t, err)
	assert.Empty(t, co2)
	assert.NotNil(t, co2)

	ocean, err := NormalizeOcean(OceanPayload{})
	require.NoError(t, err)
	assert.Empty(t, ocean)
}

func TestNumericStringAcceptsStringsAndNumbers(t *testing.T) {
	var rec struct {
		A NumericString `json:"a"`
		B NumericString `json:"b"`
		C NumericString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"414.50","b":15.4,"c":null}`), &rec))
	assert.Equal(t, NumericString("414.50"), rec.A)
	assert.Equal(t, NumericString("15.4"), rec.B)
	assert.Equal(t, NumericString(""), rec.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &rec))
}
