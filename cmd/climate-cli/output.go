package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/i474232898/climate-dashboard/internal/app"
	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/weather"
)

func printCatalog(w io.Writer, catalog []climate.Info) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dataset", "Title", "Unit", "Series", "From"})

	var data [][]string
	for _, info := range catalog {
		data = append(data, []string{
			string(info.Dataset),
			info.Title,
			info.Unit,
			strings.Join(info.Series, ", "),
			strconv.Itoa(info.DefaultStartYear),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printSeries prints one row per entry: the label, then the dataset's chart
// series, then any other fields in name order.
func printSeries(w io.Writer, info climate.Info, entries []climate.Entry) error {
	fields := seriesFields(info, entries)

	table := tablewriter.NewWriter(w)
	table.Header(append([]string{"Label", "Year"}, fields...))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, e := range entries {
		row := []string{e.Label, strconv.Itoa(e.Year)}
		for _, f := range fields {
			if v, ok := e.Value(f); ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "-")
			}
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %d entries (%s)\n", info.Title, len(entries), info.Unit)
	return err
}

func seriesFields(info climate.Info, entries []climate.Entry) []string {
	seen := make(map[string]bool)
	fields := make([]string, 0, len(info.Series))
	for _, f := range info.Series {
		seen[f] = true
		fields = append(fields, f)
	}

	var extra []string
	for _, e := range entries {
		for f := range e.Values {
			if !seen[f] {
				seen[f] = true
				extra = append(extra, f)
			}
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}

func printReport(w io.Writer, r weather.Report) error {
	if _, err := fmt.Fprintf(w, "%s: %.1f°C, %s (%s)\n\n", r.City, r.Current.Temp, r.Current.Description, r.Current.Condition); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Min °C", "Max °C", "Conditions"})

	var data [][]string
	for _, d := range r.Forecast {
		data = append(data, []string{
			d.Date,
			strconv.FormatFloat(d.Min, 'f', 1, 64),
			strconv.FormatFloat(d.Max, 'f', 1, 64),
			d.Description,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func printCacheEntries(w io.Writer, entries []app.CacheEntry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Age", "Readable"})

	var data [][]string
	for _, e := range entries {
		data = append(data, []string{e.Key, e.Age, strconv.FormatBool(e.Valid)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d cached records\n", len(entries))
	return err
}
