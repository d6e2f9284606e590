package climate

import (
	"encoding/json"
	"fmt"
)

// Entry is one point of a normalized time series: a display label, the
// calendar year used for start-year filtering, and the dataset's numeric
// fields.
//
// Its JSON form is flat, e.g. {"label":"Mar 3, 2023","year":2023,"trend":419.1}.
type Entry struct {
	Label  string
	Year   int
	Values map[string]float64
}

// Value returns the named field.
func (e Entry) Value(field string) (float64, bool) {
	v, ok := e.Values[field]
	return v, ok
}

func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Values)+2)
	for k, v := range e.Values {
		m[k] = v
	}
	m["label"] = e.Label
	m["year"] = e.Year
	return json.Marshal(m)
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	var out Entry
	if raw, ok := m["label"]; ok {
		if err := json.Unmarshal(raw, &out.Label); err != nil {
			return fmt.Errorf("entry label: %w", err)
		}
		delete(m, "label")
	}
	if raw, ok := m["year"]; ok {
		if err := json.Unmarshal(raw, &out.Year); err != nil {
			return fmt.Errorf("entry year: %w", err)
		}
		delete(m, "year")
	}

	out.Values = make(map[string]float64, len(m))
	for k, raw := range m {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("entry field %q: %w", k, err)
		}
		out.Values[k] = v
	}

	*e = out
	return nil
}

// FromYear returns the entries whose Year is at least start, in order.
func FromYear(entries []Entry, start int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Year >= start {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the final n entries. n <= 0 returns all of them.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
