package sentiment

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is a date-indexed table of named float columns. Dates are strictly
// increasing; a missing cell is NaN.
type Frame struct {
	Dates   []time.Time
	Names   []string
	Columns map[string][]float64
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Dates)
}

// Column returns the named column
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.Columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q not in frame", name)
	}
	return col, nil
}

func (f *Frame) columnOrNaN(name string) []float64 {
	if col, ok := f.Columns[name]; ok {
		return col
	}
	return nanSlice(f.Len())
}

// dateKey normalizes a timestamp to its calendar day in UTC
func dateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Merge performs a full outer join of the given series on date. The result
// holds every date seen in any series exactly once, sorted ascending, with
// NaN wherever a series has no observation. Within a series a repeated
// date keeps its last value. Merge never fills gaps; see ForwardFill.
func Merge(series ...Series) (*Frame, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("merge: no series given")
	}

	seen := make(map[time.Time]struct{})
	byName := make(map[string]map[time.Time]float64, len(series))
	names := make([]string, 0, len(series))

	for _, s := range series {
		if s.Name == "" {
			return nil, fmt.Errorf("merge: series without a name")
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("merge: duplicate series %q", s.Name)
		}
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("merge: series %q is empty", s.Name)
		}

		sorted := make([]Point, len(s.Points))
		copy(sorted, s.Points)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})

		values := make(map[time.Time]float64, len(sorted))
		for _, p := range sorted {
			key := dateKey(p.Date)
			values[key] = p.Value
			seen[key] = struct{}{}
		}
		byName[s.Name] = values
		names = append(names, s.Name)
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	frame := &Frame{
		Dates:   dates,
		Names:   names,
		Columns: make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		col := nanSlice(len(dates))
		values := byName[name]
		for i, d := range dates {
			if v, ok := values[d]; ok {
				col[i] = v
			}
		}
		frame.Columns[name] = col
	}

	return frame, nil
}

// ForwardFill replaces each NaN cell with the most recent defined value of
// the same column. Cells before a column's first defined value stay NaN.
// It must run after Merge has materialized the full date axis.
func ForwardFill(f *Frame) {
	for _, name := range f.Names {
		col := f.Columns[name]
		last := math.NaN()
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = last
				continue
			}
			last = v
		}
	}
}
