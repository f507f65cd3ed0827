// Package series holds the minimal time-series machinery the calibration
// code consumes: named value vectors on a time axis, time spans, integration
// and background statistics.
package series

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrEmptySpan = errors.New("no data in time span")

// ValueSeries is a named vector sampled at times T. T is in seconds relative
// to Tstamp, which is itself in unix seconds. ID is assigned by whatever
// backend persisted the series, and is zero until then.
type ValueSeries struct {
	ID     int
	Name   string
	Unit   string
	Tstamp float64
	T      []float64
	Data   []float64
}

func New(name, unit string, tstamp float64, t, data []float64) (*ValueSeries, error) {
	if len(t) != len(data) {
		return nil, errors.Errorf("series %q: %d timepoints but %d values", name, len(t), len(data))
	}

	if !sort.Float64sAreSorted(t) {
		return nil, errors.Errorf("series %q: time vector is not sorted", name)
	}

	return &ValueSeries{
		Name:   name,
		Unit:   unit,
		Tstamp: tstamp,
		T:      t,
		Data:   data,
	}, nil
}

func (v *ValueSeries) Len() int {
	return len(v.T)
}

// TimeFrom returns the time vector expressed relative to another origin.
func (v *ValueSeries) TimeFrom(tstamp float64) []float64 {
	out := make([]float64, len(v.T))
	offset := v.Tstamp - tstamp
	for i, t := range v.T {
		out[i] = t + offset
	}

	return out
}

var unitInName = regexp.MustCompile(`\[([^\]]*)\]\s*$`)

// UnitFromName extracts the unit from names of the form "raw current / [mA]".
func UnitFromName(name string) string {
	m := unitInName.FindStringSubmatch(strings.TrimSpace(name))
	if len(m) < 2 {
		return ""
	}

	return m[1]
}
