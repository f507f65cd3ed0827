// Package measurement represents electrochemical (EC), mass spectrometer (MS)
// and combined EC-MS measurements. The combined kinds are built by
// composition: an ECMS holds an EC view and an MS view over one shared set of
// series, and exposes both query surfaces.
package measurement

import (
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
)

// Common is the structural data shared by every kind of measurement.
type Common struct {
	Name      string
	Technique string

	// Tstamp is the time origin of the measurement, in unix seconds. Times
	// returned by Grab and friends are relative to it.
	Tstamp float64

	SeriesList []*series.ValueSeries

	// Components names the measurements this one was merged from, if any.
	Components []string
}

// Measurement holds the series of a measurement on a common time origin.
type Measurement struct {
	Name       string
	Technique  string
	Tstamp     float64
	Components []string

	series []*series.ValueSeries
}

func newMeasurement(c Common) *Measurement {
	m := &Measurement{
		Name:      c.Name,
		Technique: c.Technique,
		Tstamp:    c.Tstamp,
	}
	m.series = append(m.series, c.SeriesList...)
	m.Components = append(m.Components, c.Components...)

	return m
}

func (m *Measurement) common() Common {
	return Common{
		Name:       m.Name,
		Technique:  m.Technique,
		Tstamp:     m.Tstamp,
		SeriesList: m.SeriesList(),
		Components: append([]string(nil), m.Components...),
	}
}

// SeriesList returns the underlying series. The slice is a copy; the series
// are shared.
func (m *Measurement) SeriesList() []*series.ValueSeries {
	out := make([]*series.ValueSeries, len(m.series))
	copy(out, m.series)
	return out
}

func (m *Measurement) SeriesNames() []string {
	out := make([]string, 0, len(m.series))
	for _, vs := range m.series {
		out = append(out, vs.Name)
	}
	return out
}

// Series looks a series up by name. If two series share a name, the first
// one wins.
func (m *Measurement) Series(name string) (*series.ValueSeries, error) {
	for _, vs := range m.series {
		if vs.Name == name {
			return vs, nil
		}
	}

	return nil, errors.Wrapf(ErrSeriesNotFound, "%q in measurement %q", name, m.Name)
}

// GrabAll returns the complete series called name, with its times relative
// to the measurement's Tstamp.
func (m *Measurement) GrabAll(name string) (t, y []float64, err error) {
	vs, err := m.Series(name)
	if err != nil {
		return nil, nil, err
	}

	return vs.TimeFrom(m.Tstamp), vs.Data, nil
}

// Grab returns the samples of the series called name that fall within
// tspan. A zero tspan returns everything.
func (m *Measurement) Grab(name string, tspan series.Span) (t, y []float64, err error) {
	t, y, err = m.GrabAll(name)
	if err != nil {
		return nil, nil, err
	}

	t, y = within(t, y, tspan)
	return t, y, nil
}

// Integrate integrates the series called name over tspan.
func (m *Measurement) Integrate(name string, tspan series.Span) (float64, error) {
	t, y, err := m.GrabAll(name)
	if err != nil {
		return 0, err
	}

	out, err := series.Integrate(t, y, tspan)
	if err != nil {
		return 0, errors.WithMessagef(err, "%q in measurement %q", name, m.Name)
	}

	return out, nil
}

func within(t, y []float64, tspan series.Span) ([]float64, []float64) {
	if tspan.IsZero() {
		return t, y
	}

	tOut := make([]float64, 0, len(t))
	yOut := make([]float64, 0, len(t))
	for i, ti := range t {
		if tspan.Contains(ti) {
			tOut = append(tOut, ti)
			yOut = append(yOut, y[i])
		}
	}

	return tOut, yOut
}
