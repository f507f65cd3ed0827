package measurement

import (
	"github.com/carbocation/ecms/plot"
	"github.com/carbocation/ecms/series"
)

// CV is an ECMS recorded during cyclic voltammetry. It calibrates and
// quantifies like any ECMS, but is naturally viewed against potential.
type CV struct {
	*ECMS
}

func NewCV(cfg Config) *CV {
	return &CV{ECMS: NewECMS(cfg)}
}

// Plot draws the signals at masses against the working electrode potential,
// interpolated onto the times of each signal.
func (cv *CV) Plot(ax plot.Axis, masses []string, tspan series.Span) error {
	tEC, U, err := cv.GrabPotential(series.Span{})
	if err != nil {
		return err
	}

	if len(masses) == 0 {
		masses = cv.MassList()
	}

	for _, mass := range masses {
		t, y, err := cv.GrabSignal(mass, tspan, series.Span{})
		if err != nil {
			return err
		}

		x := make([]float64, len(t))
		for i, ti := range t {
			x[i] = series.Interp(tEC, U, ti)
		}
		ax.Scatter(mass, x, y, plot.ColorFor(mass))
	}

	return nil
}

// Cycles numbers the potential samples by sweep cycle. A new cycle starts
// each time the potential rises through startPotential.
func (cv *CV) Cycles(startPotential float64) (t []float64, cycle []int, err error) {
	t, U, err := cv.GrabPotential(series.Span{})
	if err != nil {
		return nil, nil, err
	}

	cycle = make([]int, len(U))
	n := 0
	for i := range U {
		if i > 0 && U[i-1] < startPotential && U[i] >= startPotential {
			n++
		}
		cycle[i] = n
	}

	return t, cycle, nil
}

// CycleSpan returns the time span of cycle number n.
func (cv *CV) CycleSpan(startPotential float64, n int) (series.Span, error) {
	t, cycle, err := cv.Cycles(startPotential)
	if err != nil {
		return series.Span{}, err
	}

	out := series.Span{}
	found := false
	for i, c := range cycle {
		if c != n {
			continue
		}
		if !found {
			out[0] = t[i]
			found = true
		}
		out[1] = t[i]
	}

	if !found {
		return out, series.ErrEmptySpan
	}

	return out, nil
}
