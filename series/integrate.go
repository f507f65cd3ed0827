package series

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate"
)

// Interp linearly interpolates y(t) at x. Outside of t, the nearest edge
// value is returned.
func Interp(t, y []float64, x float64) float64 {
	n := len(t)
	if n == 0 {
		return 0
	}
	if x <= t[0] {
		return y[0]
	}
	if x >= t[n-1] {
		return y[n-1]
	}

	i := sort.SearchFloat64s(t, x)
	if t[i] == x {
		return y[i]
	}

	t0, t1 := t[i-1], t[i]
	return y[i-1] + (y[i]-y[i-1])*(x-t0)/(t1-t0)
}

// Cut returns the part of (t, y) that falls within span. The span edges that
// lie inside the data range are added as interpolated points, so that an
// integral over the result covers the full span.
func Cut(t, y []float64, span Span) ([]float64, []float64) {
	if span.IsZero() || len(t) == 0 {
		return t, y
	}

	tOut := make([]float64, 0, len(t)+2)
	yOut := make([]float64, 0, len(t)+2)

	if span[0] > t[0] && span[0] < t[len(t)-1] {
		tOut = append(tOut, span[0])
		yOut = append(yOut, Interp(t, y, span[0]))
	}

	for i, ti := range t {
		if !span.Contains(ti) {
			continue
		}
		if len(tOut) > 0 && tOut[len(tOut)-1] == ti {
			continue
		}
		tOut = append(tOut, ti)
		yOut = append(yOut, y[i])
	}

	if span[1] > t[0] && span[1] < t[len(t)-1] && (len(tOut) == 0 || tOut[len(tOut)-1] < span[1]) {
		tOut = append(tOut, span[1])
		yOut = append(yOut, Interp(t, y, span[1]))
	}

	return tOut, yOut
}

// Integrate returns the trapezoidal integral of y over t within span. A zero
// span integrates over all of the data.
func Integrate(t, y []float64, span Span) (float64, error) {
	if !span.IsZero() {
		if err := span.Validate(); err != nil {
			return 0, err
		}
	}

	tc, yc := Cut(t, y, span)
	if len(tc) < 2 {
		return 0, errors.Wrapf(ErrEmptySpan, "%d points within %s", len(tc), span)
	}

	return integrate.Trapezoidal(tc, yc), nil
}

// Integral is a convenience wrapper that integrates a series on its own time
// axis.
func (v *ValueSeries) Integral(span Span) (float64, error) {
	return Integrate(v.T, v.Data, span)
}
