package series

import (
	"math"

	"github.com/carbocation/runningvariance"
	"github.com/jfcg/butter"
	"github.com/pkg/errors"
)

// Background summarizes a signal over a quiet reference period.
type Background struct {
	Mean   float64
	StdDev float64
	N      int
}

// MeasureBackground computes the mean and spread of the samples of y whose
// times fall within span.
func MeasureBackground(t, y []float64, span Span) (Background, error) {
	out := Background{}

	if err := span.Validate(); err != nil {
		return out, err
	}

	rs := runningvariance.NewRunningStat()
	for i, ti := range t {
		if !span.Contains(ti) {
			continue
		}
		rs.Push(y[i])
		out.N++
	}

	if out.N == 0 {
		return out, errors.Wrapf(ErrEmptySpan, "no background samples within %s", span)
	}

	out.Mean = rs.Mean()
	if out.N > 1 {
		out.StdDev = rs.StandardDeviation()
	}

	return out, nil
}

// LowPass runs a first-order Butterworth low-pass filter over y, which is
// assumed to be sampled roughly evenly along t. The filter state is primed
// with the first value so that the output does not ramp up from zero.
func LowPass(t, y []float64, cutoffHz float64) ([]float64, error) {
	if len(t) < 2 || len(t) != len(y) {
		return nil, errors.Errorf("need at least 2 equal-length samples to filter, got %d and %d", len(t), len(y))
	}

	duration := t[len(t)-1] - t[0]
	if duration <= 0 {
		return nil, errors.Errorf("time vector spans %f s", duration)
	}
	sampleHz := float64(len(t)-1) / duration

	wc := 2.0 * math.Pi * cutoffHz / sampleHz
	filt := butter.NewLowPass1(wc)
	if filt == nil {
		return nil, errors.Errorf("Invalid low-pass filter (attempted wc=%f, but expect .0001 < wc && wc < 3.1415)", wc)
	}

	// Settle the filter on the first value.
	for i := 0; i < 100000; i++ {
		if v := filt.Next(y[0]); math.Abs(v-y[0]) <= 1e-9*math.Abs(y[0]) {
			break
		}
	}

	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = filt.Next(v)
	}

	return out, nil
}
