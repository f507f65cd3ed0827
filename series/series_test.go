package series

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestIntegrate(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}

	for _, v := range []struct {
		Name     string
		Y        []float64
		Span     Span
		Expected float64
	}{
		{"constant, full", []float64{2, 2, 2, 2, 2}, Span{}, 8},
		{"constant, inner", []float64{2, 2, 2, 2, 2}, Span{1, 3}, 4},
		{"constant, off-grid", []float64{2, 2, 2, 2, 2}, Span{0.5, 2.5}, 4},
		{"ramp, off-grid", []float64{0, 1, 2, 3, 4}, Span{0.5, 1.5}, 1},
		{"ramp, overhanging", []float64{0, 1, 2, 3, 4}, Span{-10, 2}, 2},
	} {
		got, err := Integrate(times, v.Y, v.Span)
		if err != nil {
			t.Fatalf("%s: %v", v.Name, err)
		}
		if math.Abs(got-v.Expected) > 1e-12 {
			t.Fatalf("%s: got %f, expected %f", v.Name, got, v.Expected)
		}
	}
}

func TestIntegrateEmptySpan(t *testing.T) {
	times := []float64{0, 1, 2}
	y := []float64{1, 1, 1}

	if _, err := Integrate(times, y, Span{5, 6}); !errors.Is(err, ErrEmptySpan) {
		t.Fatalf("expected ErrEmptySpan for a span outside the data, got %v", err)
	}

	if _, err := Integrate(times, y, Span{2, 1}); !errors.Is(err, ErrEmptySpan) {
		t.Fatalf("expected ErrEmptySpan for a reversed span, got %v", err)
	}
}

func TestCutInterpolatesEdges(t *testing.T) {
	tc, yc := Cut([]float64{0, 1, 2}, []float64{0, 10, 20}, Span{0.25, 1.5})

	expectedT := []float64{0.25, 1, 1.5}
	expectedY := []float64{2.5, 10, 15}
	if len(tc) != len(expectedT) {
		t.Fatalf("got %v, expected %v", tc, expectedT)
	}
	for i := range tc {
		if math.Abs(tc[i]-expectedT[i]) > 1e-12 || math.Abs(yc[i]-expectedY[i]) > 1e-12 {
			t.Fatalf("point %d: got (%f, %f), expected (%f, %f)", i, tc[i], yc[i], expectedT[i], expectedY[i])
		}
	}
}

func TestMeasureBackground(t *testing.T) {
	bg, err := MeasureBackground([]float64{0, 1, 2, 3, 4}, []float64{1, 3, 1, 3, 100}, Span{0, 3})
	if err != nil {
		t.Fatal(err)
	}

	if bg.N != 4 || math.Abs(bg.Mean-2) > 1e-12 {
		t.Fatalf("got %+v, expected 4 samples with mean 2", bg)
	}
	if bg.StdDev <= 0 {
		t.Fatalf("expected a positive spread, got %f", bg.StdDev)
	}

	if _, err := MeasureBackground([]float64{0, 1}, []float64{1, 1}, Span{5, 6}); !errors.Is(err, ErrEmptySpan) {
		t.Fatalf("expected ErrEmptySpan, got %v", err)
	}
}

func TestLowPassConstant(t *testing.T) {
	times := make([]float64, 100)
	y := make([]float64, 100)
	for i := range times {
		times[i] = float64(i) * 0.1
		y[i] = 3e-10
	}

	out, err := LowPass(times, y, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if math.Abs(v-3e-10) > 1e-15 {
			t.Fatalf("sample %d drifted to %g", i, v)
		}
	}

	if _, err := LowPass(times, y, 1000); err == nil {
		t.Fatal("expected an error for a cutoff above the Nyquist limit")
	}
}

func TestNewAndTimeFrom(t *testing.T) {
	if _, err := New("M32", "A", 0, []float64{0, 1}, []float64{1}); err == nil {
		t.Fatal("expected a length mismatch error")
	}

	if _, err := New("M32", "A", 0, []float64{1, 0}, []float64{1, 1}); err == nil {
		t.Fatal("expected an unsorted time error")
	}

	vs, err := New("M32", "A", 100, []float64{0, 1}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := vs.TimeFrom(90); got[0] != 10 || got[1] != 11 {
		t.Fatalf("got %v, expected [10 11]", got)
	}

	if u := UnitFromName("raw current / [mA]"); u != "mA" {
		t.Fatalf("got unit %q, expected mA", u)
	}
}
