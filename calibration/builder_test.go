package calibration

import (
	"math"
	"testing"

	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// fakeSource serves canned integrals per time span. Charges are in mC, as
// the raw current is.
type fakeSource struct {
	signal map[series.Span]float64
	charge map[series.Span]float64

	lastBackground series.Span
}

func (f *fakeSource) IntegrateSignal(mass string, tspan, tspanBg series.Span) (float64, error) {
	f.lastBackground = tspanBg
	v, exists := f.signal[tspan]
	if !exists {
		return 0, series.ErrEmptySpan
	}
	return v, nil
}

func (f *fakeSource) Integrate(name string, tspan series.Span) (float64, error) {
	if name != RawCurrentName {
		return 0, errors.Errorf("unexpected series %s", name)
	}
	v, exists := f.charge[tspan]
	if !exists {
		return 0, series.ErrEmptySpan
	}
	return v, nil
}

func TestSinglePoint(t *testing.T) {
	span := series.Span{100, 200}
	bg := series.Span{0, 50}
	src := &fakeSource{
		signal: map[series.Span]float64{span: 1e-9},
		charge: map[series.Span]float64{span: 2},
	}

	r, err := SinglePoint(src, "H2", "M2", 2, span, bg)
	if err != nil {
		t.Fatal(err)
	}

	n := 2e-3 / (2 * FaradayConstant)
	expected := 1e-9 / n
	if math.Abs(r.F-expected) > 1e-12*expected {
		t.Fatalf("got F=%g, expected %g", r.F, expected)
	}
	if math.Abs(r.F-0.0965) > 1e-4 {
		t.Fatalf("got F=%g, expected about 0.0965", r.F)
	}
	if r.Name != "H2_M2" || r.Mol != "H2" || r.Mass != "M2" || r.CalType != SinglePointType {
		t.Fatalf("unexpected record %v", r)
	}
	if src.lastBackground != bg {
		t.Fatal("background span was not passed on")
	}

	// Wrong sign: not corrected
	r, err = SinglePoint(src, "H2", "M2", -2, span, bg)
	if err != nil {
		t.Fatal(err)
	}
	if r.F >= 0 {
		t.Fatalf("expected a negative F for a mismatched sign, got %g", r.F)
	}

	if _, err := SinglePoint(src, "H2", "M2", 0, span, bg); err == nil {
		t.Fatal("expected an error for zero electrons")
	}

	if _, err := SinglePoint(src, "H2", "M2", 2, series.Span{1, 2}, bg); !errors.Is(err, series.ErrEmptySpan) {
		t.Fatalf("expected the integration error to come through, got %v", err)
	}
}

type spyAxis struct {
	scatters int
	lines    int
	dashed   bool
	lineY    []float64
}

func (s *spyAxis) Scatter(name string, x, y []float64, color drawing.Color) {
	s.scatters++
}

func (s *spyAxis) Line(name string, x, y []float64, color drawing.Color, dashed bool) {
	s.lines++
	s.dashed = dashed
	s.lineY = y
}

func TestCurve(t *testing.T) {
	spans := []series.Span{{10, 20}, {30, 40}, {50, 60}}
	ns := []float64{1e-9, 2e-9, 3e-9}
	Ys := []float64{1e-7, 2e-7, 3e-7}

	src := &fakeSource{
		signal: make(map[series.Span]float64),
		charge: make(map[series.Span]float64),
	}
	for i, span := range spans {
		src.signal[span] = Ys[i]
		src.charge[span] = ns[i] * FaradayConstant * 1e3
	}

	ax := &spyAxis{}
	fit, err := Curve(src, "O2", "M32", 1, spans, series.Span{}, ax)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(fit.F-100) > 1e-6 {
		t.Fatalf("got slope %g, expected 100", fit.F)
	}
	if math.Abs(fit.Intercept) > 1e-15 {
		t.Fatalf("got intercept %g, expected 0", fit.Intercept)
	}
	if fit.CalType != CurveFitType || fit.Name != "O2_M32" {
		t.Fatalf("unexpected record %v", fit.Result)
	}
	for i := range ns {
		if math.Abs(fit.N[i]-ns[i]) > 1e-20 || fit.Y[i] != Ys[i] {
			t.Fatalf("point %d: got (%g, %g)", i, fit.N[i], fit.Y[i])
		}
	}

	if ax.scatters != 1 || ax.lines != 1 || !ax.dashed {
		t.Fatalf("expected one scatter and one dashed line, got %+v", ax)
	}
	if math.Abs(ax.lineY[1]-300) > 1e-6 {
		t.Fatalf("fit line should end at 300 nC, got %g", ax.lineY[1])
	}

	// Plotting is optional
	if _, err := Curve(src, "O2", "M32", 1, spans, series.Span{}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCurveInsufficientPoints(t *testing.T) {
	src := &fakeSource{
		signal: map[series.Span]float64{{0, 1}: 1},
		charge: map[series.Span]float64{{0, 1}: 1},
	}

	for _, spans := range [][]series.Span{nil, {{0, 1}}, {{0, 1}, {0, 1}}} {
		if _, err := Curve(src, "O2", "M32", 4, spans, series.Span{}, nil); !errors.Is(err, ErrInsufficientPoints) {
			t.Fatalf("%d spans: expected ErrInsufficientPoints, got %v", len(spans), err)
		}
	}
}
