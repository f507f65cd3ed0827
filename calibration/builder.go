package calibration

import (
	"github.com/carbocation/ecms/plot"
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FaradayConstant is the charge of one mole of electrons, in C/mol.
const FaradayConstant = 96485.33212

// RawCurrentName is the electrochemical series integrated for charge. Its
// unit is mA.
const RawCurrentName = "raw current / [mA]"

// Source is what a calibration is computed from: a measurement that can
// integrate (background-corrected) mass channels and electrochemical series
// over a time span.
type Source interface {
	IntegrateSignal(mass string, tspan, tspanBg series.Span) (float64, error)
	Integrate(name string, tspan series.Span) (float64, error)
}

// SinglePoint derives the sensitivity factor of mol at mass from one period
// of steady electrolysis. nEl is the number of electrons passed per molecule
// produced, with sign: +4 for O2 by OER, -2 for H2 by HER. A sign that does
// not match the current gives a negative F, which is left to the caller to
// notice. A zero tspanBg means no background correction beyond the
// measurement's own.
func SinglePoint(src Source, mol, mass string, nEl float64, tspan, tspanBg series.Span) (Result, error) {
	Y, n, err := amountProduced(src, mass, nEl, tspan, tspanBg)
	if err != nil {
		return Result{}, err
	}

	return NewResult(mol, mass, SinglePointType, Y/n), nil
}

// CurveFit is the outcome of Curve. Only Result goes into a Calibration; the
// rest describes the fit.
type CurveFit struct {
	Result

	Intercept float64

	// N is the amount produced in each span, in mol, and Y the matching
	// integrated signal.
	N []float64
	Y []float64
}

// Curve fits the sensitivity factor of mol at mass from several periods of
// steady electrolysis at different rates: F is the slope of integrated signal
// against amount produced. If ax is not nil, the points (in nmol and nC) and
// the dashed fit line are drawn on it in the mass channel's color.
func Curve(src Source, mol, mass string, nEl float64, tspans []series.Span, tspanBg series.Span, ax plot.Axis) (CurveFit, error) {
	out := CurveFit{}

	if len(tspans) < 2 {
		return out, errors.Wrapf(ErrInsufficientPoints, "%s at %s: need at least 2 time spans, got %d", mol, mass, len(tspans))
	}

	out.N = make([]float64, 0, len(tspans))
	out.Y = make([]float64, 0, len(tspans))
	for _, tspan := range tspans {
		Y, n, err := amountProduced(src, mass, nEl, tspan, tspanBg)
		if err != nil {
			return out, err
		}
		out.N = append(out.N, n)
		out.Y = append(out.Y, Y)
	}

	// Repeating a span adds no information to the fit
	if stat.Variance(out.N, nil) == 0 {
		return out, errors.Wrapf(ErrInsufficientPoints, "%s at %s: need at least 2 distinct amounts produced, got %v", mol, mass, out.N)
	}

	// Y = alpha + beta*n
	alpha, beta := stat.LinearRegression(out.N, out.Y, nil, false)
	out.Intercept = alpha
	out.Result = NewResult(mol, mass, CurveFitType, beta)

	if ax != nil {
		drawCurve(ax, out)
	}

	return out, nil
}

func drawCurve(ax plot.Axis, fit CurveFit) {
	color := plot.ColorFor(fit.Mass)

	nNano := append([]float64(nil), fit.N...)
	floats.Scale(1e9, nNano)
	yNano := append([]float64(nil), fit.Y...)
	floats.Scale(1e9, yNano)
	ax.Scatter(fit.Name, nNano, yNano, color)

	nFit := []float64{0, floats.Max(fit.N)}
	yFit := []float64{fit.Intercept, nFit[1]*fit.F + fit.Intercept}
	floats.Scale(1e9, nFit)
	floats.Scale(1e9, yFit)
	ax.Line(fit.Name+" fit", nFit, yFit, color, true)
}

// amountProduced integrates the signal at mass and the charge passed over
// tspan, and converts the charge to mol of product.
func amountProduced(src Source, mass string, nEl float64, tspan, tspanBg series.Span) (Y, n float64, err error) {
	if nEl == 0 {
		return 0, 0, errors.New("number of electrons per molecule cannot be zero")
	}

	Y, err = src.IntegrateSignal(mass, tspan, tspanBg)
	if err != nil {
		return 0, 0, errors.WithMessagef(err, "integrating %s over %s", mass, tspan)
	}

	Q, err := src.Integrate(RawCurrentName, tspan)
	if err != nil {
		return 0, 0, errors.WithMessagef(err, "integrating current over %s", tspan)
	}
	Q *= 1e-3 // mC -> C

	n = Q / (nEl * FaradayConstant)

	return Y, n, nil
}
