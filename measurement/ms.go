package measurement

import (
	"regexp"

	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
)

var massChannel = regexp.MustCompile(`^M[0-9]+`)

// MSConfig lists the fields a mass spectrometer measurement understands.
type MSConfig struct {
	// MassAliases maps a mass, as used in queries, to the name of the series
	// that holds it.
	MassAliases map[string]string

	// SignalBgs holds a fixed background per mass, subtracted whenever no
	// background span is given.
	SignalBgs map[string]float64

	Calibration *calibration.Calibration
}

// MS is a mass spectrometer measurement: ion currents at several masses.
type MS struct {
	*Measurement
	MSConfig
}

func NewMS(common Common, cfg MSConfig) *MS {
	return &MS{
		Measurement: newMeasurement(common),
		MSConfig:    cfg,
	}
}

// MassList lists the masses available, aliases first.
func (ms *MS) MassList() []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for alias := range ms.MassAliases {
		seen[alias] = struct{}{}
		seen[ms.MassAliases[alias]] = struct{}{}
	}
	for _, name := range sortedKeys(ms.MassAliases) {
		out = append(out, name)
	}

	for _, name := range ms.SeriesNames() {
		if _, exists := seen[name]; exists {
			continue
		}
		if massChannel.MatchString(name) {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}

func (ms *MS) seriesName(mass string) string {
	if name, exists := ms.MassAliases[mass]; exists {
		return name
	}
	return mass
}

// GrabSignal returns the background-corrected signal at mass within tspan.
// If tspanBg is not zero, the mean signal over tspanBg is the background;
// otherwise the configured SignalBgs entry, if any, is.
func (ms *MS) GrabSignal(mass string, tspan, tspanBg series.Span) (t, y []float64, err error) {
	t, y, err = ms.grabCorrected(mass, tspanBg)
	if err != nil {
		return nil, nil, err
	}

	t, y = within(t, y, tspan)
	return t, y, nil
}

// IntegrateSignal integrates the background-corrected signal at mass over
// tspan.
func (ms *MS) IntegrateSignal(mass string, tspan, tspanBg series.Span) (float64, error) {
	t, y, err := ms.grabCorrected(mass, tspanBg)
	if err != nil {
		return 0, err
	}

	out, err := series.Integrate(t, y, tspan)
	if err != nil {
		return 0, errors.WithMessagef(err, "signal at %s", mass)
	}

	return out, nil
}

func (ms *MS) grabCorrected(mass string, tspanBg series.Span) (t, y []float64, err error) {
	t, raw, err := ms.GrabAll(ms.seriesName(mass))
	if err != nil {
		return nil, nil, err
	}

	bg, err := ms.background(mass, t, raw, tspanBg)
	if err != nil {
		return nil, nil, err
	}

	y = make([]float64, len(raw))
	for i, v := range raw {
		y[i] = v - bg
	}

	return t, y, nil
}

func (ms *MS) background(mass string, t, y []float64, tspanBg series.Span) (float64, error) {
	if tspanBg.IsZero() {
		return ms.SignalBgs[mass], nil
	}

	bg, err := series.MeasureBackground(t, y, tspanBg)
	if err != nil {
		return 0, errors.WithMessagef(err, "background at %s", mass)
	}

	return bg.Mean, nil
}

func (ms *MS) calibratedMass(mol string) (string, float64, error) {
	if ms.Calibration == nil {
		return "", 0, errors.Wrapf(ErrNoCalibration, "quantifying %s in %q", mol, ms.Name)
	}

	return ms.Calibration.MassAndSensitivityFor(mol)
}

// GrabFlux returns the flux of mol in mol/s, from the signal at its most
// sensitive calibrated mass.
func (ms *MS) GrabFlux(mol string, tspan, tspanBg series.Span) (t, nDot []float64, err error) {
	mass, F, err := ms.calibratedMass(mol)
	if err != nil {
		return nil, nil, err
	}

	t, y, err := ms.GrabSignal(mass, tspan, tspanBg)
	if err != nil {
		return nil, nil, err
	}

	nDot = make([]float64, len(y))
	for i, v := range y {
		nDot[i] = v / F
	}

	return t, nDot, nil
}

// IntegrateFlux returns the amount of mol, in mol, detected during tspan.
func (ms *MS) IntegrateFlux(mol string, tspan, tspanBg series.Span) (float64, error) {
	mass, F, err := ms.calibratedMass(mol)
	if err != nil {
		return 0, err
	}

	Y, err := ms.IntegrateSignal(mass, tspan, tspanBg)
	if err != nil {
		return 0, err
	}

	return Y / F, nil
}
