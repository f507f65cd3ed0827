package measurement

import (
	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/plot"
	"github.com/carbocation/ecms/series"
	log "github.com/sirupsen/logrus"
)

const DefaultTechnique = "EC-MS"

// Config is everything needed to build an ECMS: the shared structural data
// plus one section per view.
type Config struct {
	Common
	EC ECConfig
	MS MSConfig
}

// ECMS is a combined electrochemistry - mass spectrometry measurement. Its
// EC and MS views share the same series and time origin, and its methods
// dispatch to whichever view owns the query.
type ECMS struct {
	*Measurement

	EC *EC
	MS *MS
}

func NewECMS(cfg Config) *ECMS {
	if cfg.Technique == "" {
		cfg.Technique = DefaultTechnique
	}

	shared := newMeasurement(cfg.Common)

	return &ECMS{
		Measurement: shared,
		EC:          &EC{Measurement: shared, ECConfig: cfg.EC.withDefaults()},
		MS:          &MS{Measurement: shared, MSConfig: cfg.MS},
	}
}

// Merge combines an EC and an MS measurement that were recorded side by
// side. The result takes the earlier of the two time origins; each series
// keeps its own timestamp, so nothing is shifted in the data itself.
func Merge(ec *EC, ms *MS) *ECMS {
	tstamp := ec.Tstamp
	if ms.Tstamp < tstamp {
		tstamp = ms.Tstamp
	}

	seriesList := ec.SeriesList()
	names := make(map[string]struct{}, len(seriesList))
	for _, vs := range seriesList {
		names[vs.Name] = struct{}{}
	}
	for _, vs := range ms.SeriesList() {
		if _, exists := names[vs.Name]; exists {
			log.WithFields(log.Fields{
				"series": vs.Name,
				"ec":     ec.Name,
				"ms":     ms.Name,
			}).Warnln("Series name occurs in both measurements; lookups by name will find the EC one")
		}
		seriesList = append(seriesList, vs)
	}

	return NewECMS(Config{
		Common: Common{
			Name:       ec.Name + " + " + ms.Name,
			Technique:  DefaultTechnique,
			Tstamp:     tstamp,
			SeriesList: seriesList,
			Components: []string{ec.Name, ms.Name},
		},
		EC: ec.ECConfig,
		MS: ms.MSConfig,
	})
}

func (m *ECMS) config() Config {
	return Config{
		Common: m.common(),
		EC:     m.EC.ECConfig,
		MS:     m.MS.MSConfig,
	}
}

// Integrate integrates any series by name. The conventional raw current name
// used by the calibration routines is mapped onto this measurement's own
// current series.
func (m *ECMS) Integrate(name string, tspan series.Span) (float64, error) {
	if name == calibration.RawCurrentName {
		name = m.EC.RawCurrentName
	}
	return m.Measurement.Integrate(name, tspan)
}

func (m *ECMS) GrabPotential(tspan series.Span) (t, U []float64, err error) {
	return m.EC.GrabPotential(tspan)
}

func (m *ECMS) GrabCurrent(tspan series.Span) (t, J []float64, err error) {
	return m.EC.GrabCurrent(tspan)
}

func (m *ECMS) MassList() []string {
	return m.MS.MassList()
}

func (m *ECMS) GrabSignal(mass string, tspan, tspanBg series.Span) (t, y []float64, err error) {
	return m.MS.GrabSignal(mass, tspan, tspanBg)
}

func (m *ECMS) IntegrateSignal(mass string, tspan, tspanBg series.Span) (float64, error) {
	return m.MS.IntegrateSignal(mass, tspan, tspanBg)
}

func (m *ECMS) GrabFlux(mol string, tspan, tspanBg series.Span) (t, nDot []float64, err error) {
	return m.MS.GrabFlux(mol, tspan, tspanBg)
}

func (m *ECMS) IntegrateFlux(mol string, tspan, tspanBg series.Span) (float64, error) {
	return m.MS.IntegrateFlux(mol, tspan, tspanBg)
}

func (m *ECMS) Calibration() *calibration.Calibration {
	return m.MS.Calibration
}

// AttachCalibration sets the calibration used by the flux methods.
func (m *ECMS) AttachCalibration(cal *calibration.Calibration) {
	m.MS.Calibration = cal
}

// ECMSCalibration calibrates mol at mass from one period of steady
// electrolysis. See calibration.SinglePoint.
func (m *ECMS) ECMSCalibration(mol, mass string, nEl float64, tspan, tspanBg series.Span) (calibration.Result, error) {
	return calibration.SinglePoint(m, mol, mass, nEl, tspan, tspanBg)
}

// ECMSCalibrationCurve fits mol's sensitivity at mass from several periods
// of steady electrolysis. See calibration.Curve.
func (m *ECMS) ECMSCalibrationCurve(mol, mass string, nEl float64, tspans []series.Span, tspanBg series.Span, ax plot.Axis) (calibration.CurveFit, error) {
	return calibration.Curve(m, mol, mass, nEl, tspans, tspanBg, ax)
}

// Plot draws the signals at masses against time. With no masses, every mass
// is drawn.
func (m *ECMS) Plot(ax plot.Axis, masses []string, tspan series.Span) error {
	if len(masses) == 0 {
		masses = m.MassList()
	}

	for _, mass := range masses {
		t, y, err := m.GrabSignal(mass, tspan, series.Span{})
		if err != nil {
			return err
		}
		ax.Line(mass, t, y, plot.ColorFor(mass), false)
	}

	return nil
}
