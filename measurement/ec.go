package measurement

import (
	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/series"
	"gopkg.in/guregu/null.v3"
)

const DefaultRawPotentialName = "raw potential / [V]"

// ECConfig lists the fields an electrochemical measurement understands.
type ECConfig struct {
	ECTechnique string

	// REvsRHE is the reference electrode potential in V vs RHE. When set,
	// GrabPotential reports potentials vs RHE.
	REvsRHE null.Float

	// AEl is the electrode area in cm^2. When set, GrabCurrent reports a
	// current density in mA/cm^2.
	AEl null.Float

	RawPotentialName string
	RawCurrentName   string
}

func (c ECConfig) withDefaults() ECConfig {
	if c.RawPotentialName == "" {
		c.RawPotentialName = DefaultRawPotentialName
	}
	if c.RawCurrentName == "" {
		c.RawCurrentName = calibration.RawCurrentName
	}
	return c
}

// EC is an electrochemical measurement: potential and current over time.
type EC struct {
	*Measurement
	ECConfig
}

func NewEC(common Common, cfg ECConfig) *EC {
	return &EC{
		Measurement: newMeasurement(common),
		ECConfig:    cfg.withDefaults(),
	}
}

// GrabPotential returns the working electrode potential, in V vs RHE if the
// reference is calibrated and in raw V otherwise.
func (ec *EC) GrabPotential(tspan series.Span) (t, U []float64, err error) {
	t, raw, err := ec.Grab(ec.RawPotentialName, tspan)
	if err != nil {
		return nil, nil, err
	}

	U = make([]float64, len(raw))
	for i, v := range raw {
		U[i] = v + ec.REvsRHE.ValueOrZero()
	}

	return t, U, nil
}

// GrabCurrent returns the current in mA, or the current density in mA/cm^2
// if the electrode area is known.
func (ec *EC) GrabCurrent(tspan series.Span) (t, J []float64, err error) {
	t, raw, err := ec.Grab(ec.RawCurrentName, tspan)
	if err != nil {
		return nil, nil, err
	}

	area := 1.0
	if ec.AEl.Valid && ec.AEl.Float64 != 0 {
		area = ec.AEl.Float64
	}

	J = make([]float64, len(raw))
	for i, v := range raw {
		J[i] = v / area
	}

	return t, J, nil
}

// Charge returns the charge passed during tspan, in C.
func (ec *EC) Charge(tspan series.Span) (float64, error) {
	Q, err := ec.Integrate(ec.RawCurrentName, tspan)
	return Q * 1e-3, err
}
