package calibration

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// MassAndSensitivityFor picks the most sensitive mass channel for mol, which
// is the one to use for simple quantification. mol may also be a result
// name. If several results share the highest F, the first one wins.
func (c *Calibration) MassAndSensitivityFor(mol string) (string, float64, error) {
	found := false
	best := Result{}
	for _, r := range c.results {
		if !r.Matches(mol) {
			continue
		}
		if !found || r.F > best.F {
			best = r
			found = true
		}
	}

	if !found {
		return "", 0, errors.Wrapf(ErrCalibrationNotFound, "no result for %s in %q", mol, c.Name)
	}

	return best.Mass, best.F, nil
}

// SensitivityFor returns the mean F of all results for mol at mass.
func (c *Calibration) SensitivityFor(mol, mass string) (float64, error) {
	Fs := make(stats.Float64Data, 0)
	for _, r := range c.results {
		if r.Matches(mol) && r.Mass == mass {
			Fs = append(Fs, r.F)
		}
	}

	if len(Fs) == 0 {
		return 0, errors.Wrapf(ErrCalibrationNotFound, "no result for %s at %s in %q", mol, mass, c.Name)
	}

	return Fs.Mean()
}

// Rescaled returns a new Calibration in which every sensitivity factor is
// scaled by the ratio of target.F to the current sensitivity for target's
// (mol, mass). This is how a calibration is carried over to a day on which
// only one species was recalibrated.
func (c *Calibration) Rescaled(target Result) (*Calibration, error) {
	F0, err := c.SensitivityFor(target.Mol, target.Mass)
	if err != nil {
		return nil, err
	}

	if F0 == 0 || math.IsNaN(F0) {
		return nil, errors.Errorf("cannot rescale %q: current sensitivity for %s at %s is %g", c.Name, target.Mol, target.Mass, F0)
	}

	scale := target.F / F0

	meta := c.Metadata
	meta.Name += ScaledSuffix

	out := New(meta)
	out.results = make([]Result, 0, len(c.results))
	for _, r := range c.results {
		out.results = append(out.results, r.Scaled(scale))
	}

	return out, nil
}
