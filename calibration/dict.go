package calibration

import (
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

// Keys of the serialized form.
const (
	keyName      = "name"
	keyDate      = "date"
	keySetup     = "setup"
	keyTechnique = "technique"
	keyTstamp    = "tstamp"
	keyREvsRHE   = "RE_vs_RHE"
	keyAEl       = "A_el"
	keyL         = "L"
	keyResults   = "ms_cal_results"

	keyResultName    = "name"
	keyResultMol     = "mol"
	keyResultMass    = "mass"
	keyResultCalType = "cal_type"
	keyResultF       = "F"
)

// AsDict expands the calibration, including every result, into plain maps
// and slices. Unknown numeric metadata is stored as nil.
func (c *Calibration) AsDict() map[string]interface{} {
	results := make([]interface{}, 0, len(c.results))
	for _, r := range c.results {
		results = append(results, map[string]interface{}{
			keyResultName:    r.Name,
			keyResultMol:     r.Mol,
			keyResultMass:    r.Mass,
			keyResultCalType: r.CalType,
			keyResultF:       r.F,
		})
	}

	return map[string]interface{}{
		keyName:      c.Name,
		keyDate:      c.Date,
		keySetup:     c.Setup,
		keyTechnique: c.Technique,
		keyTstamp:    c.Tstamp.Ptr(),
		keyREvsRHE:   c.REvsRHE.Ptr(),
		keyAEl:       c.AEl.Ptr(),
		keyL:         c.L.Ptr(),
		keyResults:   results,
	}
}

// FromDict is the inverse of AsDict. It also accepts the generic values
// produced by decoding JSON. Anything structurally wrong yields
// ErrCorruptCalibration and no Calibration.
func FromDict(d map[string]interface{}) (*Calibration, error) {
	meta := Metadata{}
	var err error

	for key, dst := range map[string]*string{
		keyName:      &meta.Name,
		keyDate:      &meta.Date,
		keySetup:     &meta.Setup,
		keyTechnique: &meta.Technique,
	} {
		if *dst, err = optionalString(d, key); err != nil {
			return nil, err
		}
	}

	for key, dst := range map[string]*null.Float{
		keyTstamp:  &meta.Tstamp,
		keyREvsRHE: &meta.REvsRHE,
		keyAEl:     &meta.AEl,
		keyL:       &meta.L,
	} {
		if *dst, err = optionalFloat(d, key); err != nil {
			return nil, err
		}
	}

	raw, exists := d[keyResults]
	if !exists || raw == nil {
		return nil, errors.Wrapf(ErrCorruptCalibration, "missing %q", keyResults)
	}

	var entries []map[string]interface{}
	switch v := raw.(type) {
	case []interface{}:
		for i, entry := range v {
			m, ok := entry.(map[string]interface{})
			if !ok {
				return nil, errors.Wrapf(ErrCorruptCalibration, "%s[%d] is a %T, not an object", keyResults, i, entry)
			}
			entries = append(entries, m)
		}
	case []map[string]interface{}:
		entries = v
	default:
		return nil, errors.Wrapf(ErrCorruptCalibration, "%q is a %T, not a list", keyResults, raw)
	}

	results := make([]Result, 0, len(entries))
	for i, entry := range entries {
		r, err := resultFromDict(entry)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s[%d]", keyResults, i)
		}
		results = append(results, r)
	}

	return &Calibration{Metadata: meta, results: results}, nil
}

func resultFromDict(d map[string]interface{}) (Result, error) {
	r := Result{}
	var err error

	for key, dst := range map[string]*string{
		keyResultName:    &r.Name,
		keyResultMol:     &r.Mol,
		keyResultMass:    &r.Mass,
		keyResultCalType: &r.CalType,
	} {
		if *dst, err = optionalString(d, key); err != nil {
			return r, err
		}
	}

	if r.Mol == "" || r.Mass == "" {
		return r, errors.Wrapf(ErrCorruptCalibration, "result %q has no mol or no mass", r.Name)
	}

	F, err := optionalFloat(d, keyResultF)
	if err != nil {
		return r, err
	}
	if !F.Valid {
		return r, errors.Wrapf(ErrCorruptCalibration, "result %q has no sensitivity factor", r.Name)
	}
	r.F = F.Float64

	return r, nil
}

func optionalString(d map[string]interface{}, key string) (string, error) {
	switch v := d[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Wrapf(ErrCorruptCalibration, "%q is a %T, not a string", key, v)
	}
}

func optionalFloat(d map[string]interface{}, key string) (null.Float, error) {
	switch v := d[key].(type) {
	case nil:
		return null.Float{}, nil
	case float64:
		return null.FloatFrom(v), nil
	case *float64:
		return null.FloatFromPtr(v), nil
	case int:
		return null.FloatFrom(float64(v)), nil
	case null.Float:
		return v, nil
	default:
		return null.Float{}, errors.Wrapf(ErrCorruptCalibration, "%q is a %T, not a number", key, v)
	}
}
