package measurement

import (
	"sort"

	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"
)

// Dict is the serialized form of a measurement: plain maps, slices, strings
// and numbers, so that it survives a trip through JSON.
type Dict map[string]interface{}

// Keys shared by every measurement.
const (
	KeyName          = "name"
	KeyTechnique     = "technique"
	KeyTstamp        = "tstamp"
	KeySeriesIDs     = "s_ids"
	KeySeriesList    = "series_list"
	KeyComponents    = "component_measurements"
	KeyECTechnique   = "ec_technique"
	KeyREvsRHE       = "RE_vs_RHE"
	KeyAEl           = "A_el"
	KeyRawPotential  = "raw_potential_name"
	KeyRawCurrent    = "raw_current_name"
	KeyMassAliases   = "mass_aliases"
	KeySignalBgs     = "signal_bgs"
	KeyMSCalibration = "ms_calibration"
)

var (
	sharedKeys = map[string]bool{
		KeyName:       true,
		KeyTechnique:  true,
		KeyTstamp:     true,
		KeySeriesIDs:  true,
		KeySeriesList: true,
		KeyComponents: true,
	}

	ecKeys = map[string]bool{
		KeyECTechnique:  true,
		KeyREvsRHE:      true,
		KeyAEl:          true,
		KeyRawPotential: true,
		KeyRawCurrent:   true,
	}

	msKeys = map[string]bool{
		KeyMassAliases:   true,
		KeySignalBgs:     true,
		KeyMSCalibration: true,
	}
)

type dictOptions struct {
	strict   bool
	resolver SeriesResolver
}

type Option func(*dictOptions)

// Strict makes FromDict fail on keys that neither the EC nor the MS view
// understands, instead of logging and dropping them.
func Strict() Option {
	return func(o *dictOptions) {
		o.strict = true
	}
}

// WithResolver sets where the series named by "s_ids" are looked up.
func WithResolver(r SeriesResolver) Option {
	return func(o *dictOptions) {
		o.resolver = r
	}
}

// AsDict serializes the measurement. Series are stored by ID; an attached
// calibration is embedded in full, since it has no ID of its own.
func (m *ECMS) AsDict() Dict {
	ids := make([]int, 0, len(m.series))
	for _, vs := range m.series {
		ids = append(ids, vs.ID)
	}

	d := Dict{
		KeyName:         m.Name,
		KeyTechnique:    m.Technique,
		KeyTstamp:       m.Tstamp,
		KeySeriesIDs:    ids,
		KeyComponents:   append([]string(nil), m.Components...),
		KeyECTechnique:  m.EC.ECTechnique,
		KeyREvsRHE:      m.EC.REvsRHE.Ptr(),
		KeyAEl:          m.EC.AEl.Ptr(),
		KeyRawPotential: m.EC.RawPotentialName,
		KeyRawCurrent:   m.EC.RawCurrentName,
		KeyMassAliases:  copyStrings(m.MS.MassAliases),
		KeySignalBgs:    copyFloats(m.MS.SignalBgs),
	}

	if m.MS.Calibration != nil {
		d[KeyMSCalibration] = m.MS.Calibration.AsDict()
	}

	return d
}

// FromDict builds an ECMS from its serialized form. Each key is routed to
// the view that declares it. Series come from "series_list" if present, and
// are otherwise resolved from "s_ids".
func FromDict(d Dict, opts ...Option) (*ECMS, error) {
	cfg, err := configFromDict(d, opts...)
	if err != nil {
		return nil, err
	}

	return NewECMS(cfg), nil
}

// CVFromDict is FromDict for cyclic voltammograms.
func CVFromDict(d Dict, opts ...Option) (*CV, error) {
	cfg, err := configFromDict(d, opts...)
	if err != nil {
		return nil, err
	}

	return NewCV(cfg), nil
}

// AsCV rebuilds the measurement as a CV over the same live series.
func (m *ECMS) AsCV() (*CV, error) {
	d := m.AsDict()

	// The series are handed over directly, so the IDs are not needed and
	// may not even be resolvable.
	delete(d, KeySeriesIDs)
	d[KeySeriesList] = m.SeriesList()

	return CVFromDict(d)
}

func configFromDict(d Dict, opts ...Option) (Config, error) {
	o := dictOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Config{}
	ecFields := make(Dict)
	msFields := make(Dict)
	for _, key := range sortedKeys(d) {
		switch {
		case sharedKeys[key]:
		case ecKeys[key]:
			ecFields[key] = d[key]
		case msKeys[key]:
			msFields[key] = d[key]
		case o.strict:
			return cfg, errors.Wrapf(ErrUnrecognizedAttribute, "%q", key)
		default:
			log.WithField("key", key).Warnln("Dropping attribute not recognized by EC or MS measurements")
		}
	}

	var err error
	if cfg.Common, err = commonFromDict(d, o.resolver); err != nil {
		return cfg, err
	}
	if cfg.EC, err = ecFromDict(ecFields); err != nil {
		return cfg, err
	}
	if cfg.MS, err = msFromDict(msFields); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func commonFromDict(d Dict, resolver SeriesResolver) (Common, error) {
	c := Common{}
	var err error

	if c.Name, err = stringField(d, KeyName); err != nil {
		return c, err
	}
	if c.Technique, err = stringField(d, KeyTechnique); err != nil {
		return c, err
	}
	tstamp, err := floatField(d, KeyTstamp)
	if err != nil {
		return c, err
	}
	c.Tstamp = tstamp.ValueOrZero()

	if c.Components, err = stringsField(d, KeyComponents); err != nil {
		return c, err
	}

	if raw, exists := d[KeySeriesList]; exists && raw != nil {
		list, ok := raw.([]*series.ValueSeries)
		if !ok {
			return c, errors.Errorf("%q is a %T, not a list of series", KeySeriesList, raw)
		}
		c.SeriesList = list
		return c, nil
	}

	ids, err := intsField(d, KeySeriesIDs)
	if err != nil {
		return c, err
	}
	if len(ids) == 0 {
		return c, nil
	}
	if resolver == nil {
		return c, errors.Errorf("measurement %q refers to %d series by ID, but no resolver was given", c.Name, len(ids))
	}
	if c.SeriesList, err = resolver.SeriesByID(ids...); err != nil {
		return c, err
	}

	return c, nil
}

func ecFromDict(d Dict) (ECConfig, error) {
	c := ECConfig{}
	var err error

	if c.ECTechnique, err = stringField(d, KeyECTechnique); err != nil {
		return c, err
	}
	if c.REvsRHE, err = floatField(d, KeyREvsRHE); err != nil {
		return c, err
	}
	if c.AEl, err = floatField(d, KeyAEl); err != nil {
		return c, err
	}
	if c.RawPotentialName, err = stringField(d, KeyRawPotential); err != nil {
		return c, err
	}
	if c.RawCurrentName, err = stringField(d, KeyRawCurrent); err != nil {
		return c, err
	}

	return c, nil
}

func msFromDict(d Dict) (MSConfig, error) {
	c := MSConfig{}

	switch v := d[KeyMassAliases].(type) {
	case nil:
	case map[string]string:
		c.MassAliases = copyStrings(v)
	case map[string]interface{}:
		c.MassAliases = make(map[string]string, len(v))
		for k, alias := range v {
			s, ok := alias.(string)
			if !ok {
				return c, errors.Errorf("%s[%q] is a %T, not a string", KeyMassAliases, k, alias)
			}
			c.MassAliases[k] = s
		}
	default:
		return c, errors.Errorf("%q is a %T, not a mapping", KeyMassAliases, v)
	}

	switch v := d[KeySignalBgs].(type) {
	case nil:
	case map[string]float64:
		c.SignalBgs = copyFloats(v)
	case map[string]interface{}:
		c.SignalBgs = make(map[string]float64, len(v))
		for k, bg := range v {
			f, ok := bg.(float64)
			if !ok {
				return c, errors.Errorf("%s[%q] is a %T, not a number", KeySignalBgs, k, bg)
			}
			c.SignalBgs[k] = f
		}
	default:
		return c, errors.Errorf("%q is a %T, not a mapping", KeySignalBgs, v)
	}

	// The calibration is either live already, or still in its own
	// serialized form and needs rebuilding.
	switch v := d[KeyMSCalibration].(type) {
	case nil:
	case *calibration.Calibration:
		c.Calibration = v
	case map[string]interface{}:
		cal, err := calibration.FromDict(v)
		if err != nil {
			return c, err
		}
		c.Calibration = cal
	default:
		return c, errors.Errorf("%q is a %T, not a calibration", KeyMSCalibration, v)
	}

	return c, nil
}

func stringField(d Dict, key string) (string, error) {
	switch v := d[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", errors.Errorf("%q is a %T, not a string", key, v)
	}
}

func floatField(d Dict, key string) (null.Float, error) {
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
		return null.Float{}, errors.Errorf("%q is a %T, not a number", key, v)
	}
}

func stringsField(d Dict, key string) ([]string, error) {
	switch v := d[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return nil, errors.Errorf("%s[%d] is a %T, not a string", key, i, entry)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Errorf("%q is a %T, not a list", key, v)
	}
}

func intsField(d Dict, key string) ([]int, error) {
	switch v := d[key].(type) {
	case nil:
		return nil, nil
	case []int:
		return append([]int(nil), v...), nil
	case []interface{}:
		out := make([]int, 0, len(v))
		for i, entry := range v {
			f, ok := entry.(float64)
			if !ok || f != float64(int(f)) {
				return nil, errors.Errorf("%s[%d] is not an integer: %v", key, i, entry)
			}
			out = append(out, int(f))
		}
		return out, nil
	default:
		return nil, errors.Errorf("%q is a %T, not a list", key, v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFloats(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
