package calibration

import "fmt"

// Calibration types. Results derived by rescaling carry the original type
// with ScaledSuffix appended.
const (
	SinglePointType = "single-point"
	CurveFitType    = "curve-fit"

	ScaledSuffix = " scaled"
)

// Result is one mass-to-molecule sensitivity: integrated signal per mole of
// Mol produced, as seen at mass channel Mass. Results are values; derive new
// ones rather than editing them.
type Result struct {
	Name    string  `json:"name"`
	Mol     string  `json:"mol"`
	Mass    string  `json:"mass"`
	CalType string  `json:"cal_type"`
	F       float64 `json:"F"`
}

func NewResult(mol, mass, calType string, F float64) Result {
	return Result{
		Name:    DefaultName(mol, mass),
		Mol:     mol,
		Mass:    mass,
		CalType: calType,
		F:       F,
	}
}

func DefaultName(mol, mass string) string {
	return mol + "_" + mass
}

// Scaled returns a copy with F multiplied by factor and the calibration type
// marked as scaled.
func (r Result) Scaled(factor float64) Result {
	r.F *= factor
	r.CalType += ScaledSuffix
	return r
}

// Matches reports whether the result is for the molecule (or result name) s.
func (r Result) Matches(s string) bool {
	return r.Mol == s || r.Name == s
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s at %s, F=%g (%s)", r.Name, r.Mol, r.Mass, r.F, r.CalType)
}
