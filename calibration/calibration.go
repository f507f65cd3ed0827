// Package calibration holds mass spectrometer sensitivity factors for EC-MS
// measurements, the routines that derive them from steady electrolysis, and
// the .ix file format they are stored in.
package calibration

import (
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/guregu/null.v3"
)

const DefaultTechnique = "EC-MS"

// Metadata describes where and when a calibration was made. The numeric
// fields are optional, and stay null when unknown.
type Metadata struct {
	Name      string
	Date      string
	Setup     string
	Technique string

	// Tstamp is the reference time origin in unix seconds.
	Tstamp null.Float

	// REvsRHE is the reference electrode potential in V vs RHE.
	REvsRHE null.Float

	// AEl is the geometric electrode area in cm^2.
	AEl null.Float

	// L is the working distance in m.
	L null.Float
}

// Calibration is an ordered set of Results plus the Metadata they share. The
// same (mol, mass) pair may appear more than once, e.g. after repeated
// calibrations. A Calibration is not modified after construction; the
// methods that change it return a new one.
type Calibration struct {
	Metadata
	results []Result
}

func New(meta Metadata, results ...Result) *Calibration {
	if meta.Technique == "" {
		meta.Technique = DefaultTechnique
	}

	c := &Calibration{Metadata: meta}
	c.results = append(c.results, results...)

	return c
}

// Results returns the sensitivity records in their stored order.
func (c *Calibration) Results() []Result {
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Calibration) Len() int {
	return len(c.results)
}

// With returns a new Calibration holding c's results followed by results.
func (c *Calibration) With(results ...Result) *Calibration {
	out := New(c.Metadata, c.results...)
	out.results = append(out.results, results...)
	return out
}

// Mols lists the distinct molecules, in order of first appearance.
func (c *Calibration) Mols() []string {
	return c.distinct(func(r Result) string { return r.Mol })
}

// Masses lists the distinct mass channels, in order of first appearance.
func (c *Calibration) Masses() []string {
	return c.distinct(func(r Result) string { return r.Mass })
}

// Names lists the distinct result names, in order of first appearance.
func (c *Calibration) Names() []string {
	return c.distinct(func(r Result) string { return r.Name })
}

func (c *Calibration) distinct(key func(Result) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range c.results {
		k := key(r)
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}

// Contains reports whether s is the molecule or the name of any result.
func (c *Calibration) Contains(s string) bool {
	for _, r := range c.results {
		if r.Matches(s) {
			return true
		}
	}

	return false
}

// ParsedDate interprets the free-form Date field.
func (c *Calibration) ParsedDate() (time.Time, error) {
	res, err := dateparse.ParseAny(c.Date)
	if err == nil {
		return res, nil
	}

	// Lab notebooks like 02Mar2021
	return time.Parse("02Jan2006", c.Date)
}
