package calibration

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

func testCalibration() *Calibration {
	return New(Metadata{
		Name:    "cal_210302",
		Date:    "2021-03-02",
		Setup:   "sniffer",
		Tstamp:  null.FloatFrom(1614686400),
		REvsRHE: null.FloatFrom(0.715),
		AEl:     null.FloatFrom(0.196),
	},
		Result{Name: "O2_M32", Mol: "O2", Mass: "M32", CalType: SinglePointType, F: 10},
		Result{Name: "O2_M16", Mol: "O2", Mass: "M16", CalType: SinglePointType, F: 5},
		Result{Name: "H2_M2", Mol: "H2", Mass: "M2", CalType: SinglePointType, F: 2},
		Result{Name: "H2_M2", Mol: "H2", Mass: "M2", CalType: CurveFitType, F: 4},
		Result{Name: "H2_M2", Mol: "H2", Mass: "M2", CalType: SinglePointType, F: 6},
	)
}

func TestContains(t *testing.T) {
	c := testCalibration()

	for _, v := range []struct {
		Query    string
		Expected bool
	}{
		{"O2", true},
		{"O2_M32", true},
		{"H2", true},
		{"CO2", false},
		{"M32", false},
	} {
		if got := c.Contains(v.Query); got != v.Expected {
			t.Fatalf("Contains(%q): got %t, expected %t", v.Query, got, v.Expected)
		}
	}
}

func TestViews(t *testing.T) {
	c := testCalibration()

	if got := strings.Join(c.Mols(), ","); got != "O2,H2" {
		t.Fatalf("Mols: got %s", got)
	}
	if got := strings.Join(c.Masses(), ","); got != "M32,M16,M2" {
		t.Fatalf("Masses: got %s", got)
	}
	if got := strings.Join(c.Names(), ","); got != "O2_M32,O2_M16,H2_M2" {
		t.Fatalf("Names: got %s", got)
	}

	results := c.Results()
	if len(results) != 5 || results[3].CalType != CurveFitType {
		t.Fatalf("Results did not preserve order: %v", results)
	}

	// Editing the returned slice must not reach into the calibration.
	results[0].F = -1
	if c.Results()[0].F != 10 {
		t.Fatal("Results exposed internal storage")
	}
}

func TestMassAndSensitivityFor(t *testing.T) {
	c := testCalibration()

	mass, F, err := c.MassAndSensitivityFor("O2")
	if err != nil {
		t.Fatal(err)
	}
	if mass != "M32" || F != 10 {
		t.Fatalf("got %s, %f; expected M32, 10", mass, F)
	}

	if _, _, err := c.MassAndSensitivityFor("CO2"); !errors.Is(err, ErrCalibrationNotFound) {
		t.Fatalf("expected ErrCalibrationNotFound, got %v", err)
	}
}

func TestSensitivityFor(t *testing.T) {
	c := testCalibration()

	F, err := c.SensitivityFor("H2", "M2")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(F-4) > 1e-12 {
		t.Fatalf("got %f, expected the mean of 2, 4 and 6", F)
	}

	if F, err := c.SensitivityFor("H2_M2", "M2"); err != nil || math.Abs(F-4) > 1e-12 {
		t.Fatalf("lookup by name: got %f, %v", F, err)
	}

	if _, err := c.SensitivityFor("H2", "M32"); !errors.Is(err, ErrCalibrationNotFound) {
		t.Fatalf("expected ErrCalibrationNotFound, got %v", err)
	}
}

func TestRescaled(t *testing.T) {
	c := testCalibration()

	for _, target := range []Result{
		NewResult("H2", "M2", SinglePointType, 8),
		NewResult("O2", "M32", SinglePointType, 0.0965),
		NewResult("O2", "M16", CurveFitType, 123456),
	} {
		scaled, err := c.Rescaled(target)
		if err != nil {
			t.Fatal(err)
		}

		F, err := scaled.SensitivityFor(target.Mol, target.Mass)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(F-target.F) > 1e-9*target.F {
			t.Fatalf("%s: got %g after rescaling, expected %g", target.Name, F, target.F)
		}

		if scaled.Name != "cal_210302 scaled" {
			t.Fatalf("got name %q", scaled.Name)
		}
		for _, r := range scaled.Results() {
			if !strings.HasSuffix(r.CalType, ScaledSuffix) {
				t.Fatalf("result %s was not marked as scaled", r)
			}
		}
		if scaled.REvsRHE != c.REvsRHE || scaled.Setup != c.Setup {
			t.Fatal("metadata was not carried over")
		}
	}

	// The original is untouched
	if F, _ := c.SensitivityFor("H2", "M2"); math.Abs(F-4) > 1e-12 || c.Name != "cal_210302" {
		t.Fatal("Rescaled modified its receiver")
	}

	if _, err := c.Rescaled(NewResult("CO2", "M44", SinglePointType, 1)); !errors.Is(err, ErrCalibrationNotFound) {
		t.Fatalf("expected ErrCalibrationNotFound, got %v", err)
	}
}

func TestExportRead(t *testing.T) {
	c := testCalibration()
	path := filepath.Join(t.TempDir(), "cal.ix")

	if err := c.Export(path); err != nil {
		t.Fatal(err)
	}

	read, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	if read.Metadata != c.Metadata {
		t.Fatalf("metadata changed:\n%+v\n%+v", read.Metadata, c.Metadata)
	}
	if read.L.Valid {
		t.Fatal("a null working distance came back as a number")
	}

	got, expected := read.Results(), c.Results()
	if len(got) != len(expected) {
		t.Fatalf("got %d results, expected %d", len(got), len(expected))
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("result %d: got %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestExportDefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	c := testCalibration()
	if err := c.Export(""); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "cal_210302.ix")); err != nil {
		t.Fatal(err)
	}
}

func TestExportNaNKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ix")
	if err := testCalibration().Export(path); err != nil {
		t.Fatal(err)
	}

	bad := New(Metadata{Name: "bad"}, NewResult("O2", "M32", CurveFitType, math.NaN()))
	if err := bad.Export(path); err == nil {
		t.Fatal("expected an error exporting a NaN sensitivity")
	}

	read, err := Read(path)
	if err != nil {
		t.Fatalf("existing file was damaged: %v", err)
	}
	if read.Len() != testCalibration().Len() {
		t.Fatalf("got %d results, expected %d", read.Len(), testCalibration().Len())
	}
}

func TestDecodeCorrupt(t *testing.T) {
	for _, v := range []string{
		``,
		`{"name": "x", "ms_cal_results": [`,
		`{"name": "x"}`,
		`{"name": 3, "ms_cal_results": []}`,
		`{"name": "x", "A_el": "big", "ms_cal_results": []}`,
		`{"name": "x", "ms_cal_results": {"mol": "O2"}}`,
		`{"name": "x", "ms_cal_results": [4]}`,
		`{"name": "x", "ms_cal_results": [{"mol": "O2", "mass": "M32"}]}`,
		`{"name": "x", "ms_cal_results": [{"mol": "O2", "F": 1}]}`,
		`[1, 2, 3]`,
		`{"name": "x", "ms_cal_results": [{"mol": "O2", "mass": "M32", "F": 1}]} this is not json {{{`,
		`{"name": "x", "ms_cal_results": []} {"name": "y", "ms_cal_results": []}`,
	} {
		c, err := Decode(strings.NewReader(v))
		if !errors.Is(err, ErrCorruptCalibration) {
			t.Fatalf("%s: expected ErrCorruptCalibration, got %v", v, err)
		}
		if c != nil {
			t.Fatalf("%s: got a partial calibration", v)
		}
	}
}

func TestDecodeMinimal(t *testing.T) {
	c, err := Decode(strings.NewReader(`{"name": "old", "RE_vs_RHE": null, "ms_cal_results": [{"name": "O2_M32", "mol": "O2", "mass": "M32", "cal_type": "ecms_calibration", "F": 0.1}]}`))
	if err != nil {
		t.Fatal(err)
	}

	if c.REvsRHE.Valid || c.Len() != 1 || !c.Contains("O2_M32") {
		t.Fatalf("unexpected calibration %+v", c)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := testCalibration().WriteTable(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected a header and 5 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "calibration,setup,date,name,mol,mass,cal_type,F") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "cal_210302,sniffer,2021-03-02,O2_M32,O2,M32,single-point,") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestParsedDate(t *testing.T) {
	for _, v := range []string{"2021-03-02", "2021/03/02"} {
		c := New(Metadata{Date: v})
		d, err := c.ParsedDate()
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if d.Year() != 2021 || d.Month() != 3 || d.Day() != 2 {
			t.Fatalf("%s: parsed as %v", v, d)
		}
	}
}

func TestWith(t *testing.T) {
	c := testCalibration()
	more := c.With(NewResult("CO2", "M44", SinglePointType, 1))

	if c.Contains("CO2") || !more.Contains("CO2") || more.Len() != 6 {
		t.Fatal("With should return an extended copy")
	}
	if c.Technique != DefaultTechnique {
		t.Fatalf("got technique %q", c.Technique)
	}
}
