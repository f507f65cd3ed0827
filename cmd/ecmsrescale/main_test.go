package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/store"
)

func testCalibration() *calibration.Calibration {
	return calibration.New(calibration.Metadata{Name: "monday"},
		calibration.NewResult("O2", "M32", calibration.SinglePointType, 10),
		calibration.NewResult("H2", "M2", calibration.SinglePointType, 4),
	)
}

func TestRunWithF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "monday.ix")
	if err := testCalibration().Export(in); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "tuesday.ix")
	var table bytes.Buffer
	if err := run(options{In: in, Mol: "O2", Mass: "M32", F: 20, Out: out}, &table); err != nil {
		t.Fatal(err)
	}

	scaled, err := calibration.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	F, err := scaled.SensitivityFor("H2", "M2")
	if err != nil {
		t.Fatal(err)
	}
	if F != 8 {
		t.Fatalf("Expected H2 to scale to 8, got %f", F)
	}
	if scaled.Name != "monday"+calibration.ScaledSuffix {
		t.Fatalf("Unexpected name %q", scaled.Name)
	}
	if !strings.Contains(table.String(), "H2_M2") {
		t.Fatalf("Expected the table to list H2_M2, got %q", table.String())
	}
}

func TestRunWithReference(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "monday.ix")
	if err := testCalibration().Export(in); err != nil {
		t.Fatal(err)
	}

	ref := filepath.Join(dir, "ref.ix")
	reference := calibration.New(calibration.Metadata{Name: "tuesday O2"},
		calibration.NewResult("O2", "M32", calibration.SinglePointType, 5),
		calibration.NewResult("O2", "M16", calibration.SinglePointType, 1),
	)
	if err := reference.Export(ref); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.ix")
	if err := run(options{In: in, Reference: ref, Mol: "O2", Out: out}, nil); err != nil {
		t.Fatal(err)
	}

	scaled, err := calibration.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	F, err := scaled.SensitivityFor("H2", "M2")
	if err != nil {
		t.Fatal(err)
	}
	if F != 2 {
		t.Fatalf("Expected H2 to scale to 2, got %f", F)
	}
}

func TestRunWithDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ecms.sqlite")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveCalibration(testCalibration()); err != nil {
		t.Fatal(err)
	}
	db.Close()

	out := filepath.Join(dir, "out.ix")
	if err := run(options{In: "monday", DB: dbPath, Mol: "O2", Mass: "M32", F: 5, Out: out}, nil); err != nil {
		t.Fatal(err)
	}

	db, err = store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	scaled, err := db.LoadCalibration("monday" + calibration.ScaledSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if F, _ := scaled.SensitivityFor("H2", "M2"); F != 2 {
		t.Fatalf("Expected H2 to scale to 2, got %f", F)
	}
}

func TestRunMissingMass(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "monday.ix")
	if err := testCalibration().Export(in); err != nil {
		t.Fatal(err)
	}

	if err := run(options{In: in, Mol: "O2", F: 20, Out: filepath.Join(dir, "out.ix")}, nil); err == nil {
		t.Fatalf("Expected an error without -mass")
	}
}
