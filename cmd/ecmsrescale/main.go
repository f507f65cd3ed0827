package main

import (
	"flag"
	"io"
	"os"

	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/store"
	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	_ "github.com/carbocation/ecms/compileinfoprint"
)

type options struct {
	In        string
	Reference string
	DB        string
	Mol       string
	Mass      string
	F         float64
	Out       string
}

func main() {
	// Carries a calibration over to a day on which only one species was
	// recalibrated: every sensitivity factor is scaled by the ratio of the new
	// sensitivity for -mol at -mass to the old one.
	opts := options{}
	var table bool
	flag.StringVar(&opts.In, "in", "", "Calibration (.ix) to rescale")
	flag.StringVar(&opts.DB, "db", "", "Optional SQLite database. If set, -in names a stored calibration instead of a file, and the result is stored too")
	flag.StringVar(&opts.Reference, "ref", "", "Calibration (.ix) holding the new sensitivity for -mol at -mass. Alternative to -F")
	flag.StringVar(&opts.Mol, "mol", "", "Molecule of the new reference point")
	flag.StringVar(&opts.Mass, "mass", "", "Mass of the new reference point. Defaults to the most sensitive mass for -mol in the reference")
	flag.Float64Var(&opts.F, "F", 0, "New sensitivity factor for -mol at -mass, in C/mol")
	flag.StringVar(&opts.Out, "out", "", "Output .ix file. Defaults to <name> scaled.ix")
	flag.BoolVar(&table, "table", false, "Also write the rescaled results to stdout as CSV")
	flag.Parse()

	if opts.In == "" || opts.Mol == "" || (opts.Reference == "" && opts.F == 0) {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var stdout io.Writer
	if table {
		stdout = os.Stdout
	}

	if err := run(opts, stdout); err != nil {
		log.Fatalln(err)
	}
}

func run(opts options, table io.Writer) error {
	var db *store.Store
	if opts.DB != "" {
		var err error
		if db, err = store.Open(opts.DB); err != nil {
			return err
		}
		defer db.Close()
	}

	cal, err := load(db, opts.In)
	if err != nil {
		return err
	}

	target, err := referencePoint(db, opts)
	if err != nil {
		return err
	}

	scaled, err := cal.Rescaled(target)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"calibration": cal.Name,
		"mol":         target.Mol,
		"mass":        target.Mass,
		"F":           target.F,
	}).Infoln("Rescaled")

	if err := scaled.Export(opts.Out); err != nil {
		return err
	}

	if db != nil {
		if err := db.SaveCalibration(scaled); err != nil {
			return pfx.Err(err)
		}
	}

	if table != nil {
		return scaled.WriteTable(table)
	}

	return nil
}

func load(db *store.Store, name string) (*calibration.Calibration, error) {
	if db != nil {
		return db.LoadCalibration(name)
	}
	return calibration.Read(name)
}

// referencePoint is the (mol, mass, F) that the calibration is rescaled to.
func referencePoint(db *store.Store, opts options) (calibration.Result, error) {
	if opts.Reference == "" {
		if opts.Mass == "" {
			return calibration.Result{}, pfx.Err(errors.Errorf("-mass is required with -F"))
		}
		return calibration.NewResult(opts.Mol, opts.Mass, calibration.SinglePointType, opts.F), nil
	}

	ref, err := load(db, opts.Reference)
	if err != nil {
		return calibration.Result{}, err
	}

	mass := opts.Mass
	var F float64
	if mass == "" {
		mass, F, err = ref.MassAndSensitivityFor(opts.Mol)
	} else {
		F, err = ref.SensitivityFor(opts.Mol, mass)
	}
	if err != nil {
		return calibration.Result{}, err
	}

	return calibration.NewResult(opts.Mol, mass, calibration.SinglePointType, F), nil
}
