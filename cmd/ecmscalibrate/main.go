package main

import (
	"context"
	"flag"
	"os"

	"github.com/carbocation/ecms"
	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/config"
	"github.com/carbocation/ecms/measurement"
	"github.com/carbocation/ecms/plot"
	"github.com/carbocation/ecms/store"
	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	_ "github.com/carbocation/ecms/compileinfoprint"
)

func main() {
	// Runs a calibration plan: reads an EC and an MS export, calibrates each
	// step of the plan against them, and writes the resulting calibration as
	// an .ix file plus any of a CSV table, a plot and a database.
	var configPath string
	var verbose bool
	flag.StringVar(&configPath, "config", "", "JSON calibration plan")
	flag.BoolVar(&verbose, "verbose", false, "Log each calibration step")
	flag.Parse()

	if configPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.ParseJSONConfigFromPath(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config.JSONConfig) error {
	steps, err := loadSteps(ctx, cfg)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return pfx.Err(errors.Errorf("%s has no calibration steps", cfg.ConfigPath))
	}

	m, err := loadMeasurement(ctx, cfg)
	if err != nil {
		return err
	}

	var ax *plot.ChartAxis
	if cfg.Plot != "" {
		ax = plot.NewAxis("n / [nmol]", "signal / [nC]")
	}

	results := make([]calibration.Result, 0, len(steps))
	for _, step := range steps {
		result, err := calibrate(m, step, ax)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"name":     result.Name,
			"cal_type": result.CalType,
			"F":        result.F,
		}).Infoln("Calibrated")

		if result.F < 0 {
			log.WithField("name", result.Name).Warnln("Negative sensitivity factor: check the sign of n_el")
		}

		results = append(results, result)
	}

	cal := calibration.New(calibration.Metadata{
		Name:    cfg.Name,
		Date:    cfg.Date,
		Setup:   cfg.Setup,
		Tstamp:  nullTstamp(m.Tstamp),
		REvsRHE: cfg.REvsRHE,
		AEl:     cfg.AEl,
		L:       cfg.L,
	}, results...)

	return write(cfg, m, cal, ax)
}

func loadSteps(ctx context.Context, cfg config.JSONConfig) ([]config.Step, error) {
	steps := append([]config.Step(nil), cfg.Steps...)
	if cfg.StepsCSV == "" {
		return steps, nil
	}

	client, err := ecms.NewStorageClientIfNeeded(ctx, cfg.StepsCSV)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if client != nil {
		defer client.Close()
	}

	rc, err := ecms.Open(ctx, cfg.StepsCSV, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	fromCSV, err := config.ReadSteps(rc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return append(steps, fromCSV...), nil
}

func loadMeasurement(ctx context.Context, cfg config.JSONConfig) (*measurement.ECMS, error) {
	ecTstamp, msTstamp, err := cfg.Tstamps()
	if err != nil {
		return nil, err
	}

	client, err := ecms.NewStorageClientIfNeeded(ctx, cfg.ECFile, cfg.MSFile)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if client != nil {
		defer client.Close()
	}

	ec, err := ecms.LoadEC(ctx, cfg.ECFile, ecTstamp, client, measurement.ECConfig{
		REvsRHE: cfg.REvsRHE,
		AEl:     cfg.AEl,
	})
	if err != nil {
		return nil, err
	}

	ms, err := ecms.LoadMS(ctx, cfg.MSFile, msTstamp, client, measurement.MSConfig{
		MassAliases: cfg.MassAliases,
	}, cfg.SmoothHz)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ec_series": len(ec.SeriesList()),
		"ms_series": len(ms.SeriesList()),
	}).Debugln("Loaded measurements")

	return measurement.Merge(ec, ms), nil
}

func calibrate(m *measurement.ECMS, step config.Step, ax *plot.ChartAxis) (calibration.Result, error) {
	log.WithFields(log.Fields{
		"mol":    step.Mol,
		"mass":   step.Mass,
		"n_el":   step.NEl,
		"tspans": step.Tspans,
	}).Debugln("Calibrating")

	var result calibration.Result
	if len(step.Tspans) == 1 {
		var err error
		if result, err = m.ECMSCalibration(step.Mol, step.Mass, step.NEl, step.Tspans[0], step.TspanBg); err != nil {
			return result, err
		}
	} else {
		// A nil *ChartAxis inside a non-nil interface would be drawn on
		var axis plot.Axis
		if ax != nil {
			axis = ax
		}

		fit, err := m.ECMSCalibrationCurve(step.Mol, step.Mass, step.NEl, step.Tspans, step.TspanBg, axis)
		if err != nil {
			return result, err
		}
		log.WithFields(log.Fields{
			"name":      fit.Name,
			"intercept": fit.Intercept,
		}).Debugln("Fit")
		result = fit.Result
	}

	if step.Name != "" {
		result.Name = step.Name
	}

	return result, nil
}

func write(cfg config.JSONConfig, m *measurement.ECMS, cal *calibration.Calibration, ax *plot.ChartAxis) error {
	if err := cal.Export(cfg.Output); err != nil {
		return err
	}

	if cfg.Table != "" {
		f, err := os.Create(cfg.Table)
		if err != nil {
			return pfx.Err(err)
		}
		defer f.Close()

		if err := cal.WriteTable(f); err != nil {
			return pfx.Err(err)
		}
	}

	if ax != nil && ax.Len() > 0 {
		if err := ax.Save(cfg.Plot); err != nil {
			return err
		}
	}

	if cfg.Database != "" {
		db, err := store.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveSeries(m.SeriesList()...); err != nil {
			return pfx.Err(err)
		}
		if err := db.SaveCalibration(cal); err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}

// nullTstamp treats a zero time origin, from files without start times, as
// unknown.
func nullTstamp(tstamp float64) null.Float {
	if tstamp == 0 {
		return null.Float{}
	}
	return null.FloatFrom(tstamp)
}
