package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/carbocation/ecms"
	"github.com/carbocation/ecms/calibration"
	"github.com/carbocation/ecms/measurement"
	"github.com/carbocation/ecms/plot"
	"github.com/carbocation/ecms/series"
	"github.com/carbocation/ecms/store"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	_ "github.com/carbocation/ecms/compileinfoprint"
)

type options struct {
	ECFile   string
	MSFile   string
	ECStart  string
	MSStart  string
	Cal      string
	DB       string
	Mols     string
	Tspan    series.Span
	TspanBg  series.Span
	SmoothHz float64
	Plot     string
}

// FluxRow is one line of output: the flux of one molecule at one time.
type FluxRow struct {
	Mol  string  `csv:"mol"`
	Mass string  `csv:"mass"`
	T    float64 `csv:"time/s"`
	NDot float64 `csv:"n_dot/[mol/s]"`
}

func main() {
	// Converts the raw MS signals of an EC-MS experiment into molar fluxes
	// with a calibration, and writes them as a long-format TSV.
	opts := options{}
	var tspan, tspanBg, outFile string
	flag.StringVar(&opts.ECFile, "ec", "", "EC export (CSV/TSV, first column time in s). Local or gs://")
	flag.StringVar(&opts.MSFile, "ms", "", "MS export (CSV/TSV, first column time in s). Local or gs://")
	flag.StringVar(&opts.ECStart, "ec-start", "", "Start time of the EC export, in any common date format")
	flag.StringVar(&opts.MSStart, "ms-start", "", "Start time of the MS export, in any common date format")
	flag.StringVar(&opts.Cal, "cal", "", "Calibration (.ix), or the name of a stored calibration if -db is set")
	flag.StringVar(&opts.DB, "db", "", "Optional SQLite database to load the calibration from")
	flag.StringVar(&opts.Mols, "mols", "", "Comma-separated molecules to quantify. Defaults to every molecule in the calibration")
	flag.StringVar(&tspan, "tspan", "", "Time span to output, as start,end in s. Defaults to everything")
	flag.StringVar(&tspanBg, "bg", "", "Background time span, as start,end in s")
	flag.Float64Var(&opts.SmoothHz, "smooth", 0, "If set, low-pass filter the MS signals at this cutoff frequency, in Hz")
	flag.StringVar(&opts.Plot, "plot", "", "Optional PNG file to plot the fluxes to")
	flag.StringVar(&outFile, "out", "", "Output file. If not specified, writes to stdout")
	flag.Parse()

	if opts.ECFile == "" || opts.MSFile == "" || opts.Cal == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var err error
	if opts.Tspan, err = ecms.ParseSpan(tspan); err != nil {
		log.Fatalln(err)
	}
	if opts.TspanBg, err = ecms.ParseSpan(tspanBg); err != nil {
		log.Fatalln(err)
	}

	// Writer
	var outWriter io.WriteCloser
	if outFile == "" {
		outWriter = os.Stdout
	} else {
		outWriter, err = os.Create(outFile)
		if err != nil {
			log.Fatalln(err)
		}
	}
	defer outWriter.Close()

	if err := run(context.Background(), opts, outWriter); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	cal, err := loadCalibration(opts)
	if err != nil {
		return err
	}

	m, err := loadMeasurement(ctx, opts)
	if err != nil {
		return err
	}
	m.AttachCalibration(cal)

	mols := cal.Mols()
	if opts.Mols != "" {
		mols = strings.Split(opts.Mols, ",")
	}

	var ax *plot.ChartAxis
	if opts.Plot != "" {
		ax = plot.NewAxis("time / [s]", "n_dot / [mol/s]")
	}

	rows := make([]FluxRow, 0)
	for _, mol := range mols {
		mol = strings.TrimSpace(mol)
		mass, _, err := cal.MassAndSensitivityFor(mol)
		if err != nil {
			return err
		}

		t, nDot, err := m.GrabFlux(mol, opts.Tspan, opts.TspanBg)
		if err != nil {
			return err
		}
		for i := range t {
			rows = append(rows, FluxRow{Mol: mol, Mass: mass, T: t[i], NDot: nDot[i]})
		}

		if ax != nil {
			ax.Line(mol, t, nDot, plot.ColorFor(mass), false)
		}

		if len(t) > 1 {
			n, err := m.IntegrateFlux(mol, series.Span{t[0], t[len(t)-1]}, opts.TspanBg)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"mol":  mol,
				"mass": mass,
				"n":    n,
			}).Infoln("Total amount")
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	if ax != nil && ax.Len() > 0 {
		return ax.Save(opts.Plot)
	}

	return nil
}

func loadCalibration(opts options) (*calibration.Calibration, error) {
	if opts.DB == "" {
		return calibration.Read(ecms.ExpandHome(opts.Cal))
	}

	db, err := store.Open(opts.DB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.LoadCalibration(opts.Cal)
}

func loadMeasurement(ctx context.Context, opts options) (*measurement.ECMS, error) {
	ecTstamp, err := parseStart(opts.ECStart)
	if err != nil {
		return nil, err
	}
	msTstamp, err := parseStart(opts.MSStart)
	if err != nil {
		return nil, err
	}

	client, err := ecms.NewStorageClientIfNeeded(ctx, opts.ECFile, opts.MSFile)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if client != nil {
		defer client.Close()
	}

	ec, err := ecms.LoadEC(ctx, opts.ECFile, ecTstamp, client, measurement.ECConfig{})
	if err != nil {
		return nil, err
	}

	ms, err := ecms.LoadMS(ctx, opts.MSFile, msTstamp, client, measurement.MSConfig{}, opts.SmoothHz)
	if err != nil {
		return nil, err
	}

	return measurement.Merge(ec, ms), nil
}

func parseStart(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return 0, pfx.Err(err)
	}

	return float64(t.UnixNano()) / 1e9, nil
}
