package ecms

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ecms/measurement"
	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
)

func readSeriesFile(ctx context.Context, path string, tstamp float64, client *storage.Client) ([]*series.ValueSeries, error) {
	rc, err := Open(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	out, err := ReadSeriesCSV(rc, tstamp)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading %s", path)
	}

	return out, nil
}

// LoadEC reads an electrochemistry export. tstamp is the unix time at which
// the file's time column is zero.
func LoadEC(ctx context.Context, path string, tstamp float64, client *storage.Client, cfg measurement.ECConfig) (*measurement.EC, error) {
	list, err := readSeriesFile(ctx, path, tstamp, client)
	if err != nil {
		return nil, err
	}

	return measurement.NewEC(measurement.Common{
		Name:       filepath.Base(path),
		Technique:  "EC",
		Tstamp:     tstamp,
		SeriesList: list,
	}, cfg), nil
}

// LoadMS reads a mass spectrometer export, optionally low-pass filtering
// every mass channel at smoothHz.
func LoadMS(ctx context.Context, path string, tstamp float64, client *storage.Client, cfg measurement.MSConfig, smoothHz float64) (*measurement.MS, error) {
	list, err := readSeriesFile(ctx, path, tstamp, client)
	if err != nil {
		return nil, err
	}

	if smoothHz > 0 {
		for _, vs := range list {
			if vs.Len() < 2 {
				continue
			}
			if vs.Data, err = series.LowPass(vs.T, vs.Data, smoothHz); err != nil {
				return nil, errors.WithMessagef(err, "smoothing %s", vs.Name)
			}
		}
	}

	return measurement.NewMS(measurement.Common{
		Name:       filepath.Base(path),
		Technique:  "MS",
		Tstamp:     tstamp,
		SeriesList: list,
	}, cfg), nil
}

// ParseSpan reads a time span written as "start,end". The empty string is
// the zero span.
func ParseSpan(value string) (series.Span, error) {
	out := series.Span{}
	if strings.TrimSpace(value) == "" {
		return out, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return out, errors.Errorf("expected a time span as start,end, got %q", value)
	}

	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return out, errors.Wrapf(err, "time span %q", value)
		}
		out[i] = v
	}

	return out, out.Validate()
}
