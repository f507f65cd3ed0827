package ecms

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/ecms/series"
	"github.com/pkg/errors"
)

// ReadSeriesCSV reads a delimited table whose first column is time in seconds
// and whose remaining columns are one series each, named by the header. The
// delimiter is detected. Blank cells are skipped, so a column may be sampled
// more sparsely than the time column. tstamp becomes the Tstamp of every
// series.
func ReadSeriesCSV(r io.Reader, tstamp float64) ([]*series.ValueSeries, error) {
	br := bufio.NewReader(r)

	cr := csv.NewReader(br)
	cr.Comma = DetermineDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty file: expected a header row")
	} else if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.Errorf("expected a time column and at least one series, got %d columns", len(header))
	}

	names := make([]string, len(header)-1)
	for i, name := range header[1:] {
		names[i] = strings.TrimSpace(name)
	}
	times := make([][]float64, len(names))
	values := make([][]float64, len(names))

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		tCell := strings.TrimSpace(rec[0])
		if tCell == "" {
			continue
		}
		t, err := strconv.ParseFloat(tCell, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: time", line)
		}

		for i, cell := range rec[1:] {
			if i >= len(names) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: %s", line, names[i])
			}
			times[i] = append(times[i], t)
			values[i] = append(values[i], v)
		}
	}

	out := make([]*series.ValueSeries, 0, len(names))
	for i, name := range names {
		vs, err := series.New(name, series.UnitFromName(name), tstamp, times[i], values[i])
		if err != nil {
			return nil, err
		}
		out = append(out, vs)
	}

	return out, nil
}
