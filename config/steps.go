package config

import (
	"io"

	"github.com/carbocation/ecms/series"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type stepRow struct {
	Mol     string  `csv:"mol"`
	Mass    string  `csv:"mass"`
	NEl     float64 `csv:"n_el"`
	Start   float64 `csv:"start"`
	End     float64 `csv:"end"`
	BgStart float64 `csv:"bg_start"`
	BgEnd   float64 `csv:"bg_end"`
	Name    string  `csv:"name"`
}

// ReadSteps reads calibration steps from a CSV table with one row per time
// span. Consecutive rows for the same mol, mass and n_el form one step, so a
// curve fit is written as several rows.
func ReadSteps(r io.Reader) ([]Step, error) {
	rows := make([]stepRow, 0)
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	out := make([]Step, 0)
	for i, row := range rows {
		if row.Mol == "" || row.Mass == "" {
			return nil, errors.Errorf("row %d: mol and mass are required", i+1)
		}

		tspan := series.Span{row.Start, row.End}
		if err := tspan.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "row %d", i+1)
		}

		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Mol == row.Mol && last.Mass == row.Mass && last.NEl == row.NEl && last.Name == row.Name {
				last.Tspans = append(last.Tspans, tspan)
				continue
			}
		}

		out = append(out, Step{
			Mol:     row.Mol,
			Mass:    row.Mass,
			NEl:     row.NEl,
			Tspans:  []series.Span{tspan},
			TspanBg: series.Span{row.BgStart, row.BgEnd},
			Name:    row.Name,
		})
	}

	return out, nil
}
