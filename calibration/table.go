package calibration

import (
	"io"

	"github.com/gocarina/gocsv"
)

type tableRow struct {
	Calibration string  `csv:"calibration"`
	Setup       string  `csv:"setup"`
	Date        string  `csv:"date"`
	Name        string  `csv:"name"`
	Mol         string  `csv:"mol"`
	Mass        string  `csv:"mass"`
	CalType     string  `csv:"cal_type"`
	F           float64 `csv:"F"`
}

// WriteTable writes one CSV row per result, for spreadsheets.
func (c *Calibration) WriteTable(w io.Writer) error {
	rows := make([]*tableRow, 0, len(c.results))
	for _, r := range c.results {
		rows = append(rows, &tableRow{
			Calibration: c.Name,
			Setup:       c.Setup,
			Date:        c.Date,
			Name:        r.Name,
			Mol:         r.Mol,
			Mass:        r.Mass,
			CalType:     r.CalType,
			F:           r.F,
		})
	}

	return gocsv.Marshal(rows, w)
}
