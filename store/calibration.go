package store

import (
	"database/sql"

	"github.com/carbocation/ecms/calibration"
	"github.com/pkg/errors"
	"gopkg.in/guregu/null.v3"
)

type calibrationRow struct {
	Name      string     `db:"name"`
	Date      string     `db:"date"`
	Setup     string     `db:"setup"`
	Technique string     `db:"technique"`
	Tstamp    null.Float `db:"tstamp"`
	REvsRHE   null.Float `db:"re_vs_rhe"`
	AEl       null.Float `db:"a_el"`
	L         null.Float `db:"l"`
}

type resultRow struct {
	Calibration string  `db:"calibration"`
	Position    int     `db:"position"`
	Name        string  `db:"name"`
	Mol         string  `db:"mol"`
	Mass        string  `db:"mass"`
	CalType     string  `db:"cal_type"`
	F           float64 `db:"f"`
}

// SaveCalibration stores cal under its name, replacing any calibration of
// the same name.
func (s *Store) SaveCalibration(cal *calibration.Calibration) error {
	if cal.Name == "" {
		return errors.New("cannot store a calibration without a name")
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := calibrationRow{
		Name:      cal.Name,
		Date:      cal.Date,
		Setup:     cal.Setup,
		Technique: cal.Technique,
		Tstamp:    cal.Tstamp,
		REvsRHE:   cal.REvsRHE,
		AEl:       cal.AEl,
		L:         cal.L,
	}
	if _, err := tx.NamedExec(`INSERT OR REPLACE INTO calibration (name, date, setup, technique, tstamp, re_vs_rhe, a_el, l)
		VALUES (:name, :date, :setup, :technique, :tstamp, :re_vs_rhe, :a_el, :l)`, row); err != nil {
		return errors.Wrapf(err, "saving calibration %q", cal.Name)
	}

	if _, err := tx.Exec("DELETE FROM calibration_result WHERE calibration=?", cal.Name); err != nil {
		return err
	}

	for i, r := range cal.Results() {
		rr := resultRow{
			Calibration: cal.Name,
			Position:    i,
			Name:        r.Name,
			Mol:         r.Mol,
			Mass:        r.Mass,
			CalType:     r.CalType,
			F:           r.F,
		}
		if _, err := tx.NamedExec(`INSERT INTO calibration_result (calibration, position, name, mol, mass, cal_type, f)
			VALUES (:calibration, :position, :name, :mol, :mass, :cal_type, :f)`, rr); err != nil {
			return errors.Wrapf(err, "saving result %q of calibration %q", r.Name, cal.Name)
		}
	}

	return tx.Commit()
}

// LoadCalibration reads back the calibration stored under name.
func (s *Store) LoadCalibration(name string) (*calibration.Calibration, error) {
	row := calibrationRow{}
	err := s.DB.Get(&row, "SELECT * FROM calibration WHERE name=?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(calibration.ErrCalibrationNotFound, "no stored calibration %q", name)
	} else if err != nil {
		return nil, err
	}

	rows := make([]resultRow, 0)
	if err := s.DB.Select(&rows, "SELECT * FROM calibration_result WHERE calibration=? ORDER BY position", name); err != nil {
		return nil, err
	}

	results := make([]calibration.Result, 0, len(rows))
	for _, rr := range rows {
		results = append(results, calibration.Result{
			Name:    rr.Name,
			Mol:     rr.Mol,
			Mass:    rr.Mass,
			CalType: rr.CalType,
			F:       rr.F,
		})
	}

	return calibration.New(calibration.Metadata{
		Name:      row.Name,
		Date:      row.Date,
		Setup:     row.Setup,
		Technique: row.Technique,
		Tstamp:    row.Tstamp,
		REvsRHE:   row.REvsRHE,
		AEl:       row.AEl,
		L:         row.L,
	}, results...), nil
}

// CalibrationNames lists the stored calibrations alphabetically.
func (s *Store) CalibrationNames() ([]string, error) {
	out := make([]string, 0)
	if err := s.DB.Select(&out, "SELECT name FROM calibration ORDER BY name"); err != nil {
		return nil, err
	}

	return out, nil
}
