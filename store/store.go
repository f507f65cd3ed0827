// Package store persists series and calibrations in a SQLite database, so
// that measurements serialized with series IDs can be rebuilt later.
package store

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/carbocation/ecms/measurement"
	"github.com/carbocation/ecms/series"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	unit TEXT NOT NULL,
	tstamp REAL NOT NULL,
	t TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS calibration (
	name TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	setup TEXT NOT NULL,
	technique TEXT NOT NULL,
	tstamp REAL,
	re_vs_rhe REAL,
	a_el REAL,
	l REAL
);
CREATE TABLE IF NOT EXISTS calibration_result (
	calibration TEXT NOT NULL REFERENCES calibration(name),
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	mol TEXT NOT NULL,
	mass TEXT NOT NULL,
	cal_type TEXT NOT NULL,
	f REAL NOT NULL,
	PRIMARY KEY (calibration, position)
);
`

// Store is a SQLite-backed series and calibration archive. It satisfies
// measurement.SeriesResolver.
type Store struct {
	DB *sqlx.DB
}

var _ measurement.SeriesResolver = (*Store)(nil)

// Open connects to (and if needed creates) the database at path. ":memory:"
// gives a private in-memory database.
func Open(path string) (*Store, error) {
	// URI filenames have to begin with 'file:'
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// Every connection to an in-memory database would get its own
	// database, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type seriesRow struct {
	ID     int     `db:"id"`
	Name   string  `db:"name"`
	Unit   string  `db:"unit"`
	Tstamp float64 `db:"tstamp"`
	T      string  `db:"t"`
	Data   string  `db:"data"`
}

// SaveSeries inserts each series and records the ID it was given on the
// series itself. Series that already carry an ID are overwritten in place.
// IDs are only recorded once the whole batch is committed.
func (s *Store) SaveSeries(vs ...*series.ValueSeries) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ids := make([]int, len(vs))
	for i, v := range vs {
		t, err := encodeFloats(v.T)
		if err != nil {
			return errors.Wrapf(err, "series %q time vector", v.Name)
		}
		data, err := encodeFloats(v.Data)
		if err != nil {
			return errors.Wrapf(err, "series %q data", v.Name)
		}

		if v.ID != 0 {
			if _, err := tx.Exec("INSERT OR REPLACE INTO series (id, name, unit, tstamp, t, data) VALUES (?, ?, ?, ?, ?, ?)",
				v.ID, v.Name, v.Unit, v.Tstamp, t, data); err != nil {
				return errors.Wrapf(err, "saving series %q", v.Name)
			}
			ids[i] = v.ID
			continue
		}

		res, err := tx.Exec("INSERT INTO series (name, unit, tstamp, t, data) VALUES (?, ?, ?, ?, ?)",
			v.Name, v.Unit, v.Tstamp, t, data)
		if err != nil {
			return errors.Wrapf(err, "saving series %q", v.Name)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		ids[i] = int(id)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for i, v := range vs {
		v.ID = ids[i]
	}

	return nil
}

// encodeFloats writes values as a JSON array. Non-finite values, which JSON
// cannot hold as numbers, are written as the strings "NaN", "+Inf" and
// "-Inf".
func encodeFloats(values []float64) (string, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
			continue
		}
		out[i] = v
	}

	b, err := json.Marshal(out)
	return string(b), err
}

func decodeFloats(encoded string) ([]float64, error) {
	raw := make([]interface{}, 0)
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return nil, err
	}

	out := make([]float64, len(raw))
	for i, entry := range raw {
		switch v := entry.(type) {
		case float64:
			out[i] = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "value %d", i)
			}
			out[i] = f
		default:
			return nil, errors.Errorf("value %d is a %T, not a number", i, entry)
		}
	}

	return out, nil
}

// SeriesByID loads series in the order their IDs are given.
func (s *Store) SeriesByID(ids ...int) ([]*series.ValueSeries, error) {
	out := make([]*series.ValueSeries, 0, len(ids))
	for _, id := range ids {
		row := seriesRow{}
		err := s.DB.Get(&row, "SELECT * FROM series WHERE id=?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(measurement.ErrSeriesNotFound, "id %d", id)
		} else if err != nil {
			return nil, err
		}

		vs := &series.ValueSeries{
			ID:     row.ID,
			Name:   row.Name,
			Unit:   row.Unit,
			Tstamp: row.Tstamp,
		}
		if vs.T, err = decodeFloats(row.T); err != nil {
			return nil, errors.Wrapf(err, "series %d time vector", id)
		}
		if vs.Data, err = decodeFloats(row.Data); err != nil {
			return nil, errors.Wrapf(err, "series %d data", id)
		}

		out = append(out, vs)
	}

	return out, nil
}
