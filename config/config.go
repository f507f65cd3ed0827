// Package config reads the JSON calibration plans run by ecmscalibrate.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/carbocation/ecms"
	"github.com/carbocation/ecms/series"
	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"
)

// Step is one calibration to perform. A single tspan gives a single-point
// calibration; several give a curve fit.
type Step struct {
	Mol     string        `json:"mol"`
	Mass    string        `json:"mass"`
	NEl     float64       `json:"n_el"`
	Tspans  []series.Span `json:"tspans"`
	TspanBg series.Span   `json:"tspan_bg"`
	Name    string        `json:"name"`
}

type JSONConfig struct {
	ConfigPath string `json:"-"`

	ECFile  string `json:"ec_file"`
	MSFile  string `json:"ms_file"`
	ECStart string `json:"ec_start"`
	MSStart string `json:"ms_start"`

	Name    string     `json:"name"`
	Date    string     `json:"date"`
	Setup   string     `json:"setup"`
	REvsRHE null.Float `json:"RE_vs_RHE"`
	AEl     null.Float `json:"A_el"`
	L       null.Float `json:"L"`

	MassAliases map[string]string `json:"mass_aliases"`

	// SmoothHz, if set, low-pass filters the MS signals before use.
	SmoothHz float64 `json:"smooth_hz"`

	Steps    []Step `json:"steps"`
	StepsCSV string `json:"steps_csv"`

	Output   string `json:"output"`
	Table    string `json:"table"`
	Plot     string `json:"plot"`
	Database string `json:"database"`
}

func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := JSONConfig{ConfigPath: path}

	f, err := os.Open(ecms.ExpandHome(path))
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	err = json.NewDecoder(f).Decode(&out)
	if err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}

		return out, pfx.Err(err)
	}

	// Interpret ~ if present, and read relative paths relative to the plan
	dir := filepath.Dir(ecms.ExpandHome(path))
	out.ConfigPath = ecms.ExpandHome(out.ConfigPath)
	out.ECFile = resolvePath(dir, out.ECFile)
	out.MSFile = resolvePath(dir, out.MSFile)
	out.StepsCSV = resolvePath(dir, out.StepsCSV)
	out.Output = resolvePath(dir, out.Output)
	out.Table = resolvePath(dir, out.Table)
	out.Plot = resolvePath(dir, out.Plot)
	out.Database = resolvePath(dir, out.Database)

	return out, nil
}

// Tstamps parses the free-form start times of the EC and MS files into unix
// seconds. A blank start time is zero.
func (c JSONConfig) Tstamps() (ec, ms float64, err error) {
	if ec, err = parseTstamp(c.ECStart); err != nil {
		return 0, 0, pfx.Err(err)
	}
	if ms, err = parseTstamp(c.MSStart); err != nil {
		return 0, 0, pfx.Err(err)
	}

	return ec, ms, nil
}

func parseTstamp(value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return 0, err
	}

	return float64(t.UnixNano()) / 1e9, nil
}

func resolvePath(dir, path string) string {
	if path == "" || strings.HasPrefix(path, "gs://") {
		return path
	}

	path = ecms.ExpandHome(path)
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
