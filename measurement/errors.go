package measurement

import "github.com/pkg/errors"

var (
	ErrSeriesNotFound = errors.New("series not found")

	ErrUnrecognizedAttribute = errors.New("unrecognized attribute")

	ErrNoCalibration = errors.New("no calibration attached")
)
