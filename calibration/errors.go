package calibration

import "github.com/pkg/errors"

var (
	ErrCalibrationNotFound = errors.New("calibration not found")

	ErrCorruptCalibration = errors.New("corrupt calibration file")

	ErrInsufficientPoints = errors.New("insufficient calibration points")
)
