package calibration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
)

// FileExtension is the conventional suffix of exported calibrations.
const FileExtension = ".ix"

// Encode writes the calibration as indented JSON.
func (c *Calibration) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c.AsDict())
}

// Export writes the calibration to path, or to <name>.ix in the working
// directory if path is empty. A failed write can leave a truncated file.
func (c *Calibration) Export(path string) error {
	if path == "" {
		path = c.Name + FileExtension
	}

	// Encode to a byte buffer so a calibration that cannot be written leaves
	// any existing file untouched
	buffer := bytes.NewBuffer([]byte{})
	if err := c.Encode(buffer); err != nil {
		return pfx.Err(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if _, err := buffer.WriteTo(f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

// Decode reads a calibration written by Encode.
func Decode(r io.Reader) (*Calibration, error) {
	d := make(map[string]interface{})
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(ErrCorruptCalibration, err.Error())
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.Wrap(ErrCorruptCalibration, "trailing data after calibration")
	}

	return FromDict(d)
}

// Read loads a calibration file written by Export.
func Read(path string) (*Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	return c, nil
}

// MarshalJSON makes a Calibration embeddable in other JSON documents.
func (c *Calibration) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.AsDict())
}

func (c *Calibration) UnmarshalJSON(data []byte) error {
	d := make(map[string]interface{})
	if err := json.Unmarshal(data, &d); err != nil {
		return errors.Wrap(ErrCorruptCalibration, err.Error())
	}

	parsed, err := FromDict(d)
	if err != nil {
		return err
	}

	*c = *parsed
	return nil
}
