package ecms

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

func (d DataType) String() string {
	switch d {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZ:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}
	return "invalid"
}

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var byteCodeSigs = []struct {
	dt  DataType
	sig []byte
}{
	{DataTypeGzip, []byte{0x1f, 0x8b, 0x08}},
	{DataTypeZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{DataTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{DataTypeZ, []byte{0x1f, 0x9d}},
	{DataTypeBZip2, []byte{0x42, 0x5a, 0x68}},
}

// DetectDataType looks at the first bytes of br, without consuming them,
// to tell which compression (if any) the stream uses.
func DetectDataType(br *bufio.Reader) (DataType, error) {
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return DataTypeInvalid, err
	}

	for _, known := range byteCodeSigs {
		if bytes.HasPrefix(head, known.sig) {
			return known.dt, nil
		}
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompress wraps rc in the decompressor its contents call for. Closing
// the result closes rc. Zip archives yield their first entry.
func MaybeDecompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	dt, err := DetectDataType(br)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch dt {
	case DataTypeGzip:
		if r, err = gzip.NewReader(br); err != nil {
			return nil, err
		}
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, err
		}
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		if r, err = xz.NewReader(br, 0); err != nil {
			return nil, err
		}
	case DataTypeZ:
		if r, err = zlib.NewReader(br); err != nil {
			return nil, err
		}
	default:
		r = br
	}

	return &readCloser{Reader: r, closer: rc}, nil
}

// readCloser pairs a decoding reader with the closer of the stream beneath
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (c *readCloser) Close() error {
	return c.closer.Close()
}
