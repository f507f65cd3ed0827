package ecms

import (
	"context"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
)

const gsPrefix = "gs://"

// IsGoogleStorage reports whether path names a Google Cloud Storage object.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, gsPrefix)
}

// Open opens a local file, or a gs://bucket/object path if client is not
// nil, and transparently decompresses it. A leading ~ in local paths is
// expanded.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	var rc io.ReadCloser

	if IsGoogleStorage(path) {
		if client == nil {
			return nil, pfx.Err(errors.Errorf("%s: no storage client to read Google Cloud Storage paths with", path))
		}

		// Detect the bucket and the path to the actual file
		pathParts := strings.SplitN(strings.TrimPrefix(path, gsPrefix), "/", 2)
		if len(pathParts) != 2 {
			return nil, errors.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
		}

		r, err := client.Bucket(pathParts[0]).Object(pathParts[1]).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(errors.Errorf("%s: %s", path, err))
		}
		rc = r
	} else {
		f, err := os.Open(ExpandHome(path))
		if err != nil {
			return nil, pfx.Err(err)
		}
		rc = f
	}

	out, err := MaybeDecompress(rc)
	if err != nil {
		rc.Close()
		return nil, pfx.Err(errors.Errorf("%s: %s", path, err))
	}

	return out, nil
}

// NewStorageClientIfNeeded creates a Google Cloud Storage client with default
// credentials, but only if one of paths needs it.
func NewStorageClientIfNeeded(ctx context.Context, paths ...string) (*storage.Client, error) {
	for _, path := range paths {
		if IsGoogleStorage(path) {
			return storage.NewClient(ctx)
		}
	}

	return nil, nil
}
