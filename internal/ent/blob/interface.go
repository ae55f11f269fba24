package blob

import (
	"context"
	"io"
)

// Store is the object storage behind two concerns: uploaded source
// files kept for table rollback, and built archives served to the
// aggregator.
type Store interface {
	// PutSource saves the bytes of an uploaded file under a dataset.
	PutSource(
		ctx context.Context, datasetID uint, name string, r io.Reader,
		size int64,
	) error

	// GetSource reads an uploaded file back. The caller closes the
	// reader.
	GetSource(
		ctx context.Context, datasetID uint, name string,
	) (io.ReadCloser, error)

	// PutArchive uploads a built archive and returns its public URL.
	PutArchive(
		ctx context.Context, datasetID uint, r io.Reader, size int64,
	) (string, error)
}
