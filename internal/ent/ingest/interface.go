package ingest

import (
	"context"
	"io"
)

// Ingestor converts uploaded spreadsheet or delimited files into
// dataset tables. One workbook sheet or one delimited file becomes one
// table; empty sheets are dropped.
type Ingestor interface {
	// IngestFile parses the file and creates its tables under the
	// dataset, returning the new table ids. A file with fewer than two
	// usable data rows is rejected.
	IngestFile(
		ctx context.Context, datasetID uint, name string, r io.Reader,
	) ([]uint, error)
}
