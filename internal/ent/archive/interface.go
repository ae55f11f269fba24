package archive

import "context"

// Builder assembles Darwin Core Archives.
type Builder interface {
	// BuildArchive bundles the dataset's classified tables, its EML
	// metadata and a meta.xml descriptor into a zip, uploads it to
	// public storage, and returns the archive URL. The core table is
	// picked by the dataset's declared core type; extension tables ride
	// along by their classified schemas.
	BuildArchive(ctx context.Context, datasetID uint) (string, error)
}
