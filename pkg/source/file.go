package source

import (
	"context"

	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
)

// FileSource reads a snapshot JSON file on every Fetch.
type FileSource struct {
	path string
}

// NewFileSource validates path.
func NewFileSource(path string) (*FileSource, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileSource{path: path}, nil
}

// Fetch reads and decodes the file. The snapshot is not validated; that is
// the loader's job.
func (s *FileSource) Fetch(ctx context.Context) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return graph.Snapshot{}, err
	}
	return graph.ReadSnapshotFile(s.path)
}

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) String() string { return s.path }
