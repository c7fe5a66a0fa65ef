package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Save overwrites the owner's previous export.
func (s *FileSink) Save(_ context.Context, _ int64, doc *Document, _ *Table) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create export dir")
	}
	path := filepath.Join(s.dir, doc.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc.Data, 0o644); err != nil {
		return "", errors.Wrap(err, "write export")
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", errors.Wrap(err, "write export")
	}
	return path, nil
}
