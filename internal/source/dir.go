package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/artbyte/assetcache/internal/apperrors"
)

// DirLoader reads assets from a local directory, the typical layout for an
// application's bundled resources. Asset identifiers are slash-separated
// relative paths.
type DirLoader struct {
	fsys fs.FS
}

// NewDirLoader creates a loader rooted at dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{fsys: os.DirFS(dir)}
}

// NewFSLoader creates a loader over an arbitrary fs.FS, e.g. an embed.FS of
// bundled assets.
func NewFSLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{fsys: fsys}
}

// Fetch implements Loader.
func (l *DirLoader) Fetch(_ context.Context, assetID string) ([]byte, error) {
	name := path.Clean(strings.TrimPrefix(assetID, "/"))
	if name == "." || strings.HasPrefix(name, "..") {
		return nil, apperrors.NewSourceNotFoundError(assetID)
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewSourceNotFoundError(assetID)
		}
		return nil, fmt.Errorf("read asset %q: %w", assetID, err)
	}
	return data, nil
}
